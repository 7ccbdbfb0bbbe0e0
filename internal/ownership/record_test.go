package ownership

import (
	"errors"
	"testing"
	"time"

	"google.golang.org/protobuf/encoding/protowire"
)

func TestRecordRoundTrip(t *testing.T) {
	at := time.Unix(0, 1_760_000_000_123_456_789)
	for _, owned := range []bool{true, false} {
		got, err := unmarshalRecord(record{Owned: owned, ChangedAt: at}.marshal())
		if err != nil {
			t.Fatal(err)
		}
		if got.Owned != owned || !got.ChangedAt.Equal(at) {
			t.Fatalf("round trip: got %+v", got)
		}
	}
}

func TestRecordZeroTimeOmitted(t *testing.T) {
	b := record{Owned: true}.marshal()
	if len(b) != 2 {
		t.Fatalf("encoded length: got %d, want 2", len(b))
	}
	got, err := unmarshalRecord(b)
	if err != nil {
		t.Fatal(err)
	}
	if !got.ChangedAt.IsZero() {
		t.Fatalf("ChangedAt: got %v, want zero", got.ChangedAt)
	}
}

func TestRecordSkipsUnknownFields(t *testing.T) {
	b := record{Owned: true}.marshal()
	b = protowire.AppendTag(b, 9, protowire.BytesType)
	b = protowire.AppendBytes(b, []byte("future"))

	got, err := unmarshalRecord(b)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Owned {
		t.Fatal("owned flag lost next to an unknown field")
	}
}

func TestRecordEmptyIsNotOwned(t *testing.T) {
	got, err := unmarshalRecord(nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Owned {
		t.Fatal("empty record decoded as owned")
	}
}

func TestRecordCorrupt(t *testing.T) {
	cases := map[string][]byte{
		"truncated varint": {0x08, 0x80},
		"missing value":    {0x08},
		"bad tag":          {0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
	}
	for name, b := range cases {
		if _, err := unmarshalRecord(b); !errors.Is(err, ErrCorruptRecord) {
			t.Errorf("%s: got %v, want ErrCorruptRecord", name, err)
		}
	}
}
