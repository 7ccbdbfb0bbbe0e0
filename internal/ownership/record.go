package ownership

import (
	"errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrCorruptRecord is returned when a stored value cannot be parsed.
var ErrCorruptRecord = errors.New("corrupt ownership record")

// Record fields, protobuf wire format:
//
//	message Record {
//	  bool  owned      = 1;
//	  int64 changed_at = 2; // unix nanoseconds
//	}
const (
	fieldOwned     protowire.Number = 1
	fieldChangedAt protowire.Number = 2
)

type record struct {
	Owned     bool
	ChangedAt time.Time
}

func (r record) marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldOwned, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeBool(r.Owned))
	if !r.ChangedAt.IsZero() {
		b = protowire.AppendTag(b, fieldChangedAt, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(r.ChangedAt.UnixNano()))
	}
	return b
}

// unmarshalRecord parses a stored value. Unknown fields are skipped so
// newer writers stay readable.
func unmarshalRecord(b []byte) (record, error) {
	var r record
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return record{}, fmt.Errorf("%w: %w", ErrCorruptRecord, protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == fieldOwned && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return record{}, fmt.Errorf("%w: owned: %w", ErrCorruptRecord, protowire.ParseError(n))
			}
			r.Owned = protowire.DecodeBool(v)
			b = b[n:]
		case num == fieldChangedAt && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return record{}, fmt.Errorf("%w: changed_at: %w", ErrCorruptRecord, protowire.ParseError(n))
			}
			r.ChangedAt = time.Unix(0, int64(v))
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return record{}, fmt.Errorf("%w: field %d: %w", ErrCorruptRecord, num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return r, nil
}
