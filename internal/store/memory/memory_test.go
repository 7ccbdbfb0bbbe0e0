package memory

import (
	"testing"

	"github.com/goodocy/android-store/internal/store"
	"github.com/goodocy/android-store/internal/store/storetest"
)

func TestContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return New() })
}

func TestSetEmptyKey(t *testing.T) {
	s := New()
	if err := s.Set([]byte("b"), nil, []byte("v")); err == nil {
		t.Fatal("empty key should be rejected")
	}
}

func TestForEachOrdered(t *testing.T) {
	s := New()
	for _, k := range []string{"c", "a", "b"} {
		if err := s.Set([]byte("b"), []byte(k), nil); err != nil {
			t.Fatal(err)
		}
	}
	var got string
	_ = s.ForEach([]byte("b"), func(k, v []byte) error {
		got += string(k)
		return nil
	})
	if got != "abc" {
		t.Fatalf("iteration order: got %q, want abc", got)
	}
}

func TestCloseTwice(t *testing.T) {
	s := New()
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
