package bolt

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/goodocy/android-store/internal/store"
	"github.com/goodocy/android-store/internal/store/storetest"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return tempStore(t) })
}

func TestOpenClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Path() != path {
		t.Errorf("Path: got %q, want %q", s.Path(), path)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("db file should exist: %v", err)
	}
}

func TestOpenInvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/test.db")
	if !errors.Is(err, store.ErrUnavailable) {
		t.Fatalf("opening db in nonexistent dir: got %v, want ErrUnavailable", err)
	}
}

func TestZeroStoreUnavailable(t *testing.T) {
	var s Store
	if _, err := s.Get([]byte("b"), []byte("k")); !errors.Is(err, store.ErrUnavailable) {
		t.Fatalf("Get on unopened store: got %v, want ErrUnavailable", err)
	}
	if err := s.Set([]byte("b"), []byte("k"), []byte("v")); !errors.Is(err, store.ErrUnavailable) {
		t.Fatalf("Set on unopened store: got %v, want ErrUnavailable", err)
	}
	if s.Path() != "" {
		t.Errorf("Path on unopened store: got %q", s.Path())
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close on unopened store: %v", err)
	}
}

func TestLargeBinaryKey(t *testing.T) {
	s := tempStore(t)
	defer func() { _ = s.Close() }()
	key := append([]byte{0xe9, 0xff}, make([]byte, 300)...)
	if err := s.Set([]byte("b"), key, []byte("v")); err != nil {
		t.Fatal(err)
	}
	val, err := s.Get([]byte("b"), key)
	if err != nil || string(val) != "v" {
		t.Fatalf("got %q, %v", val, err)
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set([]byte("b"), []byte("k"), []byte("v")); err != nil {
		t.Fatal(err)
	}
	_ = s.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = s2.Close() }()
	val, err := s2.Get([]byte("b"), []byte("k"))
	if err != nil {
		t.Fatal(err)
	}
	if string(val) != "v" {
		t.Fatalf("after reopen: got %q, want v", val)
	}
}
