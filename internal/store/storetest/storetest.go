// Package storetest checks that a store.Store honors the contract the
// ownership facade relies on.
package storetest

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/goodocy/android-store/internal/store"
)

var testBucket = []byte("test-bucket")

// Run exercises open() against the store.Store contract. open must return a
// fresh, empty store; Run closes it.
func Run(t *testing.T, open func(t *testing.T) store.Store) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"SetAndGet", testSetAndGet},
		{"GetMissingBucket", testGetMissingBucket},
		{"GetMissingKey", testGetMissingKey},
		{"SetOverwrite", testSetOverwrite},
		{"SetIdempotent", testSetIdempotent},
		{"GetOrSetAbsent", testGetOrSetAbsent},
		{"GetOrSetPresent", testGetOrSetPresent},
		{"GetOrSetConcurrent", testGetOrSetConcurrent},
		{"Delete", testDelete},
		{"DeleteMissingBucket", testDeleteMissingBucket},
		{"ForEach", testForEach},
		{"ForEachMissingBucket", testForEachMissingBucket},
		{"ForEachCallbackError", testForEachCallbackError},
		{"GetReturnsCopy", testGetReturnsCopy},
		{"MultipleBuckets", testMultipleBuckets},
		{"ConcurrentSameKey", testConcurrentSameKey},
		{"ConcurrentDistinctKeys", testConcurrentDistinctKeys},
		{"UnavailableAfterClose", testUnavailableAfterClose},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := open(t)
			defer func() { _ = s.Close() }()
			tt.fn(t, s)
		})
	}
}

func testSetAndGet(t *testing.T, s store.Store) {
	if err := s.Set(testBucket, []byte("key1"), []byte("val1")); err != nil {
		t.Fatal(err)
	}
	val, err := s.Get(testBucket, []byte("key1"))
	if err != nil {
		t.Fatal(err)
	}
	if string(val) != "val1" {
		t.Fatalf("expected val1, got %q", val)
	}
}

func testGetMissingBucket(t *testing.T, s store.Store) {
	val, err := s.Get([]byte("no-bucket"), []byte("key"))
	if err != nil {
		t.Fatal(err)
	}
	if val != nil {
		t.Fatalf("expected nil for missing bucket, got %q", val)
	}
}

func testGetMissingKey(t *testing.T, s store.Store) {
	if err := s.Set(testBucket, []byte("other"), []byte("val")); err != nil {
		t.Fatal(err)
	}
	val, err := s.Get(testBucket, []byte("missing"))
	if err != nil {
		t.Fatal(err)
	}
	if val != nil {
		t.Fatalf("expected nil for missing key, got %q", val)
	}
}

func testSetOverwrite(t *testing.T, s store.Store) {
	if err := s.Set(testBucket, []byte("k"), []byte("v1")); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(testBucket, []byte("k"), []byte("v2")); err != nil {
		t.Fatal(err)
	}
	val, err := s.Get(testBucket, []byte("k"))
	if err != nil {
		t.Fatal(err)
	}
	if string(val) != "v2" {
		t.Fatalf("expected v2 after overwrite, got %q", val)
	}
}

func testSetIdempotent(t *testing.T, s store.Store) {
	for i := 0; i < 3; i++ {
		if err := s.Set(testBucket, []byte("k"), []byte("v")); err != nil {
			t.Fatal(err)
		}
	}
	n := 0
	if err := s.ForEach(testBucket, func(k, v []byte) error {
		n++
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("repeated Set left %d rows, want 1", n)
	}
}

func testGetOrSetAbsent(t *testing.T, s store.Store) {
	got, err := s.GetOrSet(testBucket, []byte("k"), []byte("first"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "first" {
		t.Fatalf("GetOrSet on absent key: got %q, want first", got)
	}
	val, _ := s.Get(testBucket, []byte("k"))
	if string(val) != "first" {
		t.Fatalf("value not stored: got %q", val)
	}
}

func testGetOrSetPresent(t *testing.T, s store.Store) {
	if err := s.Set(testBucket, []byte("k"), []byte("existing")); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetOrSet(testBucket, []byte("k"), []byte("other"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "existing" {
		t.Fatalf("GetOrSet overwrote: got %q, want existing", got)
	}
}

func testGetOrSetConcurrent(t *testing.T, s store.Store) {
	const callers = 8
	results := make([]string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := s.GetOrSet(testBucket, []byte("once"), []byte(fmt.Sprintf("c%d", i)))
			if err != nil {
				t.Error(err)
				return
			}
			results[i] = string(v)
		}(i)
	}
	wg.Wait()

	stored, err := s.Get(testBucket, []byte("once"))
	if err != nil {
		t.Fatal(err)
	}
	for i, r := range results {
		if r != string(stored) {
			t.Fatalf("caller %d saw %q, store holds %q", i, r, stored)
		}
	}
}

func testDelete(t *testing.T, s store.Store) {
	if err := s.Set(testBucket, []byte("k"), []byte("v")); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(testBucket, []byte("k")); err != nil {
		t.Fatal(err)
	}
	val, err := s.Get(testBucket, []byte("k"))
	if err != nil {
		t.Fatal(err)
	}
	if val != nil {
		t.Fatalf("expected nil after delete, got %q", val)
	}
}

func testDeleteMissingBucket(t *testing.T, s store.Store) {
	if err := s.Delete([]byte("no-bucket"), []byte("key")); err != nil {
		t.Fatal(err)
	}
}

func testForEach(t *testing.T, s store.Store) {
	keys := []string{"a", "b", "c"}
	for _, k := range keys {
		if err := s.Set(testBucket, []byte(k), []byte("val-"+k)); err != nil {
			t.Fatal(err)
		}
	}
	seen := make(map[string]string)
	err := s.ForEach(testBucket, func(k, v []byte) error {
		seen[string(k)] = string(v)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(seen) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(seen))
	}
	for _, k := range keys {
		if seen[k] != "val-"+k {
			t.Fatalf("expected val-%s, got %q", k, seen[k])
		}
	}
}

func testForEachMissingBucket(t *testing.T, s store.Store) {
	count := 0
	err := s.ForEach([]byte("no-bucket"), func(k, v []byte) error {
		count++
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Fatal("iterating a missing bucket should yield 0 entries")
	}
}

func testForEachCallbackError(t *testing.T, s store.Store) {
	if err := s.Set(testBucket, []byte("k"), []byte("v")); err != nil {
		t.Fatal(err)
	}
	stop := errors.New("stop")
	err := s.ForEach(testBucket, func(k, v []byte) error { return stop })
	if !errors.Is(err, stop) {
		t.Fatalf("expected callback error, got %v", err)
	}
	if errors.Is(err, store.ErrUnavailable) {
		t.Fatal("callback error must not be reported as ErrUnavailable")
	}
}

func testGetReturnsCopy(t *testing.T, s store.Store) {
	if err := s.Set(testBucket, []byte("k"), []byte("original")); err != nil {
		t.Fatal(err)
	}
	val, err := s.Get(testBucket, []byte("k"))
	if err != nil {
		t.Fatal(err)
	}
	val[0] = 'X'
	again, err := s.Get(testBucket, []byte("k"))
	if err != nil {
		t.Fatal(err)
	}
	if string(again) != "original" {
		t.Fatal("mutating a returned value should not affect the store")
	}
}

func testMultipleBuckets(t *testing.T, s store.Store) {
	b1 := []byte("bucket1")
	b2 := []byte("bucket2")
	if err := s.Set(b1, []byte("k"), []byte("v1")); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(b2, []byte("k"), []byte("v2")); err != nil {
		t.Fatal(err)
	}
	v1, _ := s.Get(b1, []byte("k"))
	v2, _ := s.Get(b2, []byte("k"))
	if string(v1) != "v1" || string(v2) != "v2" {
		t.Fatal("buckets should be isolated")
	}
}

func testConcurrentSameKey(t *testing.T, s store.Store) {
	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := s.Set(testBucket, []byte("shared"), []byte(fmt.Sprintf("w%d", i))); err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()

	val, err := s.Get(testBucket, []byte("shared"))
	if err != nil {
		t.Fatal(err)
	}
	valid := false
	for i := 0; i < writers; i++ {
		if string(val) == fmt.Sprintf("w%d", i) {
			valid = true
		}
	}
	if !valid {
		t.Fatalf("concurrent writes left a corrupt value %q", val)
	}
}

func testConcurrentDistinctKeys(t *testing.T, s store.Store) {
	const n = 16
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(2)
		key := []byte(fmt.Sprintf("k%d", i))
		go func() {
			defer wg.Done()
			if err := s.Set(testBucket, key, key); err != nil {
				t.Error(err)
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := s.Get(testBucket, key); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		key := []byte(fmt.Sprintf("k%d", i))
		val, err := s.Get(testBucket, key)
		if err != nil {
			t.Fatal(err)
		}
		if string(val) != string(key) {
			t.Fatalf("%s: got %q", key, val)
		}
	}
}

func testUnavailableAfterClose(t *testing.T, s store.Store) {
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(testBucket, []byte("k")); !errors.Is(err, store.ErrUnavailable) {
		t.Errorf("Get after Close: got %v, want ErrUnavailable", err)
	}
	if err := s.Set(testBucket, []byte("k"), []byte("v")); !errors.Is(err, store.ErrUnavailable) {
		t.Errorf("Set after Close: got %v, want ErrUnavailable", err)
	}
	if _, err := s.GetOrSet(testBucket, []byte("k"), []byte("v")); !errors.Is(err, store.ErrUnavailable) {
		t.Errorf("GetOrSet after Close: got %v, want ErrUnavailable", err)
	}
	if err := s.Delete(testBucket, []byte("k")); !errors.Is(err, store.ErrUnavailable) {
		t.Errorf("Delete after Close: got %v, want ErrUnavailable", err)
	}
	err := s.ForEach(testBucket, func(k, v []byte) error { return nil })
	if !errors.Is(err, store.ErrUnavailable) {
		t.Errorf("ForEach after Close: got %v, want ErrUnavailable", err)
	}
}
