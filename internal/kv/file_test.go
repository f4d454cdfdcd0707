package kv

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestOpenFile_NotExist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	m, err := OpenFile(path, 0)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	if got := m.Keys(); len(got) != 0 {
		t.Errorf("expected empty medium, got keys %v", got)
	}
}

func TestFileMedium_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	m, err := OpenFile(path, 0)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}

	if err := m.Set("a", "1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := m.Set("b", "2"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := m.Delete("a"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	// Reopen and verify the surviving state came back from disk.
	m2, err := OpenFile(path, 0)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if _, ok := m2.Get("a"); ok {
		t.Error("deleted key survived reopen")
	}
	v, ok := m2.Get("b")
	if !ok || v != "2" {
		t.Errorf(`Get("b") = %q, %v; want "2", true`, v, ok)
	}
}

func TestFileMedium_Overwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	m, _ := OpenFile(path, 0)
	if err := m.Set("k", "first"); err != nil {
		t.Fatal(err)
	}
	if err := m.Set("k", "second"); err != nil {
		t.Fatal(err)
	}
	if v, _ := m.Get("k"); v != "second" {
		t.Errorf("Get = %q; want second", v)
	}
	if got := m.Keys(); len(got) != 1 {
		t.Errorf("Keys = %v; want exactly one", got)
	}
}

func TestFileMedium_QuotaExceeded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	m, _ := OpenFile(path, 16)
	if err := m.Set("k", "0123456789"); err != nil {
		t.Fatalf("Set within quota failed: %v", err)
	}
	err := m.Set("big", "0123456789abcdef")
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("Set over quota = %v; want ErrQuotaExceeded", err)
	}
	if _, ok := m.Get("big"); ok {
		t.Error("rejected key was stored anyway")
	}
	// Rewriting an existing key inside the quota must still work.
	if err := m.Set("k", "xyz"); err != nil {
		t.Errorf("rewrite failed: %v", err)
	}
}

func TestFileMedium_Keys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	m, _ := OpenFile(path, 0)
	for _, k := range []string{"x", "y", "z"} {
		if err := m.Set(k, k); err != nil {
			t.Fatal(err)
		}
	}
	got := m.Keys()
	sort.Strings(got)
	want := []string{"x", "y", "z"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Keys = %v; want %v", got, want)
		}
	}
}

func TestFileMedium_DeleteFlushFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	m, err := OpenFile(path, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Set("k", "v"); err != nil {
		t.Fatal(err)
	}

	// A directory squatting on the temp path makes every flush fail.
	if err := os.Mkdir(path+".tmp", 0o700); err != nil {
		t.Fatal(err)
	}
	if err := m.Delete("k"); err == nil {
		t.Fatal("Delete with a failing flush reported no error")
	}
	// The entry survives, consistent with what is on disk.
	if v, ok := m.Get("k"); !ok || v != "v" {
		t.Errorf(`Get("k") after failed delete = %q, %v; want the value intact`, v, ok)
	}
}

func TestOpenFile_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(path, []byte("not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenFile(path, 0); err == nil {
		t.Fatal("expected error opening corrupt file")
	}
}

func TestMemoryMedium_Quota(t *testing.T) {
	m := NewMemory(8)
	if err := m.Set("ab", "cd"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := m.Set("ef", "ghijkl"); !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("Set = %v; want ErrQuotaExceeded", err)
	}
	if err := m.Delete("ab"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := m.Set("ef", "ghijkl"); err != nil {
		t.Fatalf("Set after delete failed: %v", err)
	}
}
