package storage

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophdrive/internal/common"
)

func newStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}
	return s
}

func TestSanitizeLogin(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"alice", "alice"},
		{"alice_1-2", "alice_1-2"},
		{"../alice", "alice"},
		{"a/b\\c", "abc"},
		{"аliсе", "li"},
		{"a b\tc", "abc"},
	}
	for _, tt := range tests {
		if got := SanitizeLogin(tt.in); got != tt.want {
			t.Errorf("SanitizeLogin(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestList_LazilyCreatesDirectory(t *testing.T) {
	s := newStore(t)

	names, err := s.List("alice")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(names) != 0 {
		t.Fatalf("want empty list, got %v", names)
	}

	if _, err := os.Stat(filepath.Join(s.root, "alice")); err != nil {
		t.Fatalf("user directory must exist after List: %v", err)
	}
}

func TestList_RegularFilesOnly(t *testing.T) {
	s := newStore(t)

	if err := s.Write("alice", "a.txt", strings.NewReader("x")); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if err := os.Mkdir(filepath.Join(s.root, "alice", "subdir"), 0o750); err != nil {
		t.Fatalf("mkdir error: %v", err)
	}

	names, err := s.List("alice")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(names) != 1 || names[0] != "a.txt" {
		t.Fatalf("want [a.txt], got %v", names)
	}
}

func TestWrite_RoundTripAndOverwrite(t *testing.T) {
	s := newStore(t)

	content := []byte("first version")
	if err := s.Write("alice", "a.txt", bytes.NewReader(content)); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	rc, info, err := s.Open("alice", "a.txt")
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	got, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		t.Fatalf("ReadAll error: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Fatalf("downloaded %q, uploaded %q", got, content)
	}
	if info.Name != "a.txt" || info.Size != int64(len(content)) {
		t.Fatalf("unexpected info: %+v", info)
	}

	// overwrite replaces the content in place
	updated := []byte("v2")
	if err := s.Write("alice", "a.txt", bytes.NewReader(updated)); err != nil {
		t.Fatalf("overwrite error: %v", err)
	}
	rc, _, err = s.Open("alice", "a.txt")
	if err != nil {
		t.Fatalf("Open after overwrite error: %v", err)
	}
	got, _ = io.ReadAll(rc)
	rc.Close()
	if !bytes.Equal(got, updated) {
		t.Fatalf("after overwrite got %q, want %q", got, updated)
	}

	names, err := s.List("alice")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(names) != 1 || names[0] != "a.txt" {
		t.Fatalf("a.txt must appear exactly once, got %v", names)
	}
}

func TestStat_FormatsModifiedTime(t *testing.T) {
	s := newStore(t)

	if err := s.Write("alice", "a.txt", strings.NewReader("data")); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	mtime := time.Date(2024, 3, 5, 14, 30, 0, 0, time.Local)
	path := filepath.Join(s.root, "alice", "a.txt")
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("Chtimes error: %v", err)
	}

	info, err := s.Stat("alice", "a.txt")
	if err != nil {
		t.Fatalf("Stat error: %v", err)
	}
	if info.Modified != "05-03-2024 14-30-00" {
		t.Fatalf("want \"05-03-2024 14-30-00\", got %q", info.Modified)
	}
	if info.Size != 4 {
		t.Fatalf("want size 4, got %d", info.Size)
	}
}

func TestStat_Missing(t *testing.T) {
	s := newStore(t)

	_, err := s.Stat("alice", "ghost.txt")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	s := newStore(t)

	if err := s.Write("alice", "a.txt", strings.NewReader("x")); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if err := s.Delete("alice", "a.txt"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if err := s.Delete("alice", "a.txt"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound on second delete, got %v", err)
	}
}

func TestTraversalRejectedBeforeFilesystemTouch(t *testing.T) {
	s := newStore(t)

	// a file outside any user directory that must never be reachable
	outside := filepath.Join(filepath.Dir(s.root), "secret.txt")
	if err := os.WriteFile(outside, []byte("top secret"), 0o600); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	hostile := []string{
		"../../etc/passwd",
		"..%2f..%2fsecret",
		"",
		"..",
		"a/../../b",
	}

	for _, name := range hostile {
		if _, err := s.Stat("alice", name); !isRejection(err) {
			t.Errorf("Stat(%q): want rejection, got %v", name, err)
		}
		if err := s.Write("alice", name, strings.NewReader("x")); !isRejection(err) {
			t.Errorf("Write(%q): want rejection, got %v", name, err)
		}
		if _, _, err := s.Open("alice", name); !isRejection(err) {
			t.Errorf("Open(%q): want rejection, got %v", name, err)
		}
		if err := s.Delete("alice", name); !isRejection(err) {
			t.Errorf("Delete(%q): want rejection, got %v", name, err)
		}
	}

	// nothing outside the sandbox was written or removed
	got, err := os.ReadFile(outside)
	if err != nil || string(got) != "top secret" {
		t.Fatalf("file outside the sandbox was touched: %q, %v", got, err)
	}
}

func isRejection(err error) bool {
	return errors.Is(err, common.ErrorInvalidFilename) || errors.Is(err, common.ErrorAccessDenied)
}

func TestCrossUserIsolation(t *testing.T) {
	s := newStore(t)

	if err := s.Write("bob", "b.txt", strings.NewReader("bob's data")); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	// alice supplies bob's exact filename: resolution is rooted at alice's
	// own directory, so the file simply does not exist for her
	if _, err := s.Stat("alice", "b.txt"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("Stat: want common.ErrorNotFound, got %v", err)
	}
	if _, _, err := s.Open("alice", "b.txt"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("Open: want common.ErrorNotFound, got %v", err)
	}
	if err := s.Delete("alice", "b.txt"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("Delete: want common.ErrorNotFound, got %v", err)
	}

	// bob's file is intact
	rc, _, err := s.Open("bob", "b.txt")
	if err != nil {
		t.Fatalf("Open bob's file: %v", err)
	}
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	if string(got) != "bob's data" {
		t.Fatalf("bob's file corrupted: %q", got)
	}
}

func TestDirectoryComponentsAreStripped(t *testing.T) {
	s := newStore(t)

	if err := s.Write("alice", "docs/report.txt", strings.NewReader("flat")); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	// the file lands flat in alice's directory under its base name
	info, err := s.Stat("alice", "report.txt")
	if err != nil {
		t.Fatalf("Stat error: %v", err)
	}
	if info.Name != "report.txt" {
		t.Fatalf("want report.txt, got %q", info.Name)
	}
}
