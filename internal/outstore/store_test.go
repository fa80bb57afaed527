package outstore

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"
)

func testStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	s, err := New(t.TempDir(), ttl, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func TestPutAndResolve(t *testing.T) {
	s := testStore(t, time.Hour)

	name, err := s.Put("highlights", "report", ".pdf", []byte("%PDF fake"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if !strings.HasPrefix(name, "highlights_report_") || !strings.HasSuffix(name, ".pdf") {
		t.Errorf("unexpected artifact name %q", name)
	}

	path, err := s.Resolve(name)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if string(data) != "%PDF fake" {
		t.Errorf("artifact content mismatch: %q", data)
	}
}

func TestPutNamesAreUnique(t *testing.T) {
	s := testStore(t, time.Hour)

	a, err := s.Put("highlights", "same", ".pdf", []byte("a"))
	if err != nil {
		t.Fatalf("put a: %v", err)
	}
	b, err := s.Put("highlights", "same", ".pdf", []byte("b"))
	if err != nil {
		t.Fatalf("put b: %v", err)
	}
	if a == b {
		t.Errorf("expected unique names, both were %q", a)
	}
}

func TestResolveRejectsTraversal(t *testing.T) {
	s := testStore(t, time.Hour)

	for _, bad := range []string{"", "../etc/passwd", "a/b.pdf", "..", "nope.pdf"} {
		if _, err := s.Resolve(bad); err == nil {
			t.Errorf("Resolve(%q) succeeded, want error", bad)
		}
	}
}

func TestRemoveDeletesArtifact(t *testing.T) {
	s := testStore(t, time.Hour)

	name, err := s.Put("highlights_text", "doc", ".docx", []byte("zip"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	s.Remove(name)
	if _, err := s.Resolve(name); err == nil {
		t.Error("expected artifact to be gone after Remove")
	}
}

func TestSweepEvictsExpired(t *testing.T) {
	s := testStore(t, 10*time.Millisecond)

	name, err := s.Put("highlights", "stale", ".pdf", []byte("x"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	time.Sleep(25 * time.Millisecond)

	fresh, err := s.Put("highlights", "fresh", ".pdf", []byte("y"))
	if err != nil {
		t.Fatalf("put fresh: %v", err)
	}

	s.Sweep()

	if _, err := s.Resolve(name); err == nil {
		t.Error("expected expired artifact to be swept")
	}
	if _, err := s.Resolve(fresh); err != nil {
		t.Errorf("fresh artifact swept too early: %v", err)
	}
}
