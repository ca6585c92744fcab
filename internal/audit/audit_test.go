package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/hevlyo/pegabola/internal/sim/world"
)

func TestWriter_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, "audit")

	entries := []world.AuditEntry{
		{Time: time.Now().UTC(), Event: "join", PlayerID: "p1", Detail: "Ana"},
		{Time: time.Now().UTC(), Event: "collect", PlayerID: "p1", Detail: "item-1"},
		{Time: time.Now().UTC(), Event: "collect_rejected", PlayerID: "p2", Detail: "item-1", Code: "E_TOO_FAR"},
	}
	for _, e := range entries {
		if err := w.WriteAudit(e); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "audit-*.jsonl.zst"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("audit files: %v (err %v)", matches, err)
	}

	got := readEntries(t, matches[0])
	if len(got) != len(entries) {
		t.Fatalf("entries: got %d want %d", len(got), len(entries))
	}
	for i := range entries {
		if got[i].Event != entries[i].Event || got[i].PlayerID != entries[i].PlayerID ||
			got[i].Detail != entries[i].Detail || got[i].Code != entries[i].Code {
			t.Fatalf("entry %d: got %+v want %+v", i, got[i], entries[i])
		}
	}
}

func TestWriter_AppendAfterReopen(t *testing.T) {
	dir := t.TempDir()

	w := NewWriter(dir, "audit")
	if err := w.WriteAudit(world.AuditEntry{Time: time.Now().UTC(), Event: "join", PlayerID: "p1"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// A restart within the same hour appends a second zstd frame.
	w = NewWriter(dir, "audit")
	if err := w.WriteAudit(world.AuditEntry{Time: time.Now().UTC(), Event: "leave", PlayerID: "p1"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	matches, _ := filepath.Glob(filepath.Join(dir, "audit-*.jsonl.zst"))
	if len(matches) != 1 {
		t.Fatalf("audit files: %v", matches)
	}
	got := readEntries(t, matches[0])
	if len(got) != 2 || got[0].Event != "join" || got[1].Event != "leave" {
		t.Fatalf("entries after reopen: %+v", got)
	}
}

func TestWriter_CloseWithoutWritesIsNoop(t *testing.T) {
	w := NewWriter(t.TempDir(), "audit")
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func readEntries(t *testing.T, path string) []world.AuditEntry {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatalf("zstd reader: %v", err)
	}
	defer dec.Close()

	var out []world.AuditEntry
	sc := bufio.NewScanner(dec)
	for sc.Scan() {
		var e world.AuditEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("decode line %q: %v", sc.Text(), err)
		}
		out = append(out, e)
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	return out
}
