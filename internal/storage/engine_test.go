package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/discountd/internal/core/domain"
	"github.com/yndnr/discountd/internal/storage/snapshot"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	cfg := DefaultConfig(filepath.Join(t.TempDir(), snapshot.DefaultFile))
	cfg.Queue.RetryInitial = time.Millisecond
	cfg.Queue.RetryMax = 5 * time.Millisecond
	return cfg
}

func closeEngine(t *testing.T, e *Engine) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestOpen_RequiresFile(t *testing.T) {
	if _, err := Open(Config{}); err == nil {
		t.Error("Open with empty file should fail")
	}
}

func TestOpen_CreatesEmptySnapshot(t *testing.T) {
	cfg := testConfig(t)
	e, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer closeEngine(t, e)

	if e.Count() != 0 {
		t.Errorf("Count() = %d, want 0", e.Count())
	}
	data, err := os.ReadFile(cfg.File)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Errorf("snapshot = %q, want []", data)
	}
}

func TestOpen_MalformedSnapshotIsFatal(t *testing.T) {
	cfg := testConfig(t)
	if err := os.WriteFile(cfg.File, []byte("{not json"), 0640); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err := Open(cfg)
	if !errors.Is(err, domain.ErrSnapshotMalformed) {
		t.Errorf("Open error = %v, want ErrSnapshotMalformed", err)
	}
}

func TestOpen_DuplicatesKeepFirst(t *testing.T) {
	cfg := testConfig(t)
	content := `[{"code":"ABCD123","used":true},{"code":"ABCD123","used":false}]`
	if err := os.WriteFile(cfg.File, []byte(content), 0640); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	e, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer closeEngine(t, e)

	if e.Count() != 1 {
		t.Errorf("Count() = %d, want 1", e.Count())
	}
	if used, ok := e.Lookup("ABCD123"); !ok || !used {
		t.Errorf("Lookup = (%v, %v), want (true, true)", used, ok)
	}
}

func TestEngine_FlushAndReload(t *testing.T) {
	cfg := testConfig(t)
	e, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	for _, code := range []string{"AAAA111", "BBBB2222", "CCCC333"} {
		if !e.Insert(code) {
			t.Fatalf("Insert(%s) = false", code)
		}
	}
	if e.Insert("AAAA111") {
		t.Error("duplicate Insert should return false")
	}
	if got := e.Redeem("BBBB2222"); got != domain.UseSuccess {
		t.Errorf("Redeem = %v, want success", got)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	closeEngine(t, e)

	reopened, err := Open(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer closeEngine(t, reopened)

	total, used := reopened.Stats()
	if total != 3 || used != 1 {
		t.Errorf("Stats() = (%d, %d), want (3, 1)", total, used)
	}
	if got := reopened.Redeem("BBBB2222"); got != domain.UseAlreadyUsed {
		t.Errorf("Redeem after reload = %v, want already_used", got)
	}
	if got := reopened.Redeem("AAAA111"); got != domain.UseSuccess {
		t.Errorf("Redeem unused after reload = %v, want success", got)
	}
}

func TestEngine_CloseDrainsMarkDirty(t *testing.T) {
	cfg := testConfig(t)
	e, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	e.Insert("ZZZZ999")
	e.MarkDirty()
	closeEngine(t, e)

	entries, _, err := mustManager(t, cfg.File).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(entries) != 1 || entries[0].Code != "ZZZZ999" || entries[0].Used {
		t.Errorf("snapshot entries = %+v", entries)
	}
}

func TestEngine_EntriesSorted(t *testing.T) {
	e, err := Open(testConfig(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer closeEngine(t, e)

	for _, code := range []string{"CCCCCCC", "AAAAAAA", "BBBBBBB"} {
		e.Insert(code)
	}
	entries := e.Entries()
	for i := 1; i < len(entries); i++ {
		if entries[i-1].Code > entries[i].Code {
			t.Fatalf("entries not sorted: %+v", entries)
		}
	}
}

func mustManager(t *testing.T, path string) *snapshot.Manager {
	t.Helper()
	m, err := snapshot.NewManager(snapshot.DefaultConfig(path))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}
