package audit

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kennwilliamson/cherub/internal/enforce"
)

func TestParseDecisionFilename(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name     string
		wantOK   bool
		wantDate string
		wantSfx  int
	}{
		{"decisions-2026-01-02.log", true, "2026-01-02", 0},
		{"decisions-2026-01-02-3.log", true, "2026-01-02", 3},
		{"decisions-2026-01-02.txt", false, "", 0},
		{"random.log", false, "", 0},
	} {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			info, ok := parseDecisionFilename(tt.name)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if info.date != tt.wantDate || info.suffix != tt.wantSfx {
				t.Errorf("got %+v, want date=%s suffix=%d", info, tt.wantDate, tt.wantSfx)
			}
		})
	}
}

func TestBuildFilename(t *testing.T) {
	t.Parallel()

	if got := buildFilename("2026-01-02", 0); got != "decisions-2026-01-02.log" {
		t.Errorf("got %q", got)
	}
	if got := buildFilename("2026-01-02", 2); got != "decisions-2026-01-02-2.log" {
		t.Errorf("got %q", got)
	}
}

func TestNewFileSink_CreatesDirAndFile(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "logs")
	sink, err := NewFileSink(Config{Dir: dir}, nil)
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}
	defer sink.Close()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if !strings.HasPrefix(entries[0].Name(), "decisions-") {
		t.Errorf("unexpected file name %q", entries[0].Name())
	}
}

func TestFileSink_Append_WritesJSONLine(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sink, err := NewFileSink(Config{Dir: dir}, nil)
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}
	defer sink.Close()

	r := enforce.DecisionRecord{Timestamp: time.Now().UTC(), Tool: "bash", Action: "run", Verdict: "allow"}
	if err := sink.Append(context.Background(), r); err != nil {
		t.Fatalf("Append: %v", err)
	}
	sink.currentFile.Sync()

	data, err := os.ReadFile(sink.currentFile.Name())
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var got enforce.DecisionRecord
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(data))), &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Tool != "bash" || got.Verdict != "allow" {
		t.Errorf("got %+v", got)
	}
}

func TestFileSink_Append_RotatesOnDateChange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sink, err := NewFileSink(Config{Dir: dir}, nil)
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}
	defer sink.Close()

	today := time.Now().UTC()
	if err := sink.Append(context.Background(), enforce.DecisionRecord{Timestamp: today}); err != nil {
		t.Fatalf("Append (today): %v", err)
	}

	tomorrow := today.AddDate(0, 0, 1)
	if err := sink.Append(context.Background(), enforce.DecisionRecord{Timestamp: tomorrow}); err != nil {
		t.Fatalf("Append (tomorrow): %v", err)
	}

	if sink.currentDate != tomorrow.Format("2006-01-02") {
		t.Errorf("currentDate = %q, want %q", sink.currentDate, tomorrow.Format("2006-01-02"))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d files, want 2 (one per date)", len(entries))
	}
}

func TestFileSink_Append_RotatesOnSizeCap(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sink, err := NewFileSink(Config{Dir: dir}, nil)
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}
	defer sink.Close()
	sink.maxFileSize = 1 // any non-empty file now rotates before the following write

	ts := time.Now().UTC()
	if err := sink.Append(context.Background(), enforce.DecisionRecord{Timestamp: ts, Tool: "a"}); err != nil {
		t.Fatalf("Append 1: %v", err)
	}
	if err := sink.Append(context.Background(), enforce.DecisionRecord{Timestamp: ts, Tool: "b"}); err != nil {
		t.Fatalf("Append 2: %v", err)
	}

	if sink.currentSuffix != 1 {
		t.Errorf("currentSuffix = %d, want 1 after exceeding maxFileSize", sink.currentSuffix)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d files, want 2 (base + suffix 1)", len(entries))
	}
}

func TestFileSink_Close_Idempotent(t *testing.T) {
	t.Parallel()

	sink, err := NewFileSink(Config{Dir: t.TempDir()}, nil)
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestFileSink_RunCleanup_DeletesFilesPastRetention(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	old := time.Now().UTC().AddDate(0, 0, -30).Format("2006-01-02")
	oldPath := filepath.Join(dir, buildFilename(old, 0))
	if err := os.WriteFile(oldPath, []byte("{}\n"), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	sink, err := NewFileSink(Config{Dir: dir, RetentionDays: 7}, nil)
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}
	defer sink.Close()

	if _, err := os.Stat(oldPath); !os.IsNotExist(err) {
		t.Errorf("expected the stale decision log to be removed by startup cleanup, stat err = %v", err)
	}
}
