package xchannel

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/omeyang/logkit/pkg/log/xlevel"
	"github.com/omeyang/logkit/pkg/observability/xrotate"
)

func TestFileChannelWritesRenderedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	ch, err := Build(FileConfig{Path: path, Format: PresetCompact})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if err := ch.Write(fixedRecord(xlevel.LevelInfo, "svc", "first")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := ch.Write(fixedRecord(xlevel.LevelError, "svc", "second")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if closer, ok := ch.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	} else {
		t.Fatal("file channel should implement io.Closer")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	want := "[INFO] svc: first\n[ERROR] svc: second\n"
	if string(data) != want {
		t.Errorf("file contents = %q, want %q", string(data), want)
	}
}

func TestFileChannelDefaultFormatRecovers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	ch, err := Build(FileConfig{Path: path})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	rec := fixedRecord(xlevel.LevelInfo, "engine", "2025-01-02 15:04:05,123 ERROR [AuthService] denied")
	if err := ch.Write(rec); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := ch.(io.Closer).Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "[ERROR] AuthService: denied") {
		t.Errorf("file contents = %q, want recovered fields", out)
	}
}

func TestFileChannelInvalidPath(t *testing.T) {
	_, err := Build(FileConfig{Path: ""})
	if err == nil {
		t.Error("empty path should fail at build time")
	}
}

func TestFileChannelInvalidSchedule(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	_, err := Build(FileConfig{Path: path, Schedule: "not a cron"})
	if !errors.Is(err, xrotate.ErrInvalidSchedule) {
		t.Errorf("Build error = %v, want ErrInvalidSchedule", err)
	}
}

func TestFileChannelWithSchedule(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	ch, err := Build(FileConfig{Path: path, Format: PresetCompact, Schedule: "0 0 * * *"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := ch.Write(fixedRecord(xlevel.LevelInfo, "svc", "scheduled")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := ch.(io.Closer).Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "scheduled") {
		t.Errorf("file contents = %q", string(data))
	}
}

func TestFileChannelRotateOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	ch, err := Build(FileConfig{
		Path:   path,
		Format: PresetCompact,
		Rotate: []xrotate.Option{xrotate.WithMaxSize(1), xrotate.WithMaxBackups(2)},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := ch.Write(fixedRecord(xlevel.LevelInfo, "svc", "opts")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := ch.(io.Closer).Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
