package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// runApp 以捕获输出的方式运行 CLI，返回标准输出内容。
func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	app := createApp()
	var buf bytes.Buffer
	app.Writer = &buf
	err := app.Run(context.Background(), append([]string{"logctl"}, args...))
	return buf.String(), err
}

// writeConfig 在临时目录写入配置文件并返回路径。
func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const validYAML = `
level: warn
default_channel:
  kind: console
appenders:
  - name: audit
    level: error
    channel:
      kind: async
      queue: audit-queue
  - name: fallback
    channel:
      kind: console
      format: json
`

func TestLevels_RankTable(t *testing.T) {
	out, err := runApp(t, "levels")
	if err != nil {
		t.Fatalf("levels failed: %v", err)
	}

	wants := []string{
		"LEVEL  RANK",
		"TRACE  0",
		"DEBUG  1",
		"INFO   2",
		"WARN   3",
		"ERROR  4",
		"FATAL  5",
		"OFF    6",
	}
	for _, want := range wants {
		if !strings.Contains(out, want) {
			t.Errorf("levels output missing %q:\n%s", want, out)
		}
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	path := writeConfig(t, "logging.yaml", validYAML)

	out, err := runApp(t, "validate", "-f", path)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}

	if !strings.Contains(out, "配置有效: level=WARN appenders=2") {
		t.Errorf("missing summary line:\n%s", out)
	}
	for _, name := range []string{"audit", "fallback"} {
		if !strings.Contains(out, "- "+name) {
			t.Errorf("missing appender %q in summary:\n%s", name, out)
		}
	}
}

func TestValidate_JSONConfig(t *testing.T) {
	path := writeConfig(t, "logging.json", `{"level": "debug"}`)

	out, err := runApp(t, "validate", "-f", path)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !strings.Contains(out, "level=DEBUG") {
		t.Errorf("unexpected summary:\n%s", out)
	}
}

func TestEmit_SimpleFormat(t *testing.T) {
	out, err := runApp(t, "emit", "-l", "warn", "-m", "disk full", "--logger", "DiskMonitor")
	if err != nil {
		t.Fatalf("emit failed: %v", err)
	}
	if !strings.Contains(out, "[WARN] DiskMonitor: disk full") {
		t.Errorf("unexpected emit output:\n%s", out)
	}
}

func TestEmit_JSONFormatCount(t *testing.T) {
	out, err := runApp(t, "emit", "-l", "error", "-m", "disk full", "-c", "3", "--format", "json")
	if err != nil {
		t.Fatalf("emit failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("want 3 records, got %d:\n%s", len(lines), out)
	}
	for _, line := range lines {
		if !strings.Contains(line, `"level":"ERROR"`) || !strings.Contains(line, `"message":"disk full"`) {
			t.Errorf("malformed record line: %s", line)
		}
	}
}

func TestRun_ExitCodes(t *testing.T) {
	valid := writeConfig(t, "ok.yaml", validYAML)
	badLevel := writeConfig(t, "bad.yaml", "level: loud\n")
	missing := filepath.Join(t.TempDir(), "absent.yaml")

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"levels", []string{"logctl", "levels"}, 0},
		{"validate_valid", []string{"logctl", "validate", "-f", valid}, 0},
		{"validate_missing_flag", []string{"logctl", "validate"}, 2},
		{"validate_unreadable", []string{"logctl", "validate", "-f", missing}, 1},
		{"validate_bad_level", []string{"logctl", "validate", "-f", badLevel}, 1},
		{"emit_bad_level", []string{"logctl", "emit", "-l", "loud"}, 2},
		{"emit_off_level", []string{"logctl", "emit", "-l", "off"}, 2},
		{"emit_zero_count", []string{"logctl", "emit", "-c", "0"}, 2},
		{"unknown_command", []string{"logctl", "frobnicate"}, 2},
		{"unknown_flag", []string{"logctl", "levels", "--bogus"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := run(tt.args); got != tt.want {
				t.Errorf("run(%v) = %d, want %d", tt.args, got, tt.want)
			}
		})
	}
}

func TestIsCLIUsageError(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		want bool
	}{
		{"unknown_flag", "flag provided but not defined: -bogus", true},
		{"unknown_command", "No help topic for 'frobnicate'", true},
		{"plain_error", "connection refused", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isCLIUsageError(errorString(tt.msg)); got != tt.want {
				t.Errorf("isCLIUsageError(%q) = %v, want %v", tt.msg, got, tt.want)
			}
		})
	}
}

// errorString 字面错误，避免引入额外依赖。
type errorString string

func (e errorString) Error() string { return string(e) }
