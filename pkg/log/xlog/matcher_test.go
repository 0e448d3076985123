package xlog_test

import (
	"strings"
	"testing"

	"github.com/omeyang/logkit/pkg/log/xlog"
)

func TestParseMatcher_Substring(t *testing.T) {
	tests := []struct {
		pattern string
		logName string
		want    bool
	}{
		{"Auth", "AuthService", true},
		{"Auth", "OAuthProxy", true},
		{"Auth", "Billing", false},
		{"auth", "AuthService", false}, // 子串匹配区分大小写
		{"", "anything", true},         // 空模式匹配一切
		{"/", "a/b", true},             // 单独的斜杠按子串处理
		{"/", "ab", false},
	}
	for _, tt := range tests {
		m, err := xlog.ParseMatcher(tt.pattern)
		if err != nil {
			t.Fatalf("ParseMatcher(%q) error: %v", tt.pattern, err)
		}
		if got := m.Match(tt.logName); got != tt.want {
			t.Errorf("ParseMatcher(%q).Match(%q) = %v, want %v", tt.pattern, tt.logName, got, tt.want)
		}
	}
}

func TestParseMatcher_Regexp(t *testing.T) {
	tests := []struct {
		pattern string
		logName string
		want    bool
	}{
		{"/^Auth/", "AuthService", true},
		{"/^Auth/", "OAuthProxy", false},
		{"/Service$/", "AuthService", true},
		{"/Service$/", "ServiceMesh", false},
		{"/^Pay$/", "Pay", true},
		{"/^Pay$/", "Payment", false},
		{"/(?i)auth/", "AUTHSERVICE", true},
		{"//", "anything", true}, // 空正则匹配一切
	}
	for _, tt := range tests {
		m, err := xlog.ParseMatcher(tt.pattern)
		if err != nil {
			t.Fatalf("ParseMatcher(%q) error: %v", tt.pattern, err)
		}
		if got := m.Match(tt.logName); got != tt.want {
			t.Errorf("ParseMatcher(%q).Match(%q) = %v, want %v", tt.pattern, tt.logName, got, tt.want)
		}
	}
}

func TestParseMatcher_BadRegexp(t *testing.T) {
	_, err := xlog.ParseMatcher("/[unclosed/")
	if err == nil {
		t.Fatal("ParseMatcher() should reject invalid regexp")
	}
	if !strings.Contains(err.Error(), "/[unclosed/") {
		t.Errorf("error should quote the pattern: %v", err)
	}
}

func TestMatcher_ZeroValue(t *testing.T) {
	var m xlog.Matcher
	if !m.Match("anything") {
		t.Error("zero value matcher must match everything")
	}
	if m.String() != "" {
		t.Errorf("String() = %q, want empty", m.String())
	}
}

func TestMatcher_StringRoundTrips(t *testing.T) {
	for _, pattern := range []string{"Auth", "/^Auth/", "/", ""} {
		m, err := xlog.ParseMatcher(pattern)
		if err != nil {
			t.Fatalf("ParseMatcher(%q) error: %v", pattern, err)
		}
		if m.String() != pattern {
			t.Errorf("String() = %q, want %q", m.String(), pattern)
		}
	}
}

func TestMustMatcher_PanicsOnBadPattern(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustMatcher() should panic on invalid regexp")
		}
	}()
	xlog.MustMatcher("/[unclosed/")
}
