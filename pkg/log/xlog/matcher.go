package xlog

import (
	"fmt"
	"regexp"
	"strings"
)

// Matcher 对 logger 名称的单条匹配规则：子串包含或正则。
//
// 零值等价于空子串，匹配任何名称；"不过滤"的正确表达是
// 让 Appender.Groups 保持为空，而不是放一个零值 Matcher。
type Matcher struct {
	raw string
	re  *regexp.Regexp
}

// ParseMatcher 解析一条匹配规则。
//
// 形如 /expr/ 的输入按正则编译（RE2 语法），编译失败返回错误；
// 其余输入按子串包含匹配。单独的 "/" 不构成正则定界，按子串处理。
func ParseMatcher(s string) (Matcher, error) {
	if len(s) >= 2 && strings.HasPrefix(s, "/") && strings.HasSuffix(s, "/") {
		re, err := regexp.Compile(s[1 : len(s)-1])
		if err != nil {
			return Matcher{}, fmt.Errorf("xlog: matcher %q: %w", s, err)
		}
		return Matcher{raw: s, re: re}, nil
	}
	return Matcher{raw: s}, nil
}

// MustMatcher 是 ParseMatcher 的 panic 版本，用于包级变量和测试。
func MustMatcher(s string) Matcher {
	m, err := ParseMatcher(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Match 报告 logger 名称是否命中此规则。
func (m Matcher) Match(logName string) bool {
	if m.re != nil {
		return m.re.MatchString(logName)
	}
	return strings.Contains(logName, m.raw)
}

// String 返回规则的原始书写形式。
func (m Matcher) String() string {
	return m.raw
}
