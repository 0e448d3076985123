package xchannel

import (
	"regexp"

	"github.com/omeyang/logkit/pkg/log/xlevel"
	"github.com/omeyang/logkit/pkg/log/xrecord"
)

// preformattedRe 匹配上游引擎已渲染过的消息形态：
// "2025-01-02 15:04:05,123 LEVEL [logger] 正文"。
// 毫秒分隔符兼容逗号和点号。
var preformattedRe = regexp.MustCompile(
	`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}[.,]\d{3}\s+([A-Za-z]+)\s+\[([^\]]*)\]\s+(.*)$`)

// ParsePreformatted 尝试把一条已渲染的消息反解为级别、名称和正文
//
// 第二段必须能被 xlevel.ParseLevel 严格识别，否则整体判定为
// 非预格式化消息（ok 为 false）。这是针对既有输出形态的启发式，
// 形态变化时静默回落到原始值，不构成稳定契约。
func ParsePreformatted(message string) (lvl xlevel.Level, logger, text string, ok bool) {
	m := preformattedRe.FindStringSubmatch(message)
	if m == nil {
		return 0, "", "", false
	}
	parsed, err := xlevel.ParseLevel(m[1])
	if err != nil {
		return 0, "", "", false
	}
	return parsed, m[2], m[3], true
}

// RecoverRecord 对消息做预格式化反解
//
// 反解成功时返回替换了级别、名称和消息正文的副本（其余字段不变），
// 避免双重格式化；失败时原样返回。
func RecoverRecord(rec xrecord.Record) xrecord.Record {
	lvl, logger, text, ok := ParsePreformatted(rec.Message)
	if !ok {
		return rec
	}
	out := rec
	out.Level = lvl
	out.LogName = logger
	out.Message = text
	return out
}
