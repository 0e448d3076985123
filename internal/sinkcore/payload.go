package sinkcore

import (
	"encoding/json"
	"time"

	"github.com/omeyang/logkit/pkg/log/xrecord"
)

// Payload 出站投递载荷：记录脱离管道后的外化形态。
// 所有 sink 投递同一形态，下游消费方无须关心载荷来自哪种 sink。
type Payload struct {
	// EventID 全局唯一事件标识（UUID），用于下游去重。
	EventID string `json:"event_id,omitempty"`

	// Seq 趋势递增的序列号（Sonyflake），用于同源排序。
	// 生成失败时缺席，EventID 仍保证唯一性。
	Seq int64 `json:"seq,omitempty"`

	// Time 记录时间，RFC 3339 纳秒精度。
	Time string `json:"time"`

	// Level 级别词（TRACE..FATAL）。
	Level string `json:"level"`

	// Logger 记录来源的 logger 名称。
	Logger string `json:"logger"`

	// Message 消息文本。
	Message string `json:"message"`

	// Error 关联错误的文本形态，无错误时省略。
	Error string `json:"error,omitempty"`

	// Args 经格式化的附加参数，保持记录内顺序。
	Args []string `json:"args,omitempty"`

	// Appender 产生此副本的 appender 名称（路由出处）。
	Appender string `json:"appender,omitempty"`
}

// FromRecord 把管道记录外化为投递载荷，标识由 ids 提供。
// ids 为 nil 时载荷不携带 EventID/Seq，适用于无需去重排序的通路。
func FromRecord(rec xrecord.Record, ids *IDSource) Payload {
	p := Payload{
		Time:     rec.Time.Format(time.RFC3339Nano),
		Level:    rec.Level.String(),
		Logger:   rec.LogName,
		Message:  rec.Message,
		Args:     xrecord.FormatArgs(rec.Args, nil),
		Appender: rec.Appender,
	}
	if rec.Err != nil {
		p.Error = rec.Err.Error()
	}
	if ids != nil {
		p.EventID, p.Seq = ids.Next()
	}
	return p
}

// Encode 把载荷编码为单行 JSON。
// 字段均为纯量与字符串切片，Marshal 不会失败。
func (p Payload) Encode() []byte {
	data, _ := json.Marshal(p)
	return data
}

// PartitionKey 返回分区键：同一 logger 的载荷落入同一分区，
// 保持单 logger 视角的投递顺序。logger 缺席时退化为 appender 名。
func (p Payload) PartitionKey() string {
	if p.Logger != "" {
		return p.Logger
	}
	return p.Appender
}
