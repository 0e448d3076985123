package xrecord

import (
	"errors"
	"time"

	"github.com/omeyang/logkit/pkg/log/xlevel"
)

// Record 一次日志事件的不可变描述。
// 字段均为只读约定：管道各层共享同一记录值，任何修改都必须通过
// 拷贝方法产生新记录。
type Record struct {
	// Level 记录级别。
	Level xlevel.Level
	// Time 调用点捕获的墙钟时间。
	Time time.Time
	// LogName logger 的身份名称（显式字符串或类型派生）。
	LogName string
	// Message 已物化的消息文本。
	Message string
	// Err 可选的关联错误。不变式：Args 不包含此值。
	Err error
	// Args 有序的附加参数，值不透明，展示时经 ArgFormatter 转换。
	Args []any
	// Appender 产生此副本的 appender 名称。路由层在分发前设置，
	// 原始记录上为空。
	Appender string
}

// New 构造记录并捕获当前时间。
// 首个参数为 error 类型时提升为 Err，其余参数保持原序；
// 这是记录级别的错误提升，任何级别都适用。
func New(lvl xlevel.Level, logName, msg string, args ...any) Record {
	rec := Record{
		Level:   lvl,
		Time:    time.Now(),
		LogName: logName,
		Message: msg,
		Args:    args,
	}
	if len(args) > 0 {
		if err, ok := args[0].(error); ok && err != nil {
			rec.Err = err
			rec.Args = args[1:]
		}
	}
	return rec
}

// NewWithCause 构造带显式错误的记录。
// 调用方保证 err 不出现在 args 中（门面层经 SplitCause 拆分后满足）。
func NewWithCause(lvl xlevel.Level, logName, msg string, err error, args ...any) Record {
	return Record{
		Level:   lvl,
		Time:    time.Now(),
		LogName: logName,
		Message: msg,
		Err:     err,
		Args:    args,
	}
}

// WithAppender 返回设置了 appender 标记的记录副本。
func (r Record) WithAppender(name string) Record {
	r.Appender = name
	return r
}

// WithMessage 返回替换了消息文本的记录副本。
// 预格式化恢复（xchannel）重建消息时使用。
func (r Record) WithMessage(msg string) Record {
	r.Message = msg
	return r
}

// SplitCause 检查参数列表首元素是否为错误参数。
//
// 这是门面层 error/fatal 调用形状的窄类型守卫：
//   - 首参为非 nil error：返回该错误与其余参数
//   - 首参为字符串：包装为 error 返回（与 Error 对象统一下游处理）
//   - 其他情况：返回 nil 与原参数列表
//
// 除此之外管道不做任何参数类型探测。
func SplitCause(args []any) (error, []any) {
	if len(args) == 0 {
		return nil, args
	}
	switch v := args[0].(type) {
	case error:
		if v != nil {
			return v, args[1:]
		}
	case string:
		return errors.New(v), args[1:]
	}
	return nil, args
}
