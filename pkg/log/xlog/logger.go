package xlog

import (
	"github.com/omeyang/logkit/pkg/log/xrecord"
)

// Logger 日志门面，经 Registry.GetLogger / LoggerOf 获取。
//
// 所有记录方法 fire-and-forget：门控未放行时零开销返回，放行后
// 同步路由，管道内部的任何失败都不会传播回调用点。
// 同名 Logger 是同一实例，可被任意多个 goroutine 共享。
type Logger struct {
	name string
	reg  *Registry
}

// Name 返回 logger 的身份名称。
func (l *Logger) Name() string {
	return l.name
}

// Enabled 报告该级别当前是否会被门控放行。
// 昂贵参数的构造可先做此检查，或直接使用 LogFunc。
func (l *Logger) Enabled(lvl Level) bool {
	return l.reg.enabled(l.name, lvl)
}

// Trace 记录 Trace 级别日志。
func (l *Logger) Trace(msg string, args ...any) {
	l.emit(LevelTrace, msg, args)
}

// Debug 记录 Debug 级别日志。
func (l *Logger) Debug(msg string, args ...any) {
	l.emit(LevelDebug, msg, args)
}

// Info 记录 Info 级别日志。
func (l *Logger) Info(msg string, args ...any) {
	l.emit(LevelInfo, msg, args)
}

// Warn 记录 Warn 级别日志。
func (l *Logger) Warn(msg string, args ...any) {
	l.emit(LevelWarn, msg, args)
}

// Error 记录 Error 级别日志。
//
// 调用形状守卫：首个参数是 error 或字符串时被提升为记录的错误原因
// （字符串先包装为 error），其余参数保持原序；需要避开这条推断时
// 使用 ErrorCause 显式传递原因。
func (l *Logger) Error(msg string, args ...any) {
	l.emitCause(LevelError, msg, args)
}

// Fatal 记录 Fatal 级别日志，调用形状守卫与 Error 相同。
//
// Fatal 只是最高严重级别，参与级别过滤与输出流选择；
// 不调用 os.Exit，也不 panic。
func (l *Logger) Fatal(msg string, args ...any) {
	l.emitCause(LevelFatal, msg, args)
}

// ErrorCause 记录带显式错误原因的 Error 级别日志。
// err 可为 nil；args 不做任何类型推断。
func (l *Logger) ErrorCause(err error, msg string, args ...any) {
	l.cause(LevelError, err, msg, args)
}

// FatalCause 记录带显式错误原因的 Fatal 级别日志。
func (l *Logger) FatalCause(err error, msg string, args ...any) {
	l.cause(LevelFatal, err, msg, args)
}

// Log 按给定级别记录日志。
//
// 不应用 Error/Fatal 的字符串提升；error 类型的首参仍按记录
// 不变式提升为错误原因。非法级别与 LevelOff 的调用被忽略。
func (l *Logger) Log(lvl Level, msg string, args ...any) {
	l.emit(lvl, msg, args)
}

// LogFunc 按给定级别记录延迟构造的消息。
//
// msgFn 只在门控放行后执行一次，被过滤的调用不产生消息构造
// 开销；msgFn 为 nil 时消息为空串。参数语义与 Log 一致。
func (l *Logger) LogFunc(lvl Level, msgFn func() string, args ...any) {
	if !l.reg.enabled(l.name, lvl) {
		return
	}
	var msg string
	if msgFn != nil {
		msg = msgFn()
	}
	l.reg.write(xrecord.New(lvl, l.name, msg, args...))
}

func (l *Logger) emit(lvl Level, msg string, args []any) {
	if !l.reg.enabled(l.name, lvl) {
		return
	}
	l.reg.write(xrecord.New(lvl, l.name, msg, args...))
}

// emitCause Error/Fatal 的调用形状守卫：经 SplitCause 拆分首参。
func (l *Logger) emitCause(lvl Level, msg string, args []any) {
	if !l.reg.enabled(l.name, lvl) {
		return
	}
	err, rest := xrecord.SplitCause(args)
	l.reg.write(xrecord.NewWithCause(lvl, l.name, msg, err, rest...))
}

func (l *Logger) cause(lvl Level, err error, msg string, args []any) {
	if !l.reg.enabled(l.name, lvl) {
		return
	}
	l.reg.write(xrecord.NewWithCause(lvl, l.name, msg, err, args...))
}
