package diag

import (
	"log/slog"
	"os"
	"sync/atomic"
)

// stderrLogger 默认兜底输出，绕开管道本身直接写 stderr
var stderrLogger = slog.New(slog.NewTextHandler(os.Stderr, nil))

// stderrReport 默认错误回调
func stderrReport(err error) {
	stderrLogger.Error("log pipeline internal failure", "error", err)
}

// defaultSink 包级默认 Sink，nil 接收者的兜底目标
var defaultSink = NewSink(nil)

// Sink 内部错误的兜底出口
//
// 设计决策: CAS 保护导致并发期间部分错误跳过回调，这是有意为之。
// errorCount 仍计入所有错误（用于监控），回调定位为 best-effort 通知。
// 异步队列方案会增加复杂度且不符合兜底路径的轻量定位。
type Sink struct {
	onError    func(error)
	errorCount atomic.Uint64
	inHandler  atomic.Bool // 防止回调递归触发上报
}

// NewSink 创建兜底错误出口
//
// onError 为 nil 时使用默认回调：以 slog 文本格式写进程 stderr。
// 回调不得写回同一条日志管道，否则可能递归。
func NewSink(onError func(error)) *Sink {
	s := &Sink{onError: onError}
	if s.onError == nil {
		s.onError = stderrReport
	}
	return s
}

// Report 上报一条内部错误
//
// nil 错误被忽略。回调 panic 被捕获并计入错误计数，
// 不会中断调用方的主流程。nil 接收者回落到包级默认 Sink。
func (s *Sink) Report(err error) {
	if err == nil {
		return
	}
	if s == nil {
		defaultSink.Report(err)
		return
	}
	s.errorCount.Add(1)
	if s.inHandler.CompareAndSwap(false, true) {
		defer s.inHandler.Store(false)
		s.safeReport(err)
	}
}

// safeReport 隔离回调 panic，防止扩散到业务调用链
func (s *Sink) safeReport(err error) {
	defer func() {
		if recover() != nil {
			s.errorCount.Add(1)
		}
	}()
	s.onError(err)
}

// Count 返回累计内部错误数（含回调 panic）
func (s *Sink) Count() uint64 {
	if s == nil {
		return defaultSink.Count()
	}
	return s.errorCount.Load()
}
