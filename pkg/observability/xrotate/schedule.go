package xrotate

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/robfig/cron/v3"
)

// scheduleConfig 定时轮转配置
type scheduleConfig struct {
	onError func(error)
}

// ScheduleOption 定时轮转配置选项函数
type ScheduleOption func(*scheduleConfig)

// WithRotateErrorHandler 设置定时轮转失败时的错误回调
//
// 约束与 WithOnError 相同：回调不得向同一 Rotator 写入数据。
// nil 回调会被忽略。
func WithRotateErrorHandler(fn func(error)) ScheduleOption {
	return func(c *scheduleConfig) {
		if fn != nil {
			c.onError = fn
		}
	}
}

// Scheduled 按 cron 表达式定时触发轮转的包装器
//
// 包装任意 Rotator，在计划时刻调用其 Rotate 方法。写入路径直接
// 委托给内层轮转器，不引入额外的锁或拷贝。与按大小轮转叠加即可
// 得到"超过大小就切、到点也切"的组合策略。
type Scheduled struct {
	inner  Rotator
	cron   *cron.Cron
	closed atomic.Bool
}

// NewScheduled 创建定时轮转包装器并立即启动调度
//
// spec 使用标准 5 字段 cron 表达式或 @daily、@midnight 等描述符。
// inner 为 nil 时返回 ErrNilRotator，spec 无法解析时返回 ErrInvalidSchedule。
//
// 典型用法是在按大小轮转之外叠加午夜强制切割：
//
//	rot, _ := xrotate.NewLumberjack("/var/log/app/app.log")
//	sched, _ := xrotate.NewScheduled(rot, "@midnight")
//	defer sched.Close()
func NewScheduled(inner Rotator, spec string, opts ...ScheduleOption) (*Scheduled, error) {
	if inner == nil {
		return nil, ErrNilRotator
	}

	cfg := scheduleConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	s := &Scheduled{
		inner: inner,
		cron:  cron.New(),
	}

	// 关闭竞态下的 Rotate 会返回 ErrClosed，不算轮转失败，不上报
	if _, err := s.cron.AddFunc(spec, func() {
		if err := s.Rotate(); err != nil && !errors.Is(err, ErrClosed) && cfg.onError != nil {
			cfg.onError(err)
		}
	}); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidSchedule, spec, err)
	}

	s.cron.Start()
	return s, nil
}

// Write 写入日志数据，直接委托给内层轮转器
func (s *Scheduled) Write(p []byte) (int, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}
	return s.inner.Write(p)
}

// Rotate 立即触发一次轮转
func (s *Scheduled) Rotate() error {
	if s.closed.Load() {
		return ErrClosed
	}
	return s.inner.Rotate()
}

// Close 停止调度并关闭内层轮转器
//
// 等待正在执行的定时轮转任务完成后才关闭内层，
// 避免关闭后仍有 Rotate 在途。重复调用返回 [ErrClosed]。
func (s *Scheduled) Close() error {
	if s.closed.Swap(true) {
		return ErrClosed
	}
	<-s.cron.Stop().Done()
	return s.inner.Close()
}

// 确保实现了接口
var _ Rotator = (*Scheduled)(nil)
