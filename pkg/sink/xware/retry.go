package xware

import (
	"context"
	"sync/atomic"
	"time"

	retry "github.com/avast/retry-go/v5"

	"github.com/omeyang/logkit/pkg/log/xqueue"
	"github.com/omeyang/logkit/pkg/log/xrecord"
)

// 重试默认参数。
const (
	// DefaultRetryAttempts 默认总尝试次数（含首次）。
	DefaultRetryAttempts = 3

	// DefaultRetryDelay 默认基础退避间隔。
	DefaultRetryDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay 默认退避间隔上限。
	DefaultRetryMaxDelay = 5 * time.Second

	// DefaultRetryMaxJitter 默认随机抖动上限。
	DefaultRetryMaxJitter = 100 * time.Millisecond
)

// retryOptions 重试中间件配置。
type retryOptions struct {
	attempts  uint
	delay     time.Duration
	maxDelay  time.Duration
	maxJitter time.Duration
	retryIf   func(error) bool
}

// RetryOption 配置重试中间件。
type RetryOption func(*retryOptions)

// WithRetryAttempts 设置总尝试次数（含首次），零值忽略。
func WithRetryAttempts(n uint) RetryOption {
	return func(o *retryOptions) {
		if n > 0 {
			o.attempts = n
		}
	}
}

// WithRetryDelay 设置基础退避间隔，非正值忽略。
func WithRetryDelay(d time.Duration) RetryOption {
	return func(o *retryOptions) {
		if d > 0 {
			o.delay = d
		}
	}
}

// WithRetryMaxDelay 设置退避间隔上限，非正值忽略。
func WithRetryMaxDelay(d time.Duration) RetryOption {
	return func(o *retryOptions) {
		if d > 0 {
			o.maxDelay = d
		}
	}
}

// WithRetryMaxJitter 设置每次退避附加的随机抖动上限，非正值忽略。
func WithRetryMaxJitter(d time.Duration) RetryOption {
	return func(o *retryOptions) {
		if d > 0 {
			o.maxJitter = d
		}
	}
}

// WithRetryIf 设置错误甄别函数，仅对返回 true 的错误重试，nil 忽略。
//
// 默认对所有错误重试。投递器关闭这类永久性错误适合在这里排除，
// 避免对注定失败的记录空转退避。
func WithRetryIf(fn func(error) bool) RetryOption {
	return func(o *retryOptions) {
		if fn != nil {
			o.retryIf = fn
		}
	}
}

// RetryStats 重试中间件的累计计数。
type RetryStats struct {
	// Retries 额外重试的总次数，不含每条记录的首次尝试。
	Retries int64

	// Exhausted 重试耗尽后仍然失败的记录数。
	Exhausted int64
}

// Retry 为下一级消费者附加指数退避重试。
//
// 每条记录最多尝试 attempts 次，重试间隔按指数增长并叠加随机抖动，
// ctx 取消时立即放弃。最终失败把最后一次的错误交还队列。
//
// 设计决策: 重试选项在每次 Consume 时重建，Retry 自身不含可变共享
// 状态，天然并发安全。
type Retry struct {
	next      xqueue.Consumer
	opts      retryOptions
	retries   atomic.Int64
	exhausted atomic.Int64
}

// NewRetry 创建重试中间件。
func NewRetry(next xqueue.Consumer, opts ...RetryOption) (*Retry, error) {
	if next == nil {
		return nil, ErrNilConsumer
	}
	o := retryOptions{
		attempts:  DefaultRetryAttempts,
		delay:     DefaultRetryDelay,
		maxDelay:  DefaultRetryMaxDelay,
		maxJitter: DefaultRetryMaxJitter,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Retry{next: next, opts: o}, nil
}

// Consume 投递一条记录，失败时按配置重试。
func (r *Retry) Consume(ctx context.Context, rec xrecord.Record) error {
	opts := []retry.Option{
		retry.Context(ctx),
		retry.Attempts(r.opts.attempts),
		retry.Delay(r.opts.delay),
		retry.MaxDelay(r.opts.maxDelay),
		retry.MaxJitter(r.opts.maxJitter),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(uint, error) { r.retries.Add(1) }),
	}
	if r.opts.retryIf != nil {
		opts = append(opts, retry.RetryIf(r.opts.retryIf))
	}

	err := retry.New(opts...).Do(func() error {
		return r.next.Consume(ctx, rec)
	})
	if err != nil {
		r.exhausted.Add(1)
	}
	return err
}

// Stats 返回累计计数。
func (r *Retry) Stats() RetryStats {
	return RetryStats{
		Retries:   r.retries.Load(),
		Exhausted: r.exhausted.Load(),
	}
}

var _ xqueue.Consumer = (*Retry)(nil)
