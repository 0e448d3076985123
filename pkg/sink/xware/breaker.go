package xware

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/omeyang/logkit/pkg/log/xqueue"
	"github.com/omeyang/logkit/pkg/log/xrecord"
)

// 熔断默认参数。
const (
	// DefaultBreakerName 默认熔断器名字。
	DefaultBreakerName = "logkit"

	// DefaultBreakerThreshold 默认连续失败阈值。
	DefaultBreakerThreshold = 5

	// DefaultBreakerTimeout 默认打开状态的冷却时长。
	DefaultBreakerTimeout = 60 * time.Second
)

// breakerOptions 熔断中间件配置。
type breakerOptions struct {
	name      string
	threshold uint32
	timeout   time.Duration
	onChange  func(name string, from, to gobreaker.State)
}

// BreakerOption 配置熔断中间件。
type BreakerOption func(*breakerOptions)

// WithBreakerName 设置熔断器名字，空值忽略。
func WithBreakerName(name string) BreakerOption {
	return func(o *breakerOptions) {
		if name != "" {
			o.name = name
		}
	}
}

// WithBreakerThreshold 设置打开熔断的连续失败阈值，零值忽略。
func WithBreakerThreshold(n uint32) BreakerOption {
	return func(o *breakerOptions) {
		if n > 0 {
			o.threshold = n
		}
	}
}

// WithBreakerTimeout 设置打开状态的冷却时长，非正值忽略。
func WithBreakerTimeout(d time.Duration) BreakerOption {
	return func(o *breakerOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithBreakerOnStateChange 设置状态变更回调，nil 忽略。
//
// 回调在熔断器内部锁内同步执行，不要在回调里再调用本中间件。
func WithBreakerOnStateChange(fn func(name string, from, to gobreaker.State)) BreakerOption {
	return func(o *breakerOptions) {
		if fn != nil {
			o.onChange = fn
		}
	}
}

// BreakerStats 熔断中间件的累计计数。
type BreakerStats struct {
	// Dropped 熔断打开期间被快速拒绝的记录数。
	Dropped int64
}

// Breaker 为下一级消费者附加熔断保护。
//
// 连续失败达到阈值后熔断器打开，冷却期内的记录被快速拒绝并返回
// 包装了 ErrOpen 的错误，交给队列的失败隔离处理。冷却结束后放行
// 单条探测记录，探测成功则恢复正常。
type Breaker struct {
	next    xqueue.Consumer
	cb      *gobreaker.CircuitBreaker[any]
	dropped atomic.Int64
}

// NewBreaker 创建熔断中间件。
func NewBreaker(next xqueue.Consumer, opts ...BreakerOption) (*Breaker, error) {
	if next == nil {
		return nil, ErrNilConsumer
	}
	o := breakerOptions{
		name:      DefaultBreakerName,
		threshold: DefaultBreakerThreshold,
		timeout:   DefaultBreakerTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	threshold := o.threshold
	settings := gobreaker.Settings{
		Name:        o.name,
		MaxRequests: 1,
		Timeout:     o.timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
	}
	if o.onChange != nil {
		settings.OnStateChange = o.onChange
	}

	return &Breaker{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[any](settings),
	}, nil
}

// Consume 投递一条记录，熔断打开时快速拒绝。
func (b *Breaker) Consume(ctx context.Context, rec xrecord.Record) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.next.Consume(ctx, rec)
	})
	// 直接比较哨兵而不用 errors.Is：下游链路里可能嵌套别的熔断器，
	// errors.Is 会把内层包装出的打开状态误判成本层。
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		b.dropped.Add(1)
		return fmt.Errorf("%w: %w", ErrOpen, err)
	}
	return err
}

// State 返回熔断器当前状态。
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

// Stats 返回累计计数。
func (b *Breaker) Stats() BreakerStats {
	return BreakerStats{Dropped: b.dropped.Load()}
}

var _ xqueue.Consumer = (*Breaker)(nil)
