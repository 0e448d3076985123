package xware

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"

	"github.com/omeyang/logkit/internal/diag"
	"github.com/omeyang/logkit/pkg/log/xqueue"
	"github.com/omeyang/logkit/pkg/log/xrecord"
)

// 独占默认参数。
const (
	// DefaultExclusiveKey 默认锁键。
	DefaultExclusiveKey = "logkit:exclusive"

	// DefaultExclusiveTTL 默认锁的持有时长。
	DefaultExclusiveTTL = 30 * time.Second
)

// exclusiveOptions 独占中间件配置。
type exclusiveOptions struct {
	key     string
	ttl     time.Duration
	onError func(error)
}

// ExclusiveOption 配置独占中间件。
type ExclusiveOption func(*exclusiveOptions)

// WithExclusiveKey 设置锁键，空值忽略。
// 同一条投递链路的所有副本必须使用同一个锁键。
func WithExclusiveKey(key string) ExclusiveOption {
	return func(o *exclusiveOptions) {
		if key != "" {
			o.key = key
		}
	}
}

// WithExclusiveTTL 设置锁的持有时长，非正值忽略。
// 剩余时长低于三分之一时自动续期，抢占失败后同样间隔内不再访问 Redis。
func WithExclusiveTTL(d time.Duration) ExclusiveOption {
	return func(o *exclusiveOptions) {
		if d > 0 {
			o.ttl = d
		}
	}
}

// WithExclusiveOnError 设置 Redis 故障回调，nil 忽略。
// 锁被其他副本持有属正常状态，不会触发回调。
func WithExclusiveOnError(fn func(error)) ExclusiveOption {
	return func(o *exclusiveOptions) {
		if fn != nil {
			o.onError = fn
		}
	}
}

// ExclusiveStats 独占中间件的当前状态与累计计数。
type ExclusiveStats struct {
	// Skipped 未持有锁而被跳过的记录数。
	Skipped int64

	// Holding 当前是否持有锁。
	Holding bool
}

// Exclusive 用分布式锁保证同一时刻最多一个副本向下游投递。
//
// 首条记录到达时非阻塞抢锁，抢到后持续持有并在临近过期时自动续期，
// 未抢到锁的副本丢弃记录并计数，由持锁副本投递。关闭时释放锁，
// 其他副本在下一次抢占时接管。
//
// 抢占失败后 TTL 的三分之一时间内不再访问 Redis，非持锁副本以
// 本地判断快速跳过，接管延迟以此为上限。
//
// 设计决策: Redis 不可达时跳过而不是放行。无法确认独占就不投递，
// 避免多副本重复写下游，故障通过 OnError 回调上报。
type Exclusive struct {
	next   xqueue.Consumer
	mutex  *redsync.Mutex
	ttl    time.Duration
	faults *diag.Sink

	mu          sync.Mutex
	holding     bool
	nextAttempt time.Time

	skipped atomic.Int64
	closed  atomic.Bool
}

// NewExclusive 创建独占中间件。调用方负责在停用后调用 Close 释放锁。
// 客户端的生命周期由调用者管理。
func NewExclusive(next xqueue.Consumer, client redis.UniversalClient, opts ...ExclusiveOption) (*Exclusive, error) {
	if next == nil {
		return nil, ErrNilConsumer
	}
	if client == nil {
		return nil, ErrNilClient
	}
	o := exclusiveOptions{
		key: DefaultExclusiveKey,
		ttl: DefaultExclusiveTTL,
	}
	for _, opt := range opts {
		opt(&o)
	}

	rs := redsync.New(goredis.NewPool(client))
	mutex := rs.NewMutex(o.key,
		redsync.WithExpiry(o.ttl),
		redsync.WithTries(1),
	)

	return &Exclusive{
		next:   next,
		mutex:  mutex,
		ttl:    o.ttl,
		faults: diag.NewSink(o.onError),
	}, nil
}

// Consume 投递一条记录，未持有锁时跳过。
func (e *Exclusive) Consume(ctx context.Context, rec xrecord.Record) error {
	if e.closed.Load() {
		return ErrClosed
	}
	if !e.ensureHeld(ctx) {
		e.skipped.Add(1)
		return nil
	}
	return e.next.Consume(ctx, rec)
}

// ensureHeld 保证当前持有锁，必要时续期或重新抢占。
func (e *Exclusive) ensureHeld(ctx context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	// Close 和 Consume 并发时不再抢锁，否则锁会泄漏到过期
	if e.closed.Load() {
		return false
	}

	if e.holding {
		if time.Until(e.mutex.Until()) > e.ttl/3 {
			return true
		}
		if ok, err := e.mutex.ExtendContext(ctx); err == nil && ok {
			return true
		}
		// 续期失败视为锁已丢失，立刻回到抢占路径
		e.holding = false
	}

	now := time.Now()
	if now.Before(e.nextAttempt) {
		return false
	}

	err := e.mutex.TryLockContext(ctx)
	if err == nil {
		e.holding = true
		return true
	}
	e.nextAttempt = now.Add(e.ttl / 3)

	// redsync 不传递 context 错误，取消场景单独识别，不算后端故障
	var taken *redsync.ErrTaken
	if !errors.As(err, &taken) && ctx.Err() == nil {
		e.faults.Report(fmt.Errorf("xware: acquire exclusive lock: %w", err))
	}
	return false
}

// Stats 返回当前状态与累计计数。
func (e *Exclusive) Stats() ExclusiveStats {
	e.mu.Lock()
	holding := e.holding
	e.mu.Unlock()
	return ExclusiveStats{
		Skipped: e.skipped.Load(),
		Holding: holding,
	}
}

// Close 释放持有的锁，未持锁时为空操作。nil ctx 使用 Background。
// 重复调用返回 ErrClosed。
func (e *Exclusive) Close(ctx context.Context) error {
	if e.closed.Swap(true) {
		return ErrClosed
	}
	if ctx == nil {
		ctx = context.Background()
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.holding {
		return nil
	}
	e.holding = false

	// ok 为 false 表示锁已过期或被他人持有，无需追究
	if _, err := e.mutex.UnlockContext(ctx); err != nil {
		return fmt.Errorf("xware: release exclusive lock: %w", err)
	}
	return nil
}

var _ xqueue.Consumer = (*Exclusive)(nil)
