package xware

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"

	"github.com/omeyang/logkit/internal/diag"
	"github.com/omeyang/logkit/pkg/log/xqueue"
	"github.com/omeyang/logkit/pkg/log/xrecord"
)

// 限流默认参数。
const (
	// DefaultThrottleLimit 默认每个时间窗允许的记录数。
	DefaultThrottleLimit = 100

	// DefaultThrottleWindow 默认时间窗长度。
	DefaultThrottleWindow = time.Second

	// DefaultThrottleMaxKeys 本地后端保留的限流键数上限。
	DefaultThrottleMaxKeys = 1024

	// DefaultThrottlePrefix Redis 后端的键前缀。
	DefaultThrottlePrefix = "logkit:throttle:"
)

// throttleOptions 限流中间件配置。
type throttleOptions struct {
	limit   int
	window  time.Duration
	maxKeys int
	prefix  string
	client  redis.UniversalClient
	onError func(error)
}

// ThrottleOption 配置限流中间件。
type ThrottleOption func(*throttleOptions)

// WithThrottleLimit 设置每个时间窗允许的记录数，非正值忽略。
func WithThrottleLimit(n int) ThrottleOption {
	return func(o *throttleOptions) {
		if n > 0 {
			o.limit = n
		}
	}
}

// WithThrottleWindow 设置时间窗长度，非正值忽略。
func WithThrottleWindow(d time.Duration) ThrottleOption {
	return func(o *throttleOptions) {
		if d > 0 {
			o.window = d
		}
	}
}

// WithThrottleMaxKeys 设置本地后端保留的限流键数上限，非正值忽略。
// 仅对本地后端生效。
func WithThrottleMaxKeys(n int) ThrottleOption {
	return func(o *throttleOptions) {
		if n > 0 {
			o.maxKeys = n
		}
	}
}

// WithThrottleRedis 改用 Redis 后端做跨进程配额，nil 忽略。
// 客户端的生命周期由调用者管理。
func WithThrottleRedis(client redis.UniversalClient) ThrottleOption {
	return func(o *throttleOptions) {
		if client != nil {
			o.client = client
		}
	}
}

// WithThrottlePrefix 设置 Redis 后端的键前缀，空值忽略。
func WithThrottlePrefix(prefix string) ThrottleOption {
	return func(o *throttleOptions) {
		if prefix != "" {
			o.prefix = prefix
		}
	}
}

// WithThrottleOnError 设置后端故障回调，nil 忽略。
func WithThrottleOnError(fn func(error)) ThrottleOption {
	return func(o *throttleOptions) {
		if fn != nil {
			o.onError = fn
		}
	}
}

// ThrottleStats 限流中间件的累计计数。
type ThrottleStats struct {
	// Shed 超出速率被丢弃的记录数。
	Shed int64
}

// throttleBackend 抽象限流判定后端。
type throttleBackend interface {
	allow(ctx context.Context, key string) (bool, error)
}

// Throttle 按键对记录限速，超出配额的部分直接丢弃。
//
// 限流键优先取记录的日志器名，缺省时退到投递器名，仍为空则共享
// 全局桶。默认使用进程内令牌桶，配置 Redis 后端后改用跨进程配额。
//
// 设计决策: 后端故障时放行而不是丢弃，限流器自身失效不应放大成
// 日志丢失。故障通过 OnError 回调上报。
type Throttle struct {
	next    xqueue.Consumer
	backend throttleBackend
	faults  *diag.Sink
	shed    atomic.Int64
}

// NewThrottle 创建限流中间件。
func NewThrottle(next xqueue.Consumer, opts ...ThrottleOption) (*Throttle, error) {
	if next == nil {
		return nil, ErrNilConsumer
	}
	o := throttleOptions{
		limit:   DefaultThrottleLimit,
		window:  DefaultThrottleWindow,
		maxKeys: DefaultThrottleMaxKeys,
		prefix:  DefaultThrottlePrefix,
	}
	for _, opt := range opts {
		opt(&o)
	}

	var backend throttleBackend
	if o.client != nil {
		backend = newRedisThrottle(o.client, o.prefix, o.limit, o.window)
	} else {
		backend = newLocalThrottle(o.limit, o.window, o.maxKeys)
	}

	return &Throttle{
		next:    next,
		backend: backend,
		faults:  diag.NewSink(o.onError),
	}, nil
}

// throttleKey 推导记录的限流键。
func throttleKey(rec xrecord.Record) string {
	if rec.LogName != "" {
		return rec.LogName
	}
	return rec.Appender
}

// Consume 投递一条记录，超出速率的记录被丢弃。
func (t *Throttle) Consume(ctx context.Context, rec xrecord.Record) error {
	allowed, err := t.backend.allow(ctx, throttleKey(rec))
	if err != nil {
		t.faults.Report(fmt.Errorf("xware: throttle backend: %w", err))
		return t.next.Consume(ctx, rec)
	}
	if !allowed {
		t.shed.Add(1)
		return nil
	}
	return t.next.Consume(ctx, rec)
}

// Stats 返回累计计数。
func (t *Throttle) Stats() ThrottleStats {
	return ThrottleStats{Shed: t.shed.Load()}
}

var _ xqueue.Consumer = (*Throttle)(nil)

// =============================================================================
// 本地后端
// =============================================================================

// tokenBucket 单键令牌桶。
type tokenBucket struct {
	mu         sync.Mutex
	tokens     float64
	limit      int
	window     time.Duration
	lastUpdate time.Time
}

func newTokenBucket(limit int, window time.Duration) *tokenBucket {
	return &tokenBucket{
		tokens:     float64(limit),
		limit:      limit,
		window:     window,
		lastUpdate: time.Now(),
	}
}

// take 尝试取走一枚令牌。
func (b *tokenBucket) take() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(b.lastUpdate)
	rate := float64(b.limit) / b.window.Seconds()
	b.tokens += rate * elapsed.Seconds()
	if b.tokens > float64(b.limit) {
		b.tokens = float64(b.limit)
	}
	b.lastUpdate = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// localThrottle 进程内限流后端，键状态由 LRU 限界。
//
// 桶在容量压力下被淘汰后，下一条同键记录会拿到一只满额新桶，
// 短暂多放行少量记录，属可接受的近似。
type localThrottle struct {
	mu      sync.Mutex
	buckets *expirable.LRU[string, *tokenBucket]
	limit   int
	window  time.Duration
}

func newLocalThrottle(limit int, window time.Duration, maxKeys int) *localThrottle {
	// TTL 为零时底层不启动清理协程，条目仅按容量淘汰
	return &localThrottle{
		buckets: expirable.NewLRU[string, *tokenBucket](maxKeys, nil, 0),
		limit:   limit,
		window:  window,
	}
}

func (l *localThrottle) allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	bucket, ok := l.buckets.Get(key)
	if !ok {
		bucket = newTokenBucket(l.limit, l.window)
		l.buckets.Add(key, bucket)
	}
	l.mu.Unlock()

	return bucket.take(), nil
}

// =============================================================================
// Redis 后端
// =============================================================================

// redisThrottle 跨进程限流后端。
type redisThrottle struct {
	limiter *redis_rate.Limiter
	prefix  string
	limit   redis_rate.Limit
}

func newRedisThrottle(client redis.UniversalClient, prefix string, limit int, window time.Duration) *redisThrottle {
	return &redisThrottle{
		limiter: redis_rate.NewLimiter(client),
		prefix:  prefix,
		limit: redis_rate.Limit{
			Rate:   limit,
			Burst:  limit,
			Period: window,
		},
	}
}

func (r *redisThrottle) allow(ctx context.Context, key string) (bool, error) {
	res, err := r.limiter.AllowN(ctx, r.prefix+key, r.limit, 1)
	if err != nil {
		return false, err
	}
	return res.Allowed > 0, nil
}
