package xredis

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/redis/go-redis/v9"

	"github.com/omeyang/logkit/internal/sinkcore"
	"github.com/omeyang/logkit/pkg/log/xqueue"
	"github.com/omeyang/logkit/pkg/log/xrecord"
	"github.com/omeyang/logkit/pkg/observability/xmetrics"
)

const component = "xredis"

// DefaultMaxLen 是 Stream 的默认近似长度上限。
const DefaultMaxLen int64 = 1 << 16

// =============================================================================
// 选项
// =============================================================================

// options 包含 Redis 投递器的配置选项。
type options struct {
	MaxLen   int64
	Observer xmetrics.Observer
}

func defaultOptions() *options {
	return &options{
		MaxLen:   DefaultMaxLen,
		Observer: xmetrics.NoopObserver{},
	}
}

// Option 定义 Redis 投递器的配置选项函数类型。
type Option func(*options)

// WithMaxLen 设置 Stream 的近似长度上限。
// n <= 0 表示不裁剪，Stream 长度不受限。
func WithMaxLen(n int64) Option {
	return func(o *options) {
		o.MaxLen = n
	}
}

// WithObserver 设置统一观测接口。
func WithObserver(observer xmetrics.Observer) Option {
	return func(o *options) {
		if observer != nil {
			o.Observer = observer
		}
	}
}

// =============================================================================
// 投递器
// =============================================================================

// Sink 把日志记录写入 Redis Stream。
// 实现 xqueue.Consumer，可注册到异步队列。
type Sink struct {
	client  redis.UniversalClient
	stream  string
	options *options

	ids      *sinkcore.IDSource
	delivery sinkcore.DeliveryCounter
	closed   atomic.Bool
}

// New 创建 Redis Stream 投递器。
// client 必须是已初始化的 redis.UniversalClient，stream 是目标 Stream 名。
func New(client redis.UniversalClient, stream string, opts ...Option) (*Sink, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	if stream == "" {
		return nil, ErrEmptyStream
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	ids, err := sinkcore.NewIDSource(nil)
	if err != nil {
		return nil, fmt.Errorf("xredis: %w", err)
	}

	return &Sink{
		client:  client,
		stream:  stream,
		options: options,
		ids:     ids,
	}, nil
}

// Consume 把一条记录追加到 Stream。
// MaxLen > 0 时使用 MAXLEN ~ 近似裁剪，由 Redis 按宏节点边界回收旧条目。
func (s *Sink) Consume(ctx context.Context, rec xrecord.Record) (err error) {
	if s.closed.Load() {
		return ErrClosed
	}

	ctx, span := xmetrics.Start(ctx, s.options.Observer, xmetrics.SpanOptions{
		Component: component,
		Operation: "ship",
		Kind:      xmetrics.KindClient,
		Attrs: []xmetrics.Attr{
			xmetrics.String("db.system", "redis"),
			xmetrics.String("stream", s.stream),
		},
	})
	defer func() {
		span.End(xmetrics.Result{Err: err})
	}()

	payload := sinkcore.FromRecord(rec, s.ids)
	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{
			"level":   payload.Level,
			"logger":  payload.Logger,
			"payload": payload.Encode(),
		},
	}
	if s.options.MaxLen > 0 {
		args.MaxLen = s.options.MaxLen
		args.Approx = true
	}

	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		s.delivery.AddFailed(1)
		return fmt.Errorf("xredis: xadd to %q: %w", s.stream, err)
	}

	s.delivery.AddShipped(1)
	return nil
}

// Stats 返回投递统计。
func (s *Sink) Stats() sinkcore.DeliveryStats {
	return s.delivery.Snapshot()
}

// Client 返回底层的 redis.UniversalClient。
func (s *Sink) Client() redis.UniversalClient {
	return s.client
}

// Stream 返回目标 Stream 名。
func (s *Sink) Stream() string {
	return s.stream
}

// Close 关闭投递器。
// 重复调用返回 ErrClosed。底层客户端由调用方管理，此处不关闭。
// ctx 与批量型投递器的关闭签名保持一致，当前实现立即返回。
func (s *Sink) Close(_ context.Context) error {
	if !s.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	return nil
}

// 确保实现队列消费者接口
var _ xqueue.Consumer = (*Sink)(nil)
