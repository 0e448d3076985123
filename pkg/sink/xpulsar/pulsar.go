package xpulsar

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/apache/pulsar-client-go/pulsar"

	"github.com/omeyang/logkit/internal/diag"
	"github.com/omeyang/logkit/internal/sinkcore"
	"github.com/omeyang/logkit/pkg/log/xqueue"
	"github.com/omeyang/logkit/pkg/log/xrecord"
	"github.com/omeyang/logkit/pkg/observability/xmetrics"
)

const component = "xpulsar"

// DefaultSendTimeout 是单条消息的默认发送超时,与 Pulsar 客户端默认值对齐。
const DefaultSendTimeout = 30 * time.Second

// =============================================================================
// 选项
// =============================================================================

// options 包含 Pulsar 投递器的配置选项。
type options struct {
	SendTimeout time.Duration
	Observer    xmetrics.Observer
	OnError     func(error)
}

// Option 配置 Pulsar 投递器。
type Option func(*options)

func defaultOptions() options {
	return options{
		SendTimeout: DefaultSendTimeout,
		Observer:    xmetrics.NoopObserver{},
	}
}

// WithSendTimeout 设置单条消息的发送超时。超时后 Broker 仍未确认的消息
// 以失败回调结束。非正值被忽略。
func WithSendTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.SendTimeout = d
		}
	}
}

// WithObserver 设置观测器,nil 输入保持默认的空实现。
func WithObserver(obs xmetrics.Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.Observer = obs
		}
	}
}

// WithOnError 设置投递失败的上报回调。回调在 Pulsar 客户端的回调协程中
// 执行,必须快速返回,且不得写回同一条日志管道。
func WithOnError(fn func(error)) Option {
	return func(o *options) {
		o.OnError = fn
	}
}

// =============================================================================
// Sink
// =============================================================================

// Sink 将日志记录异步投递到单个 Pulsar 主题。
type Sink struct {
	client   pulsar.Client
	producer pulsar.Producer
	topic    string
	options  options

	ids      *sinkcore.IDSource
	delivery sinkcore.DeliveryCounter
	faults   *diag.Sink
	closed   atomic.Bool
}

// New 基于已有的 Pulsar 客户端创建投递器,并在 topic 上建立专属生产者。
// 客户端由调用方管理,Sink 关闭时只回收自建的生产者。
func New(client pulsar.Client, topic string, opts ...Option) (*Sink, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	if topic == "" {
		return nil, ErrEmptyTopic
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	producer, err := client.CreateProducer(pulsar.ProducerOptions{
		Topic:       topic,
		SendTimeout: o.SendTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("xpulsar: create producer for %q: %w", topic, err)
	}

	ids, err := sinkcore.NewIDSource(o.OnError)
	if err != nil {
		producer.Close()
		return nil, fmt.Errorf("xpulsar: %w", err)
	}

	return &Sink{
		client:   client,
		producer: producer,
		topic:    topic,
		options:  o,
		ids:      ids,
		faults:   diag.NewSink(o.OnError),
	}, nil
}

// Consume 将记录编码后异步发送。返回 nil 表示消息已进入发送队列,Broker
// 确认结果由回调记账。观测 span 覆盖从入队到确认的完整往返。
func (s *Sink) Consume(ctx context.Context, rec xrecord.Record) error {
	if s.closed.Load() {
		return ErrClosed
	}

	_, span := xmetrics.Start(ctx, s.options.Observer, xmetrics.SpanOptions{
		Component: component,
		Operation: "produce",
		Kind:      xmetrics.KindProducer,
		Attrs: []xmetrics.Attr{
			xmetrics.String("messaging.system", "pulsar"),
			xmetrics.String("messaging.destination", s.topic),
		},
	})

	payload := sinkcore.FromRecord(rec, s.ids)
	msg := &pulsar.ProducerMessage{
		Payload:   payload.Encode(),
		Key:       payload.PartitionKey(),
		EventTime: rec.Time,
	}

	s.producer.SendAsync(ctx, msg, func(_ pulsar.MessageID, _ *pulsar.ProducerMessage, err error) {
		if err != nil {
			s.delivery.AddFailed(1)
			s.faults.Report(fmt.Errorf("xpulsar: deliver to %q: %w", s.topic, err))
		} else {
			s.delivery.AddShipped(1)
		}
		span.End(xmetrics.Result{Err: err})
	})
	return nil
}

// Stats 返回投递计数快照。Shipped 与 Failed 反映 Broker 确认结果,
// 而非入队次数。
func (s *Sink) Stats() sinkcore.DeliveryStats {
	return s.delivery.Snapshot()
}

// Producer 返回底层生产者,供需要直接访问的调用方使用。
func (s *Sink) Producer() pulsar.Producer {
	return s.producer
}

// Client 返回构造时传入的 Pulsar 客户端。
func (s *Sink) Client() pulsar.Client {
	return s.client
}

// Topic 返回目标主题。
func (s *Sink) Topic() string {
	return s.topic
}

// Close 等待在途消息确认后关闭生产者。重复关闭返回 ErrClosed。
// ctx 限定 Flush 的等待时长;传入的客户端不会被关闭。
func (s *Sink) Close(ctx context.Context) error {
	if !s.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	if ctx == nil {
		ctx = context.Background()
	}

	flushErr := s.producer.FlushWithCtx(ctx)
	s.producer.Close()
	if flushErr != nil {
		return fmt.Errorf("xpulsar: flush pending messages: %w", flushErr)
	}
	return nil
}

var _ xqueue.Consumer = (*Sink)(nil)
