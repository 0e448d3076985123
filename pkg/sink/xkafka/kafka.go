package xkafka

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"github.com/omeyang/logkit/internal/diag"
	"github.com/omeyang/logkit/internal/sinkcore"
	"github.com/omeyang/logkit/pkg/log/xqueue"
	"github.com/omeyang/logkit/pkg/log/xrecord"
	"github.com/omeyang/logkit/pkg/observability/xmetrics"
)

const component = "xkafka"

// =============================================================================
// 选项
// =============================================================================

// options 包含 Kafka 投递器的配置选项。
type options struct {
	FlushTimeout time.Duration
	Observer     xmetrics.Observer
	OnError      func(error)
}

func defaultOptions() *options {
	return &options{
		FlushTimeout: 10 * time.Second,
		Observer:     xmetrics.NoopObserver{},
	}
}

// Option 定义 Kafka 投递器的配置选项函数类型。
type Option func(*options)

// WithFlushTimeout 设置关闭时等待本地缓冲发空的超时时间。
func WithFlushTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.FlushTimeout = d
		}
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

// WithOnError 设置投递失败的上报回调。
// 回执循环发现的 Broker 投递失败经由此回调通知，nil 时写进程 stderr。
// 回调不得写回同一条日志管道，否则可能递归。
func WithOnError(fn func(error)) Option {
	return func(o *options) {
		o.OnError = fn
	}
}

// =============================================================================
// Stats
// =============================================================================

// Stats 包含 Kafka 投递器的统计信息。
type Stats struct {
	// Delivery 投递计数。Shipped 与 Failed 由回执循环统计，
	// 反映 Broker 确认结果而非入队数。
	Delivery sinkcore.DeliveryStats
	// QueueLength 本地缓冲中等待发送的消息数。
	QueueLength int
}

// =============================================================================
// 投递器
// =============================================================================

// Sink 把日志记录异步投递到 Kafka Topic。
// 实现 xqueue.Consumer，可注册到异步队列。
type Sink struct {
	producer *kafka.Producer
	topic    string
	options  *options

	ids      *sinkcore.IDSource
	delivery sinkcore.DeliveryCounter
	faults   *diag.Sink

	// mu 保护 Flush、Close、Len 等管理操作的并发访问。
	// Produce 本身是线程安全的，不需要加锁。
	mu     sync.Mutex
	closed atomic.Bool
	done   chan struct{}
}

// New 创建 Kafka 投递器。
// config 必须包含 "bootstrap.servers" 配置项，topic 是目标主题。
// 投递器持有自建的 Producer，由 Close 负责释放。
func New(config *kafka.ConfigMap, topic string, opts ...Option) (*Sink, error) {
	if config == nil {
		return nil, ErrNilConfig
	}
	if topic == "" {
		return nil, ErrEmptyTopic
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	// 复制配置，避免修改调用方传入的 ConfigMap
	clonedConfig := &kafka.ConfigMap{}
	for k, v := range *config {
		if err := clonedConfig.SetKey(k, v); err != nil {
			return nil, fmt.Errorf("xkafka: clone config key %q: %w", k, err)
		}
	}

	producer, err := kafka.NewProducer(clonedConfig)
	if err != nil {
		return nil, fmt.Errorf("xkafka: create producer: %w", err)
	}

	ids, err := sinkcore.NewIDSource(options.OnError)
	if err != nil {
		producer.Close()
		return nil, fmt.Errorf("xkafka: %w", err)
	}

	s := &Sink{
		producer: producer,
		topic:    topic,
		options:  options,
		ids:      ids,
		faults:   diag.NewSink(options.OnError),
		done:     make(chan struct{}),
	}
	go s.reportLoop()
	return s, nil
}

// reportLoop 消化投递回执，直到 Producer 关闭导致事件通道关闭。
func (s *Sink) reportLoop() {
	defer close(s.done)
	for e := range s.producer.Events() {
		switch ev := e.(type) {
		case *kafka.Message:
			if ev.TopicPartition.Error != nil {
				s.delivery.AddFailed(1)
				s.faults.Report(fmt.Errorf("xkafka: deliver to %q: %w", s.topic, ev.TopicPartition.Error))
			} else {
				s.delivery.AddShipped(1)
			}
		case kafka.Error:
			// 传输层错误，librdkafka 内部自行重连，仅上报不计投递失败
			s.faults.Report(fmt.Errorf("xkafka: transport: %w", ev))
		}
	}
}

// Consume 把一条记录入队到本地发送缓冲。
// 返回的错误仅代表入队失败，Broker 侧结果见 Stats 与 WithOnError。
func (s *Sink) Consume(ctx context.Context, rec xrecord.Record) (err error) {
	if s.closed.Load() {
		return ErrClosed
	}

	_, span := xmetrics.Start(ctx, s.options.Observer, xmetrics.SpanOptions{
		Component: component,
		Operation: "ship",
		Kind:      xmetrics.KindProducer,
		Attrs: []xmetrics.Attr{
			xmetrics.String("messaging.system", "kafka"),
			xmetrics.String("messaging.destination", s.topic),
		},
	})
	defer func() {
		span.End(xmetrics.Result{Err: err})
	}()

	payload := sinkcore.FromRecord(rec, s.ids)

	var key []byte
	if pk := payload.PartitionKey(); pk != "" {
		key = []byte(pk)
	}

	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &s.topic, Partition: kafka.PartitionAny},
		Key:            key,
		Value:          payload.Encode(),
	}

	if err := s.producer.Produce(msg, nil); err != nil {
		s.delivery.AddFailed(1)
		return fmt.Errorf("xkafka: enqueue to %q: %w", s.topic, err)
	}
	return nil
}

// Stats 返回投递统计。
// 投递器已关闭时 QueueLength 返回 0。
func (s *Sink) Stats() Stats {
	var queueLen int
	if !s.closed.Load() {
		s.mu.Lock()
		if !s.closed.Load() {
			queueLen = s.producer.Len()
		}
		s.mu.Unlock()
	}

	return Stats{
		Delivery:    s.delivery.Snapshot(),
		QueueLength: queueLen,
	}
}

// Producer 返回底层的 *kafka.Producer。
func (s *Sink) Producer() *kafka.Producer {
	return s.producer
}

// Topic 返回目标主题。
func (s *Sink) Topic() string {
	return s.topic
}

// Close 关闭投递器。
// 等待本地缓冲发空（受 FlushTimeout 与 ctx 截止时间中较早者限制），
// 随后释放 Producer 并等待回执循环退出。超时仍有余留时返回 ErrFlushTimeout。
// 重复调用返回 ErrClosed。
func (s *Sink) Close(ctx context.Context) error {
	if !s.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}

	timeout := s.options.FlushTimeout
	if ctx != nil {
		if dl, ok := ctx.Deadline(); ok {
			if remain := time.Until(dl); remain < timeout {
				timeout = remain
			}
		}
	}
	if timeout < 0 {
		timeout = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	remaining := s.producer.Flush(int(timeout.Milliseconds()))
	s.producer.Close()
	<-s.done

	if remaining > 0 {
		return fmt.Errorf("%w: %d messages still queued", ErrFlushTimeout, remaining)
	}
	return nil
}

// 确保实现队列消费者接口
var _ xqueue.Consumer = (*Sink)(nil)
