package xmongo

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/omeyang/logkit/internal/diag"
	"github.com/omeyang/logkit/internal/sinkcore"
	"github.com/omeyang/logkit/pkg/log/xqueue"
	"github.com/omeyang/logkit/pkg/log/xrecord"
	"github.com/omeyang/logkit/pkg/observability/xmetrics"
)

const component = "xmongo"

// =============================================================================
// 选项
// =============================================================================

// Options 包含 MongoDB 投递器的配置。
// 设计决策: 类型名使用导出的 Options 而非小写 options,避免与驱动的
// options 包产生名字冲突。
type Options struct {
	// BatchSize 是触发刷写的批大小,非正值保持缓冲层默认值。
	BatchSize int

	// FlushInterval 是定时刷写间隔,非正值保持缓冲层默认值。
	FlushInterval time.Duration

	// Ordered 控制 InsertMany 的有序性。默认无序,单条文档失败
	// 不阻断同批其余文档。
	Ordered bool

	// Observer 是观测器,默认空实现。
	Observer xmetrics.Observer

	// OnError 是刷写失败的上报回调。
	OnError func(error)
}

// Option 配置 MongoDB 投递器。
type Option func(*Options)

func defaultOptions() Options {
	return Options{
		Observer: xmetrics.NoopObserver{},
	}
}

// WithBatchSize 设置触发刷写的批大小。非正值被忽略。
func WithBatchSize(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.BatchSize = n
		}
	}
}

// WithFlushInterval 设置定时刷写间隔。非正值被忽略。
func WithFlushInterval(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.FlushInterval = d
		}
	}
}

// WithOrdered 切换为有序插入,遇到首个失败即停止整批写入。
func WithOrdered() Option {
	return func(o *Options) {
		o.Ordered = true
	}
}

// WithObserver 设置观测器,nil 输入保持默认的空实现。
func WithObserver(obs xmetrics.Observer) Option {
	return func(o *Options) {
		if obs != nil {
			o.Observer = obs
		}
	}
}

// WithOnError 设置刷写失败的上报回调。回调在后台刷写协程中执行,
// 必须快速返回,且不得写回同一条日志管道。
func WithOnError(fn func(error)) Option {
	return func(o *Options) {
		o.OnError = fn
	}
}

// =============================================================================
// 文档结构
// =============================================================================

// document 是写入 MongoDB 的文档结构,时间字段使用原生 time.Time,
// 由驱动映射为 BSON 日期类型。
type document struct {
	EventID  string    `bson:"event_id,omitempty"`
	Seq      int64     `bson:"seq,omitempty"`
	Time     time.Time `bson:"ts"`
	Level    string    `bson:"level"`
	Logger   string    `bson:"logger"`
	Message  string    `bson:"message"`
	Error    string    `bson:"error,omitempty"`
	Args     []string  `bson:"args,omitempty"`
	Appender string    `bson:"appender,omitempty"`
}

// =============================================================================
// Sink
// =============================================================================

// Sink 将日志记录批量写入单个 MongoDB 集合。
type Sink struct {
	coll      *mongo.Collection
	ops       collectionOperations
	namespace string
	options   Options

	ids      *sinkcore.IDSource
	delivery sinkcore.DeliveryCounter
	batcher  *sinkcore.Batcher[document]
	faults   *diag.Sink
	closed   atomic.Bool
}

// New 基于已有的集合句柄创建投递器。句柄背后的客户端由调用方管理,
// Sink 关闭时不断开连接。
func New(coll *mongo.Collection, opts ...Option) (*Sink, error) {
	if coll == nil {
		return nil, ErrNilCollection
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	namespace := coll.Database().Name() + "." + coll.Name()
	return newSink(adaptCollection(coll), coll, namespace, o)
}

// newSink 完成与驱动无关的装配,测试中直接以 mock 集合操作构造。
func newSink(ops collectionOperations, coll *mongo.Collection, namespace string, o Options) (*Sink, error) {
	ids, err := sinkcore.NewIDSource(o.OnError)
	if err != nil {
		return nil, fmt.Errorf("xmongo: %w", err)
	}

	s := &Sink{
		coll:      coll,
		ops:       ops,
		namespace: namespace,
		options:   o,
		ids:       ids,
		faults:    diag.NewSink(o.OnError),
	}

	batchOpts := []sinkcore.BatchOption{
		sinkcore.WithBatchOnError(s.faults.Report),
	}
	if o.BatchSize > 0 {
		batchOpts = append(batchOpts, sinkcore.WithBatchSize(o.BatchSize))
	}
	if o.FlushInterval > 0 {
		batchOpts = append(batchOpts, sinkcore.WithFlushInterval(o.FlushInterval))
	}

	batcher, err := sinkcore.NewBatcher(s.flush, batchOpts...)
	if err != nil {
		return nil, fmt.Errorf("xmongo: %w", err)
	}
	s.batcher = batcher
	return s, nil
}

// Consume 将记录转换为文档并放入本地缓冲。缓冲满时阻塞,由上游队列
// 决定丢弃策略。返回 nil 表示已入缓冲,写入结果由后台刷写记账。
func (s *Sink) Consume(_ context.Context, rec xrecord.Record) error {
	if s.closed.Load() {
		return ErrClosed
	}

	payload := sinkcore.FromRecord(rec, s.ids)
	doc := document{
		EventID:  payload.EventID,
		Seq:      payload.Seq,
		Time:     rec.Time,
		Level:    payload.Level,
		Logger:   payload.Logger,
		Message:  payload.Message,
		Error:    payload.Error,
		Args:     payload.Args,
		Appender: payload.Appender,
	}
	if err := s.batcher.Add(doc); err != nil {
		// Add 仅在缓冲层已关闭时失败,关闭竞争窗口内的记录按关闭处理
		return ErrClosed
	}
	return nil
}

// flush 将一个批次写入 MongoDB。无序模式下部分成功按 InsertedIDs
// 实际数量拆分计数。
func (s *Sink) flush(ctx context.Context, docs []document) (err error) {
	_, span := xmetrics.Start(ctx, s.options.Observer, xmetrics.SpanOptions{
		Component: component,
		Operation: "insert_many",
		Kind:      xmetrics.KindClient,
		Attrs: []xmetrics.Attr{
			xmetrics.String("db.system", "mongodb"),
			xmetrics.String("db.namespace", s.namespace),
			xmetrics.Int64("batch.size", int64(len(docs))),
		},
	})
	defer func() { span.End(xmetrics.Result{Err: err}) }()

	items := make([]any, len(docs))
	for i := range docs {
		items[i] = docs[i]
	}

	insertOpts := options.InsertMany().SetOrdered(s.options.Ordered)
	result, err := s.ops.InsertMany(ctx, items, insertOpts)

	var inserted int64
	if result != nil {
		inserted = int64(len(result.InsertedIDs))
	}
	s.delivery.AddShipped(inserted)

	if err != nil {
		s.delivery.AddFailed(int64(len(docs)) - inserted)
		return fmt.Errorf("xmongo: insert many into %s: %w", s.namespace, err)
	}
	return nil
}

// Stats 聚合投递计数与缓冲状态。
type Stats struct {
	// Delivery 反映写入结果,Shipped 与 Failed 按文档计数。
	Delivery sinkcore.DeliveryStats

	// Batch 反映缓冲层状态,Pending 为尚未刷写的文档数。
	Batch sinkcore.BatchStats
}

// Stats 返回统计快照。
func (s *Sink) Stats() Stats {
	return Stats{
		Delivery: s.delivery.Snapshot(),
		Batch:    s.batcher.Stats(),
	}
}

// Collection 返回底层集合句柄,供查询路径等直接访问。
func (s *Sink) Collection() *mongo.Collection {
	return s.coll
}

// Namespace 返回目标集合的完整命名空间(库名.集合名)。
func (s *Sink) Namespace() string {
	return s.namespace
}

// Close 排空本地缓冲后停止后台刷写。重复关闭返回 ErrClosed。
// ctx 限定排空的等待时长;集合背后的客户端不会被断开。
func (s *Sink) Close(ctx context.Context) error {
	if !s.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	if err := s.batcher.Close(ctx); err != nil {
		return fmt.Errorf("xmongo: drain pending documents: %w", err)
	}
	return nil
}

var _ xqueue.Consumer = (*Sink)(nil)
