package xclickhouse

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync/atomic"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/omeyang/logkit/internal/diag"
	"github.com/omeyang/logkit/internal/sinkcore"
	"github.com/omeyang/logkit/pkg/log/xqueue"
	"github.com/omeyang/logkit/pkg/log/xrecord"
	"github.com/omeyang/logkit/pkg/observability/xmetrics"
)

const component = "xclickhouse"

// tableNamePattern 用于校验表名的合法性。
// 支持格式:table_name、database.table_name、`database`.`table_name`。
//
// 设计决策: 反引号内禁止控制字符(\x00-\x1f)以防止换行符注入风险。
// 不支持混合引用风格(如 db.`table`),这是有意的安全限制。
var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*(\.[a-zA-Z_][a-zA-Z0-9_]*)?$|^` + "`[^`\\x00-\\x1f]+`" + `(\.` + "`[^`\\x00-\\x1f]+`" + `)?$`)

// validateTableName 校验表名是否合法,防止 SQL 注入。
func validateTableName(table string) error {
	if table == "" {
		return ErrEmptyTable
	}
	if !tableNamePattern.MatchString(table) {
		return ErrInvalidTableName
	}
	return nil
}

// =============================================================================
// 选项
// =============================================================================

// options 包含 ClickHouse 投递器的配置选项。
type options struct {
	BatchSize     int
	FlushInterval time.Duration
	Observer      xmetrics.Observer
	OnError       func(error)
}

// Option 配置 ClickHouse 投递器。
type Option func(*options)

func defaultOptions() options {
	return options{
		Observer: xmetrics.NoopObserver{},
	}
}

// WithBatchSize 设置触发刷写的批大小。非正值保持缓冲层默认值。
func WithBatchSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.BatchSize = n
		}
	}
}

// WithFlushInterval 设置定时刷写间隔。非正值保持缓冲层默认值。
func WithFlushInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.FlushInterval = d
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

// WithOnError 设置刷写失败的上报回调。回调在后台刷写协程中执行,
// 必须快速返回,且不得写回同一条日志管道。
func WithOnError(fn func(error)) Option {
	return func(o *options) {
		o.OnError = fn
	}
}

// =============================================================================
// 行结构
// =============================================================================

// row 是写入 ClickHouse 的行结构,列名通过 ch 标签与目标表对齐。
// 时间列使用原生 time.Time 而非 JSON 负载中的字符串形式,
// 由驱动映射为 DateTime64。
type row struct {
	EventID  string    `ch:"event_id"`
	Seq      int64     `ch:"seq"`
	Time     time.Time `ch:"ts"`
	Level    string    `ch:"level"`
	Logger   string    `ch:"logger"`
	Message  string    `ch:"message"`
	Error    string    `ch:"error"`
	Args     []string  `ch:"args"`
	Appender string    `ch:"appender"`
}

// =============================================================================
// Sink
// =============================================================================

// Sink 将日志记录批量写入单个 ClickHouse 表。
type Sink struct {
	conn    driver.Conn
	table   string
	options options

	ids      *sinkcore.IDSource
	delivery sinkcore.DeliveryCounter
	batcher  *sinkcore.Batcher[row]
	faults   *diag.Sink
	closed   atomic.Bool
}

// New 基于已有的 ClickHouse 连接创建投递器。连接由调用方管理,
// Sink 关闭时不回收连接。表名在入口处严格校验,后续拼接 SQL 是安全的。
func New(conn driver.Conn, table string, opts ...Option) (*Sink, error) {
	if conn == nil {
		return nil, ErrNilConn
	}
	if err := validateTableName(table); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	ids, err := sinkcore.NewIDSource(o.OnError)
	if err != nil {
		return nil, fmt.Errorf("xclickhouse: %w", err)
	}

	s := &Sink{
		conn:    conn,
		table:   table,
		options: o,
		ids:     ids,
		faults:  diag.NewSink(o.OnError),
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
		return nil, fmt.Errorf("xclickhouse: %w", err)
	}
	s.batcher = batcher
	return s, nil
}

// Consume 将记录转换为行并放入本地缓冲。缓冲满时阻塞,由上游队列
// 决定丢弃策略。返回 nil 表示已入缓冲,写入结果由后台刷写记账。
func (s *Sink) Consume(_ context.Context, rec xrecord.Record) error {
	if s.closed.Load() {
		return ErrClosed
	}

	payload := sinkcore.FromRecord(rec, s.ids)
	r := row{
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
	if err := s.batcher.Add(r); err != nil {
		// Add 仅在缓冲层已关闭时失败,关闭竞争窗口内的记录按关闭处理
		return ErrClosed
	}
	return nil
}

// flush 将一个批次写入 ClickHouse。观测 span 覆盖从 PrepareBatch 到
// Send 的完整数据库操作。
//
// 设计决策: context 取消后中止批次而非发送部分数据。在重试场景下,
// 发送部分数据可能导致重复写入和语义不一致。
func (s *Sink) flush(ctx context.Context, rows []row) (err error) {
	_, span := xmetrics.Start(ctx, s.options.Observer, xmetrics.SpanOptions{
		Component: component,
		Operation: "batch_insert",
		Kind:      xmetrics.KindClient,
		Attrs: []xmetrics.Attr{
			xmetrics.String("db.system", "clickhouse"),
			xmetrics.String("db.table", s.table),
			xmetrics.Int64("batch.size", int64(len(rows))),
		},
	})
	defer func() { span.End(xmetrics.Result{Err: err}) }()

	batch, err := s.conn.PrepareBatch(ctx, "INSERT INTO "+s.table)
	if err != nil {
		s.delivery.AddFailed(int64(len(rows)))
		return fmt.Errorf("xclickhouse: prepare batch for %s: %w", s.table, err)
	}

	var appended int64
	var errs []error
	for i := range rows {
		if err := batch.AppendStruct(&rows[i]); err != nil {
			errs = append(errs, fmt.Errorf("xclickhouse: append row: %w", err))
			continue
		}
		appended++
	}

	if appended == 0 || ctx.Err() != nil {
		if ctx.Err() != nil {
			errs = append(errs, fmt.Errorf("xclickhouse: context canceled before send: %w", ctx.Err()))
		}
		if abortErr := batch.Abort(); abortErr != nil {
			errs = append(errs, fmt.Errorf("xclickhouse: abort batch: %w", abortErr))
		}
		s.delivery.AddFailed(int64(len(rows)))
		return errors.Join(errs...)
	}

	if err := batch.Send(); err != nil {
		errs = append(errs, fmt.Errorf("xclickhouse: send batch to %s: %w", s.table, err))
		s.delivery.AddFailed(int64(len(rows)))
		return errors.Join(errs...)
	}

	s.delivery.AddShipped(appended)
	if skipped := int64(len(rows)) - appended; skipped > 0 {
		s.delivery.AddFailed(skipped)
	}
	return errors.Join(errs...)
}

// Stats 聚合投递计数与缓冲状态。
type Stats struct {
	// Delivery 反映写入结果,Shipped 与 Failed 按行计数。
	Delivery sinkcore.DeliveryStats

	// Batch 反映缓冲层状态,Pending 为尚未刷写的行数。
	Batch sinkcore.BatchStats
}

// Stats 返回统计快照。
func (s *Sink) Stats() Stats {
	return Stats{
		Delivery: s.delivery.Snapshot(),
		Batch:    s.batcher.Stats(),
	}
}

// Client 返回底层 ClickHouse 连接,供查询路径等直接访问。
// 方法名与其他存储型投递器的客户端访问器保持一致。
func (s *Sink) Client() driver.Conn {
	return s.conn
}

// Table 返回目标表名。
func (s *Sink) Table() string {
	return s.table
}

// Close 排空本地缓冲后停止后台刷写。重复关闭返回 ErrClosed。
// ctx 限定排空的等待时长;传入的连接不会被关闭。
func (s *Sink) Close(ctx context.Context) error {
	if !s.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	if err := s.batcher.Close(ctx); err != nil {
		return fmt.Errorf("xclickhouse: drain pending rows: %w", err)
	}
	return nil
}

var _ xqueue.Consumer = (*Sink)(nil)
