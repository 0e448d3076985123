package xqueue

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/omeyang/logkit/internal/diag"
	"github.com/omeyang/logkit/pkg/log/xrecord"
	"github.com/omeyang/logkit/pkg/observability/xmetrics"
)

// Manager 具名异步队列的注册与投递中枢
//
// 所有方法可并发调用。零值不可用，经 NewManager 构造。
type Manager struct {
	opts options
	sink *diag.Sink

	mu     sync.RWMutex
	queues map[string]*queue

	closed atomic.Bool
	// stop 关闭时广播给所有队列 worker
	stop chan struct{}
	// done 所有 worker 终排空完成后关闭
	done chan struct{}
	wg   sync.WaitGroup

	// runCtx 传给消费者的运行 context：排空等待超时后被取消
	runCtx    context.Context
	runCancel context.CancelFunc
}

// NewManager 创建队列管理器。
func NewManager(opts ...Option) *Manager {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	runCtx, runCancel := context.WithCancel(context.Background())
	return &Manager{
		opts:      o,
		sink:      diag.NewSink(nil),
		queues:    make(map[string]*queue),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
		runCtx:    runCtx,
		runCancel: runCancel,
	}
}

// Publish 向具名队列投递一条记录
//
// 永不阻塞。队列不存在或发布时刻无消费者时记录被丢弃并计数。
// Manager 已关闭返回 ErrClosed。
func (m *Manager) Publish(queueName string, rec xrecord.Record) error {
	if queueName == "" {
		return ErrEmptyQueueName
	}
	if m.closed.Load() {
		return ErrClosed
	}

	_, span := xmetrics.Start(context.Background(), m.opts.observer, xmetrics.SpanOptions{
		Component: queueName,
		Operation: "publish",
		Kind:      xmetrics.KindProducer,
	})
	// 未注册过的队列也创建实体：丢弃要可观测（计入 Dropped），
	// worker 在首个消费者注册前不启动
	m.getOrCreate(queueName).publish(rec)
	span.End(xmetrics.Result{})
	return nil
}

// Register 向具名队列注册消费者，返回幂等的注销函数
//
// 可比较的消费者值重复注册是空操作，返回的注销函数指向既有注册。
// 首个消费者注册时创建队列并启动其 worker。
func (m *Manager) Register(queueName string, c Consumer) (func(), error) {
	if queueName == "" {
		return nil, ErrEmptyQueueName
	}
	if c == nil {
		return nil, ErrNilConsumer
	}
	if m.closed.Load() {
		return nil, ErrClosed
	}

	q := m.getOrCreate(queueName)
	id := q.register(c)

	var once sync.Once
	return func() {
		once.Do(func() {
			q.deregister(id)
		})
	}, nil
}

func (m *Manager) getOrCreate(queueName string) *queue {
	m.mu.RLock()
	q := m.queues[queueName]
	m.mu.RUnlock()
	if q != nil {
		return q
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if q = m.queues[queueName]; q == nil {
		q = newQueue(queueName, m)
		m.queues[queueName] = q
	}
	return q
}

// Consumers 返回具名队列当前注册的消费者数，队列不存在返回 0
func (m *Manager) Consumers(queueName string) int {
	m.mu.RLock()
	q := m.queues[queueName]
	m.mu.RUnlock()
	if q == nil {
		return 0
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.consumers)
}

// Stats 返回全部队列的运行计数快照
func (m *Manager) Stats() map[string]QueueStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]QueueStats, len(m.queues))
	for name, q := range m.queues {
		out[name] = q.snapshot()
	}
	return out
}

// QueueStats 返回单条队列的运行计数快照
func (m *Manager) QueueStats(queueName string) (QueueStats, bool) {
	m.mu.RLock()
	q := m.queues[queueName]
	m.mu.RUnlock()
	if q == nil {
		return QueueStats{}, false
	}
	return q.snapshot(), true
}

// Close 关闭 Manager 并等待所有队列排空
//
// 关闭后 Publish/Register 返回 ErrClosed。ctx 到期时立即返回
// context 错误并取消消费者的运行 context，残留 worker 继续
// 排空剩余缓冲，可通过 Done() 等待最终完成。重复调用返回 ErrClosed。
func (m *Manager) Close(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	if m.closed.Swap(true) {
		return ErrClosed
	}

	close(m.stop)
	go func() {
		m.wg.Wait()
		m.runCancel()
		close(m.done)
	}()

	select {
	case <-m.done:
		return nil
	case <-ctx.Done():
		m.runCancel()
		return fmt.Errorf("xqueue: close: %w", ctx.Err())
	}
}

// Done 返回所有队列 worker 最终退出后关闭的 channel
//
// 用于 Close(ctx) 超时返回后等待残留 worker 排空完成。
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// reportConsumeError 上报一次消费失败
//
// 设置了错误回调时经回调上报（回调 panic 被隔离并转投兜底出口），
// 否则直接走兜底出口。失败绝不传播回队列或发布方。
func (m *Manager) reportConsumeError(queueName string, err error) {
	if m.opts.onError == nil {
		m.sink.Report(fmt.Errorf("xqueue: queue %q: %w", queueName, err))
		return
	}
	defer func() {
		if r := recover(); r != nil {
			m.sink.Report(fmt.Errorf("xqueue: error hook panicked: %v", r))
		}
	}()
	m.opts.onError(queueName, err)
}
