package xqueue

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/omeyang/logkit/pkg/log/xrecord"
	"github.com/omeyang/logkit/pkg/observability/xmetrics"
)

// entry 一次消费者注册
type entry struct {
	id       uint64
	consumer Consumer
}

// queue 一条具名队列：无界缓冲 + 专属 worker
type queue struct {
	name string
	mgr  *Manager

	mu        sync.Mutex
	buf       []xrecord.Record
	consumers []entry
	nextID    uint64

	// wake 容量 1：发布方非阻塞唤醒 worker，多次唤醒合并
	wake      chan struct{}
	startOnce sync.Once

	enqueued       atomic.Uint64
	dropped        atomic.Uint64
	delivered      atomic.Uint64
	consumerErrors atomic.Uint64
}

func newQueue(name string, mgr *Manager) *queue {
	return &queue{
		name: name,
		mgr:  mgr,
		wake: make(chan struct{}, 1),
	}
}

// publish 入队一条记录
//
// 发布时刻无消费者的记录直接丢弃并计数，不占用缓冲。
func (q *queue) publish(rec xrecord.Record) {
	q.mu.Lock()
	if len(q.consumers) == 0 {
		q.mu.Unlock()
		q.dropped.Add(1)
		return
	}
	q.buf = append(q.buf, rec)
	q.mu.Unlock()

	q.enqueued.Add(1)
	q.wakeUp()
}

func (q *queue) wakeUp() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// register 注册消费者，返回注册标识
//
// 集合语义：可比较的消费者值已在集合中时返回既有标识（空操作）。
// 首个消费者注册时启动队列 worker。
func (q *queue) register(c Consumer) uint64 {
	q.mu.Lock()
	for _, e := range q.consumers {
		if sameConsumer(e.consumer, c) {
			q.mu.Unlock()
			return e.id
		}
	}
	q.nextID++
	id := q.nextID
	q.consumers = append(q.consumers, entry{id: id, consumer: c})
	q.mu.Unlock()

	q.startOnce.Do(func() {
		q.mgr.wg.Add(1)
		go q.run()
	})
	return id
}

// deregister 按注册标识移除消费者，天然幂等
func (q *queue) deregister(id uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, e := range q.consumers {
		if e.id == id {
			q.consumers = append(q.consumers[:i], q.consumers[i+1:]...)
			return
		}
	}
}

// run 队列 worker 主循环
//
// 批量取走缓冲按 FIFO 逐条扇出；缓冲耗尽后 park 等待唤醒。
// Manager 关闭后把缓冲排空至确认为空才退出。
func (q *queue) run() {
	defer q.mgr.wg.Done()
	for {
		for _, rec := range q.takeAll() {
			q.fanOut(rec)
		}

		select {
		case <-q.wake:
		case <-q.mgr.stop:
			q.drain()
			return
		}
	}
}

// takeAll 原子取走当前全部缓冲
func (q *queue) takeAll() []xrecord.Record {
	q.mu.Lock()
	defer q.mu.Unlock()
	batch := q.buf
	q.buf = nil
	return batch
}

// drain 关闭后的终排空：反复取缓冲直到确认为空
func (q *queue) drain() {
	for {
		batch := q.takeAll()
		if len(batch) == 0 {
			return
		}
		for _, rec := range batch {
			q.fanOut(rec)
		}
	}
}

// fanOut 把一条记录并行投递给当前消费者快照，等待全部完成
func (q *queue) fanOut(rec xrecord.Record) {
	q.mu.Lock()
	snapshot := make([]entry, len(q.consumers))
	copy(snapshot, q.consumers)
	q.mu.Unlock()

	// 入队后消费者可能全部注销，此时按丢弃计
	if len(snapshot) == 0 {
		q.dropped.Add(1)
		return
	}

	start := time.Now()
	_, span := xmetrics.Start(q.mgr.runCtx, q.mgr.opts.observer, xmetrics.SpanOptions{
		Component: q.name,
		Operation: "drain",
		Kind:      xmetrics.KindConsumer,
		Attrs:     []xmetrics.Attr{xmetrics.Int("consumers", len(snapshot))},
	})

	var failed atomic.Int64
	var g errgroup.Group
	for _, e := range snapshot {
		g.Go(func() error {
			if err := q.consume(e.consumer, rec); err != nil {
				q.consumerErrors.Add(1)
				failed.Add(1)
				q.notifyConsumeError(e.consumer, err, rec)
			}
			// 失败已就地上报，返回 nil 让 Wait 只做完成屏障
			return nil
		})
	}
	_ = g.Wait()
	q.delivered.Add(1)

	result := xmetrics.Result{}
	if n := failed.Load(); n > 0 {
		result.Status = xmetrics.StatusError
		result.Attrs = []xmetrics.Attr{xmetrics.Int64("failed", n)}
	}
	span.End(result)

	if threshold := q.mgr.opts.slowThreshold; threshold > 0 {
		if elapsed := time.Since(start); elapsed > threshold {
			q.mgr.opts.logger.Warn("xqueue: slow fan-out",
				slog.String("queue", q.name),
				slog.Duration("elapsed", elapsed),
				slog.Int("consumers", len(snapshot)),
			)
		}
	}
}

// consume 执行单个消费者，panic 归一化为错误
func (q *queue) consume(c Consumer, rec xrecord.Record) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("consumer panicked: %v", r)
		}
	}()
	return c.Consume(q.mgr.runCtx, rec)
}

// notifyConsumeError 把单个消费者的失败送达归属方
//
// 消费者自带错误钩子时优先交给钩子，钩子 panic 归一化后转投
// Manager 的上报路径；无钩子时直接走 Manager 上报。
func (q *queue) notifyConsumeError(c Consumer, err error, rec xrecord.Record) {
	hook, ok := c.(ErrorHook)
	if !ok {
		q.mgr.reportConsumeError(q.name, err)
		return
	}
	if hookErr := callHook(hook, err, rec); hookErr != nil {
		q.mgr.reportConsumeError(q.name, hookErr)
	}
}

// callHook 执行错误钩子，panic 归一化为错误
func callHook(hook ErrorHook, err error, rec xrecord.Record) (hookErr error) {
	defer func() {
		if r := recover(); r != nil {
			hookErr = fmt.Errorf("error hook panicked: %v", r)
		}
	}()
	hook.OnConsumeError(err, rec)
	return nil
}
