package xconf

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	pb "go.etcd.io/etcd/api/v3/etcdserverpb"
	"go.etcd.io/etcd/api/v3/mvccpb"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/omeyang/logkit/pkg/log/xlevel"
)

// fakeLevelClient 脚本化的 LevelClient：Get 返回预置快照，
// Watch 把测试写入 feed 的响应转发给订阅方。投递错误响应后
// 关闭当前 watch 通道，模拟真实客户端的断开行为。
type fakeLevelClient struct {
	getResp *clientv3.GetResponse
	getErr  error

	feed       chan clientv3.WatchResponse
	watchCount atomic.Int32

	mu        sync.Mutex
	watchOpts [][]clientv3.OpOption
}

func newFakeLevelClient(initial string, rev int64) *fakeLevelClient {
	f := &fakeLevelClient{
		feed:    make(chan clientv3.WatchResponse),
		getResp: &clientv3.GetResponse{},
	}
	if initial != "" {
		f.getResp.Kvs = []*mvccpb.KeyValue{{
			Key:         []byte("/logkit/level"),
			Value:       []byte(initial),
			ModRevision: rev,
		}}
	}
	return f
}

func (f *fakeLevelClient) Get(context.Context, string, ...clientv3.OpOption) (*clientv3.GetResponse, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getResp, nil
}

func (f *fakeLevelClient) Watch(ctx context.Context, _ string, opts ...clientv3.OpOption) clientv3.WatchChan {
	f.watchCount.Add(1)
	f.mu.Lock()
	f.watchOpts = append(f.watchOpts, opts)
	f.mu.Unlock()

	out := make(chan clientv3.WatchResponse)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case resp, ok := <-f.feed:
				if !ok {
					return
				}
				select {
				case out <- resp:
				case <-ctx.Done():
					return
				}
				if resp.Err() != nil {
					return
				}
			}
		}
	}()
	return out
}

// lastWatchRev 用 OpGet 还原最近一次 Watch 携带的起始版本。
func (f *fakeLevelClient) lastWatchRev() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.watchOpts) == 0 {
		return 0
	}
	return clientv3.OpGet("probe", f.watchOpts[len(f.watchOpts)-1]...).Rev()
}

func putResponse(value string, rev int64) clientv3.WatchResponse {
	return clientv3.WatchResponse{Events: []*clientv3.Event{{
		Type: mvccpb.PUT,
		Kv: &mvccpb.KeyValue{
			Key:         []byte("/logkit/level"),
			Value:       []byte(value),
			ModRevision: rev,
		},
	}}}
}

func deleteResponse(rev int64) clientv3.WatchResponse {
	return clientv3.WatchResponse{Events: []*clientv3.Event{{
		Type: mvccpb.DELETE,
		Kv: &mvccpb.KeyValue{
			Key:         []byte("/logkit/level"),
			ModRevision: rev,
		},
	}}}
}

// levelRecorder 线程安全地记录 apply 回调收到的级别序列。
type levelRecorder struct {
	mu     sync.Mutex
	levels []xlevel.Level
}

func (r *levelRecorder) apply(lvl xlevel.Level) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.levels = append(r.levels, lvl)
}

func (r *levelRecorder) all() []xlevel.Level {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]xlevel.Level, len(r.levels))
	copy(out, r.levels)
	return out
}

func (r *levelRecorder) last() (xlevel.Level, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.levels) == 0 {
		return 0, false
	}
	return r.levels[len(r.levels)-1], true
}

// errCollector 线程安全地收集 WithLevelOnError 上报的错误。
type errCollector struct {
	mu   sync.Mutex
	errs []error
}

func (c *errCollector) collect(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, err)
}

func (c *errCollector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.errs)
}

// fastBackoff 让重订阅在测试里几乎立即发生。
func fastBackoff() LevelOption {
	return WithLevelBackoff(time.Millisecond, 5*time.Millisecond)
}

func closeLevelSource(t *testing.T, s *LevelSource) {
	t.Helper()
	t.Cleanup(func() { _ = s.Close() })
}

// =============================================================================
// NewLevelSource 单元测试
// =============================================================================

func TestNewLevelSource_Validation(t *testing.T) {
	ctx := context.Background()
	client := newFakeLevelClient("info", 1)
	apply := func(xlevel.Level) {}

	t.Run("nil context", func(t *testing.T) {
		_, err := NewLevelSource(nil, client, "/logkit/level", apply) //nolint:staticcheck // 测试 nil ctx 防御
		assert.ErrorIs(t, err, ErrNilContext)
	})
	t.Run("nil client", func(t *testing.T) {
		_, err := NewLevelSource(ctx, nil, "/logkit/level", apply)
		assert.ErrorIs(t, err, ErrNilClient)
	})
	t.Run("empty key", func(t *testing.T) {
		_, err := NewLevelSource(ctx, client, "", apply)
		assert.ErrorIs(t, err, ErrEmptyKey)
	})
	t.Run("nil apply", func(t *testing.T) {
		_, err := NewLevelSource(ctx, client, "/logkit/level", nil)
		assert.ErrorIs(t, err, ErrNilApply)
	})
}

func TestNewLevelSource_InitialValueApplied(t *testing.T) {
	client := newFakeLevelClient("warn", 3)
	rec := &levelRecorder{}

	s, err := NewLevelSource(context.Background(), client, "/logkit/level", rec.apply, fastBackoff())
	require.NoError(t, err)
	closeLevelSource(t, s)

	// 初始 Get 在构造期间同步应用
	assert.Equal(t, []xlevel.Level{xlevel.LevelWarn}, rec.all())
	assert.Equal(t, "/logkit/level", s.Key())
}

func TestNewLevelSource_NoInitialValue(t *testing.T) {
	client := newFakeLevelClient("", 0)
	rec := &levelRecorder{}

	s, err := NewLevelSource(context.Background(), client, "/logkit/level", rec.apply, fastBackoff())
	require.NoError(t, err)
	closeLevelSource(t, s)

	assert.Empty(t, rec.all(), "absent key must not invent a level")
}

func TestNewLevelSource_GetError(t *testing.T) {
	client := newFakeLevelClient("", 0)
	client.getErr = errors.New("etcd unavailable")

	_, err := NewLevelSource(context.Background(), client, "/logkit/level", func(xlevel.Level) {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"/logkit/level"`)
	assert.Contains(t, err.Error(), "etcd unavailable")
}

// =============================================================================
// watch 循环单元测试
// =============================================================================

func TestLevelSource_PutApplies(t *testing.T) {
	client := newFakeLevelClient("info", 1)
	rec := &levelRecorder{}

	s, err := NewLevelSource(context.Background(), client, "/logkit/level", rec.apply, fastBackoff())
	require.NoError(t, err)
	closeLevelSource(t, s)

	client.feed <- putResponse("debug", 5)

	require.Eventually(t, func() bool {
		last, ok := rec.last()
		return ok && last == xlevel.LevelDebug
	}, 3*time.Second, 5*time.Millisecond)
}

func TestLevelSource_InvalidWordReportedNotApplied(t *testing.T) {
	client := newFakeLevelClient("warn", 1)
	rec := &levelRecorder{}
	errs := &errCollector{}

	s, err := NewLevelSource(context.Background(), client, "/logkit/level", rec.apply,
		fastBackoff(), WithLevelOnError(errs.collect))
	require.NoError(t, err)
	closeLevelSource(t, s)

	client.feed <- putResponse("loud", 5)

	require.Eventually(t, func() bool {
		return errs.count() > 0
	}, 3*time.Second, 5*time.Millisecond, "invalid word should be reported")
	assert.Equal(t, []xlevel.Level{xlevel.LevelWarn}, rec.all(), "invalid word must not change the level")

	// 非法值不中断监听，后续合法值照常生效
	client.feed <- putResponse("error", 6)
	require.Eventually(t, func() bool {
		last, ok := rec.last()
		return ok && last == xlevel.LevelError
	}, 3*time.Second, 5*time.Millisecond)
}

func TestLevelSource_DeleteKeepsLevel(t *testing.T) {
	client := newFakeLevelClient("warn", 1)
	rec := &levelRecorder{}

	s, err := NewLevelSource(context.Background(), client, "/logkit/level", rec.apply, fastBackoff())
	require.NoError(t, err)
	closeLevelSource(t, s)

	client.feed <- deleteResponse(5)
	// 删除事件不回退级别，循环保持存活
	client.feed <- putResponse("trace", 6)

	require.Eventually(t, func() bool {
		last, ok := rec.last()
		return ok && last == xlevel.LevelTrace
	}, 3*time.Second, 5*time.Millisecond)
	assert.Equal(t, []xlevel.Level{xlevel.LevelWarn, xlevel.LevelTrace}, rec.all())
}

func TestLevelSource_ResubscribesAfterWatchError(t *testing.T) {
	client := newFakeLevelClient("info", 1)
	rec := &levelRecorder{}
	errs := &errCollector{}

	s, err := NewLevelSource(context.Background(), client, "/logkit/level", rec.apply,
		fastBackoff(), WithLevelOnError(errs.collect))
	require.NoError(t, err)
	closeLevelSource(t, s)

	// 第一条 watch 流以错误终止
	client.feed <- clientv3.WatchResponse{Canceled: true}

	// 重订阅后事件继续送达；向无缓冲 feed 的写入本身
	// 就是第二个订阅者已就位的同步点
	client.feed <- putResponse("fatal", 10)

	require.Eventually(t, func() bool {
		last, ok := rec.last()
		return ok && last == xlevel.LevelFatal
	}, 3*time.Second, 5*time.Millisecond)
	assert.GreaterOrEqual(t, client.watchCount.Load(), int32(2))
	assert.Equal(t, 1, errs.count(), "watch error should be reported once")
}

func TestLevelSource_CompactionJumpsToCompactRevision(t *testing.T) {
	client := newFakeLevelClient("info", 1)
	rec := &levelRecorder{}
	errs := &errCollector{}

	s, err := NewLevelSource(context.Background(), client, "/logkit/level", rec.apply,
		fastBackoff(), WithLevelOnError(errs.collect))
	require.NoError(t, err)
	closeLevelSource(t, s)

	client.feed <- clientv3.WatchResponse{CompactRevision: 42}

	// 压缩错误后从压缩点重订阅
	client.feed <- putResponse("debug", 50)
	require.Eventually(t, func() bool {
		last, ok := rec.last()
		return ok && last == xlevel.LevelDebug
	}, 3*time.Second, 5*time.Millisecond)

	assert.Equal(t, int64(42), client.lastWatchRev())
	assert.Equal(t, 1, errs.count())
}

func TestLevelSource_ResubscribesAfterChannelClose(t *testing.T) {
	client := newFakeLevelClient("info", 1)

	s, err := NewLevelSource(context.Background(), client, "/logkit/level", func(xlevel.Level) {}, fastBackoff())
	require.NoError(t, err)
	closeLevelSource(t, s)

	close(client.feed)

	// 通道无错误关闭同样触发退避重订阅
	require.Eventually(t, func() bool {
		return client.watchCount.Load() >= 2
	}, 3*time.Second, 5*time.Millisecond)
}

func TestLevelSource_WatchStartsAfterGetRevision(t *testing.T) {
	client := newFakeLevelClient("info", 7)
	client.getResp.Header = &pb.ResponseHeader{Revision: 7}

	s, err := NewLevelSource(context.Background(), client, "/logkit/level", func(xlevel.Level) {}, fastBackoff())
	require.NoError(t, err)
	closeLevelSource(t, s)

	// Get 快照停在版本 7，watch 必须从 8 开始，两者之间无事件空洞
	require.Eventually(t, func() bool {
		return client.watchCount.Load() >= 1
	}, 3*time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(8), client.lastWatchRev())
}

func TestLevelSource_CloseIdempotent(t *testing.T) {
	client := newFakeLevelClient("info", 1)

	s, err := NewLevelSource(context.Background(), client, "/logkit/level", func(xlevel.Level) {})
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "repeated Close should be a no-op")
	assert.Equal(t, int32(1), client.watchCount.Load())
}

// =============================================================================
// 选项与退避辅助函数
// =============================================================================

func TestWithLevelBackoff_IgnoresInvalid(t *testing.T) {
	tests := []struct {
		name    string
		initial time.Duration
		max     time.Duration
	}{
		{"non-positive initial", 0, time.Second},
		{"negative initial", -time.Second, time.Second},
		{"max below initial", 10 * time.Second, time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := levelOptions{initialBackoff: defaultLevelBackoff, maxBackoff: defaultLevelMaxBackoff}
			WithLevelBackoff(tt.initial, tt.max)(&o)
			assert.Equal(t, defaultLevelBackoff, o.initialBackoff)
			assert.Equal(t, defaultLevelMaxBackoff, o.maxBackoff)
		})
	}
}

func TestJitter_StaysWithinBand(t *testing.T) {
	base := 100 * time.Millisecond
	for i := 0; i < 50; i++ {
		d := jitter(base)
		assert.GreaterOrEqual(t, d, 80*time.Millisecond)
		assert.LessOrEqual(t, d, 120*time.Millisecond)
	}
	assert.Equal(t, time.Duration(0), jitter(0))
}
