package xconf

import (
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/logkit/pkg/log/xlevel"
)

// watchRecorder 线程安全地记录 Watch 回调的调用情况。
type watchRecorder struct {
	mu      sync.Mutex
	count   int
	lastErr error
}

func (r *watchRecorder) record(_ *Source, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count++
	r.lastErr = err
}

func (r *watchRecorder) snapshot() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count, r.lastErr
}

// =============================================================================
// Watch 单元测试
// =============================================================================

func TestWatch_ReloadsOnChange(t *testing.T) {
	path := writeTempConfig(t, "config.yaml", "version: v1\n")
	src, err := NewSource(path)
	require.NoError(t, err)

	rec := &watchRecorder{}
	w, err := Watch(src, rec.record, WithDebounce(30*time.Millisecond))
	require.NoError(t, err)

	w.StartAsync()
	defer func() { _ = w.Stop() }()

	// 等待监视器进入事件循环
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("version: v2\n"), 0600))

	require.Eventually(t, func() bool {
		n, _ := rec.snapshot()
		return n >= 1
	}, 3*time.Second, 20*time.Millisecond, "callback should fire after file change")

	_, lastErr := rec.snapshot()
	assert.NoError(t, lastErr)
	assert.Equal(t, "v2", src.Raw().String("version"))
}

func TestWatch_NilSource(t *testing.T) {
	_, err := Watch(nil, func(*Source, error) {})
	assert.Error(t, err)
}

func TestWatch_FromBytes(t *testing.T) {
	src, err := NewSourceFromBytes([]byte("version: v1\n"), FormatYAML)
	require.NoError(t, err)

	_, err = Watch(src, func(*Source, error) {})
	assert.ErrorIs(t, err, ErrNotReloadable)
}

func TestWatch_ReloadErrorReportedToCallback(t *testing.T) {
	path := writeTempConfig(t, "config.yaml", "version: stable\n")
	src, err := NewSource(path)
	require.NoError(t, err)

	rec := &watchRecorder{}
	w, err := Watch(src, rec.record, WithDebounce(30*time.Millisecond))
	require.NoError(t, err)

	w.StartAsync()
	defer func() { _ = w.Stop() }()
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("version: [broken\n"), 0600))

	require.Eventually(t, func() bool {
		_, lastErr := rec.snapshot()
		return lastErr != nil
	}, 3*time.Second, 20*time.Millisecond, "reload failure should reach the callback")

	_, lastErr := rec.snapshot()
	assert.ErrorIs(t, lastErr, ErrParseFailed)
	// 失败的重载不得污染现有快照
	assert.Equal(t, "stable", src.Raw().String("version"))
}

func TestWatch_DebounceCollapsesBursts(t *testing.T) {
	path := writeTempConfig(t, "config.yaml", "counter: 0\n")
	src, err := NewSource(path)
	require.NoError(t, err)

	rec := &watchRecorder{}
	w, err := Watch(src, rec.record, WithDebounce(150*time.Millisecond))
	require.NoError(t, err)

	w.StartAsync()
	defer func() { _ = w.Stop() }()
	time.Sleep(50 * time.Millisecond)

	// 连续快速写入应被防抖窗口合并
	for i := 1; i <= 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("counter: 5\n"), 0600))
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		n, _ := rec.snapshot()
		return n >= 1
	}, 3*time.Second, 20*time.Millisecond)

	// 留出第二个防抖窗口，确认不再追加触发
	time.Sleep(300 * time.Millisecond)
	n, _ := rec.snapshot()
	assert.LessOrEqual(t, n, 2, "burst of writes should collapse into few reloads")
	assert.Equal(t, 5, src.Raw().Int("counter"))
}

func TestWatcher_StopIdempotent(t *testing.T) {
	path := writeTempConfig(t, "config.yaml", "version: v1\n")
	src, err := NewSource(path)
	require.NoError(t, err)

	rec := &watchRecorder{}
	w, err := Watch(src, rec.record, WithDebounce(30*time.Millisecond))
	require.NoError(t, err)

	w.StartAsync()
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop(), "repeated Stop should be a no-op")

	// 停止后写入不再触发回调
	before, _ := rec.snapshot()
	require.NoError(t, os.WriteFile(path, []byte("version: v2\n"), 0600))
	time.Sleep(200 * time.Millisecond)
	after, _ := rec.snapshot()
	assert.Equal(t, before, after)
}

func TestWatcher_StartTwiceRunsOnce(t *testing.T) {
	path := writeTempConfig(t, "config.yaml", "version: v1\n")
	src, err := NewSource(path)
	require.NoError(t, err)

	w, err := Watch(src, func(*Source, error) {}, WithDebounce(30*time.Millisecond))
	require.NoError(t, err)

	w.StartAsync()
	w.StartAsync()
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, w.Stop())
}

// =============================================================================
// WatchLevel 单元测试
// =============================================================================

func TestWatchLevel_AppliesNewLevel(t *testing.T) {
	path := writeTempConfig(t, "config.yaml", "level: info\n")
	src, err := NewSource(path)
	require.NoError(t, err)

	var mu sync.Mutex
	applied := make([]xlevel.Level, 0, 2)
	w, err := WatchLevel(src, func(lvl xlevel.Level) {
		mu.Lock()
		defer mu.Unlock()
		applied = append(applied, lvl)
	}, WithDebounce(30*time.Millisecond))
	require.NoError(t, err)

	w.StartAsync()
	defer func() { _ = w.Stop() }()
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("level: debug\n"), 0600))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(applied) > 0 && applied[len(applied)-1] == xlevel.LevelDebug
	}, 3*time.Second, 20*time.Millisecond, "new level should reach apply callback")
}

func TestWatchLevel_NilApply(t *testing.T) {
	path := writeTempConfig(t, "config.yaml", "level: info\n")
	src, err := NewSource(path)
	require.NoError(t, err)

	_, err = WatchLevel(src, nil)
	assert.ErrorIs(t, err, ErrNilApply)
}

func TestWatchLevel_BrokenFileKeepsLevel(t *testing.T) {
	path := writeTempConfig(t, "config.yaml", "level: warn\n")
	src, err := NewSource(path)
	require.NoError(t, err)

	var mu sync.Mutex
	var count int
	var last xlevel.Level
	w, err := WatchLevel(src, func(lvl xlevel.Level) {
		mu.Lock()
		defer mu.Unlock()
		count++
		last = lvl
	}, WithDebounce(30*time.Millisecond))
	require.NoError(t, err)

	w.StartAsync()
	defer func() { _ = w.Stop() }()
	time.Sleep(50 * time.Millisecond)

	// 坏文件：重载失败，不触发 apply
	require.NoError(t, os.WriteFile(path, []byte("level: [broken\n"), 0600))
	time.Sleep(300 * time.Millisecond)
	mu.Lock()
	assert.Zero(t, count, "broken file must not change the level")
	mu.Unlock()

	// 修好后恢复热更新
	require.NoError(t, os.WriteFile(path, []byte("level: error\n"), 0600))
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count > 0 && last == xlevel.LevelError
	}, 3*time.Second, 20*time.Millisecond)
}
