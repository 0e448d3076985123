package xchannel

import (
	"fmt"
	"sync"

	"github.com/omeyang/logkit/pkg/log/xrecord"
	"github.com/omeyang/logkit/pkg/observability/xrotate"
)

// fileChannel 文件输出通道
//
// 渲染规则与控制台一致，所有级别都写同一个轮转器。
// 实现 io.Closer，持有方（路由层）在关停时负责关闭。
type fileChannel struct {
	rot     xrotate.Rotator
	render  renderer
	recover bool

	mu sync.Mutex
}

func (f *fileChannel) Write(rec xrecord.Record) error {
	out := rec
	if f.recover {
		out = RecoverRecord(rec)
	}
	line := f.render.render(out)

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.rot.Write(append([]byte(line), '\n')); err != nil {
		return fmt.Errorf("xchannel: file write: %w", err)
	}
	return nil
}

// Close 关闭底层轮转器
func (f *fileChannel) Close() error {
	return f.rot.Close()
}

// 确保实现了接口
var _ Channel = (*fileChannel)(nil)
