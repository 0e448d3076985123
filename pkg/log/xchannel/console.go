package xchannel

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/omeyang/logkit/pkg/log/xlevel"
	"github.com/omeyang/logkit/pkg/log/xrecord"
)

// byLevel 按记录级别选择输出流
//
// Error/Fatal 走错误流，Warn 走警告流，Debug/Trace 走调试流，
// 其余（含 Info）走常规流。nil 字段回落到默认流。
func (s *Streams) byLevel(lvl xlevel.Level) io.Writer {
	pick := func(w io.Writer, def io.Writer) io.Writer {
		if w != nil {
			return w
		}
		return def
	}
	if s == nil {
		s = &Streams{}
	}
	switch {
	case lvl == xlevel.LevelError || lvl == xlevel.LevelFatal:
		return pick(s.Error, os.Stderr)
	case lvl == xlevel.LevelWarn:
		return pick(s.Warn, os.Stderr)
	case lvl == xlevel.LevelDebug || lvl == xlevel.LevelTrace:
		return pick(s.Debug, os.Stdout)
	default:
		return pick(s.Standard, os.Stdout)
	}
}

// consoleChannel 控制台文本通道
type consoleChannel struct {
	streams *Streams
	render  renderer
	recover bool // 未显式指定格式时启用预格式化反解

	// 逐条写入持锁，避免并发场景下多条记录的输出交错
	mu sync.Mutex
}

func (c *consoleChannel) Write(rec xrecord.Record) error {
	out := rec
	if c.recover {
		out = RecoverRecord(rec)
	}
	line := c.render.render(out)
	w := c.streams.byLevel(out.Level)

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprintln(w, line); err != nil {
		return fmt.Errorf("xchannel: console write: %w", err)
	}
	return nil
}

// 确保实现了接口
var _ Channel = (*consoleChannel)(nil)
