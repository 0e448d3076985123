package xware

import (
	"context"
	"sync"

	"github.com/omeyang/logkit/pkg/log/xlevel"
	"github.com/omeyang/logkit/pkg/log/xrecord"
)

// fakeConsumer 记录收到的日志并按预设序列依次返回错误，序列耗尽后成功。
type fakeConsumer struct {
	mu    sync.Mutex
	recs  []xrecord.Record
	errs  []error
	calls int
}

func (f *fakeConsumer) Consume(_ context.Context, rec xrecord.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.recs = append(f.recs, rec)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return err
	}
	return nil
}

func (f *fakeConsumer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeConsumer) records() []xrecord.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]xrecord.Record, len(f.recs))
	copy(out, f.recs)
	return out
}

// infoRecord 构造一条测试用 INFO 记录。
func infoRecord(logName, msg string) xrecord.Record {
	return xrecord.New(xlevel.LevelInfo, logName, msg)
}
