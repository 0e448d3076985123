package xchannel

import (
	"fmt"

	"github.com/omeyang/logkit/internal/diag"
	"github.com/omeyang/logkit/pkg/log/xrecord"
)

// multiChannel 多路扇出通道
//
// 每条记录写到全部子通道。单个子通道的错误或 panic 被隔离并上报
// 兜底出口，不影响其余子通道收到这条记录。Write 永远返回 nil。
type multiChannel struct {
	children []Channel
	sink     *diag.Sink
}

func (m *multiChannel) Write(rec xrecord.Record) error {
	for i, child := range m.children {
		if err := m.safeWrite(child, rec); err != nil {
			m.sink.Report(fmt.Errorf("xchannel: multi child %d: %w", i, err))
		}
	}
	return nil
}

// safeWrite 隔离单个子通道的 panic，归一化为错误
func (m *multiChannel) safeWrite(child Channel, rec xrecord.Record) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("channel panicked: %v", r)
		}
	}()
	return child.Write(rec)
}

// 确保实现了接口
var _ Channel = (*multiChannel)(nil)
