package xchannel

import (
	"fmt"

	"github.com/omeyang/logkit/pkg/log/xrecord"
)

// customChannel 适配应用自带的 Channel
//
// 写入前做与控制台一致的预格式化反解；用户通道的 panic
// 被归一化为错误返回，保证 Channel 契约的"只报错不炸"。
type customChannel struct {
	inner Channel
}

func (c *customChannel) Write(rec xrecord.Record) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("xchannel: custom channel panicked: %v", r)
		}
	}()
	return c.inner.Write(RecoverRecord(rec))
}

// rawAdapter 适配应用自带的 RawChannel
//
// 把构建期确定的参数格式化函数随记录一起传给用户通道。
type rawAdapter struct {
	inner RawChannel
	argf  xrecord.ArgFormatter
}

func (c *rawAdapter) Write(rec xrecord.Record) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("xchannel: raw channel panicked: %v", r)
		}
	}()
	return c.inner.WriteRaw(RecoverRecord(rec), c.argf)
}

// 确保实现了接口
var (
	_ Channel = (*customChannel)(nil)
	_ Channel = (*rawAdapter)(nil)
)
