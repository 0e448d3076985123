package xchannel

import "github.com/omeyang/logkit/pkg/log/xrecord"

// Channel 日志通道：接收一条完整记录并写入底层出口
//
// 实现不得修改收到的记录。写入失败返回错误而非 panic；
// 调用方（路由层、Multi 扇出）负责隔离与上报。
type Channel interface {
	Write(rec xrecord.Record) error
}

// RawChannel 原始日志通道：额外接收参数格式化函数
//
// 适用于需要自行决定参数序列化方式的出口。格式化函数的行为约定：
// nil 参数得到其字符串形态，字符串原样返回，其余值 JSON 序列化、
// 失败时退回字符串强转。
type RawChannel interface {
	WriteRaw(rec xrecord.Record, format xrecord.ArgFormatter) error
}

// ChannelFunc 把函数适配为 Channel
type ChannelFunc func(rec xrecord.Record) error

// Write 实现 Channel 接口
func (f ChannelFunc) Write(rec xrecord.Record) error {
	return f(rec)
}

// RawChannelFunc 把函数适配为 RawChannel
type RawChannelFunc func(rec xrecord.Record, format xrecord.ArgFormatter) error

// WriteRaw 实现 RawChannel 接口
func (f RawChannelFunc) WriteRaw(rec xrecord.Record, format xrecord.ArgFormatter) error {
	return f(rec, format)
}

// 确保适配器实现了接口
var (
	_ Channel    = (ChannelFunc)(nil)
	_ RawChannel = (RawChannelFunc)(nil)
)
