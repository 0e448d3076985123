package xchannel

import "github.com/omeyang/logkit/pkg/log/xrecord"

// asyncChannel 异步队列占位通道
//
// 单独构建 AsyncConfig 得到的是惰性占位：写入被静默丢弃。
// 与具名队列的真正绑定只发生在路由层，路由层对 Async 配置
// 绕过通道构建、直接投递队列。
type asyncChannel struct {
	name string
}

func (a *asyncChannel) Write(xrecord.Record) error {
	return nil
}

// ChannelName 返回配置的队列名
func (a *asyncChannel) ChannelName() string {
	return a.name
}

// 确保实现了接口
var _ Channel = (*asyncChannel)(nil)
