package xsample

import "github.com/omeyang/logkit/pkg/log/xrecord"

// Sampler 采样策略接口
//
// 采样器用于决定是否保留某条日志记录。
// 返回 true 表示保留，false 表示丢弃。
type Sampler interface {
	// Sample 判断是否保留该条记录
	//
	// rec 携带采样决策所需的全部信息（级别、logger 名、消息等），
	// 供 KeySampler、LevelAtLeast 等策略使用。
	Sample(rec xrecord.Record) bool
}

// ResettableSampler 可重置的采样器
//
// 某些有状态的采样器（如 CountSampler）可以被重置到初始状态。
type ResettableSampler interface {
	Sampler
	// Reset 重置采样器状态
	Reset()
}
