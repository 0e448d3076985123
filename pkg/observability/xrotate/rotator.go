package xrotate

import "io"

// 编译时断言：Rotator 接口是 io.WriteCloser 的超集
var _ io.WriteCloser = (Rotator)(nil)

// Rotator 日志轮转器接口
//
// 隐式实现 [io.WriteCloser]，文件通道（xchannel.FileConfig）把它
// 当作普通输出流使用；额外的 Rotate 方法供手动或 cron 定时切割。
// 所有实现都必须是并发安全的。
//
// 扩展新实现时，必须满足以下约定：
//   - Write 必须是并发安全的
//   - Close 后调用 Write 或 Rotate 应返回 [ErrClosed]
//   - Rotate 可以在任意时刻调用
type Rotator interface {
	// Write 写入一段已渲染的日志文本，
	// 触发轮转条件时自动切割
	Write(p []byte) (n int, err error)

	// Close 关闭轮转器并释放文件句柄，
	// 重复调用应返回 [ErrClosed]
	Close() error

	// Rotate 手动触发轮转：关闭当前文件，
	// 重命名为备份，另起新文件
	Rotate() error
}
