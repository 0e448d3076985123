package xchannel

import (
	"io"

	"github.com/omeyang/logkit/pkg/observability/xrotate"
)

// Config 通道配置的封闭和类型
//
// 变体为 [ConsoleConfig]、[CustomConfig]、[RawConfig]、[MultiConfig]、
// [AsyncConfig]、[FileConfig]，以值类型使用。标记方法不导出，
// 包外无法新增变体。
type Config interface {
	isChannelConfig()
}

// Streams 控制台输出流集合
//
// 为 nil 的字段使用默认流。级别到流的映射见 [ConsoleConfig]。
// 测试中可注入 bytes.Buffer 等捕获输出。
type Streams struct {
	// Standard 常规输出（Info 及未列出的级别），默认 os.Stdout
	Standard io.Writer
	// Debug 调试输出（Debug/Trace），默认 os.Stdout
	Debug io.Writer
	// Warn 警告输出，默认 os.Stderr
	Warn io.Writer
	// Error 错误输出（Error/Fatal），默认 os.Stderr
	Error io.Writer
}

// ConsoleConfig 控制台通道配置
//
// Format 为 nil 时使用 SIMPLE 预设，并启用预格式化消息反解
// （见包文档）。按级别选择输出流：Error/Fatal 走 Error 流，
// Warn 走 Warn 流，Debug/Trace 走 Debug 流，其余走 Standard 流。
type ConsoleConfig struct {
	Format  Format
	Streams *Streams
}

// CustomConfig 应用自带 Channel 的配置
type CustomConfig struct {
	Channel Channel
}

// RawConfig 应用自带 RawChannel 的配置
type RawConfig struct {
	Channel RawChannel
}

// MultiConfig 多路扇出配置
//
// 构建期校验：排除嵌套 Multi 后直接子通道必须至少剩一个，
// 否则返回 ErrEmptyMulti。嵌套 Multi 子项会被构建并按同样规则
// 各自校验，但不计入父级的数量要求；不做递归展平。
type MultiConfig struct {
	Channels []Config
}

// AsyncConfig 异步消费队列配置
//
// ChannelName 是队列名。单独通过 Build 构建得到惰性占位通道
// （写入被丢弃）；与具名队列的绑定只发生在路由层。
type AsyncConfig struct {
	ChannelName string
}

// FileConfig 文件通道配置
//
// 输出经 xrotate 按大小轮转；Schedule 非空时按 cron 表达式
// 叠加定时切割。Format 为 nil 时与控制台一致使用 SIMPLE 预设
// 并启用预格式化消息反解。
type FileConfig struct {
	Path     string
	Format   Format
	Rotate   []xrotate.Option
	Schedule string
}

func (ConsoleConfig) isChannelConfig() {}
func (CustomConfig) isChannelConfig()  {}
func (RawConfig) isChannelConfig()     {}
func (MultiConfig) isChannelConfig()   {}
func (AsyncConfig) isChannelConfig()   {}
func (FileConfig) isChannelConfig()    {}
