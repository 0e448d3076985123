package xconf

import "errors"

// 配置加载和解析相关错误。
var (
	// ErrEmptyPath 配置文件路径为空。
	ErrEmptyPath = errors.New("xconf: empty config path")

	// ErrUnsupportedFormat 不支持的配置格式。
	ErrUnsupportedFormat = errors.New("xconf: unsupported config format")

	// ErrLoadFailed 配置文件读取失败。
	ErrLoadFailed = errors.New("xconf: failed to load config")

	// ErrParseFailed 配置文本解析失败。
	ErrParseFailed = errors.New("xconf: failed to parse config")

	// ErrUnmarshalFailed 配置反序列化失败。
	ErrUnmarshalFailed = errors.New("xconf: failed to unmarshal config")

	// ErrNotReloadable 字节数据源不支持重载。
	ErrNotReloadable = errors.New("xconf: source created from bytes cannot reload")
)

// 管道配置解码相关错误。
var (
	// ErrUnknownKind 通道 kind 不在 console|file|multi|async 之内。
	ErrUnknownKind = errors.New("xconf: unknown channel kind")

	// ErrProgrammaticOnly 通道类型只能经代码装配，不能出现在配置文件里。
	ErrProgrammaticOnly = errors.New("xconf: channel kind is programmatic-only")

	// ErrFormatConflict format 与 template 同时出现。
	ErrFormatConflict = errors.New("xconf: format and template are mutually exclusive")
)

// 远程级别源相关错误。
var (
	// ErrNilContext context 参数为 nil。
	ErrNilContext = errors.New("xconf: nil context")

	// ErrNilClient etcd 客户端为 nil。
	ErrNilClient = errors.New("xconf: etcd client is required")

	// ErrEmptyKey 监听键为空。
	ErrEmptyKey = errors.New("xconf: level key is required")

	// ErrNilApply 级别应用回调为 nil。
	ErrNilApply = errors.New("xconf: apply callback is required")
)
