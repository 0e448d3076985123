package xconf

// options 配置源的可调参数
type options struct {
	delim string
	tag   string
}

// Option 配置源选项函数。
type Option func(*options)

func applyOptions(opts []Option) options {
	o := options{
		delim: ".",
		tag:   "koanf",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// WithDelim 设置配置键分隔符，默认 "."（如 "appenders.0.name"）。
func WithDelim(delim string) Option {
	return func(o *options) {
		if delim != "" {
			o.delim = delim
		}
	}
}

// WithTag 设置反序列化使用的结构体标签名，默认 "koanf"。
func WithTag(tag string) Option {
	return func(o *options) {
		if tag != "" {
			o.tag = tag
		}
	}
}
