package xconf

import (
	"fmt"
	"strings"

	"github.com/omeyang/logkit/pkg/log/xchannel"
	"github.com/omeyang/logkit/pkg/log/xlevel"
	"github.com/omeyang/logkit/pkg/log/xlog"
	"github.com/omeyang/logkit/pkg/observability/xrotate"
)

// levelKey 全局级别在配置文件中的键名
const levelKey = "level"

// 文件里可声明的通道 kind。custom/raw 携带 Go 接口值，只能经代码装配。
const (
	kindConsole = "console"
	kindFile    = "file"
	kindMulti   = "multi"
	kindAsync   = "async"
)

// pipelineDTO 配置文件的顶层结构
type pipelineDTO struct {
	Level     string        `koanf:"level"`
	Default   *channelDTO   `koanf:"default_channel"`
	Appenders []appenderDTO `koanf:"appenders"`
}

// appenderDTO 路由规则的文件形态
//
// 采样器与参数格式化器是函数值，不提供文件形态，经代码补充。
type appenderDTO struct {
	Name       string      `koanf:"name"`
	Level      string      `koanf:"level"`
	Enabled    *bool       `koanf:"enabled"`
	Groups     []string    `koanf:"groups"`
	DateLayout string      `koanf:"date_layout"`
	Channel    *channelDTO `koanf:"channel"`
}

// channelDTO 通道配置的文件形态，字段按 kind 择用
type channelDTO struct {
	Kind     string `koanf:"kind"`
	Format   string `koanf:"format"`
	Template string `koanf:"template"`

	// file
	Path       string `koanf:"path"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
	Compress   bool   `koanf:"compress"`
	Schedule   string `koanf:"schedule"`

	// async
	Queue string `koanf:"queue"`

	// multi
	Channels []channelDTO `koanf:"channels"`
}

// LoadFile 读取配置文件并解码为管道配置。
// 等价于 NewSource + Decode，适合一次性装配场景。
func LoadFile(path string, opts ...Option) (xlog.Config, error) {
	src, err := NewSource(path, opts...)
	if err != nil {
		return xlog.Config{}, err
	}
	return Decode(src)
}

// LoadBytes 把字节数据解码为管道配置，需显式指定格式。
func LoadBytes(data []byte, format Format, opts ...Option) (xlog.Config, error) {
	src, err := NewSourceFromBytes(data, format, opts...)
	if err != nil {
		return xlog.Config{}, err
	}
	return Decode(src)
}

// Decode 把配置源的当前快照解码为管道配置
//
// 级别词宽松解析（未知词回落 Info），通道 kind、格式预设和分组匹配
// 正则严格校验，错误信息携带位置（如 appenders[1] ("audit").groups[0]）。
// 解码结果交给 xlog.New 做拓扑校验（重名、全禁用等在那里报错）。
func Decode(src *Source) (xlog.Config, error) {
	var dto pipelineDTO
	if err := src.Unmarshal("", &dto); err != nil {
		return xlog.Config{}, err
	}

	var cfg xlog.Config
	if dto.Level != "" {
		cfg.Level = lenientLevel(dto.Level)
	}
	if dto.Default != nil {
		ch, err := dto.Default.toChannel("default_channel")
		if err != nil {
			return xlog.Config{}, err
		}
		cfg.DefaultChannel = ch
	}
	for i := range dto.Appenders {
		a, err := dto.Appenders[i].toAppender(i)
		if err != nil {
			return xlog.Config{}, err
		}
		cfg.Appenders = append(cfg.Appenders, a)
	}
	return cfg, nil
}

// Level 读取当前快照的全局级别键。
// 键不存在时返回 (Info, false)；存在时宽松解析，未知词回落 Info。
func (s *Source) Level() (xlevel.Level, bool) {
	k := s.Raw()
	if !k.Exists(levelKey) {
		return xlevel.LevelInfo, false
	}
	return lenientLevel(k.String(levelKey)), true
}

// lenientLevel 宽松级别解析：解析失败取 ParseLevel 的回落值
func lenientLevel(word string) xlevel.Level {
	lvl, _ := xlevel.ParseLevel(word)
	return lvl
}

func (a *appenderDTO) toAppender(index int) (xlog.Appender, error) {
	pos := fmt.Sprintf("appenders[%d]", index)
	if a.Name != "" {
		pos = fmt.Sprintf("%s (%q)", pos, a.Name)
	}

	out := xlog.Appender{
		Name:       a.Name,
		Enabled:    a.Enabled,
		DateLayout: a.DateLayout,
	}
	if a.Level != "" {
		out.Level = xlog.Ptr(lenientLevel(a.Level))
	}
	for j, g := range a.Groups {
		m, err := xlog.ParseMatcher(g)
		if err != nil {
			return xlog.Appender{}, fmt.Errorf("xconf: %s.groups[%d]: %w", pos, j, err)
		}
		out.Groups = append(out.Groups, m)
	}
	if a.Channel == nil {
		return xlog.Appender{}, fmt.Errorf("xconf: %s: channel is required", pos)
	}
	ch, err := a.Channel.toChannel(pos + ".channel")
	if err != nil {
		return xlog.Appender{}, err
	}
	out.Channel = ch
	return out, nil
}

func (c *channelDTO) toChannel(pos string) (xchannel.Config, error) {
	switch strings.ToLower(strings.TrimSpace(c.Kind)) {
	case kindConsole:
		format, err := c.toFormat(pos)
		if err != nil {
			return nil, err
		}
		return xchannel.ConsoleConfig{Format: format}, nil

	case kindFile:
		if c.Path == "" {
			return nil, fmt.Errorf("xconf: %s: file channel path is required", pos)
		}
		format, err := c.toFormat(pos)
		if err != nil {
			return nil, err
		}
		return xchannel.FileConfig{
			Path:     c.Path,
			Format:   format,
			Rotate:   c.toRotate(),
			Schedule: c.Schedule,
		}, nil

	case kindMulti:
		if len(c.Channels) == 0 {
			return nil, fmt.Errorf("xconf: %s: %w", pos, xchannel.ErrEmptyMulti)
		}
		children := make([]xchannel.Config, 0, len(c.Channels))
		for j := range c.Channels {
			child, err := c.Channels[j].toChannel(fmt.Sprintf("%s.channels[%d]", pos, j))
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		return xchannel.MultiConfig{Channels: children}, nil

	case kindAsync:
		if c.Queue == "" {
			return nil, fmt.Errorf("xconf: %s: %w", pos, xchannel.ErrEmptyChannelName)
		}
		return xchannel.AsyncConfig{ChannelName: c.Queue}, nil

	case "custom", "raw":
		return nil, fmt.Errorf("xconf: %s: %w: %q", pos, ErrProgrammaticOnly, c.Kind)

	default:
		return nil, fmt.Errorf("xconf: %s: %w %q", pos, ErrUnknownKind, c.Kind)
	}
}

// toFormat 解析输出格式：template 与 format 互斥，预设名严格校验。
func (c *channelDTO) toFormat(pos string) (xchannel.Format, error) {
	if c.Template != "" && c.Format != "" {
		return nil, fmt.Errorf("xconf: %s: %w", pos, ErrFormatConflict)
	}
	if c.Template != "" {
		return xchannel.Template(c.Template), nil
	}
	if c.Format == "" {
		return nil, nil
	}
	preset, err := xchannel.ParsePreset(c.Format)
	if err != nil {
		return nil, fmt.Errorf("xconf: %s: %w", pos, err)
	}
	return preset, nil
}

// toRotate 把轮转字段映射为 xrotate 选项，零值字段沿用 xrotate 默认。
func (c *channelDTO) toRotate() []xrotate.Option {
	var opts []xrotate.Option
	if c.MaxSizeMB > 0 {
		opts = append(opts, xrotate.WithMaxSize(c.MaxSizeMB))
	}
	if c.MaxBackups > 0 {
		opts = append(opts, xrotate.WithMaxBackups(c.MaxBackups))
	}
	if c.MaxAgeDays > 0 {
		opts = append(opts, xrotate.WithMaxAge(c.MaxAgeDays))
	}
	if c.Compress {
		opts = append(opts, xrotate.WithCompress(true))
	}
	return opts
}
