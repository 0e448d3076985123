package xconf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Format 配置文件格式。
type Format string

// 支持的配置格式。
const (
	// FormatYAML YAML 格式（推荐用于 K8s ConfigMap）。
	FormatYAML Format = "yaml"

	// FormatJSON JSON 格式。
	FormatJSON Format = "json"
)

// Source 管道配置的数据源
//
// 持有解析后的配置快照，Reload 解析成功后原子替换快照，失败保留
// 旧快照（坏文件不破坏运行中的配置）。所有方法并发安全。
// Raw 返回的实例是当时的快照，Reload 后指向旧数据，按需重新获取。
type Source struct {
	path      string
	format    Format
	opts      options
	fromBytes bool

	k atomic.Pointer[koanf.Koanf]
	// reloadMu 序列化并发 Reload，防止交错读取导致配置回退
	reloadMu sync.Mutex
}

// NewSource 从文件创建配置源。
// 根据扩展名检测格式（.yaml/.yml 或 .json）。
func NewSource(path string, opts ...Option) (*Source, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	format, err := detectFormat(path)
	if err != nil {
		return nil, err
	}

	s := &Source{
		path:   path,
		format: format,
		opts:   applyOptions(opts),
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewSourceFromBytes 从字节数据创建配置源，需显式指定格式。
// 空数据得到空配置（解码出全零的管道配置）。字节源不支持 Reload 和监视。
func NewSourceFromBytes(data []byte, format Format, opts ...Option) (*Source, error) {
	if !format.valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	s := &Source{
		format:    format,
		opts:      applyOptions(opts),
		fromBytes: true,
	}
	k := koanf.New(s.opts.delim)
	if len(data) > 0 {
		if err := loadInto(k, data, format); err != nil {
			return nil, err
		}
	}
	s.k.Store(k)
	return s, nil
}

// Raw 返回当前配置快照的 koanf 实例，用于执行任意 koanf 读取。
func (s *Source) Raw() *koanf.Koanf {
	return s.k.Load()
}

// Unmarshal 把指定路径的配置反序列化到目标结构体，path 为空时取整个配置。
func (s *Source) Unmarshal(path string, target any) error {
	if err := s.Raw().UnmarshalWithConf(path, target, koanf.UnmarshalConf{
		Tag: s.opts.tag,
	}); err != nil {
		return fmt.Errorf("%w: %w", ErrUnmarshalFailed, err)
	}
	return nil
}

// Reload 重新读取并解析配置文件，成功后原子替换快照。
// 字节数据源调用返回 ErrNotReloadable。
func (s *Source) Reload() error {
	if s.fromBytes {
		return ErrNotReloadable
	}

	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	k := koanf.New(s.opts.delim)
	if err := loadInto(k, data, s.format); err != nil {
		return err
	}
	s.k.Store(k)
	return nil
}

// Path 返回配置文件路径，字节数据源返回空字符串。
func (s *Source) Path() string {
	return s.path
}

// Format 返回配置格式。
func (s *Source) Format() Format {
	return s.format
}

func (f Format) valid() bool {
	return f == FormatYAML || f == FormatJSON
}

// detectFormat 根据文件扩展名检测配置格式。
func detectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown extension %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// loadInto 把原始字节解析进 koanf 实例。
func loadInto(k *koanf.Koanf, data []byte, format Format) error {
	var parser koanf.Parser
	switch format {
	case FormatYAML:
		parser = yaml.Parser()
	case FormatJSON:
		parser = json.Parser()
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return fmt.Errorf("%w: %w", ErrParseFailed, err)
	}
	return nil
}
