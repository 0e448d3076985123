package xrecord

import (
	"github.com/omeyang/logkit/pkg/util/xjson"
)

// ArgFormatter 将任意附加参数转换为展示字符串。
// appender 可配置自定义实现；未配置时使用 [FormatArg]。
type ArgFormatter func(v any) string

// Lazy 延迟求值的参数。格式化时才调用，记录被级别过滤或无人消费时
// 构造开销为零。求值结果再经格式化规则转换。
type Lazy func() any

// FormatArg 默认参数格式化规则：
//   - nil 返回 "<nil>"
//   - 字符串原样返回
//   - error 返回 Error()
//   - Lazy 先求值再按上述规则转换
//   - 其余值 JSON 序列化，失败时回退字符串强转
func FormatArg(v any) string {
	switch t := v.(type) {
	case nil:
		return "<nil>"
	case string:
		return t
	case error:
		return t.Error()
	case Lazy:
		if t == nil {
			return "<nil>"
		}
		return FormatArg(t())
	default:
		return xjson.Display(v)
	}
}

// FormatArgs 将参数列表逐个转换为展示字符串。
// f 为 nil 时使用 [FormatArg]。Lazy 参数先在此求值，自定义格式化器
// 只需处理普通值。args 为空时返回 nil。
func FormatArgs(args []any, f ArgFormatter) []string {
	if len(args) == 0 {
		return nil
	}
	if f == nil {
		f = FormatArg
	}
	out := make([]string, len(args))
	for i, a := range args {
		if lz, ok := a.(Lazy); ok && lz != nil {
			a = lz()
		}
		out[i] = f(a)
	}
	return out
}
