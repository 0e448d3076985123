package xjson

import (
	"encoding/json"
	"fmt"
)

// Display 将任意值序列化为单行 JSON 字符串，用于日志参数展示。
// 序列化失败时回退到 fmt.Sprint 的字符串强转，绝不返回错误：
// 展示路径上序列化失败只能降级，不能中断记录投递。
func Display(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

// Pretty 将任意值序列化为缩进格式的 JSON 字符串。
// 用于 CLI 和调试输出。序列化失败时返回 "<marshal error: ...>"。
func Pretty(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("<marshal error: %v>", err)
	}
	return string(data)
}

// PrettyE 与 Pretty 相同，但序列化失败时返回包裹 [ErrMarshal] 的错误。
// 需要区分"值本身"与"序列化失败占位"的调用方使用此变体。
func PrettyE(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMarshal, err)
	}
	return string(data), nil
}
