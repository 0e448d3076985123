// Package xjson 提供 JSON 序列化工具函数。
//
// 本包服务于日志管道的展示路径：参数格式化（xrecord）、JSON 控制台
// 预设（xchannel）和 CLI 输出（logctl）都依赖这里的降级契约。
//
// # 功能概览
//
//   - [Display]: 单行 JSON，序列化失败时回退到 fmt.Sprint 强转。
//     这是日志参数展示的标准路径——失败只降级，绝不中断投递。
//   - [Pretty]: 缩进 JSON，失败时返回 "<marshal error: ...>" 标记字符串
//     （非合法 JSON），便于在输出中识别序列化问题。
//   - [PrettyE]: 与 Pretty 相同，失败时返回 [ErrMarshal] 包装的错误，
//     供需要区分"值本身"与"失败占位"的调用方使用。
//
// # 注意事项
//
// 遵循 [encoding/json] 默认行为，HTML 特殊字符（<, >, &）会被转义为
// Unicode 形式（<, >, &）。
package xjson
