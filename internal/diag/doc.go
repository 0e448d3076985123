// Package diag 提供日志管道内部错误的兜底上报。
//
// 日志管道自身出错时不能再经过日志管道，否则会递归放大故障。
// Sink 把内部错误交给调用方注入的回调，未注入时落到进程 stderr
// 的 slog 文本输出。所有上报都是尽力而为：回调 panic 被隔离，
// 并发期间的递归调用被跳过，错误总数始终可通过 Count 观测。
package diag
