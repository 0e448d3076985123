package xjson

import "errors"

// ErrMarshal JSON 序列化失败。
// 仅 PrettyE 返回此错误；Display/Pretty 在失败时降级为占位输出。
var ErrMarshal = errors.New("xjson: marshal failed")
