// Package xrecord 定义日志管道流转的不可变记录模型。
//
// # 记录模型
//
// [Record] 描述一次日志事件：级别、墙钟时间、logger 名称、消息、
// 可选的错误与有序的附加参数。记录一经构造即视为只读，管道各层
// （路由、通道、队列、消费者）都不得修改收到的记录；需要变体时
// 使用 [Record.WithAppender] 等拷贝方法。
//
// # 错误提升
//
// 不变式：Args 永远不包含 Err。构造时若首个参数是 error 类型，
// [New] 将其提升为记录的 Err 字段，其余参数保持原序。门面层
// error/fatal 的字符串提升（"some text" -> errors.New）由
// [SplitCause] 承担，这是对首参做运行时类型检查的唯一入口，
// 契约显式且范围收窄。
//
// # 参数格式化
//
// [FormatArg] 是展示层的标准参数转换：nil 归一为 "<nil>"，字符串
// 原样返回，error 取 Error()，其余值走 JSON 序列化并在失败时回退
// 字符串强转（见 xjson.Display）。[Lazy] 参数在格式化时才求值，
// 供昂贵的参数构造延迟到确认输出后执行。
package xrecord
