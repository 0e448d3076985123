// Package xqueue 提供日志管道的具名异步队列引擎。
//
// Manager 管理多条具名队列。每条队列持有一个无界缓冲和一个专属
// worker goroutine：记录按 FIFO 逐条出队，对出队时刻的消费者快照
// 并行投递（errgroup 扇出），全部消费者完成后才取下一条。
// 单条队列同一时刻只有一个 worker 在排空，顺序天然成立。
//
// 支持以下特性：
//   - 发布时刻无消费者的记录被直接丢弃并计数（不缓冲）
//   - 消费者注册具有集合语义：可比较的消费者值重复注册是空操作
//   - 注销函数幂等，重复调用安全
//   - 消费者返回错误或 panic 被隔离：计数后优先交给消费者自带的
//     ErrorHook，无钩子时经 Manager 错误回调或兜底出口上报，
//     绝不中断队列，也绝不传播到发布方
//   - 扇出耗时超过阈值时输出慢消费诊断日志（WithSlowThreshold）
//   - 可选观测器为发布与排空生成指标和追踪（WithObserver）
//   - Close(ctx) 排空所有队列缓冲后返回；ctx 到期则立即返回错误，
//     残留 worker 继续排空，可用 Done() 等待最终完成
//   - 每队列运行计数（入队/丢弃/投递/消费失败/当前深度）
//
// # 注意事项
//
//   - Publish 永不阻塞：缓冲无界，慢消费者导致内存增长而非丢日志
//   - 与 Close 并发的 Publish 存在极窄窗口：记录可能既不投递也不计入
//     丢弃。发布方应先停止发布再关闭
//   - 消费者回调不得调用 Manager.Close，否则会死锁
//   - func 类型的消费者不可比较，每次注册都是独立成员
//
// # 设计选择说明
//
// 设计决策: 每队列一个常驻 worker 而非发布时按需起 goroutine 抢占
// 排空权：排空权唯一由结构保证（单 worker），无需活跃标志，也不存在
// 退出前重查窗口。代价是空闲队列驻留一个 parked goroutine，对日志
// 场景的队列数量级可以接受。
//
// 设计决策: 消费失败只计数和上报，不重试不落盘。队列层不知道记录
// 的业务价值，重试策略属于消费者自身（可叠加 xware 重试中间件）。
package xqueue
