// Package xsample 提供日志记录级别的采样策略。
//
// 采样器在记录被路由到 appender 之后、写入通道之前做出保留/丢弃决策，
// 用于在高吞吐场景下限制日志量而不完全关闭某个 appender。
//
// # 核心接口
//
// Sampler 是采样策略的核心接口，Sample(rec) 返回是否保留该条记录。
//
// # 基础策略
//
//   - Always(): 全保留，总是返回 true
//   - Never(): 全丢弃，总是返回 false
//   - NewRateSampler(rate): 固定比率随机采样（如 10% 保留率）
//   - NewCountSampler(n): 计数采样（每 n 条保留 1 条）
//   - LevelAtLeast(min): 级别阈值采样（级别达到 min 才保留）
//
// # 高级策略
//
//   - NewKeySampler(rate, keyFunc): 基于 key 的一致性采样（使用 xxhash）
//   - ByLogger(rate): 按 logger 名一致性采样的便捷构造
//   - All()/Any(): AND/OR 组合多个采样器
//
// 典型组合是"错误全保留、其余按比率采样"：
//
//	rate, _ := xsample.NewRateSampler(0.1)
//	keep, _ := xsample.Any(xsample.LevelAtLeast(xlevel.LevelError), rate)
//
// # 一致性采样
//
// KeySampler 使用 xxhash（github.com/cespare/xxhash/v2）做确定性哈希，
// 同一 key 在所有进程、所有重启周期中产生相同的采样决策。按 logger 名
// 采样时，同一个 logger 的记录要么全部保留要么全部丢弃，便于排查问题时
// 获得完整的单源日志流。
//
// # 随机数源
//
// 比率采样使用 math/rand/v2 作为随机数源。对采样场景而言统计随机性已经
// 足够，无需密码学安全随机数，且单次决策开销低一个数量级。
//
// # 并发安全
//
// 所有采样器都是并发安全的，可以在多个 goroutine 中同时使用。
package xsample
