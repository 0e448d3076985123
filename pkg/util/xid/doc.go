// Package xid 为日志载荷生成 Sonyflake 序列号。
//
// 投递到外部系统的每条日志载荷携带两个标识：UUID 事件号负责全局唯一，
// 本包的序列号负责同机趋势递增，方便下游按生成顺序粗排与去重比对。
//
// # 基本用法
//
//	gen, err := xid.NewGenerator()
//	if err != nil {
//		// 机器 ID 不可判定，载荷退化为只带 UUID
//	}
//	seq, err := gen.New()
//
// # 机器 ID
//
// 序列号的机器位默认按以下顺序推导，全部失败时 NewGenerator 返回错误：
//
//  1. LOGKIT_MACHINE_ID 环境变量（0-65535，显式分配，唯一可控的方式）
//  2. POD_NAME 环境变量哈希（K8s Downward API 注入）
//  3. HOSTNAME 环境变量哈希
//  4. os.Hostname() 哈希
//  5. 私有 IPv4 低 16 位（sonyflake 默认策略）
//
// 哈希策略存在生日碰撞风险（百节点约 7%），大规模部署请用
// LOGKIT_MACHINE_ID 显式分配，或通过 WithMachineID 注入自有分配器。
//
// # 时钟回拨
//
// Sonyflake 的时间精度是 10ms，NTP 回拨时底层会短暂拒绝生成。
// New 单次尝试立即返回；NewWithRetry 以固定间隔重试，
// 最长等待 WithMaxWait 配置的时长（默认 500ms）。
// 时间分量溢出（ErrOverTimeLimit）不可恢复，两者都不重试。
//
// 所有方法并发安全。
package xid
