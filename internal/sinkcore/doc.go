// Package sinkcore 提供下游投递 sink 的共享机件。
//
// 三件套：出站载荷 Payload（uuid 事件标识 + sonyflake 序列号 +
// 记录的外化字段，编码一次、各 sink 复用）、DeliveryCounter
// 投递计数器、尺寸加周期双触发的泛型 Batcher。各 sink
// （xredis/xkafka/xpulsar/xclickhouse/xmongo）在此之上只做
// 各自客户端的运输细节。
package sinkcore
