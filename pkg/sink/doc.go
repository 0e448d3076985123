// Package sink 提供把日志记录投递到外部系统的消费者实现。
//
// 子包列表：
//   - xredis: Redis Stream 投递
//   - xkafka: Kafka 投递（异步发送 + 投递回执循环）
//   - xpulsar: Pulsar 投递
//   - xclickhouse: ClickHouse 批量投递
//   - xmongo: MongoDB 批量投递
//   - xware: 消费者中间件（重试、熔断、去重、限流、互斥）
//
// 设计原则：
//   - 每个投递器都实现 xqueue.Consumer，可直接注册到异步队列
//   - 投递失败通过错误返回交给队列的 ErrorHook，绝不波及日志调用方
//   - 统一暴露 Stats() 投递计数与幂等的 Close(ctx)
//   - 只关闭自己创建的资源，调用方传入的客户端由调用方管理
package sink
