package sinkcore

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/omeyang/logkit/internal/diag"
	"github.com/omeyang/logkit/pkg/util/xid"
)

// IDSource 为载荷提供标识：EventID 取 UUID，Seq 取 Sonyflake。
// 并发安全。
type IDSource struct {
	gen  *xid.Generator
	sink *diag.Sink
}

// NewIDSource 创建标识源。onError 接收序列号生成失败的上报，
// nil 走默认 stderr 兜底。Sonyflake 初始化失败（机器 ID 不可判定）
// 直接返回错误。
func NewIDSource(onError func(error)) (*IDSource, error) {
	gen, err := xid.NewGenerator()
	if err != nil {
		return nil, fmt.Errorf("sinkcore: id generator: %w", err)
	}
	return &IDSource{gen: gen, sink: diag.NewSink(onError)}, nil
}

// Next 返回下一对标识。
// 序列号生成失败（时钟回拨等罕见场景）上报后 Seq 置零，
// 投递不因标识缺席而中断。
func (s *IDSource) Next() (eventID string, seq int64) {
	eventID = uuid.NewString()
	seq, err := s.gen.New()
	if err != nil {
		s.sink.Report(fmt.Errorf("sinkcore: next seq: %w", err))
		return eventID, 0
	}
	return eventID, seq
}
