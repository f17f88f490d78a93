package notification

import (
	"context"
	"sync"
)

// テスト用のインメモリsink。
type MemorySink struct {
	mu          sync.Mutex
	OrderEvents []OrderStatusEvent
	RankEvents  []RankUpgradeEvent
	OrderErr    error
	RankErr     error
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) OrderStatus(ctx context.Context, ev OrderStatusEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.OrderErr != nil {
		return s.OrderErr
	}
	s.OrderEvents = append(s.OrderEvents, ev)
	return nil
}

func (s *MemorySink) RankUpgrade(ctx context.Context, ev RankUpgradeEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.RankErr != nil {
		return s.RankErr
	}
	s.RankEvents = append(s.RankEvents, ev)
	return nil
}

// 何もしないsink
type NopSink struct{}

func (NopSink) OrderStatus(ctx context.Context, ev OrderStatusEvent) error { return nil }
func (NopSink) RankUpgrade(ctx context.Context, ev RankUpgradeEvent) error { return nil }
