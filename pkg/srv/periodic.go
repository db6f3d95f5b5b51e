package srv

import (
	"context"
	"sync"
	"time"
)

type periodicService struct {
	interval time.Duration
	run      func(ctx context.Context)

	stopOnce sync.Once
	stop     chan struct{}
}

// NewPeriodic runs fn every interval until the context is cancelled or the
// service is shut down.
func NewPeriodic(interval time.Duration, fn func(ctx context.Context)) Service {
	return &periodicService{
		interval: interval,
		run:      fn,
		stop:     make(chan struct{}),
	}
}

func (p *periodicService) Start(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-p.stop:
			return nil
		case <-ticker.C:
			p.run(ctx)
		}
	}
}

func (p *periodicService) Shutdown(ctx context.Context) error {
	p.stopOnce.Do(func() { close(p.stop) })
	return nil
}
