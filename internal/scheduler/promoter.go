// Package scheduler runs the promotion tick. Because "live" is derived from
// time by every reader, the tick changes nothing semantic in storage: it
// only touches the record so change notifications reach other clients
// faster than their own clocks would.
package scheduler

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"

	"matchday-backend/internal/metrics"
	"matchday-backend/internal/models"
	repo "matchday-backend/internal/repository"
)

type Promoter struct {
	matches  repo.Matches
	clock    clockwork.Clock
	log      *slog.Logger
	interval time.Duration

	inFlight atomic.Bool
	sched    gocron.Scheduler
}

func NewPromoter(matches repo.Matches, clock clockwork.Clock, log *slog.Logger, interval time.Duration) *Promoter {
	return &Promoter{matches: matches, clock: clock, log: log, interval: interval}
}

func (p *Promoter) Start() error {
	s, err := gocron.NewScheduler(gocron.WithClock(p.clock))
	if err != nil {
		return err
	}
	if _, err := s.NewJob(gocron.DurationJob(p.interval), gocron.NewTask(p.Tick)); err != nil {
		return err
	}
	s.Start()
	p.sched = s
	return nil
}

func (p *Promoter) Stop() {
	if p.sched != nil {
		_ = p.sched.Shutdown()
	}
}

// Tick touches every upcoming match whose start time has passed. Running it
// zero, one or many times concurrently from multiple admin sessions yields
// the same observable state: terminal matches are never touched, nothing is
// ever downgraded, and write conflicts are simply ignored because there is
// nothing semantically new to write.
func (p *Promoter) Tick() {
	if !p.inFlight.CompareAndSwap(false, true) {
		return
	}
	defer p.inFlight.Store(false)

	ctx := context.Background()
	matches, err := p.matches.List(ctx)
	if err != nil {
		p.log.Warn("promotion scan failed", "err", err)
		return
	}

	now := p.clock.Now()
	touched := 0
	for _, m := range matches {
		if m.Status != models.StatusUpcoming {
			continue
		}
		if m.ScheduledStart.IsZero() || now.Before(m.ScheduledStart) {
			continue
		}
		if err := p.matches.Touch(ctx, m.ID); err != nil {
			// another admin session may have touched or deleted it already
			continue
		}
		touched++
	}

	if touched > 0 {
		p.log.Debug("promotion tick", "touched", touched)
	}
	metrics.SchedulerTicks.Inc()
}
