// Package notify subscribes to the store's change channels. Reads flow one
// way: store -> notification -> projection rebuild -> render; local state is
// never mutated outside this loop.
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	UsersChannel       = "users_changed"
	MatchesChannel     = "matches_changed"
	PredictionsChannel = "predictions_changed"
)

// Handler receives the channel that fired. Handlers must be idempotent:
// notifications from the three collections arrive in any interleaving.
type Handler func(ctx context.Context, channel string)

type Listener struct {
	pool     *pgxpool.Pool
	log      *slog.Logger
	channels []string
	handler  Handler
}

func NewListener(pool *pgxpool.Pool, log *slog.Logger, handler Handler) *Listener {
	return &Listener{
		pool:     pool,
		log:      log,
		channels: []string{UsersChannel, MatchesChannel, PredictionsChannel},
		handler:  handler,
	}
}

// Run blocks until ctx is done, reconnecting after transport faults.
func (l *Listener) Run(ctx context.Context) error {
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		l.log.Warn("notify listener disconnected", "err", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	for _, ch := range l.channels {
		if _, err := conn.Exec(ctx, "LISTEN "+ch); err != nil {
			return err
		}
	}

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		l.handler(ctx, n.Channel)
	}
}
