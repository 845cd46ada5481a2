package projection

import (
	"context"
	"log/slog"

	"matchday-backend/internal/notify"
	repo "matchday-backend/internal/repository"
)

// Loader feeds the projector: a full collection read on startup and again
// on every change notification.
type Loader struct {
	users   repo.Users
	matches repo.Matches
	preds   repo.Predictions
	proj    *Projector
	log     *slog.Logger
}

func NewLoader(users repo.Users, matches repo.Matches, preds repo.Predictions, proj *Projector, log *slog.Logger) *Loader {
	return &Loader{users: users, matches: matches, preds: preds, proj: proj, log: log}
}

func (l *Loader) LoadAll(ctx context.Context) error {
	for _, ch := range []string{notify.UsersChannel, notify.MatchesChannel, notify.PredictionsChannel} {
		if err := l.reload(ctx, ch); err != nil {
			return err
		}
	}
	return nil
}

// Handle is the notify.Handler: a reload failure is logged and left to the
// next notification, the projection keeps serving its previous snapshot.
func (l *Loader) Handle(ctx context.Context, channel string) {
	if err := l.reload(ctx, channel); err != nil {
		l.log.Warn("projection reload failed", "channel", channel, "err", err)
	}
}

func (l *Loader) reload(ctx context.Context, channel string) error {
	switch channel {
	case notify.UsersChannel:
		users, err := l.users.List(ctx)
		if err != nil {
			return err
		}
		l.proj.ReplaceUsers(users)
	case notify.MatchesChannel:
		matches, err := l.matches.List(ctx)
		if err != nil {
			return err
		}
		l.proj.ReplaceMatches(matches)
	case notify.PredictionsChannel:
		preds, err := l.preds.List(ctx)
		if err != nil {
			return err
		}
		l.proj.ReplacePredictions(preds)
	}
	return nil
}
