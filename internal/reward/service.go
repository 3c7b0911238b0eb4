package reward

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/habitreel/internal/constants"
	"github.com/julianstephens/habitreel/internal/logger"
	"github.com/julianstephens/habitreel/internal/models"
	"github.com/julianstephens/habitreel/internal/tracker"
)

// ErrDisabled is returned when no provider is configured.
var ErrDisabled = errors.New("reward: rewards are disabled")

// Service unlocks photos for completed habits and keeps them in the day's cache.
type Service struct {
	provider Provider
	cache    *Cache
	limit    int
}

// NewService builds a service. A nil provider disables unlocking but cached rewards and
// reveal flags stay readable. limit bounds concurrent prefetches.
func NewService(provider Provider, cache *Cache, limit int) *Service {
	if cache == nil {
		cache = NewCache(nil)
	}
	if limit <= 0 {
		limit = constants.DefaultRewardPrefetchLimit
	}
	return &Service{provider: provider, cache: cache, limit: limit}
}

func (s *Service) Enabled() bool { return s.provider != nil }

func (s *Service) Cache() *Cache { return s.cache }

// Unlock returns the habit's reward for day, fetching it with the habit's seed on first
// use. Habits without rewards enabled get (nil, nil).
func (s *Service) Unlock(ctx context.Context, habit models.Habit, day string) (*models.PhotoReward, error) {
	if !habit.RewardEnabled {
		return nil, nil
	}
	if r, ok := s.cache.Get(habit.ID, day); ok {
		return &r, nil
	}
	if s.provider == nil {
		return nil, ErrDisabled
	}

	seed := SeedFor(habit.ID, day)
	logger.Debug("Fetching reward", "habit", habit.ID, "day", day, "seed", seed)
	photo, err := s.provider.RandomPhoto(ctx, seed)
	if err != nil {
		return nil, err
	}
	s.cache.Put(habit.ID, day, *photo)
	return photo, nil
}

// Lookup returns the cached reward without touching the provider.
func (s *Service) Lookup(habitID, day string) (*models.PhotoReward, bool) {
	r, ok := s.cache.Get(habitID, day)
	if !ok {
		return nil, false
	}
	return &r, true
}

// Forget drops the day's reward, used when a completion is undone.
func (s *Service) Forget(habitID, day string) {
	s.cache.Remove(habitID, day)
}

func (s *Service) Reveal(habitID, day string) {
	s.cache.MarkRevealed(habitID, day)
}

func (s *Service) Revealed(habitID, day string) bool {
	return s.cache.IsRevealed(habitID, day)
}

// Prefetch unlocks today's rewards concurrently for habits already completed today, so a
// restart does not leave finished habits without their photo. Individual fetch failures
// are logged and skipped; only cancellation of ctx is returned.
func (s *Service) Prefetch(ctx context.Context, ev *tracker.Evaluator, habits []models.Habit) error {
	if s.provider == nil {
		return nil
	}
	day := ev.TodayString()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)
	for _, habit := range habits {
		if !habit.RewardEnabled || habit.IsDeleted() || !ev.IsCompletedToday(habit) {
			continue
		}
		if _, ok := s.cache.Get(habit.ID, day); ok {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if _, err := s.Unlock(gctx, habit, day); err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				logger.Warn("Failed to prefetch reward", "habit", habit.ID, "error", err)
			}
			return nil
		})
	}
	return g.Wait()
}
