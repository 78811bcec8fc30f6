// Package scheduler runs periodic board maintenance: clearing expired
// promotions, dropping stale payment sessions and importing RSS posts.
package scheduler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"noticeboard/internal/config"
	"noticeboard/internal/fetcher"
	"noticeboard/internal/model"
	"noticeboard/internal/promotion"
)

// Sweeper clears expired placements.
type Sweeper interface {
	Sweep(ctx context.Context) (promotion.CleanupResult, error)
}

// SessionPurger drops expired payment sessions.
type SessionPurger interface {
	PurgeExpired() int
	Pending() int
}

// PostStore stores imported posts, deduplicated by source GUID.
type PostStore interface {
	UpsertPost(ctx context.Context, p model.Post) (bool, error)
}

// Scheduler periodically maintains the board.
type Scheduler struct {
	sweeper  Sweeper
	sessions SessionPurger
	posts    PostStore
	fetcher  *fetcher.Fetcher
	feeds    []config.ImportFeed
	log      *slog.Logger
	tick     time.Duration
	now      func() time.Time
}

// New creates a Scheduler with the default HTTP client.
func New(sweeper Sweeper, sessions SessionPurger, posts PostStore, feeds []config.ImportFeed, log *slog.Logger) *Scheduler {
	return NewWithFetcher(sweeper, sessions, posts, fetcher.New(http.DefaultClient), feeds, log)
}

// NewWithFetcher creates a Scheduler with a custom fetcher (useful for testing).
func NewWithFetcher(sweeper Sweeper, sessions SessionPurger, posts PostStore, f *fetcher.Fetcher, feeds []config.ImportFeed, log *slog.Logger) *Scheduler {
	return &Scheduler{
		sweeper:  sweeper,
		sessions: sessions,
		posts:    posts,
		fetcher:  f,
		feeds:    feeds,
		log:      log,
		tick:     1 * time.Minute,
		now:      time.Now,
	}
}

// SetTickInterval overrides the default 1-minute interval.
func (s *Scheduler) SetTickInterval(d time.Duration) {
	s.tick = d
}

// Run starts the scheduler loop, blocking until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.runOnce(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	if _, err := s.sweeper.Sweep(ctx); err != nil {
		s.log.Error("sweep promotions", "error", err)
	}

	if n := s.sessions.PurgeExpired(); n > 0 {
		s.log.Debug("purged payment sessions", "count", n, "pending", s.sessions.Pending())
	}

	for _, feed := range s.feeds {
		if ctx.Err() != nil {
			return
		}
		s.importFeed(ctx, feed)
	}
}

func (s *Scheduler) importFeed(ctx context.Context, feed config.ImportFeed) {
	s.log.Debug("importing feed", "url", feed.URL, "category", feed.Category)

	rssFeed, err := s.fetcher.Fetch(ctx, feed.URL)
	if err != nil {
		s.log.Error("fetch feed", "url", feed.URL, "error", err)
		return
	}

	created := 0
	for _, post := range fetcher.ToPosts(rssFeed, feed.Category, s.now()) {
		isNew, err := s.posts.UpsertPost(ctx, post)
		if err != nil {
			s.log.Error("store imported post", "url", feed.URL, "guid", post.Source, "error", err)
			continue
		}
		if isNew {
			created++
		}
	}

	if created > 0 {
		s.log.Info("imported posts", "url", feed.URL, "category", feed.Category, "count", created)
	}
}
