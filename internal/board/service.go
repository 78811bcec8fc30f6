// Package board is the application service the user interface talks to. It
// ties storage, the promotion ledger, feed composition and the payment
// authority together.
package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/lo"

	"noticeboard/internal/model"
	"noticeboard/internal/payment"
	"noticeboard/internal/promotion"
	"noticeboard/internal/validator"
)

// Errors returned by the service.
var (
	ErrNotOwner        = errors.New("listing belongs to another user")
	ErrAlreadyReported = errors.New("listing already reported today")
)

// Store is the persistence the service needs.
type Store interface {
	ListListings(ctx context.Context) ([]model.Listing, error)
	GetListing(ctx context.Context, id string) (*model.Listing, error)
	SaveListing(ctx context.Context, l model.Listing) error
	SaveListings(ctx context.Context, ls []model.Listing) error
	DeleteListing(ctx context.Context, id string) error

	CreatePost(ctx context.Context, p model.Post) error
	ListPosts(ctx context.Context) ([]model.Post, error)

	ReportListing(ctx context.Context, listingID, userID, day string) (*model.Listing, bool, error)
}

// Payments is the external payment authority.
type Payments interface {
	Start(ctx context.Context, req payment.StartRequest) (payment.Started, error)
	Confirm(ctx context.Context, sessionID, code string) (model.Receipt, error)
	Cancel(sessionID string)
}

// Service implements the board operations. Listing read-modify-write
// sequences are serialized so a sweep cannot overwrite a purchase.
type Service struct {
	store    Store
	pay      Payments
	log      *slog.Logger
	validate *validator.Validator
	now      func() time.Time

	mu sync.Mutex
}

// New creates a Service.
func New(store Store, pay Payments, log *slog.Logger) *Service {
	return &Service{
		store:    store,
		pay:      pay,
		log:      log,
		validate: validator.New(),
		now:      time.Now,
	}
}

// SetClock overrides the time source (useful for testing).
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Sweep clears expired placements and persists only the listings that
// changed. It returns the cleaned collection.
func (s *Service) Sweep(ctx context.Context) (promotion.CleanupResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(ctx)
}

func (s *Service) sweepLocked(ctx context.Context) (promotion.CleanupResult, error) {
	listings, err := s.store.ListListings(ctx)
	if err != nil {
		return promotion.CleanupResult{}, fmt.Errorf("list listings: %w", err)
	}

	res := promotion.CleanupPromotions(listings, s.now())
	if !res.Changed {
		return res, nil
	}

	changed := lo.Filter(res.Listings, func(l model.Listing, _ int) bool {
		return lo.Contains(res.ChangedIDs, l.ID)
	})
	if err := s.store.SaveListings(ctx, changed); err != nil {
		return promotion.CleanupResult{}, fmt.Errorf("save swept listings: %w", err)
	}

	for p, n := range res.Cleared {
		clearedTotal.WithLabelValues(string(p)).Add(float64(n))
	}
	s.log.Info("expired promotions cleared",
		"listings", len(changed),
		"boosts", res.Cleared[model.PlacementBoost],
		"sponsors", res.Cleared[model.PlacementSponsor],
	)
	return res, nil
}

// sweptListings runs a sweep and returns the cleaned collection.
func (s *Service) sweptListings(ctx context.Context) ([]model.Listing, error) {
	res, err := s.Sweep(ctx)
	if err != nil {
		return nil, err
	}
	return res.Listings, nil
}

func (s *Service) ownedListing(ctx context.Context, ownerID, listingID string) (*model.Listing, error) {
	l, err := s.store.GetListing(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("get listing: %w", err)
	}
	if l.OwnerID != ownerID {
		return nil, ErrNotOwner
	}
	return l, nil
}
