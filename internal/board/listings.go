package board

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"noticeboard/internal/model"
	"noticeboard/internal/promotion"
)

// HideThreshold is the report count at which a listing is hidden from
// other users.
const HideThreshold = 3

// Hidden reports whether l has been reported often enough to be soft-hidden.
func Hidden(l model.Listing) bool {
	return l.ReportCount >= HideThreshold
}

// BrowseRequest filters the marketplace.
type BrowseRequest struct {
	Category string
	// OwnerID restricts the result to one seller. Owners also see their
	// hidden listings.
	OwnerID string
}

// Browse returns marketplace listings with active boosts first.
func (s *Service) Browse(ctx context.Context, req BrowseRequest) ([]model.Listing, error) {
	listings, err := s.sweptListings(ctx)
	if err != nil {
		return nil, err
	}

	matched := lo.Filter(listings, func(l model.Listing, _ int) bool {
		if req.Category != "" && !strings.EqualFold(l.Category, req.Category) {
			return false
		}
		if req.OwnerID != "" {
			return l.OwnerID == req.OwnerID
		}
		return !Hidden(l)
	})
	return promotion.SortForBrowse(matched, s.now()), nil
}

// Featured returns the featured strip: listings with an active boost.
func (s *Service) Featured(ctx context.Context) ([]model.Listing, error) {
	listings, err := s.sweptListings(ctx)
	if err != nil {
		return nil, err
	}
	visible := lo.Reject(listings, func(l model.Listing, _ int) bool { return Hidden(l) })
	return promotion.Featured(visible, s.now(), promotion.FeaturedLimit), nil
}

// Listing returns a single listing.
func (s *Service) Listing(ctx context.Context, id string) (*model.Listing, error) {
	l, err := s.store.GetListing(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get listing: %w", err)
	}
	return l, nil
}

// NewListing describes a listing to create.
type NewListing struct {
	OwnerID     string
	OwnerName   string
	Title       string
	Description string
	PriceMinor  int64
	Category    string
	Condition   string
	Contact     model.Contact
}

// CreateListing validates and stores a new listing with no placements.
func (s *Service) CreateListing(ctx context.Context, nl NewListing) (model.Listing, error) {
	l := model.Listing{
		ID:          "mkt_" + uuid.NewString(),
		OwnerID:     nl.OwnerID,
		OwnerName:   nl.OwnerName,
		Title:       strings.TrimSpace(nl.Title),
		Description: strings.TrimSpace(nl.Description),
		PriceMinor:  nl.PriceMinor,
		Category:    strings.ToLower(strings.TrimSpace(nl.Category)),
		Condition:   nl.Condition,
		Contact:     nl.Contact,
		CreatedAt:   s.now(),
	}
	if err := s.validate.ValidateStruct(l); err != nil {
		return model.Listing{}, err
	}

	if err := s.store.SaveListing(ctx, l); err != nil {
		return model.Listing{}, fmt.Errorf("save listing: %w", err)
	}
	s.log.Info("listing created", "listing_id", l.ID, "owner_id", l.OwnerID)
	return l, nil
}

// DeleteListing removes an owner's listing together with its receipts.
func (s *Service) DeleteListing(ctx context.Context, ownerID, listingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.ownedListing(ctx, ownerID, listingID); err != nil {
		return err
	}
	if err := s.store.DeleteListing(ctx, listingID); err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	s.log.Info("listing deleted", "listing_id", listingID)
	return nil
}

// ReportListing records a report by userID, at most once per listing per
// UTC day, and returns the updated listing. The report and the new count are
// written together.
func (s *Service) ReportListing(ctx context.Context, userID, listingID string) (model.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := s.now().UTC().Format("2006-01-02")
	updated, fresh, err := s.store.ReportListing(ctx, listingID, userID, day)
	if err != nil {
		return model.Listing{}, fmt.Errorf("report listing: %w", err)
	}
	if !fresh {
		return model.Listing{}, ErrAlreadyReported
	}

	if updated.ReportCount == HideThreshold {
		s.log.Warn("listing hidden after reports", "listing_id", listingID, "reports", updated.ReportCount)
	}
	return *updated, nil
}
