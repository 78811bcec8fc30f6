// Package storage defines the persistence interface and its implementations.
package storage

import (
	"context"
	"errors"

	"noticeboard/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Storage is the interface for all persistence operations.
//
// A listing is stored as a single document together with its receipts, so
// SaveListing persists a purchase's receipt and extension in one write.
type Storage interface {
	ListListings(ctx context.Context) ([]model.Listing, error)
	GetListing(ctx context.Context, id string) (*model.Listing, error)
	SaveListing(ctx context.Context, l model.Listing) error
	SaveListings(ctx context.Context, ls []model.Listing) error
	DeleteListing(ctx context.Context, id string) error

	CreatePost(ctx context.Context, p model.Post) error
	UpsertPost(ctx context.Context, p model.Post) (created bool, err error)
	ListPosts(ctx context.Context) ([]model.Post, error)

	// ReportListing stores a report of a listing by a user for a day together
	// with the incremented report count. It reports false when the user
	// already reported the listing that day.
	ReportListing(ctx context.Context, listingID, userID, day string) (*model.Listing, bool, error)

	Close() error
}
