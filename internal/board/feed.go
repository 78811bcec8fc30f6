package board

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"noticeboard/internal/feed"
	"noticeboard/internal/filter"
	"noticeboard/internal/model"
)

// PageSize is the number of organic posts added by each page load.
const PageSize = 15

// FeedRequest describes a home feed load.
type FeedRequest struct {
	Tab    filter.Tab
	Search string
	// Page is 1-based; page n shows the first n*PageSize posts.
	Page int
	// Seen holds sponsor ids already shown in this session. It is read, never modified.
	Seen feed.SeenSet
	// Dismissed holds alert ids the reader hid.
	Dismissed map[string]bool
}

// FeedPage is a composed feed.
type FeedPage struct {
	Entries []model.FeedEntry
	HasMore bool
	// Sponsored lists the ids of injected listings, for the caller's seen set.
	Sponsored []string
}

// Feed sweeps expired placements, selects and pages the organic posts and,
// on the plain home feed, injects unseen sponsored listings at the fixed slots.
func (s *Service) Feed(ctx context.Context, req FeedRequest) (FeedPage, error) {
	listings, err := s.sweptListings(ctx)
	if err != nil {
		return FeedPage{}, err
	}
	posts, err := s.store.ListPosts(ctx)
	if err != nil {
		return FeedPage{}, fmt.Errorf("list posts: %w", err)
	}

	now := s.now()
	q := filter.Query{Tab: req.Tab, Search: req.Search, Dismissed: req.Dismissed}
	matched := filter.Apply(posts, q, now)
	page := filter.Page(matched, req.Page, PageSize)
	hasMore := filter.HasMore(matched, req.Page, PageSize)

	if !q.Plain() {
		return FeedPage{Entries: feed.Organic(page), HasMore: hasMore}, nil
	}

	sponsored := feed.PickSponsored(lo.Reject(listings, func(l model.Listing, _ int) bool {
		return Hidden(l)
	}), feed.SelectOptions{
		Now:  now,
		Max:  feed.DefaultMaxSponsored,
		Seen: req.Seen,
	})
	entries := feed.InjectSponsored(page, sponsored, feed.DefaultSlots)
	ids := feed.SponsoredIDs(entries)
	sponsoredInjectedTotal.Add(float64(len(ids)))

	return FeedPage{Entries: entries, HasMore: hasMore, Sponsored: ids}, nil
}

// NewPost describes a post written by a reader.
type NewPost struct {
	Category model.PostCategory `validate:"required,oneof=alert opportunity event lostfound community ad"`
	Title    string             `validate:"required,max=120"`
	Message  string             `validate:"max=2000"`
	Author   string             `validate:"required"`
}

// CreatePost publishes an organic post.
func (s *Service) CreatePost(ctx context.Context, np NewPost) (model.Post, error) {
	if err := s.validate.ValidateStruct(np); err != nil {
		return model.Post{}, err
	}
	p := model.Post{
		ID:        "post_" + uuid.NewString(),
		Category:  np.Category,
		Title:     np.Title,
		Message:   np.Message,
		Author:    np.Author,
		Timestamp: s.now(),
	}
	if err := s.store.CreatePost(ctx, p); err != nil {
		return model.Post{}, fmt.Errorf("create post: %w", err)
	}
	return p, nil
}
