// Package model defines the domain types used across the application.
package model

import "time"

// Placement identifies one of the two time-bounded paid placements of a listing.
type Placement string

// Supported placements.
const (
	// PlacementBoost ranks a listing above non-boosted ones in the marketplace.
	PlacementBoost Placement = "boost"
	// PlacementSponsor injects a listing into the home feed.
	PlacementSponsor Placement = "sponsor"
)

// Placements lists every placement in a stable order.
var Placements = []Placement{PlacementBoost, PlacementSponsor}

// Valid reports whether p is a known placement.
func (p Placement) Valid() bool {
	return p == PlacementBoost || p == PlacementSponsor
}

// Contact holds the seller's contact channels.
type Contact struct {
	WhatsApp string `json:"whatsapp,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// Listing is a marketplace item. Activity of a placement is always derived
// from its expiry instant; there is no stored flag.
type Listing struct {
	ID           string     `json:"id"`
	OwnerID      string     `json:"ownerId" validate:"required"`
	OwnerName    string     `json:"ownerName,omitempty"`
	Title        string     `json:"title" validate:"required,max=120"`
	Description  string     `json:"description,omitempty" validate:"max=2000"`
	PriceMinor   int64      `json:"priceMinor" validate:"gte=0"`
	Category     string     `json:"category,omitempty"`
	Condition    string     `json:"condition,omitempty"`
	Contact      Contact    `json:"contact"`
	CreatedAt    time.Time  `json:"createdAt"`
	BoostUntil   *time.Time `json:"boostUntil"`
	SponsorUntil *time.Time `json:"sponsorUntil"`
	ReportCount  int        `json:"reportCount" validate:"gte=0"`
	// Receipts are ordered most recent first.
	Receipts []Receipt `json:"receipts"`
}

// Until returns the expiry instant of the given placement, or nil.
func (l Listing) Until(p Placement) *time.Time {
	switch p {
	case PlacementBoost:
		return l.BoostUntil
	case PlacementSponsor:
		return l.SponsorUntil
	}
	return nil
}

// WithUntil returns a copy of l with the given placement expiry replaced.
func (l Listing) WithUntil(p Placement, until *time.Time) Listing {
	switch p {
	case PlacementBoost:
		l.BoostUntil = until
	case PlacementSponsor:
		l.SponsorUntil = until
	}
	return l
}

// PaymentMethod is the channel a promotion was paid through.
type PaymentMethod string

// Supported payment methods.
const (
	MethodEWallet PaymentMethod = "eWallet"
	MethodCard    PaymentMethod = "card"
	MethodEFT     PaymentMethod = "eft"
)

// Receipt is an immutable proof of purchase attached to a listing.
type Receipt struct {
	Ref         string        `json:"ref"`
	Timestamp   time.Time     `json:"timestamp"`
	Method      PaymentMethod `json:"method"`
	AmountMinor int64         `json:"amountMinor"`
	Days        int           `json:"days"`
	ListingID   string        `json:"listingId"`
	Placement   Placement     `json:"placement"`
	Payer       string        `json:"payer,omitempty"`
}

// PostCategory classifies organic content.
type PostCategory string

// Supported post categories.
const (
	CategoryAlert       PostCategory = "alert"
	CategoryOpportunity PostCategory = "opportunity"
	CategoryEvent       PostCategory = "event"
	CategoryLostFound   PostCategory = "lostfound"
	CategoryCommunity   PostCategory = "community"
	CategoryAd          PostCategory = "ad"
)

// Reactions counts reader reactions on a post.
type Reactions struct {
	Helpful int `json:"helpful"`
}

// Post is an organic noticeboard item.
type Post struct {
	ID           string       `json:"id"`
	Category     PostCategory `json:"category"`
	Title        string       `json:"title"`
	Message      string       `json:"message"`
	Author       string       `json:"author"`
	Timestamp    time.Time    `json:"timestamp"`
	Reactions    Reactions    `json:"reactions"`
	CommentCount int          `json:"commentCount"`
	// Source is the GUID of the imported item this post was created from.
	Source string `json:"source,omitempty"`
	Link   string `json:"link,omitempty"`
}

// EntryKind tags a composed feed entry.
type EntryKind string

// Feed entry kinds.
const (
	EntryOrganic   EntryKind = "organic"
	EntrySponsored EntryKind = "sponsored"
)

// FeedEntry is one slot of a composed feed: either an organic post or a
// sponsored listing. It is produced during feed assembly and never persisted.
type FeedEntry struct {
	Kind    EntryKind
	Post    *Post
	Listing *Listing
}
