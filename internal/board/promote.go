package board

import (
	"context"
	"errors"
	"fmt"
	"time"

	"noticeboard/internal/model"
	"noticeboard/internal/payment"
	"noticeboard/internal/promotion"
)

// PromotionRequest asks to buy a placement for a listing.
type PromotionRequest struct {
	OwnerID   string              `validate:"required"`
	ListingID string              `validate:"required"`
	Placement model.Placement     `validate:"required,oneof=boost sponsor"`
	Days      int                 `validate:"oneof=7 14 30"`
	Method    model.PaymentMethod `validate:"required,oneof=eWallet card eft"`
	Phone     string
}

// PendingPromotion is a started purchase awaiting its confirmation code. It
// is held by the caller; the ledger knows nothing about it until the
// payment is confirmed.
type PendingPromotion struct {
	SessionID     string
	ListingID     string
	Placement     model.Placement
	Days          int
	AmountMinor   int64
	Method        model.PaymentMethod
	Payer         string
	ChallengeHint string
	ExpiresAt     time.Time
}

// StartPromotion prices the request and opens a payment session.
func (s *Service) StartPromotion(ctx context.Context, req PromotionRequest) (PendingPromotion, error) {
	if err := s.validate.ValidateStruct(req); err != nil {
		return PendingPromotion{}, err
	}
	if _, err := s.ownedListing(ctx, req.OwnerID, req.ListingID); err != nil {
		return PendingPromotion{}, err
	}

	amount := promotion.Price(req.Placement, req.Days)
	started, err := s.pay.Start(ctx, payment.StartRequest{
		Method:      req.Method,
		AmountMinor: amount,
		Days:        req.Days,
		ListingID:   req.ListingID,
		Placement:   req.Placement,
		PayerHandle: req.Phone,
	})
	if err != nil {
		s.paymentFailed(err)
		return PendingPromotion{}, fmt.Errorf("start payment: %w", err)
	}

	s.log.Debug("payment started",
		"session_id", started.SessionID,
		"listing_id", req.ListingID,
		"placement", req.Placement,
		"amount_minor", amount,
	)
	return PendingPromotion{
		SessionID:     started.SessionID,
		ListingID:     req.ListingID,
		Placement:     req.Placement,
		Days:          req.Days,
		AmountMinor:   amount,
		Method:        req.Method,
		Payer:         started.Payer,
		ChallengeHint: started.ChallengeHint,
		ExpiresAt:     started.ExpiresAt,
	}, nil
}

// ConfirmPromotion confirms the payment and, only on success, records the
// receipt and the extension in a single listing write. Payment failures
// leave the listing untouched.
func (s *Service) ConfirmPromotion(ctx context.Context, pending PendingPromotion, code string) (model.Listing, model.Receipt, error) {
	receipt, err := s.pay.Confirm(ctx, pending.SessionID, code)
	if err != nil {
		s.paymentFailed(err)
		return model.Listing{}, model.Receipt{}, fmt.Errorf("confirm payment: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.store.GetListing(ctx, receipt.ListingID)
	if err != nil {
		s.log.Error("paid listing unavailable", "listing_id", receipt.ListingID, "ref", receipt.Ref, "error", err)
		return model.Listing{}, receipt, fmt.Errorf("get listing: %w", err)
	}

	updated := promotion.Purchase(*l, receipt.Placement, receipt, s.now())
	if err := s.store.SaveListing(ctx, updated); err != nil {
		s.log.Error("persist purchase", "listing_id", receipt.ListingID, "ref", receipt.Ref, "error", err)
		return model.Listing{}, receipt, fmt.Errorf("save listing: %w", err)
	}

	purchasesTotal.WithLabelValues(string(receipt.Placement)).Inc()
	s.log.Info("promotion purchased",
		"listing_id", receipt.ListingID,
		"placement", receipt.Placement,
		"days", receipt.Days,
		"ref", receipt.Ref,
	)
	return updated, receipt, nil
}

// CancelPromotion abandons a pending purchase. The ledger is not touched.
func (s *Service) CancelPromotion(sessionID string) {
	s.pay.Cancel(sessionID)
}

// ClearPromotion ends an owner's placement immediately.
func (s *Service) ClearPromotion(ctx context.Context, ownerID, listingID string, p model.Placement) (model.Listing, error) {
	if !p.Valid() {
		return model.Listing{}, fmt.Errorf("unknown placement %q", p)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.ownedListing(ctx, ownerID, listingID)
	if err != nil {
		return model.Listing{}, err
	}

	updated := promotion.ExtendOrClear([]model.Listing{*l}, listingID, p, promotion.Clear(), s.now())[0]
	if err := s.store.SaveListing(ctx, updated); err != nil {
		return model.Listing{}, fmt.Errorf("save listing: %w", err)
	}
	s.log.Info("promotion cleared", "listing_id", listingID, "placement", p)
	return updated, nil
}

func (s *Service) paymentFailed(err error) {
	kind := payment.KindOf(err)
	if kind == "" {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return
		}
		kind = "unknown"
	}
	paymentFailuresTotal.WithLabelValues(string(kind)).Inc()
}
