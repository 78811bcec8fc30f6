// Package payment is the demo payment authority behind promotion purchases.
// A payment is started for a payer's phone number, which yields a one-time
// code, and confirmed with that code within a short window. Only a
// successful confirmation produces a receipt.
package payment

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"noticeboard/internal/model"
	"noticeboard/internal/validator"
)

// DefaultSessionTTL is how long a started payment can be confirmed.
const DefaultSessionTTL = 2 * time.Minute

// StartRequest describes a payment to start.
type StartRequest struct {
	Method      model.PaymentMethod `validate:"required,oneof=eWallet card eft"`
	AmountMinor int64               `validate:"gt=0"`
	Days        int                 `validate:"gt=0"`
	ListingID   string              `validate:"required"`
	Placement   model.Placement     `validate:"required,oneof=boost sponsor"`
	PayerHandle string
}

// Started is returned by a successful Start.
type Started struct {
	SessionID string
	// ChallengeHint reveals the code in demo mode.
	ChallengeHint string
	Payer         string
	ExpiresAt     time.Time
}

type session struct {
	code      string
	expiresAt time.Time
	req       StartRequest
	payer     string
}

// Authority holds pending payment sessions in memory. It is safe for
// concurrent use.
type Authority struct {
	mu       sync.Mutex
	sessions map[string]session
	limiters map[string]*rate.Limiter

	ttl       time.Duration
	perMinute int
	now       func() time.Time
	code      func() string
	validate  *validator.Validator
}

// New creates an Authority. A non-positive ttl uses DefaultSessionTTL and a
// non-positive startsPerMinute disables throttling.
func New(ttl time.Duration, startsPerMinute int) *Authority {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Authority{
		sessions:  make(map[string]session),
		limiters:  make(map[string]*rate.Limiter),
		ttl:       ttl,
		perMinute: startsPerMinute,
		now:       time.Now,
		code:      newCode,
		validate:  validator.New(),
	}
}

// SetClock overrides the time source (useful for testing).
func (a *Authority) SetClock(now func() time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.now = now
}

// Start validates the request and opens a session. Invalid phone numbers fail
// with KindFormat before any session is created.
func (a *Authority) Start(ctx context.Context, req StartRequest) (Started, error) {
	if err := ctx.Err(); err != nil {
		return Started{}, err
	}

	payer, err := NormalizePhone(req.PayerHandle)
	if err != nil {
		return Started{}, err
	}
	if err := a.validate.ValidateStruct(req); err != nil {
		return Started{}, &Error{Kind: KindInvalid, Err: err}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	if !a.allow(payer, now) {
		return Started{}, &Error{Kind: KindRateLimited, Detail: payer}
	}

	id := uuid.NewString()
	s := session{
		code:      a.code(),
		expiresAt: now.Add(a.ttl),
		req:       req,
		payer:     payer,
	}
	a.sessions[id] = s

	return Started{
		SessionID:     id,
		ChallengeHint: s.code,
		Payer:         payer,
		ExpiresAt:     s.expiresAt,
	}, nil
}

func (a *Authority) allow(payer string, now time.Time) bool {
	if a.perMinute <= 0 {
		return true
	}
	lim, ok := a.limiters[payer]
	if !ok {
		lim = rate.NewLimiter(rate.Every(time.Minute/time.Duration(a.perMinute)), a.perMinute)
		a.limiters[payer] = lim
	}
	return lim.AllowN(now, 1)
}

// Confirm checks code against the session and returns the receipt. Expired
// and successful confirmations consume the session; a wrong code keeps it so
// the payer can retry within the window.
func (a *Authority) Confirm(ctx context.Context, sessionID, code string) (model.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return model.Receipt{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	s, ok := a.sessions[sessionID]
	if !ok {
		return model.Receipt{}, &Error{Kind: KindNoSession}
	}

	now := a.now()
	if now.After(s.expiresAt) {
		delete(a.sessions, sessionID)
		return model.Receipt{}, &Error{Kind: KindExpired}
	}
	if strings.TrimSpace(code) != s.code {
		return model.Receipt{}, &Error{Kind: KindBadCode}
	}
	delete(a.sessions, sessionID)

	return model.Receipt{
		Ref:         newRef(now),
		Timestamp:   now,
		Method:      s.req.Method,
		AmountMinor: s.req.AmountMinor,
		Days:        s.req.Days,
		ListingID:   s.req.ListingID,
		Placement:   s.req.Placement,
		Payer:       s.payer,
	}, nil
}

// Cancel invalidates a session. Unknown, expired or consumed ids are ignored.
func (a *Authority) Cancel(sessionID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.sessions, sessionID)
}

// PurgeExpired drops sessions past their window and returns how many were removed.
func (a *Authority) PurgeExpired() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	n := 0
	for id, s := range a.sessions {
		if now.After(s.expiresAt) {
			delete(a.sessions, id)
			n++
		}
	}
	return n
}

// Pending returns the number of open sessions.
func (a *Authority) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.sessions)
}

func newCode() string {
	return strconv.Itoa(100000 + rand.IntN(900000))
}

func newRef(now time.Time) string {
	part := strings.ToUpper(strconv.FormatInt(rand.Int64N(36*36*36*36), 36))
	part = strings.Repeat("0", 4-len(part)) + part
	return fmt.Sprintf("YAKA-%d-%s", now.Year(), part)
}
