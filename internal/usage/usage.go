// Package usage counts recipe generations per caller per day and enforces
// the daily cap before any model call is made.
package usage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/recipefy/backend/config"
	"github.com/recipefy/backend/internal/logger"
)

const (
	dateLayout = "2006-01-02"
	keyPrefix  = "usage"
	// keyTTL outlives the day a key belongs to in every time zone.
	keyTTL = 48 * time.Hour
)

var ErrLimitReached = errors.New("daily recipe limit reached")

// Store keeps one counter per key. Implementations must make
// IncrementBelow atomic with respect to concurrent callers.
type Store interface {
	Get(ctx context.Context, key string) (int, error)
	// IncrementBelow increments key only while its value is below limit and
	// reports the resulting value and whether it was incremented.
	IncrementBelow(ctx context.Context, key string, limit int, ttl time.Duration) (int, bool, error)
	// Decrement lowers key by one without going below zero.
	Decrement(ctx context.Context, key string) error
	Delete(ctx context.Context, key string) error
}

// Identity names whoever a counter belongs to.
type Identity struct {
	ID            string
	Authenticated bool
}

func UserIdentity(userID uuid.UUID) Identity {
	return Identity{ID: userID.String(), Authenticated: true}
}

// GuestIdentity identifies an anonymous caller by a client-supplied id or,
// failing that, the remote address.
func GuestIdentity(id string) Identity {
	return Identity{ID: id}
}

func (i Identity) String() string {
	if i.Authenticated {
		return "user:" + i.ID
	}
	return "guest:" + i.ID
}

// Record is one identity's usage for one day.
type Record struct {
	Date      string    `json:"date"`
	Count     int       `json:"count"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
}

// Reservation is a provisional use of one generation. It is released when
// the generation fails so only successful generations count.
type Reservation struct {
	key      string
	identity Identity
}

type Tracker struct {
	store      Store
	guestLimit int
	userLimit  int
	loc        *time.Location
	now        func() time.Time
}

func NewTracker(store Store, cfg config.UsageConfig) (*Tracker, error) {
	loc := time.UTC
	if cfg.Timezone != "" {
		l, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid usage timezone %q: %w", cfg.Timezone, err)
		}
		loc = l
	}
	return &Tracker{
		store:      store,
		guestLimit: cfg.GuestLimit,
		userLimit:  cfg.UserLimit,
		loc:        loc,
		now:        time.Now,
	}, nil
}

// Limit returns the daily cap for id.
func (t *Tracker) Limit(id Identity) int {
	if id.Authenticated {
		return t.userLimit
	}
	return t.guestLimit
}

// Status reports today's usage. A new day starts from zero.
func (t *Tracker) Status(ctx context.Context, id Identity) (*Record, error) {
	date, resetAt := t.today()
	count, err := t.store.Get(ctx, t.key(id, date))
	if err != nil {
		return nil, fmt.Errorf("failed to read usage: %w", err)
	}
	return t.record(id, date, resetAt, count), nil
}

// Reserve claims one generation for today. It fails with ErrLimitReached,
// returning the current record, when the cap is already used up.
func (t *Tracker) Reserve(ctx context.Context, id Identity) (*Reservation, *Record, error) {
	date, resetAt := t.today()
	key := t.key(id, date)
	limit := t.Limit(id)

	count, ok, err := t.store.IncrementBelow(ctx, key, limit, keyTTL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to reserve usage: %w", err)
	}
	rec := t.record(id, date, resetAt, count)
	if !ok {
		return nil, rec, ErrLimitReached
	}
	return &Reservation{key: key, identity: id}, rec, nil
}

// Release gives a reservation back.
func (t *Tracker) Release(ctx context.Context, r *Reservation) error {
	if r == nil {
		return nil
	}
	if err := t.store.Decrement(ctx, r.key); err != nil {
		logger.Warn("Failed to release usage reservation",
			zap.String("identity", r.identity.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// Reset clears today's count for id.
func (t *Tracker) Reset(ctx context.Context, id Identity) (*Record, error) {
	date, resetAt := t.today()
	if err := t.store.Delete(ctx, t.key(id, date)); err != nil {
		return nil, fmt.Errorf("failed to reset usage: %w", err)
	}
	logger.Info("Usage reset", zap.String("identity", id.String()))
	return t.record(id, date, resetAt, 0), nil
}

func (t *Tracker) today() (string, time.Time) {
	now := t.now().In(t.loc)
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, t.loc)
	return now.Format(dateLayout), midnight.AddDate(0, 0, 1)
}

func (t *Tracker) key(id Identity, date string) string {
	return keyPrefix + ":" + id.String() + ":" + date
}

func (t *Tracker) record(id Identity, date string, resetAt time.Time, count int) *Record {
	limit := t.Limit(id)
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return &Record{
		Date:      date,
		Count:     count,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
}
