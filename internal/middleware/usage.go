package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/recipefy/backend/internal/logger"
	"github.com/recipefy/backend/internal/usage"
)

// GuestIDHeader lets anonymous clients keep a stable usage identity.
const GuestIDHeader = "X-Guest-ID"

const (
	guestLimitMessage = "You've reached your daily recipe limit. Sign up for more recipes or try again tomorrow!"
	userLimitMessage  = "You've reached your daily recipe limit. Try again tomorrow!"
)

// UsageTracker is the part of usage.Tracker the gate needs.
type UsageTracker interface {
	Reserve(ctx context.Context, id usage.Identity) (*usage.Reservation, *usage.Record, error)
	Release(ctx context.Context, r *usage.Reservation) error
}

// Identity returns the usage identity of the caller: the authenticated user,
// else the X-Guest-ID header, else the client IP.
func Identity(c *gin.Context) usage.Identity {
	if id, ok := UserID(c); ok {
		return usage.UserIdentity(id)
	}
	if guest := strings.TrimSpace(c.GetHeader(GuestIDHeader)); guest != "" {
		return usage.GuestIdentity(guest)
	}
	return usage.GuestIdentity(c.ClientIP())
}

// UsageGate reserves one daily generation before the handler runs and gives
// it back when the handler fails or panics. Exhausted callers get 429
// without reaching the handler. Store failures let the request through.
func UsageGate(tracker UsageTracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := Identity(c)

		reservation, rec, err := tracker.Reserve(c.Request.Context(), id)
		if err != nil && !errors.Is(err, usage.ErrLimitReached) {
			logger.Error("Usage check failed", zap.String("identity", id.String()), zap.Error(err))
			c.Header("X-RateLimit-Error", "usage check failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rec.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(rec.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(rec.ResetAt.Unix(), 10))

		if errors.Is(err, usage.ErrLimitReached) {
			message := guestLimitMessage
			if id.Authenticated {
				message = userLimitMessage
			}
			logger.Info("Daily limit reached", zap.String("identity", id.String()), zap.Int("limit", rec.Limit))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":     message,
				"limit":     rec.Limit,
				"remaining": rec.Remaining,
				"reset_at":  rec.ResetAt,
			})
			return
		}

		succeeded := false
		// runs while a handler panic unwinds too
		defer func() {
			if succeeded {
				return
			}
			// context.Background: the request context may already be cancelled
			if err := tracker.Release(context.Background(), reservation); err != nil {
				logger.Error("Failed to release usage reservation", zap.String("identity", id.String()), zap.Error(err))
			}
		}()

		c.Next()
		succeeded = c.Writer.Status() < http.StatusBadRequest
	}
}
