package services

import (
	"context"
	"fmt"
	"time"

	db "github.com/suiscan-ai/suiscan/internal/core/database"
	"github.com/suiscan-ai/suiscan/internal/models"
)

// Daily request allowances per plan. Adding a tier is a data change here, not
// a code change.
var planLimits = map[models.Plan]int{
	models.PlanFree: 20,
	models.PlanPro:  1000,
}

// GuestLimit is a lifetime cap per guest identifier, not a daily allowance.
const GuestLimit = 2

// UsageDecision is the outcome of a quota check.
type UsageDecision struct {
	Allowed   bool
	Remaining int
	// Guest is true when the decision was made on the guest path; exhausted
	// guests should be prompted to sign in rather than upgrade.
	Guest bool
}

// UsageService enforces per-account daily quotas and per-guest lifetime caps.
type UsageService struct {
	db  db.DbClient
	now func() time.Time
}

func NewUsageService(dbclient db.DbClient) *UsageService {
	return &UsageService{db: dbclient, now: time.Now}
}

// CheckAndReport decides whether the caller may send another message. Guests
// are limited by counting the messages they already own; accounts get a daily
// allowance that resets on the first request of each calendar day. With
// neither identity the request is denied.
func (s *UsageService) CheckAndReport(ctx context.Context, userID, guestID string) (UsageDecision, error) {
	if userID == "" && guestID != "" {
		used, err := s.db.CountGuestMessages(ctx, guestID)
		if err != nil {
			return UsageDecision{}, fmt.Errorf("count guest usage: %w", err)
		}
		remaining := GuestLimit - used
		if remaining < 0 {
			remaining = 0
		}
		return UsageDecision{Allowed: used < GuestLimit, Remaining: remaining, Guest: true}, nil
	}

	if userID != "" {
		dayStart := s.dayStart()
		usage, plan, found, err := s.db.ResetAndGetUsage(ctx, userID, dayStart)
		if err != nil {
			return UsageDecision{}, fmt.Errorf("read usage: %w", err)
		}
		if !found {
			return UsageDecision{}, nil
		}
		limit, ok := planLimits[plan]
		if !ok {
			limit = planLimits[models.PlanFree]
		}
		remaining := limit - usage
		if remaining < 0 {
			remaining = 0
		}
		return UsageDecision{Allowed: usage < limit, Remaining: remaining}, nil
	}

	return UsageDecision{}, nil
}

// Increment charges one request against the account's daily counter. Called
// only after a successful generation so failed calls never consume quota;
// guests are never incremented.
func (s *UsageService) Increment(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	return s.db.IncrementUsage(ctx, userID)
}

func (s *UsageService) dayStart() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
