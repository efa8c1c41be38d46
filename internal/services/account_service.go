package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/suiscan-ai/suiscan/internal/core"
	db "github.com/suiscan-ai/suiscan/internal/core/database"
	"github.com/suiscan-ai/suiscan/internal/models"
)

// AccountService owns account lookup-or-create and the welcome mail that
// follows a first sign-in.
type AccountService struct {
	db    db.DbClient
	email core.EmailSender
	log   *logrus.Logger
}

func NewAccountService(dbclient db.DbClient, email core.EmailSender, log *logrus.Logger) *AccountService {
	return &AccountService{db: dbclient, email: email, log: log}
}

// Profile carries the optional fields the zkLogin path supplies.
type Profile struct {
	Email  string
	Name   string
	Avatar string
}

// FindOrCreate resolves the account for a canonical address, creating it on
// first sight. The unique constraint on the address is the concurrency guard:
// losing the insert race degrades to a lookup. Existing accounts get missing
// profile fields backfilled, never overwritten.
func (s *AccountService) FindOrCreate(ctx context.Context, address string, method models.AuthMethod, profile Profile) (*models.User, bool, error) {
	candidate := &models.User{
		ID:         uuid.NewString(),
		SuiAddress: address,
		AuthMethod: method,
		Email:      profile.Email,
		Name:       profile.Name,
		Avatar:     profile.Avatar,
		Plan:       models.PlanFree,
	}
	created, err := s.db.CreateUser(ctx, candidate)
	if err != nil {
		return nil, false, fmt.Errorf("create account: %w", err)
	}

	user, err := s.db.GetUserByAddress(ctx, address)
	if err != nil {
		return nil, false, fmt.Errorf("load account: %w", err)
	}
	if user == nil {
		return nil, false, fmt.Errorf("account for %s vanished after create", address)
	}

	if !created && profile.Email != "" && user.Email == "" {
		if err := s.db.BackfillUserProfile(ctx, user.ID, profile.Email, profile.Name, profile.Avatar); err != nil {
			return nil, false, fmt.Errorf("backfill profile: %w", err)
		}
		if user, err = s.db.GetUserByAddress(ctx, address); err != nil || user == nil {
			return nil, false, fmt.Errorf("reload account: %w", err)
		}
	}

	if created {
		s.sendWelcome(ctx, user)
	}
	return user, created, nil
}

// sendWelcome fires the welcome email for brand-new accounts with a known
// address. Email failure never fails the surrounding login.
func (s *AccountService) sendWelcome(ctx context.Context, user *models.User) {
	if user.Email == "" {
		return
	}
	if err := s.email.SendWelcome(ctx, user.Email, user.Name, string(user.AuthMethod)); err != nil {
		s.log.WithError(err).WithField("user", user.ID).Warn("failed to send welcome email")
	}
}
