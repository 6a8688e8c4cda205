package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mnibras/user-manager-api/internal/logger"
	"github.com/mnibras/user-manager-api/internal/model"
)

// Auth performs credential checks and token issuance, driving the
// lockout state machine through the attempt tracker.
type Auth struct {
	store    model.UserStore
	hasher   model.PasswordHasher
	attempts model.AttemptTracker
	tokens   model.TokenManager
	logger   *logger.Logger
}

func NewAuth(
	store model.UserStore,
	hasher model.PasswordHasher,
	attempts model.AttemptTracker,
	tokens model.TokenManager,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		store:    store,
		hasher:   hasher,
		attempts: attempts,
		tokens:   tokens,
		logger:   logger,
	}
}

// Login authenticates the user and mints an access token.
//
// Order matters: lock state is checked before the hash comparison, a
// failed comparison feeds the attempt tracker (imposing the lock at
// the threshold), and only a successful comparison re-evaluates the
// lock and stamps login timestamps. A lock clears solely when the
// attempt count has dropped below the threshold — a correct password
// alone never unlocks an account.
func (a *Auth) Login(ctx context.Context, username, password string) (model.User, string, error) {
	a.logger.Debug("Auth service: login attempt",
		"username", username)

	user, err := a.store.GetByUsername(ctx, username)
	if errors.Is(err, model.ErrNotFound) {
		a.logger.Info("Auth service: login for unknown username",
			"username", username)
		return model.User{}, "", model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, "", fmt.Errorf("failed to get user by username: %w", err)
	}

	if !user.Active {
		return model.User{}, "", model.ErrAccountDisabled
	}

	if !user.NotLocked && a.attempts.HasExceededMaxAttempts(username) {
		a.logger.Info("Auth service: login rejected, account locked",
			"username", username)
		return model.User{}, "", model.ErrAccountLocked
	}

	if !a.hasher.Verify(password, user.PasswordHash) {
		a.recordFailure(ctx, user)
		return model.User{}, "", model.ErrInvalidCredentials
	}

	if !user.NotLocked {
		// Attempt count fell below the threshold (expiry or evict):
		// unlock and start counting fresh.
		user.NotLocked = true
		a.attempts.Evict(username)
	}

	now := time.Now()
	user.LastLoginDateDisplay = user.LastLoginDate
	user.LastLoginDate = &now

	user, err = a.store.Save(ctx, user)
	if err != nil {
		return model.User{}, "", fmt.Errorf("failed to save login timestamps: %w", err)
	}

	tokenString, err := a.tokens.Generate(user)
	if err != nil {
		return model.User{}, "", fmt.Errorf("failed to issue token: %w", err)
	}

	a.logger.Info("Auth service: login succeeded",
		"username", username)

	return user, tokenString, nil
}

// recordFailure counts the failed attempt and imposes the lock once
// the threshold is reached.
func (a *Auth) recordFailure(ctx context.Context, user model.User) {
	a.attempts.RecordFailure(user.Username)

	if user.NotLocked && a.attempts.HasExceededMaxAttempts(user.Username) {
		user.NotLocked = false
		if _, err := a.store.Save(ctx, user); err != nil {
			a.logger.Error("Auth service: failed to persist lock",
				"username", user.Username,
				"error", err.Error())
			return
		}
		a.logger.Info("Auth service: account locked after repeated failures",
			"username", user.Username)
		return
	}

	a.logger.Info("Auth service: invalid credentials",
		"username", user.Username)
}
