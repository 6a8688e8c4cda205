package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/mnibras/user-manager-api/internal/logger"
	"github.com/mnibras/user-manager-api/internal/model"
	"github.com/mnibras/user-manager-api/internal/security"
)

// User manages the identity lifecycle: registration, administrative
// add, update, deletion, password reset and profile-image association.
type User struct {
	store    model.UserStore
	storage  model.Storage
	hasher   model.PasswordHasher
	notifier model.Notifier
	logger   *logger.Logger
	baseURL  string
}

func NewUser(
	store model.UserStore,
	storage model.Storage,
	hasher model.PasswordHasher,
	notifier model.Notifier,
	logger *logger.Logger,
	baseURL string,
) *User {
	return &User{
		store:    store,
		storage:  storage,
		hasher:   hasher,
		notifier: notifier,
		logger:   logger,
		baseURL:  baseURL,
	}
}

// Register creates a self-service identity with the default USER role,
// active and unlocked. The generated password is handed to the
// notifier for one-time out-of-band delivery and never returned to the
// transport layer.
func (s *User) Register(ctx context.Context, firstName, lastName, username, email string) (model.User, error) {
	s.logger.Debug("User service: registering user",
		"username", username)

	if _, err := s.validateUsernameAndEmail(ctx, "", username, email); err != nil {
		return model.User{}, err
	}

	password := security.GeneratePassword()
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := model.User{
		UserID:          security.GenerateUserID(),
		FirstName:       firstName,
		LastName:        lastName,
		Username:        username,
		Email:           email,
		PasswordHash:    hash,
		ProfileImageURL: s.temporaryProfileImageURL(username),
		JoinDate:        time.Now(),
		Role:            model.RoleUser,
		Authorities:     model.RoleUser.Authorities(),
		Active:          true,
		NotLocked:       true,
	}

	saved, err := s.store.Save(ctx, user)
	if err != nil {
		s.logger.Error("User service: failed to save new user",
			"username", username,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to save user: %w", err)
	}

	s.notifyPassword(ctx, saved, password)

	s.logger.Info("User service: user registered",
		"username", saved.Username,
		"user_id", saved.UserID)

	return saved, nil
}

// AddNew creates an identity with explicit role and flags, then
// associates the profile image if one was provided.
func (s *User) AddNew(ctx context.Context, params model.NewUserParams) (model.User, error) {
	s.logger.Debug("User service: adding user",
		"username", params.Username,
		"role", params.Role)

	if _, err := s.validateUsernameAndEmail(ctx, "", params.Username, params.Email); err != nil {
		return model.User{}, err
	}

	role, err := model.ResolveRole(params.Role)
	if err != nil {
		return model.User{}, err
	}

	password := security.GeneratePassword()
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := model.User{
		UserID:          security.GenerateUserID(),
		FirstName:       params.FirstName,
		LastName:        params.LastName,
		Username:        params.Username,
		Email:           params.Email,
		PasswordHash:    hash,
		ProfileImageURL: s.temporaryProfileImageURL(params.Username),
		JoinDate:        time.Now(),
		Role:            role,
		Authorities:     role.Authorities(),
		Active:          params.Active,
		NotLocked:       params.NotLocked,
	}

	saved, err := s.store.Save(ctx, user)
	if err != nil {
		s.logger.Error("User service: failed to save new user",
			"username", params.Username,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to save user: %w", err)
	}

	s.notifyPassword(ctx, saved, password)

	saved, err = s.saveProfileImage(ctx, saved, params.ProfileImage)
	if err != nil {
		return model.User{}, err
	}

	s.logger.Info("User service: user added",
		"username", saved.Username,
		"role", saved.Role)

	return saved, nil
}

// Update applies all mutable fields to the identity currently owning
// CurrentUsername. Authorities are recomputed from the new role.
func (s *User) Update(ctx context.Context, params model.UpdateUserParams) (model.User, error) {
	s.logger.Debug("User service: updating user",
		"current_username", params.CurrentUsername)

	current, err := s.validateUsernameAndEmail(ctx, params.CurrentUsername, params.Username, params.Email)
	if err != nil {
		return model.User{}, err
	}

	role, err := model.ResolveRole(params.Role)
	if err != nil {
		return model.User{}, err
	}

	current.FirstName = params.FirstName
	current.LastName = params.LastName
	current.Username = params.Username
	current.Email = params.Email
	current.Role = role
	current.Authorities = role.Authorities()
	current.Active = params.Active
	current.NotLocked = params.NotLocked

	saved, err := s.store.Save(ctx, *current)
	if err != nil {
		s.logger.Error("User service: failed to save updated user",
			"username", params.Username,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to save user: %w", err)
	}

	saved, err = s.saveProfileImage(ctx, saved, params.ProfileImage)
	if err != nil {
		return model.User{}, err
	}

	s.logger.Info("User service: user updated",
		"username", saved.Username)

	return saved, nil
}

// Delete removes the identity unconditionally. The capability check
// (user:delete) is performed by the caller before invoking this.
func (s *User) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		s.logger.Error("User service: failed to delete user",
			"id", id,
			"error", err.Error())
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.Info("User service: user deleted",
		"id", id)

	return nil
}

// ResetPassword replaces the identity's password with a fresh random
// one, delivered out-of-band.
func (s *User) ResetPassword(ctx context.Context, email string) error {
	user, err := s.store.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		return model.ErrEmailNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get user by email: %w", err)
	}

	password := security.GeneratePassword()
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = hash
	saved, err := s.store.Save(ctx, user)
	if err != nil {
		s.logger.Error("User service: failed to save reset password",
			"email", email,
			"error", err.Error())
		return fmt.Errorf("failed to save user: %w", err)
	}

	s.notifyPassword(ctx, saved, password)

	s.logger.Info("User service: password reset",
		"username", saved.Username)

	return nil
}

// UpdateProfileImage stores a new profile image for the identity and
// updates its image reference.
func (s *User) UpdateProfileImage(ctx context.Context, username string, image io.Reader) (model.User, error) {
	user, err := s.store.GetByUsername(ctx, username)
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user by username: %w", err)
	}

	return s.saveProfileImage(ctx, user, image)
}

// GetUsers lists all identities.
func (s *User) GetUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// FindByUsername looks up a single identity.
func (s *User) FindByUsername(ctx context.Context, username string) (model.User, error) {
	user, err := s.store.GetByUsername(ctx, username)
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user by username: %w", err)
	}
	return user, nil
}

// validateUsernameAndEmail enforces the uniqueness invariants. With a
// currentUsername it resolves the identity being modified and checks
// the candidate username/email against everyone else; without one it
// checks the candidates against all identities. No write happens here;
// the database unique constraints backstop concurrent writers.
func (s *User) validateUsernameAndEmail(ctx context.Context, currentUsername, newUsername, newEmail string) (*model.User, error) {
	if currentUsername != "" {
		current, err := s.store.GetByUsername(ctx, currentUsername)
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.ErrUserNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get user by username: %w", err)
		}

		byUsername, err := s.store.GetByUsername(ctx, newUsername)
		if err == nil && byUsername.ID != current.ID {
			return nil, model.ErrUsernameTaken
		}
		if err != nil && !errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("failed to get user by username: %w", err)
		}

		byEmail, err := s.store.GetByEmail(ctx, newEmail)
		if err == nil && byEmail.ID != current.ID {
			return nil, model.ErrEmailTaken
		}
		if err != nil && !errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("failed to get user by email: %w", err)
		}

		return &current, nil
	}

	_, err := s.store.GetByUsername(ctx, newUsername)
	if err == nil {
		return nil, model.ErrUsernameTaken
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	_, err = s.store.GetByEmail(ctx, newEmail)
	if err == nil {
		return nil, model.ErrEmailTaken
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return nil, nil
}

// saveProfileImage uploads the image under <username>.jpg, overwriting
// any previous one, and persists the updated image reference. A nil
// image is a no-op.
func (s *User) saveProfileImage(ctx context.Context, user model.User, image io.Reader) (model.User, error) {
	if image == nil {
		return user, nil
	}

	key := user.Username + ".jpg"
	if err := s.storage.Upload(ctx, key, image); err != nil {
		s.logger.Error("User service: failed to store profile image",
			"username", user.Username,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to store profile image: %w", err)
	}

	user.ProfileImageURL = s.profileImageURL(user.Username)
	saved, err := s.store.Save(ctx, user)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to save user: %w", err)
	}

	s.logger.Info("User service: profile image stored",
		"username", user.Username,
		"key", key)

	return saved, nil
}

// notifyPassword hands the generated plaintext to the notifier.
// Delivery is fire-and-forget: failures are logged, never surfaced.
func (s *User) notifyPassword(ctx context.Context, user model.User, password string) {
	if err := s.notifier.SendGeneratedPassword(ctx, user.FirstName, password, user.Email); err != nil {
		s.logger.Error("User service: failed to deliver generated password",
			"username", user.Username,
			"error", err.Error())
	}
}

func (s *User) profileImageURL(username string) string {
	return fmt.Sprintf("%s/user/image/%s/%s.jpg", s.baseURL, username, username)
}

func (s *User) temporaryProfileImageURL(username string) string {
	return fmt.Sprintf("%s/user/image/profile/%s", s.baseURL, username)
}
