package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/sophia-wwww/accountd/internal/auth"
	"github.com/sophia-wwww/accountd/internal/mq"
	"github.com/sophia-wwww/accountd/internal/store"
	"github.com/sophia-wwww/accountd/types"
	"go.uber.org/zap"
)

// registeredChannel is the event channel new registrations are announced on.
const registeredChannel = "user.registered"

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	UpdateProfile(ctx context.Context, username string, update types.ProfileUpdate) error
}

// AccountService encapsulates account use-cases: registration,
// authentication, and profile reads/updates.
type AccountService struct {
	repo   UserRepository
	hasher *auth.PasswordHasher
	events *mq.MQ
	log    *zap.Logger
}

// NewAccountService constructs the service. events may be nil, in which
// case registration events are not published.
func NewAccountService(repo UserRepository, hasher *auth.PasswordHasher, events *mq.MQ, log *zap.Logger) *AccountService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AccountService{
		repo:   repo,
		hasher: hasher,
		events: events,
		log:    log,
	}
}

// Register creates a new account. The optional profile fields in rawFields
// are validated before any write; the username uniqueness check is repeated
// by the storage constraint, so a concurrent registration of the same name
// still surfaces ErrDuplicateUsername.
func (s *AccountService) Register(ctx context.Context, username, password string, rawFields map[string]any) (types.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return types.User{}, ErrMissingField
	}

	update, err := ValidateProfileFields(rawFields)
	if err != nil {
		return types.User{}, err
	}

	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return types.User{}, store.ErrDuplicateUsername
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, err
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return types.User{}, err
	}

	user := types.User{
		Username:       username,
		HashedPassword: hashed,
	}
	applyProfileFields(&user, update)

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return types.User{}, err
	}

	s.publishRegistered(ctx, created)
	return created, nil
}

// Authenticate verifies a username/password pair. Unknown usernames and
// wrong passwords both return ErrInvalidCredentials.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (types.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return types.User{}, ErrMissingField
	}

	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.log.Warn("authentication failed: unknown username", zap.String("username", username))
			return types.User{}, ErrInvalidCredentials
		}
		return types.User{}, err
	}

	if !s.hasher.Verify(password, user.HashedPassword) {
		s.log.Warn("authentication failed: wrong password", zap.String("username", username))
		return types.User{}, ErrInvalidCredentials
	}

	return user, nil
}

// GetProfile loads a user by username. Returns store.ErrNotFound for
// unknown usernames.
func (s *AccountService) GetProfile(ctx context.Context, username string) (types.User, error) {
	return s.repo.GetByUsername(ctx, username)
}

// UpdateProfile validates and applies a partial profile update. It reports
// whether any field actually changed; an empty or all-unrecognized field
// map is a successful no-op.
func (s *AccountService) UpdateProfile(ctx context.Context, username string, rawFields map[string]any) (bool, error) {
	if _, err := s.repo.GetByUsername(ctx, username); err != nil {
		return false, err
	}

	update, err := ValidateProfileFields(rawFields)
	if err != nil {
		return false, err
	}
	if update.Empty() {
		return false, nil
	}

	if err := s.repo.UpdateProfile(ctx, username, update); err != nil {
		return false, err
	}
	return true, nil
}

func (s *AccountService) publishRegistered(ctx context.Context, user types.User) {
	if s.events == nil {
		return
	}

	payload, err := json.Marshal(registeredEvent{
		UserID:       user.ID,
		Username:     user.Username,
		RegisteredAt: user.CreatedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		s.log.Warn("failed to encode registration event", zap.Error(err))
		return
	}

	// Best effort: a broker outage must not fail the registration itself.
	if _, err := s.events.Publish(ctx, registeredChannel, payload, nil); err != nil {
		s.log.Warn("failed to publish registration event",
			zap.String("username", user.Username),
			zap.Error(err),
		)
	}
}

type registeredEvent struct {
	UserID       int    `json:"user_id"`
	Username     string `json:"username"`
	RegisteredAt string `json:"registered_at"`
}

func applyProfileFields(user *types.User, update types.ProfileUpdate) {
	if update.Height.Set && update.Height.Valid {
		v := update.Height.Value
		user.Height = &v
	}
	if update.Weight.Set && update.Weight.Valid {
		v := update.Weight.Value
		user.Weight = &v
	}
	if update.Age.Set && update.Age.Valid {
		v := update.Age.Value
		user.Age = &v
	}
	if update.Gender.Set && update.Gender.Valid {
		v := update.Gender.Value
		user.Gender = &v
	}
}
