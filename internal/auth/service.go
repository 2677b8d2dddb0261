package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/pdt-ict/portal/internal/shared"
	"github.com/pdt-ict/portal/internal/users"
)

var (
	errUserExists        = shared.NewPublicError(shared.ErrConflict, "User already exists with this email")
	errUserNotFound      = shared.NewPublicError(shared.ErrNotFound, "User not found")
	errNoToken           = shared.NewPublicError(shared.ErrUnauthenticated, "No token provided")
	errRefreshRejected   = shared.NewPublicError(shared.ErrUnauthenticated, "Invalid or expired token")
	errInvalidResetToken = shared.NewPublicError(shared.ErrValidation, "Invalid or expired reset token")
)

// ServiceConfig tunes Service behaviour.
type ServiceConfig struct {
	// HashCost overrides the bcrypt cost; zero keeps 10 rounds.
	HashCost int
	// ExposeResetToken echoes reset tokens in forgot-password results. Only for non-production modes.
	ExposeResetToken bool
}

// Service wraps authentication business rules.
type Service struct {
	store    users.Store
	tokens   *TokenService
	hasher   Hasher
	notifier ResetNotifier
	events   EventRecorder
	logger   *slog.Logger
	cfg      ServiceConfig

	decoyOnce sync.Once
	decoyHash string
}

// NewService constructs a new Service. notifier and events may be nil.
func NewService(store users.Store, tokens *TokenService, notifier ResetNotifier, events EventRecorder, logger *slog.Logger, cfg ServiceConfig) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    store,
		tokens:   tokens,
		hasher:   NewHasher(cfg.HashCost),
		notifier: notifier,
		events:   events,
		logger:   logger,
		cfg:      cfg,
	}
}

// Register creates an account and returns a session token for it.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	sess, err := s.register(ctx, in)
	s.record(EventRegister, err)
	return sess, err
}

func (s *Service) register(ctx context.Context, in RegisterInput) (*Session, error) {
	if err := ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	_, err := s.store.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, errUserExists
	case !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	user, err := s.store.Create(ctx, users.NewUser{
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
	})
	if err != nil {
		if errors.Is(err, shared.ErrConflict) {
			return nil, errUserExists
		}
		return nil, err
	}
	return s.newSession(user)
}

// Login checks credentials. Unknown emails and wrong passwords fail identically.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	sess, err := s.login(ctx, email, password)
	s.record(EventLogin, err)
	return sess, err
}

func (s *Service) login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.hasher.Compare(s.decoy(), password)
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.hasher.Compare(user.PasswordHash, password) {
		return nil, shared.ErrInvalidCredentials
	}
	return s.newSession(user)
}

// decoy returns a hash at the configured cost so that logins for unknown emails
// spend as long in bcrypt as logins with a wrong password.
func (s *Service) decoy() string {
	s.decoyOnce.Do(func() {
		hash, err := s.hasher.Hash(uuid.NewString())
		if err != nil {
			s.logger.Error("decoy hash", slog.Any("error", err))
			return
		}
		s.decoyHash = hash
	})
	return s.decoyHash
}

// CurrentUser returns the public profile for an authenticated id.
func (s *Service) CurrentUser(ctx context.Context, userID string) (users.Profile, error) {
	if userID == "" {
		return users.Profile{}, shared.NewPublicError(shared.ErrUnauthenticated, "Not authenticated")
	}
	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return users.Profile{}, errUserNotFound
		}
		return users.Profile{}, err
	}
	return user.Public(), nil
}

// RefreshToken mints a fresh session token from a still-valid one. The presented
// token stays valid until its own expiry.
func (s *Service) RefreshToken(ctx context.Context, token string) (string, error) {
	fresh, err := s.refresh(ctx, token)
	s.record(EventRefresh, err)
	return fresh, err
}

func (s *Service) refresh(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", errNoToken
	}
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errRefreshRejected, err)
	}
	user, err := s.store.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return "", errUserNotFound
		}
		return "", err
	}
	return s.tokens.Issue(user.ID, SessionTTL)
}

// ForgotPassword mints a reset token when the account exists and hands it to the
// notifier. Callers must respond identically whether or not the account exists.
func (s *Service) ForgotPassword(ctx context.Context, email string) (ForgotResult, error) {
	res, err := s.forgot(ctx, email)
	s.record(EventForgot, err)
	return res, err
}

func (s *Service) forgot(ctx context.Context, email string) (ForgotResult, error) {
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return ForgotResult{}, nil
		}
		return ForgotResult{}, err
	}

	token, err := s.tokens.Issue(user.ID, ResetTTL)
	if err != nil {
		return ForgotResult{}, err
	}
	if s.notifier != nil {
		if err := s.notifier.NotifyPasswordReset(ctx, user.Email, token); err != nil {
			s.logger.Warn("queue password reset mail", slog.String("user_id", user.ID), slog.Any("error", err))
		}
	}
	if !s.cfg.ExposeResetToken {
		return ForgotResult{}, nil
	}
	return ForgotResult{ResetToken: token}, nil
}

// ResetPassword replaces the password of the token's subject. Expired, malformed
// and orphaned tokens fail with the same message. Tokens are not single-use.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	err := s.reset(ctx, token, newPassword)
	s.record(EventReset, err)
	return err
}

func (s *Service) reset(ctx context.Context, token, newPassword string) error {
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return fmt.Errorf("%w: %w", errInvalidResetToken, err)
	}
	user, err := s.store.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return errInvalidResetToken
		}
		return err
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.store.UpdatePassword(ctx, user.ID, hash); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return errInvalidResetToken
		}
		return err
	}
	return nil
}

func (s *Service) newSession(user *users.User) (*Session, error) {
	token, err := s.tokens.Issue(user.ID, SessionTTL)
	if err != nil {
		return nil, err
	}
	return &Session{User: user.Public(), Token: token}, nil
}

func (s *Service) record(event string, err error) {
	if s.events == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	s.events.RecordAuthEvent(event, outcome)
}
