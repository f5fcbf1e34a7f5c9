package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wander-api/wander/internal/domain/entity"
	"github.com/wander-api/wander/internal/domain/repository"
	"github.com/wander-api/wander/pkg/apperr"
	"github.com/wander-api/wander/pkg/helpers"
	"github.com/wander-api/wander/pkg/mailer"
)

// passwordChangedSkew is subtracted from the password-change timestamp so a
// token issued later in the same request cycle is never considered stale.
const passwordChangedSkew = time.Second

// EmailPublisher enqueues outbound mail. Satisfied by helpers.RabbitPublisher.
type EmailPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// AuthService owns the credential lifecycle: signup, login, password change
// and the reset-token flow. All password hashing happens here, before
// anything is persisted; the store never sees plaintext.
type AuthService struct {
	Users         repository.UserRepository
	JWT           *helpers.JWTManager
	Hasher        *helpers.PasswordHasher
	Pub           EmailPublisher
	Logger        *logrus.Logger
	ResetTokenTTL time.Duration
	ResetURL      string

	now func() time.Time // overridable in tests
}

func NewAuthService(users repository.UserRepository, jwt *helpers.JWTManager, hasher *helpers.PasswordHasher,
	pub EmailPublisher, logger *logrus.Logger, resetTokenTTL time.Duration, resetURL string) *AuthService {
	return &AuthService{
		Users:         users,
		JWT:           jwt,
		Hasher:        hasher,
		Pub:           pub,
		Logger:        logger,
		ResetTokenTTL: resetTokenTTL,
		ResetURL:      resetURL,
		now:           time.Now,
	}
}

// Session is an issued bearer token with its absolute expiry.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

type SignupInput struct {
	Name            string
	Email           string
	Password        string
	PasswordConfirm string
}

// Signup creates an identity and logs it in. The password confirmation is
// checked here and then discarded; it is never persisted.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*entity.User, Session, error) {
	if in.Password != in.PasswordConfirm {
		return nil, Session{}, apperr.New(apperr.KindValidation, "passwords do not match")
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, Session{}, apperr.Wrap(apperr.KindInternal, "could not process password", err)
	}

	u := &entity.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        NormalizeEmail(in.Email),
		Role:         entity.RoleUser,
		PasswordHash: hash,
		Active:       true,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, Session{}, apperr.New(apperr.KindConflict, "email already in use")
		}
		return nil, Session{}, apperr.Wrap(apperr.KindDependency, "could not create account", err)
	}

	sess, err := s.issueSession(u.ID)
	if err != nil {
		return nil, Session{}, err
	}
	s.Logger.WithFields(logrus.Fields{"user_id": u.ID}).Info("user signed up")
	return u, sess, nil
}

// Login authenticates by email and password. Unknown email and wrong
// password produce the same error so callers cannot probe for accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.User, Session, error) {
	incorrect := apperr.New(apperr.KindAuthentication, "incorrect email or password")

	u, err := s.Users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, Session{}, incorrect
		}
		return nil, Session{}, apperr.Wrap(apperr.KindDependency, "login unavailable", err)
	}
	if !s.Hasher.Verify(password, u.PasswordHash) {
		return nil, Session{}, incorrect
	}

	sess, err := s.issueSession(u.ID)
	if err != nil {
		return nil, Session{}, err
	}
	s.Logger.WithFields(logrus.Fields{"user_id": u.ID}).Info("user logged in")
	return u, sess, nil
}

// UpdatePassword changes the password of an authenticated user after
// verifying the current one, then issues a fresh session. The stamped
// change time invalidates every token issued before this call.
func (s *AuthService) UpdatePassword(ctx context.Context, userID, current, newPassword, confirm string) (*entity.User, Session, error) {
	if newPassword != confirm {
		return nil, Session{}, apperr.New(apperr.KindValidation, "passwords do not match")
	}

	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, Session{}, apperr.New(apperr.KindAuthentication, "account no longer exists")
		}
		return nil, Session{}, apperr.Wrap(apperr.KindDependency, "password change unavailable", err)
	}
	if !s.Hasher.Verify(current, u.PasswordHash) {
		return nil, Session{}, apperr.New(apperr.KindAuthentication, "current password is incorrect")
	}

	if err := s.setPassword(ctx, u, newPassword); err != nil {
		return nil, Session{}, err
	}

	sess, err := s.issueSession(u.ID)
	if err != nil {
		return nil, Session{}, err
	}
	s.Logger.WithFields(logrus.Fields{"user_id": u.ID}).Info("password updated")
	return u, sess, nil
}

// ForgotPassword starts the reset flow. It reports success whether or not
// the email is registered. When it is, a single-use reset token is generated,
// only its hash persisted, and the plaintext enqueued for email delivery. A
// delivery enqueue failure rolls the stored token back so no valid but
// undeliverable token lingers.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.Users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.Logger.WithFields(logrus.Fields{"email": NormalizeEmail(email)}).Info("reset requested for unknown email")
			return nil
		}
		return apperr.Wrap(apperr.KindDependency, "password reset unavailable", err)
	}

	plain, hash, err := helpers.GenerateResetToken()
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "could not generate reset token", err)
	}
	expires := s.now().Add(s.ResetTokenTTL)
	if err := s.Users.SetResetToken(ctx, u.ID, hash, expires); err != nil {
		return apperr.Wrap(apperr.KindDependency, "password reset unavailable", err)
	}

	link := strings.TrimRight(s.ResetURL, "/") + "/" + plain
	job := mailer.EmailJob{
		To:      u.Email,
		Subject: fmt.Sprintf("Your password reset token (valid for %s)", s.ResetTokenTTL),
		Text: "Forgot your password? Submit a PATCH request with your new password and password confirmation to: " +
			link + "\nIf you didn't forget your password, please ignore this email.",
	}
	if err := s.Pub.PublishJSON(ctx, job); err != nil {
		// Undeliverable token must not stay valid.
		if clearErr := s.Users.ClearResetToken(ctx, u.ID); clearErr != nil {
			s.Logger.WithError(clearErr).WithFields(logrus.Fields{"user_id": u.ID}).Error("reset token rollback failed")
		}
		return apperr.Wrap(apperr.KindDependency, "could not send reset email, try again later", err)
	}
	s.Logger.WithFields(logrus.Fields{"user_id": u.ID}).Info("reset token issued")
	return nil
}

// ResetPassword consumes a reset token. Lookup failure and expiry are
// reported with one generic message; the token is cleared atomically with
// the password update, making it single-use.
func (s *AuthService) ResetPassword(ctx context.Context, plainToken, newPassword, confirm string) (*entity.User, Session, error) {
	if newPassword != confirm {
		return nil, Session{}, apperr.New(apperr.KindValidation, "passwords do not match")
	}

	u, err := s.Users.GetByResetTokenHash(ctx, helpers.HashResetToken(plainToken))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, Session{}, apperr.New(apperr.KindAuthentication, "token is invalid or has expired")
		}
		return nil, Session{}, apperr.Wrap(apperr.KindDependency, "password reset unavailable", err)
	}

	if err := s.setPassword(ctx, u, newPassword); err != nil {
		return nil, Session{}, err
	}

	sess, err := s.issueSession(u.ID)
	if err != nil {
		return nil, Session{}, err
	}
	s.Logger.WithFields(logrus.Fields{"user_id": u.ID}).Info("password reset completed")
	return u, sess, nil
}

// setPassword hashes first, then persists hash + change stamp + reset-field
// clearing in one repository call.
func (s *AuthService) setPassword(ctx context.Context, u *entity.User, plain string) error {
	hash, err := s.Hasher.Hash(plain)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "could not process password", err)
	}
	changedAt := s.now().Add(-passwordChangedSkew)
	if err := s.Users.UpdatePassword(ctx, u.ID, hash, changedAt); err != nil {
		return apperr.Wrap(apperr.KindDependency, "could not update password", err)
	}
	u.PasswordHash = hash
	u.PasswordChangedAt = &changedAt
	u.ResetTokenHash = nil
	u.ResetExpiresAt = nil
	return nil
}

func (s *AuthService) issueSession(userID string) (Session, error) {
	token, exp, err := s.JWT.Generate(userID)
	if err != nil {
		return Session{}, apperr.Wrap(apperr.KindInternal, "could not issue session token", err)
	}
	return Session{Token: token, ExpiresAt: exp}, nil
}

// NormalizeEmail lower-cases and trims an email before storage or lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
