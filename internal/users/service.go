package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/granduer/granduer-backend/internal/notifications"
	"github.com/granduer/granduer-backend/pkg/config"
	"github.com/granduer/granduer-backend/pkg/db"
	"github.com/granduer/granduer-backend/pkg/db/models"
	pkgerrors "github.com/granduer/granduer-backend/pkg/errors"
	"github.com/granduer/granduer-backend/pkg/logger"
	"github.com/granduer/granduer-backend/pkg/security"
)

const (
	msgEmailExists  = "Email already exists!"
	msgUserNotFound = "User does not exist!"

	minPasswordLen = 8
)

type passwordHasher func(password string, p security.ArgonParams) (string, error)

// Service manages account registration and email verification.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	VerifyEmail(ctx context.Context, token string) (*models.User, error)
}

// RegisterInput carries the fields for a new account.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     *string
	Password  string
}

type service struct {
	repo   *Repository
	mailer notifications.Mailer
	jwtCfg config.JWTConfig
	pwCfg  config.PasswordConfig
	smtp   config.SMTPConfig
	hash   passwordHasher
	now    func() time.Time
	logger *logger.Logger
}

// NewService wires the account service.
func NewService(
	repo *Repository,
	mailer notifications.Mailer,
	jwtCfg config.JWTConfig,
	pwCfg config.PasswordConfig,
	smtpCfg config.SMTPConfig,
	logg *logger.Logger,
) Service {
	return &service{
		repo:   repo,
		mailer: mailer,
		jwtCfg: jwtCfg,
		pwCfg:  pwCfg,
		smtp:   smtpCfg,
		hash:   security.HashPassword,
		now:    time.Now,
		logger: logg,
	}
}

// Register creates the account and emails a verification link. A failed
// mail send is logged but does not roll back the account.
func (s *service) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	if err := validateRegister(input); err != nil {
		return nil, err
	}

	hash, err := s.hash(input.Password, s.argonParams())
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Phone:        input.Phone,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if db.IsUniqueViolation(err, "idx_users_email") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, msgEmailExists)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating user")
	}

	ctx = s.logger.WithUserID(ctx, user.ID.String())
	s.logger.Info(ctx, "user registered")

	if err := s.sendVerificationMail(ctx, user); err != nil {
		s.logger.Warn(s.logger.WithField(ctx, "error", err.Error()), "verification mail not sent")
	}

	return user, nil
}

// VerifyEmail validates the token from the verification link and marks the
// account verified. Verifying an already-verified account is a no-op.
func (s *service) VerifyEmail(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "verification token is required")
	}

	userID, err := parseVerificationToken(s.jwtCfg, token)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.MarkVerified(ctx, userID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marking user verified")
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgUserNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up user")
	}

	s.logger.Info(s.logger.WithUserID(ctx, user.ID.String()), "email verified")
	return user, nil
}

func (s *service) sendVerificationMail(ctx context.Context, user *models.User) error {
	token, err := issueVerificationToken(s.jwtCfg, user.ID, s.now())
	if err != nil {
		return err
	}

	link := fmt.Sprintf("%s?token=%s", s.smtp.VerifyURL, token)
	body := fmt.Sprintf(
		"Hi %s,\n\nWelcome to Granduer. Confirm your email address by following the link below:\n\n%s\n",
		user.FirstName, link,
	)
	return s.mailer.Send(ctx, user.Email, "Verify your Granduer account", body)
}

func (s *service) argonParams() security.ArgonParams {
	return security.ArgonParams{
		Memory:      uint32(s.pwCfg.ArgonMemoryKB),
		Iterations:  uint32(s.pwCfg.ArgonTime),
		Parallelism: uint8(s.pwCfg.ArgonParallelism),
		SaltLength:  uint32(s.pwCfg.ArgonSaltLen),
		KeyLength:   uint32(s.pwCfg.ArgonKeyLen),
	}
}

func validateRegister(input RegisterInput) error {
	if strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.LastName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "first and last name are required")
	}
	if strings.TrimSpace(input.Email) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if len(input.Password) < minPasswordLen {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}
	return nil
}
