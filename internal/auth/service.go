package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"

	"github.com/uptask-dev/uptask/internal/logging"
	"github.com/uptask-dev/uptask/internal/user"
)

var (
	ErrInvalidCredentials  = errors.New("invalid password")
	ErrAccountNotConfirmed = errors.New("account not confirmed, check your inbox for a new code")
	ErrAlreadyConfirmed    = errors.New("account already confirmed")
)

// Argon2id parameters
// Time: 3, Memory: 64MB, Threads: 4, KeyLen: 32 bytes
const (
	argon2Time    = 3
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4
	argon2KeyLen  = 32
	saltLen       = 16
)

// EmailService defines the interface for confirmation/reset mail delivery
type EmailService interface {
	SendConfirmationEmail(ctx context.Context, toEmail, name, code string) error
	SendPasswordResetEmail(ctx context.Context, toEmail, name, code string) error
}

// Service handles account and credential business logic
type Service struct {
	userRepo        *user.Repository
	codeRepo        *CodeRepository
	tokenService    TokenService
	emailService    EmailService
	logger          *logging.Logger
	sessionDuration time.Duration
}

func NewService(
	userRepo *user.Repository,
	codeRepo *CodeRepository,
	tokenService TokenService,
	emailService EmailService,
	logger *logging.Logger,
	sessionDuration time.Duration,
) *Service {
	return &Service{
		userRepo:        userRepo,
		codeRepo:        codeRepo,
		tokenService:    tokenService,
		emailService:    emailService,
		logger:          logger,
		sessionDuration: sessionDuration,
	}
}

// Register creates an unconfirmed account and mails a confirmation code
func (s *Service) Register(ctx context.Context, name, email, password string) (*user.User, error) {
	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	newUser, err := s.userRepo.Create(ctx, email, passwordHash, name)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, user.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.issueCode(ctx, newUser, PurposeConfirmAccount); err != nil {
		// The account exists either way; the user can request a new code
		s.logger.Warn("failed to issue confirmation code", "email", newUser.Email, "error", err)
	}

	return newUser, nil
}

// ConfirmAccount redeems a confirmation code: the user becomes confirmed and
// the code is removed, so replaying it yields ErrCodeNotFound.
func (s *Service) ConfirmAccount(ctx context.Context, code string) error {
	userID, purpose, err := s.codeRepo.Lookup(ctx, code)
	if err != nil {
		return err
	}
	if purpose != PurposeConfirmAccount {
		// a reset code cannot confirm an account
		return ErrCodeNotFound
	}

	if err := s.userRepo.Confirm(ctx, userID); err != nil {
		return fmt.Errorf("failed to confirm user: %w", err)
	}

	if err := s.codeRepo.Delete(ctx, code); err != nil {
		return fmt.Errorf("failed to consume code: %w", err)
	}

	return nil
}

// Login authenticates a user and returns a signed session token.
// Unconfirmed accounts get a fresh confirmation code mailed and
// ErrAccountNotConfirmed back, before the password is ever checked, so the
// response does not reveal whether the password was correct.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	existingUser, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", user.ErrNotFound
		}
		return "", fmt.Errorf("failed to get user: %w", err)
	}

	if !existingUser.Confirmed {
		if err := s.issueCode(ctx, existingUser, PurposeConfirmAccount); err != nil {
			s.logger.Warn("failed to issue confirmation code on login", "email", email, "error", err)
		}
		return "", ErrAccountNotConfirmed
	}

	if !verifyPassword(existingUser.PasswordHash, password) {
		return "", ErrInvalidCredentials
	}

	token, err := s.tokenService.CreateToken(existingUser.ID, s.sessionDuration)
	if err != nil {
		return "", fmt.Errorf("failed to create session token: %w", err)
	}

	return token, nil
}

// RequestConfirmationCode re-issues a confirmation code for an unconfirmed
// account
func (s *Service) RequestConfirmationCode(ctx context.Context, email string) error {
	existingUser, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.ErrNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if existingUser.Confirmed {
		return ErrAlreadyConfirmed
	}

	return s.issueCode(ctx, existingUser, PurposeConfirmAccount)
}

// ForgotPassword issues a password reset code for a registered email
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	existingUser, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.ErrNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	return s.issueCode(ctx, existingUser, PurposePasswordReset)
}

// ValidateResetCode checks that a reset code exists and was issued for a
// password reset, without consuming it.
func (s *Service) ValidateResetCode(ctx context.Context, code string) error {
	_, purpose, err := s.codeRepo.Lookup(ctx, code)
	if err != nil {
		return err
	}
	if purpose != PurposePasswordReset {
		return ErrCodeNotFound
	}
	return nil
}

// ResetPassword redeems a reset code and sets the new password
func (s *Service) ResetPassword(ctx context.Context, code, newPassword string) error {
	userID, purpose, err := s.codeRepo.Lookup(ctx, code)
	if err != nil {
		return err
	}
	if purpose != PurposePasswordReset {
		return ErrCodeNotFound
	}

	passwordHash, err := hashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.codeRepo.Delete(ctx, code); err != nil {
		return fmt.Errorf("failed to consume code: %w", err)
	}

	return nil
}

// UpdateProfile changes the authenticated user's name and email
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, name, email string) error {
	if err := s.userRepo.UpdateProfile(ctx, userID, name, email); err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return user.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

// UpdateCurrentPassword verifies the current password before replacing it
func (s *Service) UpdateCurrentPassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	existingUser, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	if !verifyPassword(existingUser.PasswordHash, currentPassword) {
		return ErrInvalidCredentials
	}

	passwordHash, err := hashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

// CheckPassword verifies the authenticated user's password, used as a
// confirmation step before destructive actions.
func (s *Service) CheckPassword(ctx context.Context, userID uuid.UUID, password string) error {
	existingUser, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	if !verifyPassword(existingUser.PasswordHash, password) {
		return ErrInvalidCredentials
	}

	return nil
}

// issueCode generates a one-time code, stores it and mails it. Delivery
// happens in a goroutine; the operation succeeds once the code is stored.
func (s *Service) issueCode(ctx context.Context, u *user.User, purpose CodePurpose) error {
	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}

	if err := s.codeRepo.Store(ctx, code, u.ID, purpose); err != nil {
		return fmt.Errorf("failed to store code: %w", err)
	}

	toEmail, name := u.Email, u.Name
	go func() {
		// fresh context: the request context may already be cancelled
		emailCtx := context.Background()

		var sendErr error
		switch purpose {
		case PurposePasswordReset:
			sendErr = s.emailService.SendPasswordResetEmail(emailCtx, toEmail, name, code)
		default:
			sendErr = s.emailService.SendConfirmationEmail(emailCtx, toEmail, name, code)
		}

		if sendErr != nil {
			s.logger.Warn("failed to send code email", "email", toEmail, "purpose", string(purpose), "error", sendErr)
		}
	}()

	return nil
}

// generateCode creates a 6-digit numeric one-time code
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// hashPassword creates an argon2id hash of the password
func hashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey(
		[]byte(password),
		salt,
		argon2Time,
		argon2Memory,
		argon2Threads,
		argon2KeyLen,
	)

	// Encode as: $argon2id$v=19$m=65536,t=3,p=4$salt$hash
	encodedSalt := base64.RawStdEncoding.EncodeToString(salt)
	encodedHash := base64.RawStdEncoding.EncodeToString(hash)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		argon2Time,
		argon2Threads,
		encodedSalt,
		encodedHash,
	), nil
}

// verifyPassword checks a password against the stored encoded hash
func verifyPassword(encodedHash, password string) bool {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return false
	}

	var version int
	var memory, time uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false
	}
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	decodedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}

	inputHash := argon2.IDKey(
		[]byte(password),
		salt,
		time,
		memory,
		threads,
		uint32(len(decodedHash)),
	)

	return subtle.ConstantTimeCompare(decodedHash, inputHash) == 1
}
