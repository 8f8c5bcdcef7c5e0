package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrCodeNotFound = errors.New("code not found")

// CodePurpose records what a one-time code was issued for. Redeeming a code
// through the wrong endpoint is rejected.
type CodePurpose string

const (
	PurposeConfirmAccount CodePurpose = "confirm_account"
	PurposePasswordReset  CodePurpose = "password_reset"
)

// CodeRepository stores one-time confirmation and password-reset codes in
// Redis with an absolute TTL. Expiry is enforced by the store, not by
// application logic: an expired code simply no longer exists.
type CodeRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCodeRepository(client *redis.Client, ttl time.Duration) *CodeRepository {
	return &CodeRepository{client: client, ttl: ttl}
}

func codeKey(code string) string {
	// codes are hashed so the plaintext never appears in Redis
	sum := sha256.Sum256([]byte(code))
	return fmt.Sprintf("confirmation_token:%s", hex.EncodeToString(sum[:]))
}

// Store saves a code bound to a user and purpose. Issuing a new code does
// not invalidate previously issued unexpired codes.
func (r *CodeRepository) Store(ctx context.Context, code string, userID uuid.UUID, purpose CodePurpose) error {
	key := codeKey(code)

	pipe := r.client.Pipeline()
	pipe.HSet(ctx, key, map[string]any{
		"user_id": userID.String(),
		"purpose": string(purpose),
	})
	pipe.Expire(ctx, key, r.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store code: %w", err)
	}

	return nil
}

// Lookup returns the user and purpose bound to a code. Expired codes are
// indistinguishable from codes that never existed.
func (r *CodeRepository) Lookup(ctx context.Context, code string) (uuid.UUID, CodePurpose, error) {
	data, err := r.client.HGetAll(ctx, codeKey(code)).Result()
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("failed to look up code: %w", err)
	}
	if len(data) == 0 {
		return uuid.Nil, "", ErrCodeNotFound
	}

	userID, err := uuid.Parse(data["user_id"])
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("failed to parse user id on code: %w", err)
	}

	return userID, CodePurpose(data["purpose"]), nil
}

// Delete removes a redeemed code. Redeeming it again yields ErrCodeNotFound.
func (r *CodeRepository) Delete(ctx context.Context, code string) error {
	if err := r.client.Del(ctx, codeKey(code)).Err(); err != nil {
		return fmt.Errorf("failed to delete code: %w", err)
	}
	return nil
}
