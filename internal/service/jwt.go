package service

import (
	"context"
	"crypto/rand"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrBadConfirmToken = errors.New("invalid confirmation token")

// ConfirmTokens issues and checks the short-lived tokens that stand in for
// the "confirm delete" dialog over HTTP. A token names exactly one task.
type ConfirmTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewConfirmTokens uses secret when set, otherwise a random per-process key.
func NewConfirmTokens(secret string, ttl time.Duration) *ConfirmTokens {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		_, _ = rand.Read(key)
	}
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &ConfirmTokens{secret: key, ttl: ttl, now: time.Now}
}

func (c *ConfirmTokens) Issue(taskID string) (string, time.Time, error) {
	now := c.now()
	exp := now.Add(c.ttl)
	claims := jwt.MapClaims{
		"task_id": taskID,
		"exp":     exp.Unix(),
		"iat":     now.Unix(),
		"nbf":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify checks signature, expiry and that the token was issued for taskID.
func (c *ConfirmTokens) Verify(tokenString, taskID string) error {
	if tokenString == "" {
		return ErrBadConfirmToken
	}
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(c.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return ErrBadConfirmToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ErrBadConfirmToken
	}
	if id, _ := claims["task_id"].(string); id != taskID {
		return ErrBadConfirmToken
	}
	return nil
}

// Confirmer turns a presented token into the answer of the delete dialog.
func (c *ConfirmTokens) Confirmer(tokenString string) Confirmer {
	return ConfirmFunc(func(_ context.Context, spec ConfirmSpec) (bool, error) {
		return c.Verify(tokenString, spec.TaskID) == nil, nil
	})
}
