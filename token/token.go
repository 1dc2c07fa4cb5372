package token

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/bcrypt"
)

const minValidity = time.Hour * 12

const (
	size = 32
	cost = bcrypt.DefaultCost + 4
)

var ErrAccountEmpty = errors.New("account id is empty")

// Token proves to the REST API that a request comes from a caller that is
// allowed to act for the bound account. The identity provider issues tokens,
// this service only checks them.
type Token struct {
	ID             any    `json:"-"               bson:"_id,omitempty"   db:"id"`
	Token          string `json:"token"           bson:"token"           db:"token"`
	AccountID      string `json:"account_id"      bson:"account_id"      db:"account_id"`
	Valid          bool   `json:"valid"           bson:"valid"           db:"valid"`
	ExpirationDate int64  `json:"expiration_date" bson:"expiration_date" db:"expiration_date"`
}

// New creates a new token bound to the given account.
// Expiration is a unix microsecond timestamp at least twelve hours ahead.
func New(accountID string, expiration int64) (Token, error) {
	if accountID == "" {
		return Token{}, ErrAccountEmpty
	}

	t := time.UnixMicro(expiration)
	now := time.Now()

	if t.Before(now.Add(minValidity)) {
		return Token{}, fmt.Errorf("expiration time is in the past or is too short")
	}

	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return Token{}, fmt.Errorf("failed to generate token: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword(b, cost)
	if err != nil {
		return Token{}, fmt.Errorf("failed to generate token: %w", err)
	}

	return Token{
		Token:          base58.Encode(hash),
		AccountID:      accountID,
		Valid:          true,
		ExpirationDate: expiration,
	}, nil
}

// Expired reports whether the token expiration date already passed.
func (t *Token) Expired() bool {
	return t.ExpirationDate < time.Now().UnixMicro()
}
