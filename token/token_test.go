package token

import (
	"testing"
	"time"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
)

func TestNewToken(t *testing.T) {
	exp := time.Now().Add(time.Hour * 24).UnixMicro()
	tkn, err := New("acc_1", exp)
	assert.Nil(t, err)
	assert.NotEmpty(t, tkn.Token)
	assert.Equal(t, "acc_1", tkn.AccountID)
	assert.True(t, tkn.Valid)
	assert.False(t, tkn.Expired())

	_, err = base58.Decode(tkn.Token)
	assert.Nil(t, err)
}

func TestNewTokenUnique(t *testing.T) {
	exp := time.Now().Add(time.Hour * 24).UnixMicro()
	a, err := New("acc_1", exp)
	assert.Nil(t, err)
	b, err := New("acc_1", exp)
	assert.Nil(t, err)
	assert.NotEqual(t, a.Token, b.Token)
}

func TestNewTokenEmptyAccount(t *testing.T) {
	exp := time.Now().Add(time.Hour * 24).UnixMicro()
	_, err := New("", exp)
	assert.ErrorIs(t, err, ErrAccountEmpty)
}

func TestNewTokenExpirationTooShort(t *testing.T) {
	_, err := New("acc_1", time.Now().Add(time.Hour).UnixMicro())
	assert.NotNil(t, err)

	_, err = New("acc_1", time.Now().Add(-time.Hour).UnixMicro())
	assert.NotNil(t, err)
}
