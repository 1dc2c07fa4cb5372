package repopostgre

import (
	"context"

	"github.com/bospay/bosledger/token"
)

// ReadToken reads a token from the store. The caller decides about validity
// and expiration.
func (db DataBase) ReadToken(ctx context.Context, tkn string) (token.Token, error) {
	var t token.Token
	err := db.inner.QueryRowContext(ctx,
		`SELECT token, account_id, valid, expiration_date FROM tokens WHERE token = $1`, tkn).
		Scan(&t.Token, &t.AccountID, &t.Valid, &t.ExpirationDate)
	if err != nil {
		return token.Token{}, remapError(err)
	}
	return t, nil
}

// WriteToken writes a unique account bound token to the store.
func (db DataBase) WriteToken(ctx context.Context, t *token.Token) error {
	_, err := db.inner.ExecContext(ctx,
		`INSERT INTO tokens(token, account_id, valid, expiration_date) VALUES($1, $2, $3, $4)`,
		t.Token, t.AccountID, t.Valid, t.ExpirationDate)
	return remapError(err)
}

// InvalidateToken invalidates the token.
func (db DataBase) InvalidateToken(ctx context.Context, tkn string) error {
	res, err := db.inner.ExecContext(ctx, `UPDATE tokens SET valid = FALSE WHERE token = $1`, tkn)
	if err != nil {
		return remapError(err)
	}
	return requireRow(res)
}
