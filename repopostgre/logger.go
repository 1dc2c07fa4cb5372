package repopostgre

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bospay/bosledger/logger"
)

// Write writes a log record to the store.
// p is a marshaled logger.Log.
func (db DataBase) Write(p []byte) (n int, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	var l logger.Log
	if err := json.Unmarshal(p, &l); err != nil {
		return 0, err
	}
	_, err = db.inner.ExecContext(ctx,
		`INSERT INTO logs(created_at, level, msg) VALUES($1, $2, $3)`,
		l.CreatedAt, l.Level, l.Msg)
	if err != nil {
		return 0, err
	}
	return len(p), nil
}
