package repohelper

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/bospay/bosledger/ledger"
	"github.com/bospay/bosledger/product"
	"github.com/bospay/bosledger/repomongo"
	"github.com/bospay/bosledger/repopostgre"
	"github.com/bospay/bosledger/token"
)

var ErrDatabaseNotSupported = fmt.Errorf("database not supported")

// Migrator abstracts migration operations.
type Migrator interface {
	RunMigration(ctx context.Context) error
}

// TokenOperator abstracts access token operations.
type TokenOperator interface {
	ReadToken(ctx context.Context, tkn string) (token.Token, error)
	WriteToken(ctx context.Context, t *token.Token) error
	InvalidateToken(ctx context.Context, tkn string) error
}

// ProductOperator abstracts catalog operations.
type ProductOperator interface {
	ledger.ProductReader
	WriteProduct(ctx context.Context, p *product.Product) error
}

// ConnectionCloser abstracts connection closing operations.
type ConnectionCloser interface {
	Disconnect(ctx context.Context) error
	Ping(ctx context.Context) error
}

// RepositoryProvider is an interface that ensures that all required methods to run the ledger are implemented.
type RepositoryProvider interface {
	ledger.TransactionStore
	ledger.BalanceStore
	ProductOperator
	TokenOperator
	io.Writer
	Migrator
	ConnectionCloser
}

// DBConfig contains configuration for the database.
type DBConfig struct {
	Kind         string `yaml:"kind"`          // Kind selects the backend, one of: mongo, postgres. Inferred from ConnStr when empty.
	ConnStr      string `yaml:"conn_str"`      // ConnStr is the connection string to the database.
	DatabaseName string `yaml:"database_name"` // DatabaseName is the name of the database.
}

// Connect connects to the proper database and returns that connection.
func (cfg DBConfig) Connect(ctx context.Context) (RepositoryProvider, error) {
	kind := cfg.Kind
	if kind == "" {
		switch {
		case strings.Contains(cfg.ConnStr, "postgres"):
			kind = "postgres"
		case strings.Contains(cfg.ConnStr, "mongodb"):
			kind = "mongo"
		}
	}

	switch kind {
	case "postgres":
		return repopostgre.Connect(ctx, cfg.ConnStr, cfg.DatabaseName)
	case "mongo":
		return repomongo.Connect(ctx, cfg.ConnStr, cfg.DatabaseName)
	}

	return nil, ErrDatabaseNotSupported
}
