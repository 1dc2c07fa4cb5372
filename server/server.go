package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/bospay/bosledger/balance"
	"github.com/bospay/bosledger/ledger"
	"github.com/bospay/bosledger/logger"
	"github.com/bospay/bosledger/token"
	"github.com/bospay/bosledger/transaction"
)

const (
	ApiVersion = "1.0.0"
	Header     = "BosLedger"
)

const (
	transactionGroupURL = "/transactions"
	balanceGroupURL     = "/balance"
	idParamURL          = "/:id"
)

const (
	AliveURL         = "/alive"                    // URL to check if server is alive and version.
	RecordTrxURL     = transactionGroupURL         // URL to record a transaction, POST.
	ListTrxURL       = transactionGroupURL         // URL to list account transactions, GET.
	TrxByIDURL       = transactionGroupURL + "/%s" // URL template to address a single transaction by id.
	ReadBalanceURL   = balanceGroupURL             // URL to read the account balance, GET.
	AdjustBalanceURL = balanceGroupURL             // URL to adjust the account balance, POST.
)

var ErrWrongPortSpecified = errors.New("port must be between 1 and 65535")

// TransactionLedger abstracts the transaction operations exposed over REST.
type TransactionLedger interface {
	Record(ctx context.Context, accountID string, req ledger.RecordRequest) (transaction.Transaction, bool, error)
	Read(ctx context.Context, id, accountID string) (transaction.Transaction, error)
	Update(ctx context.Context, id, accountID string, req ledger.RecordRequest) (transaction.Transaction, error)
	Delete(ctx context.Context, id, accountID string) error
	List(ctx context.Context, accountID string) ([]transaction.Transaction, error)
}

// BalanceLedger abstracts the balance operations exposed over REST.
type BalanceLedger interface {
	Read(ctx context.Context, accountID string) (balance.Balance, error)
	Adjust(ctx context.Context, accountID string, req ledger.AdjustRequest) (balance.Balance, error)
}

// TokenReader abstracts access token lookup.
type TokenReader interface {
	ReadToken(ctx context.Context, tkn string) (token.Token, error)
}

// Config contains configuration of the server.
type Config struct {
	Port           int    `yaml:"port"`            // Port to listen on.
	AllowedOrigins string `yaml:"allowed_origins"` // Comma separated CORS origins, empty allows all.
}

type server struct {
	trxs     TransactionLedger
	balances BalanceLedger
	tokens   TokenReader
	log      logger.Logger
}

// Run initializes routing and runs the server. To stop the server cancel the context.
// It blocks until the context is canceled.
func Run(
	ctx context.Context, c Config, trxs TransactionLedger,
	balances BalanceLedger, tokens TokenReader, log logger.Logger,
) error {
	var err error
	ctxx, cancel := context.WithCancel(ctx)
	defer cancel()

	if c.Port < 1 || c.Port > 65535 {
		return ErrWrongPortSpecified
	}

	s := &server{
		trxs:     trxs,
		balances: balances,
		tokens:   tokens,
		log:      log,
	}

	router := s.routing(c)

	go func() {
		err := router.Listen(fmt.Sprintf("0.0.0.0:%v", c.Port))
		if err != nil {
			cancel()
		}
	}()

	<-ctxx.Done()

	if errx := router.Shutdown(); errx != nil {
		err = errors.Join(err, errx)
	}

	return err
}

func (s *server) routing(c Config) *fiber.App {
	router := fiber.New(fiber.Config{
		Prefork:       false,
		CaseSensitive: true,
		StrictRouting: true,
		ReadTimeout:   time.Second * 5,
		WriteTimeout:  time.Second * 5,
		ServerHeader:  Header,
		AppName:       ApiVersion,
		Concurrency:   4096,
	})
	router.Use(recover.New())
	corsCfg := cors.Config{}
	if c.AllowedOrigins != "" {
		corsCfg.AllowOrigins = c.AllowedOrigins
	}
	router.Use(cors.New(corsCfg))

	router.Get(AliveURL, s.alive)

	router.Post(transactionGroupURL, s.recordTrx)
	router.Get(transactionGroupURL, s.listTrxs)

	trx := router.Group(transactionGroupURL)
	trx.Get(idParamURL, s.readTrx)
	trx.Put(idParamURL, s.updateTrx)
	trx.Delete(idParamURL, s.deleteTrx)

	router.Get(balanceGroupURL, s.readBalance)
	router.Post(balanceGroupURL, s.adjustBalance)

	return router
}
