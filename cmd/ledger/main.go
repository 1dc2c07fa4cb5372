package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/bospay/bosledger/configuration"
	"github.com/bospay/bosledger/ledger"
	"github.com/bospay/bosledger/logging"
	"github.com/bospay/bosledger/logo"
	"github.com/bospay/bosledger/natsclient"
	"github.com/bospay/bosledger/server"
	"github.com/bospay/bosledger/stdoutwriter"
	"github.com/bospay/bosledger/telemetry"
	"github.com/bospay/bosledger/token"
)

const usage = `runs the bosledger node serving the transaction and balance REST API`

func main() {
	logo.Display()

	var file string
	configurator := func() (configuration.Configuration, error) {
		if file == "" {
			return configuration.Configuration{}, errors.New("please specify configuration file path with -c <path to file>")
		}

		cfg, err := configuration.Read(file)
		if err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	app := &cli.App{
		Name:  "bosledger",
		Usage: usage,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Load configuration from `FILE`",
				Destination: &file,
			},
		},
		Action: func(_ *cli.Context) error {
			cfg, err := configurator()
			if err != nil {
				return err
			}
			run(cfg)
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "token",
				Usage: "issues a new access token for the given account and stores it in the database",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "account",
						Aliases:  []string{"a"},
						Usage:    "account id the token acts for",
						Required: true,
					},
					&cli.DurationFlag{
						Name:    "validity",
						Aliases: []string{"v"},
						Usage:   "how long the token stays valid",
						Value:   time.Hour * 24 * 30,
					},
				},
				Action: func(cliCtx *cli.Context) error {
					cfg, err := configurator()
					if err != nil {
						return err
					}
					return issueToken(cfg, cliCtx.String("account"), cliCtx.Duration("validity"))
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		pterm.Error.Println(err.Error())
	}
}

func run(cfg configuration.Configuration) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)

	go func() {
		<-c
		cancel()
	}()

	callbackOnErr := func(err error) {
		fmt.Println("Error with logger: ", err)
	}

	db, err := cfg.Database.Connect(ctx)
	if err != nil {
		pterm.Error.Println(err.Error())
		return
	}
	defer db.Disconnect(context.Background())

	if err := db.RunMigration(ctx); err != nil {
		pterm.Error.Println(err.Error())
		return
	}

	log := logging.New(callbackOnErr, stdoutwriter.Logger{}, db)

	var pub ledger.Publisher = ledger.NoopPublisher{}
	if cfg.Nats.Address != "" {
		natsPub, err := natsclient.PublisherConnect(cfg.Nats)
		if err != nil {
			log.Error(fmt.Sprintf("cannot connect to nats, events will be dropped: %s", err))
		} else {
			pub = natsPub
			defer natsPub.Disconnect()
		}
	}

	tele, err := telemetry.Run(ctx, cancel, cfg.TelemetryPort)
	if err != nil {
		log.Error(err.Error())
		time.Sleep(time.Second)
		c <- os.Interrupt
		return
	}

	trxs := ledger.NewLedger(db, db, pub, log, tele)
	balances := ledger.NewBalances(db, pub, log, tele)

	if err := server.Run(ctx, cfg.Server, trxs, balances, db, log); err != nil {
		log.Error(err.Error())
	}
	// Sleep one second so the logging goroutines can flush to the writers.
	time.Sleep(time.Second)
}

func issueToken(cfg configuration.Configuration, accountID string, validity time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	db, err := cfg.Database.Connect(ctx)
	if err != nil {
		return err
	}
	defer db.Disconnect(context.Background())

	if err := db.RunMigration(ctx); err != nil {
		return err
	}

	tkn, err := token.New(accountID, time.Now().Add(validity).UnixMicro())
	if err != nil {
		return err
	}
	if err := db.WriteToken(ctx, &tkn); err != nil {
		return err
	}

	pterm.Info.Printfln("token for account %s valid until %s:", accountID, time.UnixMicro(tkn.ExpirationDate).Format(time.RFC3339))
	pterm.Println(tkn.Token)

	return nil
}
