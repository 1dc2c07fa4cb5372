package client

import (
	"errors"
	"fmt"
	"time"

	"github.com/bospay/bosledger/balance"
	"github.com/bospay/bosledger/httpclient"
	"github.com/bospay/bosledger/ledger"
	"github.com/bospay/bosledger/server"
	"github.com/bospay/bosledger/transaction"
)

// Client is a rest client for the API.
// It provides methods to communicate with the API server
// and is designed to serve as a easy way of building client applications
// that uses the REST API of the ledger node.
type Client struct {
	apiRoot string
	bearer  string
	timeout time.Duration
}

// NewClient creates a new rest client acting for the account bound to the
// given access token.
func NewClient(apiRoot, bearer string, timeout time.Duration) *Client {
	return &Client{apiRoot: apiRoot, bearer: bearer, timeout: timeout}
}

// ValidateApiVersion makes a call to the API server and validates client and server API versions and header correctness.
// If API version not much it is returning an error as accessing the API server with different API version
// may lead to unexpected results.
func (c *Client) ValidateApiVersion() error {
	var alive server.AliveResponse
	url := fmt.Sprintf("%s%s", c.apiRoot, server.AliveURL)
	if err := httpclient.MakeGet(c.timeout, url, "", &alive); err != nil {
		return err
	}

	if alive.APIVersion != server.ApiVersion {
		return errors.Join(httpclient.ErrApiVersionMismatch, fmt.Errorf("expected %s but got %s", server.ApiVersion, alive.APIVersion))
	}

	if alive.APIHeader != server.Header {
		return errors.Join(httpclient.ErrApiHeaderMismatch, fmt.Errorf("expected %s but got %s", server.Header, alive.APIHeader))
	}

	return nil
}

// RecordTransaction submits the transaction fact for recording. Resubmitting
// the same transaction hash returns the already stored record.
func (c *Client) RecordTransaction(req ledger.RecordRequest) (transaction.Transaction, error) {
	var trx transaction.Transaction
	url := fmt.Sprintf("%s%s", c.apiRoot, server.RecordTrxURL)
	if err := httpclient.MakePost(c.timeout, url, c.bearer, req, &trx); err != nil {
		return transaction.Transaction{}, err
	}
	return trx, nil
}

// ReadTransaction reads a single owned transaction by its id.
func (c *Client) ReadTransaction(id string) (transaction.Transaction, error) {
	var trx transaction.Transaction
	url := fmt.Sprintf("%s%s", c.apiRoot, fmt.Sprintf(server.TrxByIDURL, id))
	if err := httpclient.MakeGet(c.timeout, url, c.bearer, &trx); err != nil {
		return transaction.Transaction{}, err
	}
	return trx, nil
}

// UpdateTransaction replaces the owned transaction with the given full field set.
func (c *Client) UpdateTransaction(id string, req ledger.RecordRequest) (transaction.Transaction, error) {
	var trx transaction.Transaction
	url := fmt.Sprintf("%s%s", c.apiRoot, fmt.Sprintf(server.TrxByIDURL, id))
	if err := httpclient.MakePut(c.timeout, url, c.bearer, req, &trx); err != nil {
		return transaction.Transaction{}, err
	}
	return trx, nil
}

// DeleteTransaction removes the owned transaction from the account's view.
func (c *Client) DeleteTransaction(id string) error {
	url := fmt.Sprintf("%s%s", c.apiRoot, fmt.Sprintf(server.TrxByIDURL, id))
	return httpclient.MakeDelete(c.timeout, url, c.bearer)
}

// ListTransactions reads all transactions owned by the account, newest first.
func (c *Client) ListTransactions() ([]transaction.Transaction, error) {
	var trxs []transaction.Transaction
	url := fmt.Sprintf("%s%s", c.apiRoot, server.ListTrxURL)
	if err := httpclient.MakeGet(c.timeout, url, c.bearer, &trxs); err != nil {
		return nil, err
	}
	return trxs, nil
}

// ReadBalance reads the account balance with its full adjustment history.
func (c *Client) ReadBalance() (balance.Balance, error) {
	var bal balance.Balance
	url := fmt.Sprintf("%s%s", c.apiRoot, server.ReadBalanceURL)
	if err := httpclient.MakeGet(c.timeout, url, c.bearer, &bal); err != nil {
		return balance.Balance{}, err
	}
	return bal, nil
}

// AdjustBalance applies a signed change to the account balance.
func (c *Client) AdjustBalance(req ledger.AdjustRequest) (balance.Balance, error) {
	var bal balance.Balance
	url := fmt.Sprintf("%s%s", c.apiRoot, server.AdjustBalanceURL)
	if err := httpclient.MakePost(c.timeout, url, c.bearer, req, &bal); err != nil {
		return balance.Balance{}, err
	}
	return bal, nil
}
