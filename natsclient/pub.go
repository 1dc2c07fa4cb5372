package natsclient

import (
	"encoding/json"

	"github.com/bospay/bosledger/balance"
	"github.com/bospay/bosledger/transaction"
)

// Publisher provides functionality to push messages to the pub/sub queue
type Publisher struct {
	*socket
}

// PublisherConnect connects publisher to the pub/sub queue using provided config
func PublisherConnect(cfg Config) (*Publisher, error) {
	var p Publisher
	var err error
	p.socket, err = connect(cfg)
	return &p, err
}

// PublishTransactionRecorded publishes a newly recorded transaction.
func (p *Publisher) PublishTransactionRecorded(trx *transaction.Transaction) error {
	msg, err := json.Marshal(trx)
	if err != nil {
		return err
	}
	if err := p.conn.Publish(PubSubTransactionRecorded, msg); err != nil {
		return err
	}
	return nil
}

// PublishBalanceAdjusted publishes a single balance adjustment for the account.
func (p *Publisher) PublishBalanceAdjusted(accountID string, entry balance.HistoryEntry) error {
	payload := struct {
		AccountID string `json:"account_id"`
		balance.HistoryEntry
	}{
		AccountID:    accountID,
		HistoryEntry: entry,
	}
	msg, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if err := p.conn.Publish(PubSubBalanceAdjusted, msg); err != nil {
		return err
	}
	return nil
}
