package natsclient

import (
	"encoding/json"
	"sync"

	"github.com/nats-io/nats.go"

	"github.com/bospay/bosledger/logger"
	"github.com/bospay/bosledger/transaction"
)

// TrxRecordedSubscriberCallback is called for each recorded transaction event.
type TrxRecordedSubscriberCallback func(trx *transaction.Transaction)

// Subscriber provides functionality to pull messages from the pub/sub queue.
type Subscriber struct {
	*socket
	subs map[string]*nats.Subscription
	mux  sync.RWMutex
}

// SubscriberConnect connects publisher to the pub/sub queue using provided config
func SubscriberConnect(cfg Config) (*Subscriber, error) {
	var s Subscriber
	var err error
	s.socket, err = connect(cfg)
	s.subs = make(map[string]*nats.Subscription)
	return &s, err
}

// SubscribeTransactionsRecorded subscribes to pub/sub queue for recorded transactions.
func (s *Subscriber) SubscribeTransactionsRecorded(call TrxRecordedSubscriberCallback, log logger.Logger) error {
	sub, err := s.conn.Subscribe(PubSubTransactionRecorded, func(m *nats.Msg) {
		var trx transaction.Transaction
		if err := json.Unmarshal(m.Data, &trx); err != nil {
			log.Error(err.Error())
			return
		}
		call(&trx)
	})
	if err != nil {
		sub.Unsubscribe()
		return err
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	s.subs[PubSubTransactionRecorded] = sub

	return nil
}
