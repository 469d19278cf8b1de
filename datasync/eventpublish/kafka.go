// Copyright 2024 The movevm Authors
// This file is part of the movevm library.

// Package eventpublish streams a finalised transaction's event log to an
// external broker, the same shape the teacher's chaindatafetcher uses to
// fan chain events out to Kafka. Only the producer side is implemented:
// TempStore has no concept of a subscriber, and wiring a consumer here
// would have no SPEC_FULL.md component driving it.
package eventpublish

import (
	"encoding/json"
	"time"

	"github.com/Shopify/sarama"

	"github.com/movevm/tempstore/common"
	"github.com/movevm/tempstore/event"
	"github.com/movevm/tempstore/log"
)

var logger = log.NewModuleLogger(log.ChainDataFetcher)

// Topic is the default topic transaction events are published under.
const Topic = "tempstore-events"

// wireEvent is the JSON shape published to the broker; event.Event carries
// unexported helper state (big.Int internals) that json already knows how
// to marshal, so this is a thin, explicit projection rather than a direct
// reuse of the internal type.
type wireEvent struct {
	TransactionDigest string       `json:"transaction_digest"`
	Kind              event.Kind   `json:"kind"`
	ObjectID          string       `json:"object_id,omitempty"`
	Sender            string       `json:"sender,omitempty"`
	Version           uint64       `json:"version,omitempty"`
	BalanceChangeKind int          `json:"balance_change_kind,omitempty"`
	CoinType          string       `json:"coin_type,omitempty"`
	Amount            string       `json:"amount,omitempty"`
}

// Publisher publishes a transaction's event log to a Kafka topic.
type Publisher struct {
	producer sarama.AsyncProducer
}

// NewPublisher dials brokers and constructs a Publisher. Acks are local-only
// and messages are snappy-compressed, matching the teacher's producer
// configuration.
func NewPublisher(brokers []string) (*Publisher, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForLocal
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Flush.Frequency = 500 * time.Millisecond
	config.Producer.Return.Errors = true

	producer, err := sarama.NewAsyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}

	p := &Publisher{producer: producer}
	go p.drainErrors()
	return p, nil
}

func (p *Publisher) drainErrors() {
	for err := range p.producer.Errors() {
		logger.Error("failed to publish transaction event", "err", err)
	}
}

// PublishEvents publishes every event produced for txDigest, preserving
// emission order as the per-message sequence within the partition key.
func (p *Publisher) PublishEvents(txDigest common.TxDigest, events []event.Event) error {
	for _, e := range events {
		wire := wireEvent{
			TransactionDigest: txDigest.String(),
			Kind:              e.Kind,
			ObjectID:          e.ObjectID.String(),
			Sender:            e.Sender.String(),
			Version:           uint64(e.Version),
			BalanceChangeKind: int(e.BalanceChangeKind),
			CoinType:          e.CoinType,
		}
		if e.Amount != nil {
			wire.Amount = e.Amount.String()
		}

		data, err := json.Marshal(wire)
		if err != nil {
			return err
		}

		p.producer.Input() <- &sarama.ProducerMessage{
			Topic: Topic,
			Key:   sarama.StringEncoder(txDigest.String()),
			Value: sarama.ByteEncoder(data),
		}
	}
	return nil
}

// Close stops the producer.
func (p *Publisher) Close() error {
	return p.producer.Close()
}
