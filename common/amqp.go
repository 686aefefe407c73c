package common

import (
	"sync"

	"github.com/kataras/golog"
	"github.com/streadway/amqp"
)

// CasesExchange is the fanout exchange every recorded case is published to.
const CasesExchange = "cases"

func DeclareCasesExchange(ch *amqp.Channel) error {
	return ch.ExchangeDeclare(
		CasesExchange, // name
		"fanout",      // type
		true,          // durable
		false,         // auto-deleted
		false,         // internal
		false,         // no-wait
		nil,           // arguments
	)
}

type AMQPConsumer struct {
	amqpConn  *amqp.Connection
	amqpChan  *amqp.Channel
	amqpQueue amqp.Queue

	queueName    string
	consumerName string

	amqpConsumer <-chan amqp.Delivery
	callback     func(Case) error
	logger       *golog.Logger
	wg           sync.WaitGroup
}

// NewAMQPConsumer binds an exclusive queue to the cases exchange. callback sees every case
// that decodes; undecodable deliveries are logged and skipped.
func NewAMQPConsumer(url, queueName, consumerName string, logger *golog.Logger, callback func(Case) error) (*AMQPConsumer, error) {
	var err error
	consumer := AMQPConsumer{
		callback: callback,
		logger:   logger,

		queueName:    queueName,
		consumerName: consumerName,
	}

	if consumer.amqpConn, err = amqp.Dial(url); err != nil {
		return nil, err
	}

	if consumer.amqpChan, err = consumer.amqpConn.Channel(); err != nil {
		_ = consumer.amqpConn.Close()
		return nil, err
	}

	if err = DeclareCasesExchange(consumer.amqpChan); err != nil {
		_ = consumer.amqpChan.Close()
		_ = consumer.amqpConn.Close()
		return nil, err
	}

	if consumer.amqpQueue, err = consumer.amqpChan.QueueDeclare(
		queueName, // name
		false,     // durable
		false,     // delete when unused
		true,      // exclusive
		false,     // no-wait
		nil,       // arguments
	); err != nil {
		_ = consumer.amqpChan.Close()
		_ = consumer.amqpConn.Close()
		return nil, err
	}

	if err = consumer.amqpChan.QueueBind(
		consumer.amqpQueue.Name, // queue name
		"",                      // routing key
		CasesExchange,           // exchange
		false,
		nil,
	); err != nil {
		_ = consumer.amqpChan.Close()
		_ = consumer.amqpConn.Close()
		return nil, err
	}

	return &consumer, nil
}

func (c *AMQPConsumer) Start() error {
	var err error

	if c.amqpConsumer, err = c.amqpChan.Consume(
		c.amqpQueue.Name, // queue
		c.consumerName,   // consumer
		true,             // auto-ack
		false,            // exclusive
		false,            // no-local
		false,            // no-wait
		nil,              // args
	); err != nil {
		return err
	}

	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		for delivery := range c.amqpConsumer {
			decoded, err := DecodeCase(delivery.Body)
			if err != nil {
				c.logger.Warnf("dropping undecodable delivery (%d bytes): %s", len(delivery.Body), err)
				continue
			}

			if err = c.callback(decoded); err != nil {
				c.logger.Errorf("handling case %d of session %d: %s", decoded.Sequence, decoded.SessionID, err)
			}
		}
	}()

	return nil
}

func (c *AMQPConsumer) Stop() error {
	return c.amqpChan.Cancel(c.consumerName, false)
}

func (c *AMQPConsumer) Wait() {
	c.wg.Wait()
}

func (c *AMQPConsumer) Close() error {
	var err error

	if err = c.amqpChan.Close(); err != nil {
		return err
	}

	if err = c.amqpConn.Close(); err != nil {
		return err
	}

	return nil
}
