package queue

import (
	"time"

	"github.com/pkg/errors"
	"github.com/streadway/amqp"
	try "gopkg.in/matryer/try.v1"
)

const (
	exchangeName = "proxybench"
	dialRetries  = 5
)

type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPAdaptor publishes results to a fanout exchange.
type AMQPAdaptor struct {
	URL   string
	dial  func(url string) (amqpChannel, func() error, error)
	sleep time.Duration
}

// NewAMQPAdaptor returns an adaptor that connects on first use.
func NewAMQPAdaptor(url string) *AMQPAdaptor {
	return &AMQPAdaptor{URL: url, dial: dialAMQP, sleep: time.Second}
}

func dialAMQP(url string) (amqpChannel, func() error, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	return ch, conn.Close, nil
}

// SendResult publishes the result, retrying the connection a few times.
func (adaptor *AMQPAdaptor) SendResult(envelope Envelope) error {
	body, err := jsonFromEnvelope(envelope)
	if err != nil {
		return err
	}

	var ch amqpChannel
	var closeConn func() error
	err = try.Do(func(attempt int) (bool, error) {
		var derr error
		ch, closeConn, derr = adaptor.dial(adaptor.URL)
		if derr != nil {
			time.Sleep(adaptor.sleep)
			return attempt < dialRetries, derr
		}
		return false, nil
	})
	if err != nil {
		return errors.Wrap(err, "connecting to amqp")
	}
	defer closeConn()
	defer ch.Close()

	if err := ch.ExchangeDeclare(exchangeName, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		return errors.Wrap(err, "declaring exchange")
	}
	err = ch.Publish(exchangeName, "", false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    envelope.RunID,
		Timestamp:    time.Now(),
		Body:         []byte(body),
	})
	return errors.Wrap(err, "publishing result")
}
