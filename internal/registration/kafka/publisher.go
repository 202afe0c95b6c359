package kafka

import (
	"encoding/json"

	"ms-registration/internal/config"
	"ms-registration/internal/kafka"
	"ms-registration/internal/models"
)

// Publisher streams order lifecycle events, keyed by order ID so all
// events of one order land on the same partition. Downstream marketing
// and analytics pipelines consume these topics.
type Publisher struct {
	Producer *kafka.Producer
	Topics   config.TopicConfig
}

func NewPublisher(producer *kafka.Producer, topics config.TopicConfig) *Publisher {
	return &Publisher{Producer: producer, Topics: topics}
}

func (p *Publisher) publish(topic string, order models.Order) error {
	msgBytes, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return p.Producer.Publish(topic, order.OrderID, msgBytes)
}

func (p *Publisher) PublishOrderCreated(order models.Order) error {
	return p.publish(p.Topics.OrderCreated, order)
}

func (p *Publisher) PublishOrderUpdated(order models.Order) error {
	return p.publish(p.Topics.OrderUpdated, order)
}

func (p *Publisher) PublishOrderCancelled(order models.Order) error {
	return p.publish(p.Topics.OrderCancelled, order)
}

func (p *Publisher) PublishOrderPaid(order models.Order) error {
	return p.publish(p.Topics.OrderPaid, order)
}

// NoopPublisher drops all events. Wired when Kafka is disabled, e.g. in
// local development without a broker.
type NoopPublisher struct{}

func (NoopPublisher) PublishOrderCreated(models.Order) error   { return nil }
func (NoopPublisher) PublishOrderUpdated(models.Order) error   { return nil }
func (NoopPublisher) PublishOrderCancelled(models.Order) error { return nil }
func (NoopPublisher) PublishOrderPaid(models.Order) error      { return nil }

