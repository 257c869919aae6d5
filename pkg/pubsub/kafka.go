package pubsub

import (
	"context"
	"slices"

	"github.com/IBM/sarama"
	"github.com/protocaas/protocaas/pkg/domain"
	xe "github.com/protocaas/protocaas/pkg/errors"
)

// Kafka publishes events to a topic.
// The channel (compute resource id) is the message key,
// so that events for a compute resource keep their order in a partition.
type Kafka struct {
	producer sarama.SyncProducer
	brokers  []string
	topic    string
}

type KafkaConfig struct {
	Brokers  []string
	Topic    string
	ClientID string
}

// NewKafka connects to brokers.
func NewKafka(c KafkaConfig) (*Kafka, error) {
	config := sarama.NewConfig()
	config.ClientID = c.ClientID
	config.Producer.RequiredAcks = sarama.WaitForLocal
	config.Producer.Return.Successes = true
	config.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(c.Brokers, config)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	return KafkaWithProducer(producer, c.Brokers, c.Topic), nil
}

// KafkaWithProducer builds Kafka publisher on the producer.
func KafkaWithProducer(producer sarama.SyncProducer, brokers []string, topic string) *Kafka {
	return &Kafka{producer: producer, brokers: slices.Clone(brokers), topic: topic}
}

func (k *Kafka) Name() string {
	return "kafka"
}

func (k *Kafka) Publish(ctx context.Context, event domain.JobEvent) error {
	payload, err := Marshal(event)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	_, _, err = k.producer.SendMessage(&sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(event.Channel()),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return xe.Wrap(err)
	}
	return nil
}

func (k *Kafka) Subscription(computeResourceId string) Subscription {
	return Subscription{
		Backend:      k.Name(),
		Channel:      computeResourceId,
		User:         computeResourceId,
		KafkaBrokers: slices.Clone(k.brokers),
		KafkaTopic:   k.topic,
	}
}

func (k *Kafka) Close() error {
	return k.producer.Close()
}
