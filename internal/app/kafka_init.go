package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/laundry-pos/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/laundry-pos/internal/version"
)

// initKafkaProducer создаёт producer, если заданы брокеры.
// Без брокеров возвращает nil, nil: касса работает без публикации событий.
func initKafkaProducer(brokers []string, logger *log.Entry) (*kafka.Producer, error) {
	if len(brokers) == 0 {
		return nil, nil
	}

	producer, err := kafka.NewProducer(brokers, version.Service)
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		return nil, err
	}

	logger.WithField("brokers", brokers).Info("kafka producer initialized")
	return producer, nil
}

// closeKafka закрывает Kafka producer если он не nil.
func closeKafka(producer *kafka.Producer, logger *log.Entry) error {
	if producer == nil {
		return nil
	}

	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
		return err
	}
	logger.Info("kafka producer closed")
	return nil
}
