package service

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"rag-chatbot-be/internal/apperr"
	"rag-chatbot-be/internal/dto"
	"rag-chatbot-be/internal/pkg/logger"
	"rag-chatbot-be/internal/repository/unitofwork"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService keeps chatbot ingestion stats in sync with published
// ingestion events.
type consumerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var event dto.KnowledgeIngestedEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		cs.logger.Error("consumer", "failed to unmarshal ingested event", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	err := uow.ChatBotRepository().IncrementIngestionStats(ctx, event.ChatbotId, event.IngestedAt)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			// Chatbot deleted between ingest and consume.
			msg.Ack()
			return
		}
		cs.logger.Error("consumer", "failed to update ingestion stats", map[string]interface{}{
			"chatbot_id": event.ChatbotId.String(),
			"error":      err.Error(),
		})
		msg.Nack()
		return
	}

	cs.logger.Info("consumer", "ingestion stats updated", map[string]interface{}{
		"chatbot_id":  event.ChatbotId.String(),
		"file_path":   event.FilePath,
		"chunk_count": event.ChunkCount,
	})
	msg.Ack()
}
