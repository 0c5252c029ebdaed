package service

import (
	"context"
	"encoding/json"

	"ai-learning-partner-be/internal/dto"
	"ai-learning-partner-be/internal/entity"
	"ai-learning-partner-be/internal/pkg/logger"
	"ai-learning-partner-be/internal/repository/specification"
	"ai-learning-partner-be/internal/repository/unitofwork"
	"ai-learning-partner-be/pkg/embedding"
	"ai-learning-partner-be/pkg/events"
	pktNats "ai-learning-partner-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	eventPublisher    *pktNats.Publisher
	logger            logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		eventPublisher:    eventPublisher,
		logger:            log,
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

// processMessage embeds every chunk of one document and flips the document
// to ready. Invalid payloads are acked so they don't retry forever; transient
// failures are nacked for redelivery.
func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishEmbedDocumentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("consumer_service", "failed to unmarshal message", map[string]interface{}{"error": err.Error()})
		msg.Ack()
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: payload.DocumentId})
	if err != nil {
		cs.logger.Error("consumer_service", "failed to load document", map[string]interface{}{
			"document_id": payload.DocumentId.String(), "error": err.Error(),
		})
		msg.Nack()
		return
	}
	if document == nil {
		// Deleted before processing; drop the work.
		msg.Ack()
		return
	}

	chunks, err := uow.DocumentChunkRepository().FindAll(ctx,
		specification.ByDocumentID{DocumentID: document.Id},
		specification.OrderBy{Field: "chunk_index"},
	)
	if err != nil {
		cs.logger.Error("consumer_service", "failed to load chunks", map[string]interface{}{
			"document_id": document.Id.String(), "error": err.Error(),
		})
		msg.Nack()
		return
	}

	for _, chunk := range chunks {
		res, err := cs.embeddingProvider.Generate(chunk.Content, embedding.TaskRetrievalDocument)
		if err != nil {
			cs.logger.Error("consumer_service", "embedding failed", map[string]interface{}{
				"document_id": document.Id.String(),
				"chunk_index": chunk.ChunkIndex,
				"error":       err.Error(),
			})
			cs.markFailed(ctx, document)
			msg.Nack()
			return
		}
		chunk.EmbeddingValue = res.Embedding.Values
	}

	if err := uow.Begin(ctx); err != nil {
		msg.Nack()
		return
	}
	defer uow.Rollback()

	for _, chunk := range chunks {
		if err := uow.DocumentChunkRepository().Update(ctx, chunk); err != nil {
			cs.logger.Error("consumer_service", "failed to store embedding", map[string]interface{}{
				"document_id": document.Id.String(), "error": err.Error(),
			})
			msg.Nack()
			return
		}
	}

	document.Status = entity.DocumentStatusReady
	if err := uow.DocumentRepository().Update(ctx, document); err != nil {
		msg.Nack()
		return
	}

	if err := uow.Commit(); err != nil {
		msg.Nack()
		return
	}

	if cs.eventPublisher != nil {
		evt := events.NewDocumentIngestedEvent(document.UserId.String(), document.Id.String(), document.Name, len(chunks))
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			cs.logger.Warn("consumer_service", "failed to publish ingestion event", map[string]interface{}{
				"document_id": document.Id.String(), "error": err.Error(),
			})
		}
	}

	cs.logger.Info("consumer_service", "document embedded", map[string]interface{}{
		"document_id": document.Id.String(),
		"chunks":      len(chunks),
	})
	msg.Ack()
}

func (cs *consumerService) markFailed(ctx context.Context, document *entity.Document) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	document.Status = entity.DocumentStatusFailed
	if err := uow.DocumentRepository().Update(ctx, document); err != nil {
		cs.logger.Error("consumer_service", "failed to mark document failed", map[string]interface{}{
			"document_id": document.Id.String(), "error": err.Error(),
		})
	}
}
