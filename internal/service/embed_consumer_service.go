package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ai-studynotes-be/internal/dto"
	"ai-studynotes-be/internal/entity"
	"ai-studynotes-be/internal/pkg/logger"
	"ai-studynotes-be/internal/repository/specification"
	"ai-studynotes-be/internal/repository/unitofwork"
	"ai-studynotes-be/pkg/embedding"
	"ai-studynotes-be/pkg/textutil"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IEmbedConsumerService interface {
	Consume(ctx context.Context) error
}

type embedConsumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	logger            logger.ILogger
}

func NewEmbedConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	log logger.ILogger,
) IEmbedConsumerService {
	return &embedConsumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		logger:            log,
	}
}

func (cs *embedConsumerService) Consume(ctx context.Context) error {
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

func (cs *embedConsumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishEmbedNoteMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("EmbedConsumer", "Bad message payload", map[string]interface{}{"error": err.Error()})
		msg.Ack() // never retry undecodable messages
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	note, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: payload.NoteId})
	if err != nil {
		cs.logger.Error("EmbedConsumer", "Note fetch failed", map[string]interface{}{"note_id": payload.NoteId, "error": err.Error()})
		msg.Nack()
		return
	}
	if note == nil {
		// Deleted before indexing caught up.
		msg.Ack()
		return
	}

	content := fmt.Sprintf("Note Title: %s\n\n%s", note.Title, note.Content)

	// 1500 chars per chunk with 200 overlap keeps each chunk well inside the
	// embedding model's context.
	chunks := textutil.SplitText(content, 1500, 200)

	var newEmbeddings []*entity.NoteEmbedding
	for i, chunk := range chunks {
		res, err := cs.embeddingProvider.Generate(chunk, "RETRIEVAL_DOCUMENT")
		if err != nil {
			cs.logger.Error("EmbedConsumer", "Embedding failed", map[string]interface{}{
				"note_id": payload.NoteId, "chunk": i, "error": err.Error(),
			})
			msg.Nack()
			return
		}
		newEmbeddings = append(newEmbeddings, &entity.NoteEmbedding{
			Id:             uuid.New(),
			Document:       chunk,
			EmbeddingValue: res.Embedding.Values,
			NoteId:         note.Id,
			ChunkIndex:     i,
			CreatedAt:      time.Now(),
		})
	}

	if err := uow.Begin(ctx); err != nil {
		msg.Nack()
		return
	}
	defer uow.Rollback()

	if err := uow.NoteEmbeddingRepository().DeleteByNoteId(ctx, note.Id); err != nil {
		cs.logger.Error("EmbedConsumer", "Old embedding delete failed", map[string]interface{}{"error": err.Error()})
		msg.Nack()
		return
	}
	if len(newEmbeddings) > 0 {
		if err := uow.NoteEmbeddingRepository().CreateBulk(ctx, newEmbeddings); err != nil {
			cs.logger.Error("EmbedConsumer", "Bulk insert failed", map[string]interface{}{"error": err.Error()})
			msg.Nack()
			return
		}
	}
	if err := uow.Commit(); err != nil {
		msg.Nack()
		return
	}

	cs.logger.Info("EmbedConsumer", "Note indexed", map[string]interface{}{
		"note_id": payload.NoteId, "chunks": len(newEmbeddings),
	})
	msg.Ack()
}
