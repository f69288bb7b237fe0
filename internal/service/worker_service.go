package service

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"time"

	"ai-studynotes-be/internal/config"
	"ai-studynotes-be/internal/dto"
	"ai-studynotes-be/internal/entity"
	"ai-studynotes-be/internal/pkg/logger"
	"ai-studynotes-be/internal/repository/contract"
	"ai-studynotes-be/internal/repository/specification"
	"ai-studynotes-be/internal/repository/unitofwork"
	"ai-studynotes-be/pkg/access"
	"ai-studynotes-be/pkg/events"
	"ai-studynotes-be/pkg/gamification"
	pktNats "ai-studynotes-be/pkg/nats"
	"ai-studynotes-be/pkg/studygen"
	"ai-studynotes-be/pkg/textutil"
	"ai-studynotes-be/pkg/transcribe"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

var ErrTranscriptTooShort = errors.New("transcript is too short")

// Stage checkpoints written to the note between generation steps. Progress
// only moves forward; completion writes 100.
var stageProgress = map[studygen.Stage]struct {
	Percent int
	Message string
}{
	studygen.StageTitle:      {40, "Writing title..."},
	studygen.StageSummary:    {50, "Summarizing..."},
	studygen.StageKeyPoints:  {70, "Extracting key points..."},
	studygen.StageQuiz:       {85, "Building quiz..."},
	studygen.StageFlashcards: {95, "Creating flashcards..."},
	studygen.StagePodcast:    {95, "Writing podcast script..."},
	studygen.StageTable:      {95, "Building comparison table..."},
}

type IWorkerService interface {
	Consume(ctx context.Context) error
}

type workerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	uowFactory     unitofwork.RepositoryFactory
	noteService    INoteService
	jobRepository  contract.JobRepository
	transcriber    transcribe.Transcriber
	generator      *studygen.Generator
	embedPublisher IPublisherService
	eventPublisher *pktNats.Publisher
	accessVerifier *access.Verifier
	xpTracker      *gamification.Tracker
	limits         config.LimitsConfig
	logger         logger.ILogger
}

func NewWorkerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	noteService INoteService,
	jobRepository contract.JobRepository,
	transcriber transcribe.Transcriber,
	generator *studygen.Generator,
	embedPublisher IPublisherService,
	eventPublisher *pktNats.Publisher,
	limits config.LimitsConfig,
	log logger.ILogger,
) IWorkerService {
	return &workerService{
		pubSub:         pubSub,
		topicName:      topicName,
		uowFactory:     uowFactory,
		noteService:    noteService,
		jobRepository:  jobRepository,
		transcriber:    transcriber,
		generator:      generator,
		embedPublisher: embedPublisher,
		eventPublisher: eventPublisher,
		accessVerifier: access.NewVerifier(),
		xpTracker:      gamification.NewTracker(),
		limits:         limits,
		logger:         log,
	}
}

func (ws *workerService) Consume(ctx context.Context) error {
	messages, err := ws.pubSub.Subscribe(ctx, ws.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			ws.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (ws *workerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishProcessNoteMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		ws.logger.Error("Worker", "Bad message payload", map[string]interface{}{"error": err.Error()})
		msg.Ack() // never retry undecodable messages
		return
	}

	ws.logger.Info("Worker", "Processing note", map[string]interface{}{
		"note_id": payload.NoteId, "entry": payload.EntryPoint,
	})

	if err := ws.run(ctx, &payload); err != nil {
		ws.fail(ctx, &payload, err)
	}
	// One attempt per note. No retry and no credit refund on failure.
	msg.Ack()
}

func (ws *workerService) run(ctx context.Context, payload *dto.PublishProcessNoteMessage) error {
	text := payload.Text

	if payload.AudioPath != "" {
		ws.checkpoint(ctx, payload, 5, "Transcribing audio...")

		transcript, err := ws.transcribeFile(ctx, payload.AudioPath)
		if err != nil {
			return err
		}
		if textutil.WordCount(transcript) < ws.limits.MinTranscriptWords {
			return ErrTranscriptTooShort
		}
		text = transcript
		ws.jobRepository.SetStatus(payload.JobId, entity.JobStatusGenerating, nil)
	} else {
		ws.checkpoint(ctx, payload, 5, "Preparing content...")
	}

	profile := ws.loadProfile(ctx, payload)

	entry := gamification.EntryPoint(payload.EntryPoint)
	gen, err := ws.generator.Generate(ctx, studygen.GenerateRequest{
		Text:       text,
		SourceType: gamification.SourceTypeFor(entry),
		Profile:    profile,
		OnStage: func(stage studygen.Stage) {
			if cp, ok := stageProgress[stage]; ok {
				ws.checkpoint(ctx, payload, cp.Percent, cp.Message)
			}
		},
	})
	if err != nil {
		return err
	}

	var sourceURL *string
	if payload.SourceURL != "" {
		u := payload.SourceURL
		sourceURL = &u
	}
	if err := ws.noteService.CompleteProcessing(ctx, payload.NoteId, payload.UserId, gen, sourceURL); err != nil {
		return err
	}

	ws.jobRepository.SetStatus(payload.JobId, entity.JobStatusCompleted, nil)

	uow := ws.uowFactory.NewUnitOfWork(ctx)
	if err := ws.accessVerifier.ConsumeCredit(ctx, uow, payload.UserId, payload.NoteId); err != nil {
		ws.logger.Warn("Worker", "Credit consumption failed", map[string]interface{}{"error": err.Error()})
	}

	if amount, err := ws.xpTracker.Award(ctx, uow, payload.UserId, entry); err != nil {
		ws.logger.Warn("Worker", "XP award failed", map[string]interface{}{"error": err.Error()})
	} else if amount > 0 && ws.eventPublisher != nil {
		evt := events.XpAwarded(payload.UserId, amount, payload.EntryPoint)
		if err := ws.eventPublisher.Publish(ctx, evt); err != nil {
			ws.logger.Warn("Worker", "Failed to publish XP_AWARDED event", map[string]interface{}{"error": err.Error()})
		}
	}

	embedPayload, err := json.Marshal(dto.PublishEmbedNoteMessage{NoteId: payload.NoteId})
	if err == nil {
		if err := ws.embedPublisher.Publish(ctx, embedPayload); err != nil {
			ws.logger.Warn("Worker", "Failed to publish embed message", map[string]interface{}{"error": err.Error()})
		}
	}

	ws.logger.Info("Worker", "Note completed", map[string]interface{}{
		"note_id": payload.NoteId, "tokens": gen.TotalTokens,
	})
	return nil
}

// checkpoint writes a progress step to both the note row and the job tray.
func (ws *workerService) checkpoint(ctx context.Context, payload *dto.PublishProcessNoteMessage, progress int, message string) {
	ws.noteService.UpdateProgress(ctx, payload.NoteId, payload.UserId, progress, message)
	ws.jobRepository.SetProgress(payload.JobId, progress, message)
}

func (ws *workerService) transcribeFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		f.Close()
		os.Remove(path)
	}()

	tctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()
	return ws.transcriber.Transcribe(tctx, path, f)
}

func (ws *workerService) loadProfile(ctx context.Context, payload *dto.PublishProcessNoteMessage) *studygen.StudyProfile {
	uow := ws.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: payload.UserId})
	if err != nil {
		ws.logger.Warn("Worker", "Profile load failed", map[string]interface{}{"error": err.Error()})
		return nil
	}
	return ProfileFromUser(user)
}

func (ws *workerService) fail(ctx context.Context, payload *dto.PublishProcessNoteMessage, cause error) {
	ws.logger.Error("Worker", "Note processing failed", map[string]interface{}{
		"note_id": payload.NoteId, "error": cause.Error(),
	})

	msg := cause.Error()
	ws.noteService.FailProcessing(ctx, payload.NoteId, payload.UserId, msg)
	ws.jobRepository.SetStatus(payload.JobId, entity.JobStatusError, &msg)
}
