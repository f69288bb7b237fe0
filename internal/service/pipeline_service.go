package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"ai-studynotes-be/internal/config"
	"ai-studynotes-be/internal/dto"
	"ai-studynotes-be/internal/entity"
	"ai-studynotes-be/internal/pkg/logger"
	"ai-studynotes-be/internal/repository/contract"
	"ai-studynotes-be/internal/repository/unitofwork"
	"ai-studynotes-be/pkg/access"
	"ai-studynotes-be/pkg/gamification"

	"github.com/google/uuid"
)

var (
	ErrRecordingTooShort = errors.New("recording is too short")
	ErrNoCredits         = access.ErrNoCredits
)

// IPipelineService starts background note generation. All entry points
// return immediately; progress is observable on the note row, the job tray
// and the websocket channel.
type IPipelineService interface {
	ProcessAudio(ctx context.Context, userId uuid.UUID, req *dto.CaptureAudioRequest, file *multipart.FileHeader) (*dto.CaptureResponse, error)
	ProcessDocument(ctx context.Context, userId uuid.UUID, req *dto.CaptureTextRequest) (*dto.CaptureResponse, error)
	ProcessLink(ctx context.Context, userId uuid.UUID, req *dto.CaptureLinkRequest, transcript string) (*dto.CaptureResponse, error)
	ProcessText(ctx context.Context, userId uuid.UUID, req *dto.CaptureTextRequest) (*dto.CaptureResponse, error)
}

type pipelineService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	jobRepository    contract.JobRepository
	accessVerifier   *access.Verifier
	limits           config.LimitsConfig
	uploadDir        string
	logger           logger.ILogger
}

func NewPipelineService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	jobRepository contract.JobRepository,
	limits config.LimitsConfig,
	uploadDir string,
	log logger.ILogger,
) IPipelineService {
	return &pipelineService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		jobRepository:    jobRepository,
		accessVerifier:   access.NewVerifier(),
		limits:           limits,
		uploadDir:        uploadDir,
		logger:           log,
	}
}

func (s *pipelineService) ProcessAudio(ctx context.Context, userId uuid.UUID, req *dto.CaptureAudioRequest, file *multipart.FileHeader) (*dto.CaptureResponse, error) {
	if req.DurationSeconds < float64(s.limits.MinRecordingSeconds) {
		return nil, ErrRecordingTooShort
	}
	if err := s.verifyCredits(ctx, userId); err != nil {
		return nil, err
	}

	audioPath, err := s.saveUpload(file)
	if err != nil {
		return nil, err
	}

	return s.start(ctx, startParams{
		userId:     userId,
		entry:      gamification.EntryAudio,
		title:      "New Recording",
		jobStatus:  entity.JobStatusTranscribing,
		folderId:   req.FolderId,
		audioPath:  audioPath,
		jobMessage: "Transcribing audio...",
	})
}

func (s *pipelineService) ProcessDocument(ctx context.Context, userId uuid.UUID, req *dto.CaptureTextRequest) (*dto.CaptureResponse, error) {
	if err := s.verifyCredits(ctx, userId); err != nil {
		return nil, err
	}

	title := "New Document"
	if req.Filename != "" {
		title = req.Filename
	}
	return s.start(ctx, startParams{
		userId:     userId,
		entry:      gamification.EntryDocument,
		title:      title,
		jobStatus:  entity.JobStatusGenerating,
		folderId:   req.FolderId,
		text:       req.Text,
		jobMessage: "Generating study note...",
	})
}

func (s *pipelineService) ProcessLink(ctx context.Context, userId uuid.UUID, req *dto.CaptureLinkRequest, transcript string) (*dto.CaptureResponse, error) {
	if err := s.verifyCredits(ctx, userId); err != nil {
		return nil, err
	}

	return s.start(ctx, startParams{
		userId:     userId,
		entry:      gamification.EntryLink,
		title:      "New Video Note",
		jobStatus:  entity.JobStatusGenerating,
		folderId:   req.FolderId,
		text:       transcript,
		sourceURL:  req.URL,
		jobMessage: "Generating study note...",
	})
}

func (s *pipelineService) ProcessText(ctx context.Context, userId uuid.UUID, req *dto.CaptureTextRequest) (*dto.CaptureResponse, error) {
	if err := s.verifyCredits(ctx, userId); err != nil {
		return nil, err
	}

	return s.start(ctx, startParams{
		userId:     userId,
		entry:      gamification.EntryText,
		title:      "New Note",
		jobStatus:  entity.JobStatusGenerating,
		folderId:   req.FolderId,
		text:       req.Text,
		jobMessage: "Generating study note...",
	})
}

type startParams struct {
	userId     uuid.UUID
	entry      gamification.EntryPoint
	title      string
	jobStatus  entity.JobStatus
	folderId   *uuid.UUID
	text       string
	audioPath  string
	sourceURL  string
	jobMessage string
}

func (s *pipelineService) start(ctx context.Context, p startParams) (*dto.CaptureResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	var sourceURL *string
	if p.sourceURL != "" {
		u := p.sourceURL
		sourceURL = &u
	}

	note := &entity.Note{
		Id:                 uuid.New(),
		UserId:             p.userId,
		FolderId:           p.folderId,
		Title:              p.title,
		SourceType:         gamification.SourceTypeFor(p.entry),
		SourceURL:          sourceURL,
		IsProcessing:       true,
		ProcessingProgress: 0,
		ProcessingMessage:  p.jobMessage,
		CreatedAt:          time.Now(),
	}
	if err := uow.NoteRepository().Create(ctx, note); err != nil {
		return nil, err
	}

	job := &entity.Job{
		Id:        uuid.New(),
		UserId:    p.userId,
		NoteId:    note.Id,
		Title:     p.title,
		Status:    p.jobStatus,
		Message:   p.jobMessage,
		CreatedAt: time.Now(),
	}
	s.jobRepository.Save(job)

	payload, err := json.Marshal(dto.PublishProcessNoteMessage{
		NoteId:     note.Id,
		JobId:      job.Id,
		UserId:     p.userId,
		EntryPoint: string(p.entry),
		Text:       p.text,
		AudioPath:  p.audioPath,
		SourceURL:  p.sourceURL,
	})
	if err != nil {
		return nil, err
	}
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		return nil, err
	}

	s.logger.Info("Pipeline", "Capture accepted", map[string]interface{}{
		"note_id": note.Id, "job_id": job.Id, "entry": string(p.entry),
	})

	return &dto.CaptureResponse{NoteId: note.Id, JobId: job.Id}, nil
}

func (s *pipelineService) verifyCredits(ctx context.Context, userId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return s.accessVerifier.VerifyCanGenerate(ctx, uow, userId)
}

func (s *pipelineService) saveUpload(file *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", err
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	path := filepath.Join(s.uploadDir, fmt.Sprintf("%s%s", uuid.New().String(), filepath.Ext(file.Filename)))
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return path, nil
}
