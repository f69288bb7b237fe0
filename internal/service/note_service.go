package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ai-studynotes-be/internal/dto"
	"ai-studynotes-be/internal/entity"
	"ai-studynotes-be/internal/pkg/logger"
	"ai-studynotes-be/internal/repository/specification"
	"ai-studynotes-be/internal/repository/unitofwork"
	"ai-studynotes-be/internal/websocket"
	"ai-studynotes-be/pkg/embedding"
	"ai-studynotes-be/pkg/events"
	pktNats "ai-studynotes-be/pkg/nats"
	"ai-studynotes-be/pkg/studygen"

	"github.com/google/uuid"
)

type INoteService interface {
	GetAll(ctx context.Context, userId uuid.UUID, folderId *uuid.UUID) ([]*dto.NoteListItem, error)
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNoteRequest) (*dto.NoteResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.NoteResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
	Move(ctx context.Context, userId uuid.UUID, req *dto.MoveNoteRequest) error
	AddTag(ctx context.Context, userId uuid.UUID, id uuid.UUID, tag string) ([]string, error)
	RemoveTag(ctx context.Context, userId uuid.UUID, id uuid.UUID, tag string) ([]string, error)
	Search(ctx context.Context, userId uuid.UUID, req *dto.SearchNotesRequest) ([]*dto.SearchNoteResult, error)
	AdditionalQuiz(ctx context.Context, userId uuid.UUID, noteId uuid.UUID, count int) (*dto.AdditionalQuizResponse, error)
	AdditionalFlashcards(ctx context.Context, userId uuid.UUID, noteId uuid.UUID, count int) (*dto.AdditionalFlashcardsResponse, error)

	// Pipeline-facing operations. These bypass ownership checks because the
	// worker already holds the authoritative IDs.
	CreatePlaceholder(ctx context.Context, note *entity.Note) error
	UpdateProgress(ctx context.Context, noteId, userId uuid.UUID, progress int, message string)
	CompleteProcessing(ctx context.Context, noteId, userId uuid.UUID, gen *studygen.GeneratedNote, sourceURL *string) error
	FailProcessing(ctx context.Context, noteId, userId uuid.UUID, errMsg string)
}

type noteService struct {
	uowFactory        unitofwork.RepositoryFactory
	generator         *studygen.Generator
	embeddingProvider embedding.EmbeddingProvider
	eventPublisher    *pktNats.Publisher
	hub               *websocket.Hub
	logger            logger.ILogger
}

func NewNoteService(
	uowFactory unitofwork.RepositoryFactory,
	generator *studygen.Generator,
	embeddingProvider embedding.EmbeddingProvider,
	eventPublisher *pktNats.Publisher,
	hub *websocket.Hub,
	log logger.ILogger,
) INoteService {
	return &noteService{
		uowFactory:        uowFactory,
		generator:         generator,
		embeddingProvider: embeddingProvider,
		eventPublisher:    eventPublisher,
		hub:               hub,
		logger:            log,
	}
}

func (s *noteService) GetAll(ctx context.Context, userId uuid.UUID, folderId *uuid.UUID) ([]*dto.NoteListItem, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{
		specification.NoteOwnedByUser{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	}
	if folderId != nil {
		specs = append(specs, specification.ByFolderID{FolderID: *folderId})
	}

	notes, err := uow.NoteRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.NoteListItem, len(notes))
	for i, n := range notes {
		items[i] = &dto.NoteListItem{
			Id:                 n.Id,
			FolderId:           n.FolderId,
			Title:              n.Title,
			Summary:            n.Summary,
			SourceType:         string(n.SourceType),
			Tags:               n.Tags,
			IsProcessing:       n.IsProcessing,
			ProcessingProgress: n.ProcessingProgress,
			CreatedAt:          n.CreatedAt,
		}
	}
	return items, nil
}

func (s *noteService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNoteRequest) (*dto.NoteResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	note := &entity.Note{
		Id:         uuid.New(),
		UserId:     userId,
		FolderId:   req.FolderId,
		Title:      strings.TrimSpace(req.Title),
		Content:    req.Content,
		SourceType: studygen.SourceDocument,
		Tags:       dedupeTags(req.Tags),
		CreatedAt:  time.Now(),
	}

	if err := uow.NoteRepository().Create(ctx, note); err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		evt := events.NoteCreated(note.Id, userId, note.Title, string(note.SourceType))
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("NoteService", "Failed to publish NOTE_CREATED event", map[string]interface{}{"error": err.Error()})
		}
	}
	return noteToResponse(note), nil
}

func (s *noteService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.NoteResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	note, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.NoteOwnedByUser{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, fmt.Errorf("note not found")
	}

	return noteToResponse(note), nil
}

func (s *noteService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	note, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: req.Id},
		specification.NoteOwnedByUser{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, fmt.Errorf("note not found")
	}

	if req.Title != nil && strings.TrimSpace(*req.Title) != "" {
		note.Title = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		note.Content = *req.Content
	}
	if req.Tags != nil {
		note.Tags = dedupeTags(req.Tags)
	}
	if req.FolderId != nil {
		note.FolderId = req.FolderId
	}

	if err := uow.NoteRepository().Update(ctx, note); err != nil {
		return nil, err
	}
	return noteToResponse(note), nil
}

func (s *noteService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	note, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.NoteOwnedByUser{UserID: userId},
	)
	if err != nil {
		return err
	}
	if note == nil {
		return fmt.Errorf("note not found")
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.NoteEmbeddingRepository().DeleteByNoteId(ctx, id); err != nil {
		return err
	}
	if err := uow.NoteRepository().Delete(ctx, id); err != nil {
		return err
	}
	return uow.Commit()
}

func (s *noteService) Move(ctx context.Context, userId uuid.UUID, req *dto.MoveNoteRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	note, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: req.Id},
		specification.NoteOwnedByUser{UserID: userId},
	)
	if err != nil {
		return err
	}
	if note == nil {
		return fmt.Errorf("note not found")
	}

	if req.FolderId != nil {
		folder, err := uow.FolderRepository().FindOne(ctx,
			specification.ByID{ID: *req.FolderId},
			specification.OwnedByUser{UserID: userId},
		)
		if err != nil {
			return err
		}
		if folder == nil {
			return fmt.Errorf("folder not found")
		}
	}

	note.FolderId = req.FolderId
	return uow.NoteRepository().Update(ctx, note)
}

func (s *noteService) AddTag(ctx context.Context, userId uuid.UUID, id uuid.UUID, tag string) ([]string, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	note, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.NoteOwnedByUser{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, fmt.Errorf("note not found")
	}

	note.Tags = dedupeTags(append(note.Tags, tag))
	if err := uow.NoteRepository().UpdateFields(ctx, id, map[string]interface{}{
		"tags": mustJSON(note.Tags),
	}); err != nil {
		return nil, err
	}
	return note.Tags, nil
}

func (s *noteService) RemoveTag(ctx context.Context, userId uuid.UUID, id uuid.UUID, tag string) ([]string, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	note, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.NoteOwnedByUser{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, fmt.Errorf("note not found")
	}

	kept := []string{}
	for _, t := range note.Tags {
		if !strings.EqualFold(t, tag) {
			kept = append(kept, t)
		}
	}
	note.Tags = kept
	if err := uow.NoteRepository().UpdateFields(ctx, id, map[string]interface{}{
		"tags": mustJSON(note.Tags),
	}); err != nil {
		return nil, err
	}
	return note.Tags, nil
}

func (s *noteService) Search(ctx context.Context, userId uuid.UUID, req *dto.SearchNotesRequest) ([]*dto.SearchNoteResult, error) {
	if req.Semantic {
		return s.semanticSearch(ctx, userId, req)
	}
	return s.keywordSearch(ctx, userId, req)
}

func (s *noteService) keywordSearch(ctx context.Context, userId uuid.UUID, req *dto.SearchNotesRequest) ([]*dto.SearchNoteResult, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	limit := req.Limit
	if limit <= 0 {
		limit = 20
	}

	notes, err := uow.NoteRepository().FindAll(ctx,
		specification.NoteOwnedByUser{UserID: userId},
		specification.TitleContains{Query: req.Query},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: 0},
	)
	if err != nil {
		return nil, err
	}

	results := make([]*dto.SearchNoteResult, len(notes))
	for i, n := range notes {
		results[i] = &dto.SearchNoteResult{
			Id:        n.Id,
			Title:     n.Title,
			Snippet:   snippet(n.Summary, 200),
			CreatedAt: n.CreatedAt,
		}
	}
	return results, nil
}

func (s *noteService) semanticSearch(ctx context.Context, userId uuid.UUID, req *dto.SearchNotesRequest) ([]*dto.SearchNoteResult, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	res, err := s.embeddingProvider.Generate(req.Query, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}

	scored, err := uow.NoteEmbeddingRepository().SearchSimilarWithScore(ctx, res.Embedding.Values, limit, userId, 0.3)
	if err != nil {
		return nil, err
	}

	// Collapse chunk hits to their best-scoring note.
	best := map[uuid.UUID]*dto.SearchNoteResult{}
	var order []uuid.UUID
	for _, sc := range scored {
		existing, ok := best[sc.Embedding.NoteId]
		if ok && existing.Similarity >= sc.Similarity {
			continue
		}
		if !ok {
			order = append(order, sc.Embedding.NoteId)
		}
		best[sc.Embedding.NoteId] = &dto.SearchNoteResult{
			Id:         sc.Embedding.NoteId,
			Snippet:    snippet(sc.Embedding.Document, 200),
			Similarity: sc.Similarity,
		}
	}

	var results []*dto.SearchNoteResult
	for _, noteId := range order {
		note, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: noteId})
		if err != nil {
			return nil, err
		}
		if note == nil {
			continue
		}
		r := best[noteId]
		r.Title = note.Title
		r.CreatedAt = note.CreatedAt
		results = append(results, r)
	}
	return results, nil
}

// --- Additional study material ---

// defaultAdditionalItems is used when the client does not ask for a count.
const defaultAdditionalItems = 5

func (s *noteService) AdditionalQuiz(ctx context.Context, userId uuid.UUID, noteId uuid.UUID, count int) (*dto.AdditionalQuizResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	note, err := s.loadCompletedNote(ctx, uow, userId, noteId)
	if err != nil {
		return nil, err
	}
	if count <= 0 {
		count = defaultAdditionalItems
	}

	// The generator returns the merged existing+new list, already capped.
	merged, err := s.generator.AdditionalQuiz(ctx, sourceText(note), note.Quiz, count)
	if err != nil {
		return nil, err
	}

	newItems := merged[len(note.Quiz):]
	if len(newItems) == 0 {
		return &dto.AdditionalQuizResponse{Quiz: []studygen.QuizItem{}}, nil
	}

	if err := uow.NoteRepository().UpdateFields(ctx, noteId, map[string]interface{}{
		"quiz": mustJSON(merged),
	}); err != nil {
		return nil, err
	}

	return &dto.AdditionalQuizResponse{Quiz: newItems}, nil
}

func (s *noteService) AdditionalFlashcards(ctx context.Context, userId uuid.UUID, noteId uuid.UUID, count int) (*dto.AdditionalFlashcardsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	note, err := s.loadCompletedNote(ctx, uow, userId, noteId)
	if err != nil {
		return nil, err
	}
	if count <= 0 {
		count = defaultAdditionalItems
	}

	merged, err := s.generator.AdditionalFlashcards(ctx, sourceText(note), note.Flashcards, count)
	if err != nil {
		return nil, err
	}

	newCards := merged[len(note.Flashcards):]
	if len(newCards) == 0 {
		return &dto.AdditionalFlashcardsResponse{Flashcards: []studygen.Flashcard{}}, nil
	}

	if err := uow.NoteRepository().UpdateFields(ctx, noteId, map[string]interface{}{
		"flashcards": mustJSON(merged),
	}); err != nil {
		return nil, err
	}

	return &dto.AdditionalFlashcardsResponse{Flashcards: newCards}, nil
}

func (s *noteService) loadCompletedNote(ctx context.Context, uow unitofwork.UnitOfWork, userId, noteId uuid.UUID) (*entity.Note, error) {
	note, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: noteId},
		specification.NoteOwnedByUser{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, fmt.Errorf("note not found")
	}
	if note.IsProcessing {
		return nil, fmt.Errorf("note is still processing")
	}
	return note, nil
}

// --- Pipeline-facing operations ---

func (s *noteService) CreatePlaceholder(ctx context.Context, note *entity.Note) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.NoteRepository().Create(ctx, note); err != nil {
		return err
	}

	if s.eventPublisher != nil {
		evt := events.NoteCreated(note.Id, note.UserId, note.Title, string(note.SourceType))
		// Auxiliary: a dead event bus must not fail the capture.
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("NoteService", "Failed to publish NOTE_CREATED event", map[string]interface{}{"error": err.Error()})
		}
	}
	return nil
}

func (s *noteService) UpdateProgress(ctx context.Context, noteId, userId uuid.UUID, progress int, message string) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	// A progress write re-asserts the processing state and clears any stale error.
	err := uow.NoteRepository().UpdateFields(ctx, noteId, map[string]interface{}{
		"is_processing":       true,
		"processing_progress": progress,
		"processing_message":  message,
		"processing_error":    nil,
	})
	if err != nil {
		s.logger.Warn("NoteService", "Progress write failed", map[string]interface{}{
			"note_id": noteId, "error": err.Error(),
		})
	}

	if s.hub != nil {
		s.hub.SendProgress(dto.NoteProgressEvent{
			NoteId:   noteId,
			UserId:   userId,
			Progress: progress,
			Message:  message,
			Status:   "processing",
		})
	}
}

func (s *noteService) CompleteProcessing(ctx context.Context, noteId, userId uuid.UUID, gen *studygen.GeneratedNote, sourceURL *string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	fields := map[string]interface{}{
		"title":               gen.Title,
		"summary":             gen.Summary,
		"content":             gen.Content,
		"transcript":          gen.Transcript,
		"key_points":          mustJSON(gen.KeyPoints),
		"quiz":                mustJSON(gen.Quiz),
		"flashcards":          mustJSON(gen.Flashcards),
		"podcast_script":      gen.PodcastScript,
		"total_tokens":        gen.TotalTokens,
		"is_processing":       false,
		"processing_progress": 100,
		"processing_message":  "",
		"processing_error":    nil,
	}
	if gen.Table != nil {
		fields["table_data"] = mustJSON(gen.Table)
	}
	if sourceURL != nil {
		fields["source_url"] = *sourceURL
	}

	if err := uow.NoteRepository().UpdateFields(ctx, noteId, fields); err != nil {
		return err
	}

	if s.hub != nil {
		s.hub.SendProgress(dto.NoteProgressEvent{
			NoteId:   noteId,
			UserId:   userId,
			Progress: 100,
			Status:   "completed",
		})
	}

	if s.eventPublisher != nil {
		evt := events.NoteCompleted(noteId, userId, gen.Title, gen.TotalTokens)
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("NoteService", "Failed to publish NOTE_COMPLETED event", map[string]interface{}{"error": err.Error()})
		}
	}
	return nil
}

func (s *noteService) FailProcessing(ctx context.Context, noteId, userId uuid.UUID, errMsg string) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	err := uow.NoteRepository().UpdateFields(ctx, noteId, map[string]interface{}{
		"is_processing":      false,
		"processing_error":   errMsg,
		"processing_message": "",
	})
	if err != nil {
		s.logger.Error("NoteService", "Failure write failed", map[string]interface{}{
			"note_id": noteId, "error": err.Error(),
		})
	}

	if s.hub != nil {
		s.hub.SendProgress(dto.NoteProgressEvent{
			NoteId: noteId,
			UserId: userId,
			Status: "error",
			Error:  &errMsg,
		})
	}

	if s.eventPublisher != nil {
		evt := events.NoteFailed(noteId, userId, errMsg)
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("NoteService", "Failed to publish NOTE_FAILED event", map[string]interface{}{"error": err.Error()})
		}
	}
}

// --- Helpers ---

// ProfileFromUser builds the personalization profile from onboarding fields.
// Returns nil when the user has no profile data at all.
func ProfileFromUser(user *entity.User) *studygen.StudyProfile {
	if user == nil {
		return nil
	}
	p := &studygen.StudyProfile{}
	any := false
	set := func(dst *string, src *string) {
		if src != nil && strings.TrimSpace(*src) != "" {
			*dst = *src
			any = true
		}
	}
	set(&p.LearningGoal, user.LearningGoal)
	set(&p.StudentType, user.StudentType)
	set(&p.Struggle, user.Struggle)
	set(&p.DesiredOutcome, user.DesiredOutcome)
	set(&p.Obstacles, user.Obstacles)
	if !any {
		return nil
	}
	return p
}

func noteToResponse(n *entity.Note) *dto.NoteResponse {
	return &dto.NoteResponse{
		Id:                 n.Id,
		FolderId:           n.FolderId,
		Title:              n.Title,
		Summary:            n.Summary,
		Content:            n.Content,
		Transcript:         n.Transcript,
		SourceType:         string(n.SourceType),
		SourceURL:          n.SourceURL,
		Tags:               n.Tags,
		KeyPoints:          n.KeyPoints,
		Quiz:               n.Quiz,
		Flashcards:         n.Flashcards,
		PodcastScript:      n.PodcastScript,
		Table:              n.Table,
		IsProcessing:       n.IsProcessing,
		ProcessingProgress: n.ProcessingProgress,
		ProcessingMessage:  n.ProcessingMessage,
		ProcessingError:    n.ProcessingError,
		CreatedAt:          n.CreatedAt,
		UpdatedAt:          n.UpdatedAt,
	}
}

func sourceText(n *entity.Note) string {
	if strings.TrimSpace(n.Transcript) != "" {
		return n.Transcript
	}
	return n.Content
}

func snippet(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}

func dedupeTags(tags []string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, t := range tags {
		trimmed := strings.TrimSpace(t)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, trimmed)
	}
	return out
}

func mustJSON(v interface{}) []byte {
	raw, err := json.Marshal(v)
	if err != nil {
		return []byte("null")
	}
	return raw
}
