package service

import (
	"context"

	"ai-studynotes-be/internal/dto"
	"ai-studynotes-be/internal/repository/contract"

	"github.com/google/uuid"
)

type IJobService interface {
	GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.JobResponse, error)
	Dismiss(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
}

type jobService struct {
	jobRepository contract.JobRepository
}

func NewJobService(jobRepository contract.JobRepository) IJobService {
	return &jobService{jobRepository: jobRepository}
}

func (s *jobService) GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.JobResponse, error) {
	jobs := s.jobRepository.ListByUser(userId)

	res := make([]*dto.JobResponse, len(jobs))
	for i, j := range jobs {
		res[i] = &dto.JobResponse{
			Id:        j.Id,
			NoteId:    j.NoteId,
			Title:     j.Title,
			Status:    string(j.Status),
			Progress:  j.Progress,
			Message:   j.Message,
			Error:     j.Error,
			CreatedAt: j.CreatedAt,
			UpdatedAt: j.UpdatedAt,
		}
	}
	return res, nil
}

// Dismiss removes a job from the tray. Unknown or foreign IDs are silent
// no-ops so a stale tray entry can always be cleared.
func (s *jobService) Dismiss(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	job, found := s.jobRepository.Get(id)
	if !found || job.UserId != userId {
		return nil
	}
	s.jobRepository.Dismiss(id)
	return nil
}
