package memory

import (
	"sort"
	"time"

	"ai-studynotes-be/internal/entity"
	"ai-studynotes-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// CompletedRemovalDelay is how long a completed job stays visible in the tray
// before being removed automatically.
const CompletedRemovalDelay = 3 * time.Second

type JobRepository struct {
	cache        *cache.Cache
	removalDelay time.Duration
}

func NewJobRepository() *JobRepository {
	return newJobRepository(CompletedRemovalDelay)
}

func newJobRepository(removalDelay time.Duration) *JobRepository {
	// Jobs that never finish (process crash mid-pipeline) expire after a day
	// so the tray cannot accumulate orphans.
	c := cache.New(24*time.Hour, 1*time.Hour)
	return &JobRepository{
		cache:        c,
		removalDelay: removalDelay,
	}
}

var _ contract.JobRepository = (*JobRepository)(nil)

func (r *JobRepository) Save(job *entity.Job) {
	job.UpdatedAt = time.Now()
	r.cache.Set(job.Id.String(), job, cache.DefaultExpiration)
}

func (r *JobRepository) Get(id uuid.UUID) (*entity.Job, bool) {
	if x, found := r.cache.Get(id.String()); found {
		return x.(*entity.Job), true
	}
	return nil, false
}

func (r *JobRepository) ListByUser(userId uuid.UUID) []*entity.Job {
	jobs := []*entity.Job{}
	for _, item := range r.cache.Items() {
		job, ok := item.Object.(*entity.Job)
		if !ok || job.UserId != userId {
			continue
		}
		jobs = append(jobs, job)
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.Before(jobs[j].CreatedAt)
	})
	return jobs
}

func (r *JobRepository) SetStatus(id uuid.UUID, status entity.JobStatus, errMsg *string) {
	job, found := r.Get(id)
	if !found {
		return
	}
	job.Status = status
	job.Error = errMsg
	job.UpdatedAt = time.Now()
	if status == entity.JobStatusCompleted {
		job.Progress = 100
	}
	r.cache.Set(id.String(), job, cache.DefaultExpiration)

	if status == entity.JobStatusCompleted {
		time.AfterFunc(r.removalDelay, func() {
			r.cache.Delete(id.String())
		})
	}
}

func (r *JobRepository) SetProgress(id uuid.UUID, progress int, message string) {
	job, found := r.Get(id)
	if !found {
		return
	}
	job.Progress = progress
	job.Message = message
	job.UpdatedAt = time.Now()
	r.cache.Set(id.String(), job, cache.DefaultExpiration)
}

func (r *JobRepository) Dismiss(id uuid.UUID) {
	r.cache.Delete(id.String())
}
