package service

import (
	"context"

	"journal-backend/internal/domain"
	"journal-backend/internal/logger"
	"journal-backend/internal/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type jobAdminService struct {
	jobRepo repository.JobRepository
}

func NewJobAdminService(jobRepo repository.JobRepository) JobAdminService {
	return &jobAdminService{jobRepo: jobRepo}
}

// pageBounds turns a 1-based page into limit and offset.
func pageBounds(page, pageSize int32) (limit, offset int32) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return pageSize, (page - 1) * pageSize
}

func (s *jobAdminService) ListJobs(ctx context.Context, page, pageSize int32) ([]domain.Job, int32, error) {
	limit, offset := pageBounds(page, pageSize)
	return s.jobRepo.List(ctx, limit, offset)
}

func (s *jobAdminService) ListFailedJobs(ctx context.Context, page, pageSize int32) ([]domain.FailedJob, int32, error) {
	limit, offset := pageBounds(page, pageSize)
	return s.jobRepo.ListFailed(ctx, limit, offset)
}

func (s *jobAdminService) GetFailedJob(ctx context.Context, id int64) (*domain.FailedJob, error) {
	return s.jobRepo.GetFailed(ctx, id)
}

func (s *jobAdminService) RedispatchFailedJob(ctx context.Context, id int64) error {
	if err := s.jobRepo.Redispatch(ctx, id); err != nil {
		return err
	}
	logger.Info("Failed job redispatched", "failed_job_id", id)
	return nil
}

func (s *jobAdminService) RedispatchAllFailedJobs(ctx context.Context) (int64, error) {
	n, err := s.jobRepo.RedispatchAll(ctx)
	if err != nil {
		return 0, err
	}
	logger.Info("Failed jobs redispatched", "count", n)
	return n, nil
}

func (s *jobAdminService) DeleteFailedJob(ctx context.Context, id int64) error {
	if err := s.jobRepo.DeleteFailed(ctx, id); err != nil {
		return err
	}
	logger.Info("Failed job deleted", "failed_job_id", id)
	return nil
}
