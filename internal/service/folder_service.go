package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ai-studynotes-be/internal/dto"
	"ai-studynotes-be/internal/entity"
	"ai-studynotes-be/internal/repository/specification"
	"ai-studynotes-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IFolderService interface {
	GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.FolderResponse, error)
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateFolderRequest) (*dto.FolderResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateFolderRequest) (*dto.FolderResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
}

type folderService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewFolderService(uowFactory unitofwork.RepositoryFactory) IFolderService {
	return &folderService{uowFactory: uowFactory}
}

func (s *folderService) GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.FolderResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	folders, err := uow.FolderRepository().FindAll(ctx,
		specification.OwnedByUser{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.FolderResponse, len(folders))
	for i, f := range folders {
		count, err := uow.NoteRepository().Count(ctx,
			specification.NoteOwnedByUser{UserID: userId},
			specification.ByFolderID{FolderID: f.Id},
		)
		if err != nil {
			return nil, err
		}
		res[i] = &dto.FolderResponse{
			Id:        f.Id,
			Name:      f.Name,
			NoteCount: count,
			CreatedAt: f.CreatedAt,
		}
	}
	return res, nil
}

func (s *folderService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateFolderRequest) (*dto.FolderResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	folder := &entity.Folder{
		Id:        uuid.New(),
		Name:      strings.TrimSpace(req.Name),
		UserId:    userId,
		CreatedAt: time.Now(),
	}
	if err := uow.FolderRepository().Create(ctx, folder); err != nil {
		return nil, err
	}

	return &dto.FolderResponse{
		Id:        folder.Id,
		Name:      folder.Name,
		CreatedAt: folder.CreatedAt,
	}, nil
}

func (s *folderService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateFolderRequest) (*dto.FolderResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	folder, err := uow.FolderRepository().FindOne(ctx,
		specification.ByID{ID: req.Id},
		specification.OwnedByUser{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if folder == nil {
		return nil, fmt.Errorf("folder not found")
	}

	folder.Name = strings.TrimSpace(req.Name)
	if err := uow.FolderRepository().Update(ctx, folder); err != nil {
		return nil, err
	}

	return &dto.FolderResponse{
		Id:        folder.Id,
		Name:      folder.Name,
		CreatedAt: folder.CreatedAt,
	}, nil
}

// Delete removes the folder; contained notes are detached, not deleted.
func (s *folderService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	folder, err := uow.FolderRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedByUser{UserID: userId},
	)
	if err != nil {
		return err
	}
	if folder == nil {
		return fmt.Errorf("folder not found")
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	notes, err := uow.NoteRepository().FindAll(ctx,
		specification.NoteOwnedByUser{UserID: userId},
		specification.ByFolderID{FolderID: id},
	)
	if err != nil {
		return err
	}
	for _, n := range notes {
		if err := uow.NoteRepository().UpdateFields(ctx, n.Id, map[string]interface{}{
			"folder_id": nil,
		}); err != nil {
			return err
		}
	}

	if err := uow.FolderRepository().Delete(ctx, id); err != nil {
		return err
	}
	return uow.Commit()
}
