package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Suministros-api/internal/application/dto"
	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/access"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
)

// StorageUseCase casos de uso del storage de la empresa (uno por empresa).
type StorageUseCase struct {
	repo repository.StorageRepository
}

// NewStorageUseCase construye el caso de uso.
func NewStorageUseCase(repo repository.StorageRepository) *StorageUseCase {
	return &StorageUseCase{repo: repo}
}

// Create crea el storage de la empresa del principal. Solo el propietario y solo uno.
func (uc *StorageUseCase) Create(ctx context.Context, p access.Principal, in dto.CreateStorageRequest) (*dto.StorageResponse, error) {
	if err := access.Authorize(p, access.Storage, access.Create, p.CompanyID); err != nil {
		return nil, err
	}
	address := strings.TrimSpace(in.Address)
	if address == "" {
		return nil, domain.Invalid("address", "es obligatorio")
	}
	existing, err := uc.repo.GetByCompany(ctx, p.CompanyID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.Invalid("company", "la empresa ya tiene un storage")
	}
	now := time.Now()
	storage := &entity.Storage{
		ID:        uuid.New().String(),
		CompanyID: p.CompanyID,
		Address:   address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, storage); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.Invalid("company", "la empresa ya tiene un storage")
		}
		return nil, err
	}
	return toStorageResponse(storage), nil
}

// load obtiene el storage y verifica la capacidad c del principal sobre él.
func (uc *StorageUseCase) load(ctx context.Context, p access.Principal, id string, c access.Capability) (*entity.Storage, error) {
	if err := access.Authorize(p, access.Storage, access.Read, p.CompanyID); err != nil {
		return nil, err
	}
	storage, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if storage == nil {
		return nil, domain.ErrNotFound
	}
	if err := access.Authorize(p, access.Storage, c, storage.CompanyID); err != nil {
		return nil, err
	}
	return storage, nil
}

// GetByID obtiene el storage. Cualquier miembro de la empresa.
func (uc *StorageUseCase) GetByID(ctx context.Context, p access.Principal, id string) (*dto.StorageResponse, error) {
	storage, err := uc.load(ctx, p, id, access.Read)
	if err != nil {
		return nil, err
	}
	return toStorageResponse(storage), nil
}

// Update cambia la dirección. Solo el propietario.
func (uc *StorageUseCase) Update(ctx context.Context, p access.Principal, id string, in dto.UpdateStorageRequest) (*dto.StorageResponse, error) {
	storage, err := uc.load(ctx, p, id, access.Edit)
	if err != nil {
		return nil, err
	}
	address := strings.TrimSpace(in.Address)
	if address == "" {
		return nil, domain.Invalid("address", "es obligatorio")
	}
	storage.Address = address
	storage.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, storage); err != nil {
		return nil, err
	}
	return toStorageResponse(storage), nil
}

// Delete elimina el storage y sus productos. Solo el propietario.
func (uc *StorageUseCase) Delete(ctx context.Context, p access.Principal, id string) error {
	storage, err := uc.load(ctx, p, id, access.Delete)
	if err != nil {
		return err
	}
	return uc.repo.Delete(ctx, storage.ID)
}

func toStorageResponse(s *entity.Storage) *dto.StorageResponse {
	return &dto.StorageResponse{
		ID:        s.ID,
		CompanyID: s.CompanyID,
		Address:   s.Address,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
