package service

import (
	"context"
	"errors"

	tenantserrors "dormitory/internal/tenants/errors"
	"dormitory/internal/tenants/repository"
	"dormitory/internal/tenants/validator"
	"dormitory/pkg/config"
	apperrors "dormitory/pkg/errors"
	"dormitory/pkg/model"
	"dormitory/pkg/sanitizer"
	"dormitory/pkg/validation"
)

type TenantService interface {
	Create(ctx context.Context, tenant *model.Tenant) error
	GetByID(ctx context.Context, id string) (*model.Tenant, error)
	GetAll(ctx context.Context) ([]*model.Tenant, error)
	Update(ctx context.Context, id string, update *model.TenantUpdate) (*model.Tenant, error)
	Delete(ctx context.Context, id string) (*model.Tenant, error)
}

type tenantService struct {
	repo      repository.TenantRepository
	validator *validator.TenantValidator
	cfg       *config.Config
}

func NewTenantService(
	repo repository.TenantRepository,
	validator *validator.TenantValidator,
	cfg *config.Config,
) TenantService {
	return &tenantService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *tenantService) Create(ctx context.Context, tenant *model.Tenant) error {
	tenant.ID = ""
	s.sanitize(tenant)

	if err := s.validator.Validate(tenant); err != nil {
		s.cfg.Log.Warn("Tenant validation failed",
			"full_name", tenant.FullName,
			"error", err,
		)
		return validationError(err)
	}

	if err := s.repo.Create(ctx, tenant); err != nil {
		s.cfg.Log.Error("Failed to create tenant",
			"full_name", tenant.FullName,
			"error", err,
		)
		return apperrors.Internal("Failed to create tenant", err)
	}

	s.cfg.Log.Info("Tenant created successfully",
		"id", tenant.ID,
		"full_name", tenant.FullName,
	)

	return nil
}

func (s *tenantService) GetByID(ctx context.Context, id string) (*model.Tenant, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Tenant ID cannot be empty")
	}

	tenant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to retrieve tenant")
	}
	return tenant, nil
}

func (s *tenantService) GetAll(ctx context.Context) ([]*model.Tenant, error) {
	tenants, err := s.repo.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to get all tenants", "error", err)
		return nil, apperrors.Internal("Failed to retrieve tenants", err)
	}
	return tenants, nil
}

func (s *tenantService) Update(ctx context.Context, id string, update *model.TenantUpdate) (*model.Tenant, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Tenant ID cannot be empty")
	}
	if update.IsEmpty() {
		return nil, apperrors.InvalidInput("No fields to update")
	}

	s.sanitizeUpdate(update)
	if err := s.validator.ValidateUpdate(update); err != nil {
		s.cfg.Log.Warn("Tenant update validation failed", "id", id, "error", err)
		return nil, validationError(err)
	}

	tenant, err := s.repo.Update(ctx, id, update)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to update tenant")
	}

	s.cfg.Log.Info("Tenant updated successfully", "id", id)
	return tenant, nil
}

// Delete removes the tenant. Bookings that reference it are kept and resolve
// to a missing tenant.
func (s *tenantService) Delete(ctx context.Context, id string) (*model.Tenant, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Tenant ID cannot be empty")
	}

	tenant, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to delete tenant")
	}

	s.cfg.Log.Info("Tenant deleted successfully", "id", id)
	return tenant, nil
}

func validationError(err error) error {
	var validationErrs validation.ValidationErrors
	if errors.As(err, &validationErrs) {
		return apperrors.Validation("Tenant validation failed", validationErrs.Details())
	}
	return apperrors.Validation("Tenant validation failed", map[string]any{"error": err.Error()})
}

func (s *tenantService) mapRepoError(err error, id, message string) error {
	if errors.Is(err, tenantserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Tenant", id)
	}
	if errors.Is(err, tenantserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid tenant ID format")
	}
	s.cfg.Log.Error(message, "id", id, "error", err)
	return apperrors.Internal(message, err)
}

func (s *tenantService) sanitize(tenant *model.Tenant) {
	tenant.LastName = sanitizer.NormalizeName(tenant.LastName)
	tenant.FullName = sanitizer.NormalizeName(tenant.FullName)
	tenant.Address = sanitizer.NormalizeAddress(tenant.Address)
	tenant.ContactNo = model.Phone(sanitizer.NormalizePhone(string(tenant.ContactNo), s.cfg.DefaultPhoneRegion))
}

func (s *tenantService) sanitizeUpdate(update *model.TenantUpdate) {
	if update.LastName != nil {
		v := sanitizer.NormalizeName(*update.LastName)
		update.LastName = &v
	}
	if update.FullName != nil {
		v := sanitizer.NormalizeName(*update.FullName)
		update.FullName = &v
	}
	if update.Address != nil {
		v := sanitizer.NormalizeAddress(*update.Address)
		update.Address = &v
	}
	if update.ContactNo != nil {
		v := model.Phone(sanitizer.NormalizePhone(string(*update.ContactNo), s.cfg.DefaultPhoneRegion))
		update.ContactNo = &v
	}
}
