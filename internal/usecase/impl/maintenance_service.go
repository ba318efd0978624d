package impl

import (
	"context"
	"log/slog"
	"strings"

	"garage/internal/domain/entity"
	domainerrors "garage/internal/domain/errors"
	"garage/internal/domain/repository"
	"garage/internal/logctx"
	"garage/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// maintenanceService implements the MaintenanceUsecase interface. Record and
// item writes share one transaction; the item list is only ever replaced
// wholesale, never patched item by item.
type maintenanceService struct {
	txManager repository.TransactionManager
	logger    *slog.Logger
}

// MaintenanceServiceParams holds dependencies for maintenanceService, injected by Fx.
type MaintenanceServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	Logger    *slog.Logger
}

// NewMaintenanceService is the constructor for maintenanceService.
func NewMaintenanceService(params MaintenanceServiceParams) usecase.MaintenanceUsecase {
	return &maintenanceService{
		txManager: params.TxManager,
		logger:    params.Logger,
	}
}

func (srv *maintenanceService) log(ctx context.Context) *slog.Logger {
	return logctx.LoggerOrDefault(ctx, srv.logger)
}

// validateItems checks the item lines and verifies every part id resolves to
// a part of the owner.
func validateItems(ctx context.Context, partRepo repository.PartRepository, ownerID uuid.UUID, items []usecase.MaintenanceItemInput) error {
	if len(items) == 0 {
		return nil
	}

	partIDs := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return domainerrors.ErrValidationFailed.WrapMessage("item quantity must be positive")
		}
		if item.PriceCentsOverride != nil && *item.PriceCentsOverride < 0 {
			return domainerrors.ErrValidationFailed.WrapMessage("item price must not be negative")
		}
		partIDs = append(partIDs, item.PartID)
	}

	partIDs = dedupeIDs(partIDs)
	parts, err := partRepo.FindByIDs(ctx, ownerID, partIDs)
	if err != nil {
		return errors.Wrap(err, "failed to resolve part ids")
	}
	if len(parts) != len(partIDs) {
		return domainerrors.ErrInvalidParts
	}

	return nil
}

func toItemEntities(items []usecase.MaintenanceItemInput) []*entity.MaintenanceItem {
	out := make([]*entity.MaintenanceItem, 0, len(items))
	for _, item := range items {
		out = append(out, &entity.MaintenanceItem{
			PartID:             item.PartID,
			Quantity:           item.Quantity,
			Unit:               item.Unit,
			PriceCentsOverride: item.PriceCentsOverride,
			Notes:              item.Notes,
		})
	}

	return out
}

// CreateRecord validates the input, checks the vehicle and every referenced
// part belong to the owner, and persists the record with its items.
func (srv *maintenanceService) CreateRecord(ctx context.Context, ownerID uuid.UUID, input usecase.CreateMaintenanceRecordInput) (*entity.MaintenanceRecord, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("title is required")
	}
	if input.HappenedAt.IsZero() {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("happened-at date is required")
	}
	if input.OdometerReading != nil && *input.OdometerReading < 0 {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("odometer reading must not be negative")
	}

	var record *entity.MaintenanceRecord
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if _, err := repoFactory.VehicleRepo().FindByID(ctx, input.VehicleID, ownerID); err != nil {
			if errors.Is(err, repository.ErrVehicleNotFound) {
				return domainerrors.ErrNotFound.WrapMessage("vehicle not found")
			}

			return errors.Wrap(err, "failed to load vehicle")
		}

		if err := validateItems(ctx, repoFactory.PartRepo(), ownerID, input.Items); err != nil {
			return err
		}

		maintenanceRepo := repoFactory.MaintenanceRepo()

		newRecord := &entity.MaintenanceRecord{
			OwnerID:         ownerID,
			VehicleID:       input.VehicleID,
			HappenedAt:      input.HappenedAt,
			OdometerReading: input.OdometerReading,
			Title:           strings.TrimSpace(input.Title),
			Notes:           input.Notes,
			Items:           toItemEntities(input.Items),
		}
		if err := maintenanceRepo.Create(ctx, newRecord); err != nil {
			return errors.Wrap(err, "failed to create maintenance record")
		}

		hydrated, err := maintenanceRepo.FindByID(ctx, newRecord.ID, ownerID)
		if err != nil {
			return errors.Wrap(err, "failed to reload created record")
		}

		record = hydrated

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Failed to create maintenance record", slog.Any("ownerID", ownerID), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Debug("Maintenance record created", slog.Any("ownerID", ownerID), slog.Any("recordID", record.ID))

	return record, nil
}

// GetRecord returns a single record of the owner, fully hydrated.
func (srv *maintenanceService) GetRecord(ctx context.Context, ownerID, recordID uuid.UUID) (*entity.MaintenanceRecord, error) {
	var record *entity.MaintenanceRecord

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.MaintenanceRepo().FindByID(ctx, recordID, ownerID)
		if errors.Is(err, repository.ErrMaintenanceRecordNotFound) {
			return domainerrors.ErrNotFound
		}
		if err != nil {
			return errors.Wrap(err, "failed to load maintenance record")
		}

		record = found

		return nil
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

// ListRecords returns one page of the owner's records matching the filter,
// newest happened-at first.
func (srv *maintenanceService) ListRecords(ctx context.Context, ownerID uuid.UUID, input usecase.ListMaintenanceRecordsInput) (*usecase.MaintenanceListOutput, error) {
	page := input.Page.Normalize()
	filter := repository.MaintenanceFilter{
		VehicleID: input.VehicleID,
		From:      input.From,
		To:        input.To,
	}

	var out *usecase.MaintenanceListOutput
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		maintenanceRepo := repoFactory.MaintenanceRepo()

		total, err := maintenanceRepo.CountByOwner(ctx, ownerID, filter)
		if err != nil {
			return errors.Wrap(err, "failed to count maintenance records")
		}

		records, err := maintenanceRepo.ListByOwner(ctx, ownerID, filter, page.PageSize, page.Offset())
		if err != nil {
			return errors.Wrap(err, "failed to list maintenance records")
		}

		out = &usecase.MaintenanceListOutput{
			Records:  records,
			PageInfo: usecase.NewPageInfo(page, total),
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// UpdateRecord applies a partial update to the scalar fields and, when Items
// is non-nil, replaces the whole item list.
func (srv *maintenanceService) UpdateRecord(ctx context.Context, ownerID, recordID uuid.UUID, input usecase.UpdateMaintenanceRecordInput) (*entity.MaintenanceRecord, error) {
	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("title must not be empty")
	}
	if input.OdometerReading != nil && *input.OdometerReading < 0 {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("odometer reading must not be negative")
	}

	patch := repository.MaintenanceRecordUpdate{
		HappenedAt:      input.HappenedAt,
		OdometerReading: input.OdometerReading,
		Title:           input.Title,
		Notes:           input.Notes,
	}

	var record *entity.MaintenanceRecord
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		maintenanceRepo := repoFactory.MaintenanceRepo()

		if _, err := maintenanceRepo.FindByID(ctx, recordID, ownerID); err != nil {
			if errors.Is(err, repository.ErrMaintenanceRecordNotFound) {
				return domainerrors.ErrNotFound
			}

			return errors.Wrap(err, "failed to load maintenance record")
		}

		if input.Items != nil {
			if err := validateItems(ctx, repoFactory.PartRepo(), ownerID, *input.Items); err != nil {
				return err
			}
			if err := maintenanceRepo.ReplaceItems(ctx, recordID, toItemEntities(*input.Items)); err != nil {
				return errors.Wrap(err, "failed to replace items")
			}
		}

		updated, err := maintenanceRepo.Update(ctx, recordID, ownerID, patch)
		if errors.Is(err, repository.ErrMaintenanceRecordNotFound) {
			return domainerrors.ErrNotFound
		}
		if err != nil {
			return errors.Wrap(err, "failed to update maintenance record")
		}

		record = updated

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Failed to update maintenance record", slog.Any("recordID", recordID), slog.Any("error", err))

		return nil, err
	}

	return record, nil
}

// DeleteRecord removes the record and, via cascade, its items.
func (srv *maintenanceService) DeleteRecord(ctx context.Context, ownerID, recordID uuid.UUID) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		err := repoFactory.MaintenanceRepo().Delete(ctx, recordID, ownerID)
		if errors.Is(err, repository.ErrMaintenanceRecordNotFound) {
			return domainerrors.ErrNotFound
		}

		return err
	})
	if err != nil {
		return err
	}

	srv.log(ctx).Info("Maintenance record deleted", slog.Any("ownerID", ownerID), slog.Any("recordID", recordID))

	return nil
}
