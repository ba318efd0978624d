package impl

import (
	"context"
	"log/slog"
	"time"

	"garage/internal/domain/entity"
	domainerrors "garage/internal/domain/errors"
	"garage/internal/domain/repository"
	"garage/internal/logctx"
	"garage/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// vehicleService implements the VehicleUsecase interface.
type vehicleService struct {
	txManager repository.TransactionManager
	logger    *slog.Logger
}

// VehicleServiceParams holds dependencies for vehicleService, injected by Fx.
type VehicleServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	Logger    *slog.Logger
}

// NewVehicleService is the constructor for vehicleService.
func NewVehicleService(params VehicleServiceParams) usecase.VehicleUsecase {
	return &vehicleService{
		txManager: params.TxManager,
		logger:    params.Logger,
	}
}

func (srv *vehicleService) log(ctx context.Context) *slog.Logger {
	return logctx.LoggerOrDefault(ctx, srv.logger)
}

// maxBuildYear allows next year's models to be entered ahead of time.
func maxBuildYear() int {
	return time.Now().Year() + 1
}

func validateBuildYear(year int) error {
	if year < entity.MinBuildYear || year > maxBuildYear() {
		return domainerrors.ErrValidationFailed.WrapMessage("build year is out of range")
	}

	return nil
}

func validateOdometerReading(reading float64) error {
	if reading < 0 {
		return domainerrors.ErrValidationFailed.WrapMessage("odometer reading must not be negative")
	}

	return nil
}

// CreateVehicle validates the input and persists a new vehicle for the owner.
func (srv *vehicleService) CreateVehicle(ctx context.Context, ownerID uuid.UUID, input usecase.CreateVehicleInput) (*entity.Vehicle, error) {
	if input.Manufacturer == "" {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("manufacturer is required")
	}
	if input.Model == "" {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("model is required")
	}
	if !input.OdometerUnit.Valid() {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("odometer unit must be KM or HOURS")
	}
	if input.BuildYear != nil {
		if err := validateBuildYear(*input.BuildYear); err != nil {
			return nil, err
		}
	}
	if input.OdometerReading != nil {
		if err := validateOdometerReading(*input.OdometerReading); err != nil {
			return nil, err
		}
	}

	vehicle := &entity.Vehicle{
		OwnerID:         ownerID,
		Manufacturer:    input.Manufacturer,
		Model:           input.Model,
		OdometerUnit:    input.OdometerUnit,
		LicensePlate:    input.LicensePlate,
		VIN:             input.VIN,
		BuildYear:       input.BuildYear,
		FuelType:        input.FuelType,
		OdometerReading: input.OdometerReading,
	}

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return repoFactory.VehicleRepo().Create(ctx, vehicle)
	})
	if err != nil {
		srv.log(ctx).Warn("Failed to create vehicle", slog.Any("ownerID", ownerID), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Debug("Vehicle created", slog.Any("ownerID", ownerID), slog.Any("vehicleID", vehicle.ID))

	return vehicle, nil
}

// GetVehicle returns a single vehicle of the owner.
func (srv *vehicleService) GetVehicle(ctx context.Context, ownerID, vehicleID uuid.UUID) (*entity.Vehicle, error) {
	var vehicle *entity.Vehicle

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.VehicleRepo().FindByID(ctx, vehicleID, ownerID)
		if errors.Is(err, repository.ErrVehicleNotFound) {
			return domainerrors.ErrNotFound
		}
		if err != nil {
			return errors.Wrap(err, "failed to load vehicle")
		}

		vehicle = found

		return nil
	})
	if err != nil {
		return nil, err
	}

	return vehicle, nil
}

// ListVehicles returns one page of the owner's vehicles. The page rows and
// the total count come from the same transaction so they cannot disagree.
func (srv *vehicleService) ListVehicles(ctx context.Context, ownerID uuid.UUID, page usecase.PageRequest) (*usecase.VehicleListOutput, error) {
	page = page.Normalize()

	var out *usecase.VehicleListOutput
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		vehicleRepo := repoFactory.VehicleRepo()

		total, err := vehicleRepo.CountByOwner(ctx, ownerID)
		if err != nil {
			return errors.Wrap(err, "failed to count vehicles")
		}

		vehicles, err := vehicleRepo.ListByOwner(ctx, ownerID, page.PageSize, page.Offset())
		if err != nil {
			return errors.Wrap(err, "failed to list vehicles")
		}

		out = &usecase.VehicleListOutput{
			Vehicles: vehicles,
			PageInfo: usecase.NewPageInfo(page, total),
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// UpdateVehicle applies a partial update; absent fields stay untouched.
func (srv *vehicleService) UpdateVehicle(ctx context.Context, ownerID, vehicleID uuid.UUID, input usecase.UpdateVehicleInput) (*entity.Vehicle, error) {
	if input.Manufacturer != nil && *input.Manufacturer == "" {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("manufacturer must not be empty")
	}
	if input.Model != nil && *input.Model == "" {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("model must not be empty")
	}
	if input.OdometerUnit != nil && !input.OdometerUnit.Valid() {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("odometer unit must be KM or HOURS")
	}
	if input.BuildYear != nil {
		if err := validateBuildYear(*input.BuildYear); err != nil {
			return nil, err
		}
	}
	if input.OdometerReading != nil {
		if err := validateOdometerReading(*input.OdometerReading); err != nil {
			return nil, err
		}
	}

	patch := repository.VehicleUpdate{
		Manufacturer:    input.Manufacturer,
		Model:           input.Model,
		OdometerUnit:    input.OdometerUnit,
		LicensePlate:    input.LicensePlate,
		VIN:             input.VIN,
		BuildYear:       input.BuildYear,
		FuelType:        input.FuelType,
		OdometerReading: input.OdometerReading,
	}

	var vehicle *entity.Vehicle
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		updated, err := repoFactory.VehicleRepo().Update(ctx, vehicleID, ownerID, patch)
		if errors.Is(err, repository.ErrVehicleNotFound) {
			return domainerrors.ErrNotFound
		}
		if err != nil {
			return errors.Wrap(err, "failed to update vehicle")
		}

		vehicle = updated

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Failed to update vehicle", slog.Any("vehicleID", vehicleID), slog.Any("error", err))

		return nil, err
	}

	return vehicle, nil
}

// DeleteVehicle removes the vehicle and, via cascade, its maintenance history.
func (srv *vehicleService) DeleteVehicle(ctx context.Context, ownerID, vehicleID uuid.UUID) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		err := repoFactory.VehicleRepo().Delete(ctx, vehicleID, ownerID)
		if errors.Is(err, repository.ErrVehicleNotFound) {
			return domainerrors.ErrNotFound
		}

		return err
	})
	if err != nil {
		return err
	}

	srv.log(ctx).Info("Vehicle deleted", slog.Any("ownerID", ownerID), slog.Any("vehicleID", vehicleID))

	return nil
}
