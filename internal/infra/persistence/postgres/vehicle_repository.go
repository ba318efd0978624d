package postgres

import (
	"context"
	"time"

	"garage/internal/domain/entity"
	domainerrors "garage/internal/domain/errors"
	"garage/internal/domain/repository"
	"garage/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// vehicleRepository implements the repository.VehicleRepository interface.
// Every query carries the owner id; a row id alone never reaches a row.
type vehicleRepository struct {
	db *gorm.DB
}

// NewVehicleRepository is the constructor for vehicleRepository.
func NewVehicleRepository(db *gorm.DB) repository.VehicleRepository {
	return &vehicleRepository{
		db: db,
	}
}

// FindByID returns the vehicle only when both id and owner match.
func (repo *vehicleRepository) FindByID(ctx context.Context, id, ownerID uuid.UUID) (*entity.Vehicle, error) {
	var vehicleM model.VehicleModel

	if err := repo.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&vehicleM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrVehicleNotFound
		}

		return nil, errors.Wrap(err, "failed to find vehicle by ID")
	}

	return toVehicleDomain(&vehicleM), nil
}

// ListByOwner returns a page of the owner's vehicles, newest first.
func (repo *vehicleRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*entity.Vehicle, error) {
	var vehicleModels []*model.VehicleModel

	query := repo.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&vehicleModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list vehicles")
	}

	vehicles := make([]*entity.Vehicle, 0, len(vehicleModels))
	for _, vehicleM := range vehicleModels {
		vehicles = append(vehicles, toVehicleDomain(vehicleM))
	}

	return vehicles, nil
}

// CountByOwner returns the total number of vehicles of the owner.
func (repo *vehicleRepository) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64

	if err := repo.db.WithContext(ctx).
		Model(&model.VehicleModel{}).
		Where("owner_id = ?", ownerID).
		Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count vehicles")
	}

	return count, nil
}

// Create persists a new vehicle stamped with its owner id.
func (repo *vehicleRepository) Create(ctx context.Context, vehicle *entity.Vehicle) error {
	vehicleM := fromVehicleDomain(vehicle)

	if err := repo.db.WithContext(ctx).Create(vehicleM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("invalid owner reference")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required vehicle information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create vehicle")
	}

	vehicle.ID = vehicleM.ID
	vehicle.CreatedAt = vehicleM.CreatedAt
	vehicle.UpdatedAt = vehicleM.UpdatedAt

	return nil
}

// vehicleUpdateColumns maps the non-nil patch fields to their columns.
// updated_at is always stamped, so even an empty patch touches the row.
func vehicleUpdateColumns(patch repository.VehicleUpdate) map[string]any {
	updates := map[string]any{"updated_at": time.Now()}
	if patch.LicensePlate != nil {
		updates["license_plate"] = *patch.LicensePlate
	}
	if patch.VIN != nil {
		updates["vin"] = *patch.VIN
	}
	if patch.Manufacturer != nil {
		updates["manufacturer"] = *patch.Manufacturer
	}
	if patch.Model != nil {
		updates["model"] = *patch.Model
	}
	if patch.BuildYear != nil {
		updates["build_year"] = *patch.BuildYear
	}
	if patch.FuelType != nil {
		updates["fuel_type"] = *patch.FuelType
	}
	if patch.OdometerUnit != nil {
		updates["odometer_unit"] = string(*patch.OdometerUnit)
	}
	if patch.OdometerReading != nil {
		updates["odometer_reading"] = *patch.OdometerReading
	}

	return updates
}

// Update applies the non-nil patch fields and returns the refreshed vehicle.
func (repo *vehicleRepository) Update(ctx context.Context, id, ownerID uuid.UUID, patch repository.VehicleUpdate) (*entity.Vehicle, error) {
	result := repo.db.WithContext(ctx).
		Model(&model.VehicleModel{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Updates(vehicleUpdateColumns(patch))
	if result.Error != nil {
		return nil, domainerrors.NewDatabaseExecuteError(result.Error, "failed to update vehicle")
	}
	if result.RowsAffected == 0 {
		return nil, repository.ErrVehicleNotFound
	}

	return repo.FindByID(ctx, id, ownerID)
}

// Delete removes the vehicle when owned by ownerID. Maintenance records
// cascade away with it.
func (repo *vehicleRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&model.VehicleModel{})
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to delete vehicle")
	}

	if result.RowsAffected == 0 {
		return repository.ErrVehicleNotFound
	}

	return nil
}

// --- Mapper Functions ---

// toVehicleDomain converts a GORM VehicleModel to a domain Vehicle entity.
func toVehicleDomain(data *model.VehicleModel) *entity.Vehicle {
	if data == nil {
		return nil
	}

	return &entity.Vehicle{
		ID:              data.ID,
		OwnerID:         data.OwnerID,
		LicensePlate:    data.LicensePlate,
		VIN:             data.VIN,
		Manufacturer:    data.Manufacturer,
		Model:           data.ModelName,
		BuildYear:       data.BuildYear,
		FuelType:        data.FuelType,
		OdometerUnit:    entity.OdometerUnit(data.OdometerUnit),
		OdometerReading: data.OdometerReading,
		CreatedAt:       data.CreatedAt,
		UpdatedAt:       data.UpdatedAt,
	}
}

// fromVehicleDomain converts a domain Vehicle entity to a GORM VehicleModel.
func fromVehicleDomain(data *entity.Vehicle) *model.VehicleModel {
	if data == nil {
		return nil
	}

	return &model.VehicleModel{
		ID:              data.ID,
		OwnerID:         data.OwnerID,
		LicensePlate:    data.LicensePlate,
		VIN:             data.VIN,
		Manufacturer:    data.Manufacturer,
		ModelName:       data.Model,
		BuildYear:       data.BuildYear,
		FuelType:        data.FuelType,
		OdometerUnit:    string(data.OdometerUnit),
		OdometerReading: data.OdometerReading,
		CreatedAt:       data.CreatedAt,
		UpdatedAt:       data.UpdatedAt,
	}
}
