package impl

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"garage/internal/domain/entity"
	"garage/internal/domain/repository"

	"github.com/google/uuid"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memoryStore is a stateful in-memory stand-in for the persistence layer.
// It implements the same ownership-scoping and replace semantics as the
// PostgreSQL repositories so the services can be exercised end to end.
type memoryStore struct {
	users    map[uuid.UUID]*entity.User
	tokens   map[uuid.UUID]*entity.RefreshToken
	vehicles map[uuid.UUID]*entity.Vehicle
	tags     map[uuid.UUID]*entity.Tag
	parts    map[uuid.UUID]*entity.Part
	partTags map[uuid.UUID][]uuid.UUID // part id → tag ids
	records  map[uuid.UUID]*entity.MaintenanceRecord
	items    map[uuid.UUID]*entity.MaintenanceItem

	insertionCounter int
	insertionOrder   map[uuid.UUID]int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:          make(map[uuid.UUID]*entity.User),
		tokens:         make(map[uuid.UUID]*entity.RefreshToken),
		vehicles:       make(map[uuid.UUID]*entity.Vehicle),
		tags:           make(map[uuid.UUID]*entity.Tag),
		parts:          make(map[uuid.UUID]*entity.Part),
		partTags:       make(map[uuid.UUID][]uuid.UUID),
		records:        make(map[uuid.UUID]*entity.MaintenanceRecord),
		items:          make(map[uuid.UUID]*entity.MaintenanceItem),
		insertionOrder: make(map[uuid.UUID]int),
	}
}

func (s *memoryStore) nextOrder(id uuid.UUID) {
	s.insertionCounter++
	s.insertionOrder[id] = s.insertionCounter
}

// fakeTxManager runs the callback directly; the fakes have no transactions
// to manage.
type fakeTxManager struct {
	store *memoryStore
}

func (m *fakeTxManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	return fn(&fakeRepoFactory{store: m.store})
}

type fakeRepoFactory struct {
	store *memoryStore
}

func (f *fakeRepoFactory) UserRepo() repository.UserRepository { return &fakeUserRepo{f.store} }
func (f *fakeRepoFactory) RefreshTokenRepo() repository.RefreshTokenRepository {
	return &fakeRefreshTokenRepo{f.store}
}
func (f *fakeRepoFactory) VehicleRepo() repository.VehicleRepository { return &fakeVehicleRepo{f.store} }
func (f *fakeRepoFactory) TagRepo() repository.TagRepository         { return &fakeTagRepo{f.store} }
func (f *fakeRepoFactory) PartRepo() repository.PartRepository       { return &fakePartRepo{f.store} }
func (f *fakeRepoFactory) MaintenanceRepo() repository.MaintenanceRepository {
	return &fakeMaintenanceRepo{f.store}
}

// --- users ---

type fakeUserRepo struct {
	store *memoryStore
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	if user, ok := r.store.users[id]; ok {
		copied := *user

		return &copied, nil
	}

	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, user := range r.store.users {
		if user.Email == email {
			copied := *user

			return &copied, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	r.store.users[user.ID] = &copied

	return nil
}

// --- refresh tokens ---

type fakeRefreshTokenRepo struct {
	store *memoryStore
}

func (r *fakeRefreshTokenRepo) Create(_ context.Context, token *entity.RefreshToken) error {
	token.ID = uuid.New()
	token.CreatedAt = time.Now()
	copied := *token
	r.store.tokens[token.ID] = &copied
	r.store.nextOrder(token.ID)

	return nil
}

func (r *fakeRefreshTokenRepo) FindByHash(_ context.Context, tokenHash string) (*entity.RefreshToken, error) {
	for _, token := range r.store.tokens {
		if token.TokenHash == tokenHash {
			copied := *token

			return &copied, nil
		}
	}

	return nil, repository.ErrRefreshTokenNotFound
}

func (r *fakeRefreshTokenRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.RefreshToken, error) {
	if token, ok := r.store.tokens[id]; ok {
		copied := *token

		return &copied, nil
	}

	return nil, repository.ErrRefreshTokenNotFound
}

func (r *fakeRefreshTokenRepo) FindByUserID(_ context.Context, userID uuid.UUID) ([]*entity.RefreshToken, error) {
	var out []*entity.RefreshToken
	for _, token := range r.store.tokens {
		if token.UserID == userID {
			copied := *token
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return r.store.insertionOrder[out[i].ID] > r.store.insertionOrder[out[j].ID]
	})

	return out, nil
}

func (r *fakeRefreshTokenRepo) DeleteByID(_ context.Context, id uuid.UUID) error {
	if _, ok := r.store.tokens[id]; !ok {
		return repository.ErrRefreshTokenNotFound
	}
	delete(r.store.tokens, id)

	return nil
}

func (r *fakeRefreshTokenRepo) DeleteByHash(_ context.Context, tokenHash string) error {
	for id, token := range r.store.tokens {
		if token.TokenHash == tokenHash {
			delete(r.store.tokens, id)

			return nil
		}
	}

	return repository.ErrRefreshTokenNotFound
}

func (r *fakeRefreshTokenRepo) DeleteByUserID(_ context.Context, userID uuid.UUID) error {
	for id, token := range r.store.tokens {
		if token.UserID == userID {
			delete(r.store.tokens, id)
		}
	}

	return nil
}

func (r *fakeRefreshTokenRepo) DeleteExpired(_ context.Context) (int64, error) {
	var removed int64
	now := time.Now()
	for id, token := range r.store.tokens {
		if token.ExpiresAt.Before(now) {
			delete(r.store.tokens, id)
			removed++
		}
	}

	return removed, nil
}

func (r *fakeRefreshTokenRepo) CountActiveByUserID(_ context.Context, userID uuid.UUID) (int, error) {
	count := 0
	now := time.Now()
	for _, token := range r.store.tokens {
		if token.UserID == userID && token.ExpiresAt.After(now) {
			count++
		}
	}

	return count, nil
}

// --- vehicles ---

type fakeVehicleRepo struct {
	store *memoryStore
}

func (r *fakeVehicleRepo) FindByID(_ context.Context, id, ownerID uuid.UUID) (*entity.Vehicle, error) {
	if vehicle, ok := r.store.vehicles[id]; ok && vehicle.OwnerID == ownerID {
		copied := *vehicle

		return &copied, nil
	}

	return nil, repository.ErrVehicleNotFound
}

func (r *fakeVehicleRepo) ListByOwner(_ context.Context, ownerID uuid.UUID, limit, offset int) ([]*entity.Vehicle, error) {
	var all []*entity.Vehicle
	for _, vehicle := range r.store.vehicles {
		if vehicle.OwnerID == ownerID {
			copied := *vehicle
			all = append(all, &copied)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		return r.store.insertionOrder[all[i].ID] > r.store.insertionOrder[all[j].ID]
	})

	return pageSlice(all, limit, offset), nil
}

func (r *fakeVehicleRepo) CountByOwner(_ context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64
	for _, vehicle := range r.store.vehicles {
		if vehicle.OwnerID == ownerID {
			count++
		}
	}

	return count, nil
}

func (r *fakeVehicleRepo) Create(_ context.Context, vehicle *entity.Vehicle) error {
	vehicle.ID = uuid.New()
	vehicle.CreatedAt = time.Now()
	vehicle.UpdatedAt = vehicle.CreatedAt
	copied := *vehicle
	r.store.vehicles[vehicle.ID] = &copied
	r.store.nextOrder(vehicle.ID)

	return nil
}

func (r *fakeVehicleRepo) Update(ctx context.Context, id, ownerID uuid.UUID, patch repository.VehicleUpdate) (*entity.Vehicle, error) {
	vehicle, ok := r.store.vehicles[id]
	if !ok || vehicle.OwnerID != ownerID {
		return nil, repository.ErrVehicleNotFound
	}

	if patch.LicensePlate != nil {
		vehicle.LicensePlate = patch.LicensePlate
	}
	if patch.VIN != nil {
		vehicle.VIN = patch.VIN
	}
	if patch.Manufacturer != nil {
		vehicle.Manufacturer = *patch.Manufacturer
	}
	if patch.Model != nil {
		vehicle.Model = *patch.Model
	}
	if patch.BuildYear != nil {
		vehicle.BuildYear = patch.BuildYear
	}
	if patch.FuelType != nil {
		vehicle.FuelType = patch.FuelType
	}
	if patch.OdometerUnit != nil {
		vehicle.OdometerUnit = *patch.OdometerUnit
	}
	if patch.OdometerReading != nil {
		vehicle.OdometerReading = patch.OdometerReading
	}
	vehicle.UpdatedAt = time.Now()

	return r.FindByID(ctx, id, ownerID)
}

func (r *fakeVehicleRepo) Delete(_ context.Context, id, ownerID uuid.UUID) error {
	vehicle, ok := r.store.vehicles[id]
	if !ok || vehicle.OwnerID != ownerID {
		return repository.ErrVehicleNotFound
	}
	delete(r.store.vehicles, id)

	// Cascade: maintenance records and their items go with the vehicle.
	for recordID, record := range r.store.records {
		if record.VehicleID == id {
			for itemID, item := range r.store.items {
				if item.RecordID == recordID {
					delete(r.store.items, itemID)
				}
			}
			delete(r.store.records, recordID)
		}
	}

	return nil
}

// --- tags ---

type fakeTagRepo struct {
	store *memoryStore
}

func (r *fakeTagRepo) FindByID(_ context.Context, id, ownerID uuid.UUID) (*entity.Tag, error) {
	if tag, ok := r.store.tags[id]; ok && tag.OwnerID == ownerID {
		copied := *tag

		return &copied, nil
	}

	return nil, repository.ErrTagNotFound
}

func (r *fakeTagRepo) FindByIDs(_ context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]*entity.Tag, error) {
	out := []*entity.Tag{}
	for _, id := range ids {
		if tag, ok := r.store.tags[id]; ok && tag.OwnerID == ownerID {
			copied := *tag
			out = append(out, &copied)
		}
	}

	return out, nil
}

func (r *fakeTagRepo) ListByOwner(_ context.Context, ownerID uuid.UUID, limit, offset int) ([]*entity.Tag, error) {
	var all []*entity.Tag
	for _, tag := range r.store.tags {
		if tag.OwnerID == ownerID {
			copied := *tag
			all = append(all, &copied)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })

	return pageSlice(all, limit, offset), nil
}

func (r *fakeTagRepo) CountByOwner(_ context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64
	for _, tag := range r.store.tags {
		if tag.OwnerID == ownerID {
			count++
		}
	}

	return count, nil
}

func (r *fakeTagRepo) Create(_ context.Context, tag *entity.Tag) error {
	for _, existing := range r.store.tags {
		if existing.OwnerID == tag.OwnerID && (existing.Name == tag.Name || existing.Slug == tag.Slug) {
			return repository.ErrTagAlreadyExists
		}
	}

	tag.ID = uuid.New()
	tag.CreatedAt = time.Now()
	copied := *tag
	r.store.tags[tag.ID] = &copied
	r.store.nextOrder(tag.ID)

	return nil
}

func (r *fakeTagRepo) Update(ctx context.Context, id, ownerID uuid.UUID, patch repository.TagUpdate) (*entity.Tag, error) {
	tag, ok := r.store.tags[id]
	if !ok || tag.OwnerID != ownerID {
		return nil, repository.ErrTagNotFound
	}

	if patch.Name != nil || patch.Slug != nil {
		for otherID, other := range r.store.tags {
			if otherID == id || other.OwnerID != ownerID {
				continue
			}
			if patch.Name != nil && other.Name == *patch.Name {
				return nil, repository.ErrTagAlreadyExists
			}
			if patch.Slug != nil && other.Slug == *patch.Slug {
				return nil, repository.ErrTagAlreadyExists
			}
		}
	}

	if patch.Name != nil {
		tag.Name = *patch.Name
	}
	if patch.Slug != nil {
		tag.Slug = *patch.Slug
	}
	if patch.Color != nil {
		tag.Color = patch.Color
	}

	return r.FindByID(ctx, id, ownerID)
}

func (r *fakeTagRepo) Delete(_ context.Context, id, ownerID uuid.UUID) error {
	tag, ok := r.store.tags[id]
	if !ok || tag.OwnerID != ownerID {
		return repository.ErrTagNotFound
	}
	delete(r.store.tags, id)

	// Cascade the join rows; parts stay untouched.
	for partID, tagIDs := range r.store.partTags {
		kept := tagIDs[:0]
		for _, tagID := range tagIDs {
			if tagID != id {
				kept = append(kept, tagID)
			}
		}
		r.store.partTags[partID] = kept
	}

	return nil
}

// --- parts ---

type fakePartRepo struct {
	store *memoryStore
}

func (r *fakePartRepo) hydrateTags(part *entity.Part) {
	part.Tags = []*entity.Tag{}
	for _, tagID := range r.store.partTags[part.ID] {
		if tag, ok := r.store.tags[tagID]; ok {
			copied := *tag
			part.Tags = append(part.Tags, &copied)
		}
	}
	sort.Slice(part.Tags, func(i, j int) bool { return part.Tags[i].Name < part.Tags[j].Name })
}

func (r *fakePartRepo) FindByID(_ context.Context, id, ownerID uuid.UUID) (*entity.Part, error) {
	part, ok := r.store.parts[id]
	if !ok || part.OwnerID != ownerID {
		return nil, repository.ErrPartNotFound
	}

	copied := *part
	r.hydrateTags(&copied)

	return &copied, nil
}

func (r *fakePartRepo) FindByIDs(_ context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]*entity.Part, error) {
	out := []*entity.Part{}
	for _, id := range ids {
		if part, ok := r.store.parts[id]; ok && part.OwnerID == ownerID {
			copied := *part
			out = append(out, &copied)
		}
	}

	return out, nil
}

func (r *fakePartRepo) matches(part *entity.Part, filter repository.PartFilter) bool {
	if filter.Search != "" {
		search := strings.ToLower(filter.Search)
		name := strings.ToLower(part.Name)
		desc := ""
		if part.Description != nil {
			desc = strings.ToLower(*part.Description)
		}
		if !strings.Contains(name, search) && !strings.Contains(desc, search) {
			return false
		}
	}
	if len(filter.TagIDs) > 0 {
		attached := make(map[uuid.UUID]struct{})
		for _, tagID := range r.store.partTags[part.ID] {
			attached[tagID] = struct{}{}
		}
		found := false
		for _, tagID := range filter.TagIDs {
			if _, ok := attached[tagID]; ok {
				found = true

				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

func (r *fakePartRepo) ListByOwner(_ context.Context, ownerID uuid.UUID, filter repository.PartFilter, limit, offset int) ([]*entity.Part, error) {
	var all []*entity.Part
	for _, part := range r.store.parts {
		if part.OwnerID != ownerID || !r.matches(part, filter) {
			continue
		}
		copied := *part
		r.hydrateTags(&copied)
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool {
		return r.store.insertionOrder[all[i].ID] > r.store.insertionOrder[all[j].ID]
	})

	return pageSlice(all, limit, offset), nil
}

func (r *fakePartRepo) CountByOwner(_ context.Context, ownerID uuid.UUID, filter repository.PartFilter) (int64, error) {
	var count int64
	for _, part := range r.store.parts {
		if part.OwnerID == ownerID && r.matches(part, filter) {
			count++
		}
	}

	return count, nil
}

func (r *fakePartRepo) Create(_ context.Context, part *entity.Part) error {
	part.ID = uuid.New()
	part.CreatedAt = time.Now()
	part.UpdatedAt = part.CreatedAt
	copied := *part
	copied.Tags = nil
	r.store.parts[part.ID] = &copied
	r.store.nextOrder(part.ID)

	return nil
}

func (r *fakePartRepo) ReplaceTags(_ context.Context, partID uuid.UUID, tagIDs []uuid.UUID) error {
	r.store.partTags[partID] = append([]uuid.UUID{}, tagIDs...)

	return nil
}

func (r *fakePartRepo) Update(ctx context.Context, id, ownerID uuid.UUID, patch repository.PartUpdate) (*entity.Part, error) {
	part, ok := r.store.parts[id]
	if !ok || part.OwnerID != ownerID {
		return nil, repository.ErrPartNotFound
	}

	if patch.Name != nil {
		part.Name = *patch.Name
	}
	if patch.Description != nil {
		part.Description = patch.Description
	}
	if patch.PriceCents != nil {
		part.PriceCents = patch.PriceCents
	}
	if patch.Currency != nil {
		part.Currency = patch.Currency
	}
	if patch.URL != nil {
		part.URL = patch.URL
	}
	part.UpdatedAt = time.Now()

	return r.FindByID(ctx, id, ownerID)
}

func (r *fakePartRepo) Delete(_ context.Context, id, ownerID uuid.UUID) error {
	part, ok := r.store.parts[id]
	if !ok || part.OwnerID != ownerID {
		return repository.ErrPartNotFound
	}

	for _, item := range r.store.items {
		if item.PartID == id {
			return repository.ErrPartInUse
		}
	}

	delete(r.store.parts, id)
	delete(r.store.partTags, id)

	return nil
}

// --- maintenance records ---

type fakeMaintenanceRepo struct {
	store *memoryStore
}

func (r *fakeMaintenanceRepo) hydrate(record *entity.MaintenanceRecord) {
	partRepo := &fakePartRepo{store: r.store}

	record.Items = []*entity.MaintenanceItem{}
	var itemList []*entity.MaintenanceItem
	for _, item := range r.store.items {
		if item.RecordID == record.ID {
			copied := *item
			itemList = append(itemList, &copied)
		}
	}
	sort.Slice(itemList, func(i, j int) bool {
		return r.store.insertionOrder[itemList[i].ID] < r.store.insertionOrder[itemList[j].ID]
	})

	for _, item := range itemList {
		if part, ok := r.store.parts[item.PartID]; ok {
			copied := *part
			partRepo.hydrateTags(&copied)
			item.Part = &copied
		}
	}
	record.Items = itemList
	if record.Items == nil {
		record.Items = []*entity.MaintenanceItem{}
	}
}

func (r *fakeMaintenanceRepo) FindByID(_ context.Context, id, ownerID uuid.UUID) (*entity.MaintenanceRecord, error) {
	record, ok := r.store.records[id]
	if !ok || record.OwnerID != ownerID {
		return nil, repository.ErrMaintenanceRecordNotFound
	}

	copied := *record
	r.hydrate(&copied)

	return &copied, nil
}

func (r *fakeMaintenanceRepo) matches(record *entity.MaintenanceRecord, filter repository.MaintenanceFilter) bool {
	if filter.VehicleID != nil && record.VehicleID != *filter.VehicleID {
		return false
	}
	if filter.From != nil && record.HappenedAt.Before(*filter.From) {
		return false
	}
	if filter.To != nil && record.HappenedAt.After(*filter.To) {
		return false
	}

	return true
}

func (r *fakeMaintenanceRepo) ListByOwner(_ context.Context, ownerID uuid.UUID, filter repository.MaintenanceFilter, limit, offset int) ([]*entity.MaintenanceRecord, error) {
	var all []*entity.MaintenanceRecord
	for _, record := range r.store.records {
		if record.OwnerID != ownerID || !r.matches(record, filter) {
			continue
		}
		copied := *record
		r.hydrate(&copied)
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].HappenedAt.After(all[j].HappenedAt) })

	return pageSlice(all, limit, offset), nil
}

func (r *fakeMaintenanceRepo) CountByOwner(_ context.Context, ownerID uuid.UUID, filter repository.MaintenanceFilter) (int64, error) {
	var count int64
	for _, record := range r.store.records {
		if record.OwnerID == ownerID && r.matches(record, filter) {
			count++
		}
	}

	return count, nil
}

func (r *fakeMaintenanceRepo) Create(ctx context.Context, record *entity.MaintenanceRecord) error {
	record.ID = uuid.New()
	record.CreatedAt = time.Now()
	record.UpdatedAt = record.CreatedAt

	copied := *record
	copied.Items = nil
	r.store.records[record.ID] = &copied
	r.store.nextOrder(record.ID)

	return r.ReplaceItems(ctx, record.ID, record.Items)
}

func (r *fakeMaintenanceRepo) ReplaceItems(_ context.Context, recordID uuid.UUID, items []*entity.MaintenanceItem) error {
	for itemID, item := range r.store.items {
		if item.RecordID == recordID {
			delete(r.store.items, itemID)
		}
	}

	for _, item := range items {
		item.ID = uuid.New()
		item.RecordID = recordID
		copied := *item
		copied.Part = nil
		r.store.items[item.ID] = &copied
		r.store.nextOrder(item.ID)
	}

	return nil
}

func (r *fakeMaintenanceRepo) Update(ctx context.Context, id, ownerID uuid.UUID, patch repository.MaintenanceRecordUpdate) (*entity.MaintenanceRecord, error) {
	record, ok := r.store.records[id]
	if !ok || record.OwnerID != ownerID {
		return nil, repository.ErrMaintenanceRecordNotFound
	}

	if patch.HappenedAt != nil {
		record.HappenedAt = *patch.HappenedAt
	}
	if patch.OdometerReading != nil {
		record.OdometerReading = patch.OdometerReading
	}
	if patch.Title != nil {
		record.Title = *patch.Title
	}
	if patch.Notes != nil {
		record.Notes = patch.Notes
	}
	record.UpdatedAt = time.Now()

	return r.FindByID(ctx, id, ownerID)
}

func (r *fakeMaintenanceRepo) Delete(_ context.Context, id, ownerID uuid.UUID) error {
	record, ok := r.store.records[id]
	if !ok || record.OwnerID != ownerID {
		return repository.ErrMaintenanceRecordNotFound
	}

	for itemID, item := range r.store.items {
		if item.RecordID == id {
			delete(r.store.items, itemID)
		}
	}
	delete(r.store.records, id)

	return nil
}

// pageSlice applies limit/offset the way the SQL layer would.
func pageSlice[T any](all []*T, limit, offset int) []*T {
	if offset >= len(all) {
		return []*T{}
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}

	return all
}
