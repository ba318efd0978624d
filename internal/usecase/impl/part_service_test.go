package impl

import (
	"context"
	"testing"

	"garage/internal/domain/entity"
	domainerrors "garage/internal/domain/errors"
	"garage/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type partFixtures struct {
	store       *memoryStore
	partService usecase.PartUsecase
	tagService  usecase.TagUsecase
}

func newPartFixtures() partFixtures {
	store := newMemoryStore()
	tx := &fakeTxManager{store: store}

	return partFixtures{
		store:       store,
		partService: NewPartService(PartServiceParams{TxManager: tx, Logger: newDiscardLogger()}),
		tagService:  NewTagService(TagServiceParams{TxManager: tx, Logger: newDiscardLogger()}),
	}
}

func (f partFixtures) createTag(t *testing.T, owner uuid.UUID, name string) *entity.Tag {
	t.Helper()

	tag, err := f.tagService.CreateTag(context.Background(), owner, usecase.CreateTagInput{Name: name})
	require.NoError(t, err)

	return tag
}

func TestPartService_CreatePart_HydratesTagsSorted(t *testing.T) {
	f := newPartFixtures()
	owner := uuid.New()

	oil := f.createTag(t, owner, "Oil")
	brakes := f.createTag(t, owner, "Brakes")

	part, err := f.partService.CreatePart(context.Background(), owner, usecase.CreatePartInput{
		Name:   "5W30 Oil",
		TagIDs: []uuid.UUID{oil.ID, brakes.ID, oil.ID}, // duplicate collapses
	})
	require.NoError(t, err)

	require.Len(t, part.Tags, 2)
	assert.Equal(t, "Brakes", part.Tags[0].Name)
	assert.Equal(t, "Oil", part.Tags[1].Name)
}

func TestPartService_CreatePart_InvalidTagsAbortCreation(t *testing.T) {
	f := newPartFixtures()
	alice := uuid.New()
	bob := uuid.New()

	bobTag := f.createTag(t, bob, "Bob's Tag")

	// Unknown id.
	_, err := f.partService.CreatePart(context.Background(), alice, usecase.CreatePartInput{
		Name:   "Oil Filter",
		TagIDs: []uuid.UUID{uuid.New()},
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidTags)

	// Another owner's tag is just as invalid.
	_, err = f.partService.CreatePart(context.Background(), alice, usecase.CreatePartInput{
		Name:   "Oil Filter",
		TagIDs: []uuid.UUID{bobTag.ID},
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidTags)

	// No part row may survive the failed creations.
	assert.Empty(t, f.store.parts)
}

func TestPartService_CreatePart_Validation(t *testing.T) {
	f := newPartFixtures()
	owner := uuid.New()

	_, err := f.partService.CreatePart(context.Background(), owner, usecase.CreatePartInput{Name: "  "})
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)

	price := int64(-100)
	_, err = f.partService.CreatePart(context.Background(), owner, usecase.CreatePartInput{
		Name:       "Oil Filter",
		PriceCents: &price,
	})
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
}

func TestPartService_UpdatePart_TagReplacementSemantics(t *testing.T) {
	f := newPartFixtures()
	owner := uuid.New()

	oil := f.createTag(t, owner, "Oil")
	filters := f.createTag(t, owner, "Filters")

	part, err := f.partService.CreatePart(context.Background(), owner, usecase.CreatePartInput{
		Name:   "Oil Filter",
		TagIDs: []uuid.UUID{oil.ID},
	})
	require.NoError(t, err)

	// Nil TagIDs leaves the association untouched.
	name := "Premium Oil Filter"
	updated, err := f.partService.UpdatePart(context.Background(), owner, part.ID, usecase.UpdatePartInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Premium Oil Filter", updated.Name)
	require.Len(t, updated.Tags, 1)
	assert.Equal(t, "Oil", updated.Tags[0].Name)

	// A non-nil list replaces the whole set.
	newSet := []uuid.UUID{filters.ID}
	updated, err = f.partService.UpdatePart(context.Background(), owner, part.ID, usecase.UpdatePartInput{TagIDs: &newSet})
	require.NoError(t, err)
	require.Len(t, updated.Tags, 1)
	assert.Equal(t, "Filters", updated.Tags[0].Name)

	// An explicit empty list clears every association.
	empty := []uuid.UUID{}
	updated, err = f.partService.UpdatePart(context.Background(), owner, part.ID, usecase.UpdatePartInput{TagIDs: &empty})
	require.NoError(t, err)
	assert.Empty(t, updated.Tags)
}

func TestPartService_ListParts_SearchAndTagFilter(t *testing.T) {
	f := newPartFixtures()
	owner := uuid.New()

	brakes := f.createTag(t, owner, "Brakes")

	_, err := f.partService.CreatePart(context.Background(), owner, usecase.CreatePartInput{
		Name:   "Brake Pads",
		TagIDs: []uuid.UUID{brakes.ID},
	})
	require.NoError(t, err)

	desc := "front axle brake disc"
	_, err = f.partService.CreatePart(context.Background(), owner, usecase.CreatePartInput{
		Name:        "Disc Set",
		Description: &desc,
	})
	require.NoError(t, err)

	_, err = f.partService.CreatePart(context.Background(), owner, usecase.CreatePartInput{Name: "Wiper Blades"})
	require.NoError(t, err)

	// Search is case-insensitive and matches name or description.
	list, err := f.partService.ListParts(context.Background(), owner, usecase.ListPartsInput{Search: "BRAKE"})
	require.NoError(t, err)
	assert.Len(t, list.Parts, 2)
	assert.Equal(t, int64(2), list.PageInfo.TotalItems)

	// Tag filter keeps only associated parts.
	list, err = f.partService.ListParts(context.Background(), owner, usecase.ListPartsInput{TagIDs: []uuid.UUID{brakes.ID}})
	require.NoError(t, err)
	require.Len(t, list.Parts, 1)
	assert.Equal(t, "Brake Pads", list.Parts[0].Name)
}

func TestPartService_OwnershipIsolation(t *testing.T) {
	f := newPartFixtures()
	alice := uuid.New()
	bob := uuid.New()

	part, err := f.partService.CreatePart(context.Background(), alice, usecase.CreatePartInput{Name: "Oil Filter"})
	require.NoError(t, err)

	_, err = f.partService.GetPart(context.Background(), bob, part.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	name := "stolen"
	_, err = f.partService.UpdatePart(context.Background(), bob, part.ID, usecase.UpdatePartInput{Name: &name})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	err = f.partService.DeletePart(context.Background(), bob, part.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestPartService_DeletePart_InUseConflict(t *testing.T) {
	f := newPartFixtures()
	owner := uuid.New()

	part, err := f.partService.CreatePart(context.Background(), owner, usecase.CreatePartInput{Name: "Oil Filter"})
	require.NoError(t, err)

	// Reference the part from a maintenance item.
	itemID := uuid.New()
	f.store.items[itemID] = &entity.MaintenanceItem{ID: itemID, RecordID: uuid.New(), PartID: part.ID, Quantity: 1}

	err = f.partService.DeletePart(context.Background(), owner, part.ID)
	assert.ErrorIs(t, err, domainerrors.ErrConflict)

	// Once the reference is gone the delete succeeds.
	delete(f.store.items, itemID)
	assert.NoError(t, f.partService.DeletePart(context.Background(), owner, part.ID))
}
