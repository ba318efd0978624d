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

// partService implements the PartUsecase interface. Tag associations are
// verified and replaced in the same transaction as the part write so a part
// can never end up pointing at another user's tags.
type partService struct {
	txManager repository.TransactionManager
	logger    *slog.Logger
}

// PartServiceParams holds dependencies for partService, injected by Fx.
type PartServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	Logger    *slog.Logger
}

// NewPartService is the constructor for partService.
func NewPartService(params PartServiceParams) usecase.PartUsecase {
	return &partService{
		txManager: params.TxManager,
		logger:    params.Logger,
	}
}

func (srv *partService) log(ctx context.Context) *slog.Logger {
	return logctx.LoggerOrDefault(ctx, srv.logger)
}

// dedupeIDs drops duplicate ids while keeping first-appearance order.
func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	return out
}

// verifyOwnedTags checks that every id resolves to a tag of the owner.
func verifyOwnedTags(ctx context.Context, tagRepo repository.TagRepository, ownerID uuid.UUID, tagIDs []uuid.UUID) error {
	if len(tagIDs) == 0 {
		return nil
	}

	tags, err := tagRepo.FindByIDs(ctx, ownerID, tagIDs)
	if err != nil {
		return errors.Wrap(err, "failed to resolve tag ids")
	}
	if len(tags) != len(tagIDs) {
		return domainerrors.ErrInvalidTags
	}

	return nil
}

func validatePartInput(name string, priceCents *int64) error {
	if strings.TrimSpace(name) == "" {
		return domainerrors.ErrValidationFailed.WrapMessage("part name is required")
	}
	if priceCents != nil && *priceCents < 0 {
		return domainerrors.ErrValidationFailed.WrapMessage("price must not be negative")
	}

	return nil
}

// CreatePart persists a new part and its tag associations atomically.
func (srv *partService) CreatePart(ctx context.Context, ownerID uuid.UUID, input usecase.CreatePartInput) (*entity.Part, error) {
	if err := validatePartInput(input.Name, input.PriceCents); err != nil {
		return nil, err
	}

	tagIDs := dedupeIDs(input.TagIDs)

	var part *entity.Part
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		partRepo := repoFactory.PartRepo()

		if err := verifyOwnedTags(ctx, repoFactory.TagRepo(), ownerID, tagIDs); err != nil {
			return err
		}

		newPart := &entity.Part{
			OwnerID:     ownerID,
			Name:        strings.TrimSpace(input.Name),
			Description: input.Description,
			PriceCents:  input.PriceCents,
			Currency:    input.Currency,
			URL:         input.URL,
		}
		if err := partRepo.Create(ctx, newPart); err != nil {
			return errors.Wrap(err, "failed to create part")
		}

		if len(tagIDs) > 0 {
			if err := partRepo.ReplaceTags(ctx, newPart.ID, tagIDs); err != nil {
				return errors.Wrap(err, "failed to attach tags")
			}
		}

		hydrated, err := partRepo.FindByID(ctx, newPart.ID, ownerID)
		if err != nil {
			return errors.Wrap(err, "failed to reload created part")
		}

		part = hydrated

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Failed to create part", slog.Any("ownerID", ownerID), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Debug("Part created", slog.Any("ownerID", ownerID), slog.Any("partID", part.ID))

	return part, nil
}

// GetPart returns a single part of the owner, tags hydrated.
func (srv *partService) GetPart(ctx context.Context, ownerID, partID uuid.UUID) (*entity.Part, error) {
	var part *entity.Part

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.PartRepo().FindByID(ctx, partID, ownerID)
		if errors.Is(err, repository.ErrPartNotFound) {
			return domainerrors.ErrNotFound
		}
		if err != nil {
			return errors.Wrap(err, "failed to load part")
		}

		part = found

		return nil
	})
	if err != nil {
		return nil, err
	}

	return part, nil
}

// ListParts returns one page of the owner's parts matching the filter.
func (srv *partService) ListParts(ctx context.Context, ownerID uuid.UUID, input usecase.ListPartsInput) (*usecase.PartListOutput, error) {
	page := input.Page.Normalize()
	filter := repository.PartFilter{
		Search: strings.TrimSpace(input.Search),
		TagIDs: dedupeIDs(input.TagIDs),
	}

	var out *usecase.PartListOutput
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		partRepo := repoFactory.PartRepo()

		total, err := partRepo.CountByOwner(ctx, ownerID, filter)
		if err != nil {
			return errors.Wrap(err, "failed to count parts")
		}

		parts, err := partRepo.ListByOwner(ctx, ownerID, filter, page.PageSize, page.Offset())
		if err != nil {
			return errors.Wrap(err, "failed to list parts")
		}

		out = &usecase.PartListOutput{
			Parts:    parts,
			PageInfo: usecase.NewPageInfo(page, total),
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// UpdatePart applies a partial update. A non-nil TagIDs replaces the whole
// association set; an empty one clears it.
func (srv *partService) UpdatePart(ctx context.Context, ownerID, partID uuid.UUID, input usecase.UpdatePartInput) (*entity.Part, error) {
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("part name must not be empty")
	}
	if input.PriceCents != nil && *input.PriceCents < 0 {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("price must not be negative")
	}

	patch := repository.PartUpdate{
		Name:        input.Name,
		Description: input.Description,
		PriceCents:  input.PriceCents,
		Currency:    input.Currency,
		URL:         input.URL,
	}

	var part *entity.Part
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		partRepo := repoFactory.PartRepo()

		// The part must exist for the owner before any association write.
		if _, err := partRepo.FindByID(ctx, partID, ownerID); err != nil {
			if errors.Is(err, repository.ErrPartNotFound) {
				return domainerrors.ErrNotFound
			}

			return errors.Wrap(err, "failed to load part")
		}

		if input.TagIDs != nil {
			tagIDs := dedupeIDs(*input.TagIDs)
			if err := verifyOwnedTags(ctx, repoFactory.TagRepo(), ownerID, tagIDs); err != nil {
				return err
			}
			if err := partRepo.ReplaceTags(ctx, partID, tagIDs); err != nil {
				return errors.Wrap(err, "failed to replace tags")
			}
		}

		updated, err := partRepo.Update(ctx, partID, ownerID, patch)
		if errors.Is(err, repository.ErrPartNotFound) {
			return domainerrors.ErrNotFound
		}
		if err != nil {
			return errors.Wrap(err, "failed to update part")
		}

		part = updated

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Failed to update part", slog.Any("partID", partID), slog.Any("error", err))

		return nil, err
	}

	return part, nil
}

// DeletePart removes the part. Parts referenced by maintenance history are
// protected and surface as a conflict.
func (srv *partService) DeletePart(ctx context.Context, ownerID, partID uuid.UUID) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		err := repoFactory.PartRepo().Delete(ctx, partID, ownerID)
		if errors.Is(err, repository.ErrPartNotFound) {
			return domainerrors.ErrNotFound
		}
		if errors.Is(err, repository.ErrPartInUse) {
			return domainerrors.ErrConflict.WrapMessage("part is referenced by maintenance records")
		}

		return err
	})
	if err != nil {
		return err
	}

	srv.log(ctx).Info("Part deleted", slog.Any("ownerID", ownerID), slog.Any("partID", partID))

	return nil
}
