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
	"garage/internal/util"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// tagService implements the TagUsecase interface. Slugs are derived from the
// display name here; callers never supply them.
type tagService struct {
	txManager repository.TransactionManager
	logger    *slog.Logger
}

// TagServiceParams holds dependencies for tagService, injected by Fx.
type TagServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	Logger    *slog.Logger
}

// NewTagService is the constructor for tagService.
func NewTagService(params TagServiceParams) usecase.TagUsecase {
	return &tagService{
		txManager: params.TxManager,
		logger:    params.Logger,
	}
}

func (srv *tagService) log(ctx context.Context) *slog.Logger {
	return logctx.LoggerOrDefault(ctx, srv.logger)
}

// tagNameAndSlug trims and slugifies a display name. A name with no letters
// or digits produces an empty slug, which is rejected.
func tagNameAndSlug(name string) (string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", domainerrors.ErrValidationFailed.WrapMessage("tag name is required")
	}

	slug := util.Slugify(name)
	if slug == "" {
		return "", "", domainerrors.ErrValidationFailed.WrapMessage("tag name must contain letters or digits")
	}

	return name, slug, nil
}

// CreateTag validates the name, derives the slug and persists the tag.
func (srv *tagService) CreateTag(ctx context.Context, ownerID uuid.UUID, input usecase.CreateTagInput) (*entity.Tag, error) {
	name, slug, err := tagNameAndSlug(input.Name)
	if err != nil {
		return nil, err
	}

	tag := &entity.Tag{
		OwnerID: ownerID,
		Name:    name,
		Slug:    slug,
		Color:   input.Color,
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		err := repoFactory.TagRepo().Create(ctx, tag)
		if errors.Is(err, repository.ErrTagAlreadyExists) {
			return domainerrors.ErrConflict.WrapMessage("a tag with this name already exists")
		}

		return err
	})
	if err != nil {
		srv.log(ctx).Warn("Failed to create tag", slog.Any("ownerID", ownerID), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Debug("Tag created", slog.Any("ownerID", ownerID), slog.Any("tagID", tag.ID))

	return tag, nil
}

// GetTag returns a single tag of the owner.
func (srv *tagService) GetTag(ctx context.Context, ownerID, tagID uuid.UUID) (*entity.Tag, error) {
	var tag *entity.Tag

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.TagRepo().FindByID(ctx, tagID, ownerID)
		if errors.Is(err, repository.ErrTagNotFound) {
			return domainerrors.ErrNotFound
		}
		if err != nil {
			return errors.Wrap(err, "failed to load tag")
		}

		tag = found

		return nil
	})
	if err != nil {
		return nil, err
	}

	return tag, nil
}

// ListTags returns one page of the owner's tags, ordered by name.
func (srv *tagService) ListTags(ctx context.Context, ownerID uuid.UUID, page usecase.PageRequest) (*usecase.TagListOutput, error) {
	page = page.Normalize()

	var out *usecase.TagListOutput
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		tagRepo := repoFactory.TagRepo()

		total, err := tagRepo.CountByOwner(ctx, ownerID)
		if err != nil {
			return errors.Wrap(err, "failed to count tags")
		}

		tags, err := tagRepo.ListByOwner(ctx, ownerID, page.PageSize, page.Offset())
		if err != nil {
			return errors.Wrap(err, "failed to list tags")
		}

		out = &usecase.TagListOutput{
			Tags:     tags,
			PageInfo: usecase.NewPageInfo(page, total),
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// UpdateTag applies a partial update. Renaming re-derives the slug so the two
// never drift apart.
func (srv *tagService) UpdateTag(ctx context.Context, ownerID, tagID uuid.UUID, input usecase.UpdateTagInput) (*entity.Tag, error) {
	patch := repository.TagUpdate{Color: input.Color}

	if input.Name != nil {
		name, slug, err := tagNameAndSlug(*input.Name)
		if err != nil {
			return nil, err
		}
		patch.Name = &name
		patch.Slug = &slug
	}

	var tag *entity.Tag
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		updated, err := repoFactory.TagRepo().Update(ctx, tagID, ownerID, patch)
		if errors.Is(err, repository.ErrTagNotFound) {
			return domainerrors.ErrNotFound
		}
		if errors.Is(err, repository.ErrTagAlreadyExists) {
			return domainerrors.ErrConflict.WrapMessage("a tag with this name already exists")
		}
		if err != nil {
			return errors.Wrap(err, "failed to update tag")
		}

		tag = updated

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Failed to update tag", slog.Any("tagID", tagID), slog.Any("error", err))

		return nil, err
	}

	return tag, nil
}

// DeleteTag removes the tag. Part associations cascade away; the parts stay.
func (srv *tagService) DeleteTag(ctx context.Context, ownerID, tagID uuid.UUID) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		err := repoFactory.TagRepo().Delete(ctx, tagID, ownerID)
		if errors.Is(err, repository.ErrTagNotFound) {
			return domainerrors.ErrNotFound
		}

		return err
	})
	if err != nil {
		return err
	}

	srv.log(ctx).Info("Tag deleted", slog.Any("ownerID", ownerID), slog.Any("tagID", tagID))

	return nil
}
