package users

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/kitobxon/kitobxon/pkg/blobstore"
	"github.com/kitobxon/kitobxon/pkg/database"
	"github.com/kitobxon/kitobxon/pkg/errcodes"
	"github.com/kitobxon/kitobxon/pkg/models"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
)

// MaxAvatarSize is the largest avatar upload accepted, in bytes.
const MaxAvatarSize = 2 << 20

type Service struct {
	db    *bun.DB
	store blobstore.Store
}

// NewService returns a user service. store may be nil, in which case avatar
// uploads are rejected.
func NewService(db *bun.DB, store blobstore.Store) *Service {
	return &Service{db, store}
}

type RetrieveUserOptions struct {
	ID         *string
	ExternalID *string
}

func (svc *Service) RetrieveUser(ctx context.Context, opts RetrieveUserOptions) (*models.User, error) {
	user := &models.User{}

	q := svc.db.
		NewSelect().
		Model(user)

	if opts.ID != nil {
		q = q.Where("u.id = ?", *opts.ID)
	}
	if opts.ExternalID != nil {
		q = q.Where("u.external_id = ?", *opts.ExternalID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("User")
		}
		return nil, errors.WithStack(err)
	}

	return user, nil
}

// ResolveID returns the id of the user with the given external id. Callers
// act on behalf of that user, so an unknown id is an authentication failure
// rather than a missing resource.
func ResolveID(ctx context.Context, db bun.IDB, externalID string) (string, error) {
	if strings.TrimSpace(externalID) == "" {
		return "", errcodes.NotAuthenticated("No user identity supplied.")
	}

	var id string
	err := db.
		NewSelect().
		Model((*models.User)(nil)).
		Column("u.id").
		Where("u.external_id = ?", externalID).
		Scan(ctx, &id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", errcodes.NotAuthenticated("User not found.")
		}
		return "", errors.WithStack(err)
	}
	return id, nil
}

type SyncUserOptions struct {
	ExternalID string
	Email      string
	Name       *string
	AvatarURL  *string
}

// SyncUser creates the user for an external identity on first login. On later
// logins the email is refreshed and the name and avatar are only filled in
// when the user has not set them.
func (svc *Service) SyncUser(ctx context.Context, opts SyncUserOptions) (*models.User, error) {
	if opts.ExternalID == "" {
		return nil, errcodes.NotAuthenticated("No user identity supplied.")
	}
	if opts.Email == "" {
		return nil, errcodes.ValidationError("Email is required.")
	}

	user := &models.User{}
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().
			Model(user).
			Where("u.external_id = ?", opts.ExternalID).
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			now := time.Now()
			*user = models.User{
				ID:         uuid.New().String(),
				CreatedAt:  now,
				UpdatedAt:  now,
				ExternalID: opts.ExternalID,
				Email:      opts.Email,
				Name:       nonEmpty(opts.Name),
				AvatarURL:  nonEmpty(opts.AvatarURL),
			}
			_, err = tx.NewInsert().Model(user).Exec(ctx)
			if database.IsUniqueViolation(err) {
				return errcodes.Conflict("Email is already used by another account.")
			}
			if err != nil {
				return errors.WithStack(err)
			}
			logger.FromContext(ctx).Info("created user", logger.Data{"user_id": user.ID})
			return nil
		}
		if err != nil {
			return errors.WithStack(err)
		}

		columns := []string{}
		if user.Email != opts.Email {
			user.Email = opts.Email
			columns = append(columns, "email")
		}
		if user.Name == nil && nonEmpty(opts.Name) != nil {
			user.Name = nonEmpty(opts.Name)
			columns = append(columns, "name")
		}
		if user.AvatarURL == nil && nonEmpty(opts.AvatarURL) != nil {
			user.AvatarURL = nonEmpty(opts.AvatarURL)
			columns = append(columns, "avatar_url")
		}
		if len(columns) == 0 {
			return nil
		}
		user.UpdatedAt = time.Now()
		columns = append(columns, "updated_at")
		_, err = tx.NewUpdate().
			Model(user).
			Column(columns...).
			WherePK().
			Exec(ctx)
		if database.IsUniqueViolation(err) {
			return errcodes.Conflict("Email is already used by another account.")
		}
		return errors.WithStack(err)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateProfileOptions holds profile changes. A nil field is left alone and
// an empty string clears the field.
type UpdateProfileOptions struct {
	Name      *string
	Location  *string
	AvatarURL *string
}

func (svc *Service) UpdateProfile(ctx context.Context, externalID string, opts UpdateProfileOptions) (*models.User, error) {
	user, err := svc.RetrieveUser(ctx, RetrieveUserOptions{ExternalID: &externalID})
	if err != nil {
		return nil, err
	}

	columns := []string{}
	if opts.Name != nil {
		user.Name = nonEmpty(opts.Name)
		columns = append(columns, "name")
	}
	if opts.Location != nil {
		user.Location = nonEmpty(opts.Location)
		columns = append(columns, "location")
	}
	if opts.AvatarURL != nil {
		user.AvatarURL = nonEmpty(opts.AvatarURL)
		columns = append(columns, "avatar_url")
	}
	if len(columns) == 0 {
		return user, nil
	}

	user.UpdatedAt = time.Now()
	columns = append(columns, "updated_at")
	_, err = svc.db.NewUpdate().
		Model(user).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return user, nil
}

// UploadAvatar stores an image as the user's avatar and saves its public URL
// on the profile.
func (svc *Service) UploadAvatar(ctx context.Context, externalID string, r io.Reader, size int64) (*models.User, error) {
	if svc.store == nil {
		return nil, errcodes.ServiceUnavailable("Avatar uploads are not configured.")
	}
	if size > MaxAvatarSize {
		return nil, errcodes.PayloadTooLarge("Avatar must be 2 MiB or smaller.")
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxAvatarSize+1))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if len(data) > MaxAvatarSize {
		return nil, errcodes.PayloadTooLarge("Avatar must be 2 MiB or smaller.")
	}
	if len(data) == 0 {
		return nil, errcodes.ValidationError("Avatar file is empty.")
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, errcodes.UnsupportedMediaType()
	}

	user, err := svc.RetrieveUser(ctx, RetrieveUserOptions{ExternalID: &externalID})
	if err != nil {
		return nil, err
	}

	key := avatarKey(externalID, mt.Extension())
	if err := svc.store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), mt.String()); err != nil {
		return nil, errors.Wrap(err, "store avatar")
	}

	avatarURL := svc.store.PublicURL(key)
	user.AvatarURL = &avatarURL
	user.UpdatedAt = time.Now()
	_, err = svc.db.NewUpdate().
		Model(user).
		Column("avatar_url", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	logger.FromContext(ctx).Info("uploaded avatar", logger.Data{"user_id": user.ID, "key": key, "bytes": len(data)})
	return user, nil
}

func avatarKey(externalID, ext string) string {
	return "avatars/" + externalID + ext
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
