package users

import (
	"net/http"

	"github.com/kitobxon/kitobxon/pkg/auth"
	"github.com/kitobxon/kitobxon/pkg/errcodes"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	userService *Service
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()

	externalID := c.Param("externalId")
	user, err := h.userService.RetrieveUser(ctx, RetrieveUserOptions{ExternalID: &externalID})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, user))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()

	externalID, err := auth.ResolveExternalUserID(c, c.Param("externalId"))
	if err != nil {
		return errors.WithStack(err)
	}

	params := UpdateProfilePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.userService.UpdateProfile(ctx, externalID, UpdateProfileOptions(params))
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, user))
}

func (h *handler) uploadAvatar(c echo.Context) error {
	ctx := c.Request().Context()

	externalID, err := auth.ResolveExternalUserID(c, c.Param("externalId"))
	if err != nil {
		return errors.WithStack(err)
	}

	params := UploadAvatarPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}
	fh, ok := params.FormFiles["file"]
	if !ok {
		return errcodes.ValidationError("file is required")
	}
	if fh.Size > MaxAvatarSize {
		return errcodes.PayloadTooLarge("Avatar must be 2 MiB or smaller.")
	}

	file, err := fh.Open()
	if err != nil {
		return errors.WithStack(err)
	}
	defer file.Close()

	user, err := h.userService.UploadAvatar(ctx, externalID, file, fh.Size)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, user))
}

func (h *handler) sync(c echo.Context) error {
	ctx := c.Request().Context()

	opts := SyncUserOptions{}
	if claims, ok := auth.SessionClaims(c); ok {
		opts.ExternalID = claims.Subject
		opts.Email = claims.Email
		if name := claims.UserMetadata.DisplayName(); name != "" {
			opts.Name = &name
		}
		if claims.UserMetadata.AvatarURL != "" {
			avatarURL := claims.UserMetadata.AvatarURL
			opts.AvatarURL = &avatarURL
		}
	} else {
		params := SyncPayload{}
		if err := c.Bind(&params); err != nil {
			return errors.WithStack(err)
		}
		externalID, err := auth.ResolveExternalUserID(c, params.ExternalUserID)
		if err != nil {
			return errors.WithStack(err)
		}
		opts = SyncUserOptions{
			ExternalID: externalID,
			Email:      params.Email,
			Name:       params.Name,
			AvatarURL:  params.AvatarURL,
		}
	}

	user, err := h.userService.SyncUser(ctx, opts)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, user))
}
