package users

import "mime/multipart"

type UpdateProfilePayload struct {
	Name      *string `json:"name" validate:"omitempty,max=100" mod:"trim"`
	Location  *string `json:"location" validate:"omitempty,max=100" mod:"trim"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url" mod:"trim"`
}

type UploadAvatarPayload struct {
	FormFiles map[string]*multipart.FileHeader
}

// SyncPayload is only read when token verification is disabled; otherwise the
// identity comes from the bearer token.
type SyncPayload struct {
	ExternalUserID string  `json:"external_user_id" mod:"trim"`
	Email          string  `json:"email" validate:"omitempty,email" mod:"trim"`
	Name           *string `json:"name" validate:"omitempty,max=100" mod:"trim"`
	AvatarURL      *string `json:"avatar_url" validate:"omitempty,url" mod:"trim"`
}
