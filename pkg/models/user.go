package models

import (
	"time"

	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID         string    `bun:",pk" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	ExternalID string    `bun:",nullzero" json:"external_id"`
	Email      string    `bun:",nullzero" json:"email"`
	Name       *string   `json:"name"`
	AvatarURL  *string   `json:"avatar_url"`
	Location   *string   `json:"location"`
}

// PublicProfile is the subset of a user shown next to their reviews and
// shelf entries.
type PublicProfile struct {
	ID         string  `bun:"id" json:"id"`
	ExternalID string  `bun:"external_id" json:"external_id"`
	Email      string  `bun:"email" json:"email"`
	Name       *string `bun:"name" json:"name"`
	AvatarURL  *string `bun:"avatar_url" json:"avatar_url"`
}

func (u *User) PublicProfile() *PublicProfile {
	return &PublicProfile{
		ID:         u.ID,
		ExternalID: u.ExternalID,
		Email:      u.Email,
		Name:       u.Name,
		AvatarURL:  u.AvatarURL,
	}
}
