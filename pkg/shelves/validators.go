package shelves

type SetBookShelvesPayload struct {
	BookID         string   `json:"-" param:"bookId" validate:"uuid4"`
	ExternalUserID string   `json:"external_user_id" mod:"trim"`
	ShelfIDs       []string `json:"shelf_ids" validate:"required,max=100,dive,uuid4"`
}

type CreateShelfPayload struct {
	ExternalUserID string `json:"external_user_id" mod:"trim"`
	Name           string `json:"name" validate:"required,max=100" mod:"trim"`
}

type RenameShelfPayload struct {
	ShelfID        string `json:"-" param:"id" validate:"uuid4"`
	ExternalUserID string `json:"external_user_id" mod:"trim"`
	Name           string `json:"name" validate:"required,max=100" mod:"trim"`
}

type UserQuery struct {
	ExternalUserID string `query:"external_user_id" json:"external_user_id,omitempty"`
}

type ShelfQuery struct {
	ShelfID        string `query:"-" json:"-" param:"id" validate:"uuid4"`
	ExternalUserID string `query:"external_user_id" json:"external_user_id,omitempty"`
}

type BookShelvesQuery struct {
	BookID         string `query:"-" json:"-" param:"bookId" validate:"uuid4"`
	ExternalUserID string `query:"external_user_id" json:"external_user_id,omitempty"`
}

type LibraryQuery struct {
	ExternalUserID string  `query:"external_user_id" json:"external_user_id,omitempty"`
	ShelfID        *string `query:"shelf_id" json:"shelf_id,omitempty" validate:"omitempty,uuid4"`
}
