package reviews

type CreateReviewPayload struct {
	BookID  string  `json:"book_id" validate:"required,uuid4"`
	UserID  string  `json:"user_id" validate:"required,uuid4"`
	Rating  int     `json:"rating" validate:"required,min=1,max=5"`
	Title   *string `json:"title" validate:"omitempty,max=200" mod:"trim"`
	Content string  `json:"content" validate:"required,max=10000" mod:"trim"`
}

type UpdateReviewPayload struct {
	ReviewID string  `json:"-" param:"id" validate:"uuid4"`
	Rating   *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Title    *string `json:"title" validate:"omitempty,max=200" mod:"trim"`
	Content  *string `json:"content" validate:"omitempty,min=1,max=10000" mod:"trim"`
}

type ReviewPath struct {
	ReviewID string `query:"-" json:"-" param:"id" validate:"uuid4"`
}
