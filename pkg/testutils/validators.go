package testutils

type CreateUserPayload struct {
	ExternalUserID string  `json:"external_user_id" validate:"required,max=200" mod:"trim"`
	Email          string  `json:"email" validate:"required,email" mod:"trim"`
	Name           *string `json:"name" validate:"omitempty,max=100" mod:"trim"`
}

type CreateTokenPayload struct {
	ExternalUserID string `json:"external_user_id" validate:"required,max=200" mod:"trim"`
	Email          string `json:"email" validate:"omitempty,email" mod:"trim"`
	Name           string `json:"name" validate:"max=100" mod:"trim"`
}

type CreateBookPayload struct {
	Title         string   `json:"title" validate:"required,max=500" mod:"trim"`
	Author        string   `json:"author" validate:"required,max=200" mod:"trim"`
	ISBN10        *string  `json:"isbn10" validate:"omitempty,max=20" mod:"trim"`
	ISBN13        *string  `json:"isbn13" validate:"omitempty,max=20" mod:"trim"`
	Description   *string  `json:"description" mod:"trim"`
	CoverImageURL *string  `json:"cover_image_url" validate:"omitempty,url" mod:"trim"`
	Publisher     *string  `json:"publisher" mod:"trim"`
	PageCount     *int     `json:"page_count" validate:"omitempty,min=1"`
	Published     *string  `json:"publication_date" validate:"omitempty,date" mod:"trim"`
	Genres        []string `json:"genres" validate:"max=10,dive,genre"`
}

type CreateSellerPayload struct {
	Name         string  `json:"name" validate:"required,max=200" mod:"trim"`
	Type         string  `json:"type" validate:"required,oneof=Library Seller"`
	Location     string  `json:"location" validate:"required" mod:"trim"`
	LocationLink string  `json:"location_link" validate:"required,url" mod:"trim"`
	WebsiteURL   *string `json:"website_url" validate:"omitempty,url" mod:"trim"`
	PhoneNumber  *string `json:"phone_number" mod:"trim"`
	Telegram     *string `json:"telegram" mod:"trim"`
}

type CreateListingPayload struct {
	BookID          string  `json:"book_id" validate:"required"`
	SellerID        string  `json:"seller_id" validate:"required"`
	Price           float64 `json:"price" validate:"min=0"`
	Currency        string  `json:"currency" validate:"omitempty,len=3" mod:"trim,ucase"`
	Available       *bool   `json:"available"`
	TransactionType string  `json:"transaction_type" validate:"required,oneof=Free Borrow Buy"`
	ProductLink     string  `json:"product_link" validate:"omitempty,url" mod:"trim"`
}
