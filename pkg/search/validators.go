package search

type SearchQuery struct {
	Query string `query:"q" json:"q" validate:"max=200"`
	Limit int    `query:"limit" json:"limit,omitempty" default:"5" validate:"min=1,max=50"`
}
