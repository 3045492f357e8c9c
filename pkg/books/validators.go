package books

type BookPath struct {
	BookID string `query:"-" json:"-" param:"id" validate:"uuid4"`
}
