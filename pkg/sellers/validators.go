package sellers

type SellerPath struct {
	SellerID string `query:"-" json:"-" param:"id" validate:"uuid4"`
}
