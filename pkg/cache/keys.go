package cache

// Catalog cache keys.
const (
	KeyPopularBooks   = "books:popular"
	keyBookPrefix     = "books:id:"
	keyCategoryPrefix = "books:category:"
)

func KeyBook(id string) string {
	return keyBookPrefix + id
}

func KeyCategory(genre string) string {
	return keyCategoryPrefix + genre
}

// CategoryPrefix matches every category listing.
func CategoryPrefix() string {
	return keyCategoryPrefix
}
