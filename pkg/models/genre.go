package models

// Genres a book can be tagged with.
const (
	GenreFiction           = "Fiction"
	GenreNonFiction        = "Non-fiction"
	GenreFantasy           = "Fantasy"
	GenreMystery           = "Mystery"
	GenreRomance           = "Romance"
	GenreScienceFiction    = "Science Fiction"
	GenreThriller          = "Thriller"
	GenreBiography         = "Biography"
	GenreSelfHelp          = "Self-Help"
	GenreHistory           = "History"
	GenreHistorical        = "Historical"
	GenreTravel            = "Travel"
	GenreCooking           = "Cooking"
	GenreArt               = "Art"
	GenreMusic             = "Music"
	GenreScience           = "Science"
	GenreTechnology        = "Technology"
	GenreHorror            = "Horror"
	GenreWestern           = "Western"
	GenreCrime             = "Crime"
	GenreDrama             = "Drama"
	GenreAdventure         = "Adventure"
	GenreComedy            = "Comedy"
	GenreDocumentary       = "Documentary"
	GenreYoungAdult        = "Young Adult"
	GenrePoetry            = "Poetry"
	GenreHistoricalFiction = "Historical Fiction"
)

var AllGenres = []string{
	GenreFiction, GenreNonFiction, GenreFantasy, GenreMystery, GenreRomance,
	GenreScienceFiction, GenreThriller, GenreBiography, GenreSelfHelp,
	GenreHistory, GenreHistorical, GenreTravel, GenreCooking, GenreArt,
	GenreMusic, GenreScience, GenreTechnology, GenreHorror, GenreWestern,
	GenreCrime, GenreDrama, GenreAdventure, GenreComedy, GenreDocumentary,
	GenreYoungAdult, GenrePoetry, GenreHistoricalFiction,
}

var genreSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(AllGenres))
	for _, g := range AllGenres {
		m[g] = struct{}{}
	}
	return m
}()

func IsValidGenre(g string) bool {
	_, ok := genreSet[g]
	return ok
}
