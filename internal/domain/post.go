package domain

import "time"

// Category classifies a post. The set is fixed; unknown values are rejected
// at the service boundary.
type Category string

const (
	CategoryAdventure         Category = "Adventure"
	CategoryFiction           Category = "Fiction"
	CategoryHorror            Category = "Horror"
	CategoryMystery           Category = "Mystery"
	CategoryParanormal        Category = "Paranormal"
	CategoryScienceFiction    Category = "Science Fiction"
	CategoryThriller          Category = "Thriller"
	CategoryFantasy           Category = "Fantasy"
	CategoryHumor             Category = "Humor"
	CategoryRomance           Category = "Romance"
	CategoryHistoricalFiction Category = "Historical Fiction"
	CategoryUncategorized     Category = "Uncategorized"
)

var categories = map[Category]struct{}{
	CategoryAdventure:         {},
	CategoryFiction:           {},
	CategoryHorror:            {},
	CategoryMystery:           {},
	CategoryParanormal:        {},
	CategoryScienceFiction:    {},
	CategoryThriller:          {},
	CategoryFantasy:           {},
	CategoryHumor:             {},
	CategoryRomance:           {},
	CategoryHistoricalFiction: {},
	CategoryUncategorized:     {},
}

// ValidCategory reports whether c belongs to the fixed category set.
func ValidCategory(c Category) bool {
	_, ok := categories[c]
	return ok
}

// Post is the domain model for blog posts.
type Post struct {
	ID          string
	Title       string
	Category    Category
	Description string
	Summary     string
	Thumbnail   string
	CreatorID   string
	Rating      int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
