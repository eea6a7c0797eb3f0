package model

import "fmt"

// Relation names one of the user→project membership sets kept by the ledger.
type Relation string

const (
	RelationLike     Relation = "likes"
	RelationBookmark Relation = "bookmarks"
	RelationFavorite Relation = "favorites"
)

// Relations lists every relation in a stable order.
var Relations = []Relation{RelationLike, RelationBookmark, RelationFavorite}

// Valid reports whether r is one of the known relations.
func (r Relation) Valid() bool {
	switch r {
	case RelationLike, RelationBookmark, RelationFavorite:
		return true
	}
	return false
}

// Table returns the join table that stores the relation.
// It panics on an unknown relation: table names are interpolated into SQL,
// so only the three constants above may ever reach a query.
func (r Relation) Table() string {
	switch r {
	case RelationLike:
		return "project_likes"
	case RelationBookmark:
		return "project_bookmarks"
	case RelationFavorite:
		return "project_favorites"
	}
	panic(fmt.Sprintf("model: unknown relation %q", string(r)))
}

// ToggleResult is the authoritative state after a toggle: whether the caller
// is now a member, and how many members the relation has.
type ToggleResult struct {
	Relation Relation `json:"relation"`
	Active   bool     `json:"active"`
	Count    int      `json:"count"`
}

// Blob is an uploaded media object held by the database media store.
type Blob struct {
	Key         string
	ContentType string
	Data        []byte
}
