package model

import "time"

// Project is a shared software project as stored in the projects table.
//
// AuthorID is set once at creation and never updated by any repository
// method. Tags keep the order the author gave them.
type Project struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	Tags         []string  `json:"tags"`
	LiveLink     string    `json:"liveLink"`
	RepoLink     string    `json:"repoLink"`
	PreviewImage string    `json:"previewImage"`
	AuthorID     string    `json:"authorId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CommentRef is the one-level expansion of a comment inside a project.
type CommentRef struct {
	ID          string      `json:"id"`
	CommentedBy UserSummary `json:"commentedBy"`
}

// ProjectDetail is a project with its relation sets expanded for display.
// The embedded Project fields are flattened into the same JSON object.
type ProjectDetail struct {
	Project
	Author    UserSummary   `json:"author"`
	Likes     []UserSummary `json:"likes"`
	Bookmarks []UserSummary `json:"bookmarks"`
	Favorites []UserSummary `json:"favorites"`
	Comments  []CommentRef  `json:"comments"`
}

// ProjectFilter narrows ListProjectDetails. Zero value means "all projects".
// At most one field is expected to be set.
type ProjectFilter struct {
	ID           string
	AuthorID     string
	BookmarkedBy string
	FavoritedBy  string
}
