package model

import "time"

// Comment is a piece of text attached to a project by a user.
// AuthorID and ProjectID are immutable; comments are never edited.
type Comment struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	AuthorID  string    `json:"authorId"`
	ProjectID string    `json:"projectId"`
	CreatedAt time.Time `json:"createdAt"`
}

// CommentDetail is a comment with its author expanded.
type CommentDetail struct {
	Comment
	CommentedBy UserSummary `json:"commentedBy"`
}
