package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	MaxCommentLength = 200
	DefaultAuthor    = "Anonymous"
)

type Comment struct {
	ID        string    `bson:"id" json:"id"`
	ReportID  string    `bson:"report_id" json:"report_id"`
	Text      string    `bson:"text" json:"text"`
	Author    string    `bson:"author" json:"author"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// CommentCreateRequest is the JSON body of POST /api/reports/:id/comments.
type CommentCreateRequest struct {
	Text   *string `json:"text" validate:"required,max=200"`
	Author *string `json:"author"`
}

type CommentInput struct {
	Text   string
	Author string
}

func NewComment(reportID string, in CommentInput, now time.Time) *Comment {
	return &Comment{
		ID:        uuid.New().String(),
		ReportID:  reportID,
		Text:      in.Text,
		Author:    in.Author,
		CreatedAt: now.UTC().Truncate(time.Millisecond),
	}
}
