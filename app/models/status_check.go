package models

import (
	"time"

	"github.com/google/uuid"
)

// StatusCheck is a diagnostic record clients write to confirm the API and
// its store are reachable.
type StatusCheck struct {
	ID         string    `bson:"id" json:"id"`
	ClientName string    `bson:"client_name" json:"client_name"`
	Timestamp  time.Time `bson:"timestamp" json:"timestamp"`
}

type StatusCheckCreateRequest struct {
	ClientName *string `json:"client_name" validate:"required"`
}

func NewStatusCheck(clientName string, now time.Time) *StatusCheck {
	return &StatusCheck{
		ID:         uuid.New().String(),
		ClientName: clientName,
		Timestamp:  now.UTC().Truncate(time.Millisecond),
	}
}
