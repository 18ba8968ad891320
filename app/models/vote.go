package models

type VoteDirection string

const (
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
)

// ParseVoteDirection matches s exactly against up and down.
func ParseVoteDirection(s string) (VoteDirection, bool) {
	switch VoteDirection(s) {
	case VoteUp, VoteDown:
		return VoteDirection(s), true
	default:
		return "", false
	}
}

// ScoreDelta is the change applied to accuracy_score. Down-votes have no
// floor, so the score may go negative.
func (d VoteDirection) ScoreDelta() int {
	if d == VoteUp {
		return 1
	}
	return -1
}

// VoteRequest is the JSON body of POST /api/reports/:id/vote.
type VoteRequest struct {
	VoteType *string `json:"vote_type" validate:"required"`
}

type VoteResult struct {
	Message       string `json:"message"`
	AccuracyScore int    `json:"accuracy_score"`
	TotalVotes    int    `json:"total_votes"`
}

const VoteRecordedMessage = "Vote recorded"
