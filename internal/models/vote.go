package models

import (
	"time"
)

// Vote kinds
const (
	VoteLike    = "like"
	VoteDislike = "dislike"
)

// Vote links one user to one waifu. The composite unique index is the
// authoritative guard against double voting; rows are never mutated or deleted.
type Vote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_votes_user_waifu" json:"user_id"`
	WaifuID   uint      `gorm:"not null;uniqueIndex:idx_votes_user_waifu" json:"waifu_id"`
	VoteType  string    `gorm:"not null" json:"vote_type"`
	CreatedAt time.Time `json:"created_at"`
}

func (Vote) TableName() string {
	return "votes"
}

// ValidVoteType reports whether s is a recognized vote kind.
func ValidVoteType(s string) bool {
	return s == VoteLike || s == VoteDislike
}

// CastVoteRequest is the request structure for casting a vote
type CastVoteRequest struct {
	WaifuID  uint   `json:"waifu_id" binding:"required"`
	VoteType string `json:"vote_type" binding:"required"`
}

// VoteStatus reports whether a user has voted on a waifu, and how.
type VoteStatus struct {
	HasVoted bool   `json:"has_voted"`
	VoteType string `json:"vote_type,omitempty"`
}
