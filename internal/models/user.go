package models

import (
	"time"
)

// User represents a wallet-identified user. A row is created the first time a
// wallet connects; it is never deleted by the system.
type User struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	WalletAddress     string     `gorm:"uniqueIndex;not null" json:"wallet_address"`
	Username          string     `json:"username"`
	LastWaifuCreation *time.Time `json:"last_waifu_creation,omitempty"`
	LastVote          *time.Time `json:"last_vote,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// ConnectRequest is the request structure for wallet connection
type ConnectRequest struct {
	WalletAddress string `json:"wallet_address" binding:"required"`
	Username      string `json:"username"`
}

// UserResponse is the response structure for user data
type UserResponse struct {
	ID            uint       `json:"id"`
	WalletAddress string     `json:"wallet_address"`
	Username      string     `json:"username"`
	LastCreation  *time.Time `json:"last_waifu_creation,omitempty"`
	LastVote      *time.Time `json:"last_vote,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ToResponse converts a User model to a UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:            u.ID,
		WalletAddress: u.WalletAddress,
		Username:      u.Username,
		LastCreation:  u.LastWaifuCreation,
		LastVote:      u.LastVote,
		CreatedAt:     u.CreatedAt,
	}
}
