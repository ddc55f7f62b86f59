package models

import (
	"time"
)

// Waifu is a user-generated character. Created once by the generation flow,
// mutated only by the publish action and vote aggregation, never deleted.
type Waifu struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	ExternalID  string     `gorm:"uniqueIndex;not null" json:"external_id"`
	UserID      uint       `gorm:"index;not null" json:"user_id"`
	User        *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Name        string     `gorm:"not null" json:"name"`
	Personality string     `gorm:"not null" json:"personality"`
	Style       string     `gorm:"not null" json:"style"`
	HairColor   string     `gorm:"not null" json:"hair_color"`
	Biography   string     `json:"biography"`
	// Serialized prompt.Profile the character was generated from. Persisted so
	// later regenerations keep the same archetype.
	CharacterProfile string     `gorm:"type:text" json:"character_profile"`
	ImagePrompt      string     `gorm:"type:text" json:"image_prompt"`
	VideoPrompt      string     `gorm:"type:text" json:"video_prompt"`
	VideoURL         string     `json:"video_url"`
	IsPublished      bool       `gorm:"default:false;index" json:"is_published"`
	PublishedAt      *time.Time `json:"published_at,omitempty"`
	Likes            int        `gorm:"default:0" json:"likes"`
	Dislikes         int        `gorm:"default:0" json:"dislikes"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (Waifu) TableName() string {
	return "waifus"
}

// CreateWaifuRequest is the request structure for the generation flow
type CreateWaifuRequest struct {
	Name        string `json:"name" binding:"required"`
	Personality string `json:"personality" binding:"required"`
	Style       string `json:"style" binding:"required"`
	HairColor   string `json:"hair_color" binding:"required"`
	Biography   string `json:"biography"`
}
