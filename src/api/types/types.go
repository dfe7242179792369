package types

import "time"

// Polls
type Poll struct {
	ID              uint64    `gorm:"primaryKey" json:"id"`
	Image           string    `gorm:"size:512;not null" json:"image"`
	Title           string    `gorm:"size:255;not null" json:"title"`
	Description     string    `gorm:"type:text;not null" json:"description"`
	VoteCount       uint64    `gorm:"default:0" json:"voteCount"`
	ContestantCount uint64    `gorm:"default:0" json:"contestantCount"`
	Deleted         bool      `gorm:"default:false" json:"deleted"`
	Director        string    `gorm:"size:128;index;not null" json:"director"`
	StartsAt        int64     `gorm:"not null" json:"startsAt"`
	EndsAt          int64     `gorm:"not null" json:"endsAt"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"-"`
}

// Contestants, numbered per poll
type Contestant struct {
	PollID    uint64    `gorm:"primaryKey;autoIncrement:false" json:"pollId"`
	ID        uint64    `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Image     string    `gorm:"size:512" json:"image"`
	Votes     uint64    `gorm:"default:0" json:"votes"`
	Account   string    `gorm:"size:128;index;not null" json:"account"`
	CreatedAt time.Time `json:"createdAt"`
}

// One row per address that voted in a poll
type PollVote struct {
	PollID    uint64 `gorm:"primaryKey;autoIncrement:false"`
	Address   string `gorm:"primaryKey;size:128"`
	CreatedAt time.Time
}

// One row per address that registered a contestant in a poll
type PollEntry struct {
	PollID    uint64 `gorm:"primaryKey;autoIncrement:false"`
	Address   string `gorm:"primaryKey;size:128"`
	CreatedAt time.Time
}

// Enrolled voters (biometric extension)
type Voter struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	Address     string    `gorm:"size:128;unique;not null" json:"address"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Fingerprint string    `gorm:"size:128;unique;not null" json:"fingerprint"`
	CreatedAt   time.Time `json:"createdAt"`
}
