package domain

import "time"

// Token is a durable, named API credential. Unlike sessions, tokens never
// expire and are removed only by explicit user action. Name carries no
// uniqueness constraint; Value does.
type Token struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Name      string    `gorm:"size:120;not null" json:"name"`
	Value     string    `gorm:"size:64;uniqueIndex;not null" json:"value"`
	CreatedAt time.Time `json:"created_at"`
}
