package domain

import "time"

// Member roles, ordered from most to least privileged.
const (
	RoleAdmin  = "admin"  // can create rooms and manage members anywhere
	RoleOwner  = "owner"  // can read/write and manage members of the room
	RoleMember = "member" // can read/write, but cannot manage members
	RoleGuest  = "guest"  // can read, but cannot write
)

// Room is a chat room document. IsVisible governs whether non-admin users see
// the room in listings; ownership is expressed through the member list.
type Room struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:120;uniqueIndex;not null" json:"name"`
	IsVisible bool      `json:"is_visible"`
	IsOpen    bool      `json:"is_open"`
	Members   []Member  `json:"members"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Member binds a user profile to a role within one room.
type Member struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	RoomID uint   `gorm:"index;not null" json:"-"`
	UserID uint   `gorm:"index;not null" json:"user_id"`
	Role   string `gorm:"size:10;not null" json:"role"`
}

// OwnedBy reports whether the given user holds the owner role in the room's
// member list. Members must be loaded.
func (r *Room) OwnedBy(userID uint) bool {
	for _, m := range r.Members {
		if m.UserID == userID && m.Role == RoleOwner {
			return true
		}
	}
	return false
}
