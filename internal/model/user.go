package model

import "time"

// User is a read model over the account store owned by the auth
// service. Only the public profile fields used to enrich transaction
// responses live here; credentials never do.
type User struct {
	ID          string    `gorm:"primaryKey;size:36"`
	Username    string    `gorm:"size:64;uniqueIndex:uk_users_username;not null"`
	DisplayName string    `gorm:"size:120"`
	Whatsapp    string    `gorm:"size:32"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
