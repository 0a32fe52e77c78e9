package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type Product struct {
	ID                   int       `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Brand                string    `gorm:"not null"                       json:"brand"`
	Generic              string    `gorm:"not null"                       json:"generic"`
	Type                 string    `gorm:"not null;index"                 json:"type"`
	Manufacturer         string    `gorm:"not null"                       json:"manufacturer"`
	Price                float64   `gorm:"not null;check:price >= 0"      json:"price"`
	Image                string    `gorm:"not null"                       json:"image"`
	Description          string    `gorm:"not null"                       json:"description"`
	RequiresPrescription bool      `gorm:"not null;default:false"         json:"requiresPrescription"`
	Rating               float64   `gorm:"not null;default:0"             json:"rating"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null"     json:"username"`
	Email        string    `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Role         string    `gorm:"not null;default:user"    json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PublicUser is the profile returned to callers; it never carries the hash.
type PublicUser struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&User{}, &Product{})
}
