package domain

import (
	"time"
)

// User is the account record, keyed by email.
type User struct {
	ID                     int64     `json:"id,string" form:"id"`
	Email                  string    `gorm:"uniqueIndex;size:255" json:"email" form:"email"`
	Password               string    `gorm:"size:255" json:"-"`
	FirstName              string    `gorm:"size:100" json:"first_name" form:"first_name"`
	LastName               string    `gorm:"size:100" json:"last_name" form:"last_name"`
	Company                string    `gorm:"size:100" json:"company" form:"company"`
	Position               string    `gorm:"size:100" json:"position" form:"position"`
	EmailVerified          bool      `json:"email_verified"`
	EmailVerificationToken string    `gorm:"size:100" json:"-"`
	PasswordResetToken     string    `gorm:"size:100" json:"-"`
	IsStaff                bool      `json:"is_staff"`
	LastLogin              time.Time `json:"last_login"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// Contact is a delivery address and phone record owned by a user.
type Contact struct {
	ID        int64     `json:"id,string" form:"id"`
	UserID    int64     `gorm:"index" json:"user_id,string"`
	City      string    `gorm:"size:100" json:"city" form:"city"`
	Street    string    `gorm:"size:100" json:"street" form:"street"`
	House     string    `gorm:"size:10" json:"house" form:"house"`
	Structure string    `gorm:"size:10" json:"structure" form:"structure"`
	Building  string    `gorm:"size:10" json:"building" form:"building"`
	Apartment string    `gorm:"size:10" json:"apartment" form:"apartment"`
	Phone     string    `gorm:"size:20" json:"phone" form:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Contact) TableName() string {
	return "contacts"
}
