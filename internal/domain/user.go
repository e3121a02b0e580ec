package domain

import "time"

const RoleAdmin = "admin"

type User struct {
	ID        string    `json:"id" gorm:"primaryKey;size:64"`
	Email     string    `json:"email" gorm:"size:255;uniqueIndex"`
	Role      string    `json:"role" gorm:"size:16;default:'customer'"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
}
