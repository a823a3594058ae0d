package model

import (
	"time"
)

// ContactProfile 通讯录档案，按参与者标识对外暴露
type ContactProfile struct {
	ID        uint64 `gorm:"primaryKey"`
	ContactID string `gorm:"type:varchar(64);uniqueIndex:idx_contact_id"`
	Name      string `gorm:"type:varchar(100)"`
	Email     string `gorm:"type:varchar(255)"`
	Role      string `gorm:"type:varchar(30);default:''"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ContactProfile) TableName() string {
	return "contact_profiles"
}
