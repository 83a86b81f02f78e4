package models

import "time"

type Publisher struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Kind      Kind      `json:"kind" gorm:"type:varchar(16);not null;uniqueIndex:idx_publishers_kind_name,priority:1"`
	Name      string    `json:"name" gorm:"not null"`
	NameKey   string    `json:"-" gorm:"not null;uniqueIndex:idx_publishers_kind_name,priority:2"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

func (Publisher) TableName() string {
	return "publishers"
}
