package models

import "time"

type Series struct {
	ID             int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	Kind           Kind       `json:"kind" gorm:"type:varchar(16);not null;uniqueIndex:idx_series_kind_publisher_name,priority:1"`
	Name           string     `json:"name" gorm:"not null"`
	NameKey        string     `json:"-" gorm:"not null;uniqueIndex:idx_series_kind_publisher_name,priority:3"`
	PublisherID    int64      `json:"publisherId" gorm:"not null;uniqueIndex:idx_series_kind_publisher_name,priority:2"`
	TotalIssues    int        `json:"totalIssues" gorm:"not null;default:0"`
	LocgLink       *string    `json:"locgLink,omitempty"`
	LocgIssueCount *int       `json:"locgIssueCount,omitempty"`
	LastCrawledAt  *time.Time `json:"lastCrawledAt,omitempty"`
	RunLabel       *string    `json:"runLabel,omitempty"`
	StartDate      *string    `json:"startDate,omitempty"`
	EndDate        *string    `json:"endDate,omitempty"`
	CreatedAt      time.Time  `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt      time.Time  `json:"updatedAt" gorm:"autoUpdateTime"`

	// association
	Publisher *Publisher `json:"publisher,omitempty" gorm:"foreignKey:PublisherID;constraint:OnDelete:CASCADE;"`
}

func (Series) TableName() string {
	return "series"
}

// PublisherName returns the joined publisher name, or "" when not preloaded.
func (s Series) PublisherName() string {
	if s.Publisher == nil {
		return ""
	}
	return s.Publisher.Name
}
