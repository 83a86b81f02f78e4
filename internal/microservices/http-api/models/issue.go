package models

import "time"

// Issue is a comic issue. Rows of KindWishlist are wishlist items.
// PublisherID duplicates Series.PublisherID and is always written together with SeriesID.
type Issue struct {
	ID                 int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Kind               Kind      `json:"kind" gorm:"type:varchar(16);not null;uniqueIndex:idx_issues_identity,priority:1"`
	Name               string    `json:"name" gorm:"not null"`
	SeriesID           int64     `json:"seriesId" gorm:"not null;index;uniqueIndex:idx_issues_identity,priority:2"`
	IssueNo            float64   `json:"issueNo" gorm:"not null;uniqueIndex:idx_issues_identity,priority:3"`
	PublisherID        int64     `json:"publisherId" gorm:"not null;index"`
	VariantDescription *string   `json:"variantDescription,omitempty"`
	VariantKey         string    `json:"-" gorm:"not null;default:'';uniqueIndex:idx_issues_identity,priority:4"`
	CoverURL           *string   `json:"coverUrl,omitempty"`
	ReleaseDate        *string   `json:"releaseDate,omitempty"`
	UPC                *string   `json:"upc,omitempty" gorm:"column:upc"`
	LocgLink           *string   `json:"locgLink,omitempty"`
	Plot               *string   `json:"plot,omitempty"`
	CreatedAt          time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt          time.Time `json:"updatedAt" gorm:"autoUpdateTime"`

	// associations
	Series    *Series    `json:"series,omitempty" gorm:"foreignKey:SeriesID;constraint:OnDelete:CASCADE;"`
	Publisher *Publisher `json:"publisher,omitempty" gorm:"foreignKey:PublisherID;constraint:OnDelete:CASCADE;"`
}

func (Issue) TableName() string {
	return "issues"
}

func (i Issue) SeriesName() string {
	if i.Series == nil {
		return ""
	}
	return i.Series.Name
}

func (i Issue) PublisherName() string {
	if i.Publisher == nil {
		return ""
	}
	return i.Publisher.Name
}

// All returns every model managed by migrations, in dependency order.
func All() []any {
	return []any{&Publisher{}, &Series{}, &Issue{}}
}
