package dto

import (
	"strings"

	"comicvault/internal/microservices/http-api/service"
)

// CreateIssueDTO used for POST /api/issues and POST /api/wishlist
type CreateIssueDTO struct {
	Name               string      `json:"name"`
	SeriesName         string      `json:"seriesName" binding:"required"`
	PublisherName      string      `json:"publisherName"`
	IssueNo            LooseString `json:"issueNo" binding:"required"`
	VariantDescription *string     `json:"variantDescription,omitempty"`
	CoverURL           *string     `json:"coverUrl,omitempty"`
	ReleaseDate        *string     `json:"releaseDate,omitempty"`
	UPC                *string     `json:"upc,omitempty"`
	LocgLink           *string     `json:"locgLink,omitempty"`
	Plot               *string     `json:"plot,omitempty"`

	// used only when the series does not exist yet
	TotalIssues    *int    `json:"totalIssues,omitempty"`
	SeriesLocgLink *string `json:"seriesLocgLink,omitempty"`
}

// UpdateIssueDTO used for PUT /api/issues/:id (partial updates allowed)
type UpdateIssueDTO struct {
	Name               *string      `json:"name,omitempty"`
	SeriesName         *string      `json:"seriesName,omitempty"`
	PublisherName      *string      `json:"publisherName,omitempty"`
	IssueNo            *LooseString `json:"issueNo,omitempty"`
	VariantDescription *string      `json:"variantDescription,omitempty"`
	CoverURL           *string      `json:"coverUrl,omitempty"`
	ReleaseDate        *string      `json:"releaseDate,omitempty"`
	UPC                *string      `json:"upc,omitempty"`
	LocgLink           *string      `json:"locgLink,omitempty"`
	Plot               *string      `json:"plot,omitempty"`
}

// Converters
func (d CreateIssueDTO) ToInput() (service.IssueInput, error) {
	no, err := service.ParseIssueNo(d.IssueNo.String())
	if err != nil {
		return service.IssueInput{}, err
	}
	in := service.IssueInput{
		Name:               strings.TrimSpace(d.Name),
		SeriesName:         d.SeriesName,
		PublisherName:      d.PublisherName,
		IssueNo:            no,
		VariantDescription: d.VariantDescription,
		CoverURL:           d.CoverURL,
		ReleaseDate:        d.ReleaseDate,
		UPC:                d.UPC,
		LocgLink:           d.LocgLink,
		Plot:               d.Plot,
	}
	if d.TotalIssues != nil {
		in.SeriesDefaults.TotalIssues = *d.TotalIssues
	}
	in.SeriesDefaults.LocgLink = d.SeriesLocgLink
	return in, nil
}

func (d UpdateIssueDTO) ToUpdate() (service.IssueUpdate, error) {
	u := service.IssueUpdate{
		Name:               d.Name,
		SeriesName:         d.SeriesName,
		PublisherName:      d.PublisherName,
		VariantDescription: d.VariantDescription,
		CoverURL:           d.CoverURL,
		ReleaseDate:        d.ReleaseDate,
		UPC:                d.UPC,
		LocgLink:           d.LocgLink,
		Plot:               d.Plot,
	}
	if d.IssueNo != nil {
		no, err := service.ParseIssueNo(d.IssueNo.String())
		if err != nil {
			return u, err
		}
		u.IssueNo = &no
	}
	return u, nil
}
