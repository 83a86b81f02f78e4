package dto

import (
	"strconv"

	"comicvault/internal/microservices/http-api/service"
)

// CreatePublisherDTO used for POST /api/publishers
type CreatePublisherDTO struct {
	Name           string `json:"name" binding:"required"`
	CollectionType string `json:"collectionType,omitempty"`
}

// CreateSeriesDTO used for POST /api/series
type CreateSeriesDTO struct {
	Name           string  `json:"name" binding:"required"`
	PublisherName  string  `json:"publisherName,omitempty"`
	TotalIssues    *int    `json:"totalIssues,omitempty"`
	LocgLink       *string `json:"locgLink,omitempty"`
	StartDate      *string `json:"startDate,omitempty"`
	EndDate        *string `json:"endDate,omitempty"`
	CollectionType string  `json:"collectionType,omitempty"`
}

func (d CreateSeriesDTO) ToInput() service.SeriesInput {
	in := service.SeriesInput{
		Name:          d.Name,
		PublisherName: d.PublisherName,
		LocgLink:      d.LocgLink,
		StartDate:     d.StartDate,
		EndDate:       d.EndDate,
	}
	if d.TotalIssues != nil {
		in.TotalIssues = *d.TotalIssues
	}
	return in
}

// UpdateSeriesDTO used for PUT /api/series/:id
type UpdateSeriesDTO struct {
	Name          *string `json:"name,omitempty"`
	PublisherName *string `json:"publisherName,omitempty"`
	TotalIssues   *int    `json:"totalIssues,omitempty"`
	LocgLink      *string `json:"locgLink,omitempty"`
	StartDate     *string `json:"startDate,omitempty"`
	EndDate       *string `json:"endDate,omitempty"`
}

func (d UpdateSeriesDTO) ToUpdate() service.SeriesUpdate {
	return service.SeriesUpdate{
		Name:          d.Name,
		PublisherName: d.PublisherName,
		TotalIssues:   d.TotalIssues,
		LocgLink:      d.LocgLink,
		StartDate:     d.StartDate,
		EndDate:       d.EndDate,
	}
}

// SeriesRecordDTO is one series of a sync payload. Several key spellings are
// accepted, matching what the UI and spreadsheet exports send.
type SeriesRecordDTO struct {
	Name          string
	PublisherName string
	TotalIssues   string
	LocgLink      string
	StartDate     string
	EndDate       string
}

func (d *SeriesRecordDTO) UnmarshalJSON(data []byte) error {
	f, err := decodeFields(data)
	if err != nil {
		return err
	}
	*d = SeriesRecordDTO{
		Name:          f.pick("name", "title"),
		PublisherName: f.pick("publisherName", "publisher_name", "publisher"),
		TotalIssues:   f.pick("totalIssues", "total_issues"),
		LocgLink:      f.pick("locgLink", "locg_link"),
		StartDate:     f.pick("startDate", "start_date"),
		EndDate:       f.pick("endDate", "end_date"),
	}
	return nil
}

// ToRecord converts the DTO; an unparsable total is treated as absent.
func (d SeriesRecordDTO) ToRecord() service.SeriesRecord {
	rec := service.SeriesRecord{
		Name:          d.Name,
		PublisherName: d.PublisherName,
		LocgLink:      d.LocgLink,
		StartDate:     d.StartDate,
		EndDate:       d.EndDate,
	}
	if n, err := strconv.Atoi(d.TotalIssues); err == nil {
		rec.TotalIssues = &n
	}
	return rec
}

type SyncSeriesRequest struct {
	Series         []SeriesRecordDTO `json:"series" binding:"required"`
	CollectionType string            `json:"collectionType"`
}

// IssueRecordDTO is one issue of a sync payload.
type IssueRecordDTO struct {
	Name               string
	SeriesName         string
	PublisherName      string
	IssueNo            string
	VariantDescription string
	CoverURL           string
	ReleaseDate        string
	UPC                string
	LocgLink           string
	Plot               string
}

func (d *IssueRecordDTO) UnmarshalJSON(data []byte) error {
	f, err := decodeFields(data)
	if err != nil {
		return err
	}
	*d = IssueRecordDTO{
		Name:               f.pick("name", "title"),
		SeriesName:         f.pick("seriesName", "series_name", "series"),
		PublisherName:      f.pick("publisherName", "publisher_name", "publisher"),
		IssueNo:            f.pick("issueNo", "issue_no", "issueNumber", "issue"),
		VariantDescription: f.pick("variantDescription", "variant_description", "variant"),
		CoverURL:           f.pick("coverUrl", "cover_url", "coverURL"),
		ReleaseDate:        f.pick("releaseDate", "release_date"),
		UPC:                f.pick("upc", "UPC"),
		LocgLink:           f.pick("locgLink", "locg_link"),
		Plot:               f.pick("plot", "description"),
	}
	return nil
}

func (d IssueRecordDTO) ToRecord() service.IssueRecord {
	return service.IssueRecord{
		Name:               d.Name,
		SeriesName:         d.SeriesName,
		PublisherName:      d.PublisherName,
		IssueNo:            d.IssueNo,
		VariantDescription: d.VariantDescription,
		CoverURL:           d.CoverURL,
		ReleaseDate:        d.ReleaseDate,
		UPC:                d.UPC,
		LocgLink:           d.LocgLink,
		Plot:               d.Plot,
	}
}

type SyncIssuesRequest struct {
	Issues         []IssueRecordDTO `json:"issues" binding:"required"`
	CollectionType string           `json:"collectionType"`
}
