package dto

import "comicvault/internal/ingestion/locg"

type CredentialsDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CrawlRequest used for POST /api/series/:id/crawl. Credentials are optional.
type CrawlRequest struct {
	Credentials *CredentialsDTO `json:"credentials,omitempty"`
}

func (r CrawlRequest) ToCredentials() *locg.Credentials {
	if r.Credentials == nil || r.Credentials.Username == "" {
		return nil
	}
	return &locg.Credentials{Username: r.Credentials.Username, Password: r.Credentials.Password}
}
