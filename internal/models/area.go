package models

import "fmt"

// CoverageArea is a serviceable zip code region maintained in the CMS.
type CoverageArea struct {
	ID      string `json:"id"`
	Slug    string `json:"slug,omitempty"`
	Title   string `json:"title,omitempty"`
	ZipCode string `json:"zipCode"`
	City    string `json:"city"`
	State   string `json:"state"`
	County  string `json:"county,omitempty"`
	Active  bool   `json:"active"`
}

// LocationName renders "City, ST", or the zip code when the city is unknown.
func (a CoverageArea) LocationName() string {
	if a.City == "" {
		return a.ZipCode
	}
	if a.State == "" {
		return a.City
	}
	return fmt.Sprintf("%s, %s", a.City, a.State)
}

// NewsSource is an attribution record for an article.
type NewsSource struct {
	ID          string `json:"id,omitempty"`
	Slug        string `json:"slug,omitempty"`
	Name        string `json:"name"`
	WebsiteURL  string `json:"websiteUrl,omitempty"`
	Description string `json:"description,omitempty"`
	Logo        *Image `json:"logo,omitempty"`
	Type        string `json:"type,omitempty"`
}
