package cms

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/localpress/localpress/internal/models"
)

type imageMetadata struct {
	URL      string `json:"url"`
	ImgixURL string `json:"imgix_url"`
}

func (m *imageMetadata) image() *models.Image {
	if m == nil || (m.URL == "" && m.ImgixURL == "") {
		return nil
	}
	img := &models.Image{URL: m.URL, ImgixURL: m.ImgixURL}
	if img.ImgixURL == "" {
		img.ImgixURL = img.URL
	}
	return img
}

type articleMetadata struct {
	Headline        string            `json:"headline"`
	Summary         string            `json:"summary"`
	Content         string            `json:"content"`
	SourceURL       string            `json:"source_url"`
	PublicationDate string            `json:"publication_date"`
	ZipCodeAreas    []json.RawMessage `json:"zip_code_areas"`
	NewsSource      json.RawMessage   `json:"news_source"`
	FeaturedImage   *imageMetadata    `json:"featured_image"`
	Category        json.RawMessage   `json:"category"`
}

type areaMetadata struct {
	ZipCode string `json:"zip_code"`
	City    string `json:"city"`
	State   string `json:"state"`
	County  string `json:"county"`
	Active  bool   `json:"active"`
}

type sourceMetadata struct {
	SourceName  string          `json:"source_name"`
	WebsiteURL  string          `json:"website_url"`
	Description string          `json:"description"`
	Logo        *imageMetadata  `json:"logo"`
	Type        json.RawMessage `json:"type"`
}

type tipMetadata struct {
	Amount       float64 `json:"amount"`
	TipperName   string  `json:"tipper_name"`
	Message      string  `json:"message"`
	Email        string  `json:"email"`
	TipDate      string  `json:"tip_date"`
	ShowPublicly bool    `json:"show_publicly"`
}

// selectValue is the {key, value} shape of select-dropdown fields. Plain
// strings are accepted as the key.
type selectValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func decodeMetadata(obj Object, v any) error {
	if isNull(obj.Metadata) {
		return nil
	}
	if err := json.Unmarshal(obj.Metadata, v); err != nil {
		return &ProviderError{Op: "decode", Err: fmt.Errorf("invalid metadata for %s %s: %w", obj.Type, obj.ID, err)}
	}
	return nil
}

// DecodeArticle maps a news-articles object onto models.Article. Relationship
// fields may hold expanded objects or bare ids. A missing or unknown category
// becomes the default.
func DecodeArticle(obj Object) (models.Article, error) {
	var meta articleMetadata
	if err := decodeMetadata(obj, &meta); err != nil {
		return models.Article{}, err
	}

	article := models.Article{
		ID:              obj.ID,
		Slug:            obj.Slug,
		Title:           obj.Title,
		Headline:        meta.Headline,
		Summary:         meta.Summary,
		Content:         meta.Content,
		SourceURL:       meta.SourceURL,
		PublicationDate: meta.PublicationDate,
		CoverageAreas:   make([]models.CoverageArea, 0, len(meta.ZipCodeAreas)),
		FeaturedImage:   meta.FeaturedImage.image(),
		Category:        decodeCategory(meta.Category),
		Origin:          models.OriginCMS,
		CreatedAt:       obj.CreatedAt,
	}

	for _, raw := range meta.ZipCodeAreas {
		area, ok, err := decodeRelation(raw, DecodeArea, func(id string) models.CoverageArea {
			return models.CoverageArea{ID: id}
		})
		if err != nil {
			return models.Article{}, err
		}
		if ok {
			article.CoverageAreas = append(article.CoverageAreas, area)
		}
	}

	src, ok, err := decodeRelation(meta.NewsSource, DecodeSource, func(id string) models.NewsSource {
		return models.NewsSource{ID: id}
	})
	if err != nil {
		return models.Article{}, err
	}
	if ok {
		article.NewsSource = &src
	}

	return article, nil
}

func DecodeArea(obj Object) (models.CoverageArea, error) {
	var meta areaMetadata
	if err := decodeMetadata(obj, &meta); err != nil {
		return models.CoverageArea{}, err
	}
	return models.CoverageArea{
		ID:      obj.ID,
		Slug:    obj.Slug,
		Title:   obj.Title,
		ZipCode: meta.ZipCode,
		City:    meta.City,
		State:   meta.State,
		County:  meta.County,
		Active:  meta.Active,
	}, nil
}

func DecodeSource(obj Object) (models.NewsSource, error) {
	var meta sourceMetadata
	if err := decodeMetadata(obj, &meta); err != nil {
		return models.NewsSource{}, err
	}

	name := meta.SourceName
	if name == "" {
		name = obj.Title
	}
	return models.NewsSource{
		ID:          obj.ID,
		Slug:        obj.Slug,
		Name:        name,
		WebsiteURL:  meta.WebsiteURL,
		Description: meta.Description,
		Logo:        meta.Logo.image(),
		Type:        decodeSelect(meta.Type).Key,
	}, nil
}

func DecodeTip(obj Object) (models.Tip, error) {
	var meta tipMetadata
	if err := decodeMetadata(obj, &meta); err != nil {
		return models.Tip{}, err
	}
	return models.Tip{
		ID:           obj.ID,
		Title:        obj.Title,
		Amount:       meta.Amount,
		TipperName:   meta.TipperName,
		Message:      meta.Message,
		Email:        meta.Email,
		TipDate:      meta.TipDate,
		ShowPublicly: meta.ShowPublicly,
		CreatedAt:    obj.CreatedAt,
	}, nil
}

// decodeRelation reads a relationship value that is either an expanded
// object or an id string. ok is false for null or empty values.
func decodeRelation[T any](raw json.RawMessage, decode func(Object) (T, error), fromID func(string) T) (T, bool, error) {
	var zero T
	raw = bytes.TrimSpace(raw)
	if isNull(raw) {
		return zero, false, nil
	}

	if raw[0] == '"' {
		var id string
		if err := json.Unmarshal(raw, &id); err != nil {
			return zero, false, &ProviderError{Op: "decode", Err: err}
		}
		if id == "" {
			return zero, false, nil
		}
		return fromID(id), true, nil
	}

	var obj Object
	if err := json.Unmarshal(raw, &obj); err != nil {
		return zero, false, &ProviderError{Op: "decode", Err: fmt.Errorf("invalid relationship: %w", err)}
	}
	v, err := decode(obj)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

func decodeSelect(raw json.RawMessage) selectValue {
	raw = bytes.TrimSpace(raw)
	if isNull(raw) {
		return selectValue{}
	}
	var sv selectValue
	if raw[0] == '"' {
		_ = json.Unmarshal(raw, &sv.Key)
		return sv
	}
	_ = json.Unmarshal(raw, &sv)
	return sv
}

func decodeCategory(raw json.RawMessage) models.CategoryRef {
	sv := decodeSelect(raw)
	return models.CategoryKey(strings.ToLower(strings.TrimSpace(sv.Key))).Ref()
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}
