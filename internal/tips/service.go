// Package tips records reader tips. No payment is taken; a tip is a CMS
// object the site can thank readers with.
package tips

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/localpress/localpress/internal/cms"
	"github.com/localpress/localpress/internal/logging"
	"github.com/localpress/localpress/internal/models"
)

const (
	anonymousName = "Anonymous"
	publicLimit   = 10
)

// EmailSealer protects tipper email addresses in stored metadata.
type EmailSealer interface {
	Seal(value string) (string, error)
	Open(value string) (string, error)
}

type Service struct {
	cms    cms.Provider
	sealer EmailSealer
	logger *logging.Logger
	now    func() time.Time
}

func NewService(provider cms.Provider, logger *logging.Logger) *Service {
	return &Service{
		cms:    provider,
		logger: logger,
		now:    time.Now,
	}
}

// WithEmailSealer makes the service seal email addresses before storing them.
func (s *Service) WithEmailSealer(sealer EmailSealer) *Service {
	s.sealer = sealer
	return s
}

// Create validates req and stores it as a tip object. Invalid input is
// reported as a *models.ValidationError.
func (s *Service) Create(ctx context.Context, req models.TipRequest) (*models.Tip, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	name := req.TipperName
	title := "Tip from " + name
	if name == "" {
		name = anonymousName
		title = "Anonymous Tip"
	}
	today := s.now().UTC().Format(models.DateLayout)

	storedEmail := req.Email
	if s.sealer != nil {
		sealed, err := s.sealer.Seal(req.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to seal tip email: %w", err)
		}
		storedEmail = sealed
	}

	obj, err := s.cms.InsertOne(ctx, cms.NewObject{
		Type:  cms.TypeTips,
		Title: title,
		Metadata: map[string]any{
			"amount":        req.Amount,
			"tipper_name":   name,
			"message":       req.Message,
			"email":         storedEmail,
			"tip_date":      today,
			"show_publicly": req.ShowPublicly,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tip: %w", err)
	}

	s.logger.Info("Tip recorded", logging.WithFields(map[string]interface{}{
		"tip_id": obj.ID,
		"amount": req.Amount,
		"public": req.ShowPublicly,
	}))

	return &models.Tip{
		ID:           obj.ID,
		Title:        title,
		Amount:       req.Amount,
		TipperName:   name,
		Message:      req.Message,
		Email:        req.Email,
		TipDate:      today,
		ShowPublicly: req.ShowPublicly,
		CreatedAt:    obj.CreatedAt,
	}, nil
}

// ListPublic returns up to 10 tips their senders agreed to show.
func (s *Service) ListPublic(ctx context.Context) ([]models.Tip, error) {
	objs, err := s.cms.Find(ctx, cms.Query{
		Type:   cms.TypeTips,
		Filter: map[string]any{"metadata.show_publicly": true},
		Props:  cms.DefaultProps,
		Limit:  publicLimit,
	})
	if errors.Is(err, cms.ErrNotFound) {
		return []models.Tip{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tips: %w", err)
	}

	out := make([]models.Tip, 0, len(objs))
	for _, obj := range objs {
		tip, err := cms.DecodeTip(obj)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch tips: %w", err)
		}
		tip.Email = s.openEmail(tip)
		out = append(out, tip)
	}
	return out, nil
}

// openEmail returns the readable address for tip. A value sealed under a
// different secret is dropped rather than failing the listing.
func (s *Service) openEmail(tip models.Tip) string {
	if s.sealer == nil || tip.Email == "" {
		return tip.Email
	}
	email, err := s.sealer.Open(tip.Email)
	if err != nil {
		s.logger.Warn("Could not open tip email", logging.WithFields(map[string]interface{}{
			"tip_id": tip.ID,
			"error":  err.Error(),
		}))
		return ""
	}
	return email
}
