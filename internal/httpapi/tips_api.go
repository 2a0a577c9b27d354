package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/localpress/localpress/internal/logging"
	"github.com/localpress/localpress/internal/models"
)

type newsletterRequest struct {
	Email   string `json:"email"`
	ZipCode string `json:"zipCode"`
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// handleListTips handles GET /api/tips
func (s *Server) handleListTips(w http.ResponseWriter, r *http.Request) {
	tips, err := s.tips.ListPublic(r.Context())
	if err != nil {
		s.writeInternalError(w, r, "Failed to list tips", err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"tips":  tips,
		"count": len(tips),
	})
}

// handleCreateTip handles POST /api/tips
func (s *Server) handleCreateTip(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)
	if s.tipLimiter != nil && !s.tipLimiter.Allow("tips:"+ip) {
		s.logger.Warn("Tip submission throttled", logging.WithField("ip", ip))
		s.writeError(w, http.StatusTooManyRequests, "rate_limited", "Please wait a moment before sending another tip")
		return
	}

	var req models.TipRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	tip, err := s.tips.Create(r.Context(), req)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			s.writeValidationError(w, verr)
			return
		}
		s.writeInternalError(w, r, "Failed to create tip", err)
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"tip":     tip,
		"message": "Thank you for supporting local journalism!",
	})
}

// handleNewsletter handles POST /api/newsletter. Nothing is stored.
func (s *Server) handleNewsletter(w http.ResponseWriter, r *http.Request) {
	var req newsletterRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	if !models.IsValidEmail(req.Email) {
		s.writeValidationError(w, &models.ValidationError{Field: "email", Message: "please enter a valid email address"})
		return
	}
	var zip string
	if strings.TrimSpace(req.ZipCode) != "" {
		zip = models.SanitizeZipCode(req.ZipCode)
		if !models.IsValidZipCode(zip) {
			s.writeValidationError(w, &models.ValidationError{Field: "zipCode", Message: "please enter a valid 5-digit zip code"})
			return
		}
	}

	s.logger.Info("Newsletter signup", logging.WithField("zip_code", zip))
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Thanks for subscribing!",
	})
}

// handleContact handles POST /api/contact. Nothing is stored.
func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	switch {
	case strings.TrimSpace(req.Name) == "":
		s.writeValidationError(w, &models.ValidationError{Field: "name", Message: "name is required"})
		return
	case !models.IsValidEmail(req.Email):
		s.writeValidationError(w, &models.ValidationError{Field: "email", Message: "please enter a valid email address"})
		return
	case strings.TrimSpace(req.Message) == "":
		s.writeValidationError(w, &models.ValidationError{Field: "message", Message: "message is required"})
		return
	}

	s.logger.Info("Contact form submitted", logging.WithField("subject", strings.TrimSpace(req.Subject)))
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Thanks for reaching out. We'll get back to you soon.",
	})
}
