package models

import (
	"strings"
	"time"
)

const (
	MinTipAmount = 1.0
	MaxTipAmount = 500.0
)

// Tip is a reader support record. No payment is processed for it.
type Tip struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Amount       float64   `json:"amount"`
	TipperName   string    `json:"tipperName"`
	Message      string    `json:"message,omitempty"`
	Email        string    `json:"-"`
	TipDate      string    `json:"tipDate"`
	ShowPublicly bool      `json:"showPublicly"`
	CreatedAt    time.Time `json:"createdAt"`
}

// TipRequest is the user-submitted payload for a new tip.
type TipRequest struct {
	Amount       float64 `json:"amount"`
	TipperName   string  `json:"tipperName"`
	Message      string  `json:"message"`
	Email        string  `json:"email"`
	ShowPublicly bool    `json:"showPublicly"`
}

// Normalize trims the free-text fields.
func (r *TipRequest) Normalize() {
	r.TipperName = strings.TrimSpace(r.TipperName)
	r.Message = strings.TrimSpace(r.Message)
	r.Email = strings.TrimSpace(r.Email)
}

func (r TipRequest) Validate() error {
	if r.Amount < MinTipAmount {
		return &ValidationError{Field: "amount", Message: "tip amount must be at least $1"}
	}
	if r.Amount > MaxTipAmount {
		return &ValidationError{Field: "amount", Message: "tip amount must be at most $500"}
	}
	if len(r.Message) > 500 {
		return &ValidationError{Field: "message", Message: "message must be at most 500 characters"}
	}
	if r.Email != "" && !IsValidEmail(r.Email) {
		return &ValidationError{Field: "email", Message: "please enter a valid email address"}
	}
	return nil
}
