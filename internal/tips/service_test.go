package tips

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/localpress/localpress/internal/cms"
	"github.com/localpress/localpress/internal/crypto"
	"github.com/localpress/localpress/internal/models"
	"github.com/localpress/localpress/internal/testutil"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	s := NewService(testutil.NewSQLiteStore(t), testutil.NullLogger())
	s.now = func() time.Time { return time.Date(2024, 7, 4, 15, 30, 0, 0, time.UTC) }
	return s
}

func TestService_Create(t *testing.T) {
	tests := []struct {
		name      string
		req       models.TipRequest
		wantTitle string
		wantName  string
	}{
		{
			name:      "named tipper",
			req:       models.TipRequest{Amount: 10, TipperName: "  Dana  ", Message: " Keep it up "},
			wantTitle: "Tip from Dana",
			wantName:  "Dana",
		},
		{
			name:      "anonymous tipper",
			req:       models.TipRequest{Amount: 3},
			wantTitle: "Anonymous Tip",
			wantName:  "Anonymous",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestService(t)

			tip, err := s.Create(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			if tip.ID == "" {
				t.Error("Create() returned tip without id")
			}
			if tip.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", tip.Title, tt.wantTitle)
			}
			if tip.TipperName != tt.wantName {
				t.Errorf("TipperName = %q, want %q", tip.TipperName, tt.wantName)
			}
			if tip.TipDate != "2024-07-04" {
				t.Errorf("TipDate = %q, want 2024-07-04", tip.TipDate)
			}
		})
	}
}

func TestService_Create_StoresMetadata(t *testing.T) {
	store := testutil.NewSQLiteStore(t)
	s := NewService(store, testutil.NullLogger())

	tip, err := s.Create(context.Background(), models.TipRequest{
		Amount: 25, TipperName: "Lee", Message: "Thanks", Email: "lee@example.com", ShowPublicly: true,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	obj, err := store.FindOne(context.Background(), cms.Query{
		Type:   cms.TypeTips,
		Filter: map[string]any{"id": tip.ID},
	})
	if err != nil {
		t.Fatalf("FindOne() error = %v", err)
	}
	stored, err := cms.DecodeTip(*obj)
	if err != nil {
		t.Fatalf("DecodeTip() error = %v", err)
	}
	if stored.Amount != 25 || stored.Email != "lee@example.com" || !stored.ShowPublicly || stored.Message != "Thanks" {
		t.Errorf("stored tip = %+v", stored)
	}
}

func TestService_Create_Invalid(t *testing.T) {
	s := newTestService(t)

	tests := []struct {
		name  string
		req   models.TipRequest
		field string
	}{
		{name: "zero amount", req: models.TipRequest{Amount: 0}, field: "amount"},
		{name: "over limit", req: models.TipRequest{Amount: 500.01}, field: "amount"},
		{name: "bad email", req: models.TipRequest{Amount: 5, Email: "not-an-email"}, field: "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Create(context.Background(), tt.req)
			var verr *models.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Create() error = %v, want *models.ValidationError", err)
			}
			if verr.Field != tt.field {
				t.Errorf("Field = %q, want %q", verr.Field, tt.field)
			}
		})
	}
}

func TestService_ListPublic(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	if got, err := s.ListPublic(ctx); err != nil || len(got) != 0 {
		t.Fatalf("ListPublic() on empty store = %v, %v", got, err)
	}

	for _, req := range []models.TipRequest{
		{Amount: 5, TipperName: "Public One", ShowPublicly: true},
		{Amount: 10, TipperName: "Private"},
		{Amount: 50, TipperName: "Public Two", ShowPublicly: true},
	} {
		if _, err := s.Create(ctx, req); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	got, err := s.ListPublic(ctx)
	if err != nil {
		t.Fatalf("ListPublic() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListPublic() returned %d tips, want 2", len(got))
	}
	for _, tip := range got {
		if !tip.ShowPublicly {
			t.Errorf("ListPublic() returned private tip %+v", tip)
		}
	}
}

func TestService_Create_SealsEmail(t *testing.T) {
	store := testutil.NewSQLiteStore(t)
	sealer, err := crypto.NewSealer("tips-secret")
	if err != nil {
		t.Fatalf("NewSealer() error = %v", err)
	}
	s := NewService(store, testutil.NullLogger()).WithEmailSealer(sealer)
	ctx := context.Background()

	tip, err := s.Create(ctx, models.TipRequest{Amount: 5, Email: "kai@example.com", ShowPublicly: true})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if tip.Email != "kai@example.com" {
		t.Errorf("returned Email = %q, want plaintext", tip.Email)
	}

	obj, err := store.FindOne(ctx, cms.Query{Type: cms.TypeTips, Filter: map[string]any{"id": tip.ID}})
	if err != nil {
		t.Fatalf("FindOne() error = %v", err)
	}
	stored, err := cms.DecodeTip(*obj)
	if err != nil {
		t.Fatalf("DecodeTip() error = %v", err)
	}
	if !crypto.IsSealed(stored.Email) {
		t.Errorf("stored email = %q, want sealed value", stored.Email)
	}

	listed, err := s.ListPublic(ctx)
	if err != nil {
		t.Fatalf("ListPublic() error = %v", err)
	}
	if len(listed) != 1 || listed[0].Email != "kai@example.com" {
		t.Errorf("ListPublic() = %+v, want opened email", listed)
	}

	rotated, _ := crypto.NewSealer("rotated-secret")
	s.WithEmailSealer(rotated)
	listed, err = s.ListPublic(ctx)
	if err != nil {
		t.Fatalf("ListPublic() with rotated secret error = %v", err)
	}
	if len(listed) != 1 || listed[0].Email != "" {
		t.Errorf("ListPublic() with rotated secret = %+v, want email dropped", listed)
	}
}
