package query

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/eaglebank/mcp-banking/shared/cqrs"
	"github.com/eaglebank/mcp-banking/shared/models"
)

type stubUsers []models.User

func (s stubUsers) List(context.Context) ([]models.User, error) { return s, nil }

func TestListUsersHidesPasswordHash(t *testing.T) {
	svc := NewUserQueryService(stubUsers{
		{ID: 1, Username: "john_doe", PasswordHash: "$2a$secret", IsActive: true},
		{ID: 2, Username: "jane_smith", PasswordHash: "$2a$secret", IsActive: true},
	})

	views, err := svc.ListUsers(context.Background(), cqrs.ListUsersQuery{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 2 || views[1].Username != "jane_smith" {
		t.Fatalf("unexpected views: %+v", views)
	}
	out, _ := json.Marshal(views)
	if strings.Contains(string(out), "secret") {
		t.Errorf("password hash leaked: %s", out)
	}
}
