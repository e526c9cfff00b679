package query

import (
	"context"

	"github.com/eaglebank/mcp-banking/shared/cqrs"
	"github.com/eaglebank/mcp-banking/shared/models"
)

type UserLister interface {
	List(ctx context.Context) ([]models.User, error)
}

type UserQueryService struct {
	users UserLister
}

func NewUserQueryService(users UserLister) *UserQueryService {
	return &UserQueryService{users: users}
}

// ListUsers returns every user. Access control happens in the router.
func (s *UserQueryService) ListUsers(ctx context.Context, _ cqrs.ListUsersQuery) ([]models.UserView, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]models.UserView, len(users))
	for i := range users {
		views[i] = *models.NewUserView(&users[i])
	}
	return views, nil
}
