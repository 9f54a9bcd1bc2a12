package user

import (
	"context"
	"errors"

	"github.com/Mermas-CC/Gestion-sigead-sub000/internal/middleware"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Lookup resolves users for the auth guard and the e-mail consumer.
type Lookup struct {
	repo Repository
}

func NewLookup(repo Repository) *Lookup {
	return &Lookup{repo: repo}
}

// LookupUser returns nil without error when the user does not exist.
func (l *Lookup) LookupUser(ctx context.Context, id string) (*middleware.AuthUser, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}

	u, err := l.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &middleware.AuthUser{
		ID:       u.ID.String(),
		Email:    u.Email,
		Name:     u.Name,
		Role:     u.Role,
		IsActive: u.IsActive,
	}, nil
}

// Contact returns the name and e-mail of a user.
func (l *Lookup) Contact(ctx context.Context, id string) (name, email string, err error) {
	u, err := l.repo.FindByID(ctx, id)
	if err != nil {
		return "", "", err
	}
	return u.Name, u.Email, nil
}
