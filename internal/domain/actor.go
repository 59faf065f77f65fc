package domain

import (
	"context"
	"strings"
)

type Actor struct {
	ID        int
	FirstName string
	LastName  string
}

func (a Actor) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

type ActorRepository interface {
	GetAll(ctx context.Context) ([]Actor, error)
	GetById(ctx context.Context, id int) (*Actor, error)
	Create(ctx context.Context, actor *Actor) error
	Update(ctx context.Context, actor *Actor) error
	Delete(ctx context.Context, id int) error
}
