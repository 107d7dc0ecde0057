package checkout

import (
	"context"
	"errors"
)

// ErrOutsideProvider is returned when a Manager is requested from a context
// that was not prepared by a Provider.
var ErrOutsideProvider = errors.New("checkout manager used outside provider")

type managerKey struct{}

func NewContext(ctx context.Context, m *Manager) context.Context {
	return context.WithValue(ctx, managerKey{}, m)
}

func FromContext(ctx context.Context) (*Manager, error) {
	m, ok := ctx.Value(managerKey{}).(*Manager)
	if !ok || m == nil {
		return nil, ErrOutsideProvider
	}
	return m, nil
}

// MustFromContext panics with ErrOutsideProvider when ctx carries no Manager.
func MustFromContext(ctx context.Context) *Manager {
	m, err := FromContext(ctx)
	if err != nil {
		panic(err)
	}
	return m
}
