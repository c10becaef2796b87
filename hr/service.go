// Package hr wraps the HR self-service endpoints on top of the authenticated client.
package hr

import (
	"context"
	"errors"
	"fmt"

	"github.com/habedi/hrgo/client"
	"golang.org/x/sync/errgroup"
)

// ErrNotFound is returned when a single-resource endpoint answers without data.
var ErrNotFound = errors.New("resource not found")

// Service exposes the HR endpoints.
type Service struct {
	client *client.Client
}

func NewService(c *client.Client) *Service {
	return &Service{client: c}
}

// Client returns the underlying client.
func (s *Service) Client() *client.Client { return s.client }

// Overview loads the profile, leave balance and permissions concurrently.
// The first failure cancels the other calls.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	var ov Overview
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.Profile(ctx)
		ov.Profile = p
		return err
	})
	g.Go(func() error {
		b, err := s.LeaveBalance(ctx)
		ov.Balance = b
		return err
	})
	g.Go(func() error {
		perms, err := s.Permissions(ctx)
		ov.Permissions = perms
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &ov, nil
}

// single unwraps a single-resource response, mapping absent data to ErrNotFound.
func single[T any](data client.Optional[T], err error, what string) (*T, error) {
	if err != nil {
		if client.IsNotFound(err) {
			return nil, fmt.Errorf("%s: %w", what, ErrNotFound)
		}
		return nil, err
	}
	v, ok := data.Get()
	if !ok {
		return nil, fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return &v, nil
}

// list unwraps a collection response; absent data is an empty, non-nil slice.
func list[T any](data client.Optional[[]T], err error) ([]T, error) {
	if err != nil {
		return nil, err
	}
	items := data.OrElse(nil)
	if items == nil {
		items = []T{}
	}
	return items, nil
}
