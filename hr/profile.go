package hr

import (
	"context"
	"fmt"

	"github.com/habedi/hrgo/client"
	"github.com/habedi/hrgo/pkg/dates"
)

// Profile fetches the signed-in employee's profile.
func (s *Service) Profile(ctx context.Context) (*Profile, error) {
	data, err := client.Get[Profile](ctx, s.client, "/profile", nil)
	return single(data, err, "profile")
}

// UpdateProfile applies upd and returns the stored profile. When the server
// acknowledges without echoing the profile, it is fetched again.
func (s *Service) UpdateProfile(ctx context.Context, upd ProfileUpdate) (*Profile, error) {
	if upd.Empty() {
		return nil, fmt.Errorf("profile update has no changes")
	}
	if upd.BirthDate != nil {
		if _, err := dates.ParseISO(*upd.BirthDate); err != nil {
			return nil, fmt.Errorf("invalid birth date: %w", err)
		}
	}
	data, err := client.Put[Profile](ctx, s.client, "/profile", upd)
	if err != nil {
		return nil, err
	}
	if p, ok := data.Get(); ok {
		return &p, nil
	}
	return s.Profile(ctx)
}
