package auth

import (
	"context"

	"github.com/habedi/hrgo/client"
	"github.com/habedi/hrgo/db"
)

// CredentialStorer is a token store that can also report the stored expiries.
type CredentialStorer interface {
	client.TokenStore
	Credential(ctx context.Context) (*db.Credential, error)
}
