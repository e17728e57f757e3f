package interfaces

import (
	"context"

	"github.com/CaioWF/ignite-finapi/internal/models"
)

// UserDirectory is the narrow view of user identity the statement engine
// needs: resolve an id or report models.ErrUserNotFound. The engine calls it
// on every operation rather than trusting a previously resolved identity.
type UserDirectory interface {
	FindByID(ctx context.Context, id string) (models.User, error)
}

// UserStore is the full user collection backing signup and authentication.
type UserStore interface {
	UserDirectory

	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
}
