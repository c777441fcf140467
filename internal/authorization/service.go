package authorization

import (
	"context"
	"errors"

	staffdomain "github.com/smallbiznis/voltshop/internal/staff/domain"
)

type Service interface {
	// Authorize returns nil when the principal's role may perform action on object.
	Authorize(ctx context.Context, principal staffdomain.Principal, object, action string) error
}

var (
	ErrInvalidActor  = errors.New("invalid_actor")
	ErrInvalidObject = errors.New("invalid_object")
	ErrInvalidAction = errors.New("invalid_action")
	ErrForbidden     = errors.New("forbidden")
)
