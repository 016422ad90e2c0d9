package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/danielgtaylor/huma/v2"

	"github.com/oaiiae/contacts-rest/services"
)

type handler[I, O any] = func(context.Context, *I) (*O, error)

// handlerWithErrorHandler converts errors returned by handler with
// [statusError] and passes them to do before returning them to huma.
func handlerWithErrorHandler[I, O any](handler handler[I, O], do func(context.Context, error)) handler[I, O] {
	return func(ctx context.Context, i *I) (*O, error) {
		o, err := handler(ctx, i)
		if err != nil {
			err = statusError(err)
			if do != nil {
				do(ctx, err)
			}
		}
		return o, err
	}
}

// statusError joins err with the [huma.StatusError] that huma writes back
// to the client. The cause is kept for logging but never rendered: huma
// finds the status error with [errors.As].
func statusError(err error) error {
	var statusErr huma.StatusError
	switch {
	case errors.As(err, &statusErr):
		return err
	case errors.Is(err, services.ErrNotFound):
		return fmt.Errorf("%w: %w", huma.Error404NotFound("Contact not found"), err)
	case errors.Is(err, services.ErrInvalidSort):
		return fmt.Errorf("%w: %w", huma.Error422UnprocessableEntity(err.Error()), err)
	default:
		return fmt.Errorf("%w: %w", huma.Error500InternalServerError("Internal server error"), err)
	}
}

func opErrors(codes ...int) func(*huma.Operation) {
	return func(o *huma.Operation) { o.Errors = codes }
}

func opID(id string) func(*huma.Operation) {
	return func(o *huma.Operation) { o.OperationID = id }
}

func opStatus(code int) func(*huma.Operation) {
	return func(o *huma.Operation) { o.DefaultStatus = code }
}
