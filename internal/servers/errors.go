package servers

import (
	"context"
	"errors"
	"net/http"

	"google.golang.org/grpc/codes"

	"custom-id-generator/internal/customid"
	"custom-id-generator/internal/inventory"
)

func httpStatus(err error) int {
	switch {
	case errors.Is(err, customid.ErrInvalidTemplate), errors.Is(err, errBadRequest):
		return http.StatusUnprocessableEntity
	case errors.Is(err, inventory.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, inventory.ErrInventoryNotFound):
		return http.StatusNotFound
	case errors.Is(err, customid.ErrUniquenessExhausted):
		return http.StatusConflict
	case errors.Is(err, customid.ErrSequenceAllocationFailed):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func grpcCode(err error) codes.Code {
	switch {
	case errors.Is(err, customid.ErrInvalidTemplate), errors.Is(err, errBadRequest):
		return codes.InvalidArgument
	case errors.Is(err, inventory.ErrForbidden):
		return codes.PermissionDenied
	case errors.Is(err, inventory.ErrInventoryNotFound):
		return codes.NotFound
	case errors.Is(err, customid.ErrUniquenessExhausted):
		return codes.Aborted
	case errors.Is(err, customid.ErrSequenceAllocationFailed):
		return codes.Unavailable
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	default:
		return codes.Internal
	}
}
