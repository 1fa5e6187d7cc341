package errors

import (
	stderrors "errors"
	"net/http"
)

func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// ToHTTPStatus maps the sentinel taxonomy onto response codes.
func ToHTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case Is(err, ErrAuth):
		return http.StatusUnauthorized
	case Is(err, ErrNotFound), Is(err, ErrRoomNotFound):
		return http.StatusNotFound
	case Is(err, ErrConflict):
		return http.StatusConflict
	case Is(err, ErrInvalidPayload), Is(err, ErrUnknownAction), Is(err, ErrUnknownEvent):
		return http.StatusBadRequest
	case Is(err, ErrNotAMember):
		return http.StatusForbidden
	case Is(err, ErrTransient):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
