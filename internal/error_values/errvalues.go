package errorvalues

import "errors"

var (
	ErrValidation = errors.New("validation error")

	ErrUserExists       = errors.New("such user already exists")
	ErrUserNotFound     = errors.New("user doesn't exists")
	ErrWrongCredentials = errors.New("wrong username or password")

	ErrPlantNotFound = errors.New("plant doesn't exists")
	ErrWrongOwner    = errors.New("resource has different owner")

	ErrReminderNotFound   = errors.New("reminder doesn't exists")
	ErrReminderNotPending = errors.New("reminder is not pending")

	ErrInvalidCareType = errors.New("unknown care type")
	ErrInvalidMetadata = errors.New("metadata doesn't match care type")

	ErrSessionNotFound = errors.New("session doesn't exists")
	ErrSessionExpired  = errors.New("session expired")
	ErrInvalidCSRF     = errors.New("invalid csrf token")
	ErrRateLimited     = errors.New("too many attempts")

	ErrAdviceUnavailable = errors.New("advice provider unavailable")
)
