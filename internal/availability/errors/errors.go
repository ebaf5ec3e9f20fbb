package errors

import "errors"

var (
	ErrInvalidRange = errors.New("start date must not be after end date")

	ErrRefreshFailed = errors.New("failed to load booked dates")
)
