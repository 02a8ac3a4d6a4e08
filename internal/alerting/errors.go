package alerting

import "errors"

// Sentinel kinds for alerting errors.
var (
	ErrDeliver = errors.New("alert delivery failed")
)
