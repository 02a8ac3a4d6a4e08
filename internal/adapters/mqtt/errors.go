package mqtt

import "errors"

// Sentinel kinds for ingest errors.
var (
	ErrConnect = errors.New("broker connect failed")
	ErrDecode  = errors.New("invalid location payload")
)
