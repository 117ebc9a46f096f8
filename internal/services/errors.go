package services

import "errors"

// Dashboard service errors
var (
	ErrInvalidSector = errors.New("invalid sector code")
	ErrInvalidMetric = errors.New("metric not supported by this chart")
	ErrUnknownChart  = errors.New("unknown chart")
)
