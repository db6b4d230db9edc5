package reembed

import "errors"

var (
	// ErrInvalidBatchSize is returned when the batch size is <= 0
	ErrInvalidBatchSize = errors.New("batch size must be greater than 0")

	// ErrInvalidReportInterval is returned when the report interval is <= 0
	ErrInvalidReportInterval = errors.New("report interval must be greater than 0")
)
