package report

import "errors"

var (
	// ErrNoData is returned by New for an aggregate without any file records.
	ErrNoData = errors.New("no input data")

	// ErrUnknownFormat is returned for an output format other than text, json or yaml.
	ErrUnknownFormat = errors.New("unknown output format")

	// ErrRender indicates a failure while rendering or writing the report.
	ErrRender = errors.New("failed to render report")
)
