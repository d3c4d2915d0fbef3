package app

import "errors"

var (
	// ErrNotInitialized means a command ran without the container in
	// its context.
	ErrNotInitialized = errors.New("application not initialized")

	// ErrNoCompanies means the companies file is missing or empty.
	ErrNoCompanies = errors.New("no companies to process, run 'jobpilot sample' to create a starter list")
)
