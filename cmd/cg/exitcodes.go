package main

// Process exit codes.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (no dataset configured, dataset not found)
	ExitDataError   = 3 // Data error (malformed dataset, fetch failure)
	ExitNotFound    = 4 // Requested paper or author does not exist
)
