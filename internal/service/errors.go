package service

// ValidationError reports the first business rule a configuration graph
// violated. It is recoverable: nothing was persisted and nothing was
// broadcast.
type ValidationError struct {
	Rule string
}

func (e *ValidationError) Error() string {
	return "invalid configuration: " + e.Rule
}
