package httpclient

import "fmt"

// UpstreamError represents a non-2xx reply from an upstream service.
// The raw body is retained for error classification and logging.
type UpstreamError struct {
	StatusCode int
	Body       []byte
	URL        string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error: status %d from %s", e.StatusCode, e.URL)
}
