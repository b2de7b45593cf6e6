package testutil

import (
	"net/http"

	"avelements/pkg/requestcontext"
)

// WithRequestID adds a request ID to the request context, as the request id
// middleware would.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}

// WithClientMetadata adds client metadata to the request context, as the
// metadata middleware would.
func WithClientMetadata(req *http.Request, clientIP, userAgent, device string) *http.Request {
	return req.WithContext(requestcontext.WithClientMetadata(req.Context(), clientIP, userAgent, device))
}
