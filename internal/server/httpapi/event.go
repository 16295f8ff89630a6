// Package httpapi holds the HTTP handlers of the service. Handlers work on a
// transport-neutral Event and Response pair; Server adapts them to fiber.
package httpapi

import (
	"context"
	"strings"
)

// Event is a normalized inbound HTTP request.
type Event struct {
	Method  string
	Path    string
	Headers map[string]string
	Query   map[string]string
	Body    string
}

// Header returns the value of the named header, matching names
// case-insensitively.
func (e Event) Header(name string) string {
	if v, ok := e.Headers[name]; ok {
		return v
	}
	for k, v := range e.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// HasQuery reports whether the query parameter is present, even if empty.
func (e Event) HasQuery(name string) bool {
	_, ok := e.Query[name]
	return ok
}

// Response is a normalized HTTP response.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       string
}

// Handler serves one route family.
type Handler interface {
	Handle(ctx context.Context, ev Event) Response
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, ev Event) Response

func (f HandlerFunc) Handle(ctx context.Context, ev Event) Response {
	return f(ctx, ev)
}
