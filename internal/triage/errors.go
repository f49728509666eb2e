package triage

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"

	"github.com/ShayCichocki/ticketpilot/internal/helpdesk"
)

// FetchError reports that the ticket could not be loaded. The analysis
// cannot continue without it.
type FetchError struct {
	TicketID int64
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch ticket %d: %v", e.TicketID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ClassificationError reports that the ticket could not be classified,
// either because the LLM call failed or because its reply could not be
// parsed. Response holds the unparseable reply, if any.
type ClassificationError struct {
	TicketID int64
	Response string
	Err      error
}

func (e *ClassificationError) Error() string {
	if e.Response != "" {
		return fmt.Sprintf("classify ticket %d: could not parse response as JSON: %v", e.TicketID, e.Err)
	}
	return fmt.Sprintf("classify ticket %d: %v", e.TicketID, e.Err)
}

func (e *ClassificationError) Unwrap() error { return e.Err }

// Class groups errors by how a caller should report them.
type Class string

const (
	ClassNotFound    Class = "not_found"
	ClassAuth        Class = "auth"
	ClassUnavailable Class = "unavailable"
	ClassTimeout     Class = "timeout"
	ClassInternal    Class = "internal"
)

// StatusClass classifies an error returned by AnalyzeTicket.
func StatusClass(err error) Class {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, helpdesk.ErrNotFound):
		return ClassNotFound
	case errors.Is(err, helpdesk.ErrUnauthorized):
		return ClassAuth
	case errors.Is(err, context.DeadlineExceeded):
		return ClassTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ClassTimeout
	}

	var apiErr *helpdesk.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= http.StatusInternalServerError {
		return ClassUnavailable
	}

	var dnsErr *net.DNSError
	var opErr *net.OpError
	if errors.Is(err, syscall.ECONNREFUSED) || errors.As(err, &dnsErr) || errors.As(err, &opErr) {
		return ClassUnavailable
	}

	return ClassInternal
}
