// ABOUTME: Remote-call error types shared by every platform client.
// ABOUTME: Classify maps any dispatch error to a stable outcome label.

package platform

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/2389/herald-gateway/internal/auth"
	"github.com/2389/herald-gateway/internal/tenants"
	"github.com/2389/herald-gateway/internal/tools"
)

// Remote call errors
var (
	ErrRemoteAPI   = errors.New("remote api error")
	ErrNotFound    = errors.New("not found")
	ErrUnsupported = errors.New("operation not supported by platform")
)

// RemoteError is a failed call to a platform API. It carries the upstream message.
type RemoteError struct {
	Platform   string
	Op         string
	StatusCode int // 0 when the request never got a response
	Message    string
	Err        error
}

func (e *RemoteError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	status := "transport error"
	if e.StatusCode != 0 {
		status = "status " + strconv.Itoa(e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %s: %s", e.Platform, e.Op, status, msg)
}

// Is makes RemoteError match ErrRemoteAPI.
func (e *RemoteError) Is(target error) bool {
	return target == ErrRemoteAPI
}

// Unwrap returns the underlying transport or decode error, if any.
func (e *RemoteError) Unwrap() error {
	return e.Err
}

// NotFound reports that the upstream response lacked the expected data.
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Outcome is a stable label for the result of a dispatch.
type Outcome string

// Outcome labels used by metrics, audit, and the invocation surfaces.
const (
	OutcomeOK                 Outcome = "ok"
	OutcomeUnauthenticated    Outcome = "unauthenticated"
	OutcomeUnauthorized       Outcome = "unauthorized"
	OutcomeInvalidArgument    Outcome = "invalid_argument"
	OutcomeToolNotFound       Outcome = "tool_not_found"
	OutcomeUnregisteredTenant Outcome = "unregistered_tenant"
	OutcomeInvalidCredentials Outcome = "invalid_credentials"
	OutcomeNotFound           Outcome = "not_found"
	OutcomeRemoteError        Outcome = "remote_error"
	OutcomeUnsupported        Outcome = "unsupported"
	OutcomeCanceled           Outcome = "canceled"
	OutcomeInternal           Outcome = "internal_error"
)

// Classify maps an error from a tool call to its outcome label.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, auth.ErrAuthentication):
		return OutcomeUnauthenticated
	case errors.Is(err, auth.ErrAuthorization):
		return OutcomeUnauthorized
	case errors.Is(err, tools.ErrInvalidArgument):
		return OutcomeInvalidArgument
	case errors.Is(err, tools.ErrToolNotFound):
		return OutcomeToolNotFound
	case errors.Is(err, tenants.ErrUnregisteredTenant):
		return OutcomeUnregisteredTenant
	case errors.Is(err, tenants.ErrInvalidCredentials):
		return OutcomeInvalidCredentials
	case errors.Is(err, ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, ErrUnsupported):
		return OutcomeUnsupported
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCanceled
	case errors.Is(err, ErrRemoteAPI):
		return OutcomeRemoteError
	default:
		return OutcomeInternal
	}
}
