package frappe

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fixturelab/platformseed/pkg/clients/httpx"
)

// Error carries the server-side exception Frappe embeds in failed responses.
type Error struct {
	StatusCode int
	ExcType    string
	Exception  string
}

func (e *Error) Error() string {
	if e.Exception != "" {
		return fmt.Sprintf("frappe: %s (status %d)", e.Exception, e.StatusCode)
	}
	return fmt.Sprintf("frappe: status %d", e.StatusCode)
}

// IsDuplicate reports whether the server rejected the document as a
// duplicate.
func (e *Error) IsDuplicate() bool {
	return e.ExcType == "DuplicateEntryError" || e.ExcType == "UniqueValidationError"
}

// wrapError lifts the exception fields out of an HTTP status error so
// callers can branch on the server-side exception type.
func wrapError(err error) error {
	var statusErr *httpx.StatusError
	if !errors.As(err, &statusErr) {
		return err
	}

	var body struct {
		ExcType   string `json:"exc_type"`
		Exception string `json:"exception"`
	}
	if json.Unmarshal([]byte(statusErr.Body), &body) != nil {
		return err
	}
	if body.ExcType == "" && body.Exception == "" {
		return err
	}
	return &Error{
		StatusCode: statusErr.StatusCode,
		ExcType:    body.ExcType,
		Exception:  body.Exception,
	}
}
