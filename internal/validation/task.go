// Package validation checks incoming request bodies before handlers act on
// them.  Each request type has an explicit schema and a function that turns
// it into either a typed value or a *ValidationError.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iliyamo/taskboard/internal/model"
)

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("validation failed")

// Reasons reported in ValidationError.Reason.
const (
	ReasonRequired = "required"
	ReasonType     = "type"
	ReasonEmpty    = "empty"
)

// ValidationError describes why a single field was rejected.
type ValidationError struct {
	Field   string
	Reason  string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// CreateTaskRequest is the body of POST /tasks.  Text is kept as raw JSON so
// a missing field, an explicit null and a non-string value can be told apart
// instead of being coerced into "".
type CreateTaskRequest struct {
	Text json.RawMessage `json:"text"`

	task model.Task
}

// Task returns the value produced by a successful validation.  It is the
// zero Task until the request has passed ValidateCreateTask through the
// echo validator.
func (r *CreateTaskRequest) Task() model.Task { return r.task }

// ValidateCreateTask requires text to be present, a JSON string and not
// empty.
func ValidateCreateTask(req CreateTaskRequest) (model.Task, error) {
	raw := bytes.TrimSpace(req.Text)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return model.Task{}, &ValidationError{Field: "text", Reason: ReasonRequired, Message: "Task text is required"}
	}
	if raw[0] != '"' {
		return model.Task{}, &ValidationError{Field: "text", Reason: ReasonType, Message: "Task text must be a string"}
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return model.Task{}, &ValidationError{Field: "text", Reason: ReasonType, Message: "Task text must be a string"}
	}
	if text == "" {
		return model.Task{}, &ValidationError{Field: "text", Reason: ReasonEmpty, Message: "Task text must not be empty"}
	}
	return model.Task{Text: text}, nil
}
