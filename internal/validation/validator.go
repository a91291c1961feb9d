package validation

import "fmt"

// RequestValidator implements echo.Validator so handlers run validation via
// c.Validate before touching the store.
type RequestValidator struct{}

// Validate dispatches on the request type.  On success the typed value is
// stored back on the request.
func (RequestValidator) Validate(i interface{}) error {
	switch req := i.(type) {
	case *CreateTaskRequest:
		task, err := ValidateCreateTask(*req)
		if err != nil {
			return err
		}
		req.task = task
		return nil
	default:
		return fmt.Errorf("no validation rules for %T", i)
	}
}
