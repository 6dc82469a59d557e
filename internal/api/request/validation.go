package request

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/edvin/borgwatch/internal/jobconfig"
)

var validate = validator.New()

func init() {
	validate.RegisterValidation("job_id", func(fl validator.FieldLevel) bool {
		return jobconfig.ValidJobID(fl.Field().String())
	})
}

func Decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	return nil
}

// JobID validates a job id taken from the URL path. Path ids never reach the
// filesystem unchecked.
func JobID(s string) (string, error) {
	if !jobconfig.ValidJobID(s) {
		return "", fmt.Errorf("invalid job id")
	}
	return s, nil
}
