package skrape

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	oaierrors "github.com/go-openapi/errors"
	"github.com/go-openapi/spec"
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/validate"
)

// validateResult checks an extract result against the schema it was
// requested with.
func validateResult(schema map[string]any, result json.RawMessage) error {
	data, err := json.Marshal(schema)
	if err != nil {
		return newError(CodeSchemaConversion, "failed to encode schema", 0, err)
	}
	var s spec.Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return newError(CodeSchemaConversion, "schema cannot be used for validation", 0, err)
	}

	var value any
	if err := json.Unmarshal(result, &value); err != nil {
		return newError(CodeInvalidResponse, "failed to decode result", http.StatusOK, err)
	}

	if err := validate.AgainstSchema(&s, value, strfmt.Default); err != nil {
		msg := "result does not match schema"
		var composite *oaierrors.CompositeError
		if errors.As(err, &composite) && len(composite.Errors) > 0 {
			msg = fmt.Sprintf("result does not match schema: %s", composite.Errors[0])
		}
		return newError(CodeValidation, msg, http.StatusOK, err)
	}
	return nil
}
