package validators

import (
	"encoding/json"
	"io"
	"net/http"

	pkgerrors "github.com/turboairmx/quotesync/pkg/errors"
	"github.com/turboairmx/quotesync/pkg/validation"
)

const maxBodyBytes = 20 << 20

type selfValidator interface {
	Validate() error
}

// DecodeJSONBody decodes a strict JSON body into dest and validates it. Types
// with their own Validate method are checked with it instead of struct tags.
func DecodeJSONBody(r *http.Request, dest any) error {
	defer func() {
		_, _ = io.Copy(io.Discard, r.Body)
	}()
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body").WithDetails(map[string]any{"error": err.Error()})
	}
	if v, ok := dest.(selfValidator); ok {
		return v.Validate()
	}
	return validation.Struct(dest)
}
