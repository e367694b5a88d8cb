package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
)

const maxBody = 1 << 20

var (
	json     = jsoniter.ConfigCompatibleWithStandardLibrary
	validate = validator.New(validator.WithRequiredStructEnabled())
)

// badRequest is a client error whose message is safe to return.
type badRequest struct {
	title  string
	detail string
}

func (e *badRequest) Error() string { return e.title + ": " + e.detail }

// read decodes a JSON body into dest and validates it.
func read(w http.ResponseWriter, r *http.Request, dest any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return &badRequest{title: "Invalid JSON", detail: fmt.Sprintf("decode body: %v", err)}
	}
	if err := validate.StructCtx(r.Context(), dest); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &badRequest{title: "Validation Error", detail: fmt.Sprintf("%s failed on %q", fe.Namespace(), fe.Tag())}
		}
		return &badRequest{title: "Validation Error", detail: err.Error()}
	}
	return nil
}
