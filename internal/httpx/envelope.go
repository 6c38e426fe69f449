package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/decoder-44/vehicle-service-super-app/internal/pagination"
)

var validate = validator.New()

// envelope is the uniform response shape for every endpoint, success or not.
type envelope struct {
	StatusCode int    `json:"statusCode"`
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Data       any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, code int, message string, data any) {
	writeJSON(w, code, envelope{StatusCode: code, Success: true, Message: message, Data: data})
}

func writeList(w http.ResponseWriter, message string, items any, meta pagination.Meta) {
	writeData(w, http.StatusOK, message, map[string]any{
		"items":      items,
		"pagination": meta,
	})
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, envelope{StatusCode: code, Success: false, Message: message})
}

// decodeJSON decodes the body into v and runs struct validation; a non-nil
// return has already been reported to the client.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return err
	}
	if err := validate.Struct(v); err != nil {
		var verr validator.ValidationErrors
		if errors.As(err, &verr) && len(verr) > 0 {
			writeError(w, http.StatusBadRequest, "validation failed on field "+verr[0].Field())
			return err
		}
		writeError(w, http.StatusBadRequest, "validation failed")
		return err
	}
	return nil
}
