// Package httpjson holds the JSON request/response helpers shared by controllers.
package httpjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

const MsgMissingFields = "Missing required fields"

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// HTTPError carries the status and client message for a failed request.
// Err is logged, never sent.
type HTTPError struct {
	Status  int
	Message string
	Err     error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error { return e.Err }

func NewError(status int, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Message: message, Err: err}
}

// Write - ответ в JSON с заданным статусом.
func Write(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

// Error writes {"error": message}.
func Error(w http.ResponseWriter, status int, message string) {
	Write(w, status, map[string]string{"error": message})
}

// Fail answers err: HTTPError keeps its status, anything else becomes a generic 500.
func Fail(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.Status >= http.StatusInternalServerError {
			log.Error().Err(err).Str("path", r.URL.Path).Msg(httpErr.Message)
		}
		Error(w, httpErr.Status, httpErr.Message)
		return
	}
	log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg(fallback)
	Error(w, http.StatusInternalServerError, fallback)
}

// Decode reads a JSON body into dst and runs struct validation.
// Both malformed JSON and failed validation come back as a 400 HTTPError.
func Decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return NewError(http.StatusBadRequest, "Invalid request body", err)
	}
	if err := validatorInstance().Struct(dst); err != nil {
		return NewError(http.StatusBadRequest, MsgMissingFields, err)
	}
	return nil
}
