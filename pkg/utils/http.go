package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func WriteJSON(w http.ResponseWriter, payload any, code int) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(payload)
}

func WriteData(w http.ResponseWriter, data any, code int) error {
	return WriteJSON(w, Response{Success: true, Data: data}, code)
}

func WriteError(w http.ResponseWriter, message string, code int) error {
	return WriteJSON(w, Response{Success: false, Error: message}, code)
}

// WriteValidationError flattens validator field errors into one
// message.
func WriteValidationError(w http.ResponseWriter, err error) error {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		return WriteError(w, fmt.Sprintf("invalid request: field %s failed on %s", fe.Field(), fe.Tag()), http.StatusBadRequest)
	}
	return WriteError(w, "invalid request", http.StatusBadRequest)
}

func DecodeBody(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
