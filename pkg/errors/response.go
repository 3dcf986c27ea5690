package errors

import (
	"encoding/json"
	"net/http"
)

// errorBody is the wire shape of failure responses. Validator failures use
// the list form {"success":false,"errors":[...]}; everything else uses
// {"success":false,"error":"<Code>","message":"..."}.
type errorBody struct {
	Success bool     `json:"success"`
	Error   string   `json:"error,omitempty"`
	Errors  []string `json:"errors,omitempty"`
	Message string   `json:"message,omitempty"`
}

// WriteError writes an AppError to the response in the standard failure shape
func WriteError(w http.ResponseWriter, appErr *AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)

	body := errorBody{Success: false}
	if len(appErr.Errors) > 0 {
		body.Errors = appErr.Errors
	} else {
		body.Error = string(appErr.Code)
		body.Message = appErr.Message
	}

	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
