package httptransport

import (
	"encoding/json"
	"net/http"

	appdragons "dragon-backend/internal/app/dragons"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type envelope struct {
	Success    bool                   `json:"success"`
	Data       any                    `json:"data,omitempty"`
	Pagination *appdragons.Pagination `json:"pagination,omitempty"`
	Error      *errorBody             `json:"error,omitempty"`
}

func writePage(w http.ResponseWriter, resp *appdragons.ListResponse) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(envelope{
		Success:    true,
		Data:       resp.Items,
		Pagination: &resp.Pagination,
	})
}

func WriteHTTPError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{
		Success: false,
		Error:   &errorBody{Code: code, Message: message},
	})
}
