package receiptapi

import (
	"encoding/json"
	"net/http"

	"github.com/germanamz/genprompt/pkg/expenses"
)

// writeJSON marshals v and writes it with the given status code. A marshal
// failure turns into a 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

type errorResponse struct {
	Error string `json:"error"`
}

type uploadResponse struct {
	Message string           `json:"message"`
	Data    expenses.Expense `json:"data"`
}
