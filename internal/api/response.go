package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/CrestlineDigital/leadflow/internal/models"
)

// encodingFailureBody is pre-marshaled so a response can always be written
// even when encoding the real payload fails.
var encodingFailureBody = []byte(`{"status":"error","message":"failed to encode response"}`)

// writeJSONResponse writes an APIResponse envelope with the given status code.
func writeJSONResponse(w http.ResponseWriter, statusCode int, resp models.APIResponse) {
	body, err := json.Marshal(resp)
	if err != nil {
		slog.Error("Failed to encode API response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write(encodingFailureBody)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(body)
}

// writeSuccess writes a 200 response with result data.
func writeSuccess(w http.ResponseWriter, result interface{}) {
	writeJSONResponse(w, http.StatusOK, models.Success(result))
}

// writeError writes an error response with the given status code.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSONResponse(w, statusCode, models.Error(message))
}
