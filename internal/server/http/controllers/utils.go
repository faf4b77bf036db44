package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/rzbill/siphon/internal/model"
)

// Helper functions for common HTTP responses

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeJSON writes a JSON response with the given data.
func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

// decodeLabel reads an optional {label} body. An empty body is fine; a
// present but malformed one is a client error.
func decodeLabel(w http.ResponseWriter, r *http.Request) (labelReq, bool) {
	var req labelReq
	if r.Body == nil {
		return req, true
	}
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return req, false
	}
	return req, true
}

// parseLimit parses a limit string and returns a valid limit value.
//
// Returns 0 for empty strings or invalid values.
func parseLimit(limitStr string) int {
	if limitStr == "" {
		return 0
	}
	if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
		return limit
	}
	return 0
}

// parseCursor parses a cursor string into a sequence number.
//
// Returns 0 for empty strings or invalid values, which reads from the
// oldest retained entry.
func parseCursor(cursorStr string) uint32 {
	if cursorStr == "" {
		return 0
	}
	if c, err := strconv.ParseUint(cursorStr, 10, 32); err == nil {
		return uint32(c)
	}
	return 0
}

// parseLevels splits a comma-separated levels parameter, dropping blanks.
func parseLevels(csv string) []model.Level {
	if csv == "" {
		return nil
	}
	var out []model.Level
	for _, p := range strings.Split(csv, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, model.Level(strings.ToLower(p)))
		}
	}
	return out
}
