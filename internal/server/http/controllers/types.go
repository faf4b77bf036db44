package controllers

import "github.com/rzbill/siphon/internal/model"

// Common request/response types for HTTP controllers

// labelReq carries the optional session label for clear and session start.
type labelReq struct {
	Label string `json:"label"`
}

// batchErrItem reports a rejected member of a batch push by its index.
type batchErrItem struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// pushResp is the response to a push of one or more entries.
type pushResp struct {
	Stored []model.LogEntry `json:"stored"`
	Errors []batchErrItem   `json:"errors,omitempty"`
}

// sessionsResp lists all sessions plus the id of the active one.
type sessionsResp struct {
	Sessions []model.Session `json:"sessions"`
	Current  string          `json:"current"`
}

// healthResp is the health endpoint payload.
type healthResp struct {
	OK         bool   `json:"ok"`
	UptimeS    int64  `json:"uptime_s"`
	Entries    int    `json:"entries"`
	Dropped    uint64 `json:"dropped"`
	BufferSize int    `json:"bufferSize"`
}

// metaResp carries build and start metadata.
type metaResp struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	StartedAt string `json:"startedAt"`
}
