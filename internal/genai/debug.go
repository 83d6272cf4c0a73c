package genai

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// debugDirName is the folder under the state directory that receives debug records.
const debugDirName = "debug"

// debugRecord is one request/response pair written in debug mode.
type debugRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	Prompt    string    `json:"prompt"`
	Response  string    `json:"response,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// writeDebugRecord persists rec as JSON. Failures are logged and otherwise ignored.
func writeDebugRecord(stateDir string, rec debugRecord) {
	if stateDir == "" {
		stateDir = os.TempDir()
	}
	dir := filepath.Join(stateDir, debugDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		slog.Warn("genai.writeDebugRecord: failed to create debug directory", "dir", dir, "error", err)
		return
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		slog.Warn("genai.writeDebugRecord: failed to marshal debug record", "error", err)
		return
	}
	name := fmt.Sprintf("%s_%d.json", rec.Provider, rec.Timestamp.UnixNano())
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		slog.Warn("genai.writeDebugRecord: failed to write debug record", "path", path, "error", err)
		return
	}
	slog.Debug("genai.writeDebugRecord: debug record written", "path", path)
}
