package fetcher

import (
	"encoding/json"
	"fmt"
	"strings"
)

// datapackage is the Frictionless Data descriptor the portal serves for each
// dataset.
type datapackage struct {
	Name      string     `json:"name"`
	Resources []resource `json:"resources"`
}

type resource struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Path         string `json:"path"`
	Format       string `json:"format"`
	LastModified string `json:"last_modified"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func parseHTTPError(status int, payload []byte) error {
	var apiErr errorResponse
	if err := json.Unmarshal(payload, &apiErr); err == nil && apiErr.Error.Message != "" {
		return fmt.Errorf("portal error (%d): %s", status, apiErr.Error.Message)
	}
	if len(payload) > 0 {
		return fmt.Errorf("portal error (%d): %s", status, strings.TrimSpace(string(payload)))
	}
	return fmt.Errorf("portal error (%d)", status)
}
