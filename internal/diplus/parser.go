package diplus

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// APIResponse is the envelope returned by /api/getDiPars.
type APIResponse struct {
	Success bool   `json:"success"`
	Val     string `json:"val"`
}

// Readings maps sensor keys to numeric values. Keys whose value could not be
// parsed are absent.
type Readings map[string]float64

// Get returns the reading for key and whether it was present.
func (r Readings) Get(key string) (float64, bool) {
	v, ok := r[key]
	return v, ok
}

// ParseResponse decodes the Di-Plus envelope and its pipe-separated
// key:value payload.
func ParseResponse(body []byte) (Readings, error) {
	var resp APIResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal API response: %w", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("API request failed: success=false")
	}
	if resp.Val == "" {
		return nil, fmt.Errorf("empty value string")
	}
	return parseValueString(resp.Val), nil
}

func parseValueString(val string) Readings {
	out := make(Readings)
	for _, pair := range strings.Split(val, "|") {
		parts := strings.SplitN(pair, ":", 2)
		if len(parts) != 2 {
			continue // malformed pair
		}
		key := strings.TrimSpace(parts[0])
		raw := strings.TrimSpace(parts[1])
		// Unsupported sensors come back unsubstituted ("{车速}") or empty.
		if key == "" || raw == "" || strings.HasPrefix(raw, "{") {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		out[key] = v
	}
	return out
}

// buildTemplate renders the request template for sensors.
func buildTemplate(sensors []Sensor) string {
	parts := make([]string, 0, len(sensors))
	for _, s := range sensors {
		parts = append(parts, fmt.Sprintf("%s:{%s}", s.Key, s.ChineseName))
	}
	return strings.Join(parts, "|")
}
