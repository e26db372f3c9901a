package commentary

import (
	"fmt"
	"strconv"
)

// HealthResponse is returned by GET /api/health.
type HealthResponse struct {
	Status        string   `json:"status"`
	AudioFiles    int      `json:"audio_files"`
	AudioBytes    int64    `json:"audio_bytes"`
	DiskFreeBytes uint64   `json:"disk_free_bytes"`
	Providers     []string `json:"providers"`
}

// field renders a JSON value as the string the pipeline expects. Numbers keep
// their integer form so {"team_id": 134860} reads as "134860".
func field(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		if !val {
			return ""
		}
		return "true"
	default:
		return fmt.Sprint(val)
	}
}

// present reports whether a JSON value is non-empty: not null, "", 0, false,
// [] or {}.
func present(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val != ""
	case float64:
		return val != 0
	case bool:
		return val
	case []interface{}:
		return len(val) > 0
	case map[string]interface{}:
		return len(val) > 0
	default:
		return true
	}
}
