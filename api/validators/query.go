package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/shopdesk-backend/pkg/errors"
	"github.com/angelmondragon/shopdesk-backend/pkg/types"
)

func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").WithDetails(map[string][]string{key: {"must be numeric"}})
	}
	if value < min || value > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter out of range").WithDetails(map[string][]string{key: {"must be between " + strconv.Itoa(min) + " and " + strconv.Itoa(max)}})
	}
	return value, nil
}

// ParseQueryID returns the numeric id stored under key. Absent or non-numeric
// values yield nil so the filter is simply not applied.
func ParseQueryID(r *http.Request, key string) *uint64 {
	id, ok := types.ParseID(r.URL.Query().Get(key))
	if !ok {
		return nil
	}
	return &id
}

func ParseQueryBool(r *http.Request, key string) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return false, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid boolean query parameter").WithDetails(map[string][]string{key: {"must be true or false"}})
	}
	return value, nil
}
