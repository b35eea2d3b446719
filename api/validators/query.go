package validators

import (
	"net/http"
	"strings"

	pkgerrors "github.com/squadlog/squadlog-backend/pkg/errors"
)

// ParseQueryBool reads a boolean query flag; absent means false.
func ParseQueryBool(r *http.Request, key string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(r.URL.Query().Get(key))) {
	case "", "0", "false", "no":
		return false, nil
	case "1", "true", "yes":
		return true, nil
	default:
		return false, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a boolean").WithDetails(map[string]any{"field": key})
	}
}
