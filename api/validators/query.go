package validators

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/granduer/granduer-backend/pkg/errors"
)

// ParseQueryUUID reads an optional uuid query parameter. A missing value
// returns (nil, nil).
func ParseQueryUUID(r *http.Request, key string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	value, err := uuid.Parse(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a valid uuid").
			WithDetails(map[string]any{"field": key})
	}
	return &value, nil
}
