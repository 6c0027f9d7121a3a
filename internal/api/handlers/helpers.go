package handlers

import (
	"time"

	"github.com/pkg/errors"
)

// parseDate accepts the date formats clients are known to send
func parseDate(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02", "1/2/2006"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Errorf("unrecognized date format: %q", value)
}
