package youtube

import (
	"fmt"
	"time"

	"github.com/sosodev/duration"
)

// parseISOSeconds converts an ISO-8601 duration token as returned by the
// platform (e.g. "PT3M45S") into whole seconds. Hour, minute and second
// components are all optional and default to zero.
func parseISOSeconds(iso string) (int, error) {
	if iso == "" {
		return 0, fmt.Errorf("empty duration token")
	}
	d, err := duration.Parse(iso)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", iso, err)
	}
	return int(d.ToTimeDuration() / time.Second), nil
}
