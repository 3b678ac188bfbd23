package duration

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
	secondsPerDay    = 24 * secondsPerHour
)

// MaxSeconds is the longest duration that still fits in a time.Duration.
const MaxSeconds = math.MaxInt64 / int64(time.Second)

var ErrInvalidDuration = errors.New("invalid duration")

var units = []struct {
	suffix  string
	seconds int64
}{
	{"min", secondsPerMinute},
	{"hr", secondsPerHour},
	{"d", secondsPerDay},
}

// Parse converts text like "1d 2hr 30min" to seconds.
// Tokens are whitespace separated and case-insensitive. A token without a known
// unit suffix is ignored; a token with a unit but a non-integer amount fails,
// as does any running total beyond MaxSeconds.
func Parse(text string) (int64, error) {
	var total int64
	for _, token := range strings.Fields(strings.ToLower(text)) {
		for _, u := range units {
			if !strings.HasSuffix(token, u.suffix) {
				continue
			}
			n, err := strconv.ParseInt(strings.TrimSuffix(token, u.suffix), 10, 64)
			if err != nil {
				return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, token)
			}
			limit := MaxSeconds / u.seconds
			if n > limit || n < -limit {
				return 0, fmt.Errorf("%w: %q is too long", ErrInvalidDuration, token)
			}
			total += n * u.seconds
			if total > MaxSeconds || total < -MaxSeconds {
				return 0, fmt.Errorf("%w: total is too long", ErrInvalidDuration)
			}
			break
		}
	}
	if total <= 0 {
		return 0, fmt.Errorf("%w: total must be positive", ErrInvalidDuration)
	}
	return total, nil
}

// Format renders seconds using the largest non-zero unit and everything below it
// down to minutes. Seconds are dropped.
func Format(seconds int64) string {
	d := seconds / secondsPerDay
	h := (seconds % secondsPerDay) / secondsPerHour
	m := (seconds % secondsPerHour) / secondsPerMinute

	switch {
	case d > 0:
		return fmt.Sprintf("%dd %dhr %dmin", d, h, m)
	case h > 0:
		return fmt.Sprintf("%dhr %dmin", h, m)
	case m > 0:
		return fmt.Sprintf("%dmin", m)
	default:
		return "Less than a minute"
	}
}
