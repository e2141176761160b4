package domain

import (
	"fmt"
	"strconv"
	"time"
)

// ParseWindow parses fixed-unit lookback strings like "24h", "7d", "30d".
// Only hour and day units are accepted; anything else is a client error.
func ParseWindow(window string) (time.Duration, error) {
	if len(window) < 2 {
		return 0, fmt.Errorf("invalid window %q", window)
	}

	n, err := strconv.Atoi(window[:len(window)-1])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid window %q", window)
	}

	switch window[len(window)-1] {
	case 'h':
		return time.Duration(n) * time.Hour, nil
	case 'd':
		return time.Duration(n) * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("invalid window %q", window)
	}
}
