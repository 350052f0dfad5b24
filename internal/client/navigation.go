package client

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// UpdateParam returns rawURL with its query parameter key set to value.
func UpdateParam(rawURL, key, value string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// NavigateMonth moves the month/year query parameters by offset months.
// Missing or unparseable values fall back to now. The month wraps once past
// either end of the year.
func NavigateMonth(rawURL string, offset int, now time.Time) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	q := u.Query()

	month := leadingInt(q.Get("month"))
	if month == 0 {
		month = int(now.Month())
	}
	year := leadingInt(q.Get("year"))
	if year == 0 {
		year = now.Year()
	}

	month += offset
	if month > 12 {
		month = 1
		year++
	} else if month < 1 {
		month = 12
		year--
	}

	q.Set("month", strconv.Itoa(month))
	q.Set("year", strconv.Itoa(year))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// SetToday points the month/year query parameters at now.
func SetToday(rawURL string, now time.Time) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	q := u.Query()
	q.Set("month", strconv.Itoa(int(now.Month())))
	q.Set("year", strconv.Itoa(now.Year()))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// leadingInt parses the leading decimal digits of s (with an optional sign)
// and returns 0 when there are none.
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
