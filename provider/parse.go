package provider

import (
	"math"
	"strconv"
	"strings"
)

// ParseInt reads an integer field; blanks and placeholders such as "-" give nil.
func ParseInt(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

// ParseFurlongs reads a distance such as "8f", "8.5f" or "10". Returns 0
// when the distance is missing or unreadable.
func ParseFurlongs(s string) float64 {
	s = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "f")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0
	}
	return f
}

// ParsePrize strips currency symbols and thousands separators.
func ParsePrize(s string) *float64 {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return nil
	}
	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return nil
	}
	return &f
}

// ParseTime reads a race time as "1:12.34", "72.34" or "72.34s" and
// returns it in seconds.
func ParseTime(s string) *float64 {
	s = strings.TrimSuffix(strings.TrimSpace(s), "s")
	if s == "" || s == "-" {
		return nil
	}
	var mins float64
	if i := strings.IndexByte(s, ':'); i >= 0 {
		m, err := strconv.ParseFloat(s[:i], 64)
		if err != nil {
			return nil
		}
		mins, s = m, s[i+1:]
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	t := mins*60 + secs
	if t <= 0 {
		return nil
	}
	return &t
}

// Str returns nil for a blank string.
func Str(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
