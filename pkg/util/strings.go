package util

import "strconv"

// ParseIntDefault parses s as an int, falling back to def when s is empty
// or not numeric. Query parameters lean on this so a bad value degrades to
// the documented default instead of a 400.
func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
