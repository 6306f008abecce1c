package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the YYYY-MM-DD format BambooHR uses for dates
const DateLayout = "2006-01-02"

// StringArg returns args[key] as a string, or defaultValue when it is
// absent or empty. Numbers are accepted since MCP clients often send IDs
// unquoted.
func StringArg(args map[string]any, key, defaultValue string) string {
	switch v := args[key].(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		return v.String()
	}
	return defaultValue
}

// RequiredStringArg returns args[key] as a non-empty string
func RequiredStringArg(args map[string]any, key string) (string, error) {
	value := StringArg(args, key, "")
	if value == "" {
		return "", fmt.Errorf("%s parameter is required", key)
	}
	return value, nil
}

// OptionalBoolArg returns args[key] as a bool and whether it was present
func OptionalBoolArg(args map[string]any, key string) (value bool, present bool, err error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return false, false, nil
	}
	switch v := raw.(type) {
	case bool:
		return v, true, nil
	case string:
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return false, false, fmt.Errorf("%s must be a boolean", key)
		}
		return parsed, true, nil
	}
	return false, false, fmt.Errorf("%s must be a boolean", key)
}

// OptionalIntArg returns args[key] as an integer and whether it was present
func OptionalIntArg(args map[string]any, key string) (value int64, present bool, err error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return 0, false, nil
	}
	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, false, fmt.Errorf("%s must be an integer", key)
		}
		return int64(v), true, nil
	case int:
		return int64(v), true, nil
	case int64:
		return v, true, nil
	case json.Number:
		parsed, err := v.Int64()
		if err != nil {
			return 0, false, fmt.Errorf("%s must be an integer", key)
		}
		return parsed, true, nil
	case string:
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, false, fmt.Errorf("%s must be an integer", key)
		}
		return parsed, true, nil
	}
	return 0, false, fmt.Errorf("%s must be an integer", key)
}

// ValidateDate checks that value is a calendar date in YYYY-MM-DD form
func ValidateDate(key, value string) error {
	if len(value) != len(DateLayout) {
		return fmt.Errorf("%s must be a date in YYYY-MM-DD format", key)
	}
	if _, err := time.Parse(DateLayout, value); err != nil {
		return fmt.Errorf("%s must be a date in YYYY-MM-DD format", key)
	}
	return nil
}

// ValidateEnum checks that value is one of allowed
func ValidateEnum(key, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of: %s", key, strings.Join(allowed, ", "))
}

// PathSegment escapes a caller-supplied value for use in a URL path
func PathSegment(value string) string {
	return url.PathEscape(value)
}
