package kv

import (
	"fmt"
	"strconv"
)

// Options holds backend-specific configuration passed to a plugin.
// Plugins read only the options they recognize.
type Options map[string]interface{}

// String reads the named option as a string, falling back to
// defaultValue when the option is absent.
func (options Options) String(name string, defaultValue string) (string, error) {
	value, ok := options[name]

	if !ok {
		return defaultValue, nil
	}

	s, ok := value.(string)

	if !ok {
		return "", fmt.Errorf("\"%s\" must be a string", name)
	}

	return s, nil
}

// Address reads the named option as a non-empty string. Integer
// values are accepted and formatted as decimal strings so that ports
// may be given either way. Absent or empty values are an error.
func (options Options) Address(name string) (string, error) {
	value, ok := options[name]

	if !ok {
		return "", fmt.Errorf("\"%s\" is required", name)
	}

	switch v := value.(type) {
	case string:
		if v == "" {
			return "", fmt.Errorf("\"%s\" must not be empty", name)
		}

		return v, nil
	case int:
		return strconv.Itoa(v), nil
	default:
		return "", fmt.Errorf("\"%s\" must be a string or an int", name)
	}
}
