package env

import "os"

// Get reads key from the process environment. Unset and blank both yield the
// fallback.
func Get(key, fallback string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	return value
}
