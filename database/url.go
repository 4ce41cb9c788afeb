package database

import (
	"strings"
)

// ConstructDatabaseURL appends databaseName to baseURL, keeping any query
// string intact, and defaults sslmode to disable. An empty databaseName
// returns baseURL untouched.
func ConstructDatabaseURL(baseURL, databaseName string) string {
	if databaseName == "" {
		return baseURL
	}

	base, query, hasQuery := strings.Cut(strings.TrimRight(baseURL, "/"), "?")
	base = strings.TrimRight(base, "/")

	url := base + "/" + databaseName
	if hasQuery && query != "" {
		url += "?" + query
	}

	if !strings.Contains(url, "sslmode=") {
		if strings.Contains(url, "?") {
			url += "&sslmode=disable"
		} else {
			url += "?sslmode=disable"
		}
	}

	return url
}
