// Package jsonquery extracts values from saved benchmark artifacts
// using JSONPath-style expressions, backed by gjson.
//
// Supported syntax is the practical subset needed for querying the
// artifact files: dotted field access, array indices, and gjson
// modifiers pass through untouched.
//
//	$.GLOBAL.mean          mean of the GLOBAL topic in a summary
//	$[0].absolutes.load    first iteration's total for "load"
package jsonquery

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

var bracketIndex = regexp.MustCompile(`\[(\d+)\]`)

// Extract evaluates a JSONPath expression against a JSON document and
// returns the result rendered as a string.
func Extract(doc, path string) (string, error) {
	if doc == "" {
		return "", fmt.Errorf("empty JSON document")
	}
	if path == "" {
		return "", fmt.Errorf("empty query expression")
	}

	result := gjson.Get(doc, toGjsonPath(path))
	if !result.Exists() {
		return "", fmt.Errorf("path not found: %s", path)
	}
	if result.Type == gjson.Null {
		return "null", nil
	}
	return result.String(), nil
}

// ExtractFile evaluates an expression against a JSON file on disk.
func ExtractFile(path, expr string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return Extract(string(data), expr)
}

// toGjsonPath converts a JSONPath expression into gjson syntax:
// "$.a[0].b" becomes "a.0.b". Expressions without a leading "$" are
// assumed to already be gjson paths.
func toGjsonPath(path string) string {
	if !strings.HasPrefix(path, "$") {
		return path
	}
	path = strings.TrimPrefix(path, "$")
	path = bracketIndex.ReplaceAllString(path, ".$1")
	path = strings.TrimPrefix(path, ".")
	if path == "" {
		return "@this"
	}
	return path
}
