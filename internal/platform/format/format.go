// Package format provides positional template substitution for user-facing
// strings. Templates reference arguments as {0}, {1}, ... and each marker is
// replaced by the argument with the matching index.
package format

import (
	"fmt"
	"strings"
)

// Format substitutes positional arguments into template. Markers without a
// matching argument are left intact, and arguments without a marker are
// ignored.
func Format(template string, args ...any) string {
	result := template
	for idx, arg := range args {
		marker := "{" + fmt.Sprint(idx) + "}"
		result = strings.Replace(result, marker, fmt.Sprint(arg), 1)
	}
	return result
}
