package wire

import (
	"fmt"
	"strings"
)

// FormatMessage interpolates a notification message template. The template
// uses printf-style verbs with three substitutions applied in order: the
// notification key (string), its level (integer) and its rendered value
// (string), e.g. "%s level %u value %s". The C-style %u verb is accepted as
// an alias for %d.
func FormatMessage(template, key string, level uint8, value string) string {
	f := strings.ReplaceAll(template, "%u", "%d")
	return fmt.Sprintf(f, key, level, value)
}
