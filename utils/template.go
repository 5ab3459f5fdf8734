package utils

import (
	"fmt"
	"regexp"
	"strings"
)

// TemplateFields is the full set of placeholders a message template may
// reference. Substitution is a literal pass over this allow-list; template
// text is never interpreted beyond it.
var TemplateFields = []string{
	"client_name", "client_email", "client_phone", "client_type",
	"ice", "if_number", "deadline_type", "period", "due_date", "status",
}

var placeholderRegex = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// RenderTemplate substitutes {field} placeholders from the given values.
// A placeholder with no matching value is a templating error; the caller
// skips that message, not the whole batch.
func RenderTemplate(template string, values map[string]string) (string, error) {
	var unknown []string

	rendered := placeholderRegex.ReplaceAllStringFunc(template, func(match string) string {
		field := strings.Trim(match, "{}")
		if value, ok := values[field]; ok {
			return value
		}
		unknown = append(unknown, field)
		return match
	})

	if len(unknown) > 0 {
		return "", fmt.Errorf("unknown template field(s): %s", strings.Join(unknown, ", "))
	}
	return rendered, nil
}

// OrNA substitutes "N/A" for optional business fields that were left empty,
// so their absence never fails a render.
func OrNA(value string) string {
	if strings.TrimSpace(value) == "" {
		return "N/A"
	}
	return value
}
