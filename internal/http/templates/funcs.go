// Package templates holds the server-rendered page templates and the helpers
// they call.
package templates

import (
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"
)

// FS contains the layout and every page template.
//
//go:embed *.tmpl pages/*.tmpl
var FS embed.FS

// FriendlyDateTimeLayout is the timestamp format shown on dashboards.
const FriendlyDateTimeLayout = "Jan 2, 2006 3:04 PM"

// Funcs returns the helpers available to every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"friendlyTime": friendlyTime,
		"timeTag":      timeTag,
		"truncateText": TruncateText,
		"statusClass":  StatusClass,
		"lower":        strings.ToLower,
	}
}

func asTime(ts any) time.Time {
	switch v := ts.(type) {
	case time.Time:
		return v
	case *time.Time:
		if v != nil {
			return *v
		}
	}
	return time.Time{}
}

func friendlyTime(ts any) string {
	t := asTime(ts)
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(FriendlyDateTimeLayout)
}

func timeTag(ts any) template.HTML {
	t := asTime(ts)
	if t.IsZero() {
		return ""
	}
	// #nosec G203 - built only from formatted timestamps, each escaped
	return template.HTML(fmt.Sprintf(
		"<time datetime=\"%s\">%s</time>",
		t.UTC().Format(time.RFC3339),
		template.HTMLEscapeString(friendlyTime(t)),
	))
}

// StatusClass maps a course status to a badge class.
func StatusClass(status any) string {
	switch strings.ToUpper(fmt.Sprint(status)) {
	case "PUBLISHED":
		return "badge-success"
	case "PENDING":
		return "badge-warning"
	case "REJECTED":
		return "badge-danger"
	default:
		return "badge-secondary"
	}
}

// TruncateText truncates a string to a maximum number of runes (not bytes),
// ending with an ellipsis when shortened.
func TruncateText(s string, maxLen int) string {
	if maxLen <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen > 1 {
		return string(runes[:maxLen-1]) + "…"
	}
	return string(runes[:1])
}
