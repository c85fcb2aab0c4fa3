package notification

import (
	"strings"

	"maintenance-records-backend/internal/parse"
)

const emptyLabel = "-"

var priorityLabels = map[string]string{
	"LOW":    "Low",
	"MEDIUM": "Medium",
	"HIGH":   "High",
}

var categoryLabels = map[string]string{
	"ELECTRICAL":    "Electrical",
	"MECHANICAL":    "Mechanical",
	"PNEUMATIC":     "Pneumatic",
	"PROCESS":       "Process",
	"ELECTRONIC":    "Electronics",
	"AUTOMATION":    "Automation",
	"BUILDING":      "Building & facilities",
	"TOOLING":       "Tooling",
	"REFRIGERATION": "Refrigeration",
	"SETUP":         "Setup / changeover",
	"HYDRAULIC":     "Hydraulic",
}

var shiftLabels = map[string]string{
	"FIRST":  "1st shift",
	"SECOND": "2nd shift",
	"THIRD":  "3rd shift",
}

// PriorityLabel returns the display label for a priority value.
func PriorityLabel(value string) string { return lookupLabel(value, priorityLabels) }

// CategoryLabel returns the display label for a category value.
func CategoryLabel(value string) string { return lookupLabel(value, categoryLabels) }

// ShiftLabel returns the display label for a shift value.
func ShiftLabel(value string) string { return lookupLabel(value, shiftLabels) }

// lookupLabel maps value through table. Empty values render as "-" and unknown ones are humanized.
func lookupLabel(value string, table map[string]string) string {
	if strings.TrimSpace(value) == "" {
		return emptyLabel
	}
	if label, ok := table[strings.ToUpper(value)]; ok {
		return label
	}
	return parse.Humanize(value)
}
