package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Validation rule patterns
var (
	// EmailPattern requires exactly one @ and a dotted domain
	EmailPattern = `^[^\s@]+@[^\s@]+\.[^\s@]+$`

	// PhonePattern allows digits, spaces, dashes, plus signs and parentheses
	PhonePattern = `^[\d\s\-+()]+$`
)

// CompiledPatterns caches compiled regex patterns for better performance
var CompiledPatterns = struct {
	Email *regexp.Regexp
	Phone *regexp.Regexp
}{
	Email: regexp.MustCompile(EmailPattern),
	Phone: regexp.MustCompile(PhonePattern),
}

// Rules holds every threshold used by the opportunity validators. ValidateField and
// ValidateForm read the same Rules value so the two call paths always agree.
type Rules struct {
	TitleMinLength       int
	TitleMaxLength       int
	SummaryMinLength     int
	SummaryMaxLength     int
	DescriptionMinLength int
	DescriptionMaxLength int
	ContactNameMinLength int
	PhoneMinDigits       int
	MinVolunteers        int
	MaxVolunteers        int
}

// DefaultRules are the thresholds the platform ships with.
var DefaultRules = Rules{
	TitleMinLength:       3,
	TitleMaxLength:       200,
	SummaryMinLength:     10,
	SummaryMaxLength:     500,
	DescriptionMinLength: 50,
	DescriptionMaxLength: 5000,
	ContactNameMinLength: 2,
	PhoneMinDigits:       10,
	MinVolunteers:        1,
	MaxVolunteers:        10000,
}

// StringValidation checks a trimmed string against length and pattern limits
// and reports the first violated limit as a user-facing message.
type StringValidation struct {
	Label    string
	Value    string
	MinLen   int
	MaxLen   int
	Required bool
	Pattern  *regexp.Regexp
	// PatternMessage is returned when Pattern does not match
	PatternMessage string
}

// NewStringValidation creates a new required string validation
func NewStringValidation(label, value string) *StringValidation {
	return &StringValidation{
		Label:    label,
		Value:    strings.TrimSpace(value),
		Required: true,
	}
}

// WithMinLength sets minimum length
func (v *StringValidation) WithMinLength(min int) *StringValidation {
	v.MinLen = min
	return v
}

// WithMaxLength sets maximum length
func (v *StringValidation) WithMaxLength(max int) *StringValidation {
	v.MaxLen = max
	return v
}

// WithPattern sets regex pattern and the message used when it does not match
func (v *StringValidation) WithPattern(pattern *regexp.Regexp, message string) *StringValidation {
	v.Pattern = pattern
	v.PatternMessage = message
	return v
}

// WithRequired sets if field is required
func (v *StringValidation) WithRequired(required bool) *StringValidation {
	v.Required = required
	return v
}

// Validate returns an empty string when the value passes
func (v *StringValidation) Validate() string {
	if v.Value == "" {
		if v.Required {
			return v.Label + " is required"
		}
		return ""
	}

	length := utf8.RuneCountInString(v.Value)
	if v.MinLen > 0 && length < v.MinLen {
		return fmt.Sprintf("%s must be at least %d characters", v.Label, v.MinLen)
	}
	if v.MaxLen > 0 && length > v.MaxLen {
		return fmt.Sprintf("%s must be at most %d characters", v.Label, v.MaxLen)
	}

	if v.Pattern != nil && !v.Pattern.MatchString(v.Value) {
		return v.PatternMessage
	}

	return ""
}

// NumericValidation checks an optional integer against an inclusive range
type NumericValidation struct {
	Label string
	Value *int
	Min   int
	Max   int
}

// NewNumericValidation creates a new numeric validation
func NewNumericValidation(label string, value *int) *NumericValidation {
	return &NumericValidation{Label: label, Value: value}
}

// WithRange sets the inclusive bounds
func (v *NumericValidation) WithRange(min, max int) *NumericValidation {
	v.Min = min
	v.Max = max
	return v
}

// Validate returns an empty string when the value passes
func (v *NumericValidation) Validate() string {
	if v.Value == nil {
		return v.Label + " is required"
	}
	if *v.Value < v.Min || *v.Value > v.Max {
		return fmt.Sprintf("%s must be between %d and %d", v.Label, v.Min, v.Max)
	}
	return ""
}

// countDigits counts the decimal digits in s
func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
