package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/yigit/volunteerhub/internal/app/models"
	"github.com/yigit/volunteerhub/internal/pkg/apperrors"
)

// Opportunity form field names, as used in error maps and the per-field endpoint
const (
	FieldTitle         = "title"
	FieldShortSummary  = "shortSummary"
	FieldDescription   = "description"
	FieldMode          = "mode"
	FieldDateType      = "dateType"
	FieldStartDate     = "startDate"
	FieldEndDate       = "endDate"
	FieldAddress       = "address"
	FieldCity          = "city"
	FieldState         = "state"
	FieldCountry       = "country"
	FieldMaxVolunteers = "maxVolunteers"
	FieldContactName   = "contactName"
	FieldContactEmail  = "contactEmail"
	FieldContactPhone  = "contactPhone"
	FieldOsrmLink      = "osrmLink"
)

// Fields lists every validated field in the order ValidateForm runs them
var Fields = []string{
	FieldTitle, FieldShortSummary, FieldDescription,
	FieldMode, FieldDateType, FieldStartDate, FieldEndDate,
	FieldAddress, FieldCity, FieldState, FieldCountry,
	FieldMaxVolunteers,
	FieldContactName, FieldContactEmail, FieldContactPhone,
	FieldOsrmLink,
}

// IsKnownField reports whether name has a validator
func IsKnownField(name string) bool {
	for _, f := range Fields {
		if f == name {
			return true
		}
	}
	return false
}

// DateLayout is the calendar date format accepted by the form
const DateLayout = "2006-01-02"

var urlValidator = validator.New()

// OpportunityForm is the candidate payload of an opportunity, full or partial.
// Empty strings and absent values are both treated as missing.
type OpportunityForm struct {
	Title        string                 `json:"title"`
	ShortSummary string                 `json:"shortSummary"`
	Description  string                 `json:"description"`
	Mode         models.OpportunityMode `json:"mode"`
	DateType     models.DateType        `json:"dateType"`
	StartDate    string                 `json:"startDate"`
	EndDate      string                 `json:"endDate"`
	StartTime    string                 `json:"startTime"`
	EndTime      string                 `json:"endTime"`

	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	Country  string `json:"country"`
	OsrmLink string `json:"osrmLink"`

	MaxVolunteers    *int     `json:"maxVolunteers"`
	Skills           []string `json:"skills"`
	Causes           []string `json:"causes"`
	Languages        []string `json:"languages"`
	GenderPreference string   `json:"genderPreference"`

	ContactName  string `json:"contactName"`
	ContactEmail string `json:"contactEmail"`
	ContactPhone string `json:"contactPhone"`
}

// Result is the aggregate verdict of ValidateForm
type Result struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors"`
}

// Err converts an invalid result into a ValidationFailed error
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return apperrors.NewValidationError(r.Errors)
}

// ValidateField validates one field of form using DefaultRules
func ValidateField(name string, form *OpportunityForm, now time.Time) string {
	return DefaultRules.ValidateField(name, form, now)
}

// ValidateForm runs every field validator using DefaultRules
func ValidateForm(form *OpportunityForm, now time.Time) Result {
	return DefaultRules.ValidateForm(form, now)
}

// ValidateForm runs every field validator and collects the messages
func (r Rules) ValidateForm(form *OpportunityForm, now time.Time) Result {
	errs := make(map[string]string)
	for _, field := range Fields {
		if msg := r.ValidateField(field, form, now); msg != "" {
			errs[field] = msg
		}
	}
	return Result{Valid: len(errs) == 0, Errors: errs}
}

// ValidateField returns the error message for one field, or "" when it is valid.
// Some fields depend on siblings in form (location on mode, dates on dateType).
func (r Rules) ValidateField(name string, form *OpportunityForm, now time.Time) string {
	if form == nil {
		form = &OpportunityForm{}
	}

	switch name {
	case FieldTitle:
		return NewStringValidation("Title", form.Title).
			WithMinLength(r.TitleMinLength).
			WithMaxLength(r.TitleMaxLength).
			Validate()
	case FieldShortSummary:
		return NewStringValidation("Short summary", form.ShortSummary).
			WithMinLength(r.SummaryMinLength).
			WithMaxLength(r.SummaryMaxLength).
			Validate()
	case FieldDescription:
		return NewStringValidation("Description", form.Description).
			WithMinLength(r.DescriptionMinLength).
			WithMaxLength(r.DescriptionMaxLength).
			Validate()
	case FieldMode:
		return validateMode(form.Mode)
	case FieldDateType:
		return validateDateType(form.DateType)
	case FieldStartDate:
		return validateStartDate(form, now)
	case FieldEndDate:
		return validateEndDate(form, now)
	case FieldAddress:
		return validateLocation("Address", form.Address, form.Mode)
	case FieldCity:
		return validateLocation("City", form.City, form.Mode)
	case FieldState:
		return validateLocation("State", form.State, form.Mode)
	case FieldCountry:
		return validateLocation("Country", form.Country, form.Mode)
	case FieldMaxVolunteers:
		return NewNumericValidation("Maximum volunteers", form.MaxVolunteers).
			WithRange(r.MinVolunteers, r.MaxVolunteers).
			Validate()
	case FieldContactName:
		return NewStringValidation("Contact name", form.ContactName).
			WithMinLength(r.ContactNameMinLength).
			Validate()
	case FieldContactEmail:
		return NewStringValidation("Contact email", form.ContactEmail).
			WithPattern(CompiledPatterns.Email, "Please enter a valid email address").
			Validate()
	case FieldContactPhone:
		if msg := NewStringValidation("Contact phone", form.ContactPhone).
			WithPattern(CompiledPatterns.Phone, "Phone number may only contain digits, spaces, -, + and parentheses").
			Validate(); msg != "" {
			return msg
		}
		if countDigits(form.ContactPhone) < r.PhoneMinDigits {
			return fmt.Sprintf("Phone number must contain at least %d digits", r.PhoneMinDigits)
		}
		return ""
	case FieldOsrmLink:
		return validateURL(form.OsrmLink)
	default:
		return ""
	}
}

func validateMode(mode models.OpportunityMode) string {
	if strings.TrimSpace(string(mode)) == "" {
		return "Mode is required"
	}
	if !mode.IsValid() {
		return "Mode must be one of onsite, remote, hybrid"
	}
	return ""
}

func validateDateType(dateType models.DateType) string {
	if strings.TrimSpace(string(dateType)) == "" {
		return "Date type is required"
	}
	if !dateType.IsValid() {
		return "Date type must be one of single_day, multi_day, ongoing"
	}
	return ""
}

// validateLocation only constrains location fields when the mode needs a venue
func validateLocation(label, value string, mode models.OpportunityMode) string {
	if !mode.RequiresLocation() {
		return ""
	}
	if strings.TrimSpace(value) == "" {
		return label + " is required for onsite and hybrid opportunities"
	}
	return ""
}

func validateURL(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if err := urlValidator.Var(value, "url"); err != nil {
		return "Please enter a valid URL"
	}
	return ""
}

// validateStartDate rejects starts before now. A bare calendar date is compared
// by day, so today is accepted; a timestamp is compared as an instant.
func validateStartDate(form *OpportunityForm, now time.Time) string {
	start, present, err := ParseFormDate(form.StartDate, now.Location())
	if err != nil {
		return "Start date is not a valid date"
	}
	if !present {
		switch form.DateType {
		case models.DateTypeSingleDay:
			return "Start date is required for single-day opportunities"
		case models.DateTypeMultiDay:
			return "Start date is required for multi-day opportunities"
		default:
			return ""
		}
	}
	if isPast(form.StartDate, start, now) {
		return "Start date cannot be in the past"
	}
	return ""
}

func validateEndDate(form *OpportunityForm, now time.Time) string {
	end, present, err := ParseFormDate(form.EndDate, now.Location())

	switch form.DateType {
	case models.DateTypeSingleDay:
		if strings.TrimSpace(form.EndDate) != "" {
			return "End date is not allowed for single-day opportunities"
		}
		return ""
	case models.DateTypeMultiDay:
		if err != nil {
			return "End date is not a valid date"
		}
		if !present {
			return "End date is required for multi-day opportunities"
		}
	default:
		if err != nil {
			return "End date is not a valid date"
		}
		if !present {
			return ""
		}
	}

	start, hasStart, startErr := ParseFormDate(form.StartDate, now.Location())
	if !hasStart || startErr != nil {
		if form.DateType == models.DateTypeOngoing && isPast(form.EndDate, end, now) {
			return "End date cannot be in the past"
		}
		return ""
	}
	if !end.After(start) {
		return "End date must be after start date"
	}
	return ""
}

// ParseFormDate parses a calendar date or an RFC 3339 timestamp. The second
// return value is false when the input is empty.
func ParseFormDate(value string, loc *time.Location) (time.Time, bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.ParseInLocation(DateLayout, value, loc); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, false, err
	}
	return t.In(loc), true, nil
}

// isPast compares a parsed form date with now at the precision the raw input
// carries: by calendar day for YYYY-MM-DD, by instant otherwise.
func isPast(raw string, t, now time.Time) bool {
	if _, err := time.Parse(DateLayout, strings.TrimSpace(raw)); err == nil {
		return BeforeDay(t, now)
	}
	return t.Before(now)
}

// BeforeDay reports whether t falls on a calendar day before now's day,
// both read in now's location.
func BeforeDay(t, now time.Time) bool {
	return StartOfDay(t, now.Location()).Before(StartOfDay(now, now.Location()))
}

// StartOfDay truncates t to midnight in loc
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
