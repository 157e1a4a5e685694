package ordine

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

type Field string

const (
	FieldUsername Field = "username"
	FieldEmail    Field = "email"
	FieldGender   Field = "gender"
	FieldPhone    Field = "phone"
	FieldLocation Field = "location"
	FieldMeal     Field = "meal"
	FieldDate     Field = "date"
)

// Fields lists every validated field in form order.
var Fields = []Field{FieldUsername, FieldEmail, FieldGender, FieldPhone, FieldLocation, FieldMeal, FieldDate}

type FieldResult struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

var passed = FieldResult{Valid: true}

// ValidationResult holds one entry per validated field.
type ValidationResult map[Field]FieldResult

func (r ValidationResult) Valid() bool {
	for _, res := range r {
		if !res.Valid {
			return false
		}
	}
	return true
}

// Errors returns the message of every failing field.
func (r ValidationResult) Errors() map[Field]string {
	errs := make(map[Field]string)
	for field, res := range r {
		if !res.Valid {
			errs[field] = res.Message
		}
	}
	return errs
}

// rule fails when check returns true.
type rule[T any] struct {
	check   func(T) bool
	message string
}

// firstFailure evaluates rules in order and stops at the first one that fails.
func firstFailure[T any](value T, rules []rule[T]) FieldResult {
	for _, r := range rules {
		if r.check(value) {
			return FieldResult{Message: r.message}
		}
	}
	return passed
}

var (
	usernameCharset = regexp.MustCompile(`[a-zA-Z0-9_#]`)
	leadingDigit    = regexp.MustCompile(`^[0-9]`)
	indianPhone     = regexp.MustCompile(`^\+91\d{10}$`)
)

var usernameRules = []rule[string]{
	{func(s string) bool { return s == "" }, MsgUsernameRequired},
	{func(s string) bool { return utf8.RuneCountInString(s) >= 20 }, MsgUsernameTooLong},
	{func(s string) bool { return !usernameCharset.MatchString(s) }, MsgUsernameCharset},
	{func(s string) bool { return leadingDigit.MatchString(s) }, MsgUsernameDigit},
	{func(s string) bool { return !strings.ContainsAny(s, "_#") }, MsgUsernameSymbol},
}

func ValidateUsername(username string) FieldResult {
	return firstFailure(username, usernameRules)
}

var emailRules = []rule[string]{
	{func(s string) bool { return s == "" }, MsgEmailRequired},
	{func(s string) bool { return utf8.RuneCountInString(s) > 250 }, MsgEmailTooLong},
	{func(s string) bool {
		at, dot := strings.Index(s, "@"), strings.LastIndex(s, ".")
		return at < 0 || dot < 0 || at > dot
	}, MsgEmailFormat},
	{func(s string) bool { return strings.Count(s, "@") > 1 }, MsgEmailOneAt},
	{func(s string) bool { return len(s)-strings.LastIndex(s, ".") < 4 }, MsgEmailAfterDot},
	{func(s string) bool { return len(s)-strings.Index(s, "@") < 4 }, MsgEmailAfterAt},
	{func(s string) bool {
		at, plus := strings.Index(s, "@"), strings.Index(s, "+")
		return plus > -1 && plus < at && at-plus-1 == 0
	}, MsgEmailPlusAtGap},
}

func ValidateEmail(email string) FieldResult {
	return firstFailure(email, emailRules)
}

func ValidateGender(gender Gender) FieldResult {
	if gender != Male && gender != Female {
		return FieldResult{Message: MsgGenderRequired}
	}
	return passed
}

var phoneRules = []rule[string]{
	{func(s string) bool { return s != "" && !indianPhone.MatchString(s) }, MsgPhoneFormat},
	// Unreachable while the pattern pins the length to 13; kept as a guard.
	{func(s string) bool { return len(s) > 13 }, MsgPhoneTooLong},
}

// ValidatePhone accepts an empty phone; the field is optional.
func ValidatePhone(phone string) FieldResult {
	return firstFailure(strings.TrimSpace(phone), phoneRules)
}

var locationRules = []rule[Location]{
	{func(l Location) bool { return l == LocationUnset }, MsgLocationRequired},
	{func(l Location) bool { return !l.Known() }, MsgLocationNotServed},
}

func ValidateLocation(location Location) FieldResult {
	return firstFailure(location, locationRules)
}

func ValidateMeals(meals MealSet) FieldResult {
	if meals.Len() == 0 {
		return FieldResult{Message: MsgMealRequired}
	}
	return passed
}

func ValidateDate(date string) FieldResult {
	if date == "" {
		return FieldResult{Message: MsgDateRequired}
	}
	return passed
}

// ValidateField runs the rules of a single field against the draft.
func ValidateField(field Field, draft OrderDraft) (FieldResult, error) {
	switch field {
	case FieldUsername:
		return ValidateUsername(draft.Username), nil
	case FieldEmail:
		return ValidateEmail(draft.Email), nil
	case FieldGender:
		return ValidateGender(draft.Gender), nil
	case FieldPhone:
		return ValidatePhone(draft.Phone), nil
	case FieldLocation:
		return ValidateLocation(draft.Location), nil
	case FieldMeal:
		return ValidateMeals(draft.Meals), nil
	case FieldDate:
		return ValidateDate(draft.Date), nil
	default:
		return FieldResult{}, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
}

// Validate runs every field, regardless of earlier failures.
func Validate(draft OrderDraft) ValidationResult {
	result := make(ValidationResult, len(Fields))
	for _, field := range Fields {
		// Fields only holds known fields.
		res, _ := ValidateField(field, draft)
		result[field] = res
	}
	return result
}
