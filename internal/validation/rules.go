// Package validation holds the shared rule table used by every registration
// and profile form, plus password and declaration checks.
package validation

import (
	"regexp"
	"strings"
	"unicode"

	"planportal/internal/model"
)

// Values is a form snapshot keyed by field name.
type Values map[string]string

// Get returns the trimmed value of field.
func (v Values) Get(field string) string {
	return strings.TrimSpace(v[field])
}

// Clone returns an independent copy.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Rule validates one candidate value against the whole form.
// It returns a user-facing message, or "" when the value is acceptable.
// Rules are only consulted for non-empty values; emptiness is checked by
// the required-field pass.
type Rule func(field, value string, form Values) string

// RuleTable maps a field key to its validator.
type RuleTable map[string]Rule

var (
	emailRe        = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]{2,}$`)
	phoneRe        = regexp.MustCompile(`^[6-9][0-9]{9}$`)
	panRe          = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	pinRe          = regexp.MustCompile(`^[1-9][0-9]{5}$`)
	gstinRe        = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)
	cinRe          = regexp.MustCompile(`^[LU][0-9]{5}[A-Z]{2}[0-9]{4}[A-Z]{3}[0-9]{6}$`)
	llpinRe        = regexp.MustCompile(`^[A-Z]{3}-[0-9]{4}$`)
	loginIDRe      = regexp.MustCompile(`^[a-z0-9._]{4,30}$`)
	nameRe         = regexp.MustCompile(`^[A-Za-z][A-Za-z .'-]{1,99}$`)
	councilRegRe   = regexp.MustCompile(`^CA/[0-9]{4}/[0-9]{4,6}$`)
	reraRe         = regexp.MustCompile(`^[A-Z0-9/-]{6,40}$`)
	membershipNoRe = regexp.MustCompile(`^[A-Z0-9/-]{3,30}$`)
)

func pattern(re *regexp.Regexp, msg string) Rule {
	return func(_, value string, _ Values) string {
		if !re.MatchString(value) {
			return msg
		}
		return ""
	}
}

func upperPattern(re *regexp.Regexp, msg string) Rule {
	return func(_, value string, _ Values) string {
		if !re.MatchString(strings.ToUpper(value)) {
			return msg
		}
		return ""
	}
}

func minLen(n int, msg string) Rule {
	return func(_, value string, _ Values) string {
		if len([]rune(value)) < n {
			return msg
		}
		return ""
	}
}

func oneOf(options func() []string, msg string) Rule {
	return func(_, value string, _ Values) string {
		for _, o := range options() {
			if o == value {
				return ""
			}
		}
		return msg
	}
}

// Rules is the rule table shared by all forms.
var Rules = RuleTable{
	"email": pattern(emailRe, "Enter a valid email address"),
	"phone": func(_, value string, _ Values) string {
		if !phoneRe.MatchString(NormalizePhone(value)) {
			return "Enter a valid 10-digit mobile number"
		}
		return ""
	},
	"login_id": pattern(loginIDRe, "Login ID must be 4-30 characters: lowercase letters, digits, dot or underscore"),
	"password": func(_, value string, _ Values) string {
		if errs := PasswordErrors(value); len(errs) > 0 {
			return errs[0]
		}
		return ""
	},
	"confirm_password": func(_, value string, form Values) string {
		if value != form["password"] {
			return "Passwords do not match"
		}
		return ""
	},
	"full_name":                   pattern(nameRe, "Enter a valid name"),
	"authorized_person":           pattern(nameRe, "Enter a valid name"),
	"address":                     minLen(10, "Address must be at least 10 characters"),
	"city":                        pattern(nameRe, "Enter a valid city"),
	"pin_code":                    pattern(pinRe, "Enter a valid 6-digit PIN code"),
	"pan":                         upperPattern(panRe, "Enter a valid PAN (e.g. ABCDE1234F)"),
	"gstin":                       upperPattern(gstinRe, "Enter a valid GSTIN"),
	"cin":                         upperPattern(cinRe, "Enter a valid CIN"),
	"llpin":                       upperPattern(llpinRe, "Enter a valid LLPIN (e.g. AAB-1234)"),
	"firm_name":                   minLen(2, "Enter the firm name"),
	"company_name":                minLen(2, "Enter the company name"),
	"organization_name":           minLen(2, "Enter the organization name"),
	"department_name":             minLen(2, "Enter the department name"),
	"designation":                 minLen(2, "Enter the designation"),
	"qualification":               minLen(2, "Enter the qualification"),
	"registration_number":         upperPattern(membershipNoRe, "Enter a valid registration number"),
	"license_number":              upperPattern(membershipNoRe, "Enter a valid license number"),
	"itpi_membership_number":      upperPattern(membershipNoRe, "Enter a valid ITPI membership number"),
	"council_registration_number": upperPattern(councilRegRe, "Enter a valid Council of Architecture number (e.g. CA/2019/12345)"),
	"rera_registration_number":    upperPattern(reraRe, "Enter a valid RERA registration number"),
	"entity_type": oneOf(func() []string { return model.KindsFor(model.RoleOwner) },
		"Select a valid entity type"),
	"consultant_type": oneOf(func() []string { return model.KindsFor(model.RoleConsultant) },
		"Select a valid consultant type"),
}

// NormalizePhone strips spaces, dashes and an Indian country prefix.
func NormalizePhone(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' {
			return -1
		}
		return r
	}, s)
	s = strings.TrimPrefix(s, "+91")
	if len(s) == 11 && s[0] == '0' {
		s = s[1:]
	}
	return s
}

// ValidateField runs the rule for field. Fields without a rule accept any
// value up to 500 characters.
func ValidateField(field, value string, form Values) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if rule, ok := Rules[field]; ok {
		return rule(field, value, form)
	}
	if len([]rune(value)) > 500 {
		return Label(field) + " is too long"
	}
	return ""
}

var acronyms = map[string]string{
	"pan":                      "PAN",
	"gstin":                    "GSTIN",
	"cin":                      "CIN",
	"llpin":                    "LLPIN",
	"pin_code":                 "PIN code",
	"login_id":                 "Login ID",
	"rera_registration_number": "RERA registration number",
	"itpi_membership_number":   "ITPI membership number",
}

// Label turns a field key into the name shown in messages.
func Label(field string) string {
	if l, ok := acronyms[field]; ok {
		return l
	}
	s := strings.ReplaceAll(field, "_", " ")
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
