package validation

import (
	"errors"
	"fmt"
	"strings"

	"planportal/internal/model"
)

// FormKey identifies a form; it is also the draft key.
type FormKey string

const (
	OwnerRegistration      FormKey = "owner_registration"
	ConsultantRegistration FormKey = "consultant_registration"
	DeveloperRegistration  FormKey = "developer_registration"
	ProfileForm            FormKey = "profile"
)

// Form sections, in the order they appear on screen.
const (
	SectionAccount   = "account"
	SectionContact   = "contact"
	SectionPersonal  = "personal"
	SectionEntity    = "entity"
	SectionDocuments = "documents"
)

var ErrUnknownForm = errors.New("unknown form")

// Form describes one form: its base fields and, for registration forms,
// which field selects the metadata variant.
type Form struct {
	Key       FormKey
	Role      model.Role
	TypeField string
	Base      []string
	// Optional fields are validated only when they carry a value.
	Optional []string
}

var sectionOf = map[string]string{
	"login_id":         SectionAccount,
	"password":         SectionAccount,
	"confirm_password": SectionAccount,
	"email":            SectionContact,
	"phone":            SectionContact,
	"full_name":        SectionPersonal,
	"address":          SectionPersonal,
	"city":             SectionPersonal,
	"pin_code":         SectionPersonal,
}

var accountFields = []string{"login_id", "password", "confirm_password"}
var contactFields = []string{"email", "phone"}
var personalFields = []string{"full_name", "address", "city", "pin_code"}

func concat(parts ...[]string) []string {
	var out []string
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

var forms = map[FormKey]Form{
	OwnerRegistration: {
		Key: OwnerRegistration, Role: model.RoleOwner, TypeField: "entity_type",
		Base: concat(accountFields, contactFields, personalFields, []string{"entity_type"}),
	},
	DeveloperRegistration: {
		Key: DeveloperRegistration, Role: model.RoleDeveloper, TypeField: "entity_type",
		Base: concat(accountFields, contactFields, personalFields, []string{"entity_type"}),
	},
	ConsultantRegistration: {
		Key: ConsultantRegistration, Role: model.RoleConsultant, TypeField: "consultant_type",
		Base: concat(accountFields, contactFields, personalFields, []string{"consultant_type"}),
	},
	ProfileForm: {
		Key:      ProfileForm,
		Base:     concat([]string{"full_name"}, contactFields),
		Optional: []string{"address", "city", "pin_code"},
	},
}

// FormFor returns the definition of key.
func FormFor(key FormKey) (Form, error) {
	f, ok := forms[key]
	if !ok {
		return Form{}, fmt.Errorf("%w: %s", ErrUnknownForm, key)
	}
	return f, nil
}

// FormForRole returns the registration form of role.
func FormForRole(role model.Role) (Form, error) {
	for _, f := range forms {
		if f.Role == role && f.Role != "" {
			return f, nil
		}
	}
	return Form{}, fmt.Errorf("%w: role %s", ErrUnknownForm, role)
}

// Variant resolves the metadata variant selected in values.
func (f Form) Variant(values Values) (model.Variant, error) {
	if f.TypeField == "" {
		return model.Variant{}, model.ErrUnknownVariant
	}
	return model.VariantFor(f.Role, values.Get(f.TypeField))
}

// RequiredFields returns the base fields followed by the fields of the
// selected variant. An unset or unknown type contributes nothing.
func (f Form) RequiredFields(values Values) []string {
	out := append([]string{}, f.Base...)
	if v, err := f.Variant(values); err == nil {
		out = append(out, v.Fields...)
	}
	return out
}

// RequiredDocuments returns the documents the selected variant needs.
func (f Form) RequiredDocuments(values Values) []model.DocumentPurpose {
	if v, err := f.Variant(values); err == nil {
		return append([]model.DocumentPurpose{}, v.Documents...)
	}
	return nil
}

// Section returns the form section field is rendered in.
func (f Form) Section(field string) string {
	if s, ok := sectionOf[field]; ok {
		return s
	}
	return SectionEntity
}

// FieldError is a validation failure on one field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Section string `json:"section"`
}

// Result is the outcome of a whole-form validation pass. Errors are in
// form order, so the first one decides the section to scroll to.
type Result struct {
	Errors []FieldError `json:"errors"`
}

// Valid reports whether no field failed.
func (r Result) Valid() bool { return len(r.Errors) == 0 }

// FirstSection is the section of the first failing field, or "".
func (r Result) FirstSection() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Section
}

// Map returns field -> message.
func (r Result) Map() map[string]string {
	out := make(map[string]string, len(r.Errors))
	for _, e := range r.Errors {
		out[e.Field] = e.Message
	}
	return out
}

// Err returns the result as an error, or nil when valid.
func (r Result) Err() error {
	if r.Valid() {
		return nil
	}
	return &Error{Result: r}
}

// Error carries a failed Result through error returns.
type Error struct {
	Result Result
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Result.Errors))
	for _, fe := range e.Result.Errors {
		msgs = append(msgs, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Validate checks every required field in form order, then the optional
// fields that carry a value. Fields that are not required under the current
// type are ignored even when they still carry stale values.
func (f Form) Validate(values Values) Result {
	var res Result
	for _, field := range f.RequiredFields(values) {
		if msg := f.checkRequired(field, values); msg != "" {
			res.Errors = append(res.Errors, FieldError{Field: field, Message: msg, Section: f.Section(field)})
		}
	}
	for _, field := range f.Optional {
		if msg := ValidateField(field, values.Get(field), values); msg != "" {
			res.Errors = append(res.Errors, FieldError{Field: field, Message: msg, Section: f.Section(field)})
		}
	}
	return res
}

func (f Form) checkRequired(field string, values Values) string {
	v := values.Get(field)
	if v == "" {
		return Label(field) + " is required"
	}
	return ValidateField(field, v, values)
}
