package validation

// FormState is the in-memory state of one form: values plus the error
// currently shown under each field.
type FormState struct {
	form   Form
	values Values
	errors map[string]string
}

// NewFormState starts a form, optionally from a recovered draft.
func NewFormState(form Form, draft Values) *FormState {
	s := &FormState{form: form, values: Values{}, errors: map[string]string{}}
	for k, v := range draft {
		s.values[k] = v
	}
	return s
}

// Set updates field and revalidates it. Changing the type field drops errors
// of fields that are no longer required; changing the password revalidates
// the confirmation.
func (s *FormState) Set(field, value string) string {
	s.values[field] = value
	s.apply(field)

	if field == s.form.TypeField {
		required := make(map[string]struct{})
		for _, f := range s.form.RequiredFields(s.values) {
			required[f] = struct{}{}
		}
		for f := range s.errors {
			if _, ok := required[f]; !ok {
				delete(s.errors, f)
			}
		}
	}
	if field == "password" && s.values["confirm_password"] != "" {
		s.apply("confirm_password")
	}
	return s.errors[field]
}

func (s *FormState) apply(field string) {
	if msg := ValidateField(field, s.values[field], s.values); msg != "" {
		s.errors[field] = msg
	} else {
		delete(s.errors, field)
	}
}

// Value returns the current value of field.
func (s *FormState) Value(field string) string { return s.values[field] }

// Snapshot returns a copy of the values, suitable for saving as a draft.
func (s *FormState) Snapshot() Values { return s.values.Clone() }

// Errors returns a copy of the visible field errors.
func (s *FormState) Errors() map[string]string {
	out := make(map[string]string, len(s.errors))
	for k, v := range s.errors {
		out[k] = v
	}
	return out
}

// Submit runs the full validation pass and replaces the visible errors.
func (s *FormState) Submit() Result {
	res := s.form.Validate(s.values)
	s.errors = res.Map()
	return res
}

// Reset clears values and errors after a successful submit.
func (s *FormState) Reset() {
	s.values = Values{}
	s.errors = map[string]string{}
}
