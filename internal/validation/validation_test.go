package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planportal/internal/model"
)

func llpOwnerValues() Values {
	return Values{
		"login_id":          "asha.rao",
		"password":          "Secur3!pass",
		"confirm_password":  "Secur3!pass",
		"email":             "asha@example.in",
		"phone":             "+91 98765 43210",
		"full_name":         "Asha Rao",
		"address":           "12 MG Road, Shivajinagar",
		"city":              "Pune",
		"pin_code":          "411005",
		"entity_type":       string(model.EntityLLP),
		"firm_name":         "Rao Builders LLP",
		"llpin":             "AAB-1234",
		"pan":               "abcde1234f",
		"authorized_person": "Asha Rao",
	}
}

func TestValidateField(t *testing.T) {
	tests := []struct {
		field   string
		value   string
		form    Values
		wantErr bool
	}{
		{field: "email", value: "user@example.com"},
		{field: "email", value: "user@example", wantErr: true},
		{field: "phone", value: "9876543210"},
		{field: "phone", value: "+91-98765-43210"},
		{field: "phone", value: "5876543210", wantErr: true},
		{field: "pan", value: "ABCDE1234F"},
		{field: "pan", value: "ABCD1234F", wantErr: true},
		{field: "pin_code", value: "560001"},
		{field: "pin_code", value: "060001", wantErr: true},
		{field: "gstin", value: "27ABCDE1234F1Z5"},
		{field: "cin", value: "U45200MH2010PTC123456"},
		{field: "llpin", value: "AAB-1234"},
		{field: "login_id", value: "Asha", wantErr: true},
		{field: "login_id", value: "asha_rao.01"},
		{field: "council_registration_number", value: "CA/2019/12345"},
		{field: "confirm_password", value: "abc", form: Values{"password": "abc"}},
		{field: "confirm_password", value: "abd", form: Values{"password": "abc"}, wantErr: true},
		{field: "entity_type", value: string(model.EntityTrust)},
		{field: "entity_type", value: string(model.ConsultantArchitect), wantErr: true},
		{field: "consultant_type", value: string(model.ConsultantArchitect)},
		{field: "unlisted_field", value: "anything"},
		{field: "email", value: "   "},
	}

	for _, tt := range tests {
		t.Run(tt.field+"="+tt.value, func(t *testing.T) {
			msg := ValidateField(tt.field, tt.value, tt.form)
			if tt.wantErr {
				assert.NotEmpty(t, msg)
			} else {
				assert.Empty(t, msg)
			}
		})
	}
}

func TestForm_RequiredFieldsFollowEntityType(t *testing.T) {
	form, err := FormFor(OwnerRegistration)
	require.NoError(t, err)

	values := llpOwnerValues()
	llp := form.RequiredFields(values)
	assert.Contains(t, llp, "llpin")
	assert.NotContains(t, llp, "cin")

	values["entity_type"] = string(model.EntityPrivateLimited)
	pvt := form.RequiredFields(values)
	assert.Contains(t, pvt, "cin")
	assert.NotContains(t, pvt, "llpin")

	values["entity_type"] = ""
	assert.Equal(t, form.Base, form.RequiredFields(values))
}

func TestForm_Validate(t *testing.T) {
	form, _ := FormFor(OwnerRegistration)

	t.Run("complete llp form", func(t *testing.T) {
		res := form.Validate(llpOwnerValues())
		assert.True(t, res.Valid(), res.Map())
		assert.NoError(t, res.Err())
		assert.Equal(t, "", res.FirstSection())
	})

	t.Run("fields no longer required do not block", func(t *testing.T) {
		values := llpOwnerValues()
		values["entity_type"] = string(model.EntityIndividual)
		values["llpin"] = "not-an-llpin"
		assert.True(t, form.Validate(values).Valid())
	})

	t.Run("first failure decides section", func(t *testing.T) {
		values := llpOwnerValues()
		values["email"] = "broken"
		values["llpin"] = ""
		res := form.Validate(values)
		require.Len(t, res.Errors, 2)
		assert.Equal(t, SectionContact, res.FirstSection())
		assert.Equal(t, "LLPIN is required", res.Map()["llpin"])

		var verr *Error
		assert.ErrorAs(t, res.Err(), &verr)
	})

	t.Run("consultant variant", func(t *testing.T) {
		cform, _ := FormFor(ConsultantRegistration)
		values := llpOwnerValues()
		delete(values, "entity_type")
		values["consultant_type"] = string(model.ConsultantArchitect)
		res := cform.Validate(values)
		assert.Contains(t, res.Map(), "council_registration_number")
		assert.Equal(t, SectionEntity, res.FirstSection())
	})
}

func TestForm_ValidateProfileOptionalFields(t *testing.T) {
	form, err := FormFor(ProfileForm)
	require.NoError(t, err)

	base := Values{"full_name": "Asha Rao", "email": "asha@example.in", "phone": "9876543210"}
	assert.True(t, form.Validate(base).Valid(), "empty optional fields pass")

	withPin := base.Clone()
	withPin["pin_code"] = "56001"
	res := form.Validate(withPin)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "pin_code", res.Errors[0].Field)
	assert.Equal(t, SectionPersonal, res.FirstSection())
}

func TestFormFor_Unknown(t *testing.T) {
	_, err := FormFor("tenant_registration")
	assert.ErrorIs(t, err, ErrUnknownForm)

	f, err := FormForRole(model.RoleDeveloper)
	require.NoError(t, err)
	assert.Equal(t, DeveloperRegistration, f.Key)
}

func TestPasswordStrength(t *testing.T) {
	tests := []struct {
		pw   string
		want string
	}{
		{"", "Very Weak"},
		{"abc", "Very Weak"},
		{"abcdefgh", "Weak"},
		{"Abcdefgh", "Fair"},
		{"Abcdefg1", "Good"},
		{"Abcdef1!", "Strong"},
		{"A1!", "Fair"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PasswordStrength(tt.pw), tt.pw)
	}
}

func TestPasswordStrength_MonotonicInScore(t *testing.T) {
	order := map[string]int{"Very Weak": 0, "Weak": 1, "Fair": 2, "Good": 3, "Strong": 4}
	samples := []string{"", "a", "aB", "aB1", "aB1!", "aB1!xxxx", "xxxxxxxx", "XXXXXXXX1", "x!"}
	for _, a := range samples {
		for _, b := range samples {
			if PasswordScore(a) < PasswordScore(b) {
				assert.LessOrEqual(t, order[PasswordStrength(a)], order[PasswordStrength(b)], "%q vs %q", a, b)
			}
		}
	}
}

func TestGeneratePassword_SatisfiesAllRules(t *testing.T) {
	for i := 0; i < 200; i++ {
		pw, err := GeneratePassword(0)
		require.NoError(t, err)
		assert.Len(t, pw, 12)
		assert.Empty(t, PasswordErrors(pw), pw)
		assert.Equal(t, "Strong", PasswordStrength(pw))
	}

	pw, err := GeneratePassword(20)
	require.NoError(t, err)
	assert.Len(t, pw, 20)
}

func TestDeclaration(t *testing.T) {
	var d Declaration

	assert.False(t, d.CanAccept())
	assert.False(t, d.Accept(true), "checkbox stays unchecked until scrolled")
	assert.ErrorIs(t, d.Err(), ErrDeclarationNotAccepted)

	d.Scroll(100, 300, 900)
	assert.False(t, d.CanAccept())

	d.Scroll(600, 300, 900)
	assert.True(t, d.CanAccept())
	assert.True(t, d.Accept(true))
	assert.NoError(t, d.Err())

	forged := Declaration{Accepted: true}
	assert.ErrorIs(t, forged.Err(), ErrDeclarationNotAccepted)
}

func TestFormState(t *testing.T) {
	form, _ := FormFor(OwnerRegistration)
	s := NewFormState(form, Values{"entity_type": string(model.EntityLLP)})

	assert.NotEmpty(t, s.Set("llpin", "bad"))
	assert.Contains(t, s.Errors(), "llpin")

	s.Set("entity_type", string(model.EntityIndividual))
	assert.NotContains(t, s.Errors(), "llpin")

	s.Set("password", "Secur3!pass")
	assert.NotEmpty(t, s.Set("confirm_password", "Secur3!pas"))
	s.Set("password", "Secur3!pas")
	assert.NotContains(t, s.Errors(), "confirm_password")

	snap := s.Snapshot()
	snap["city"] = "mutated"
	assert.Equal(t, "", s.Value("city"))

	res := s.Submit()
	assert.False(t, res.Valid())
	assert.Equal(t, SectionAccount, res.FirstSection())
	assert.Equal(t, res.Map(), s.Errors())

	s.Reset()
	assert.Empty(t, s.Errors())
	assert.Empty(t, s.Snapshot())
}
