package model

import (
	"errors"
	"fmt"
	"sort"
)

// Role is the portal role a registered user acts under.
type Role string

const (
	RoleOwner      Role = "owner"
	RoleConsultant Role = "consultant"
	RoleDeveloper  Role = "developer"
)

// EntityType is the legal form of an owner or developer.
type EntityType string

const (
	EntityIndividual     EntityType = "individual"
	EntityProprietorship EntityType = "proprietorship"
	EntityPartnership    EntityType = "partnership"
	EntityLLP            EntityType = "llp"
	EntityPrivateLimited EntityType = "private_limited"
	EntityPublicLimited  EntityType = "public_limited"
	EntityTrust          EntityType = "trust_society"
	EntityGovernment     EntityType = "government"
)

// ConsultantType is the professional category of a consultant.
type ConsultantType string

const (
	ConsultantArchitect          ConsultantType = "architect"
	ConsultantStructuralEngineer ConsultantType = "structural_engineer"
	ConsultantTownPlanner        ConsultantType = "town_planner"
	ConsultantLicensedSurveyor   ConsultantType = "licensed_surveyor"
	ConsultantEngineer           ConsultantType = "engineer"
)

// DocumentPurpose names what an uploaded file is for. It is also the
// second segment of the object storage key.
type DocumentPurpose string

const (
	DocPhoto                    DocumentPurpose = "photo"
	DocSignature                DocumentPurpose = "signature"
	DocLetterhead               DocumentPurpose = "letterhead"
	DocCertificate              DocumentPurpose = "certificate"
	DocPANCard                  DocumentPurpose = "pan_card"
	DocIncorporationCertificate DocumentPurpose = "incorporation_certificate"
	DocLLPAgreement             DocumentPurpose = "llp_agreement"
	DocPartnershipDeed          DocumentPurpose = "partnership_deed"
	DocTrustDeed                DocumentPurpose = "trust_deed"
	DocRegistrationCertificate  DocumentPurpose = "registration_certificate"
	DocAuthorizationLetter      DocumentPurpose = "authorization_letter"
	DocLicense                  DocumentPurpose = "license"
	DocLetterheadTemplate       DocumentPurpose = "letterhead_template"
)

var knownPurposes = map[DocumentPurpose]struct{}{
	DocPhoto: {}, DocSignature: {}, DocLetterhead: {}, DocCertificate: {}, DocPANCard: {},
	DocIncorporationCertificate: {}, DocLLPAgreement: {}, DocPartnershipDeed: {}, DocTrustDeed: {},
	DocRegistrationCertificate: {}, DocAuthorizationLetter: {}, DocLicense: {}, DocLetterheadTemplate: {},
}

// Valid reports whether p is a purpose the portal stores files for.
func (p DocumentPurpose) Valid() bool {
	_, ok := knownPurposes[p]
	return ok
}

var (
	ErrUnknownVariant = errors.New("unknown role/type combination")
	ErrUndeclaredKey  = errors.New("field not declared by variant")
)

// Variant is one arm of the metadata union: the fields and documents a
// given role + entity/consultant type must provide.
type Variant struct {
	Role      Role
	Kind      string
	Fields    []string
	Documents []DocumentPurpose
}

type variantKey struct {
	role Role
	kind string
}

var entityVariants = map[EntityType]Variant{
	EntityIndividual: {
		Fields:    []string{"pan"},
		Documents: []DocumentPurpose{DocPANCard},
	},
	EntityProprietorship: {
		Fields:    []string{"firm_name", "pan", "gstin"},
		Documents: []DocumentPurpose{DocPANCard, DocRegistrationCertificate},
	},
	EntityPartnership: {
		Fields:    []string{"firm_name", "pan", "authorized_person"},
		Documents: []DocumentPurpose{DocPANCard, DocPartnershipDeed},
	},
	EntityLLP: {
		Fields:    []string{"firm_name", "llpin", "pan", "authorized_person"},
		Documents: []DocumentPurpose{DocLLPAgreement, DocIncorporationCertificate, DocPANCard},
	},
	EntityPrivateLimited: {
		Fields:    []string{"company_name", "cin", "pan", "authorized_person"},
		Documents: []DocumentPurpose{DocIncorporationCertificate, DocPANCard, DocAuthorizationLetter},
	},
	EntityPublicLimited: {
		Fields:    []string{"company_name", "cin", "pan", "authorized_person"},
		Documents: []DocumentPurpose{DocIncorporationCertificate, DocPANCard, DocAuthorizationLetter},
	},
	EntityTrust: {
		Fields:    []string{"organization_name", "registration_number", "pan", "authorized_person"},
		Documents: []DocumentPurpose{DocTrustDeed, DocRegistrationCertificate, DocPANCard},
	},
	EntityGovernment: {
		Fields:    []string{"department_name", "designation"},
		Documents: []DocumentPurpose{DocAuthorizationLetter},
	},
}

var consultantVariants = map[ConsultantType]Variant{
	ConsultantArchitect: {
		Fields:    []string{"council_registration_number", "qualification"},
		Documents: []DocumentPurpose{DocCertificate, DocPhoto, DocSignature},
	},
	ConsultantStructuralEngineer: {
		Fields:    []string{"license_number", "qualification"},
		Documents: []DocumentPurpose{DocLicense, DocCertificate, DocPhoto, DocSignature},
	},
	ConsultantTownPlanner: {
		Fields:    []string{"itpi_membership_number", "qualification"},
		Documents: []DocumentPurpose{DocCertificate, DocPhoto, DocSignature},
	},
	ConsultantLicensedSurveyor: {
		Fields:    []string{"license_number"},
		Documents: []DocumentPurpose{DocLicense, DocPhoto, DocSignature},
	},
	ConsultantEngineer: {
		Fields:    []string{"license_number", "qualification"},
		Documents: []DocumentPurpose{DocLicense, DocPhoto, DocSignature},
	},
}

// developerExtra is required of developers on top of their entity variant.
var developerExtra = []string{"rera_registration_number"}

var variants = buildVariants()

func buildVariants() map[variantKey]Variant {
	out := make(map[variantKey]Variant)
	for et, v := range entityVariants {
		owner := v
		owner.Role, owner.Kind = RoleOwner, string(et)
		out[variantKey{RoleOwner, string(et)}] = owner

		dev := v
		dev.Role, dev.Kind = RoleDeveloper, string(et)
		dev.Fields = append(append([]string{}, v.Fields...), developerExtra...)
		out[variantKey{RoleDeveloper, string(et)}] = dev
	}
	for ct, v := range consultantVariants {
		c := v
		c.Role, c.Kind = RoleConsultant, string(ct)
		out[variantKey{RoleConsultant, string(ct)}] = c
	}
	return out
}

// VariantFor resolves the variant for a role and its entity or consultant type.
func VariantFor(role Role, kind string) (Variant, error) {
	v, ok := variants[variantKey{role, kind}]
	if !ok {
		return Variant{}, fmt.Errorf("%w: %s/%s", ErrUnknownVariant, role, kind)
	}
	return v, nil
}

// KindsFor lists the entity or consultant types selectable for a role, sorted.
func KindsFor(role Role) []string {
	var kinds []string
	for k := range variants {
		if k.role == role {
			kinds = append(kinds, k.kind)
		}
	}
	sort.Strings(kinds)
	return kinds
}

// Declares reports whether field belongs to the variant's own field set.
func (v Variant) Declares(field string) bool {
	for _, f := range v.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// Document is a stored file referenced from user metadata.
type Document struct {
	URL  string `json:"url"`
	Path string `json:"path"`
	Hash string `json:"hash"`
}

// Metadata is the user record shared by all roles. Role and the selected
// entity/consultant type choose the Variant; Fields may only carry keys the
// variant declares.
type Metadata struct {
	Role           Role                         `json:"role,omitempty"`
	EntityType     EntityType                   `json:"entity_type,omitempty"`
	ConsultantType ConsultantType               `json:"consultant_type,omitempty"`
	LoginID        string                       `json:"login_id,omitempty"`
	FullName       string                       `json:"full_name,omitempty"`
	Email          string                       `json:"email,omitempty"`
	Phone          string                       `json:"phone,omitempty"`
	Address        string                       `json:"address,omitempty"`
	City           string                       `json:"city,omitempty"`
	PinCode        string                       `json:"pin_code,omitempty"`
	EmailVerified  bool                         `json:"email_verified,omitempty"`
	PhoneVerified  bool                         `json:"phone_verified,omitempty"`
	Fields         map[string]string            `json:"fields,omitempty"`
	Documents      map[DocumentPurpose]Document `json:"documents,omitempty"`
}

// Kind returns the entity or consultant type, whichever the role uses.
func (m Metadata) Kind() string {
	if m.Role == RoleConsultant {
		return string(m.ConsultantType)
	}
	return string(m.EntityType)
}

// Variant resolves the metadata's union arm.
func (m Metadata) Variant() (Variant, error) {
	return VariantFor(m.Role, m.Kind())
}

// Check verifies the metadata resolves to a variant and carries no fields
// outside it. Metadata without a role yet is accepted as incomplete.
func (m Metadata) Check() error {
	if m.Role == "" {
		return nil
	}
	v, err := m.Variant()
	if err != nil {
		return err
	}
	for k := range m.Fields {
		if !v.Declares(k) {
			return fmt.Errorf("%w: %s", ErrUndeclaredKey, k)
		}
	}
	for p := range m.Documents {
		if !p.Valid() {
			return fmt.Errorf("%w: document %s", ErrUndeclaredKey, p)
		}
	}
	return nil
}

// sameArm reports whether m and o select the same union arm.
func (m Metadata) sameArm(o Metadata) bool {
	return m.Role == o.Role && m.EntityType == o.EntityType && m.ConsultantType == o.ConsultantType
}

// declaredFields keeps the entries of fields that m's variant declares. It
// keeps none when m does not resolve to a variant.
func (m Metadata) declaredFields(fields map[string]string) map[string]string {
	v, err := m.Variant()
	if err != nil {
		return nil
	}
	out := make(map[string]string, len(fields))
	for k, val := range fields {
		if v.Declares(k) {
			out[k] = val
		}
	}
	return out
}

// Merge overlays the non-zero values of other onto a copy of m.
// Map entries merge key by key, except that a change of role or type first
// drops the stored fields the new variant does not declare. Verification
// flags only ever turn on.
func (m Metadata) Merge(other Metadata) Metadata {
	out := m
	setIf := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	if other.Role != "" {
		out.Role = other.Role
	}
	if other.EntityType != "" {
		out.EntityType = other.EntityType
	}
	if other.ConsultantType != "" {
		out.ConsultantType = other.ConsultantType
	}
	setIf(&out.LoginID, other.LoginID)
	setIf(&out.FullName, other.FullName)
	setIf(&out.Email, other.Email)
	setIf(&out.Phone, other.Phone)
	setIf(&out.Address, other.Address)
	setIf(&out.City, other.City)
	setIf(&out.PinCode, other.PinCode)
	out.EmailVerified = m.EmailVerified || other.EmailVerified
	out.PhoneVerified = m.PhoneVerified || other.PhoneVerified

	prior := m.Fields
	if !m.sameArm(out) {
		prior = out.declaredFields(m.Fields)
	}
	out.Fields = nil
	if len(prior)+len(other.Fields) > 0 {
		out.Fields = make(map[string]string, len(prior)+len(other.Fields))
		for k, v := range prior {
			out.Fields[k] = v
		}
		for k, v := range other.Fields {
			out.Fields[k] = v
		}
	}
	if len(m.Documents)+len(other.Documents) > 0 {
		out.Documents = make(map[DocumentPurpose]Document, len(m.Documents)+len(other.Documents))
		for k, v := range m.Documents {
			out.Documents[k] = v
		}
		for k, v := range other.Documents {
			out.Documents[k] = v
		}
	}
	return out
}
