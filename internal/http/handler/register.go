package handler

import (
	"mime/multipart"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"planportal/internal/model"
	"planportal/internal/service"
	"planportal/internal/validation"
)

// Fields that carry the declaration state and contact proofs rather than
// form values.
const (
	fieldDeclarationScrolled = "declaration_scrolled"
	fieldDeclarationAccepted = "declaration_accepted"
	fieldEmailProof          = "email_verification_token"
	fieldPhoneProof          = "phone_verification_token"
)

// takeProofs moves the contact proofs out of values.
func takeProofs(values validation.Values) service.ContactProofs {
	p := service.ContactProofs{Email: values[fieldEmailProof], Phone: values[fieldPhoneProof]}
	delete(values, fieldEmailProof)
	delete(values, fieldPhoneProof)
	return p
}

// registrationInput splits a multipart registration form into values,
// declaration state and documents keyed by purpose. The returned files must
// be closed by the caller.
func registrationInput(form *multipart.Form, key validation.FormKey) (service.RegistrationInput, []multipart.File, error) {
	in := service.RegistrationInput{
		Form:   key,
		Values: validation.Values{},
		Files:  map[model.DocumentPurpose]service.FileInput{},
	}
	for k, vs := range form.Value {
		if len(vs) == 0 {
			continue
		}
		switch k {
		case fieldDeclarationScrolled:
			in.Declaration.ScrolledToBottom, _ = strconv.ParseBool(vs[0])
		case fieldDeclarationAccepted:
			in.Declaration.Accepted, _ = strconv.ParseBool(vs[0])
		default:
			in.Values[k] = vs[0]
		}
	}
	in.Proofs = takeProofs(in.Values)

	var opened []multipart.File
	for k, fhs := range form.File {
		purpose := model.DocumentPurpose(k)
		if !purpose.Valid() {
			return in, opened, service.ErrInvalidPurpose
		}
		if len(fhs) == 0 {
			continue
		}
		fi, f, err := openPart(fhs[0])
		if err != nil {
			return in, opened, err
		}
		opened = append(opened, f)
		in.Files[purpose] = fi
	}
	return in, opened, nil
}

// Register godoc
// @Summary Submit a registration form
// @Description Values are plain form fields, documents are file fields named by purpose.
// @Description Email and mobile number are proven by the verification_token fields /auth/verify returned.
// @Description A blocked submission writes nothing.
// @Tags registration
// @Accept multipart/form-data
// @Produce json
// @Param form path string true "owner_registration, consultant_registration or developer_registration"
// @Success 201 {object} service.RegistrationResult
// @Failure 403 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Failure 422 {object} errorPayload
// @Router /api/register/{form} [post]
func Register(svc service.RegistrationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		mf, err := c.MultipartForm()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "MULTIPART_REQUIRED", "multipart form is required")
		}
		in, files, err := registrationInput(mf, validation.FormKey(c.Params("form")))
		defer func() {
			for _, f := range files {
				f.Close()
			}
		}()
		if err != nil {
			return err
		}

		res, err := svc.Submit(c.UserContext(), in)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}
