package service

import "errors"

// Sentinel errors returned by services. Handlers map them to HTTP statuses;
// anything else is a 500.
var (
	ErrIDRequired = errors.New("id is required")
	ErrReaderNil  = errors.New("reader is nil")
	ErrForbidden  = errors.New("not allowed for this user")

	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid login or password")
	ErrInvalidToken       = errors.New("invalid or expired refresh token")
	ErrWeakPassword       = errors.New("password does not meet the requirements")

	ErrInvalidChannel = errors.New("unsupported verification channel")
	ErrInvalidContact = errors.New("invalid contact")
	ErrOTPThrottled   = errors.New("please wait before requesting another code")
	ErrOTPDelivery    = errors.New("could not send the verification code")
	ErrOTPInvalid     = errors.New("invalid or expired code")
	ErrOTPAttempts    = errors.New("too many attempts, request a new code")

	ErrInvalidPurpose = errors.New("unknown document purpose")
	ErrFileNotFound   = errors.New("file not found")
	ErrFileTooLarge   = errors.New("file exceeds the upload size limit")

	ErrEmailNotVerified  = errors.New("please verify your email address before submitting")
	ErrPhoneNotVerified  = errors.New("please verify your mobile number before submitting")
	ErrLoginIDTaken      = errors.New("login id is already taken")
	ErrMissingDocuments  = errors.New("required documents are missing")
	ErrInvalidRole       = errors.New("invalid role")
	ErrAlreadyRegistered = errors.New("an account is already registered with this email")
	ErrContactMismatch   = errors.New("verification belongs to another account")

	ErrProjectNotFound = errors.New("project not found")
	ErrEmptyPatch      = errors.New("nothing to update")
	ErrInvalidStatus   = errors.New("invalid project status")
	ErrInvalidJSON     = errors.New("document must be a JSON object")

	ErrDraftNotFound = errors.New("draft not found")
)
