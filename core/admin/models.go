package admin

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/nawanshu18/student-result-management-system/core"
)

// Authentication methods
const (
	MethodPassword         Method = "password"
	MethodOTP              Method = "otp"
	MethodSecurityQuestion Method = "security_question"
)

type Method string

type Admin struct {
	Username           string    `json:"username"`
	Email              string    `json:"email"`
	SecurityQuestion   string    `json:"security_question"`
	PasswordHash       []byte    `json:"-"`
	SecurityAnswerHash []byte    `json:"-"`
	OTPHash            []byte    `json:"-"`
	OTPExpiresAt       time.Time `json:"-"`          // UTC
	CreatedAt          time.Time `json:"created_at"` // UTC
	UpdatedAt          time.Time `json:"updated_at"` // UTC
	LastLogin          time.Time `json:"last_login"` // UTC
}

func (a *Admin) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	return nil
}

func (a *Admin) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(pwd))
}

// normalizeAnswer makes security answers case and surrounding-whitespace insensitive.
func normalizeAnswer(answer string) string {
	return core.CleanString(answer, true /* lower */)
}

func (a *Admin) SetSecurityAnswer(question, answer string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(normalizeAnswer(answer)), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.SecurityQuestion = question
	a.SecurityAnswerHash = hash
	return nil
}

func (a *Admin) CheckSecurityAnswer(answer string) error {
	if !a.HasSecurityQuestion() {
		return errNoSecurityQuestion
	}
	return bcrypt.CompareHashAndPassword(a.SecurityAnswerHash, []byte(normalizeAnswer(answer)))
}

func (a *Admin) HasSecurityQuestion() bool {
	return a.SecurityQuestion != "" && len(a.SecurityAnswerHash) > 0
}

// Credentials holds what an admin submits to log in; which fields matter depends on the Method.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password,omitempty"`
	OTP      string `json:"otp,omitempty"`
	Answer   string `json:"answer,omitempty"`
}

func (c *Credentials) Validate(method Method, validate *validator.Validate) error {
	c.Username = core.CleanString(c.Username, true /* lower */)
	c.OTP = core.CleanString(c.OTP)
	if err := validate.Struct(c); err != nil {
		return err
	}

	var fld, val string
	switch method {
	case MethodPassword:
		fld, val = "password", c.Password
	case MethodOTP:
		fld, val = "otp", c.OTP
	case MethodSecurityQuestion:
		fld, val = "answer", c.Answer
	default:
		return core.NewValidationError(ErrUnknownMethod)
	}
	if val == "" {
		return core.NewValidationError(nil, core.FieldError{Field: fld, Error: requiredText})
	}
	return nil
}

// NewAdmin contains information needed to create a new Admin.
type NewAdmin struct {
	Username        string `json:"username" validate:"required,min=3,max=150,alphanum_"`
	Email           string `json:"email" validate:"omitempty,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (na *NewAdmin) Validate(validate *validator.Validate, svc Service) error {
	na.Username = core.CleanString(na.Username, true /* lower */)
	na.Email = core.CleanString(na.Email, true /* lower */)

	if err := validate.Struct(na); err != nil {
		return err
	}
	return svc.CheckUsernameUniqueness(na.Username)
}

// UpdateSettings defines the account settings an Admin may change.
// Blank fields keep their current value; the question and the answer go together.
type UpdateSettings struct {
	Email            string `json:"email" validate:"omitempty,email"`
	SecurityQuestion string `json:"security_question" validate:"required_with=SecurityAnswer,max=255"`
	SecurityAnswer   string `json:"security_answer" validate:"required_with=SecurityQuestion"`
}

func (us *UpdateSettings) Validate(validate *validator.Validate) error {
	us.Email = core.CleanString(us.Email, true /* lower */)
	us.SecurityQuestion = core.CleanString(us.SecurityQuestion)
	return validate.Struct(us)
}

type ChangePassword struct {
	OldPassword     string `json:"old_password" validate:"required"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`

	username string // for the similarity check
}

func (cp *ChangePassword) Validate(adm Admin, validate *validator.Validate) error {
	cp.username = adm.Username
	if err := validate.Struct(cp); err != nil {
		return err
	}
	if err := adm.CheckPassword(cp.OldPassword); err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "old_password", Error: wrongPasswordText})
	}
	return nil
}

// ResetPassword is a new password set without knowing the old one (command line).
type ResetPassword struct {
	Password string `json:"password" validate:"required"`

	username, email string // for the similarity check
}

func (rp *ResetPassword) Validate(adm Admin, validate *validator.Validate) error {
	rp.username = adm.Username
	rp.email = adm.Email
	return validate.Struct(rp)
}
