package admin

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/nawanshu18/student-result-management-system/core"
)

var (
	// errors
	ErrNotFound           = errors.New("admin not found")
	ErrUsernameExists     = errors.New("an admin with this username already exists")
	ErrUnknownMethod      = errors.New("unknown authentication method")
	ErrNoEmail            = errors.New("admin has no email address")
	errNoSecurityQuestion = errors.New("no security question set")
)

type (
	Repository interface {
		CreateAdmin(ctx context.Context, adm Admin, exec ...core.DBExecutor) (Admin, error)
		GetAdmin(ctx context.Context, username string, exec ...core.DBExecutor) (Admin, error)
		UpdateAdmin(ctx context.Context, adm Admin, exec ...core.DBExecutor) (Admin, error)
		CountAdmins(ctx context.Context, exec ...core.DBExecutor) (int, error)
	}

	Service interface {
		CheckUsernameUniqueness(username string) error
		Create(ctx context.Context, na NewAdmin) (Admin, error)
		// EnsureDefault creates the default admin when no admin exists yet.
		EnsureDefault(ctx context.Context) (created bool, err error)
		GetByUsername(ctx context.Context, username string) (Admin, error)
		// Authenticate checks the Credentials for the Method. Any failure is core.ErrAuthenticationFailed.
		Authenticate(ctx context.Context, method Method, creds Credentials) (Admin, error)
		// RequestOTP generates a one-time password, stores its hash and emails it to the admin.
		RequestOTP(ctx context.Context, username string) error
		// GetSecurityQuestion returns the question to display; core.ErrAuthenticationFailed when there is none.
		GetSecurityQuestion(ctx context.Context, username string) (string, error)
		UpdateSettings(ctx context.Context, adm Admin, us UpdateSettings) (Admin, error)
		ChangePassword(ctx context.Context, adm Admin, cp ChangePassword) (Admin, error)
		// ResetPassword sets a new password without checking the old one (command line).
		ResetPassword(ctx context.Context, username, pwd string) error
	}

	Options struct {
		AppName              string
		SecretKey            string
		OTPLength            int
		OTPTimeoutDelta      time.Duration
		DefaultAdminUsername string
		DefaultAdminPassword string
	}

	service struct {
		repo    Repository
		mailSvc core.EmailService
		opts    Options
	}
)

var _ Service = (*service)(nil)

func NewOptions(conf *core.Config) Options {
	return Options{
		AppName:              conf.AppName,
		SecretKey:            conf.SecretKey,
		OTPLength:            conf.Auth.OTPLength,
		OTPTimeoutDelta:      conf.Auth.OTPTimeoutDelta,
		DefaultAdminUsername: conf.Auth.DefaultAdminUsername,
		DefaultAdminPassword: conf.Auth.DefaultAdminPassword,
	}
}

func NewService(repo Repository, mailSvc core.EmailService, opts Options) Service {
	if opts.OTPLength <= 0 {
		opts.OTPLength = 6
	}
	if opts.OTPTimeoutDelta <= 0 {
		opts.OTPTimeoutDelta = 5 * time.Minute
	}
	return &service{
		repo:    repo,
		mailSvc: mailSvc,
		opts:    opts,
	}
}

func (svc *service) CheckUsernameUniqueness(username string) error {
	_, err := svc.repo.GetAdmin(context.Background(), username)
	switch errors.Cause(err) {
	case nil:
		return core.NewValidationError(ErrUsernameExists, core.FieldError{Field: "username", Error: ErrUsernameExists.Error()})
	case ErrNotFound:
		return nil
	default:
		return errors.Wrap(err, "checking username uniqueness")
	}
}

func (svc *service) Create(ctx context.Context, na NewAdmin) (Admin, error) {
	now := NowFunc().UTC()
	adm := Admin{
		Username:  na.Username,
		Email:     na.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := adm.SetPassword(na.Password); err != nil {
		return Admin{}, errors.Wrap(err, "setting password")
	}
	adm, err := svc.repo.CreateAdmin(ctx, adm)
	return adm, errors.Wrap(err, "creating admin")
}

func (svc *service) EnsureDefault(ctx context.Context) (bool, error) {
	n, err := svc.repo.CountAdmins(ctx)
	if err != nil {
		return false, errors.Wrap(err, "counting admins")
	}
	if n > 0 {
		return false, nil
	}
	_, err = svc.Create(ctx, NewAdmin{
		Username: core.CleanString(svc.opts.DefaultAdminUsername, true /* lower */),
		Password: svc.opts.DefaultAdminPassword,
	})
	return err == nil, err
}

func (svc *service) GetByUsername(ctx context.Context, username string) (Admin, error) {
	adm, err := svc.repo.GetAdmin(ctx, core.CleanString(username, true /* lower */))
	return adm, errors.Wrap(err, "getting admin")
}

func (svc *service) Authenticate(ctx context.Context, method Method, creds Credentials) (Admin, error) {
	adm, err := svc.repo.GetAdmin(ctx, creds.Username)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Admin{}, core.ErrAuthenticationFailed
		}
		return Admin{}, errors.Wrap(err, "getting admin")
	}

	switch method {
	case MethodPassword:
		if adm.CheckPassword(creds.Password) != nil {
			return Admin{}, core.ErrAuthenticationFailed
		}
	case MethodSecurityQuestion:
		if adm.CheckSecurityAnswer(creds.Answer) != nil {
			return Admin{}, core.ErrAuthenticationFailed
		}
	case MethodOTP:
		if err := adm.verifyOTP([]byte(svc.opts.SecretKey), creds.OTP); err != nil {
			if err == errOTPExpired {
				// expired codes are dead codes
				adm.clearOTP()
				if _, err := svc.repo.UpdateAdmin(ctx, adm); err != nil {
					return Admin{}, errors.Wrap(err, "clearing expired otp")
				}
			}
			return Admin{}, core.ErrAuthenticationFailed
		}
		adm.clearOTP() // single use
	default:
		return Admin{}, core.NewValidationError(ErrUnknownMethod)
	}

	adm.LastLogin = NowFunc().UTC()
	adm, err = svc.repo.UpdateAdmin(ctx, adm)
	return adm, errors.Wrap(err, "setting last login")
}

func (svc *service) RequestOTP(ctx context.Context, username string) error {
	adm, err := svc.repo.GetAdmin(ctx, core.CleanString(username, true /* lower */))
	if err != nil {
		return errors.Wrap(err, "getting admin")
	}
	if adm.Email == "" {
		return ErrNoEmail
	}

	code, err := makeOTP(svc.opts.OTPLength)
	if err != nil {
		return errors.Wrap(err, "generating otp")
	}
	adm.setOTP([]byte(svc.opts.SecretKey), code, svc.opts.OTPTimeoutDelta)
	if adm, err = svc.repo.UpdateAdmin(ctx, adm); err != nil {
		return errors.Wrap(err, "storing otp")
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: adm.Username, Address: adm.Email}},
		Subject:      "Your one-time password",
		TemplateName: "otp",
		TemplateData: map[string]interface{}{
			"Username": adm.Username,
			"Code":     code,
			"Minutes":  int(svc.opts.OTPTimeoutDelta.Minutes()),
		},
	})
	return nil
}

func (svc *service) GetSecurityQuestion(ctx context.Context, username string) (string, error) {
	adm, err := svc.repo.GetAdmin(ctx, core.CleanString(username, true /* lower */))
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return "", core.ErrAuthenticationFailed
		}
		return "", errors.Wrap(err, "getting admin")
	}
	if !adm.HasSecurityQuestion() {
		return "", core.ErrAuthenticationFailed
	}
	return adm.SecurityQuestion, nil
}

func (svc *service) UpdateSettings(ctx context.Context, adm Admin, us UpdateSettings) (Admin, error) {
	if us.Email != "" {
		adm.Email = us.Email
	}
	if us.SecurityQuestion != "" {
		if err := adm.SetSecurityAnswer(us.SecurityQuestion, us.SecurityAnswer); err != nil {
			return Admin{}, errors.Wrap(err, "setting security answer")
		}
	}
	adm.UpdatedAt = NowFunc().UTC()
	adm, err := svc.repo.UpdateAdmin(ctx, adm)
	return adm, errors.Wrap(err, "updating admin")
}

func (svc *service) ChangePassword(ctx context.Context, adm Admin, cp ChangePassword) (Admin, error) {
	if err := adm.SetPassword(cp.Password); err != nil {
		return Admin{}, errors.Wrap(err, "setting password")
	}
	adm.UpdatedAt = NowFunc().UTC()
	adm, err := svc.repo.UpdateAdmin(ctx, adm)
	return adm, errors.Wrap(err, "updating admin")
}

func (svc *service) ResetPassword(ctx context.Context, username, pwd string) error {
	adm, err := svc.repo.GetAdmin(ctx, core.CleanString(username, true /* lower */))
	if err != nil {
		return errors.Wrap(err, "getting admin")
	}
	_, err = svc.ChangePassword(ctx, adm, ChangePassword{Password: pwd})
	return err
}
