package dojoauth

import (
	"net/mail"
	"strings"

	"github.com/MrEthical07/dojoauth/authclient"
	"github.com/MrEthical07/dojoauth/session"
)

// RegisterInput is a registration request as accepted by Store.Register.
//
// AccountKind defaults to individual. OrganizationName is required for
// company accounts and dropped for individual ones.
type RegisterInput struct {
	Name             string
	Email            string
	Password         string
	AccountKind      session.AccountKind
	OrganizationName string
}

func (in RegisterInput) request(rules RegistrationConfig) (authclient.RegisterRequest, error) {
	req := authclient.RegisterRequest{
		Name:             trimSpace(in.Name),
		Email:            trimSpace(in.Email),
		Password:         in.Password,
		AccountKind:      in.AccountKind,
		OrganizationName: trimSpace(in.OrganizationName),
	}

	if req.Name == "" {
		return req, invalid("name", "required")
	}
	if req.Email == "" {
		return req, invalid("email", "required")
	}
	if !validEmail(req.Email) {
		return req, invalid("email", "not a valid address")
	}
	if req.Password == "" {
		return req, invalid("password", "required")
	}
	minLen := rules.MinPasswordLength
	if minLen <= 0 {
		minLen = DefaultMinPasswordLength
	}
	if len(req.Password) < minLen {
		return req, invalid("password", "too short")
	}

	if req.AccountKind == "" {
		req.AccountKind = session.KindIndividual
	}
	switch req.AccountKind {
	case session.KindCompany:
		if req.OrganizationName == "" {
			return req, invalid("organizationName", "required for company accounts")
		}
	case session.KindIndividual:
		req.OrganizationName = ""
	default:
		return req, invalid("accountKind", "unknown account kind")
	}
	return req, nil
}

// RegistrationForm is the sign-up form, including the confirmation field the
// backend never sees.
type RegistrationForm struct {
	Name             string
	Email            string
	Password         string
	ConfirmPassword  string
	AccountKind      session.AccountKind
	OrganizationName string
}

// Validate applies the default registration rules and checks that the
// confirmation matches. Store.Register re-checks with its own configuration.
func (f RegistrationForm) Validate() error {
	if _, err := f.Input().request(RegistrationConfig{MinPasswordLength: DefaultMinPasswordLength}); err != nil {
		return err
	}
	if f.ConfirmPassword != f.Password {
		return invalid("confirmPassword", "does not match password")
	}
	return nil
}

// Input returns the fields Store.Register needs.
func (f RegistrationForm) Input() RegisterInput {
	return RegisterInput{
		Name:             f.Name,
		Email:            f.Email,
		Password:         f.Password,
		AccountKind:      f.AccountKind,
		OrganizationName: f.OrganizationName,
	}
}

// validEmail accepts a bare addr-spec with a dotted domain.
func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return false
	}
	at := strings.LastIndexByte(email, '@')
	return at > 0 && strings.Contains(email[at+1:], ".")
}

func trimSpace(s string) string {
	return strings.TrimSpace(s)
}
