// Package profile validates profile edit submissions and normalizes them into
// the payload the backend update endpoint expects.
package profile

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

const (
	MinUsername      = 3
	MaxUsername      = 30
	MaxSocials       = 5
	MaxBioLength     = 8000
	MaxURLLength     = 500
	MinHostLength    = 3
	MaxEmailLength   = 254
	MaxEmailLocal    = 64
	SlovakPrefix     = "+421"
	SlovakDigits     = 9
	SlovakMobileLead = '9'
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	emailPattern    = regexp.MustCompile(`^[A-Za-z0-9._%-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	digitsPattern   = regexp.MustCompile(`^[0-9]+$`)
)

// Input is the raw field bag of a profile edit submission.
type Input struct {
	Username string
	Bio      string
	Website  string
	Email    string
	Phone    string
	// Socials holds social_0..social_{n-1} in index order, untrimmed.
	Socials []string
}

// Contacts is the normalized contact block of an Update.
type Contacts struct {
	Website string   `json:"website,omitempty"`
	Email   string   `json:"email,omitempty"`
	Phone   string   `json:"phone,omitempty"`
	Socials []string `json:"socials"`
}

// Update is the normalized payload sent to the backend.
type Update struct {
	Username string   `json:"username"`
	Bio      string   `json:"bio"`
	Contacts Contacts `json:"contacts"`
}

// FieldErrors maps a form field name to its error message.
type FieldErrors map[string]string

// Details converts the errors to the shape used in error response details.
func (e FieldErrors) Details() map[string]any {
	fields := make(map[string]any, len(e))
	for k, v := range e {
		fields[k] = v
	}
	return map[string]any{"fields": fields}
}

type rule struct {
	tag     string
	message string
}

var usernameRules = []rule{
	{"required", "Username is required."},
	{fmt.Sprintf("min=%d", MinUsername), fmt.Sprintf("Username must be at least %d characters long.", MinUsername)},
	{fmt.Sprintf("max=%d", MaxUsername), fmt.Sprintf("Username can be at most %d characters long.", MaxUsername)},
	{"forum_username", "Username may contain only letters, digits and underscores."},
}

var bioRules = []rule{
	{fmt.Sprintf("max=%d", MaxBioLength), fmt.Sprintf("Bio can be at most %d characters long.", MaxBioLength)},
}

var emailRules = []rule{
	{"forum_email", "Enter a valid email address."},
	{fmt.Sprintf("max=%d", MaxEmailLength), fmt.Sprintf("Email can be at most %d characters long.", MaxEmailLength)},
	{"email_local_length", fmt.Sprintf("The part before @ can be at most %d characters long.", MaxEmailLocal)},
}

var phoneRules = []rule{
	{"slovak_prefix", "Phone number must start with +421."},
	{"slovak_digits", fmt.Sprintf("Phone number must have exactly %d digits after +421.", SlovakDigits)},
	{"slovak_mobile", "Mobile numbers must start with 9 after +421."},
}

func linkRules(label string) []rule {
	return []rule{
		{"http_scheme", label + " must start with http:// or https://."},
		{"well_formed_url", label + " is not a valid URL."},
		{"url_hostname", fmt.Sprintf("%s must contain a domain of at least %d characters.", label, MinHostLength)},
		{fmt.Sprintf("max=%d", MaxURLLength), fmt.Sprintf("%s can be at most %d characters long.", label, MaxURLLength)},
	}
}

var (
	websiteRules = linkRules("Website")
	socialRules  = linkRules("Social link")
)

// Validator checks profile submissions. It holds no per-request state and is
// safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

// New builds a Validator with the profile-specific rules registered.
func New() *Validator {
	v := validator.New()
	mustRegister(v, "forum_username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "forum_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "email_local_length", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		at := strings.LastIndex(value, "@")
		return at >= 0 && at <= MaxEmailLocal
	})
	mustRegister(v, "http_scheme", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		return strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://")
	})
	mustRegister(v, "well_formed_url", func(fl validator.FieldLevel) bool {
		_, err := url.Parse(fl.Field().String())
		return err == nil
	})
	mustRegister(v, "url_hostname", func(fl validator.FieldLevel) bool {
		parsed, err := url.Parse(fl.Field().String())
		return err == nil && len(parsed.Hostname()) >= MinHostLength
	})
	mustRegister(v, "slovak_prefix", func(fl validator.FieldLevel) bool {
		return strings.HasPrefix(fl.Field().String(), SlovakPrefix)
	})
	mustRegister(v, "slovak_digits", func(fl validator.FieldLevel) bool {
		rest := strings.TrimPrefix(fl.Field().String(), SlovakPrefix)
		return len(rest) == SlovakDigits && digitsPattern.MatchString(rest)
	})
	mustRegister(v, "slovak_mobile", func(fl validator.FieldLevel) bool {
		rest := strings.TrimPrefix(fl.Field().String(), SlovakPrefix)
		return rest != "" && rest[0] == SlovakMobileLead
	})
	return &Validator{validate: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("profile: register %s: %v", tag, err))
	}
}

// Validate checks every field and returns either the normalized update or the
// full set of field errors, never both.
func (v *Validator) Validate(in Input) (*Update, FieldErrors) {
	errs := FieldErrors{}

	username := strings.TrimSpace(in.Username)
	v.apply(errs, "username", username, usernameRules)

	bio := strings.TrimSpace(in.Bio)
	if bio != "" {
		v.apply(errs, "bio", bio, bioRules)
	}

	website := strings.TrimSpace(in.Website)
	if website != "" {
		v.apply(errs, "website", website, websiteRules)
	}

	email := strings.TrimSpace(in.Email)
	if email != "" {
		v.apply(errs, "email", email, emailRules)
	}

	phone := strings.TrimSpace(in.Phone)
	if phone != "" {
		v.apply(errs, "phone", stripSpaces(phone), phoneRules)
	}

	socials := make([]string, 0, len(in.Socials))
	indexes := make([]int, 0, len(in.Socials))
	for i, raw := range in.Socials {
		link := strings.TrimSpace(raw)
		if link == "" {
			continue
		}
		socials = append(socials, link)
		indexes = append(indexes, i)
	}
	if len(socials) > MaxSocials {
		errs["socials"] = fmt.Sprintf("You can add at most %d social links.", MaxSocials)
	}
	for i, link := range socials {
		v.apply(errs, fmt.Sprintf("social_%d", indexes[i]), link, socialRules)
	}

	if len(errs) > 0 {
		return nil, errs
	}

	return &Update{
		Username: username,
		Bio:      bio,
		Contacts: Contacts{
			Website: website,
			Email:   email,
			Phone:   phone,
			Socials: socials,
		},
	}, nil
}

// apply records the message of the first failing rule for field.
func (v *Validator) apply(errs FieldErrors, field, value string, rules []rule) {
	for _, r := range rules {
		if err := v.validate.Var(value, r.tag); err != nil {
			errs[field] = r.message
			return
		}
	}
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
