// Decode operations turn untyped key/value payloads into validated domain
// objects. Each operation reports every violated rule in a single
// *ValidationError instead of stopping at the first.
package domain

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var nationalIDPattern = regexp.MustCompile(`^\d{3}-\d{2}-\d{4}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report violations under the json field name, not the Go field name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return strings.ToLower(fld.Name)
		}
		return name
	})

	_ = v.RegisterValidation("national_id", func(fl validator.FieldLevel) bool {
		return nationalIDPattern.MatchString(fl.Field().String())
	})

	return v
}

// DecodeBaseView validates raw into the caller-safe projection.
func DecodeBaseView(raw map[string]any) (*BaseView, error) {
	d := newRawDecoder(raw)
	view := &BaseView{
		ID:        d.str("id"),
		Email:     d.str("email"),
		Name:      d.str("name"),
		Role:      Role(d.str("role")),
		IsActive:  d.boolean("is_active"),
		CreatedAt: d.timestamp("created_at"),
		UpdatedAt: d.timestamp("updated_at"),
	}
	if err := d.finish(view); err != nil {
		return nil, err
	}
	return view, nil
}

// DecodeFullView validates raw into the admin projection, sensitive fields
// included.
func DecodeFullView(raw map[string]any) (*FullView, error) {
	d := newRawDecoder(raw)
	view := &FullView{
		BaseView: BaseView{
			ID:        d.str("id"),
			Email:     d.str("email"),
			Name:      d.str("name"),
			Role:      Role(d.str("role")),
			IsActive:  d.boolean("is_active"),
			CreatedAt: d.timestamp("created_at"),
			UpdatedAt: d.timestamp("updated_at"),
		},
		Sensitive: SensitiveData{
			Salary:     d.optFloat("salary"),
			NationalID: d.optStr("national_id"),
		},
	}
	if err := d.finish(view); err != nil {
		return nil, err
	}
	return view, nil
}

// DecodeCredentialView validates raw into the internal credential projection.
// Never expose the result outside the credential service.
func DecodeCredentialView(raw map[string]any) (*CredentialView, error) {
	d := newRawDecoder(raw)
	view := &CredentialView{
		FullView: FullView{
			BaseView: BaseView{
				ID:        d.str("id"),
				Email:     d.str("email"),
				Name:      d.str("name"),
				Role:      Role(d.str("role")),
				IsActive:  d.boolean("is_active"),
				CreatedAt: d.timestamp("created_at"),
				UpdatedAt: d.timestamp("updated_at"),
			},
			Sensitive: SensitiveData{
				Salary:     d.optFloat("salary"),
				NationalID: d.optStr("national_id"),
			},
		},
		PasswordHash: d.str("password_hash"),
	}
	if err := d.finish(view); err != nil {
		return nil, err
	}
	return view, nil
}

// DecodeRole validates an untyped value into a Role.
func DecodeRole(raw any) (Role, error) {
	s, ok := raw.(string)
	if !ok {
		verr := &ValidationError{}
		verr.add("role", "role must be a string")
		return "", verr
	}
	return ParseRole(s)
}

// DecodeProfileUpdate validates a partial profile patch.
func DecodeProfileUpdate(raw map[string]any) (*ProfileUpdate, error) {
	d := newRawDecoder(raw)
	patch := &ProfileUpdate{
		Email: d.optStr("email"),
		Name:  d.optStr("name"),
	}
	if err := d.finish(patch); err != nil {
		return nil, err
	}
	return patch, nil
}

// DecodeSensitiveUpdate validates a partial sensitive-data patch.
func DecodeSensitiveUpdate(raw map[string]any) (*SensitiveUpdate, error) {
	d := newRawDecoder(raw)
	patch := &SensitiveUpdate{
		Salary:     d.optFloat("salary"),
		NationalID: d.optStr("national_id"),
	}
	if err := d.finish(patch); err != nil {
		return nil, err
	}
	return patch, nil
}

// DecodeRegistration validates a credential-creation payload. The password
// minimum applies here only; stored hashes are never length-checked.
func DecodeRegistration(raw map[string]any) (*Registration, error) {
	d := newRawDecoder(raw)
	reg := &Registration{
		Email:    d.str("email"),
		Name:     d.str("name"),
		Password: d.str("password"),
		Role:     Role(d.str("role")),
	}
	if err := d.finish(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// DecodeAuthContext validates the per-request caller identity.
func DecodeAuthContext(raw map[string]any) (AuthorizationContext, error) {
	d := newRawDecoder(raw)
	ac := AuthorizationContext{
		UserID: d.str("user_id"),
		Role:   Role(d.str("role")),
	}
	if err := d.finish(&ac); err != nil {
		return AuthorizationContext{}, err
	}
	return ac, nil
}

// rawDecoder extracts typed values from an untyped map. Shape problems
// (wrong type for a key) become violations; missing required values are left
// zero so the rule pass reports them under the right tag.
type rawDecoder struct {
	raw  map[string]any
	verr *ValidationError
}

func newRawDecoder(raw map[string]any) *rawDecoder {
	return &rawDecoder{raw: raw, verr: &ValidationError{}}
}

func (d *rawDecoder) str(key string) string {
	v, ok := d.raw[key]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		d.verr.add(key, "must be a string")
		return ""
	}
	return s
}

func (d *rawDecoder) optStr(key string) *string {
	v, ok := d.raw[key]
	if !ok || v == nil {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		d.verr.add(key, "must be a string")
		return nil
	}
	return &s
}

func (d *rawDecoder) boolean(key string) bool {
	v, ok := d.raw[key]
	if !ok || v == nil {
		return false
	}
	b, ok := v.(bool)
	if !ok {
		d.verr.add(key, "must be a boolean")
		return false
	}
	return b
}

func (d *rawDecoder) optFloat(key string) *float64 {
	v, ok := d.raw[key]
	if !ok || v == nil {
		return nil
	}
	switch n := v.(type) {
	case float64:
		return &n
	case float32:
		f := float64(n)
		return &f
	case int:
		f := float64(n)
		return &f
	case int64:
		f := float64(n)
		return &f
	default:
		d.verr.add(key, "must be a number")
		return nil
	}
}

func (d *rawDecoder) timestamp(key string) time.Time {
	v, ok := d.raw[key]
	if !ok || v == nil {
		return time.Time{}
	}
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			d.verr.add(key, "must be an RFC3339 timestamp")
			return time.Time{}
		}
		return parsed
	default:
		d.verr.add(key, "must be a timestamp")
		return time.Time{}
	}
}

// finish runs the rule pass on the assembled value and combines rule
// violations with any shape violations collected so far.
func (d *rawDecoder) finish(v any) error {
	d.verr.merge(runRules(v))
	if d.verr.hasViolations() {
		return d.verr
	}
	return nil
}

func runRules(v any) *ValidationError {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	verr := &ValidationError{}
	if ves, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range ves {
			verr.add(fe.Field(), ruleMessage(fe))
		}
		return verr
	}
	verr.add("payload", err.Error())
	return verr
}

// ruleMessage converts a single rule failure into a human-readable message.
func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		if fe.Kind() == reflect.String || fe.Kind() == reflect.Ptr {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String || fe.Kind() == reflect.Ptr {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be %s or greater", fe.Param())
	case "national_id":
		return "must match format DDD-DD-DDDD"
	default:
		return fmt.Sprintf("failed validation (%s)", fe.Tag())
	}
}
