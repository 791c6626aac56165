// Package inputval validates decoded JSON request bodies with
// waffle/pantry/validate and turns failures into the field-keyed map the
// API returns with status 422.
//
// Fields are keyed by their json name. A `label` tag names the field in
// generated messages; a `msg` tag replaces the message per rule:
//
//	Email string `json:"email" validate:"required,email" msg:"required=L'email est requis.|email=Format d'email invalide."`
package inputval

import (
	"net/mail"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/dalemusser/waffle/pantry/validate"
)

// FieldError is one failed rule.
type FieldError struct {
	Field   string
	Rule    string
	Message string
}

// Result collects the failures of one Validate call.
type Result struct {
	Errors []FieldError
}

func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// Fields returns the first message per field.
func (r *Result) Fields() map[string]string {
	out := make(map[string]string, len(r.Errors))
	for _, e := range r.Errors {
		if _, seen := out[e.Field]; !seen {
			out[e.Field] = e.Message
		}
	}
	return out
}

var hexColorRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// IsHexColor reports whether s is a #RRGGBB color.
func IsHexColor(s string) bool {
	return hexColorRe.MatchString(s)
}

// IsValidEmail accepts a bare RFC 5322 address; display-name forms such
// as "Jo <jo@example.fr>" are refused.
func IsValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

var validator = sync.OnceValue(func() *validate.Validator {
	v := validate.New(validate.WithStopOnFirstError())
	v.RegisterRuleFunc("hexcolor", func(value any) bool {
		s, ok := value.(string)
		return ok && IsHexColor(s)
	}, "hexcolor")
	return v
})

// fieldMeta is the tag data of one struct field.
type fieldMeta struct {
	label    string
	messages map[string]string
}

var metaCache sync.Map // reflect.Type -> map[string]fieldMeta

func metaFor(s any) map[string]fieldMeta {
	t := reflect.TypeOf(s)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	if m, ok := metaCache.Load(t); ok {
		return m.(map[string]fieldMeta)
	}

	m := make(map[string]fieldMeta, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		fm := fieldMeta{label: f.Tag.Get("label")}
		if tag := f.Tag.Get("msg"); tag != "" {
			fm.messages = map[string]string{}
			for _, part := range strings.Split(tag, "|") {
				if rule, msg, ok := strings.Cut(part, "="); ok {
					fm.messages[strings.TrimSpace(rule)] = msg
				}
			}
		}
		m[jsonName(f)] = fm
	}
	metaCache.Store(t, m)
	return m
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

// Validate checks s against its validate tags. The result is never nil.
func Validate(s any) *Result {
	res := &Result{}
	err := validator().Struct(s)
	if err == nil {
		return res
	}
	errs, ok := err.(validate.Errors)
	if !ok {
		res.Errors = append(res.Errors, FieldError{Field: "_", Rule: "struct", Message: "Invalid input."})
		return res
	}

	meta := metaFor(s)
	for _, e := range errs {
		fm := meta[e.Field]
		msg, ok := fm.messages[e.Rule]
		if !ok {
			label := fm.label
			if label == "" {
				label = e.Field
			}
			msg = message(label, e.Rule, e.Param)
		}
		res.Errors = append(res.Errors, FieldError{Field: e.Field, Rule: e.Rule, Message: msg})
	}
	return res
}

func message(label, rule, param string) string {
	switch rule {
	case "required":
		return label + " is required."
	case "email":
		return label + " format is invalid."
	case "oneof", "enum":
		return label + " must be one of: " + strings.ReplaceAll(param, " ", ", ") + "."
	case "min":
		return label + " must be at least " + param + " characters."
	case "max":
		return label + " must be at most " + param + " characters."
	case "hexcolor":
		return label + " must be a color like #A1B2C3."
	default:
		return label + " is invalid."
	}
}
