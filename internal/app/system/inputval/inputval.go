// internal/app/system/inputval/inputval.go
package inputval

import (
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/waffle/pantry/urlutil"
	"github.com/go-playground/locales/fr"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	fr_translations "github.com/go-playground/validator/v10/translations/fr"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FieldError is one failed rule, already rendered for the form.
type FieldError struct {
	Field   string
	Tag     string
	Message string
}

// Result collects the errors of one Validate call.
type Result struct {
	Errors []FieldError
}

func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// First returns the first message, or "" when valid.
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every message with "; ".
func (r *Result) All() string {
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}

var (
	snowflakeRe = regexp.MustCompile(`^[0-9]{17,20}$`)
	slugRe      = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
)

// Custom rule tags and their messages. {0} is the field label, {1} the
// rule parameter.
var messages = map[string]string{
	"required":  "{0} : champ obligatoire.",
	"max":       "{0} : {1} caractères maximum.",
	"min":       "{0} : {1} caractères minimum.",
	"oneof":     "{0} : valeur invalide.",
	"httpurl":   "{0} : URL absolue http(s) attendue (ex. https://exemple.com).",
	"objectid":  "{0} : identifiant invalide.",
	"snowflake": "{0} : identifiant Discord attendu (17 à 20 chiffres).",
	"slug":      "{0} : lettres minuscules, chiffres et tirets uniquement.",
	"ymd":       "{0} : date au format AAAA-MM-JJ attendue.",
	"hhmm":      "{0} : heure au format HH:MM attendue.",
	"urlorpath": "{0} : URL http(s) ou chemin commençant par / attendu.",
}

var (
	engineOnce sync.Once
	validate   *validator.Validate
	trans      ut.Translator
)

func engine() (*validator.Validate, ut.Translator) {
	engineOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		locale := fr.New()
		uni := ut.New(locale, locale)
		tr, _ := uni.GetTranslator("fr")
		_ = fr_translations.RegisterDefaultTranslations(v, tr)

		// Messages name fields by their label tag.
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			if label := f.Tag.Get("label"); label != "" {
				return label
			}
			return f.Name
		})

		_ = v.RegisterValidation("httpurl", func(fl validator.FieldLevel) bool { return IsValidHTTPURL(fl.Field().String()) })
		_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool { return IsValidObjectID(fl.Field().String()) })
		_ = v.RegisterValidation("snowflake", func(fl validator.FieldLevel) bool { return IsValidDiscordID(fl.Field().String()) })
		_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool { return IsValidSlug(fl.Field().String()) })
		_ = v.RegisterValidation("ymd", func(fl validator.FieldLevel) bool { return IsValidDate(fl.Field().String()) })
		_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool { return IsValidTime(fl.Field().String()) })
		_ = v.RegisterValidation("urlorpath", func(fl validator.FieldLevel) bool { return IsValidURLOrPath(fl.Field().String()) })

		for tag, text := range messages {
			registerMessage(v, tr, tag, text)
		}
		validate, trans = v, tr
	})
	return validate, trans
}

func registerMessage(v *validator.Validate, tr ut.Translator, tag, text string) {
	_ = v.RegisterTranslation(tag, tr,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, err := t.T(tag, fe.Field(), fe.Param())
			if err != nil {
				return fe.Field() + " : valeur invalide."
			}
			return s
		},
	)
}

// Validate checks s against its `validate` struct tags. Fields are named in
// messages by their `label` tag.
func Validate(s any) *Result {
	v, tr := engine()
	res := &Result{}

	err := v.Struct(s)
	if err == nil {
		return res
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		res.Errors = append(res.Errors, FieldError{Message: "Données du formulaire invalides."})
		return res
	}
	for _, fe := range verrs {
		res.Errors = append(res.Errors, FieldError{
			Field:   fe.StructField(),
			Tag:     fe.Tag(),
			Message: fe.Translate(tr),
		})
	}
	return res
}

// IsValidHTTPURL reports whether s is an absolute http or https URL.
func IsValidHTTPURL(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && urlutil.IsValidAbsHTTPURL(s)
}

// IsValidObjectID reports whether s is a 24-character hex ObjectID.
func IsValidObjectID(s string) bool {
	_, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
	return err == nil
}

// IsValidDiscordID reports whether s looks like a Discord user id.
func IsValidDiscordID(s string) bool {
	return snowflakeRe.MatchString(strings.TrimSpace(s))
}

// IsValidSlug reports whether s can key a page.
func IsValidSlug(s string) bool {
	return slugRe.MatchString(s)
}

// IsValidDate reports whether s is a calendar date in YYYY-MM-DD form.
func IsValidDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// IsValidTime reports whether s is a time of day in HH:MM form.
func IsValidTime(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil
}

// IsValidURLOrPath accepts an absolute http(s) URL or a site-relative path
// such as /static/img/logo.png. Protocol-relative //host paths are refused.
func IsValidURLOrPath(s string) bool {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "/") {
		return !strings.HasPrefix(s, "//") && !strings.ContainsAny(s, " \t\n\\")
	}
	return IsValidHTTPURL(s)
}
