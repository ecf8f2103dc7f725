package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/fedutinova/yanews/internal/common"
	"github.com/go-playground/validator/v10"
)

// BadWords are the substrings a comment may not contain.
var BadWords = []string{
	"редиска",
	"негодяй",
}

const (
	Warning          = "Не ругайтесь!"
	MsgRequired      = "Обязательное поле."
	MsgPasswordMatch = "Введённые пароли не совпадают."
	MsgUsername      = "Введите правильное имя пользователя. Оно может содержать только буквы, цифры и знаки @/./+/-/_."
)

var usernameRe = regexp.MustCompile(`^[\p{L}\p{N}@.+\-_]+$`)

// CommentForm is submitted when a comment is created or edited.
type CommentForm struct {
	Text string `form:"text" json:"text" validate:"required,nobadwords"`
}

type NewsForm struct {
	Title string `form:"title" json:"title" validate:"required,max=50"`
	Text  string `form:"text" json:"text" validate:"required"`
}

type SignupForm struct {
	Username  string `form:"username" json:"username" validate:"required,max=150,username"`
	Password1 string `form:"password1" json:"password1" trim:"false" validate:"required,min=8"`
	Password2 string `form:"password2" json:"password2" trim:"false" validate:"required,eqfield=Password1"`
}

type LoginForm struct {
	Username string `form:"username" json:"username" validate:"required"`
	Password string `form:"password" json:"password" trim:"false" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	must(v.RegisterValidation("nobadwords", func(fl validator.FieldLevel) bool {
		return !ContainsBadWords(fl.Field().String())
	}))
	must(v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(fl.Field().String())
	}))

	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// ContainsBadWords reports whether text contains any of BadWords.
// Matching is case-sensitive.
func ContainsBadWords(text string) bool {
	for _, word := range BadWords {
		if strings.Contains(text, word) {
			return true
		}
	}
	return false
}

// Validate trims the string fields of form (a pointer to one of the form
// structs) and checks it. The returned error is nil or common.ValidationErrors.
func Validate(form any) error {
	trimStrings(form)

	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate form: %w", err)
	}

	out := make(common.ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, common.ValidationError{
			Field:   fe.Field(),
			Message: message(fe),
		})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return MsgRequired
	case "nobadwords":
		return Warning
	case "username":
		return MsgUsername
	case "eqfield":
		return MsgPasswordMatch
	case "max":
		return fmt.Sprintf("Убедитесь, что это значение содержит не более %s символов.", fe.Param())
	case "min":
		return fmt.Sprintf("Убедитесь, что это значение содержит не менее %s символов.", fe.Param())
	default:
		return fmt.Sprintf("Значение не прошло проверку %q.", fe.Tag())
	}
}

func trimStrings(form any) {
	v := reflect.ValueOf(form)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return
	}
	v = v.Elem()
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		if t.Field(i).Tag.Get("trim") == "false" {
			continue
		}
		f := v.Field(i)
		if f.Kind() == reflect.String && f.CanSet() {
			f.SetString(strings.TrimSpace(f.String()))
		}
	}
}
