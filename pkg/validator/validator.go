package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Validator provides validation functionality
type Validator interface {
	Validate(interface{}) error
}

type playgroundValidator struct {
	v *validator.Validate
}

var (
	once     sync.Once
	instance *validator.Validate
)

// Engine returns the shared go-playground validator with the custom rules registered.
func Engine() *validator.Validate {
	once.Do(func() {
		instance = validator.New()
		instance.SetTagName("binding")
		instance.RegisterTagNameFunc(jsonTagName)
		Register(instance)
	})
	return instance
}

// Register installs the custom rules on v. gin's binding validator calls
// this too so both paths agree on tags.
func Register(v *validator.Validate) {
	_ = v.RegisterValidation("slotdate", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("2006-01-02", fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("slottime", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("15:04", fl.Field().String())
		return err == nil
	})
}

// UseWithGin installs the custom rules and json field names on gin's
// binding validator.
func UseWithGin() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonTagName)
		Register(v)
	}
}

func New() Validator {
	return &playgroundValidator{v: Engine()}
}

func (p *playgroundValidator) Validate(obj interface{}) error {
	if err := p.v.Struct(obj); err != nil {
		return Format(err)
	}
	return nil
}

// Format turns validator field errors into a single readable error.
func Format(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must not exceed %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "slotdate":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field)
	case "slottime":
		return fmt.Sprintf("%s must be a time in HH:MM format", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func jsonTagName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return f.Name
	}
	return name
}
