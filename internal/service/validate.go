package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"sleep-tracker/internal/compliance"

	"github.com/go-playground/validator/v10"
)

var Validate *validator.Validate

func init() {
	Validate = validator.New()

	// В сообщениях используем имена полей из JSON
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	Validate.RegisterStructValidation(validateSubmitDuration, SubmitInput{})
}

// validateSubmitDuration проверяет, что часы и минуты вместе не превышают сутки
func validateSubmitDuration(sl validator.StructLevel) {
	in := sl.Current().Interface().(SubmitInput)
	if in.SleepH == nil || in.SleepM == nil {
		return
	}
	if compliance.ToMinutes(*in.SleepH, *in.SleepM) > compliance.MinutesPerDay {
		sl.ReportError(in.SleepM, "sleep_m", "SleepM", "max_duration", "")
	}
}

// validateStruct проверяет структуру и сворачивает ошибки в InputError
func validateStruct(s any) error {
	err := Validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &InputError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: fieldMessage(fe),
		})
	}
	out.Msg = out.Fields[0].Message
	return out
}

func fieldMessage(fe validator.FieldError) string {
	if fe.Tag() == "max_duration" {
		return "sleep duration must be at most " + compliance.FormatDuration(compliance.MinutesPerDay)
	}

	switch fe.Field() {
	case "sleep_h":
		return "sleep_h must be an integer between 0 and 24"
	case "sleep_m":
		return "sleep_m must be an integer between 0 and 59"
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "datetime":
		return fmt.Sprintf("%s must be YYYY-MM-DD", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "len", "alpha":
		return fmt.Sprintf("%s must be a 2-letter code", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed '%s' validation", fe.Field(), fe.Tag())
	}
}
