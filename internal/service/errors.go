package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput оборачивает все ошибки валидации входных данных
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

// InputError - ошибка валидации с сообщением для клиента
type InputError struct {
	Msg    string
	Fields []FieldError
}

type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func (e *InputError) Error() string {
	return e.Msg
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

func invalidf(format string, args ...any) error {
	return &InputError{Msg: fmt.Sprintf(format, args...)}
}
