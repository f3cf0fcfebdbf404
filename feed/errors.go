package feed

import (
	"errors"
	"fmt"
)

var (
	// ErrUpstreamUnavailable - один из источников данных ленты не ответил, запрос можно повторить
	ErrUpstreamUnavailable = errors.New("feed upstream unavailable")
	ErrValidation          = errors.New("validation error")
	// ErrCacheMiss возвращается бэкендом кеша, когда ключа нет
	ErrCacheMiss = errors.New("cache miss")
	ErrNotFound  = errors.New("not found")
)

// UpstreamError - ошибка аксессора с именем операции
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrUpstreamUnavailable, e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstreamUnavailable
}

func upstream(op string, err error) error {
	if err == nil {
		return nil
	}
	var ue *UpstreamError
	if errors.As(err, &ue) || errors.Is(err, ErrNotFound) {
		return err
	}
	return &UpstreamError{Op: op, Err: err}
}

type ValidationError struct {
	Field string
	Value string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid %s %q", ErrValidation, e.Field, e.Value)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
