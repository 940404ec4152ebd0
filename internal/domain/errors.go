package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every concrete error below matches exactly one of them via errors.Is.
var (
	// ErrValidation обязательное поле отсутствует или имеет неверный формат
	ErrValidation = errors.New("validation failed")

	// ErrNotFound запись не найдена
	ErrNotFound = errors.New("record not found")

	// ErrInvalidIdentifier идентификатор имеет неверный формат
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// ErrDuplicateKey нарушение уникальности
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrUnsupportedMedia изображение отклонено по типу или размеру
	ErrUnsupportedMedia = errors.New("unsupported media")

	// ErrStore сбой хранилища
	ErrStore = errors.New("store failure")
)

// ValidationError представляет ошибку валидации одного поля
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors представляет набор ошибок валидации
type ValidationErrors []ValidationError

// Error реализует интерфейс error
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}

	if len(e) == 1 {
		return fmt.Sprintf("validation failed: %s - %s", e[0].Field, e[0].Message)
	}

	parts := make([]string, len(e))
	for i, ve := range e {
		parts[i] = ve.Field + " - " + ve.Message
	}
	return fmt.Sprintf("validation failed: %d errors: %s", len(e), strings.Join(parts, "; "))
}

// Is makes errors.Is(err, ErrValidation) true
func (e ValidationErrors) Is(target error) bool {
	return target == ErrValidation
}

// Add добавляет ошибку валидации
func (e *ValidationErrors) Add(field, message string) {
	*e = append(*e, ValidationError{Field: field, Message: message})
}

// HasErrors проверяет наличие ошибок
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Fields возвращает список полей с ошибками
func (e ValidationErrors) Fields() []string {
	fields := make([]string, len(e))
	for i, err := range e {
		fields[i] = err.Field
	}
	return fields
}

// GetByField возвращает сообщение об ошибке для указанного поля
func (e ValidationErrors) GetByField(field string) string {
	for _, err := range e {
		if err.Field == field {
			return err.Message
		}
	}
	return ""
}

// OrNil returns nil for an empty set so callers can `return errs.OrNil()`.
func (e ValidationErrors) OrNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// NewValidationError builds a single-field validation error
func NewValidationError(field, message string) ValidationErrors {
	return ValidationErrors{{Field: field, Message: message}}
}

// NotFoundError представляет ошибку "не найдено"
type NotFoundError struct {
	Entity string
	ID     string
}

// Error реализует интерфейс error
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Entity, e.ID)
}

// Is проверяет, является ли ошибка ошибкой типа "не найдено"
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError создает новую ошибку "не найдено"
func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{
		Entity: entity,
		ID:     id,
	}
}

// InvalidIDError представляет идентификатор неверного формата
type InvalidIDError struct {
	Entity string
	ID     string
}

// Error реализует интерфейс error
func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("invalid %s ID %q", e.Entity, e.ID)
}

// Is проверяет, является ли ошибка ошибкой идентификатора
func (e *InvalidIDError) Is(target error) bool {
	return target == ErrInvalidIdentifier
}

// NewInvalidIDError создает новую ошибку идентификатора
func NewInvalidIDError(entity, id string) *InvalidIDError {
	return &InvalidIDError{
		Entity: entity,
		ID:     id,
	}
}

// DuplicateError представляет ошибку дубликата
type DuplicateError struct {
	Entity string
	Field  string
	Value  string
}

// Error реализует интерфейс error
func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s with %s '%s' already exists", e.Entity, e.Field, e.Value)
}

// Is проверяет, является ли ошибка ошибкой дубликата
func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicateKey
}

// NewDuplicateError создает новую ошибку дубликата
func NewDuplicateError(entity, field, value string) *DuplicateError {
	return &DuplicateError{
		Entity: entity,
		Field:  field,
		Value:  value,
	}
}

// MediaError описывает отклоненное изображение
type MediaError struct {
	FileName    string
	ContentType string
	Size        int64
	TooLarge    bool
}

// Error реализует интерфейс error
func (e *MediaError) Error() string {
	if e.TooLarge {
		return fmt.Sprintf("image %q is too large (%d bytes)", e.FileName, e.Size)
	}
	return fmt.Sprintf("image %q has unsupported type %q: only JPEG, JPG, PNG, GIF are allowed", e.FileName, e.ContentType)
}

// Is проверяет, является ли ошибка ошибкой медиа
func (e *MediaError) Is(target error) bool {
	return target == ErrUnsupportedMedia
}

// StoreError оборачивает сбой нижележащего хранилища
type StoreError struct {
	Op  string
	Err error
}

// Error реализует интерфейс error
func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

// Is проверяет, является ли ошибка ошибкой хранилища
func (e *StoreError) Is(target error) bool {
	return target == ErrStore
}

// Unwrap возвращает оригинальную ошибку
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError wraps err as a store failure of operation op
func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}
