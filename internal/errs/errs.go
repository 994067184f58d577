// Package errs holds the sentinel and typed errors shared by the service and
// transport layers, so handlers can map them with errors.Is / errors.As.
package errs

import (
	"errors"
	"fmt"
)

var (
	ErrTicketNotFound   = errors.New("chamado não encontrado")
	ErrProfileNotFound  = errors.New("perfil não encontrado")
	ErrTicketClosed     = errors.New("não é possível atribuir um chamado encerrado")
	ErrAlreadyCancelled = errors.New("este chamado já foi cancelado")
	ErrAlreadyAssigned  = errors.New("chamado já atribuído a outro técnico")
	ErrOSNotAllowed     = errors.New("OS CELEPAR só pode ser informada com status aguardando_os")
	ErrForbidden        = errors.New("acesso restrito a administradores")
	ErrUnauthenticated  = errors.New("autenticação necessária")
	ErrInvalidInput     = errors.New("dados inválidos")
)

// ValidationError reports a rejected input field. No write happens when it is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Invalid is a shorthand for a field-level ValidationError.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// AssignmentConflictError is returned when the ticket already belongs to another technician.
type AssignmentConflictError struct {
	Current string
}

func (e *AssignmentConflictError) Error() string {
	return fmt.Sprintf("%s: %s", ErrAlreadyAssigned.Error(), e.Current)
}

func (e *AssignmentConflictError) Unwrap() error { return ErrAlreadyAssigned }

// PersistenceError wraps a store failure with the message shown to the caller.
type PersistenceError struct {
	Message string
	Err     error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Persistence wraps err unless it is nil or already a domain error.
func Persistence(message string, err error) error {
	if err == nil {
		return nil
	}
	if IsDomain(err) {
		return err
	}
	return &PersistenceError{Message: message, Err: err}
}

// IsDomain reports whether err is a business-rule rejection rather than an infrastructure failure.
func IsDomain(err error) bool {
	return errors.Is(err, ErrTicketClosed) ||
		errors.Is(err, ErrAlreadyCancelled) ||
		errors.Is(err, ErrAlreadyAssigned) ||
		errors.Is(err, ErrOSNotAllowed) ||
		errors.Is(err, ErrTicketNotFound) ||
		errors.Is(err, ErrProfileNotFound) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrInvalidInput)
}
