package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrInvalidCredentials = errors.New("credenciales inválidas")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrSignedOut          = errors.New("no hay sesión activa")
)

// StoreError falla de transporte o rechazo del backend en una operación del
// Record Store (datos o auth). Envuelve el sentinel correspondiente cuando el
// rechazo es clasificable, así los llamadores pueden usar errors.Is.
type StoreError struct {
	Op      string // operación del contrato: list, create, update, delete, signUp, signIn, signOut
	Code    string // código del backend si lo hubo (ej. PGRST116, 23505); vacío en fallas de transporte
	Message string
	Err     error
}

func (e *StoreError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("store %s: %s (%s)", e.Op, e.Message, e.Code)
	}
	return fmt.Sprintf("store %s: %s", e.Op, e.Message)
}

func (e *StoreError) Unwrap() error { return e.Err }

// NewStoreError construye un StoreError envolviendo err (puede ser nil).
func NewStoreError(op, code, message string, err error) *StoreError {
	return &StoreError{Op: op, Code: code, Message: message, Err: err}
}

// ValidationError campo(s) requeridos ausentes o malformados en el formulario.
// Se genera localmente, antes de tocar el Gateway.
type ValidationError struct {
	Fields []string // nombres de campos inválidos, en orden de aparición
}

func (e *ValidationError) Error() string {
	return "campos inválidos o ausentes: " + strings.Join(e.Fields, ", ")
}
