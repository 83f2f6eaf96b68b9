package myinvois

import (
	"errors"
	"fmt"
)

// Taxonomía de errores de la tubería de firma. Cada paso que falla aborta el
// ensamblaje completo: nunca se devuelve un sobre parcial ni un documento con
// la extensión a medio escribir.
var (
	// ErrSerialization el documento no se pudo serializar o la exclusión está mal configurada.
	ErrSerialization = errors.New("error de serialización canónica")
	// ErrDigest falló el cómputo del hash (reservado para fallos de plataforma).
	ErrDigest = errors.New("error de cálculo de digest")
	// ErrSigning llave incompatible con el algoritmo o fallo del backend de firma.
	ErrSigning = errors.New("error de firma criptográfica")
	// ErrValidation metadata del certificado incompleta o entrada inválida.
	ErrValidation = errors.New("error de validación")
)

// StepError identifica el paso de la tubería que falló (canonicalize, digest,
// signed-properties, sign, embed, ...). Envuelve uno de los sentinel de arriba
// para que el llamador pueda clasificar con errors.Is.
type StepError struct {
	Step string // nombre del paso de la tubería
	Err  error
}

// Error implementa error.
func (e *StepError) Error() string {
	return fmt.Sprintf("myinvois: paso %s: %v", e.Step, e.Err)
}

// Unwrap permite errors.Is / errors.As sobre el error envuelto.
func (e *StepError) Unwrap() error { return e.Err }

// NewStepError construye el error de paso envolviendo la clase y la causa.
func NewStepError(step string, kind error, cause error) *StepError {
	if cause == nil {
		return &StepError{Step: step, Err: kind}
	}
	return &StepError{Step: step, Err: fmt.Errorf("%w: %v", kind, cause)}
}
