package document

import (
	"bytes"
	"fmt"
)

// Canonicalize serializa el documento a su forma canónica (JSON minificado,
// claves en orden de inserción) después de eliminar los campos de primer nivel
// indicados. El documento de entrada no se modifica: se trabaja sobre una
// copia profunda.
//
// Invariante: dos llamadas con entradas estructuralmente idénticas producen
// bytes idénticos. Cualquier divergencia con la minificación del verificador
// remoto invalida la firma.
//
// Los campos excluidos solo se eliminan del primer nivel; ocurrencias anidadas
// con el mismo nombre se conservan.
func Canonicalize(doc *Object, exclude []string) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("document: documento nulo")
	}
	copy := doc.CloneObject()
	for _, field := range exclude {
		copy.Delete(field) // ausencia no es error
	}
	var buf bytes.Buffer
	if err := copy.encode(&buf); err != nil {
		return nil, fmt.Errorf("document: serializar forma canónica: %w", err)
	}
	return buf.Bytes(), nil
}
