// Package document implementa el árbol JSON ordenado sobre el que opera la
// firma digital MyInvois. El orden de inserción de las claves ES significativo:
// el verificador de LHDN minifica el JSON tal cual se envió, por lo que
// reordenar claves invalida la firma.
package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// Value es un nodo del árbol. Implementaciones: *Object, Array, String,
// Number, Bool y Null (unión etiquetada; sin interface{} libre).
type Value interface {
	// Clone devuelve una copia profunda del nodo.
	Clone() Value
	// encode escribe la forma canónica (minificada) del nodo.
	encode(w *bytes.Buffer) error
}

// ── Object ────────────────────────────────────────────────────────────────────

// Object es un mapa que preserva el orden de inserción de sus claves.
type Object struct {
	keys   []string
	values map[string]Value
}

// NewObject crea un objeto vacío.
func NewObject() *Object {
	return &Object{values: make(map[string]Value)}
}

// Set asigna un valor. Si la clave ya existe conserva su posición original;
// si no, se añade al final.
func (o *Object) Set(key string, v Value) *Object {
	if o.values == nil {
		o.values = make(map[string]Value)
	}
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
	return o
}

// Get devuelve el valor de una clave y si existe.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Delete elimina una clave de primer nivel. Si no existe, no hace nada.
func (o *Object) Delete(key string) {
	if _, ok := o.values[key]; !ok {
		return
	}
	delete(o.values, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// Keys devuelve las claves en orden de inserción.
func (o *Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Len devuelve la cantidad de claves.
func (o *Object) Len() int { return len(o.keys) }

// Clone devuelve una copia profunda del objeto.
func (o *Object) Clone() Value { return o.CloneObject() }

// CloneObject es Clone con tipo concreto (evita el type assertion en llamadores).
func (o *Object) CloneObject() *Object {
	c := NewObject()
	for _, k := range o.keys {
		c.Set(k, o.values[k].Clone())
	}
	return c
}

func (o *Object) encode(w *bytes.Buffer) error {
	w.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			w.WriteByte(',')
		}
		encodeString(w, k)
		w.WriteByte(':')
		if err := o.values[k].encode(w); err != nil {
			return err
		}
	}
	w.WriteByte('}')
	return nil
}

// MarshalJSON serializa el objeto preservando el orden de claves.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := o.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ── Array ─────────────────────────────────────────────────────────────────────

// Array es una secuencia ordenada de valores.
type Array []Value

// Clone devuelve una copia profunda del array.
func (a Array) Clone() Value {
	c := make(Array, len(a))
	for i, v := range a {
		c[i] = v.Clone()
	}
	return c
}

func (a Array) encode(w *bytes.Buffer) error {
	w.WriteByte('[')
	for i, v := range a {
		if i > 0 {
			w.WriteByte(',')
		}
		if err := v.encode(w); err != nil {
			return err
		}
	}
	w.WriteByte(']')
	return nil
}

// MarshalJSON serializa el array en forma canónica.
func (a Array) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := a.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ── Escalares ─────────────────────────────────────────────────────────────────

// String es un valor de texto.
type String string

// Clone devuelve el mismo valor (inmutable).
func (s String) Clone() Value { return s }

func (s String) encode(w *bytes.Buffer) error {
	encodeString(w, string(s))
	return nil
}

// Number guarda el literal JSON del número tal cual fue escrito o construido.
// Conservar el literal garantiza que la serialización canónica reproduce los
// bytes exactos (1500.00 nunca se convierte en 1500).
type Number string

// NumberFromInt construye un Number desde un entero.
func NumberFromInt(n int64) Number { return Number(strconv.FormatInt(n, 10)) }

// Clone devuelve el mismo valor (inmutable).
func (n Number) Clone() Value { return n }

func (n Number) encode(w *bytes.Buffer) error {
	if !json.Valid([]byte(n)) || len(n) == 0 {
		return fmt.Errorf("document: literal numérico inválido %q", string(n))
	}
	w.WriteString(string(n))
	return nil
}

// Bool es un valor booleano.
type Bool bool

// Clone devuelve el mismo valor (inmutable).
func (b Bool) Clone() Value { return b }

func (b Bool) encode(w *bytes.Buffer) error {
	if b {
		w.WriteString("true")
	} else {
		w.WriteString("false")
	}
	return nil
}

// Null es el valor JSON null.
type Null struct{}

// Clone devuelve el mismo valor.
func (Null) Clone() Value { return Null{} }

func (Null) encode(w *bytes.Buffer) error {
	w.WriteString("null")
	return nil
}

// ── Parseo JSON → árbol ordenado ──────────────────────────────────────────────

// Parse decodifica un JSON cuyo nodo raíz debe ser un objeto, preservando el
// orden de claves y los literales numéricos.
func Parse(data []byte) (*Object, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, fmt.Errorf("document: parsear JSON: %w", err)
	}
	obj, ok := v.(*Object)
	if !ok {
		return nil, fmt.Errorf("document: el nodo raíz debe ser un objeto JSON")
	}
	// Rechazar contenido extra después del objeto raíz
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("document: contenido inesperado después del objeto raíz")
	}
	return obj, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("clave de objeto inesperada: %v", keyTok)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				obj.Set(key, val)
			}
			if _, err := dec.Token(); err != nil { // consumir '}'
				return nil, err
			}
			return obj, nil
		case '[':
			arr := Array{}
			for dec.More() {
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, val)
			}
			if _, err := dec.Token(); err != nil { // consumir ']'
				return nil, err
			}
			return arr, nil
		default:
			return nil, fmt.Errorf("delimitador inesperado %q", t)
		}
	case string:
		return String(t), nil
	case json.Number:
		return Number(t.String()), nil
	case bool:
		return Bool(t), nil
	case nil:
		return Null{}, nil
	default:
		return nil, fmt.Errorf("token inesperado %v", tok)
	}
}

// ── Escape de strings ─────────────────────────────────────────────────────────

const hexDigits = "0123456789abcdef"

// encodeString escribe un string JSON con el escape mínimo estándar
// (comillas, backslash y caracteres de control). No se escapan <, > ni &:
// el verificador remoto minifica el JSON tal cual, sin escape HTML.
func encodeString(w *bytes.Buffer, s string) {
	w.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			w.WriteString(`\"`)
		case '\\':
			w.WriteString(`\\`)
		case '\n':
			w.WriteString(`\n`)
		case '\r':
			w.WriteString(`\r`)
		case '\t':
			w.WriteString(`\t`)
		case '\b':
			w.WriteString(`\b`)
		case '\f':
			w.WriteString(`\f`)
		default:
			if r < 0x20 {
				w.WriteString(`\u00`)
				w.WriteByte(hexDigits[byte(r)>>4])
				w.WriteByte(hexDigits[byte(r)&0xF])
			} else {
				w.WriteRune(r)
			}
		}
	}
	w.WriteByte('"')
}
