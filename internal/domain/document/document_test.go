package document_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farhan-syah/myinvois-client-sub000/internal/domain/document"
)

func TestParse_PreservaOrdenYLiterales(t *testing.T) {
	in := []byte(`{"b":2,"a":1,"total":1500.00,"items":[{"x":true},null],"name":"ñ"}`)

	obj, err := document.Parse(in)
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "a", "total", "items", "name"}, obj.Keys())

	out, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, string(in), string(out),
		"parse + marshal debe ser identidad sobre JSON ya minificado")
}

func TestParse_RechazaRaizNoObjeto(t *testing.T) {
	_, err := document.Parse([]byte(`[1,2,3]`))
	assert.Error(t, err)

	_, err = document.Parse([]byte(`"texto"`))
	assert.Error(t, err)
}

func TestParse_RechazaContenidoExtra(t *testing.T) {
	_, err := document.Parse([]byte(`{"a":1}{"b":2}`))
	assert.Error(t, err)
}

func TestObject_SetConservaPosicionAlReasignar(t *testing.T) {
	obj := document.NewObject().
		Set("a", document.NumberFromInt(1)).
		Set("b", document.NumberFromInt(2)).
		Set("a", document.NumberFromInt(9)) // reasignar no mueve la clave al final

	assert.Equal(t, []string{"a", "b"}, obj.Keys())
	v, ok := obj.Get("a")
	require.True(t, ok)
	assert.Equal(t, document.NumberFromInt(9), v)
}

func TestObject_CloneEsCopiaProfunda(t *testing.T) {
	inner := document.NewObject().Set("x", document.NumberFromInt(1))
	obj := document.NewObject().Set("inner", inner)

	clone := obj.CloneObject()
	inner.Set("x", document.NumberFromInt(99))

	cv, ok := clone.Get("inner")
	require.True(t, ok)
	got, ok := cv.(*document.Object).Get("x")
	require.True(t, ok)
	assert.Equal(t, document.NumberFromInt(1), got,
		"mutar el original no debe afectar al clon")
}

func TestObject_DeleteMantieneOrdenRestante(t *testing.T) {
	obj := document.NewObject().
		Set("a", document.NumberFromInt(1)).
		Set("b", document.NumberFromInt(2)).
		Set("c", document.NumberFromInt(3))
	obj.Delete("b")
	obj.Delete("no-existe") // ausencia no es error

	assert.Equal(t, []string{"a", "c"}, obj.Keys())
}

func TestEncode_EscapaControlesYComillas(t *testing.T) {
	obj := document.NewObject().
		Set("s", document.String("línea1\nlínea2\t\"fin\"\x01"))

	out, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"s":"línea1\nlínea2\t\"fin\"\u0001"}`, string(out))
}

func TestNumber_LiteralInvalidoFallaAlSerializar(t *testing.T) {
	obj := document.NewObject().Set("n", document.Number("12,5"))
	_, err := json.Marshal(obj)
	assert.Error(t, err)
}
