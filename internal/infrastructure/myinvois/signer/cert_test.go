package signer_test

import (
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farhan-syah/myinvois-client-sub000/internal/infrastructure/myinvois/signer"
)

func TestLoadFromPEM_RutaVacia(t *testing.T) {
	_, err := signer.LoadFromPEM("", "")
	assert.ErrorContains(t, err, "ruta del certificado vacía",
		"una ruta vacía no puede producir un certificado utilizable")
}

func TestLoadFromPEM_ArchivoInexistente(t *testing.T) {
	_, err := signer.LoadFromPEM(filepath.Join(t.TempDir(), "no-existe.pem"), "")
	assert.Error(t, err)
}

func TestLoadFromPEM_ParSeparado(t *testing.T) {
	cert, key := generateTestCertificate(t)

	dir := t.TempDir()
	certPath := filepath.Join(dir, "cert.pem")
	keyPath := filepath.Join(dir, "key.pem")
	require.NoError(t, os.WriteFile(certPath, pem.EncodeToMemory(
		&pem.Block{Type: "CERTIFICATE", Bytes: cert.Certificate[0]}), 0o600))
	require.NoError(t, os.WriteFile(keyPath, pem.EncodeToMemory(
		&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}), 0o600))

	loaded, err := signer.LoadFromPEM(certPath, keyPath)
	require.NoError(t, err)
	assert.NotEmpty(t, loaded.Certificate)
	assert.NotNil(t, loaded.PrivateKey)
}
