package signer

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/farhan-syah/myinvois-client-sub000/pkg/myinvois"
)

// Digest calcula el SHA-256 de los bytes y lo devuelve en Base64.
// Es el único algoritmo de digest del contrato MyInvois.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return base64.StdEncoding.EncodeToString(sum[:])
}

// RSALocalSigner implementa myinvois.CryptoSigner con una llave RSA en
// memoria: RSASSA-PKCS1-v1_5 sobre SHA-256. Para firmar contra un HSM o un
// servicio de llaves remoto se inyecta otra implementación del puerto.
type RSALocalSigner struct {
	key *rsa.PrivateKey
}

// NewRSALocalSigner construye el firmador local. La llave debe ser RSA; el
// portal no acepta otros algoritmos de firma.
func NewRSALocalSigner(key crypto.PrivateKey) (*RSALocalSigner, error) {
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, myinvois.NewStepError("sign", myinvois.ErrSigning,
			fmt.Errorf("la llave privada debe ser RSA, no %T", key))
	}
	return &RSALocalSigner{key: rsaKey}, nil
}

// Sign firma los bytes canónicos del documento (no un digest previo: el
// primitivo hashea internamente; hashear dos veces produce firmas inválidas).
func (s *RSALocalSigner) Sign(_ context.Context, canonical []byte) ([]byte, error) {
	if len(canonical) == 0 {
		return nil, myinvois.NewStepError("sign", myinvois.ErrSigning,
			fmt.Errorf("bytes canónicos vacíos"))
	}
	hash := sha256.Sum256(canonical)
	sig, err := rsa.SignPKCS1v15(rand.Reader, s.key, crypto.SHA256, hash[:])
	if err != nil {
		return nil, myinvois.NewStepError("sign", myinvois.ErrSigning, err)
	}
	return sig, nil
}

var _ myinvois.CryptoSigner = (*RSALocalSigner)(nil)
