// signdoc firma un documento UBL-JSON sin enviarlo a la plataforma.
//
// Uso:
//
//	signdoc -in factura.json -out factura.signed.json [-wrap]
//
// El certificado se toma de MYINVOIS_CERT_PATH / MYINVOIS_CERT_KEY_PATH /
// MYINVOIS_CERT_PASSWORD (mismas variables que el servidor).
package main

import (
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/farhan-syah/myinvois-client-sub000/internal/domain/document"
	inframyinvois "github.com/farhan-syah/myinvois-client-sub000/internal/infrastructure/myinvois"
	"github.com/farhan-syah/myinvois-client-sub000/internal/infrastructure/myinvois/signer"
	"github.com/farhan-syah/myinvois-client-sub000/pkg/config"
)

func main() {
	inPath := flag.String("in", "", "documento UBL-JSON a firmar (cuerpo del Invoice)")
	outPath := flag.String("out", "", "destino del documento firmado (vacío = stdout)")
	wrap := flag.Bool("wrap", false, "envolver el resultado en el sobre de envío {_D,_A,_B,Invoice}")
	flag.Parse()

	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "uso: signdoc -in factura.json [-out salida.json] [-wrap]")
		os.Exit(2)
	}
	if err := run(*inPath, *outPath, *wrap); err != nil {
		fmt.Fprintln(os.Stderr, "signdoc:", err)
		os.Exit(1)
	}
}

func run(inPath, outPath string, wrap bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cargar configuración: %w", err)
	}

	cert, err := loadCertificate(cfg.MyInvois)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	doc, err := document.Parse(raw)
	if err != nil {
		return fmt.Errorf("parsear %s: %w", inPath, err)
	}

	svc := signer.NewDocumentSignatureService()
	signed, err := svc.SignDocument(context.Background(), doc, cert)
	if err != nil {
		return fmt.Errorf("firmar: %w", err)
	}

	out := signed
	if wrap {
		out = inframyinvois.WrapForSubmission(signed)
	}
	// Forma canónica, no json.Marshal: el escape HTML de encoding/json
	// alteraría los bytes que cubre la firma.
	encoded, err := document.Canonicalize(out, nil)
	if err != nil {
		return err
	}

	if outPath == "" {
		fmt.Println(string(encoded))
		return nil
	}
	return os.WriteFile(outPath, encoded, 0o644)
}

func loadCertificate(cfg config.MyInvoisConfig) (tls.Certificate, error) {
	if cfg.CertPath == "" {
		return tls.Certificate{}, fmt.Errorf("MYINVOIS_CERT_PATH no configurado")
	}
	lower := strings.ToLower(cfg.CertPath)
	if strings.HasSuffix(lower, ".p12") || strings.HasSuffix(lower, ".pfx") {
		return signer.LoadFromP12(cfg.CertPath, cfg.CertPassword)
	}
	return signer.LoadFromPEM(cfg.CertPath, cfg.CertKeyPath)
}
