package myinvois

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// ── Constantes de entorno ──────────────────────────────────────────────────────

const (
	// AppEnvTest identificador del ambiente de pruebas (preprod LHDN).
	AppEnvTest = "test"
	// AppEnvProd identificador del ambiente de producción.
	AppEnvProd = "prod"
	// AppEnvDev identificador local: no llama a la plataforma.
	AppEnvDev = "dev"

	baseURLTest = "https://preprod-api.myinvois.hasil.gov.my"
	baseURLProd = "https://api.myinvois.hasil.gov.my"

	tokenPath       = "/connect/token"
	submissionsPath = "/api/v1.0/documentsubmissions"
	documentsPath   = "/api/v1.0/documents"

	// loginScope alcance fijo de la API de facturación.
	loginScope = "InvoicingAPI"

	// tokenRefreshMargin margen antes de la expiración para renovar el token.
	tokenRefreshMargin = 60 * time.Second
)

// BaseURLFor devuelve la URL base de la plataforma para un ambiente.
func BaseURLFor(env string) (string, error) {
	switch env {
	case AppEnvProd:
		return baseURLProd, nil
	case AppEnvTest:
		return baseURLTest, nil
	default:
		return "", fmt.Errorf("myinvois: ambiente desconocido %q (usar 'test' o 'prod')", env)
	}
}

// ── Puerto (interfaz) ──────────────────────────────────────────────────────────

// Submitter define el puerto de salida hacia la plataforma MyInvois.
// La implementación concreta usa la API REST; para tests se inyecta un mock.
type Submitter interface {
	// SubmitDocuments envía documentos firmados al endpoint de submissions.
	SubmitDocuments(ctx context.Context, docs []DocumentPayload) (*SubmissionResult, error)
	// GetSubmission consulta el estado de una submission previa.
	GetSubmission(ctx context.Context, submissionUID string) (*SubmissionStatus, error)
	// CancelDocument cancela un documento ya validado (ventana de 72 h).
	CancelDocument(ctx context.Context, documentUUID, reason string) error
}

// ── Cliente de plataforma ──────────────────────────────────────────────────────

// PlatformClient implementa Submitter contra la API REST de MyInvois.
// Obtiene el bearer token por client-credentials y lo cachea hasta su
// expiración (el exp del JWT manda; expires_in es el respaldo).
type PlatformClient struct {
	httpClient   *http.Client
	baseURL      string
	clientID     string
	clientSecret string
	log          zerolog.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewPlatformClient construye el cliente para un ambiente ("test" o "prod").
// El timeout es generoso: la validación de submissions puede tardar.
func NewPlatformClient(env, clientID, clientSecret string, log zerolog.Logger) (*PlatformClient, error) {
	baseURL, err := BaseURLFor(env)
	if err != nil {
		return nil, err
	}
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("myinvois: clientID y clientSecret son obligatorios")
	}
	return &PlatformClient{
		httpClient:   &http.Client{Timeout: 60 * time.Second},
		baseURL:      baseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		log:          log.With().Str("component", "myinvois-client").Logger(),
	}, nil
}

// ── Login y caché de token ────────────────────────────────────────────────────

// bearerToken devuelve un token vigente, renovándolo si expiró o está por
// expirar. Seguro para uso concurrente.
func (c *PlatformClient) bearerToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry.Add(-tokenRefreshMargin)) {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("scope", loginScope)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+tokenPath,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("myinvois: crear request de login: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("myinvois: login fallido: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // max 1 MB
	if err != nil {
		return "", fmt.Errorf("myinvois: leer respuesta de login: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("myinvois: login rechazado (HTTP %d): %s", resp.StatusCode, string(body))
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return "", fmt.Errorf("myinvois: parsear token: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("myinvois: login sin access_token")
	}

	c.accessToken = tok.AccessToken
	c.tokenExpiry = tokenExpiry(tok)
	c.log.Debug().Time("expiry", c.tokenExpiry).Msg("token de plataforma renovado")
	return c.accessToken, nil
}

// tokenExpiry determina la expiración del token: el claim exp del JWT es la
// fuente autoritativa; si el token no es parseable se usa expires_in.
func tokenExpiry(tok tokenResponse) time.Time {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tok.AccessToken, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			return exp.Time
		}
	}
	if tok.ExpiresIn > 0 {
		return time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	}
	// Sin información de expiración: forzar renovación en el siguiente uso.
	return time.Now()
}

// ── Helper HTTP autenticado ───────────────────────────────────────────────────

// doJSON ejecuta una llamada autenticada con cuerpo/respuesta JSON.
// out puede ser nil si la respuesta no interesa.
func (c *PlatformClient) doJSON(ctx context.Context, method, path string, in, out any) error {
	token, err := c.bearerToken(ctx)
	if err != nil {
		return err
	}

	var bodyReader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("myinvois: serializar cuerpo: %w", err)
		}
		bodyReader = strings.NewReader(string(payload))
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("myinvois: crear request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("myinvois: timeout o cancelación: %w", ctx.Err())
		}
		return fmt.Errorf("myinvois: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20)) // max 4 MB
	if err != nil {
		return fmt.Errorf("myinvois: leer respuesta: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("myinvois: la plataforma respondió HTTP %d [%s]: %s",
				resp.StatusCode, apiErr.Code, apiErr.Message)
		}
		return fmt.Errorf("myinvois: la plataforma respondió HTTP %d: %s", resp.StatusCode, string(raw))
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("myinvois: parsear respuesta: %w", err)
		}
	}
	return nil
}

var _ Submitter = (*PlatformClient)(nil)
