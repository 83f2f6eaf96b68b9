package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	appeinvoice "github.com/farhan-syah/myinvois-client-sub000/internal/application/einvoice"
	inframyinvois "github.com/farhan-syah/myinvois-client-sub000/internal/infrastructure/myinvois"
	"github.com/farhan-syah/myinvois-client-sub000/internal/infrastructure/myinvois/signer"
	"github.com/farhan-syah/myinvois-client-sub000/internal/infrastructure/postgres"
	httpRouter "github.com/farhan-syah/myinvois-client-sub000/internal/interfaces/http"
	"github.com/farhan-syah/myinvois-client-sub000/pkg/config"
	"github.com/farhan-syah/myinvois-client-sub000/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("myinvois_env", cfg.MyInvois.Environment).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	einvoiceRepo := postgres.NewEInvoiceRepository(pool)
	builder := inframyinvois.NewDocumentBuilderService()
	docSigner := signer.NewDocumentSignatureService()

	// Cliente de la plataforma — solo se usa si el entorno es "test" o "prod".
	// En modo "dev" el orquestador no lo invoca.
	var submitter inframyinvois.Submitter
	if cfg.MyInvois.Environment != inframyinvois.AppEnvDev && cfg.MyInvois.Environment != "" {
		client, err := inframyinvois.NewPlatformClient(
			cfg.MyInvois.Environment, cfg.MyInvois.ClientID, cfg.MyInvois.ClientSecret, log.Zerolog(),
		)
		if err != nil {
			log.Fatal().Err(err).Msg("cliente MyInvois")
		}
		submitter = client
	}

	// Orchestrator: ciclo UBL-JSON → Firma JSON → Submission → Update DB
	orchestrator := appeinvoice.NewOrchestrator(
		einvoiceRepo, builder, docSigner, submitter,
		appeinvoice.PlatformConfig{
			AppEnv:       cfg.MyInvois.Environment,
			CertPath:     cfg.MyInvois.CertPath,
			CertKeyPath:  cfg.MyInvois.CertKeyPath,
			CertPassword: cfg.MyInvois.CertPassword,
		},
		log.Zerolog(),
	)
	createEInvoiceUC := appeinvoice.NewCreateEInvoiceUseCase(einvoiceRepo, orchestrator, nil)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		CreateEInvoice: createEInvoiceUC,
		Orchestrator:   orchestrator,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
