package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Documentos-api/internal/application/auth"
	appposting "github.com/jhoicas/Documentos-api/internal/application/posting"
	"github.com/jhoicas/Documentos-api/internal/domain/entity"
	"github.com/jhoicas/Documentos-api/internal/domain/posting"
	infrapdf "github.com/jhoicas/Documentos-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Documentos-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Documentos-api/internal/interfaces/http"
	"github.com/jhoicas/Documentos-api/pkg/config"
	"github.com/jhoicas/Documentos-api/pkg/logger"
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
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Repos atados al pool: solo lecturas fuera de transacción.
	docRepo := postgres.NewDocumentRepository(pool)
	lineRepo := postgres.NewLineRepository(pool)
	itemRepo := postgres.NewItemRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Cuentas fijas del asiento por tipo de documento.
	accounts := map[string]posting.Accounts{
		entity.DocTypeGRN: {
			Contra: cfg.Posting.GRNContraAccount,
			Tax:    cfg.Posting.GRNTaxAccount,
		},
		entity.DocTypeSupplierReturn: {
			Contra: cfg.Posting.PurRtnContraAccount,
			Tax:    cfg.Posting.PurRtnTaxAccount,
		},
		entity.DocTypeSalesReturn: {
			Contra: cfg.Posting.SlsRtnContraAccount,
			Tax:    cfg.Posting.SlsRtnTaxAccount,
		},
	}

	documentUC := appposting.NewDocumentUseCase(txRunner, docRepo, lineRepo, itemRepo, accounts)

	pdfGenerator := infrapdf.NewMarotoPDFGenerator()
	pdfUC := appposting.NewPDFUseCase(docRepo, lineRepo, itemRepo, pdfGenerator)

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Documentos API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		DocumentUC: documentUC,
		PDFUC:      pdfUC,
		AuthUC:     authUC,
		JWTSecret:  cfg.JWT.Secret,
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
