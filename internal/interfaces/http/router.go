package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Documentos-api/internal/application/auth"
	appposting "github.com/jhoicas/Documentos-api/internal/application/posting"
)

// RouterDeps dependencias inyectadas al router.
type RouterDeps struct {
	DocumentUC *appposting.DocumentUseCase
	PDFUC      *appposting.PDFUseCase
	AuthUC     *auth.AuthUseCase
	JWTSecret  string
}

// Router registra todas las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	authHandler := NewAuthHandler(deps.AuthUC)
	documentHandler := NewDocumentHandler(deps.DocumentUC, deps.PDFUC)

	api := app.Group("/api")

	// Rutas públicas
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas por JWT
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	documents := protected.Group("/documents")
	documents.Post("/:type", documentHandler.Create)
	documents.Get("/:type/:number", documentHandler.Get)
	documents.Put("/:type/:number", documentHandler.Update)
	documents.Delete("/:type/:number", documentHandler.Delete)
	documents.Get("/:type/:number/pdf", documentHandler.DownloadPDF)
}
