package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"docvault/internal/auth"
	"docvault/internal/http/middleware"
	"docvault/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Every document, search, and attachment route sits behind the API key gate;
// health and docs endpoints do not.
func RegisterRoutes(app *fiber.App, db *sql.DB, keyring *auth.Keyring, docSvc service.DocumentService, attSvc service.AttachmentService) {
	// Serve OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	// Health endpoints: readiness checks DB connectivity, liveness does not
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	gate := middleware.APIKey(keyring)

	// Document store
	app.Get("/documents", gate, ListDocuments(docSvc))
	app.Post("/documents", gate, CreateDocument(docSvc))
	app.Get("/documents/:id", gate, GetDocument(docSvc))
	app.Put("/documents/:id", gate, UpdateDocument(docSvc))
	app.Delete("/documents/:id", gate, DeleteDocument(docSvc))
	app.Get("/search", gate, SearchDocuments(docSvc))

	// Attachment store
	app.Post("/upload/:documentId", gate, UploadAttachment(attSvc))
	app.Get("/pdf/:documentId", gate, FetchAttachment(attSvc))
	app.Delete("/pdf/:documentId", gate, DeleteAttachment(attSvc))
}
