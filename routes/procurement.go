package routes

import (
	"go_procure_backend/handlers"

	"github.com/gofiber/fiber/v2"
)

func RegisterProcurementRoutes(app *fiber.App, handler *handlers.ProcurementHandler) {
	procurement := app.Group("api/procurement")
	procurement.Post("/analyze-text", handler.AnalyzeText)
	procurement.Post("/analyze-file", handler.AnalyzeFile)
	procurement.Post("/analyze-files", handler.AnalyzeFiles)
	procurement.Get("/tasks", handler.ListTasks)
	procurement.Get("/tasks/:task_id", handler.GetTask)
	procurement.Post("/export", handler.Export)
}
