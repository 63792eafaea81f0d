package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"go_procure_backend/models"
	"go_procure_backend/pkg/errs"
	"go_procure_backend/pkg/logging"
	"go_procure_backend/platform/logbus"
	"go_procure_backend/platform/storage"
	"go_procure_backend/services"

	"github.com/gofiber/fiber/v2"
)

type ProcurementHandler struct {
	procurement *services.ProcurementService
	excel       *services.ExcelService
	storage     *storage.Service // nil when no bucket is configured
	bus         *logbus.Bus
	maxFileSize int64
}

func NewProcurementHandler(procurement *services.ProcurementService, excel *services.ExcelService, storageService *storage.Service, bus *logbus.Bus, maxFileSize int64) *ProcurementHandler {
	return &ProcurementHandler{
		procurement: procurement,
		excel:       excel,
		storage:     storageService,
		bus:         bus,
		maxFileSize: maxFileSize,
	}
}

// sessionID registers the caller's session so pipeline events reach its
// log stream. No header means no streaming, which is fine.
func (h *ProcurementHandler) sessionID(c *fiber.Ctx) string {
	sessionID := c.Get("X-Session-Id")
	if sessionID != "" {
		h.bus.Register(sessionID)
	}
	return sessionID
}

func (h *ProcurementHandler) AnalyzeText(c *fiber.Ctx) error {
	var req models.TextAnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}
	if strings.TrimSpace(req.Content) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Content required"})
	}

	resp, err := h.procurement.AnalyzeText(c.UserContext(), h.sessionID(c), req.Content)
	if err != nil {
		logging.Logger.Error("text analysis failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(resp)
}

// AnalyzeFile keeps the single-file route working by delegating to the
// multi-file handler.
func (h *ProcurementHandler) AnalyzeFile(c *fiber.Ctx) error {
	return h.AnalyzeFiles(c)
}

func (h *ProcurementHandler) AnalyzeFiles(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Multipart form required"})
	}
	fileHeaders := form.File["file"]
	if len(fileHeaders) == 0 {
		fileHeaders = form.File["files"]
	}
	if len(fileHeaders) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "File required"})
	}

	sessionID := h.sessionID(c)
	ctx := c.UserContext()

	var files []services.UploadedFile
	var archiveKeys []string
	for _, fh := range fileHeaders {
		lower := strings.ToLower(fh.Filename)
		if !strings.HasSuffix(lower, ".xlsx") && !strings.HasSuffix(lower, ".xls") {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("File %s is not an Excel workbook (.xlsx/.xls)", fh.Filename),
			})
		}
		if fh.Size > h.maxFileSize {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "File too large"})
		}
		data, err := readUpload(fh)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Failed to read upload"})
		}
		files = append(files, services.UploadedFile{Name: fh.Filename, Data: data})
		if key := h.archive(ctx, fh.Filename, data); key != "" {
			archiveKeys = append(archiveKeys, key)
		}
	}

	resp, err := h.procurement.AnalyzeFiles(ctx, sessionID, files, archiveKeys)
	if err != nil {
		var extractionErr *errs.ExtractionError
		if errors.As(err, &extractionErr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		logging.Logger.Error("file analysis failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(resp)
}

// archive is best effort: a missing or failing bucket never blocks the
// analysis itself.
func (h *ProcurementHandler) archive(ctx context.Context, filename string, data []byte) string {
	if h.storage == nil {
		return ""
	}
	key, err := h.storage.ArchiveUpload(ctx, filename, data)
	if err != nil {
		logging.Logger.Warn("upload archive failed", "file", filename, "error", err)
		return ""
	}
	return key
}

func (h *ProcurementHandler) ListTasks(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("page_size", 20)
	tasks, err := h.procurement.ListTasks(c.UserContext(), page, pageSize)
	if err != nil {
		logging.Logger.Error("list tasks failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list tasks"})
	}
	return c.JSON(tasks)
}

func (h *ProcurementHandler) GetTask(c *fiber.Ctx) error {
	taskID, err := c.ParamsInt("task_id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid task id"})
	}
	task, err := h.procurement.GetTask(c.UserContext(), int64(taskID))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Task not found"})
	}
	return c.JSON(task)
}

func (h *ProcurementHandler) Export(c *fiber.Ctx) error {
	var req models.ExportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}
	buf, err := h.excel.BuildExport(req)
	if err != nil {
		logging.Logger.Error("export failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Export failed"})
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename=procurement_result.xlsx`)
	return c.Send(buf.Bytes())
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	file, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer func(f multipart.File) {
		if cerr := f.Close(); cerr != nil {
			logging.Logger.Warn("error closing upload", "error", cerr)
		}
	}(file)
	return io.ReadAll(file)
}
