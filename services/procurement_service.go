package services

import (
	"context"
	"fmt"
	"strings"

	"go_procure_backend/models"
	"go_procure_backend/pkg/logging"
	"go_procure_backend/platform/logbus"
	"go_procure_backend/repository"
)

// UploadedFile is one fully buffered spreadsheet upload.
type UploadedFile struct {
	Name string
	Data []byte
}

// ProcurementService drives the pipeline: extract, then per item
// parse -> search -> decide -> persist, in input order. Items within a
// task run sequentially so the session log reads causally.
type ProcurementService struct {
	gateway *AIGateway
	parser  *RequirementParser
	matcher *MatchingService
	excel   *ExcelService
	tasks   repository.TaskRepository
	catalog repository.InventoryRepository
	bus     *logbus.Bus
}

func NewProcurementService(
	gateway *AIGateway,
	parser *RequirementParser,
	matcher *MatchingService,
	excel *ExcelService,
	tasks repository.TaskRepository,
	catalog repository.InventoryRepository,
	bus *logbus.Bus,
) *ProcurementService {
	return &ProcurementService{
		gateway: gateway,
		parser:  parser,
		matcher: matcher,
		excel:   excel,
		tasks:   tasks,
		catalog: catalog,
		bus:     bus,
	}
}

// AnalyzeText extracts requirements from free text via the AI bulk
// extraction capability and matches them.
func (s *ProcurementService) AnalyzeText(ctx context.Context, sessionID, content string) (*models.AnalyzeResponse, error) {
	task := &models.ProcurementTask{
		TaskName:     "text analysis",
		InputType:    "text",
		InputContent: content,
		Status:       models.TaskStatusProcessing,
	}
	if err := s.tasks.CreateTask(ctx, task); err != nil {
		return nil, err
	}

	requirements, err := s.gateway.ExtractRequirements(ctx, sessionID, content)
	if err != nil {
		s.failTask(ctx, task.ID)
		return nil, err
	}
	return s.runMatch(ctx, sessionID, task, requirements, "")
}

// AnalyzeFiles parses one or more uploaded spreadsheets into a single
// merged task. An extraction error on any file fails the whole task
// before any matching starts.
func (s *ProcurementService) AnalyzeFiles(ctx context.Context, sessionID string, files []UploadedFile, archiveKeys []string) (*models.AnalyzeResponse, error) {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	taskName := fmt.Sprintf("file analysis: %s", strings.Join(names, ", "))
	if r := []rune(taskName); len(r) > 190 {
		taskName = string(r[:190])
	}
	task := &models.ProcurementTask{
		TaskName:  taskName,
		InputType: "excel",
		FilePath:  strings.Join(archiveKeys, ", "),
		Status:    models.TaskStatusProcessing,
	}
	if err := s.tasks.CreateTask(ctx, task); err != nil {
		return nil, err
	}

	var requirements []models.RequirementItem
	for _, file := range files {
		items, err := s.excel.ParseProcurementFile(file.Name, file.Data)
		if err != nil {
			s.log(sessionID, models.LogLevelError, fmt.Sprintf("failed to parse %s: %v", file.Name, err))
			s.failTask(ctx, task.ID)
			return nil, err
		}
		s.log(sessionID, models.LogLevelInfo,
			fmt.Sprintf("parsed %d requirement(s) from %s", len(items), file.Name))
		requirements = append(requirements, items...)
	}

	suffix := fmt.Sprintf(" (from %d file(s))", len(files))
	return s.runMatch(ctx, sessionID, task, requirements, suffix)
}

// MatchItems is the batch-match operation: every submitted item yields
// exactly one persisted detail, in input order. The caller owns the
// task's lifecycle when using this directly.
func (s *ProcurementService) MatchItems(ctx context.Context, sessionID string, taskID int64, items []models.RequirementItem) ([]models.ProcurementDetailResponse, error) {
	details := make([]models.ProcurementDetailResponse, 0, len(items))
	for _, item := range items {
		parsedName, parsedSpec := s.parser.Parse(ctx, sessionID, item)

		outcome, err := s.matcher.Match(ctx, sessionID, item, parsedName, parsedSpec)
		if err != nil {
			return nil, err
		}

		detail := &models.ProcurementDetail{
			TaskID:          taskID,
			OriginalContent: originalContent(item),
			ParsedName:      outcome.ParsedName,
			ParsedSpec:      outcome.ParsedSpec,
			ParsedQuantity:  item.Quantity,
			MatchedAssetID:  outcome.MatchedID,
			ConfidenceScore: outcome.Confidence,
			MatchReason:     outcome.Reason,
			Status:          "completed",
		}
		// persisted immediately so earlier items survive a later failure
		if err := s.tasks.AppendDetail(ctx, detail); err != nil {
			return nil, err
		}

		details = append(details, models.ProcurementDetailResponse{
			ID:              detail.ID,
			OriginalContent: detail.OriginalContent,
			ParsedName:      detail.ParsedName,
			ParsedSpec:      detail.ParsedSpec,
			ParsedQuantity:  detail.ParsedQuantity,
			ConfidenceScore: detail.ConfidenceScore,
			MatchReason:     detail.MatchReason,
			Status:          detail.Status,
			Matched:         models.MatchedInventoryOf(outcome.Matched),
		})
	}
	return details, nil
}

func (s *ProcurementService) runMatch(ctx context.Context, sessionID string, task *models.ProcurementTask, items []models.RequirementItem, msgSuffix string) (*models.AnalyzeResponse, error) {
	details, err := s.MatchItems(ctx, sessionID, task.ID, items)
	if err != nil {
		s.failTask(ctx, task.ID)
		return nil, err
	}

	if err := s.tasks.SetTaskStatus(ctx, task.ID, models.TaskStatusCompleted); err != nil {
		return nil, err
	}
	s.log(sessionID, models.LogLevelInfo, fmt.Sprintf("task %d completed, %d item(s)", task.ID, len(details)))

	return &models.AnalyzeResponse{
		TaskID:  task.ID,
		Status:  models.TaskStatusCompleted,
		Message: fmt.Sprintf("matched %d requirement(s)%s", len(details), msgSuffix),
		Details: details,
	}, nil
}

func (s *ProcurementService) failTask(ctx context.Context, taskID int64) {
	if err := s.tasks.SetTaskStatus(ctx, taskID, models.TaskStatusFailed); err != nil {
		logging.Logger.Error("failed to mark task failed", "task_id", taskID, "error", err)
	}
}

// GetTask loads one task with its details and the matched catalog rows.
func (s *ProcurementService) GetTask(ctx context.Context, taskID int64) (*models.ProcurementTaskResponse, error) {
	task, err := s.tasks.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	rows, err := s.tasks.GetDetails(ctx, taskID)
	if err != nil {
		return nil, err
	}

	details := make([]models.ProcurementDetailResponse, 0, len(rows))
	for _, d := range rows {
		var matched *models.MatchedInventory
		if d.MatchedAssetID != nil {
			inv, err := s.catalog.GetByID(ctx, *d.MatchedAssetID)
			if err != nil {
				return nil, err
			}
			matched = models.MatchedInventoryOf(inv)
		}
		details = append(details, models.ProcurementDetailResponse{
			ID:              d.ID,
			OriginalContent: d.OriginalContent,
			ParsedName:      d.ParsedName,
			ParsedSpec:      d.ParsedSpec,
			ParsedQuantity:  d.ParsedQuantity,
			ConfidenceScore: d.ConfidenceScore,
			MatchReason:     d.MatchReason,
			Status:          d.Status,
			Matched:         matched,
		})
	}

	return &models.ProcurementTaskResponse{
		ID:         task.ID,
		TaskName:   task.TaskName,
		InputType:  task.InputType,
		Status:     task.Status,
		CreateTime: task.CreateTime,
		Details:    details,
	}, nil
}

// ListTasks returns a page of tasks without their details.
func (s *ProcurementService) ListTasks(ctx context.Context, page, pageSize int) ([]models.ProcurementTaskResponse, error) {
	tasks, err := s.tasks.ListTasks(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}
	out := make([]models.ProcurementTaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, models.ProcurementTaskResponse{
			ID:         t.ID,
			TaskName:   t.TaskName,
			InputType:  t.InputType,
			Status:     t.Status,
			CreateTime: t.CreateTime,
			Details:    []models.ProcurementDetailResponse{},
		})
	}
	return out, nil
}

func originalContent(item models.RequirementItem) string {
	quantity := 1.0
	if item.Quantity != nil {
		quantity = *item.Quantity
	}
	spec := item.Spec
	if spec != "" {
		spec = " " + spec
	}
	return fmt.Sprintf("%s%s x%g", item.Name, spec, quantity)
}

func (s *ProcurementService) log(sessionID, level, message string) {
	if s.bus != nil {
		s.bus.Log(sessionID, level, message)
	}
}
