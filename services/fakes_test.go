package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go_procure_backend/models"
)

// stubCompleter replays canned responses and counts calls.
type stubCompleter struct {
	mu        sync.Mutex
	responses []string
	err       error
	calls     int
	prompts   []string
}

func (c *stubCompleter) Complete(_ context.Context, _ string, prompt, _ string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.prompts = append(c.prompts, prompt)
	if c.err != nil {
		return "", c.err
	}
	if len(c.responses) == 0 {
		return "", fmt.Errorf("stubCompleter: no response configured")
	}
	response := c.responses[0]
	if len(c.responses) > 1 {
		c.responses = c.responses[1:]
	}
	return response, nil
}

func (c *stubCompleter) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// stubInventory serves an in-memory catalog with naive substring search.
type stubInventory struct {
	items     []models.AssetInventory
	searchErr error
}

func (r *stubInventory) SearchBySubstring(_ context.Context, terms []string, limit int) ([]models.AssetInventory, error) {
	if r.searchErr != nil {
		return nil, r.searchErr
	}
	var out []models.AssetInventory
	for _, item := range r.items {
		if len(terms) == 0 || anyTermMatches(item, terms) {
			out = append(out, item)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func anyTermMatches(item models.AssetInventory, terms []string) bool {
	haystack := item.ProductName + "\x00" + item.Category + "\x00" + item.CategoryAlias + "\x00" + item.Spec
	for _, term := range terms {
		if strings.Contains(haystack, term) {
			return true
		}
	}
	return false
}

func (r *stubInventory) GetByID(_ context.Context, id int64) (*models.AssetInventory, error) {
	for i := range r.items {
		if r.items[i].ID == id {
			item := r.items[i]
			return &item, nil
		}
	}
	return nil, nil
}

// stubTasks records tasks, details and status transitions in memory.
type stubTasks struct {
	mu       sync.Mutex
	nextID   int64
	tasks    map[int64]*models.ProcurementTask
	details  []models.ProcurementDetail
	statuses map[int64][]string

	appendErr error
}

func newStubTasks() *stubTasks {
	return &stubTasks{
		tasks:    make(map[int64]*models.ProcurementTask),
		statuses: make(map[int64][]string),
	}
}

func (r *stubTasks) CreateTask(_ context.Context, task *models.ProcurementTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	task.ID = r.nextID
	copied := *task
	r.tasks[task.ID] = &copied
	return nil
}

func (r *stubTasks) AppendDetail(_ context.Context, detail *models.ProcurementDetail) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return r.appendErr
	}
	detail.ID = int64(len(r.details) + 1)
	r.details = append(r.details, *detail)
	return nil
}

func (r *stubTasks) SetTaskStatus(_ context.Context, taskID int64, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses[taskID] = append(r.statuses[taskID], status)
	if task, ok := r.tasks[taskID]; ok {
		task.Status = status
	}
	return nil
}

func (r *stubTasks) GetTask(_ context.Context, taskID int64) (*models.ProcurementTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if task, ok := r.tasks[taskID]; ok {
		copied := *task
		return &copied, nil
	}
	return nil, fmt.Errorf("task %d not found", taskID)
}

func (r *stubTasks) GetDetails(_ context.Context, taskID int64) ([]models.ProcurementDetail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ProcurementDetail
	for _, d := range r.details {
		if d.TaskID == taskID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *stubTasks) ListTasks(_ context.Context, page, pageSize int) ([]models.ProcurementTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ProcurementTask
	for _, t := range r.tasks {
		out = append(out, *t)
	}
	return out, nil
}
