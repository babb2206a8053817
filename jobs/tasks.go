package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLowStockScan walks one tenant's stock levels and reports
	// products at or below their minimum.
	TaskLowStockScan = "stock:lowscan"
	// TaskLowStockScanAll fans a low-stock scan out to every tenant.
	TaskLowStockScanAll = "stock:lowscan:all"
)

// LowStockScanPayload names the tenant a scan runs against.
type LowStockScanPayload struct {
	TenantKey string `json:"tenant_key"`
}

// NewLowStockScanTask constructs a per-tenant scan task.
func NewLowStockScanTask(payload LowStockScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockScan, data), nil
}

// NewLowStockScanAllTask constructs the fan-out task. It carries no
// payload; the handler enumerates tenants from the control schema.
func NewLowStockScanAllTask() *asynq.Task {
	return asynq.NewTask(TaskLowStockScanAll, nil)
}
