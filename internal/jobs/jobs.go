package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"crm/internal/dto"
	"crm/internal/money"
)

// ErrNoResults marks a job run that completed but had nothing to report.
var ErrNoResults = errors.New("no results")

// API is the part of the CRM API the jobs call.
type API interface {
	RestockLowStock(ctx context.Context) (*dto.RestockResponse, error)
	ListOrders(ctx context.Context, from *time.Time) ([]dto.OrderResponse, error)
	ListCustomers(ctx context.Context) ([]dto.CustomerResponse, error)
}

// Job produces the summary written to the job log. A returned error is
// written as a failure line instead.
type Job interface {
	Name() string
	Run(ctx context.Context) (string, error)
}

const (
	LowStockJobName  = "low-stock"
	RemindersJobName = "order-reminders"
	ReportJobName    = "crm-report"
)

type LowStockJob struct {
	api API
}

func NewLowStockJob(api API) *LowStockJob {
	return &LowStockJob{api: api}
}

func (j *LowStockJob) Name() string { return LowStockJobName }

func (j *LowStockJob) Run(ctx context.Context) (string, error) {
	resp, err := j.api.RestockLowStock(ctx)
	if err != nil {
		return "", err
	}
	if !resp.Success {
		return "", fmt.Errorf("restock rejected: %s", resp.Message)
	}
	if len(resp.UpdatedProducts) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoResults, resp.Message)
	}

	var b strings.Builder
	b.WriteString("Low stock update run.")
	for _, p := range resp.UpdatedProducts {
		fmt.Fprintf(&b, "\n - %s restocked to %d", p.Name, p.Stock)
	}
	b.WriteString("\n" + resp.Message)

	return b.String(), nil
}

// RemindersJob lists the orders placed within the reminder window.
type RemindersJob struct {
	api    API
	window time.Duration
	now    func() time.Time
}

func NewRemindersJob(api API, window time.Duration) *RemindersJob {
	return &RemindersJob{
		api:    api,
		window: window,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (j *RemindersJob) Name() string { return RemindersJobName }

func (j *RemindersJob) Run(ctx context.Context) (string, error) {
	from := j.now().Add(-j.window)

	orders, err := j.api.ListOrders(ctx, &from)
	if err != nil {
		return "", err
	}
	if len(orders) == 0 {
		return "", fmt.Errorf("%w: no orders since %s", ErrNoResults, from.Format(time.DateOnly))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Order reminders processed: %d orders", len(orders))
	for _, o := range orders {
		fmt.Fprintf(&b, "\nOrder ID: %d - Customer Email: %s", o.ID, o.CustomerEmail)
	}

	return b.String(), nil
}

// ReportJob counts customers and orders and sums order revenue.
type ReportJob struct {
	api API
}

func NewReportJob(api API) *ReportJob {
	return &ReportJob{api: api}
}

func (j *ReportJob) Name() string { return ReportJobName }

func (j *ReportJob) Run(ctx context.Context) (string, error) {
	customers, err := j.api.ListCustomers(ctx)
	if err != nil {
		return "", err
	}

	orders, err := j.api.ListOrders(ctx, nil)
	if err != nil {
		return "", err
	}

	totals := make([]decimal.Decimal, 0, len(orders))
	for _, o := range orders {
		total, err := money.Parse(o.TotalAmount)
		if err != nil {
			return "", fmt.Errorf("order %d has malformed total %q: %w", o.ID, o.TotalAmount, err)
		}
		totals = append(totals, total)
	}

	return fmt.Sprintf("Report: %d customers, %d orders, %s revenue",
		len(customers), len(orders), money.Format(money.SumTotal(totals))), nil
}
