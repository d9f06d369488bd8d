package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"crm/internal/config"
	"crm/internal/dto"
)

func testJobsConfig() config.JobsConfig {
	return config.JobsConfig{
		LowStockLog:       "/tmp/low.log",
		RemindersLog:      "/tmp/reminders.log",
		ReportLog:         "/tmp/report.log",
		LowStockSchedule:  "0 0 */12 * * *",
		RemindersSchedule: "0 30 8 * * *",
		ReportSchedule:    "0 0 6 * * 1",
		ReminderWindow:    7 * 24 * time.Hour,
	}
}

func TestEntries(t *testing.T) {
	entries := Entries(testJobsConfig(), &mockAPI{})

	require.Len(t, entries, 3)
	assert.Equal(t, LowStockJobName, entries[0].Job.Name())
	assert.Equal(t, "/tmp/low.log", entries[0].LogPath)
	assert.Equal(t, RemindersJobName, entries[1].Job.Name())
	assert.Equal(t, "0 30 8 * * *", entries[1].Schedule)
	assert.Equal(t, ReportJobName, entries[2].Job.Name())

	e, ok := Find(entries, ReportJobName)
	assert.True(t, ok)
	assert.Equal(t, "/tmp/report.log", e.LogPath)

	_, ok = Find(entries, "nope")
	assert.False(t, ok)
}

func TestScheduler_Register(t *testing.T) {
	s := NewScheduler(NewRunner(zap.NewNop()), zap.NewNop())

	err := s.Register(context.Background(), Entries(testJobsConfig(), &mockAPI{})...)
	assert.NoError(t, err)
}

func TestScheduler_RegisterInvalidSpec(t *testing.T) {
	s := NewScheduler(NewRunner(zap.NewNop()), zap.NewNop())

	err := s.Register(context.Background(), Entry{Job: NewReportJob(&mockAPI{}), Schedule: "every tuesday", LogPath: "/tmp/x"})

	assert.ErrorContains(t, err, "scheduling crm-report")
}

func TestScheduler_RunsJobs(t *testing.T) {
	ran := make(chan struct{}, 1)
	api := &mockAPI{
		ListCustomersFunc: func(ctx context.Context) ([]dto.CustomerResponse, error) {
			select {
			case ran <- struct{}{}:
			default:
			}
			return nil, nil
		},
		ListOrdersFunc: func(ctx context.Context, from *time.Time) ([]dto.OrderResponse, error) { return nil, nil },
	}

	s := NewScheduler(NewRunner(zap.NewNop()), zap.NewNop())
	require.NoError(t, s.Register(context.Background(), Entry{
		Job:      NewReportJob(api),
		Schedule: "* * * * * *",
		LogPath:  t.TempDir() + "/report.log",
	}))
	s.Start()
	defer s.Stop()

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}
}
