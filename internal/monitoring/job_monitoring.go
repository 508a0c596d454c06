package monitoring

import (
	"context"
	"fmt"
	"math"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/abc-custody/custody-backend/internal/utils/logger"
)

// JobExecutionStatus represents different job execution states
type JobExecutionStatus string

const (
	JobStatusPending JobExecutionStatus = "pending"
	JobStatusRunning JobExecutionStatus = "running"
	JobStatusSuccess JobExecutionStatus = "success"
	JobStatusFailed  JobExecutionStatus = "failed"
	JobStatusStalled JobExecutionStatus = "stalled"
)

// CycleFunc is a poller cycle. It reports how many items the cycle
// handled and how many of those failed individually; err is reserved
// for failures that aborted the whole cycle.
type CycleFunc func() (processed, failed int, err error)

// JobStatus contains complete status information for a background job
type JobStatus struct {
	JobName             string             `json:"job_name"`
	Status              JobExecutionStatus `json:"status"`
	LastRunTime         time.Time          `json:"last_run_time"`
	LastDuration        time.Duration      `json:"last_duration_ms"`
	SuccessCount        int64              `json:"success_count"`
	FailureCount        int64              `json:"failure_count"`
	ConsecutiveFailures int64              `json:"consecutive_failures"`
	LastError           string             `json:"last_error,omitempty"`
	ItemsProcessed      int64              `json:"items_processed"`
	ItemsFailed         int64              `json:"items_failed"`
	AverageExecution    time.Duration      `json:"average_execution_ms"`
	MaxExecutionTime    time.Duration      `json:"max_execution_ms"`
	MinExecutionTime    time.Duration      `json:"min_execution_ms"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

// JobsSummary provides an overview of all job statuses
type JobsSummary struct {
	TotalJobs      int       `json:"total_jobs"`
	RunningJobs    int       `json:"running_jobs"`
	HealthyJobs    int       `json:"healthy_jobs"`
	UnhealthyJobs  int       `json:"unhealthy_jobs"`
	StalledJobs    int       `json:"stalled_jobs"`
	LastUpdateTime time.Time `json:"last_update_time"`
}

// JobStatusManager manages job status tracking with thread-safe operations
type JobStatusManager struct {
	mu               sync.RWMutex
	statuses         map[string]*JobStatus
	logger           *logger.Logger
	metrics          *BackgroundJobMetrics
	stalledThreshold time.Duration
}

// NewJobStatusManager creates a new job status manager instance
func NewJobStatusManager(logger *logger.Logger, metrics *BackgroundJobMetrics) *JobStatusManager {
	jsm := &JobStatusManager{
		statuses:         make(map[string]*JobStatus),
		logger:           logger,
		metrics:          metrics,
		stalledThreshold: 5 * time.Minute,
	}

	go jsm.startStalledJobDetection()

	return jsm
}

// RegisterJob registers a new job for monitoring
func (jsm *JobStatusManager) RegisterJob(jobName string) {
	jsm.mu.Lock()
	defer jsm.mu.Unlock()

	if _, exists := jsm.statuses[jobName]; !exists {
		jsm.statuses[jobName] = &JobStatus{
			JobName:          jobName,
			Status:           JobStatusPending,
			CreatedAt:        time.Now(),
			UpdatedAt:        time.Now(),
			MinExecutionTime: time.Duration(math.MaxInt64),
		}

		jsm.logger.Info("Job registered for monitoring", map[string]string{
			"job_name": jobName,
		})
	}
}

// StartJob marks a job as started and updates its status
func (jsm *JobStatusManager) StartJob(jobName string) {
	jsm.mu.Lock()
	defer jsm.mu.Unlock()

	status, exists := jsm.statuses[jobName]
	if !exists {
		status = &JobStatus{
			JobName:          jobName,
			CreatedAt:        time.Now(),
			MinExecutionTime: time.Duration(math.MaxInt64),
		}
		jsm.statuses[jobName] = status
	}
	status.Status = JobStatusRunning
	status.LastRunTime = time.Now()
	status.UpdatedAt = time.Now()

	jsm.metrics.activeJobs.Inc()
}

// CompleteJob marks a job as completed and updates all relevant statistics
func (jsm *JobStatusManager) CompleteJob(jobName string, processed, failed int, err error) {
	jsm.mu.Lock()
	defer jsm.mu.Unlock()

	status, exists := jsm.statuses[jobName]
	if !exists {
		jsm.logger.Error("Attempted to complete unregistered job", map[string]string{
			"job_name": jobName,
		})
		return
	}

	duration := time.Since(status.LastRunTime)
	status.LastDuration = duration
	status.UpdatedAt = time.Now()

	if duration < status.MinExecutionTime || status.MinExecutionTime == time.Duration(math.MaxInt64) {
		status.MinExecutionTime = duration
	}
	if duration > status.MaxExecutionTime {
		status.MaxExecutionTime = duration
	}

	totalRuns := status.SuccessCount + status.FailureCount
	if totalRuns > 0 {
		totalTime := status.AverageExecution * time.Duration(totalRuns)
		totalTime += duration
		status.AverageExecution = totalTime / time.Duration(totalRuns+1)
	} else {
		status.AverageExecution = duration
	}

	status.ItemsProcessed += int64(processed)
	status.ItemsFailed += int64(failed)
	jsm.metrics.itemsProcessed.WithLabelValues(jobName, "ok").Add(float64(processed - failed))
	jsm.metrics.itemsProcessed.WithLabelValues(jobName, "failed").Add(float64(failed))

	if err != nil {
		status.Status = JobStatusFailed
		status.FailureCount++
		status.ConsecutiveFailures++
		status.LastError = err.Error()

		jsm.metrics.jobRuns.WithLabelValues(jobName, "error").Inc()
		jsm.metrics.jobDuration.WithLabelValues(jobName, "failed").Observe(duration.Seconds())

		jsm.logger.Error("Job failed", map[string]string{
			"job_name":             jobName,
			"duration":             duration.String(),
			"error":                err.Error(),
			"error_type":           ClassifyJobError(err),
			"consecutive_failures": fmt.Sprintf("%d", status.ConsecutiveFailures),
		})
	} else {
		status.Status = JobStatusSuccess
		status.SuccessCount++
		status.ConsecutiveFailures = 0
		status.LastError = ""

		jsm.metrics.jobRuns.WithLabelValues(jobName, "success").Inc()
		jsm.metrics.jobDuration.WithLabelValues(jobName, "success").Observe(duration.Seconds())

		jsm.logger.Info("Job completed", map[string]string{
			"job_name":  jobName,
			"duration":  duration.String(),
			"processed": fmt.Sprintf("%d", processed),
			"failed":    fmt.Sprintf("%d", failed),
		})
	}

	jsm.metrics.activeJobs.Dec()
}

// GetJobStatus returns the current status of a specific job
func (jsm *JobStatusManager) GetJobStatus(jobName string) (*JobStatus, bool) {
	jsm.mu.RLock()
	defer jsm.mu.RUnlock()

	if status, exists := jsm.statuses[jobName]; exists {
		statusCopy := *status
		return &statusCopy, true
	}

	return nil, false
}

// GetAllJobStatuses returns the current status of all jobs
func (jsm *JobStatusManager) GetAllJobStatuses() map[string]JobStatus {
	jsm.mu.RLock()
	defer jsm.mu.RUnlock()

	result := make(map[string]JobStatus)
	currentTime := time.Now()

	for name, status := range jsm.statuses {
		statusCopy := *status

		if status.Status == JobStatusRunning &&
			currentTime.Sub(status.LastRunTime) > jsm.stalledThreshold {
			statusCopy.Status = JobStatusStalled
		}

		result[name] = statusCopy
	}

	return result
}

// GetJobsSummary returns a summary of all job statuses
func (jsm *JobStatusManager) GetJobsSummary() JobsSummary {
	statuses := jsm.GetAllJobStatuses()

	summary := JobsSummary{
		TotalJobs:      len(statuses),
		LastUpdateTime: time.Now(),
	}

	for _, status := range statuses {
		switch status.Status {
		case JobStatusRunning:
			summary.RunningJobs++
		case JobStatusSuccess:
			summary.HealthyJobs++
		case JobStatusFailed:
			summary.UnhealthyJobs++
		case JobStatusStalled:
			summary.StalledJobs++
		}
	}

	return summary
}

func (jsm *JobStatusManager) startStalledJobDetection() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		jsm.detectStalledJobs()
	}
}

func (jsm *JobStatusManager) detectStalledJobs() {
	jsm.mu.Lock()
	defer jsm.mu.Unlock()

	currentTime := time.Now()
	stalledCount := 0

	for jobName, status := range jsm.statuses {
		if status.Status == JobStatusRunning &&
			currentTime.Sub(status.LastRunTime) > jsm.stalledThreshold {

			status.Status = JobStatusStalled
			status.UpdatedAt = currentTime
			stalledCount++

			jsm.logger.Error("Job detected as stalled", map[string]string{
				"job_name":      jobName,
				"last_run_time": status.LastRunTime.Format(time.RFC3339),
				"duration":      currentTime.Sub(status.LastRunTime).String(),
			})
		}
	}

	jsm.metrics.stalledJobs.Set(float64(stalledCount))
}

// InstrumentedJob wraps a poller cycle with monitoring, timeout, and
// panic recovery. Activations of the same job never overlap: a tick that
// fires while the previous cycle is still running waits for it to finish.
type InstrumentedJob struct {
	jobName       string
	cycle         CycleFunc
	statusManager *JobStatusManager
	logger        *logger.Logger
	timeout       time.Duration

	// serializes activations; cron fires each tick on its own goroutine
	runMu sync.Mutex
}

// NewInstrumentedJob creates a new instrumented job wrapper
func NewInstrumentedJob(
	jobName string,
	cycle CycleFunc,
	statusManager *JobStatusManager,
	logger *logger.Logger,
	timeout time.Duration,
) *InstrumentedJob {
	statusManager.RegisterJob(jobName)

	return &InstrumentedJob{
		jobName:       jobName,
		cycle:         cycle,
		statusManager: statusManager,
		logger:        logger,
		timeout:       timeout,
	}
}

type cycleOutcome struct {
	processed int
	failed    int
	err       error
}

// Execute runs the cycle and records the outcome
func (ij *InstrumentedJob) Execute() {
	ij.runMu.Lock()
	defer ij.runMu.Unlock()

	ij.statusManager.StartJob(ij.jobName)

	ctx, cancel := context.WithTimeout(context.Background(), ij.timeout)
	defer cancel()

	done := make(chan cycleOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ij.logger.Error("Job panicked", map[string]string{
					"job_name":    ij.jobName,
					"panic":       fmt.Sprintf("%v", r),
					"stack_trace": string(debug.Stack()),
				})
				done <- cycleOutcome{err: fmt.Errorf("job panicked: %v", r)}
			}
		}()
		processed, failed, err := ij.cycle()
		done <- cycleOutcome{processed: processed, failed: failed, err: err}
	}()

	var outcome cycleOutcome
	select {
	case outcome = <-done:
	case <-ctx.Done():
		outcome = cycleOutcome{err: fmt.Errorf("job timeout after %v", ij.timeout)}
	}

	ij.statusManager.CompleteJob(ij.jobName, outcome.processed, outcome.failed, outcome.err)
}

// BackgroundJobMetrics contains all Prometheus metrics for background job monitoring
type BackgroundJobMetrics struct {
	jobDuration    *prometheus.HistogramVec
	jobRuns        *prometheus.CounterVec
	itemsProcessed *prometheus.CounterVec
	activeJobs     prometheus.Gauge
	stalledJobs    prometheus.Gauge
}

// NewBackgroundJobMetrics creates a new instance of background job metrics
func NewBackgroundJobMetrics() *BackgroundJobMetrics {
	return &BackgroundJobMetrics{
		jobDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "custody_backend_background_job_duration_seconds",
				Help:    "Background job execution duration in seconds",
				Buckets: []float64{1, 5, 10, 30, 60, 300, 600, 1800},
			},
			[]string{"job_name", "status"},
		),
		jobRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "custody_backend_background_job_runs_total",
				Help: "Total number of background job runs",
			},
			[]string{"job_name", "status"},
		),
		itemsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "custody_backend_job_items_total",
				Help: "Items handled by poller cycles, by outcome",
			},
			[]string{"job_name", "outcome"},
		),
		activeJobs: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "custody_backend_background_jobs_active",
				Help: "Number of currently running background jobs",
			},
		),
		stalledJobs: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "custody_backend_background_jobs_stalled",
				Help: "Number of stalled background jobs",
			},
		),
	}
}

// MustRegister registers all background job metrics with the provided registry
func (m *BackgroundJobMetrics) MustRegister(registry *prometheus.Registry) {
	registry.MustRegister(
		m.jobDuration,
		m.jobRuns,
		m.itemsProcessed,
		m.activeJobs,
		m.stalledJobs,
	)
}

// ClassifyJobError classifies errors into coarse types for alert routing
func ClassifyJobError(err error) string {
	if err == nil {
		return ""
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "timeout"), strings.Contains(errStr, "deadline"):
		return "timeout"
	case strings.Contains(errStr, "database"), strings.Contains(errStr, "sql"):
		return "database"
	case strings.Contains(errStr, "connection"), strings.Contains(errStr, "network"):
		return "network"
	case strings.Contains(errStr, "vault"), strings.Contains(errStr, "api"):
		return "external_api"
	case strings.Contains(errStr, "panic"):
		return "panic"
	default:
		return "unknown"
	}
}
