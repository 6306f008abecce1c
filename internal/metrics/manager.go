package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/compute/metadata"
	monitoring "cloud.google.com/go/monitoring/apiv3/v2"
	"cloud.google.com/go/monitoring/apiv3/v2/monitoringpb"
	"google.golang.org/genproto/googleapis/api/metric"
	"google.golang.org/genproto/googleapis/api/monitoredres"
	"google.golang.org/protobuf/types/known/timestamppb"
)

const (
	// Metric type prefix for custom metrics
	metricTypePrefix = "custom.googleapis.com/bamboohr_mcp"
)

// ToolStats are the cumulative counters for one tool
type ToolStats struct {
	Calls    int64 `json:"calls"`
	Failures int64 `json:"failures"`
}

// Manager handles GCP metrics reporting
type Manager struct {
	config      *Config
	client      *monitoring.MetricClient
	projectPath string
	logger      *slog.Logger
	instanceID  string

	// isEnabled gates reporting to GCP; counters are kept either way
	isEnabled bool

	mu        sync.RWMutex
	tools     map[string]*ToolStats
	startTime time.Time

	// Background reporter
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewManager creates a new metrics manager
// If metrics are disabled or initialization fails, returns a no-op manager
func NewManager(ctx context.Context, config *Config, logger *slog.Logger) (*Manager, error) {
	m := &Manager{
		config:    config,
		logger:    logger,
		tools:     make(map[string]*ToolStats),
		startTime: time.Now(),
		stopCh:    make(chan struct{}),
	}

	if !config.Enabled {
		logger.Info("GCP metrics reporting disabled")
		return m, nil
	}

	m.instanceID = getInstanceID()

	client, err := monitoring.NewMetricClient(ctx)
	if err != nil {
		logger.Warn("Failed to create GCP Monitoring client, metrics will be disabled",
			"error", err)
		return m, nil
	}
	m.client = client

	projectID := config.ProjectID
	if projectID == "" {
		projectID = detectProjectID()
		if projectID == "" {
			logger.Warn("Could not detect GCP project ID, metrics will be disabled")
			client.Close()
			m.client = nil
			return m, nil
		}
	}
	m.projectPath = fmt.Sprintf("projects/%s", projectID)
	m.isEnabled = true

	logger.Info("GCP metrics reporting enabled",
		"project", projectID,
		"report_interval", config.ReportInterval,
		"instance_id", m.instanceID)

	// The reporter has its own lifecycle controlled by stopCh
	m.wg.Add(1)
	go m.reportLoop()

	return m, nil
}

// RecordToolCall counts one tool invocation. A nil manager ignores the
// call; a disabled one still counts it for Snapshot.
func (m *Manager) RecordToolCall(tool string, failed bool) {
	if m == nil {
		return
	}

	m.mu.Lock()
	stats, ok := m.tools[tool]
	if !ok {
		stats = &ToolStats{}
		m.tools[tool] = stats
	}
	stats.Calls++
	if failed {
		stats.Failures++
	}
	m.mu.Unlock()

	if !m.isEnabled {
		return
	}
	m.logger.Info("mcp_tool_call",
		"tool", tool,
		"failed", failed,
		"company", m.config.Company,
		"instance_id", m.instanceID,
	)
}

// Snapshot returns a copy of the per-tool counters
func (m *Manager) Snapshot() map[string]ToolStats {
	if m == nil {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]ToolStats, len(m.tools))
	for name, stats := range m.tools {
		out[name] = *stats
	}
	return out
}

// Close stops the background reporter and closes the client
func (m *Manager) Close() error {
	if m == nil || m.client == nil {
		return nil
	}

	close(m.stopCh)
	m.wg.Wait()

	return m.client.Close()
}

// reportLoop runs the periodic metric reporting
func (m *Manager) reportLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.config.ReportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			// Final report before shutdown
			m.report()
			return
		case <-ticker.C:
			m.report()
		}
	}
}

// report sends current metrics to GCP Monitoring
func (m *Manager) report() {
	if m.client == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	timeSeries := m.buildTimeSeries(time.Now())
	if len(timeSeries) == 0 {
		return
	}

	err := m.client.CreateTimeSeries(ctx, &monitoringpb.CreateTimeSeriesRequest{
		Name:       m.projectPath,
		TimeSeries: timeSeries,
	})
	if err != nil {
		m.logger.Warn("Failed to report metrics to GCP Monitoring",
			"error", err,
			"series", len(timeSeries))
		return
	}

	m.logger.Debug("Reported metrics to GCP Monitoring",
		"series", len(timeSeries))
}

// buildTimeSeries converts the counters into one tool_calls and one
// tool_failures series per tool, ordered by tool name.
func (m *Manager) buildTimeSeries(now time.Time) []*monitoringpb.TimeSeries {
	snapshot := m.Snapshot()

	names := make([]string, 0, len(snapshot))
	for name := range snapshot {
		names = append(names, name)
	}
	sort.Strings(names)

	series := make([]*monitoringpb.TimeSeries, 0, 2*len(names))
	for _, name := range names {
		stats := snapshot[name]
		series = append(series,
			m.createCumulativeTimeSeries("tool_calls", name, stats.Calls, m.startTime, now),
			m.createCumulativeTimeSeries("tool_failures", name, stats.Failures, m.startTime, now),
		)
	}
	return series
}

// createCumulativeTimeSeries creates a cumulative time series for a counter metric
func (m *Manager) createCumulativeTimeSeries(metricName, tool string, value int64, startTime, endTime time.Time) *monitoringpb.TimeSeries {
	labels := map[string]string{
		"instance_id": m.instanceID,
		"tool":        tool,
	}
	if m.config.Company != "" {
		labels["company"] = m.config.Company
	}
	if m.config.Profile != "" {
		labels["profile"] = m.config.Profile
	}

	return &monitoringpb.TimeSeries{
		Metric: &metric.Metric{
			Type:   fmt.Sprintf("%s/%s", metricTypePrefix, metricName),
			Labels: labels,
		},
		Resource: &monitoredres.MonitoredResource{
			Type: "global",
			Labels: map[string]string{
				"project_id": extractProjectID(m.projectPath),
			},
		},
		MetricKind: metric.MetricDescriptor_CUMULATIVE,
		ValueType:  metric.MetricDescriptor_INT64,
		Points: []*monitoringpb.Point{
			{
				Interval: &monitoringpb.TimeInterval{
					StartTime: timestamppb.New(startTime),
					EndTime:   timestamppb.New(endTime),
				},
				Value: &monitoringpb.TypedValue{
					Value: &monitoringpb.TypedValue_Int64Value{
						Int64Value: value,
					},
				},
			},
		},
	}
}

// projectEnvVars are checked in order before asking the metadata server
var projectEnvVars = []string{"GOOGLE_CLOUD_PROJECT", "GCLOUD_PROJECT", "GCP_PROJECT"}

func detectProjectID() string {
	for _, key := range projectEnvVars {
		if id := os.Getenv(key); id != "" {
			return id
		}
	}

	// Works in Cloud Run, GCE, GKE
	if metadata.OnGCE() {
		if id, err := metadata.ProjectIDWithContext(context.Background()); err == nil {
			return id
		}
	}

	return ""
}

// getInstanceID returns a unique instance identifier for metric labels
func getInstanceID() string {
	if rev := os.Getenv("K_REVISION"); rev != "" {
		return rev
	}
	if instance := os.Getenv("INSTANCE_ID"); instance != "" {
		return instance
	}
	if hostname, err := os.Hostname(); err == nil {
		return hostname
	}
	return "unknown"
}

// extractProjectID returns PROJECT_ID from "projects/PROJECT_ID"
func extractProjectID(projectPath string) string {
	id, ok := strings.CutPrefix(projectPath, "projects/")
	if !ok {
		return ""
	}
	return id
}
