package services

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"routeerp_go/config"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const (
	overallStatusOK       = "ok"
	overallStatusDegraded = "degraded"
	overallStatusCritical = "critical"

	dependencyStatusUp       = "up"
	dependencyStatusDown     = "down"
	dependencyStatusDisabled = "disabled"

	defaultServiceName = "Route Academy ERP API"
	defaultVersion     = "1.0.0"
	defaultTimeout     = 1500 * time.Millisecond
)

// HealthService aggregates application health information for reporting endpoints.
type HealthService struct {
	serviceName string
	version     string
	startTime   time.Time
	timeout     time.Duration
	db          *gorm.DB
	redis       *redis.Client
}

// HealthReport represents the JSON response for health endpoints.
type HealthReport struct {
	Status        string             `json:"status"`
	Service       string             `json:"service"`
	Version       string             `json:"version"`
	Environment   string             `json:"environment"`
	Time          time.Time          `json:"time"`
	UptimeSeconds float64            `json:"uptime_seconds"`
	UptimeHuman   string             `json:"uptime_human"`
	Dependencies  []DependencyStatus `json:"dependencies"`
	Metrics       HealthMetrics      `json:"metrics"`
	Flags         HealthFlags        `json:"flags"`
	System        HealthSystem       `json:"system"`
}

// DependencyStatus captures the health of a single external dependency.
type DependencyStatus struct {
	Name      string                 `json:"name"`
	Status    string                 `json:"status"`
	LatencyMs int64                  `json:"latency_ms"`
	Error     string                 `json:"error,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// HealthMetrics captures runtime metrics for diagnostics.
type HealthMetrics struct {
	Goroutines     int    `json:"goroutines"`
	HeapAllocBytes uint64 `json:"heap_alloc_bytes"`
	SysBytes       uint64 `json:"sys_bytes"`
	NumGC          uint32 `json:"num_gc"`
}

// HealthFlags exposes feature toggles that influence runtime behaviour.
type HealthFlags struct {
	SkipMigrate   bool `json:"skip_migrate"`
	SeedDemoData  bool `json:"seed_demo_data"`
	ReportArchive bool `json:"report_archive"`
}

// HealthSystem exposes static information about the running system.
type HealthSystem struct {
	GoVersion string `json:"go_version"`
	GoOS      string `json:"go_os"`
	GoArch    string `json:"go_arch"`
}

// NewHealthService creates a HealthService probing db and, when not nil, redisClient.
func NewHealthService(serviceName, version string, db *gorm.DB, redisClient *redis.Client) *HealthService {
	if strings.TrimSpace(serviceName) == "" {
		serviceName = defaultServiceName
	}
	if strings.TrimSpace(version) == "" {
		version = defaultVersion
	}

	return &HealthService{
		serviceName: serviceName,
		version:     version,
		startTime:   time.Now(),
		timeout:     defaultTimeout,
		db:          db,
		redis:       redisClient,
	}
}

// SetStartTime overrides the start time used for uptime calculations.
func (s *HealthService) SetStartTime(t time.Time) {
	if !t.IsZero() {
		s.startTime = t
	}
}

// GetHealthReport collects the current health information.
func (s *HealthService) GetHealthReport(ctx context.Context) HealthReport {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	report := HealthReport{
		Status:      overallStatusOK,
		Service:     s.serviceName,
		Version:     s.version,
		Environment: currentEnvironment(),
		Time:        time.Now().UTC(),
	}

	uptime := time.Since(s.startTime)
	if uptime < 0 {
		uptime = 0
	}
	report.UptimeSeconds = uptime.Seconds()
	report.UptimeHuman = humanizeDuration(uptime)

	dbDep := s.checkDatabase(ctx)
	report.Status = combineStatus(report.Status, dbDep.status)
	redisDep := s.checkRedis(ctx)
	report.Status = combineStatus(report.Status, redisDep.status)
	report.Dependencies = []DependencyStatus{dbDep.DependencyStatus, redisDep.DependencyStatus}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	report.Metrics = HealthMetrics{
		Goroutines:     runtime.NumGoroutine(),
		HeapAllocBytes: mem.HeapAlloc,
		SysBytes:       mem.Sys,
		NumGC:          mem.NumGC,
	}
	if config.AppConfig != nil {
		report.Flags = HealthFlags{
			SkipMigrate:   config.AppConfig.SkipMigrate,
			SeedDemoData:  config.AppConfig.SeedDemoData,
			ReportArchive: config.AppConfig.S3Enabled(),
		}
	}
	report.System = HealthSystem{
		GoVersion: runtime.Version(),
		GoOS:      runtime.GOOS,
		GoArch:    runtime.GOARCH,
	}

	return report
}

// HTTPStatusForOverall maps a health status to an HTTP status code.
func (s *HealthService) HTTPStatusForOverall(status string) int {
	switch status {
	case overallStatusCritical:
		return 503
	default:
		return 200
	}
}

type probe struct {
	DependencyStatus
	status string
}

func (s *HealthService) checkDatabase(ctx context.Context) probe {
	p := probe{DependencyStatus: DependencyStatus{Name: "database"}, status: overallStatusOK}

	if s.db == nil {
		p.Status = dependencyStatusDown
		p.Error = "database connection not initialised"
		p.status = overallStatusCritical
		return p
	}

	sqlDB, err := s.db.DB()
	if err != nil {
		p.Status = dependencyStatusDown
		p.Error = fmt.Sprintf("sql DB handle error: %v", err)
		p.status = overallStatusCritical
		return p
	}

	pingCtx, cancel := context.WithTimeout(ctx, 1*time.Second)
	start := time.Now()
	err = sqlDB.PingContext(pingCtx)
	cancel()
	p.LatencyMs = time.Since(start).Milliseconds()

	if err != nil {
		p.Status = dependencyStatusDown
		p.Error = err.Error()
		p.status = overallStatusCritical
		return p
	}

	p.Status = dependencyStatusUp
	stats := sqlDB.Stats()
	p.Details = map[string]interface{}{
		"driver":               s.db.Dialector.Name(),
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"max_open_connections": stats.MaxOpenConnections,
	}
	return p
}

// checkRedis never marks the service critical: sessions fall back to memory.
func (s *HealthService) checkRedis(ctx context.Context) probe {
	p := probe{DependencyStatus: DependencyStatus{Name: "redis"}, status: overallStatusOK}

	if s.redis == nil {
		p.Status = dependencyStatusDisabled
		p.Details = map[string]interface{}{"sessions": "memory"}
		return p
	}

	pingCtx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	start := time.Now()
	err := s.redis.Ping(pingCtx).Err()
	cancel()
	p.LatencyMs = time.Since(start).Milliseconds()

	if err != nil {
		p.Status = dependencyStatusDown
		p.Error = err.Error()
		p.status = overallStatusDegraded
		return p
	}

	p.Status = dependencyStatusUp
	p.Details = map[string]interface{}{
		"address":  s.redis.Options().Addr,
		"sessions": "redis",
	}
	return p
}

func currentEnvironment() string {
	if config.AppConfig == nil {
		return "unknown"
	}
	env := strings.TrimSpace(config.AppConfig.AppEnv)
	if env == "" {
		return "unknown"
	}
	return env
}

func combineStatus(current, candidate string) string {
	order := map[string]int{
		overallStatusOK:       0,
		overallStatusDegraded: 1,
		overallStatusCritical: 2,
	}

	if _, ok := order[current]; !ok {
		current = overallStatusOK
	}

	if v, ok := order[candidate]; ok && v > order[current] {
		return candidate
	}
	return current
}

func humanizeDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}

	d = d.Round(time.Second)
	days := d / (24 * time.Hour)
	d %= 24 * time.Hour
	hours := d / time.Hour
	d %= time.Hour
	minutes := d / time.Minute
	d %= time.Minute
	seconds := d / time.Second

	parts := []string{}
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if seconds > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%ds", seconds))
	}

	return strings.Join(parts, " ")
}
