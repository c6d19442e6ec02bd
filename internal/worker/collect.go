package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartcity/smartcity/internal/airquality"
	"github.com/smartcity/smartcity/internal/alert"
	"github.com/smartcity/smartcity/internal/archive"
)

// ReadingRecorder stores readings.
type ReadingRecorder interface {
	Record(ctx context.Context, r *airquality.Reading) error
}

// CollectionLogger stores collection attempts.
type CollectionLogger interface {
	SaveCollectionLog(ctx context.Context, l *airquality.CollectionLog) error
}

// AlertRaiser stores alerts and reports how many were new.
type AlertRaiser interface {
	Raise(ctx context.Context, alerts []alert.Alert) (int, error)
}

// CollectJobConfig holds configuration for creating a CollectJob.
type CollectJobConfig struct {
	Config    CollectConfig
	Providers []airquality.Provider
	Readings  ReadingRecorder
	Logs      CollectionLogger
	Alerts    AlertRaiser

	// Policy evaluates readings from AlertSources. Defaults to alert.DefaultLivePolicy.
	Policy alert.Policy

	// AlertSources lists the providers whose readings are evaluated.
	// Defaults to AQICN only.
	AlertSources []airquality.Source

	// Archive receives raw payloads. Defaults to archive.NoopStore.
	Archive archive.Store

	Metrics *Metrics
	Logger  zerolog.Logger
}

// CollectJob fetches every provider for every city, stores the readings and
// raises alerts.
type CollectJob struct {
	config       CollectConfig
	providers    []airquality.Provider
	readings     ReadingRecorder
	logs         CollectionLogger
	alerts       AlertRaiser
	policy       alert.Policy
	alertSources map[airquality.Source]bool
	archive      archive.Store
	metrics      *Metrics
	logger       zerolog.Logger

	mu    sync.RWMutex
	stats Stats
}

// NewCollectJob creates a new collection job.
func NewCollectJob(cfg CollectJobConfig) *CollectJob {
	policy := cfg.Policy
	if policy == nil {
		policy = alert.DefaultLivePolicy()
	}

	sources := cfg.AlertSources
	if len(sources) == 0 {
		sources = []airquality.Source{airquality.SourceAQICN}
	}
	alertSources := make(map[airquality.Source]bool, len(sources))
	for _, s := range sources {
		alertSources[s] = true
	}

	store := cfg.Archive
	if store == nil {
		store = archive.NoopStore{}
	}

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = NewMetrics()
	}

	return &CollectJob{
		config:       cfg.Config.withDefaults(),
		providers:    cfg.Providers,
		readings:     cfg.Readings,
		logs:         cfg.Logs,
		alerts:       cfg.Alerts,
		policy:       policy,
		alertSources: alertSources,
		archive:      store,
		metrics:      metrics,
		logger:       cfg.Logger,
	}
}

// CollectResult contains the result of one collection run.
type CollectResult struct {
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
	Tasks        int
	Successful   int
	Failed       int
	AlertsRaised int
	Errors       []CollectError
}

// CollectError describes one failed provider fetch.
type CollectError struct {
	Provider airquality.Source
	City     string
	Error    string
}

type task struct {
	provider airquality.Provider
	city     string
}

type taskResult struct {
	task   task
	alerts int
	err    error
}

// Run executes one collection over all cities and providers.
func (j *CollectJob) Run(ctx context.Context) *CollectResult {
	startTime := time.Now()
	j.metrics.runs.Inc()

	tasks := make([]task, 0, len(j.config.Cities)*len(j.providers))
	for _, city := range j.config.Cities {
		for _, p := range j.providers {
			tasks = append(tasks, task{provider: p, city: city})
		}
	}

	result := &CollectResult{StartTime: startTime, Tasks: len(tasks)}

	j.logger.Info().
		Int("tasks", len(tasks)).
		Int("concurrency", j.config.Concurrency).
		Msg("starting collection run")

	tasksChan := make(chan task, len(tasks))
	resultsChan := make(chan taskResult, len(tasks))

	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.collectWorker(ctx, tasksChan, resultsChan)
		}()
	}

	for _, t := range tasks {
		tasksChan <- t
	}
	close(tasksChan)

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	for tr := range resultsChan {
		if tr.err != nil {
			result.Failed++
			result.Errors = append(result.Errors, CollectError{
				Provider: tr.task.provider.Name(),
				City:     tr.task.city,
				Error:    tr.err.Error(),
			})
			continue
		}
		result.Successful++
		result.AlertsRaised += tr.alerts
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)
	j.updateStats(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Int("alerts", result.AlertsRaised).
		Msg("collection run completed")

	return result
}

func (j *CollectJob) collectWorker(ctx context.Context, tasks <-chan task, results chan<- taskResult) {
	for t := range tasks {
		select {
		case <-ctx.Done():
			results <- taskResult{task: t, err: ctx.Err()}
		default:
			alerts, err := j.collect(ctx, t)
			results <- taskResult{task: t, alerts: alerts, err: err}
		}
	}
}

// collect fetches one provider for one city. Every attempt is logged to the
// collection log, whatever its outcome.
func (j *CollectJob) collect(ctx context.Context, t task) (int, error) {
	source := t.provider.Name()
	logger := j.logger.With().Str("provider", string(source)).Str("city", t.city).Logger()

	fetchCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	start := time.Now()
	fetch, err := t.provider.FetchCurrent(fetchCtx, t.city)
	j.metrics.observeFetch(string(source), time.Since(start), err)
	if err == nil && (fetch == nil || fetch.Reading == nil) {
		err = airquality.ErrProviderUnavailable
	}
	if err != nil {
		logger.Warn().Err(err).Msg("provider fetch failed")
		j.saveLog(ctx, source, airquality.CollectionError, 0, err.Error())
		return 0, err
	}

	reading := fetch.Reading
	reading.City = t.city
	reading.Source = source

	j.archiveRaw(ctx, source, t.city, reading.RecordedAt, fetch.Raw)

	if err := j.readings.Record(ctx, reading); err != nil {
		err = fmt.Errorf("store reading: %w", err)
		logger.Error().Err(err).Msg("failed to store reading")
		j.saveLog(ctx, source, airquality.CollectionError, 0, err.Error())
		return 0, err
	}
	j.metrics.readings.Inc()

	raised := j.evaluate(ctx, reading, logger)

	j.saveLog(ctx, source, airquality.CollectionSuccess, 1, "")
	logger.Info().
		Int64("reading_id", reading.ID).
		Interface("aqi", reading.AQI).
		Msg("reading collected")

	return raised, nil
}

func (j *CollectJob) evaluate(ctx context.Context, r *airquality.Reading, logger zerolog.Logger) int {
	if !j.alertSources[r.Source] || r.AQI == nil || j.alerts == nil {
		return 0
	}

	sample := alert.Sample{Zone: r.City, AQI: *r.AQI, At: r.RecordedAt}
	if r.PM25 != nil {
		sample.PM25 = *r.PM25
	}
	if r.PM10 != nil {
		sample.PM10 = *r.PM10
	}

	alerts := j.policy.Evaluate(sample)
	if len(alerts) == 0 {
		return 0
	}
	stored, err := j.alerts.Raise(ctx, alerts)
	if err != nil {
		logger.Error().Err(err).Msg("failed to store alerts")
	}
	j.metrics.alerts.Add(float64(stored))
	return stored
}

func (j *CollectJob) archiveRaw(ctx context.Context, source airquality.Source, city string, at time.Time, raw map[string][]byte) {
	if len(raw) == 0 {
		return
	}

	doc := make(map[string]json.RawMessage, len(raw))
	for name, b := range raw {
		if json.Valid(b) {
			doc[name] = b
			continue
		}
		quoted, _ := json.Marshal(string(b))
		doc[name] = quoted
	}
	payload, err := json.Marshal(doc)
	if err == nil {
		err = j.archive.Put(ctx, archive.Key(string(source), city, at), payload)
	}
	j.metrics.observeArchive(err)
	if err != nil && !errors.Is(err, archive.ErrNotConfigured) {
		j.logger.Warn().Err(err).Str("provider", string(source)).Msg("failed to archive raw payload")
	}
}

func (j *CollectJob) saveLog(ctx context.Context, source airquality.Source, status airquality.CollectionStatus, records int, msg string) {
	if j.logs == nil {
		return
	}
	err := j.logs.SaveCollectionLog(ctx, &airquality.CollectionLog{
		CreatedAt:        time.Now(),
		Source:           source,
		Status:           status,
		RecordsCollected: records,
		ErrorMessage:     msg,
	})
	if err != nil {
		j.logger.Error().Err(err).Str("provider", string(source)).Msg("failed to save collection log")
	}
}

// Check fetches the first city from every provider without storing anything.
func (j *CollectJob) Check(ctx context.Context) error {
	city := j.config.Cities[0]

	var errs []error
	for _, p := range j.providers {
		fetchCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
		_, err := p.FetchCurrent(fetchCtx, city)
		cancel()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Schedule runs the job every Interval after InitialDelay until ctx is done.
// It returns immediately when AutoCollect is disabled.
func (j *CollectJob) Schedule(ctx context.Context) {
	if !j.config.AutoCollect {
		j.logger.Info().Msg("automatic collection disabled")
		return
	}

	j.logger.Info().
		Dur("initial_delay", j.config.InitialDelay).
		Dur("interval", j.config.Interval).
		Msg("collection scheduler started")

	timer := time.NewTimer(j.config.InitialDelay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			j.Run(ctx)
			timer.Reset(j.config.Interval)
		}
	}
}

// Stats tracks collection job statistics.
type Stats struct {
	Runs            int64
	Successful      int64
	Failed          int64
	AlertsRaised    int64
	LastRunAt       time.Time
	LastRunDuration time.Duration
}

func (j *CollectJob) updateStats(result *CollectResult) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.stats.Runs++
	j.stats.Successful += int64(result.Successful)
	j.stats.Failed += int64(result.Failed)
	j.stats.AlertsRaised += int64(result.AlertsRaised)
	j.stats.LastRunAt = result.EndTime
	j.stats.LastRunDuration = result.Duration
}

// Stats returns a copy of the current statistics.
func (j *CollectJob) Stats() Stats {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.stats
}

// StatsSnapshot returns the current statistics as a map.
func (j *CollectJob) StatsSnapshot() map[string]interface{} {
	s := j.Stats()
	return map[string]interface{}{
		"runs":              s.Runs,
		"successful":        s.Successful,
		"failed":            s.Failed,
		"alerts_raised":     s.AlertsRaised,
		"last_run_at":       s.LastRunAt,
		"last_run_duration": s.LastRunDuration.String(),
	}
}
