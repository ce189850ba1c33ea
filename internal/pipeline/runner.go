package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"subsync/internal/config"
	"subsync/internal/language"
	"subsync/internal/logging"
	"subsync/internal/segments"
	"subsync/internal/segstore"
	"subsync/internal/services"
	"subsync/internal/srt"
	"subsync/internal/transcript"
	"subsync/internal/translate"
)

// Runner drives the subtitle pipeline stages against one segment store:
// ingest, translate, export, and quality reporting. A file lock on the data
// directory keeps concurrent invocations from interleaving writes.
type Runner struct {
	cfg         *config.Config
	store       *segstore.Store
	provider    transcript.Provider
	coordinator *translate.Coordinator
	logger      *slog.Logger

	lockPath string
	lock     *flock.Flock
}

// IngestSummary reports what one ingest run produced.
type IngestSummary struct {
	InterviewID  string
	SegmentCount int
	DroppedWords int
	UsedFallback bool
	Report       segments.Report
}

// New constructs a runner. Translator and classifier may be nil when only
// ingest and export are used; Translate then fails with a configuration
// error.
func New(cfg *config.Config, store *segstore.Store, provider transcript.Provider, translator translate.Translator, classifier translate.Classifier, logger *slog.Logger) (*Runner, error) {
	if cfg == nil || store == nil || provider == nil {
		return nil, errors.New("pipeline requires config, store, and transcript provider")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	var coordinator *translate.Coordinator
	if translator != nil && classifier != nil {
		coordinator = translate.NewCoordinator(translator, classifier, store, translate.Options{
			BatchSize:    cfg.Translation.BatchSize,
			Workers:      cfg.Translation.Workers,
			BatchTimeout: time.Duration(cfg.Translation.BatchTimeoutSeconds) * time.Second,
		}, logger)
	}

	lockPath := filepath.Join(cfg.Paths.DataDir, "subsync.lock")
	return &Runner{
		cfg:         cfg,
		store:       store,
		provider:    provider,
		coordinator: coordinator,
		logger:      logging.NewComponentLogger(logger, "pipeline"),
		lockPath:    lockPath,
		lock:        flock.New(lockPath),
	}, nil
}

func (r *Runner) acquireLock() (func(), error) {
	ok, err := r.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire pipeline lock: %w", err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrTransient, "pipeline", "lock",
			"another subsync instance holds the data directory lock", nil)
	}
	return func() {
		if err := r.lock.Unlock(); err != nil {
			r.logger.Warn("failed to release pipeline lock", logging.Error(err))
		}
	}, nil
}

func (r *Runner) stageContext(ctx context.Context, interviewID, stage string) (context.Context, *slog.Logger) {
	ctx = services.WithRequestID(ctx, uuid.NewString())
	ctx = services.WithInterviewID(ctx, interviewID)
	ctx = services.WithStage(ctx, stage)
	return ctx, logging.WithContext(ctx, r.logger)
}

// Ingest loads a transcript, detects segment boundaries, and replaces the
// interview's stored segments with the result. Existing translations for the
// interview are discarded together with the old segments; they describe text
// that no longer exists.
func (r *Runner) Ingest(ctx context.Context, interviewID, title, source string) (*IngestSummary, error) {
	if strings.TrimSpace(interviewID) == "" {
		return nil, services.Wrap(services.ErrValidation, "ingest", "run", "interview id required", nil)
	}
	release, err := r.acquireLock()
	if err != nil {
		return nil, err
	}
	defer release()

	ctx, logger := r.stageContext(ctx, interviewID, "ingest")

	loaded, err := r.provider.Load(ctx, source)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "ingest", "load-transcript",
			fmt.Sprintf("load %q", source), err)
	}

	interview := &segstore.Interview{
		ID:             interviewID,
		Title:          title,
		SourceLanguage: language.ToISO2(loaded.Language),
	}
	if err := r.store.UpsertInterview(ctx, interview); err != nil {
		return nil, err
	}

	detector := segments.NewDetector(segments.Limits{
		MaxDuration:         r.cfg.Segmentation.MaxDurationSeconds,
		MinGap:              r.cfg.Segmentation.MinGapSeconds,
		MaxChars:            r.cfg.Segmentation.MaxChars,
		FallbackReadingRate: r.cfg.Segmentation.ReadingRateWPS,
		FallbackGap:         r.cfg.Segmentation.FallbackGapSeconds,
	}, logger)

	result := detector.Detect(interviewID, loaded.Words, loaded.Text)
	if err := r.store.ReplaceSegments(ctx, interviewID, result.Segments); err != nil {
		return nil, err
	}

	report := segments.Analyze(result.Segments)
	logger.Info("ingest complete",
		logging.Int("segments", len(result.Segments)),
		logging.Int("dropped_words", result.DroppedWords),
		logging.Bool("fallback", result.UsedFallback),
		logging.Int("gaps", len(report.Gaps)),
		logging.Int("overlaps", len(report.Overlaps)),
	)

	return &IngestSummary{
		InterviewID:  interviewID,
		SegmentCount: len(result.Segments),
		DroppedWords: result.DroppedWords,
		UsedFallback: result.UsedFallback,
		Report:       report,
	}, nil
}

// Translate runs the translation coordinator for each target language in
// turn. An empty language list uses the configured targets. One language's
// failures never block the others; per-language outcomes are returned keyed
// by normalized language code.
func (r *Runner) Translate(ctx context.Context, interviewID string, languages []string) (map[string]*translate.Outcome, error) {
	if r.coordinator == nil {
		return nil, services.Wrap(services.ErrConfiguration, "translate", "run",
			"translation provider not configured (set llm.api_key)", nil)
	}
	release, err := r.acquireLock()
	if err != nil {
		return nil, err
	}
	defer release()

	ctx, logger := r.stageContext(ctx, interviewID, "translate")

	if len(languages) == 0 {
		languages = r.cfg.Translation.TargetLanguages
	}
	if len(languages) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "translate", "run",
			"no target languages configured", nil)
	}

	segs, err := r.store.GetSegments(ctx, interviewID)
	if err != nil {
		return nil, err
	}

	outcomes := make(map[string]*translate.Outcome, len(languages))
	for _, lang := range languages {
		langCtx := services.WithLanguage(ctx, lang)
		outcome, err := r.coordinator.Run(langCtx, interviewID, segs, lang)
		if err != nil {
			return outcomes, err
		}
		outcomes[outcome.Language] = outcome
		if !outcome.Complete() {
			logger.Warn("translation run incomplete",
				logging.String(logging.FieldLanguage, outcome.Language),
				logging.Int("failed_segments", len(outcome.Failed)),
			)
		}
	}
	return outcomes, nil
}

// Export renders the interview's subtitles for one language to the export
// directory and returns the written path. Format is "srt" or "vtt"; an empty
// language exports the original text.
func (r *Runner) Export(ctx context.Context, interviewID, lang, format string) (string, error) {
	return r.export(ctx, interviewID, lang, format, nil)
}

// ExportClip is Export restricted to segments overlapping the [start, end)
// window, for cutting subtitles that match an excerpted recording.
func (r *Runner) ExportClip(ctx context.Context, interviewID, lang, format string, start, end float64) (string, error) {
	window := &clipWindow{start: start, end: end}
	return r.export(ctx, interviewID, lang, format, window)
}

type clipWindow struct {
	start, end float64
}

func (r *Runner) export(ctx context.Context, interviewID, lang, format string, window *clipWindow) (string, error) {
	ctx, logger := r.stageContext(ctx, interviewID, "export")

	var segs []segments.Segment
	var err error
	if window != nil {
		segs, err = r.store.GetSegmentsInRange(ctx, interviewID, window.start, window.end)
	} else {
		segs, err = r.store.GetSegments(ctx, interviewID)
	}
	if err != nil {
		return "", err
	}
	if len(segs) == 0 {
		return "", services.Wrap(services.ErrNotFound, "export", "render",
			fmt.Sprintf("interview %q has no segments", interviewID), nil)
	}

	selector := ""
	label := "original"
	if strings.TrimSpace(lang) != "" {
		selector = language.ToISO2(lang)
		if selector == "" {
			return "", services.Wrap(services.ErrValidation, "export", "render",
				fmt.Sprintf("unrecognized language %q", lang), nil)
		}
		label = selector
	}

	rendered, err := srt.Render(segs, selector)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "export", "render", "render subtitles", err)
	}

	extension := "srt"
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "srt":
	case "vtt", "webvtt":
		rendered = srt.ToWebVTT(rendered)
		extension = "vtt"
	default:
		return "", services.Wrap(services.ErrValidation, "export", "render",
			fmt.Sprintf("unsupported format %q", format), nil)
	}

	if err := os.MkdirAll(r.cfg.Paths.ExportDir, 0o755); err != nil {
		return "", fmt.Errorf("ensure export directory: %w", err)
	}
	name := fmt.Sprintf("%s.%s.%s", interviewID, label, extension)
	if window != nil {
		name = fmt.Sprintf("%s.%s.%g-%g.%s", interviewID, label, window.start, window.end, extension)
	}
	target := filepath.Join(r.cfg.Paths.ExportDir, name)
	if err := os.WriteFile(target, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write export %q: %w", target, err)
	}

	logger.Info("export written",
		logging.String("path", target),
		logging.String(logging.FieldLanguage, label),
		logging.Int("segments", len(segs)),
	)
	return target, nil
}

// Quality returns the timing validation report for an interview's stored
// segments.
func (r *Runner) Quality(ctx context.Context, interviewID string) (segments.Report, error) {
	ctx, _ = r.stageContext(ctx, interviewID, "quality")

	segs, err := r.store.GetSegments(ctx, interviewID)
	if err != nil {
		return segments.Report{}, err
	}
	return segments.Analyze(segs), nil
}

// Languages lists the translation languages stored for an interview.
func (r *Runner) Languages(ctx context.Context, interviewID string) ([]string, error) {
	return r.store.Languages(ctx, interviewID)
}

// LockPath returns the pipeline lock file location.
func (r *Runner) LockPath() string {
	return r.lockPath
}
