package translate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"subsync/internal/language"
	"subsync/internal/logging"
	"subsync/internal/segments"
	"subsync/internal/services"
)

// Options configures coordinator batching and concurrency.
type Options struct {
	// BatchSize is the number of segments per provider round-trip.
	BatchSize int
	// Workers bounds concurrent outbound batches across all Run invocations
	// sharing this coordinator.
	Workers int
	// BatchTimeout applies per provider call. A timed-out batch is a failed
	// batch; the coordinator never retries.
	BatchTimeout time.Duration
}

// DefaultOptions returns the coordinator settings used when a zero Options is
// supplied.
func DefaultOptions() Options {
	return Options{
		BatchSize:    50,
		Workers:      4,
		BatchTimeout: 2 * time.Minute,
	}
}

// Outcome reports what happened to every segment of one coordinator run.
// Indices appear in exactly one of Preserved, Translated, or Failed.
type Outcome struct {
	Language   string
	Preserved  []int
	Translated []int
	Failed     map[int]string
	// Texts carries the final text per segment index for preserved and
	// translated segments; failed indices are absent.
	Texts map[int]string
}

// Complete reports whether every segment received a translation outcome.
func (o *Outcome) Complete() bool {
	return len(o.Failed) == 0
}

// Coordinator decides, per segment, whether the original text is preserved
// verbatim or sent to the external translator, and writes results back
// without ever touching segment timing.
type Coordinator struct {
	translator Translator
	classifier Classifier
	store      Store
	opts       Options
	logger     *slog.Logger
	slots      chan struct{}
}

// NewCoordinator wires the coordinator to its collaborators. A nil logger is
// replaced with a no-op logger.
func NewCoordinator(translator Translator, classifier Classifier, store Store, opts Options, logger *slog.Logger) *Coordinator {
	defaults := DefaultOptions()
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaults.BatchSize
	}
	if opts.Workers <= 0 {
		opts.Workers = defaults.Workers
	}
	if opts.BatchTimeout <= 0 {
		opts.BatchTimeout = defaults.BatchTimeout
	}
	return &Coordinator{
		translator: translator,
		classifier: classifier,
		store:      store,
		opts:       opts,
		logger:     logging.NewComponentLogger(logger, "translation-coordinator"),
		slots:      make(chan struct{}, opts.Workers),
	}
}

// Run coordinates one (interview, target language) translation pass over the
// supplied segments. Classification runs from scratch on every invocation, so
// re-runs after source corrections stay consistent. Batches for this run
// execute sequentially to keep the order-aligned zip-back trivially correct;
// the worker bound only limits how many runs dispatch provider calls at once.
//
// The returned Outcome is valid even when some batches failed; only storage
// failures and invalid input surface as errors.
func (c *Coordinator) Run(ctx context.Context, interviewID string, segs []segments.Segment, targetLanguage string) (*Outcome, error) {
	target := language.ToISO2(targetLanguage)
	if target == "" {
		return nil, services.Wrap(services.ErrValidation, "translate", "run",
			fmt.Sprintf("unrecognized target language %q", targetLanguage), nil)
	}

	logger := logging.WithContext(ctx, c.logger).With(
		logging.String(logging.FieldInterviewID, interviewID),
		logging.String(logging.FieldLanguage, target),
	)

	outcome := &Outcome{
		Language: target,
		Failed:   make(map[int]string),
		Texts:    make(map[int]string, len(segs)),
	}
	if len(segs) == 0 {
		return outcome, nil
	}

	preserved := make(map[int]string)
	var pending []segments.Segment
	for _, seg := range segs {
		detected, err := c.classifier.Classify(ctx, seg.Text)
		if err != nil {
			// Preserving wrongly is worse than an unnecessary translation
			// call, so classification failure means translate.
			logger.Warn("language classification failed, translating segment",
				logging.Int("segment_index", seg.Index),
				logging.Error(err),
			)
			pending = append(pending, seg)
			continue
		}
		if language.Same(detected, target) {
			preserved[seg.Index] = seg.Text
			continue
		}
		pending = append(pending, seg)
	}

	if len(preserved) > 0 {
		if err := c.store.UpsertTranslations(ctx, interviewID, target, preserved); err != nil {
			return nil, services.Wrap(services.ErrTransient, "translate", "preserve", "store write failed", err)
		}
		for index, text := range preserved {
			outcome.Preserved = append(outcome.Preserved, index)
			outcome.Texts[index] = text
		}
	}

	for start := 0; start < len(pending); start += c.opts.BatchSize {
		end := start + c.opts.BatchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]

		if err := ctx.Err(); err != nil {
			for _, seg := range batch {
				outcome.Failed[seg.Index] = fmt.Sprintf("run cancelled: %v", err)
			}
			continue
		}

		if err := c.translateBatch(ctx, logger, interviewID, target, batch, outcome); err != nil {
			return outcome, err
		}
	}

	sort.Ints(outcome.Preserved)
	sort.Ints(outcome.Translated)

	logger.Info("translation run finished",
		logging.Int("preserved", len(outcome.Preserved)),
		logging.Int("translated", len(outcome.Translated)),
		logging.Int("failed", len(outcome.Failed)),
	)
	return outcome, nil
}

// translateBatch performs one provider round-trip and its all-or-nothing
// store write. Provider failures mark every index of the batch failed and
// return nil so later batches still run; storage failures propagate.
func (c *Coordinator) translateBatch(ctx context.Context, logger *slog.Logger, interviewID, target string, batch []segments.Segment, outcome *Outcome) error {
	texts := make([]string, len(batch))
	for i, seg := range batch {
		texts[i] = seg.Text
	}

	select {
	case c.slots <- struct{}{}:
	case <-ctx.Done():
		for _, seg := range batch {
			outcome.Failed[seg.Index] = fmt.Sprintf("run cancelled: %v", ctx.Err())
		}
		return nil
	}

	batchCtx, cancel := context.WithTimeout(ctx, c.opts.BatchTimeout)
	translated, err := c.translator.Translate(batchCtx, texts, target)
	cancel()
	<-c.slots

	if err == nil && len(translated) != len(batch) {
		err = fmt.Errorf("provider returned %d translations for %d segments", len(translated), len(batch))
	}
	if err != nil {
		reason := err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			reason = services.Wrap(services.ErrTimeout, "translate", "batch", "provider call timed out", err).Error()
		}
		for _, seg := range batch {
			outcome.Failed[seg.Index] = reason
		}
		logger.Warn("translation batch failed",
			logging.Int("batch_size", len(batch)),
			logging.Int("first_index", batch[0].Index),
			logging.Error(err),
		)
		return nil
	}

	// Zip back strictly by position; reordering here would silently swap
	// translations between unrelated segments.
	results := make(map[int]string, len(batch))
	for i, seg := range batch {
		results[seg.Index] = translated[i]
	}
	if err := c.store.UpsertTranslations(ctx, interviewID, target, results); err != nil {
		return services.Wrap(services.ErrTransient, "translate", "batch", "store write failed", err)
	}
	for index, text := range results {
		outcome.Translated = append(outcome.Translated, index)
		outcome.Texts[index] = text
	}
	return nil
}
