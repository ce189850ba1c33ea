package translate

import "context"

// Translator is the external translation capability. It accepts an ordered
// batch of source strings and returns an ordered batch of translated strings
// of equal length, or fails the whole batch. Retry policy belongs to the
// implementation, not to the coordinator.
type Translator interface {
	Translate(ctx context.Context, texts []string, targetLanguage string) ([]string, error)
}

// Classifier is the external language detection capability consumed for the
// preserve-vs-translate decision.
type Classifier interface {
	Classify(ctx context.Context, text string) (string, error)
}

// Store is the slice of segment persistence the coordinator needs: one
// all-or-nothing write of a language's text for a set of segment indices.
type Store interface {
	UpsertTranslations(ctx context.Context, interviewID, lang string, texts map[int]string) error
}
