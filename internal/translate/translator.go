// Package translate resolves attribute values per target language.
package translate

import "context"

// Translator is the external translation collaborator. Failures are
// expected and handled by the orchestrator; implementations should not
// retry.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}
