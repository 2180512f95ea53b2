package translate

import (
	"context"

	valuedomain "github.com/wanderkit/placesync/internal/value/domain"
	"go.uber.org/zap"
)

// Orchestrator decides how a raw baseline value becomes a value for one
// target language. It never hard-fails: a broken translation falls back to
// the untranslated baseline value.
type Orchestrator struct {
	translator Translator
	baseline   string
	log        *zap.Logger
}

func NewOrchestrator(translator Translator, baselineLang string, log *zap.Logger) *Orchestrator {
	return &Orchestrator{
		translator: translator,
		baseline:   baselineLang,
		log:        log.Named("translate.orchestrator"),
	}
}

// Resolve returns the value to store for targetLang together with the
// language code the value belongs under.
//
//   - non-multilingual attributes keep the baseline value under the
//     no-language marker, no translation call is made
//   - target == baseline keeps the raw value
//   - only strings are translated; everything else passes through for
//     every target language
func (o *Orchestrator) Resolve(ctx context.Context, multilingual bool, raw any, targetLang string) (any, string) {
	if !multilingual {
		return raw, valuedomain.NoLanguage
	}
	if targetLang == o.baseline {
		return raw, targetLang
	}

	text, ok := raw.(string)
	if !ok {
		return raw, targetLang
	}

	translated, err := o.translator.Translate(ctx, text, targetLang)
	if err != nil {
		o.log.Warn("translation failed, falling back to baseline value",
			zap.String("target_lang", targetLang),
			zap.Error(err),
		)
		return text, targetLang
	}
	return translated, targetLang
}
