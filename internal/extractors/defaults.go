package extractors

import (
	"github.com/custodia-labs/mtm/internal/core/ports/driven"
)

// Extractor names, in the order NewDefaultPipeline runs them.
const (
	StepsName       = "steps"
	DefinitionsName = "definitions"
	FAQsName        = "faqs"
	DecisionsName   = "decisions"
	ActionsName     = "actions"
)

// DefaultOrder lists the built-in extractors in run order.
var DefaultOrder = []string{StepsName, DefinitionsName, FAQsName, DecisionsName, ActionsName}

// RegisterDefaults registers all built-in extractors with the registry.
func RegisterDefaults(r *Registry) {
	r.Register(StepsName, buildSteps)
	r.Register(DefinitionsName, buildDefinitions)
	r.Register(FAQsName, func(map[string]any) (driven.Extractor, error) { return NewFAQs(), nil })
	r.Register(DecisionsName, func(map[string]any) (driven.Extractor, error) { return NewDecisions(), nil })
	r.Register(ActionsName, func(map[string]any) (driven.Extractor, error) { return NewActions(), nil })
}

// NewDefaultPipeline builds every built-in extractor with default config.
func NewDefaultPipeline() *Pipeline {
	p, err := NewPipelineFromNames(nil)
	if err != nil {
		// Built-in builders ignore nil config and cannot fail.
		panic(err)
	}
	return p
}

// NewPipelineFromNames builds the named built-in extractors in the given
// order. An empty list means DefaultOrder. Unknown names return
// domain.ErrUnsupportedType.
func NewPipelineFromNames(names []string) (*Pipeline, error) {
	if len(names) == 0 {
		names = DefaultOrder
	}
	r := NewRegistry()
	RegisterDefaults(r)

	p := NewPipeline()
	for _, name := range names {
		e, err := r.Build(name, nil)
		if err != nil {
			return nil, err
		}
		p.Add(e)
	}
	return p, nil
}

// buildSteps creates a step extractor from generic config.
// Supported config keys:
//   - min_length (int): Shortest step text kept (default: 6)
func buildSteps(cfg map[string]any) (driven.Extractor, error) {
	var opts []StepOption
	if n := getIntFromConfig(cfg, "min_length"); n > 0 {
		opts = append(opts, WithMinStepLength(n))
	}
	return NewSteps(opts...), nil
}

// buildDefinitions creates a definition extractor from generic config.
// Supported config keys:
//   - max_term_words (int): Longest term kept, in words (default: 6)
func buildDefinitions(cfg map[string]any) (driven.Extractor, error) {
	var opts []DefinitionOption
	if n := getIntFromConfig(cfg, "max_term_words"); n > 0 {
		opts = append(opts, WithMaxTermWords(n))
	}
	return NewDefinitions(opts...), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
