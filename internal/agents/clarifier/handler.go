// Package clarifier turns an ambiguous utterance into targeted follow-up
// questions.
package clarifier

import (
	"context"
	"regexp"
	"strings"

	"dialogue-orchestrator/internal/common/logger"
	"dialogue-orchestrator/internal/extractor"
)

const (
	Name = "clarifier"
)

var (
	vagueRe         = regexp.MustCompile(`\b(something|anything|whatever|not sure|unsure|don'?t know|idk|no idea|can'?t decide|confused)\b`)
	vagueQuantityRe = regexp.MustCompile(`\b(some|a few|few|a couple( of)?|several|a bunch( of)?|lots of|many)\b`)
	pronounRe       = regexp.MustCompile(`\b(it|that|this|them|those|these|the same one|that one|this one)\b`)
	orderingRe      = regexp.MustCompile(`\b(order|get|want|have|add|buy|eat)\b`)
)

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"agent": Name}),
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(input), nil
}

func (h *Handler) execute(input *Input) *Output {
	text := extractor.Normalize(input.Utterance)
	out := &Output{}

	ask := func(m Marker, q string) {
		out.Markers = append(out.Markers, m)
		out.Questions = append(out.Questions, q)
	}

	if vagueRe.MatchString(text) && !input.Entities.HasItems() {
		ask(MarkerVague, "What are you in the mood for? For example biryani, pizza, or something light and healthy.")
	}
	if pronounRe.MatchString(text) && !input.Entities.HasItems() && len(input.History) == 0 {
		ask(MarkerDanglingPronoun, "Which dish are you referring to?")
	}
	if vagueQuantityRe.MatchString(text) {
		ask(MarkerVagueQuantity, "How many would you like?")
	}
	if orderingRe.MatchString(text) {
		if input.Entities.Restaurant == "" {
			ask(MarkerMissingRestaurant, "Which restaurant would you like to order from?")
		}
		if !input.Entities.HasItems() && !contains(out.Markers, MarkerVague) {
			ask(MarkerMissingItems, "Which dishes would you like?")
		}
	}

	if h.config.MaxQuestions > 0 && len(out.Questions) > h.config.MaxQuestions {
		out.Questions = out.Questions[:h.config.MaxQuestions]
		out.Markers = out.Markers[:h.config.MaxQuestions]
	}

	if len(out.Questions) == 0 {
		out.Questions = []string{GenericPrompt}
		out.Response = GenericPrompt
	} else {
		out.Response = "Happy to help! " + strings.Join(out.Questions, " ")
	}

	h.logger.Debug("clarification built", map[string]interface{}{
		"markers": out.Markers,
	})
	return out
}

func contains(markers []Marker, m Marker) bool {
	for _, existing := range markers {
		if existing == m {
			return true
		}
	}
	return false
}
