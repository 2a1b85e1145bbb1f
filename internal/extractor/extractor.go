// Package extractor classifies an utterance into one intent and pulls out
// the entities it mentions. Classification is an ordered list of lexical
// rules; the first rule that matches wins.
package extractor

import (
	"regexp"
	"strings"

	"dialogue-orchestrator/internal/models"
)

// HistoryWindow is how many prior turns are searched for a restaurant when
// the utterance names none.
const HistoryWindow = 6

type Extractor struct {
	lexicon  Lexicon
	rules    []Rule
	patterns map[string]*regexp.Regexp
}

func New(lexicon Lexicon) *Extractor {
	e := &Extractor{
		lexicon:  lexicon.normalized(),
		patterns: make(map[string]*regexp.Regexp),
	}
	for _, list := range [][]string{e.lexicon.Restaurants, e.lexicon.Cuisines, e.lexicon.Categories} {
		for _, term := range list {
			e.patterns[term] = termPattern(term)
		}
	}
	e.rules = e.buildRules()
	return e
}

// Rules returns the classification rules in evaluation order.
func (e *Extractor) Rules() []Rule {
	return append([]Rule(nil), e.rules...)
}

// Classify returns the intent and entities of utterance. history is read
// only and is used to carry a restaurant over from earlier turns.
func (e *Extractor) Classify(utterance string, history models.Conversation) (models.Intent, models.Entities) {
	text := Normalize(utterance)
	return e.intent(text), e.entities(utterance, text, history)
}

// Intent classifies utterance without extracting entities.
func (e *Extractor) Intent(utterance string) models.Intent {
	return e.intent(Normalize(utterance))
}

// MatchedRule returns the name of the rule that decides utterance, or ""
// when it falls through to conversation.
func (e *Extractor) MatchedRule(utterance string) string {
	text := Normalize(utterance)
	for _, r := range e.rules {
		if r.Match(text) {
			return r.Name
		}
	}
	return ""
}

func (e *Extractor) intent(text string) models.Intent {
	if text == "" {
		return models.IntentConversation
	}
	for _, r := range e.rules {
		if r.Match(text) {
			return r.Intent
		}
	}
	return models.IntentConversation
}

var (
	spaceRe      = regexp.MustCompile(`\s+`)
	trailPunctRe = regexp.MustCompile(`[?!.]+$`)
)

// Normalize lowercases, straightens quotes, collapses whitespace and drops
// trailing punctuation.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer("’", "'", "‘", "'", "“", `"`, "”", `"`).Replace(s)
	s = spaceRe.ReplaceAllString(strings.TrimSpace(s), " ")
	return strings.TrimSpace(trailPunctRe.ReplaceAllString(s, ""))
}

func termPattern(term string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(term) + `(s|es)?\b`)
}

// findAll returns the terms of list present in text, in list order.
func (e *Extractor) findAll(list []string, text string) []string {
	var found []string
	for _, term := range list {
		re, ok := e.patterns[term]
		if !ok {
			continue
		}
		if re.MatchString(text) {
			found = append(found, term)
		}
	}
	return found
}

func (e *Extractor) findFirst(list []string, text string) string {
	if found := e.findAll(list, text); len(found) > 0 {
		return found[0]
	}
	return ""
}

// findLast returns the term of list mentioned last in text. Overlapping
// mentions that end together, such as "wok" inside "dragon wok", resolve to
// the longer term.
func (e *Extractor) findLast(list []string, text string) string {
	best, bestEnd := "", -1
	for _, term := range e.findAll(list, text) {
		locs := e.patterns[term].FindAllStringIndex(text, -1)
		end := locs[len(locs)-1][1]
		if end > bestEnd || (end == bestEnd && len(term) > len(best)) {
			best, bestEnd = term, end
		}
	}
	return best
}
