package document

import (
	"regexp"
	"strconv"
	"strings"
)

// EntityType classifies an extracted entity.
type EntityType string

const (
	EntityAmount  EntityType = "amount"
	EntityDate    EntityType = "date"
	EntityCompany EntityType = "company"
	EntityAccount EntityType = "account"
)

// Entity is a value found in document text, with the surrounding context
// that was matched.
type Entity struct {
	Type       EntityType `json:"type"`
	Value      string     `json:"value"`
	Confidence float64    `json:"confidence"`
	Context    string     `json:"context,omitempty"`
}

// Extraction is the result of a text scan: entities, the parsed monetary
// amounts, and two coarse lexical signals used by the parser and anomaly
// agents.
type Extraction struct {
	Entities     []Entity  `json:"entities"`
	Amounts      []float64 `json:"amounts"`
	Sentiment    float64   `json:"sentiment"`  // -1..1
	RiskKeywords []string  `json:"risk_keywords,omitempty"`
}

var (
	amountRe  = regexp.MustCompile(`\$\s*(\d{1,3}(?:,\d{3})*(?:\.\d{2})?|\d+(?:\.\d{2})?)`)
	dateRe    = regexp.MustCompile(`(?i)\b(?:Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|Jun(?:e)?|Jul(?:y)?|Aug(?:ust)?|Sep(?:tember)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)\s+\d{1,2},?\s+\d{4}|\d{1,2}/\d{1,2}/\d{2,4}|\d{4}-\d{2}-\d{2}`)
	companyRe = regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\s+(?:Inc|Corp|LLC|Ltd|Co|Corporation|Company|Group)\.?)\b`)
	accountRe = regexp.MustCompile(`(?i)\b(?:Account|Acct)[\s#:]*(\d{4,16})\b`)
)

var positiveWords = []string{
	"profit", "revenue", "growth", "increase", "gain", "surplus",
	"improved", "strong", "exceed",
}

var negativeWords = []string{
	"loss", "decline", "decrease", "deficit", "fraud", "risk",
	"weak", "below", "concern", "warning", "alert", "suspicious",
}

var riskKeywords = []string{
	"unauthorized", "dispute", "chargeback", "fraudulent", "stolen",
	"suspicious", "violation", "breach", "discrepancy", "anomaly",
}

// Extractor scans raw document text for financial entities and lexical
// signals. It is stateless and safe for concurrent use.
type Extractor struct{}

// NewExtractor returns an Extractor.
func NewExtractor() *Extractor { return &Extractor{} }

// Extract scans text once and returns all entities and signals.
func (e *Extractor) Extract(text string) *Extraction {
	ex := &Extraction{}

	for _, loc := range amountRe.FindAllStringSubmatchIndex(text, -1) {
		raw := text[loc[2]:loc[3]]
		ex.Entities = append(ex.Entities, Entity{
			Type:       EntityAmount,
			Value:      text[loc[0]:loc[1]],
			Confidence: 0.95,
			Context:    context(text, loc[0], 30),
		})
		if v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64); err == nil {
			ex.Amounts = append(ex.Amounts, v)
		}
	}
	for _, loc := range dateRe.FindAllStringIndex(text, -1) {
		ex.Entities = append(ex.Entities, Entity{
			Type:       EntityDate,
			Value:      text[loc[0]:loc[1]],
			Confidence: 0.9,
			Context:    context(text, loc[0], 30),
		})
	}
	for _, loc := range companyRe.FindAllStringSubmatchIndex(text, -1) {
		ex.Entities = append(ex.Entities, Entity{
			Type:       EntityCompany,
			Value:      text[loc[2]:loc[3]],
			Confidence: 0.85,
			Context:    context(text, loc[0], 30),
		})
	}
	for _, loc := range accountRe.FindAllStringSubmatchIndex(text, -1) {
		ex.Entities = append(ex.Entities, Entity{
			Type:       EntityAccount,
			Value:      text[loc[2]:loc[3]],
			Confidence: 0.9,
			Context:    context(text, loc[0], 30),
		})
	}

	lower := strings.ToLower(text)
	ex.Sentiment = sentiment(lower)
	for _, kw := range riskKeywords {
		if strings.Contains(lower, kw) {
			ex.RiskKeywords = append(ex.RiskKeywords, kw)
		}
	}
	return ex
}

// EntitiesOf filters the extraction by entity type.
func (x *Extraction) EntitiesOf(t EntityType) []Entity {
	var out []Entity
	for _, e := range x.Entities {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func sentiment(lower string) float64 {
	score := 0.0
	for _, w := range positiveWords {
		score += float64(strings.Count(lower, w)) * 0.1
	}
	for _, w := range negativeWords {
		score -= float64(strings.Count(lower, w)) * 0.1
	}
	if score > 1 {
		score = 1
	}
	if score < -1 {
		score = -1
	}
	return score
}

func context(text string, idx, radius int) string {
	start := idx - radius
	if start < 0 {
		start = 0
	}
	end := idx + radius
	if end > len(text) {
		end = len(text)
	}
	return text[start:end]
}

// Similarity computes the Jaccard word-set similarity of two texts, in [0,1].
func Similarity(a, b string) float64 {
	wa := wordSet(a)
	wb := wordSet(b)
	if len(wa) == 0 && len(wb) == 0 {
		return 1
	}
	inter := 0
	for w := range wa {
		if _, ok := wb[w]; ok {
			inter++
		}
	}
	union := len(wa) + len(wb) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// Comparison is the difference between two documents' entity sets.
type Comparison struct {
	AddedEntities   []Entity `json:"added_entities"`
	RemovedEntities []Entity `json:"removed_entities"`
	Similarity      float64  `json:"similarity"`
}

// Compare diffs the entities of two document texts.
func (e *Extractor) Compare(textA, textB string) *Comparison {
	ea := e.Extract(textA).Entities
	eb := e.Extract(textB).Entities

	inA := make(map[string]bool, len(ea))
	for _, ent := range ea {
		inA[ent.Value] = true
	}
	inB := make(map[string]bool, len(eb))
	for _, ent := range eb {
		inB[ent.Value] = true
	}

	c := &Comparison{Similarity: Similarity(textA, textB)}
	for _, ent := range eb {
		if !inA[ent.Value] {
			c.AddedEntities = append(c.AddedEntities, ent)
		}
	}
	for _, ent := range ea {
		if !inB[ent.Value] {
			c.RemovedEntities = append(c.RemovedEntities, ent)
		}
	}
	return c
}

func wordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(text)) {
		set[w] = struct{}{}
	}
	return set
}
