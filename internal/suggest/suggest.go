// Package suggest is the heuristic suggestion engine: it proposes a
// category and tags for a transaction description by fuzzy-matching
// known establishments and similar historical transactions. Results
// are advisory; the ledger consumes them read-only.
package suggest

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/drestrepo/monedero/internal/database/repository"
	"github.com/drestrepo/monedero/internal/ledger"
)

var knownEstablishments = []string{
	"oxxo", "7-eleven", "crepes", "starbucks", "uber", "didi", "netflix", "spotify",
	"exito", "carulla", "d1", "jumbo", "alkosto", "mercado libre", "amazon",
	"rappi", "ifood", "dominos", "tostao", "juan valdez",
}

var stopWords = map[string]bool{
	"el": true, "la": true, "los": true, "las": true, "un": true, "una": true,
	"unos": true, "unas": true, "de": true, "del": true, "al": true, "en": true,
	"y": true, "o": true, "pago": true, "compra": true, "transferencia": true,
	"transf": true, "gasto": true, "costo": true, "para": true, "por": true,
	"con": true, "sin": true, "mi": true, "mis": true, "tu": true, "tus": true,
	"su": true, "sus": true,
}

var deaccent = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u", "ñ", "n",
	"Á", "a", "É", "e", "Í", "i", "Ó", "o", "Ú", "u", "Ü", "u", "Ñ", "n",
)

// historyLimit bounds how many recent transactions the generic
// similarity fallback inspects.
const historyLimit = 200

// Engine looks up precedent in the transaction history. It satisfies
// ledger.Suggester.
type Engine struct {
	db      *sql.DB
	maxTags int
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxTags caps how many tags a suggestion may carry. Default 3.
func WithMaxTags(n int) Option {
	return func(e *Engine) { e.maxTags = n }
}

// New builds an Engine on an open database.
func New(db *sql.DB, opts ...Option) *Engine {
	e := &Engine{db: db, maxTags: 3}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Suggest proposes a category and tags for the description, or nil
// when nothing in the history is convincing. It never returns an error
// for a merely unmatchable description.
func (e *Engine) Suggest(ctx context.Context, description, txType string) (*ledger.Suggestion, error) {
	if len(description) < 2 {
		return nil, nil
	}
	normalized := normalize(description)

	if est := matchEstablishment(normalized); est != "" {
		sugg, err := e.fromEstablishment(ctx, est, txType)
		if err != nil {
			return nil, err
		}
		if sugg != nil {
			return sugg, nil
		}
	}
	return e.fromSimilarity(ctx, normalized, txType)
}

// fromEstablishment votes categories and tags across historical
// transactions mentioning the establishment. Accepted suggestions weigh
// double so the engine reinforces its own confirmed hits.
func (e *Engine) fromEstablishment(ctx context.Context, est, txType string) (*ledger.Suggestion, error) {
	history, err := repository.NewTransactionRepo(e.db).ListByType(ctx, txType)
	if err != nil {
		return nil, err
	}
	catVotes := map[string]float64{}
	tagVotes := map[string]float64{}
	precedents := 0
	for _, t := range history {
		if !strings.Contains(normalize(t.Description), est) {
			continue
		}
		precedents++
		weight := 1.0
		if t.SuggestionAccepted != nil && *t.SuggestionAccepted {
			weight = 2.0
		}
		catVotes[t.CategoryID] += weight
		for _, tagID := range t.TagIDs {
			tagVotes[tagID] += weight
		}
	}
	if precedents == 0 {
		return nil, nil
	}

	confidence := 0.8
	if precedents >= 3 {
		confidence = 0.95
	}
	return &ledger.Suggestion{
		CategoryID: topKey(catVotes),
		TagIDs:     topKeys(tagVotes, e.maxTags, 0),
		Confidence: confidence,
		Reason:     fmt.Sprintf("Detecté %q (aprox). Basado en historial.", est),
	}, nil
}

// fromSimilarity is the generic fallback: Jaccard similarity over
// stop-word-stripped tokens against the recent history.
func (e *Engine) fromSimilarity(ctx context.Context, normalized, txType string) (*ledger.Suggestion, error) {
	history, err := repository.NewTransactionRepo(e.db).ListByType(ctx, txType)
	if err != nil {
		return nil, err
	}
	if len(history) > historyLimit {
		history = history[:historyLimit]
	}
	if len(history) < 3 {
		return nil, nil
	}

	current := tokenize(normalized)
	if len(current) == 0 {
		return nil, nil
	}

	type match struct {
		tx         repository.Transaction
		similarity float64
	}
	var matches []match
	for _, t := range history {
		sim := jaccard(current, tokenize(normalize(t.Description)))
		if sim > 0.2 {
			matches = append(matches, match{tx: t, similarity: sim})
		}
	}
	if len(matches) == 0 {
		return nil, nil
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].similarity > matches[j].similarity })
	if len(matches) > 10 {
		matches = matches[:10]
	}

	catScores := map[string]float64{}
	tagScores := map[string]float64{}
	for _, m := range matches {
		score := m.similarity
		if m.tx.SuggestionAccepted != nil && *m.tx.SuggestionAccepted {
			score *= 1.5
		}
		catScores[m.tx.CategoryID] += score
		for _, tagID := range m.tx.TagIDs {
			tagScores[tagID] += score
		}
	}

	best := topKey(catScores)
	bonus := 0.2
	if catScores[best] > 1.5 {
		bonus = 0.4
	}
	confidence := matches[0].similarity*0.5 + bonus
	if confidence > 0.9 {
		confidence = 0.9
	}
	return &ledger.Suggestion{
		CategoryID: best,
		TagIDs:     topKeys(tagScores, e.maxTags, 0.3),
		Confidence: confidence,
		Reason:     fmt.Sprintf("Basado en %d transacciones similares", len(matches)),
	}, nil
}

// matchEstablishment finds a known establishment in the normalized
// description, tolerating typos ("netflx") via levenshtein distance on
// the whole string and on individual tokens.
func matchEstablishment(normalized string) string {
	tokens := strings.Fields(normalized)
	for _, est := range knownEstablishments {
		if strings.Contains(normalized, est) {
			return est
		}
		if len(est) <= 4 {
			continue
		}
		if levenshtein.ComputeDistance(normalized, est) <= 2 {
			return est
		}
		maxDist := 1
		if len(est) > 6 {
			maxDist = 2
		}
		for _, token := range tokens {
			if levenshtein.ComputeDistance(token, est) <= maxDist {
				return est
			}
		}
	}
	return ""
}

func normalize(s string) string {
	return deaccent.Replace(strings.ToLower(s))
}

func tokenize(normalized string) []string {
	var clean strings.Builder
	for _, r := range normalized {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == ' ' {
			clean.WriteRune(r)
		} else {
			clean.WriteRune(' ')
		}
	}
	var out []string
	for _, tok := range strings.Fields(clean.String()) {
		if len(tok) > 2 && !stopWords[tok] {
			out = append(out, tok)
		}
	}
	return out
}

func jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setA := make(map[string]bool, len(a))
	for _, t := range a {
		setA[t] = true
	}
	union := make(map[string]bool, len(a)+len(b))
	shared := 0
	for _, t := range b {
		if setA[t] && !union[t] {
			shared++
		}
		union[t] = true
	}
	for t := range setA {
		union[t] = true
	}
	sim := float64(shared) / float64(len(union))
	if shared > 0 {
		sim += 0.1 // exact token overlap beats mere character overlap
	}
	return sim
}

func topKey(scores map[string]float64) string {
	best, bestScore := "", -1.0
	for k, v := range scores {
		if v > bestScore || (v == bestScore && k < best) {
			best, bestScore = k, v
		}
	}
	return best
}

func topKeys(scores map[string]float64, n int, floor float64) []string {
	type kv struct {
		k string
		v float64
	}
	var all []kv
	for k, v := range scores {
		if v > floor {
			all = append(all, kv{k, v})
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].v != all[j].v {
			return all[i].v > all[j].v
		}
		return all[i].k < all[j].k
	})
	if len(all) > n {
		all = all[:n]
	}
	var out []string
	for _, e := range all {
		out = append(out, e.k)
	}
	return out
}
