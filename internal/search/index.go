// Package search provides a simple, deterministic, concurrency-safe in-memory
// full-text index over post bodies. It is intentionally small and
// dependency-free: the ledger delegates the /search view to it through the
// Index interface, and the core never implements ranking beyond what is here.
//
//   - No logging in the library (callers decide how/what to log)
//   - Unicode-aware tokenization with optional stop-word removal
//   - Live index: posts are added as they are created (guarded by RWMutex)
//   - Deterministic scoring and sorting (stable order for ties)
//   - Paginated results: Search returns a page of post IDs plus the total hit count
//
// Scoring uses Jaccard similarity between the query token set and each
// post's token set: score = |Q ∩ P| / |Q ∪ P|. Equal scores fall back to
// newest post first (higher ID), matching the ledger's ordering contract.
package search

import (
	"sort"
	"strings"
	"sync"
	"unicode"
)

// Index is the collaborator interface consumed by the post ledger.
type Index interface {
	// Add makes a post searchable. Duplicate IDs replace the prior entry.
	Add(id uint, body string)
	// Search returns one page of matching post IDs (best first) and the
	// total number of hits across all pages.
	Search(query string, page, pageSize int) (ids []uint, total int)
}

// Option configures a memory index at construction time.
type Option func(*config)

type config struct {
	stopwords map[string]struct{}
}

// WithStopwords excludes the given words from both documents and queries.
func WithStopwords(words []string) Option {
	return func(c *config) {
		m := make(map[string]struct{}, len(words))
		for _, w := range words {
			w = strings.ToLower(strings.TrimSpace(w))
			if w != "" {
				m[w] = struct{}{}
			}
		}
		if len(m) > 0 {
			c.stopwords = m
		}
	}
}

type doc struct {
	id     uint
	tokens map[string]struct{}
}

// Memory is the in-process Index implementation. Safe for concurrent use.
type Memory struct {
	cfg  config
	mu   sync.RWMutex
	docs map[uint]doc
}

// NewMemory returns an empty index. Callers typically warm it from the
// ledger at boot and then Add each new post on create.
func NewMemory(opts ...Option) *Memory {
	cfg := config{}
	for _, o := range opts {
		o(&cfg)
	}
	return &Memory{cfg: cfg, docs: make(map[uint]doc)}
}

// Add indexes (or re-indexes) one post body under the given ID. Bodies that
// tokenize to nothing are dropped.
func (m *Memory) Add(id uint, body string) {
	toks := tokenize(body, m.cfg.stopwords)
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(toks) == 0 {
		delete(m.docs, id)
		return
	}
	m.docs[id] = doc{id: id, tokens: toks}
}

// Search scores every document against the query and returns the requested
// page of IDs plus the total hit count. An empty or stopword-only query
// yields no hits. Page numbers start at 1; out-of-range pages return an
// empty slice with the true total, mirroring tolerant pagination elsewhere.
func (m *Memory) Search(query string, page, pageSize int) ([]uint, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	qTokens := tokenize(query, m.cfg.stopwords)
	if len(qTokens) == 0 {
		return []uint{}, 0
	}
	qLen := len(qTokens)

	type scored struct {
		id    uint
		score float64
	}

	m.mu.RLock()
	buf := make([]scored, 0, len(m.docs))
	for _, d := range m.docs {
		over := overlap(qTokens, d.tokens)
		if over == 0 {
			continue
		}
		union := float64(qLen + len(d.tokens) - over)
		if union <= 0 {
			continue
		}
		buf = append(buf, scored{id: d.id, score: float64(over) / union})
	}
	m.mu.RUnlock()

	total := len(buf)
	if total == 0 {
		return []uint{}, 0
	}

	sort.SliceStable(buf, func(a, b int) bool {
		if buf[a].score != buf[b].score {
			return buf[a].score > buf[b].score
		}
		return buf[a].id > buf[b].id
	})

	start := (page - 1) * pageSize
	if start >= total {
		return []uint{}, total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	out := make([]uint, 0, end-start)
	for _, s := range buf[start:end] {
		out = append(out, s.id)
	}
	return out, total
}

// tokenize lowercases s, splits on non-letter/non-digit runes, and returns
// the resulting token set (minus stopwords).
func tokenize(s string, stop map[string]struct{}) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if stop != nil {
			if _, ok := stop[f]; ok {
				continue
			}
		}
		out[f] = struct{}{}
	}
	return out
}

// overlap counts tokens present in both sets.
func overlap(q, d map[string]struct{}) int {
	// Iterate the smaller set.
	if len(d) < len(q) {
		q, d = d, q
	}
	n := 0
	for t := range q {
		if _, ok := d[t]; ok {
			n++
		}
	}
	return n
}
