package geocoding

import (
	"context"
	"log"
	"regexp"
	"strings"
)

// GeocodeClient is the provider surface the resolver consumes. A nil
// point with a nil error means the provider had no match.
type GeocodeClient interface {
	Geocode(ctx context.Context, query string) (*Point, error)
}

// Resolver turns free-text location terms into coordinates through three
// tiers: static gazetteer, persistent cache, then the external provider
// with one simplified retry. Provider failures never propagate; a term
// that cannot be resolved simply yields nothing and the next candidate is
// tried.
type Resolver struct {
	table  []GazetteerEntry
	cache  *Cache
	client GeocodeClient
}

// NewResolver builds a resolver over the built-in gazetteer. A nil cache
// gets an in-memory one; a nil client leaves only the offline tiers.
func NewResolver(cache *Cache, client GeocodeClient) *Resolver {
	if cache == nil {
		cache = NewCache(NewMemoryStore())
	}
	table := make([]GazetteerEntry, len(builtinGazetteer))
	copy(table, builtinGazetteer)
	return &Resolver{table: table, cache: cache, client: client}
}

// ExtendGazetteer prepends overlay entries so they win over built-ins.
func (r *Resolver) ExtendGazetteer(entries []GazetteerEntry) {
	if len(entries) == 0 {
		return
	}
	extended := make([]GazetteerEntry, 0, len(entries)+len(r.table))
	for _, e := range entries {
		e.Name = strings.ToLower(strings.TrimSpace(e.Name))
		if e.Name == "" {
			continue
		}
		extended = append(extended, e)
	}
	r.table = append(extended, r.table...)
}

// Resolve tries each candidate term in order and returns the first hit,
// or nil when every term comes up empty. Terms under 3 characters are
// skipped.
func (r *Resolver) Resolve(ctx context.Context, terms []string) *Point {
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if len(term) < 3 {
			continue
		}
		if p := lookupGazetteer(r.table, term); p != nil {
			return p
		}
		if p := r.resolveRemote(ctx, term); p != nil {
			return p
		}
	}
	return nil
}

func (r *Resolver) resolveRemote(ctx context.Context, term string) *Point {
	if p, seen := r.cache.Get(term); seen {
		return p
	}
	if r.client == nil {
		return nil
	}

	p, err := r.client.Geocode(ctx, term)
	if err != nil {
		// Errors are not cached so the term gets another chance later.
		log.Printf("Warning: geocoding %q failed: %v", term, err)
		return nil
	}
	if p == nil {
		if simplified := SimplifyTerm(term); simplified != term {
			if p, err = r.client.Geocode(ctx, simplified); err != nil {
				log.Printf("Warning: geocoding %q failed: %v", simplified, err)
				return nil
			}
		}
	}

	// Cache the outcome, found or not, under the original term.
	if err := r.cache.Put(term, p); err != nil {
		log.Printf("Warning: failed to persist geocode cache: %v", err)
	}
	return p
}

var genericSuffixRegex = regexp.MustCompile(`(?i)\b(industrial|park|centre|center|tower|building|complex|hub|bldg)\b`)

// SimplifyTerm drops generic building suffixes so a miss on
// "Shun Li Industrial Park" can retry as "Shun Li".
func SimplifyTerm(term string) string {
	return strings.Join(strings.Fields(genericSuffixRegex.ReplaceAllString(term, "")), " ")
}
