package geocoding

import (
	"context"
	"errors"
	"testing"
)

type fakeGeocoder struct {
	calls   []string
	results map[string]*Point
	err     error
}

func (f *fakeGeocoder) Geocode(ctx context.Context, query string) (*Point, error) {
	f.calls = append(f.calls, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.results[query], nil
}

func newTestResolver(client GeocodeClient) *Resolver {
	return NewResolver(NewCache(NewMemoryStore()), client)
}

func TestResolve_GazetteerShortCircuit(t *testing.T) {
	fake := &fakeGeocoder{}
	r := newTestResolver(fake)

	p := r.Resolve(context.Background(), []string{"Tuas"})
	if p == nil {
		t.Fatal("expected a gazetteer hit for Tuas")
	}
	if p.Lat != 1.3200 || p.Lng != 103.6400 {
		t.Fatalf("unexpected coordinates for Tuas: %v", *p)
	}
	if len(fake.calls) != 0 {
		t.Fatalf("gazetteer hit should not reach the provider, got %d calls", len(fake.calls))
	}
}

func TestResolve_UbiTechpark(t *testing.T) {
	fake := &fakeGeocoder{}
	r := newTestResolver(fake)

	p := r.Resolve(context.Background(), []string{"Ubi Techpark"})
	if p == nil {
		t.Fatal("expected a gazetteer hit for Ubi Techpark")
	}
	if p.Lat != 1.3307 || p.Lng != 103.8990 {
		t.Fatalf("unexpected coordinates for Ubi Techpark: %v", *p)
	}
	if len(fake.calls) != 0 {
		t.Fatalf("expected no provider calls, got %d", len(fake.calls))
	}
}

func TestResolve_SimplifiedRetryOnce(t *testing.T) {
	fake := &fakeGeocoder{results: map[string]*Point{
		"Shun Li": {Lat: 1.3345, Lng: 103.8970},
	}}
	r := newTestResolver(fake)

	p := r.Resolve(context.Background(), []string{"Shun Li Industrial Park"})
	if p == nil || p.Lat != 1.3345 {
		t.Fatalf("expected the simplified retry to resolve, got %v", p)
	}
	if len(fake.calls) != 2 {
		t.Fatalf("expected verbatim call plus exactly one retry, got %v", fake.calls)
	}
	if fake.calls[0] != "Shun Li Industrial Park" || fake.calls[1] != "Shun Li" {
		t.Fatalf("unexpected call sequence: %v", fake.calls)
	}

	// The outcome is cached under the original term.
	p = r.Resolve(context.Background(), []string{"Shun Li Industrial Park"})
	if p == nil || p.Lat != 1.3345 {
		t.Fatalf("expected cached result, got %v", p)
	}
	if len(fake.calls) != 2 {
		t.Fatalf("cached term should not hit the provider again, got %v", fake.calls)
	}
}

func TestResolve_NoRetryWithoutSuffix(t *testing.T) {
	fake := &fakeGeocoder{}
	r := newTestResolver(fake)

	if p := r.Resolve(context.Background(), []string{"Blk 123 Nowhere"}); p != nil {
		t.Fatalf("expected no result, got %v", *p)
	}
	if len(fake.calls) != 1 {
		t.Fatalf("term without generic suffixes should be queried once, got %v", fake.calls)
	}
}

func TestResolve_NegativeResultCached(t *testing.T) {
	fake := &fakeGeocoder{}
	r := newTestResolver(fake)

	if p := r.Resolve(context.Background(), []string{"Wong Fatt Building"}); p != nil {
		t.Fatalf("expected no result, got %v", *p)
	}
	// Verbatim plus simplified retry.
	if len(fake.calls) != 2 {
		t.Fatalf("expected 2 provider calls, got %v", fake.calls)
	}

	if p := r.Resolve(context.Background(), []string{"Wong Fatt Building"}); p != nil {
		t.Fatalf("expected cached not-found, got %v", *p)
	}
	if len(fake.calls) != 2 {
		t.Fatalf("cached not-found should stop further provider calls, got %v", fake.calls)
	}
}

func TestResolve_ErrorNotCached(t *testing.T) {
	fake := &fakeGeocoder{err: errors.New("connection refused")}
	r := newTestResolver(fake)

	if p := r.Resolve(context.Background(), []string{"Somewhere Else"}); p != nil {
		t.Fatalf("expected nil on provider error, got %v", *p)
	}
	if p := r.Resolve(context.Background(), []string{"Somewhere Else"}); p != nil {
		t.Fatalf("expected nil on provider error, got %v", *p)
	}
	if len(fake.calls) != 2 {
		t.Fatalf("errors must not be cached, expected 2 calls, got %v", fake.calls)
	}

	// Once the provider recovers the term resolves and is cached.
	fake.err = nil
	fake.results = map[string]*Point{"Somewhere Else": {Lat: 1.30, Lng: 103.80}}
	if p := r.Resolve(context.Background(), []string{"Somewhere Else"}); p == nil || p.Lat != 1.30 {
		t.Fatalf("expected result after recovery, got %v", p)
	}
	calls := len(fake.calls)
	r.Resolve(context.Background(), []string{"Somewhere Else"})
	if len(fake.calls) != calls {
		t.Fatalf("recovered result should be cached, got %v", fake.calls)
	}
}

func TestResolve_SkipsShortTerms(t *testing.T) {
	fake := &fakeGeocoder{}
	r := newTestResolver(fake)

	p := r.Resolve(context.Background(), []string{"", "B1", "Ubi Techpark"})
	if p == nil || p.Lat != 1.3307 {
		t.Fatalf("expected the third term to resolve, got %v", p)
	}
	if len(fake.calls) != 0 {
		t.Fatalf("short terms should be skipped without provider calls, got %v", fake.calls)
	}
}

func TestResolver_ExtendGazetteer(t *testing.T) {
	fake := &fakeGeocoder{}
	r := newTestResolver(fake)
	r.ExtendGazetteer([]GazetteerEntry{{Name: "Shun Li Industrial Park", Lat: 1.3345, Lng: 103.8970}})

	p := r.Resolve(context.Background(), []string{"Shun Li Industrial Park #03-12"})
	if p == nil || p.Lat != 1.3345 || p.Lng != 103.8970 {
		t.Fatalf("expected overlay entry to resolve, got %v", p)
	}
	if len(fake.calls) != 0 {
		t.Fatalf("overlay hit should not reach the provider, got %v", fake.calls)
	}
}

func TestSimplifyTerm(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Shun Li Industrial Park", "Shun Li"},
		{"Kampong Ampat Techlink Building", "Kampong Ampat Techlink"},
		{"Oxley Bizhub", "Oxley Bizhub"},
		{"Tuas", "Tuas"},
	}
	for _, c := range cases {
		if got := SimplifyTerm(c.in); got != c.want {
			t.Errorf("SimplifyTerm(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
