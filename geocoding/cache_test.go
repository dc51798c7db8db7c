package geocoding

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestCache_FileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "geocode_cache.json")

	cache := NewCache(NewFileStore(path))
	if err := cache.Load(); err != nil {
		t.Fatalf("loading a missing cache file should succeed: %v", err)
	}
	if cache.Len() != 0 {
		t.Fatalf("expected empty cache, got %d entries", cache.Len())
	}

	if err := cache.Put("Tuas South Street 5", &Point{Lat: 1.28, Lng: 103.62}); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := cache.Put("Wong Fatt Building", nil); err != nil {
		t.Fatalf("put of not-found failed: %v", err)
	}

	reloaded := NewCache(NewFileStore(path))
	if err := reloaded.Load(); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Len() != 2 {
		t.Fatalf("expected 2 entries after reload, got %d", reloaded.Len())
	}

	p, seen := reloaded.Get("tuas south street 5")
	if !seen || p == nil {
		t.Fatalf("expected positive entry to survive reload, got %v seen=%v", p, seen)
	}
	if p.Lat != 1.28 || p.Lng != 103.62 {
		t.Fatalf("unexpected coordinates after reload: %v", *p)
	}

	p, seen = reloaded.Get("wong fatt building")
	if !seen || p != nil {
		t.Fatalf("expected cached not-found to survive reload, got %v seen=%v", p, seen)
	}

	if _, seen = reloaded.Get("never looked up"); seen {
		t.Fatal("unknown term should not report as seen")
	}
}

func TestCache_DocumentFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "geocode_cache.json")
	cache := NewCache(NewFileStore(path))

	if err := cache.Put("ubi techpark", &Point{Lat: 1.3307, Lng: 103.8990}); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := cache.Put("nowhere", nil); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading cache document: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("cache document is not valid JSON: %v", err)
	}

	pair, ok := doc["ubi techpark"].([]any)
	if !ok || len(pair) != 2 {
		t.Fatalf("positive entries must encode as [lat, lng], got %v", doc["ubi techpark"])
	}
	if pair[0].(float64) != 1.3307 || pair[1].(float64) != 103.8990 {
		t.Fatalf("unexpected encoded pair: %v", pair)
	}
	if v, present := doc["nowhere"]; !present || v != nil {
		t.Fatalf("not-found entries must encode as null, got %v", v)
	}
}

func TestCache_KeyNormalization(t *testing.T) {
	cache := NewCache(NewMemoryStore())
	if err := cache.Put("  UBI Techpark  ", &Point{Lat: 1.3307, Lng: 103.8990}); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	p, seen := cache.Get("ubi techpark")
	if !seen || p == nil || p.Lat != 1.3307 {
		t.Fatalf("expected normalized key to hit, got %v seen=%v", p, seen)
	}
}

func TestCache_GetReturnsCopy(t *testing.T) {
	cache := NewCache(NewMemoryStore())
	if err := cache.Put("tuas", &Point{Lat: 1.32, Lng: 103.64}); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	p, _ := cache.Get("tuas")
	p.Lat = 99
	p2, _ := cache.Get("tuas")
	if p2.Lat != 1.32 {
		t.Fatalf("mutating a returned point must not alter the cache, got %v", p2.Lat)
	}
}
