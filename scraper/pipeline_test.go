package scraper

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"commprop_intel/extraction"
	"commprop_intel/geocoding"
	"commprop_intel/models"
	"commprop_intel/services"
	"commprop_intel/storage"
)

type fakeNavigator struct {
	pages   map[string]string
	errs    map[string]error
	fetches int
	closed  int
}

func (n *fakeNavigator) FetchDate(_ context.Context, date time.Time) (string, error) {
	n.fetches++
	key := date.Format("2006-01-02")
	if err, ok := n.errs[key]; ok {
		return "", err
	}
	if markup, ok := n.pages[key]; ok {
		return markup, nil
	}
	return "", ErrNoResults
}

func (n *fakeNavigator) Close() { n.closed++ }

type fakeArchiver struct {
	dates []string
	err   error
}

func (a *fakeArchiver) ArchivePage(_ context.Context, scrapeDate time.Time, markup string) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	key := scrapeDate.Format("2006-01-02")
	a.dates = append(a.dates, key)
	return "https://archive.test/pages/" + key, nil
}

func newTestPipeline(t *testing.T, nav Navigator) (*Pipeline, *storage.SQLiteStore) {
	t.Helper()
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "pipeline.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ingest := services.NewIngestService(store, geocoding.NewResolver(nil, nil))
	p := NewPipeline(nav, extraction.NewBatchExtractor(nil), ingest, store)
	p.SetDelay(time.Millisecond)
	return p, store
}

func yesterdayKey() string {
	return models.DateOnly(time.Now().AddDate(0, 0, -1)).Format("2006-01-02")
}

func TestPipeline_RunEndToEnd(t *testing.T) {
	nav := &fakeNavigator{pages: map[string]string{
		yesterdayKey(): string(loadFixture(t, "listings_page.html")),
	}}
	p, store := newTestPipeline(t, nav)
	ctx := context.Background()

	summary, err := p.Run(ctx, 1)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Found != 2 || summary.New != 2 || summary.Updated != 0 || summary.Errors != 0 {
		t.Errorf("summary = %+v, want 2 found, 2 new", summary)
	}
	if summary.RunID <= 0 {
		t.Errorf("run id = %d, want positive", summary.RunID)
	}
	if p.State() != StateCompleted {
		t.Errorf("state = %q, want %q", p.State(), StateCompleted)
	}
	if nav.closed != 1 {
		t.Errorf("navigator closed %d times, want 1", nav.closed)
	}

	listings, err := store.ListListings(ctx, storage.ListingFilter{})
	if err != nil {
		t.Fatalf("ListListings failed: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("stored %d listings, want 2", len(listings))
	}

	var ubi, taiSeng *models.Listing
	for i := range listings {
		switch {
		case listings[i].ContactPhone != nil && *listings[i].ContactPhone == "98183835":
			ubi = &listings[i]
		case listings[i].ContactPhone != nil && *listings[i].ContactPhone == "91234567":
			taiSeng = &listings[i]
		}
	}
	if ubi == nil || taiSeng == nil {
		t.Fatal("expected both fixture listings by phone")
	}

	if ubi.RawText != "UBI TECHPARK 3/STY B1 Park 4cars. 7858 sf $3.55M Ground flr. Price to sell. 98183835 Jean Lee" {
		t.Errorf("ubi raw_text = %q", ubi.RawText)
	}
	if ubi.Price == nil || *ubi.Price != 3550000 {
		t.Errorf("ubi price = %v, want 3550000", ubi.Price)
	}
	if ubi.GfaSqft == nil || *ubi.GfaSqft != 7858 {
		t.Errorf("ubi gfa = %v, want 7858", ubi.GfaSqft)
	}
	if ubi.PropertyType == nil || *ubi.PropertyType != models.PropertyTypeFactory {
		t.Errorf("ubi property_type = %v", ubi.PropertyType)
	}
	if ubi.Latitude == nil || *ubi.Latitude != 1.3307 || ubi.Longitude == nil || *ubi.Longitude != 103.8990 {
		t.Errorf("ubi coords = %v/%v, want 1.3307/103.8990", ubi.Latitude, ubi.Longitude)
	}
	if ubi.IsOwner || ubi.IsAgent {
		t.Errorf("ubi flags = owner %v agent %v, want both false", ubi.IsOwner, ubi.IsAgent)
	}

	if taiSeng.GfaSqft == nil || *taiSeng.GfaSqft != 1200 {
		t.Errorf("tai seng gfa = %v, want 1200", taiSeng.GfaSqft)
	}
	if taiSeng.TransactionType == nil || *taiSeng.TransactionType != models.TransactionTypeRent {
		t.Errorf("tai seng transaction = %v", taiSeng.TransactionType)
	}
	if taiSeng.Latitude == nil || *taiSeng.Latitude != 1.3360 {
		t.Errorf("tai seng latitude = %v, want 1.3360", taiSeng.Latitude)
	}

	wantDate := models.DateOnly(time.Now().AddDate(0, 0, -1))
	if !ubi.FirstSeenDate.Equal(wantDate) {
		t.Errorf("ubi first_seen = %v, want %v", ubi.FirstSeenDate, wantDate)
	}

	advertiser, err := store.GetAdvertiser(ctx, "98183835")
	if err != nil {
		t.Fatalf("GetAdvertiser failed: %v", err)
	}
	if advertiser == nil || advertiser.TotalListings != 1 {
		t.Errorf("advertiser = %+v, want total_listings 1", advertiser)
	}

	run, err := store.LatestRun(ctx)
	if err != nil {
		t.Fatalf("LatestRun failed: %v", err)
	}
	if run == nil {
		t.Fatal("no run recorded")
	}
	if run.Status != models.RunStatusCompleted {
		t.Errorf("run status = %q, want completed", run.Status)
	}
	if run.ListingsFound != 2 || run.ListingsNew != 2 {
		t.Errorf("run counts = %d found %d new, want 2/2", run.ListingsFound, run.ListingsNew)
	}
	if run.FinishedAt == nil {
		t.Error("run finished_at not set")
	}
}

func TestPipeline_EmptyDatesComplete(t *testing.T) {
	nav := &fakeNavigator{}
	p, store := newTestPipeline(t, nav)

	summary, err := p.Run(context.Background(), 3)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Found != 0 || summary.Errors != 0 {
		t.Errorf("summary = %+v, want empty clean run", summary)
	}
	if nav.fetches != 3 {
		t.Errorf("fetched %d dates, want 3", nav.fetches)
	}

	run, err := store.LatestRun(context.Background())
	if err != nil {
		t.Fatalf("LatestRun failed: %v", err)
	}
	if run.Status != models.RunStatusCompleted {
		t.Errorf("run status = %q, want completed", run.Status)
	}
}

func TestPipeline_FetchErrorCountedNotFatal(t *testing.T) {
	dayBefore := models.DateOnly(time.Now().AddDate(0, 0, -2)).Format("2006-01-02")
	nav := &fakeNavigator{
		errs:  map[string]error{yesterdayKey(): errors.New("net::ERR_TIMED_OUT")},
		pages: map[string]string{dayBefore: string(loadFixture(t, "listings_page.html"))},
	}
	p, store := newTestPipeline(t, nav)

	summary, err := p.Run(context.Background(), 2)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Errors != 1 {
		t.Errorf("errors = %d, want 1", summary.Errors)
	}
	if summary.Found != 2 || summary.New != 2 {
		t.Errorf("summary = %+v, want the good date's 2 blocks", summary)
	}

	run, err := store.LatestRun(context.Background())
	if err != nil {
		t.Fatalf("LatestRun failed: %v", err)
	}
	if run.Status != models.RunStatusCompleted {
		t.Errorf("run status = %q, want completed despite fetch error", run.Status)
	}
	if run.ErrorsCount != 1 {
		t.Errorf("run errors_count = %d, want 1", run.ErrorsCount)
	}
}

func TestPipeline_RerunRecordsResightings(t *testing.T) {
	nav := &fakeNavigator{pages: map[string]string{
		yesterdayKey(): string(loadFixture(t, "listings_page.html")),
	}}
	p, store := newTestPipeline(t, nav)
	ctx := context.Background()

	if _, err := p.Run(ctx, 1); err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	summary, err := p.Run(ctx, 1)
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	if summary.New != 0 || summary.Updated != 2 {
		t.Errorf("second run = %+v, want 0 new, 2 updated", summary)
	}

	count, err := store.CountListings(ctx)
	if err != nil {
		t.Fatalf("CountListings failed: %v", err)
	}
	if count != 2 {
		t.Errorf("listing count = %d after rerun, want 2", count)
	}

	listings, err := store.ListListings(ctx, storage.ListingFilter{})
	if err != nil {
		t.Fatalf("ListListings failed: %v", err)
	}
	for _, l := range listings {
		snaps, err := store.SnapshotsForListing(ctx, l.ID)
		if err != nil {
			t.Fatalf("SnapshotsForListing failed: %v", err)
		}
		if len(snaps) != 1 {
			t.Errorf("listing %s has %d snapshots, want 1", l.ID, len(snaps))
		}
	}

	if nav.closed != 2 {
		t.Errorf("navigator closed %d times across 2 runs, want 2", nav.closed)
	}
}

func TestPipeline_ArchiverReceivesPages(t *testing.T) {
	nav := &fakeNavigator{pages: map[string]string{
		yesterdayKey(): string(loadFixture(t, "listings_page.html")),
	}}
	p, _ := newTestPipeline(t, nav)
	archiver := &fakeArchiver{}
	p.SetArchiver(archiver)

	if _, err := p.Run(context.Background(), 2); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	// Only the date that actually returned markup gets archived.
	if len(archiver.dates) != 1 || archiver.dates[0] != yesterdayKey() {
		t.Errorf("archived dates = %v, want just yesterday", archiver.dates)
	}
}

func TestPipeline_ArchiverFailureDoesNotAbort(t *testing.T) {
	nav := &fakeNavigator{pages: map[string]string{
		yesterdayKey(): string(loadFixture(t, "listings_page.html")),
	}}
	p, _ := newTestPipeline(t, nav)
	p.SetArchiver(&fakeArchiver{err: errors.New("bucket unavailable")})

	summary, err := p.Run(context.Background(), 1)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Found != 2 || summary.Errors != 0 {
		t.Errorf("summary = %+v, archive failure should not count", summary)
	}
}

func TestDatesBack(t *testing.T) {
	now := time.Date(2026, 8, 24, 10, 30, 0, 0, time.UTC)
	dates := datesBack(now, 3)
	want := []time.Time{
		time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 22, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC),
	}
	if len(dates) != len(want) {
		t.Fatalf("got %d dates, want %d", len(dates), len(want))
	}
	for i := range want {
		if !dates[i].Equal(want[i]) {
			t.Errorf("dates[%d] = %v, want %v", i, dates[i], want[i])
		}
	}
}
