// Package spotprice resolves the current spot price for one account,
// caching it for the validity window of the current pricing period.
package spotprice

import (
	"context"
	"log/slog"
	"time"

	"flickprice/lib/cookiestore"
	"flickprice/lib/credstore"
	"flickprice/lib/scrapers/flick"
	"flickprice/lib/timezone"
	"flickprice/services/spotprice/history"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/spotprice")

type Config struct {
	DashboardUrl   string `json:"dashboard_url"`
	SignInUrl      string `json:"sign_in_url"`
	CredentialFile string `json:"credential_file"`
	CookieFile     string `json:"cookie_file"`
	PriceFile      string `json:"price_file"`
	HistoryFile    string `json:"history_file"`
}

func DefaultConfig() Config {
	return Config{
		DashboardUrl:   "https://myflick.flickelectric.co.nz/dashboard/snapshot",
		SignInUrl:      "https://id.flickelectric.co.nz/identity/users/sign_in",
		CredentialFile: ".credentials",
		CookieFile:     ".cookies",
		PriceFile:      ".price",
		HistoryFile:    ".price_history.db",
	}
}

type Service struct {
	config  Config
	creds   *credstore.Store
	cache   priceCache
	history *history.Store

	// injectable for cache freshness tests
	now func() time.Time
}

// NewService wires the resolver. history may be nil, fetches are then
// simply not recorded.
func NewService(config Config, creds *credstore.Store, hist *history.Store) *Service {
	return &Service{
		config:  config,
		creds:   creds,
		cache:   priceCache{path: config.PriceFile},
		history: hist,
		now:     timezone.Now,
	}
}

// credentialSource adapts the credential store to the scraper.
type credentialSource struct {
	store *credstore.Store
}

func (s credentialSource) Credentials(ctx context.Context) (flick.Credentials, error) {
	creds, err := s.store.Get(ctx)
	if err != nil {
		return flick.Credentials{}, err
	}
	return flick.Credentials{
		Email:    creds.Username,
		Password: creds.Password,
	}, nil
}

func (s credentialSource) Invalidate() error {
	return s.store.Invalidate()
}

// Resolve returns the current spot price in cents. While the cached
// record's validity window is still open the stored value is returned
// without any network access; otherwise the price is fetched from the
// dashboard and the caches are refreshed.
func (s *Service) Resolve(ctx context.Context) (float64, error) {
	ctx, span := tracer.Start(ctx, "Resolve")
	defer span.End()

	cached, ok := s.cache.Load()
	if ok && s.now().Before(cached.EndAt) {
		span.AddEvent("price cache hit")
		slog.DebugContext(
			ctx, "price cache is still valid",
			"price", cached.Price, "end_at", cached.EndAt,
		)
		return cached.Price, nil
	}

	snap, err := s.fetchOnline(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	return snap.Price, nil
}

func (s *Service) fetchOnline(ctx context.Context) (flick.Snapshot, error) {
	ctx, span := tracer.Start(ctx, "fetchOnline")
	defer span.End()

	jar, err := cookiestore.Open(s.config.CookieFile)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to open session store")
		return flick.Snapshot{}, err
	}

	client, err := flick.NewClient(flick.ClientOptions{
		DashboardUrl: s.config.DashboardUrl,
		SignInUrl:    s.config.SignInUrl,
		Jar:          jar,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to build dashboard client")
		return flick.Snapshot{}, err
	}

	res, err := client.EnsureAuthenticated(ctx, credentialSource{store: s.creds})
	if err != nil {
		span.SetStatus(codes.Error, "authentication failed")
		return flick.Snapshot{}, err
	}

	snap, err := flick.ExtractSnapshot(res.Body())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "extraction failed")
		return flick.Snapshot{}, err
	}

	// from here on everything is best-effort, the price is already in
	// hand and a persistence failure only degrades future runs
	cookiestore.Save(jar, s.config.CookieFile)

	if err := s.cache.Store(snap); err != nil {
		slog.WarnContext(
			ctx, "unable to write the price cache, next run will hit the website again",
			"file", s.config.PriceFile, "err", err,
		)
	}
	if s.history != nil {
		if err := s.history.Push(ctx, s.now(), snap.EndAt, snap.Price); err != nil {
			slog.WarnContext(ctx, "unable to record price history", "err", err)
		}
	}

	return snap, nil
}
