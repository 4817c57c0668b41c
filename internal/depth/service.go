package depth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/marketlens/nftdepth/internal/cache"
	"github.com/marketlens/nftdepth/internal/marketplace"
	"github.com/marketlens/nftdepth/internal/telemetry/metrics"
)

const (
	cacheKeyPrefix = "market-depth:"

	// DefaultTTL is how long a computed snapshot stays cached.
	DefaultTTL = 120 * time.Second

	// Page bounds for the two marketplace fetches.
	listingsLimit = 100
	offersLimit   = 200
)

// Provider supplies raw market data for a collection.
type Provider interface {
	GetListings(ctx context.Context, collectionID string, limit int) ([]marketplace.RawListing, error)
	GetOffers(ctx context.Context, collectionID string, limit int) ([]marketplace.RawOffer, error)
}

// Archiver records computed snapshots out of band. Archive failures do
// not fail the request; the snapshot has already been computed and
// cached by the time archival runs.
type Archiver interface {
	Archive(ctx context.Context, collectionID string, snap Snapshot) error
}

// ServiceConfig wires a Service's collaborators. Provider, Cache and
// CollectionID are required; the rest are optional.
type ServiceConfig struct {
	Provider     Provider
	Cache        cache.Cache
	CollectionID string
	Archiver     Archiver
	Metrics      *metrics.Registry
	TTL          time.Duration
}

// Service produces cache-backed market-depth snapshots for one
// collection.
type Service struct {
	provider     Provider
	cache        cache.Cache
	archiver     Archiver
	metrics      *metrics.Registry
	collectionID string
	ttl          time.Duration
	now          func() time.Time
}

// NewService creates a depth service from its collaborators.
func NewService(cfg ServiceConfig) *Service {
	if cfg.TTL == 0 {
		cfg.TTL = DefaultTTL
	}
	return &Service{
		provider:     cfg.Provider,
		cache:        cfg.Cache,
		archiver:     cfg.Archiver,
		metrics:      cfg.Metrics,
		collectionID: cfg.CollectionID,
		ttl:          cfg.TTL,
		now:          time.Now,
	}
}

// MarketDepth returns the current depth snapshot for the service's
// collection. On a cache hit the stored snapshot comes back verbatim
// with no recomputation and no TTL refresh. On a miss, listings and
// offers are fetched concurrently, aggregated, cached for the TTL and
// returned. Any fetch or cache failure fails the whole request; there
// are no partial snapshots.
func (s *Service) MarketDepth(ctx context.Context) (Snapshot, error) {
	key := cacheKeyPrefix + s.collectionID

	cached, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		return Snapshot{}, fmt.Errorf("market depth cache lookup: %w", err)
	}
	if ok {
		var snap Snapshot
		if err := json.Unmarshal(cached, &snap); err == nil {
			s.countCache(true)
			return snap, nil
		}
		// Undecodable entry: recompute and overwrite it below.
		log.Warn().Str("key", key).Msg("discarding undecodable cached snapshot")
	}
	s.countCache(false)

	var (
		listings []marketplace.RawListing
		offers   []marketplace.RawOffer
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fetchStart := time.Now()
		var err error
		listings, err = s.provider.GetListings(gctx, s.collectionID, listingsLimit)
		s.observeFetch("listings", fetchStart, err)
		if err != nil {
			return fmt.Errorf("fetch listings: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		fetchStart := time.Now()
		var err error
		offers, err = s.provider.GetOffers(gctx, s.collectionID, offersLimit)
		s.observeFetch("offers", fetchStart, err)
		if err != nil {
			return fmt.Errorf("fetch offers: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, fmt.Errorf("market depth: %w", err)
	}

	buildStart := time.Now()
	snap := Aggregate(listings, offers, s.now())
	if s.metrics != nil {
		s.metrics.SnapshotBuilds.Inc()
		s.metrics.SnapshotDuration.Observe(time.Since(buildStart).Seconds())
	}

	encoded, err := json.Marshal(snap)
	if err != nil {
		return Snapshot{}, fmt.Errorf("market depth encode: %w", err)
	}
	if err := s.cache.Set(ctx, key, encoded, s.ttl); err != nil {
		return Snapshot{}, fmt.Errorf("market depth cache store: %w", err)
	}

	if s.archiver != nil {
		if err := s.archiver.Archive(ctx, s.collectionID, snap); err != nil {
			log.Warn().Err(err).Str("collection", s.collectionID).Msg("snapshot archive failed")
		}
	}

	log.Debug().
		Str("collection", s.collectionID).
		Int("listing_buckets", len(snap.Listings)).
		Int("offer_buckets", len(snap.Offers)).
		Float64("spread", snap.Spread).
		Msg("depth snapshot computed")

	return snap, nil
}

func (s *Service) observeFetch(endpoint string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.FetchDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.FetchErrors.WithLabelValues(endpoint).Inc()
	}
}

func (s *Service) countCache(hit bool) {
	if s.metrics == nil {
		return
	}
	if hit {
		s.metrics.CacheHits.WithLabelValues("market_depth").Inc()
	} else {
		s.metrics.CacheMisses.WithLabelValues("market_depth").Inc()
	}
}
