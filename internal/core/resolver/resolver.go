package resolver

import (
	"context"
	"errors"
	"strings"

	"meloburn/internal/api/webclient"
	"meloburn/internal/cache"
	"meloburn/internal/interfaces"
	"meloburn/internal/shared"
)

// Providers holds the ordered fallback chain for each lookup
type Providers struct {
	ArtistByTrack []interfaces.ArtistByTrackFinder
	TrackByArtist []interfaces.TrackByArtistFinder
	Album         []interfaces.AlbumFinder
	AlbumArt      []interfaces.AlbumArtFinder
}

// Add appends p to every chain whose capability it implements, keeping call order
func (p *Providers) Add(providers ...interface{}) {
	for _, provider := range providers {
		if f, ok := provider.(interfaces.ArtistByTrackFinder); ok {
			p.ArtistByTrack = append(p.ArtistByTrack, f)
		}
		if f, ok := provider.(interfaces.TrackByArtistFinder); ok {
			p.TrackByArtist = append(p.TrackByArtist, f)
		}
		if f, ok := provider.(interfaces.AlbumFinder); ok {
			p.Album = append(p.Album, f)
		}
		if f, ok := provider.(interfaces.AlbumArtFinder); ok {
			p.AlbumArt = append(p.AlbumArt, f)
		}
	}
}

// Resolver answers metadata lookups from the cache first and the provider chains second
type Resolver struct {
	store     *cache.Store
	web       *webclient.Client
	providers Providers
	logger    interfaces.LoggerService
	warnings  interfaces.WarningCollectorService
}

// New creates a resolver. logger and warnings may be nil.
func New(store *cache.Store, web *webclient.Client, providers Providers, logger interfaces.LoggerService, warnings interfaces.WarningCollectorService) *Resolver {
	if logger == nil {
		logger = shared.NopLogger{}
	}
	if store == nil {
		store = cache.NewStore(cache.NewMemory(), logger)
	}
	if web == nil {
		web = webclient.New(webclient.DefaultConfig(), nil)
	}
	return &Resolver{
		store:     store,
		web:       web,
		providers: providers,
		logger:    logger,
		warnings:  warnings,
	}
}

type step struct {
	provider string
	call     func(ctx context.Context) (string, error)
}

// resolve walks steps in order and writes the first non-empty answer through to the cache
func (r *Resolver) resolve(ctx context.Context, table cache.Table, key, lookup string, steps []step) (string, bool) {
	if value, ok := r.store.Get(table, key); ok {
		r.logger.Debug("Cache hit for %s [%s]: %s", lookup, key, value)
		return value, true
	}

	for _, s := range steps {
		if ctx.Err() != nil {
			return "", false
		}
		value, err := s.call(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) && ctx.Err() != nil {
				return "", false
			}
			r.logger.Debug("%s lookup via %s failed: %v", lookup, s.provider, err)
			if r.warnings != nil {
				r.warnings.AddProviderWarning(s.provider, lookup, err.Error())
			}
			continue
		}
		if value = strings.TrimSpace(value); value != "" {
			r.logger.Debug("%s resolved via %s: %s", lookup, s.provider, value)
			r.store.Put(table, key, value)
			return value, true
		}
	}
	return "", false
}

// ResolveArtistByTrack finds the artist for a title
func (r *Resolver) ResolveArtistByTrack(ctx context.Context, title string) (string, bool) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", false
	}
	steps := make([]step, 0, len(r.providers.ArtistByTrack))
	for _, p := range r.providers.ArtistByTrack {
		p := p
		steps = append(steps, step{p.Name(), func(ctx context.Context) (string, error) {
			return p.ArtistByTrack(ctx, title)
		}})
	}
	return r.resolve(ctx, cache.ArtistsByTrack, cache.Key(title), "artist by track", steps)
}

// ResolveTrackByArtist finds a representative title for an artist
func (r *Resolver) ResolveTrackByArtist(ctx context.Context, artist string) (string, bool) {
	artist = strings.TrimSpace(artist)
	if artist == "" {
		return "", false
	}
	steps := make([]step, 0, len(r.providers.TrackByArtist))
	for _, p := range r.providers.TrackByArtist {
		p := p
		steps = append(steps, step{p.Name(), func(ctx context.Context) (string, error) {
			return p.TrackByArtist(ctx, artist)
		}})
	}
	return r.resolve(ctx, cache.TracksByArtist, cache.Key(artist), "track by artist", steps)
}

// ResolveAlbumByTrackArtist finds the album a track appears on
func (r *Resolver) ResolveAlbumByTrackArtist(ctx context.Context, track, artist string) (string, bool) {
	track, artist = strings.TrimSpace(track), strings.TrimSpace(artist)
	if track == "" || artist == "" {
		return "", false
	}
	steps := make([]step, 0, len(r.providers.Album))
	for _, p := range r.providers.Album {
		p := p
		steps = append(steps, step{p.Name(), func(ctx context.Context) (string, error) {
			return p.AlbumByTrackArtist(ctx, track, artist)
		}})
	}
	return r.resolve(ctx, cache.Albums, cache.Key(artist, track), "album by track", steps)
}

// ResolveAlbumArtURL finds a cover image URL for an album
func (r *Resolver) ResolveAlbumArtURL(ctx context.Context, artist, album string) (string, bool) {
	artist, album = strings.TrimSpace(artist), strings.TrimSpace(album)
	if artist == "" || album == "" {
		return "", false
	}
	steps := make([]step, 0, len(r.providers.AlbumArt))
	for _, p := range r.providers.AlbumArt {
		p := p
		steps = append(steps, step{p.Name(), func(ctx context.Context) (string, error) {
			return p.AlbumArtURL(ctx, artist, album)
		}})
	}
	return r.resolve(ctx, cache.AlbumArt, cache.Key(artist, album), "album art", steps)
}

// FetchBytes downloads url. Results are not cached.
func (r *Resolver) FetchBytes(ctx context.Context, url string) ([]byte, bool) {
	url = strings.TrimSpace(url)
	if url == "" || ctx.Err() != nil {
		return nil, false
	}
	data, err := r.web.GetBytes(ctx, url)
	if err != nil {
		r.logger.Debug("Download of %s failed: %v", url, err)
		return nil, false
	}
	return data, true
}
