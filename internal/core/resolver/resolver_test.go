package resolver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meloburn/internal/api/webclient"
	"meloburn/internal/cache"
	"meloburn/internal/shared"
)

type fakeProvider struct {
	name   string
	answer string
	err    error
	calls  int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) reply() (string, error) {
	f.calls++
	return f.answer, f.err
}

func (f *fakeProvider) ArtistByTrack(context.Context, string) (string, error) { return f.reply() }
func (f *fakeProvider) TrackByArtist(context.Context, string) (string, error) { return f.reply() }
func (f *fakeProvider) AlbumByTrackArtist(context.Context, string, string) (string, error) {
	return f.reply()
}
func (f *fakeProvider) AlbumArtURL(context.Context, string, string) (string, error) {
	return f.reply()
}

// artistOnly implements a single capability
type artistOnly struct{ name string }

func (a *artistOnly) Name() string { return a.name }
func (a *artistOnly) ArtistByTrack(context.Context, string) (string, error) {
	return "", nil
}

func newResolver(t *testing.T, providers ...interface{}) (*Resolver, *cache.Memory, *shared.WarningCollector) {
	t.Helper()
	memory := cache.NewMemory()
	store := cache.NewStore(memory, nil)
	warnings := shared.NewWarningCollector(true)
	var chain Providers
	chain.Add(providers...)
	return New(store, nil, chain, nil, warnings), memory, warnings
}

func TestFallsBackToThirdProvider(t *testing.T) {
	first := &fakeProvider{name: "a", err: errors.New("timeout")}
	second := &fakeProvider{name: "b", answer: "   "}
	third := &fakeProvider{name: "c", answer: " Sigur Rós "}
	r, memory, warnings := newResolver(t, first, second, third)

	artist, ok := r.ResolveArtistByTrack(context.Background(), "Hoppípolla")
	require.True(t, ok)
	assert.Equal(t, "Sigur Rós", artist)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
	assert.Equal(t, 1, third.calls)
	assert.Equal(t, 1, warnings.GetWarningCount())

	snapshot, err := memory.Load()
	require.NoError(t, err)
	assert.Equal(t, "Sigur Rós", snapshot.Tracks["hoppipolla"])
}

func TestCacheHitSkipsProviders(t *testing.T) {
	provider := &fakeProvider{name: "a", answer: "Radiohead"}
	r, _, _ := newResolver(t, provider)

	_, ok := r.ResolveAlbumByTrackArtist(context.Background(), "Creep", "Radiohead")
	require.True(t, ok)
	album, ok := r.ResolveAlbumByTrackArtist(context.Background(), "CREEP", " radiohead")
	require.True(t, ok)
	assert.Equal(t, "Radiohead", album)
	assert.Equal(t, 1, provider.calls)
}

func TestEmptyInputIsNotFound(t *testing.T) {
	provider := &fakeProvider{name: "a", answer: "x"}
	r, _, _ := newResolver(t, provider)

	_, ok := r.ResolveArtistByTrack(context.Background(), "  ")
	assert.False(t, ok)
	_, ok = r.ResolveAlbumArtURL(context.Background(), "artist", "")
	assert.False(t, ok)
	assert.Zero(t, provider.calls)
}

func TestAllProvidersEmpty(t *testing.T) {
	r, memory, _ := newResolver(t, &fakeProvider{name: "a"}, &fakeProvider{name: "b"})
	_, ok := r.ResolveTrackByArtist(context.Background(), "Nobody")
	assert.False(t, ok)
	assert.Zero(t, memory.Saves)
}

func TestCancelledContextStopsChain(t *testing.T) {
	provider := &fakeProvider{name: "a", answer: "x"}
	r, _, _ := newResolver(t, provider)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := r.ResolveAlbumArtURL(ctx, "a", "b")
	assert.False(t, ok)
	assert.Zero(t, provider.calls)
}

func TestProvidersAddByCapability(t *testing.T) {
	full := &fakeProvider{name: "full"}
	partial := &artistOnly{name: "partial"}
	var chain Providers
	chain.Add(partial, full)

	require.Len(t, chain.ArtistByTrack, 2)
	assert.Equal(t, "partial", chain.ArtistByTrack[0].Name())
	assert.Len(t, chain.TrackByArtist, 1)
	assert.Len(t, chain.Album, 1)
	assert.Len(t, chain.AlbumArt, 1)
}

func TestFetchBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/cover.jpg" {
			w.Write([]byte{0xff, 0xd8, 0xff})
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	r := New(nil, webclient.New(webclient.DefaultConfig(), srv.Client()), Providers{}, nil, nil)
	data, ok := r.FetchBytes(context.Background(), srv.URL+"/cover.jpg")
	require.True(t, ok)
	assert.Equal(t, []byte{0xff, 0xd8, 0xff}, data)

	_, ok = r.FetchBytes(context.Background(), srv.URL+"/missing.jpg")
	assert.False(t, ok)
}

// catalog answers from a fixed table keyed by "artist|name"
type catalog struct {
	albums map[string]string
	covers map[string]string
	calls  int
}

func (c *catalog) Name() string { return "catalog" }

func (c *catalog) AlbumByTrackArtist(_ context.Context, track, artist string) (string, error) {
	c.calls++
	return c.albums[artist+"|"+track], nil
}

func (c *catalog) AlbumArtURL(_ context.Context, artist, album string) (string, error) {
	c.calls++
	return c.covers[artist+"|"+album], nil
}

func TestNonLatinLookupsKeepSeparateCacheEntries(t *testing.T) {
	provider := &catalog{
		albums: map[string]string{
			"Кино|Кукушка":                  "Группа крови",
			"Алла Пугачёва|Ты меня не буди": "Ты меня не буди",
		},
		covers: map[string]string{
			"Кино|Группа крови":       "http://img/kino.jpg",
			"ビートルズ|アビイ・ロード": "http://img/abbey.jpg",
		},
	}
	r, memory, _ := newResolver(t, provider)
	ctx := context.Background()

	album, ok := r.ResolveAlbumByTrackArtist(ctx, "Кукушка", "Кино")
	require.True(t, ok)
	assert.Equal(t, "Группа крови", album)

	album, ok = r.ResolveAlbumByTrackArtist(ctx, "Ты меня не буди", "Алла Пугачёва")
	require.True(t, ok)
	assert.Equal(t, "Ты меня не буди", album)

	cover, ok := r.ResolveAlbumArtURL(ctx, "Кино", "Группа крови")
	require.True(t, ok)
	assert.Equal(t, "http://img/kino.jpg", cover)

	cover, ok = r.ResolveAlbumArtURL(ctx, "ビートルズ", "アビイ・ロード")
	require.True(t, ok)
	assert.Equal(t, "http://img/abbey.jpg", cover)
	assert.Equal(t, 4, provider.calls)

	snapshot, err := memory.Load()
	require.NoError(t, err)
	assert.Len(t, snapshot.Albums, 2)
	assert.Equal(t, "Группа крови", snapshot.Albums["кино_кукушка"])
	assert.Len(t, snapshot.AlbumArt, 2)
}

func TestKeylessLookupIsNotCached(t *testing.T) {
	provider := &fakeProvider{name: "a", answer: "Some Album"}
	r, memory, _ := newResolver(t, provider)

	album, ok := r.ResolveAlbumByTrackArtist(context.Background(), "?!", "Radiohead")
	require.True(t, ok)
	assert.Equal(t, "Some Album", album)

	_, ok = r.ResolveAlbumByTrackArtist(context.Background(), "...", "Radiohead")
	require.True(t, ok)
	assert.Equal(t, 2, provider.calls)
	assert.Zero(t, memory.Saves)
}
