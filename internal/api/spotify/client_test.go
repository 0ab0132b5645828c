package spotify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zmb3/spotify/v2"
)

type fakeSearcher struct {
	queries []string
	result  *spotify.SearchResult
}

func (f *fakeSearcher) Search(_ context.Context, query string, _ spotify.SearchType, _ ...spotify.RequestOption) (*spotify.SearchResult, error) {
	f.queries = append(f.queries, query)
	return f.result, nil
}

func trackResult(name, artist, album string) *spotify.SearchResult {
	track := spotify.FullTrack{}
	track.Name = name
	track.Artists = []spotify.SimpleArtist{{Name: artist}}
	track.Album = spotify.SimpleAlbum{Name: album}
	return &spotify.SearchResult{Tracks: &spotify.FullTrackPage{Tracks: []spotify.FullTrack{track}}}
}

func TestArtistByTrack(t *testing.T) {
	fake := &fakeSearcher{result: trackResult("Wonderwall", "Oasis", "(What's the Story) Morning Glory?")}
	client := NewSpotifyClient("id", "secret", 0)
	client.client = fake

	artist, err := client.ArtistByTrack(context.Background(), "Wonderwall")
	require.NoError(t, err)
	assert.Equal(t, "Oasis", artist)
	assert.Equal(t, []string{"track:Wonderwall"}, fake.queries)

	album, err := client.AlbumByTrackArtist(context.Background(), "Wonderwall", "Oasis")
	require.NoError(t, err)
	assert.Equal(t, "(What's the Story) Morning Glory?", album)
}

func TestAlbumArtURL(t *testing.T) {
	album := spotify.SimpleAlbum{Name: "Ok Computer", Images: []spotify.Image{{URL: "https://i.scdn.co/big"}, {URL: "https://i.scdn.co/small"}}}
	fake := &fakeSearcher{result: &spotify.SearchResult{Albums: &spotify.SimpleAlbumPage{Albums: []spotify.SimpleAlbum{album}}}}
	client := NewSpotifyClient("id", "secret", 0)
	client.client = fake

	u, err := client.AlbumArtURL(context.Background(), "Radiohead", "Ok Computer")
	require.NoError(t, err)
	assert.Equal(t, "https://i.scdn.co/big", u)
}

func TestEmptyResults(t *testing.T) {
	client := NewSpotifyClient("id", "secret", 0)
	client.client = &fakeSearcher{result: &spotify.SearchResult{}}

	artist, err := client.ArtistByTrack(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Empty(t, artist)
}

func TestNotConfigured(t *testing.T) {
	client := NewSpotifyClient("", "", 0)
	assert.False(t, client.Configured())
	_, err := client.ArtistByTrack(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

// stalledSearcher blocks until the request context ends
type stalledSearcher struct {
	deadline bool
}

func (f *stalledSearcher) Search(ctx context.Context, _ string, _ spotify.SearchType, _ ...spotify.RequestOption) (*spotify.SearchResult, error) {
	_, f.deadline = ctx.Deadline()
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestSearchIsBoundedByTimeout(t *testing.T) {
	fake := &stalledSearcher{}
	client := NewSpotifyClient("id", "secret", 100*time.Millisecond)
	client.client = fake

	start := time.Now()
	_, err := client.ArtistByTrack(context.Background(), "Wonderwall")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, fake.deadline)
	assert.Less(t, time.Since(start), 2*time.Second)

	_, err = client.AlbumArtURL(context.Background(), "Oasis", "Be Here Now")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSearchHonorsCancel(t *testing.T) {
	client := NewSpotifyClient("id", "secret", time.Minute)
	client.client = &stalledSearcher{}

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	_, err := client.AlbumByTrackArtist(ctx, "Wonderwall", "Oasis")
	assert.ErrorIs(t, err, context.Canceled)
}
