package organizer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meloburn/internal/shared"
)

// fakeProcessor answers from a table keyed by base name
type fakeProcessor struct {
	records    map[string]shared.TrackRecord
	incomplete map[string]bool
	calls      []string
}

func (f *fakeProcessor) Process(ctx context.Context, path string) (shared.TrackRecord, bool, error) {
	if err := shared.CheckCancelled(ctx); err != nil {
		return shared.TrackRecord{}, false, err
	}
	name := filepath.Base(path)
	f.calls = append(f.calls, name)
	record, ok := f.records[name]
	if !ok {
		record = shared.TrackRecord{Artist: shared.Placeholder, Album: shared.Placeholder, Title: strings.TrimSuffix(name, filepath.Ext(name))}
	}
	record.SourcePath = path
	return record, f.incomplete[name], nil
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("audio:"+name), 0644))
	}
}

type progressLog struct {
	events []string
	last   map[string][2]int
}

func (p *progressLog) report(current, total int, stage string) {
	if p.last == nil {
		p.last = make(map[string][2]int)
	}
	p.events = append(p.events, stage)
	p.last[stage] = [2]int{current, total}
}

func TestOrganizeIsIdempotent(t *testing.T) {
	src := t.TempDir()
	writeFiles(t, src, "a.mp3", "sub/b.FLAC", "notes.txt")
	dest := filepath.Join(src, "Organized")

	processor := &fakeProcessor{
		records: map[string]shared.TrackRecord{
			"a.mp3":  {Artist: "Gal Costa", Album: "Gal", Title: "Cinema Olympia", TrackNumber: 1},
			"b.FLAC": {Artist: "Gal Costa", Album: "Gal", Title: "Tuareg", TrackNumber: 2},
		},
	}
	o := New(processor, nil, nil, nil)

	progress := &progressLog{}
	result, err := o.Organize(context.Background(), src, dest, progress.report)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Analyzed)
	assert.Equal(t, 2, result.Copied)
	assert.Equal(t, [2]int{3, 3}, progress.last[shared.StageAnalyzing])
	assert.Equal(t, [2]int{2, 2}, progress.last[shared.StageOrganizing])
	assert.FileExists(t, filepath.Join(dest, "Gal Costa", "Gal", "01 - Cinema Olympia.mp3"))
	assert.FileExists(t, filepath.Join(dest, "Gal Costa", "Gal", "02 - Tuareg.FLAC"))

	processor.calls = nil
	progress = &progressLog{}
	result, err = o.Organize(context.Background(), src, dest, progress.report)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Analyzed)
	assert.ElementsMatch(t, []string{"a.mp3", "b.FLAC"}, processor.calls)
	assert.Equal(t, [2]int{3, 3}, progress.last[shared.StageAnalyzing])
}

func TestOrganizeIsIdempotentWithNestedDestination(t *testing.T) {
	src := t.TempDir()
	writeFiles(t, src, "a.mp3", "a/b/c.mp3")
	dest := filepath.Join(src, "a", "b", "Organized")

	processor := &fakeProcessor{
		records: map[string]shared.TrackRecord{
			"a.mp3": {Artist: "Elis Regina", Album: "Elis", Title: "Atrás da Porta", TrackNumber: 1},
			"c.mp3": {Artist: "Elis Regina", Album: "Elis", Title: "Cabaré", TrackNumber: 2},
		},
	}
	o := New(processor, nil, nil, nil)

	for run := 0; run < 2; run++ {
		processor.calls = nil
		result, err := o.Organize(context.Background(), src, dest, nil)
		require.NoError(t, err)
		assert.Equal(t, 2, result.Analyzed, "run %d", run+1)
		assert.ElementsMatch(t, []string{"a.mp3", "c.mp3"}, processor.calls)
	}
	assert.FileExists(t, filepath.Join(dest, "Elis Regina", "Elis", "01 - Atrás da Porta.mp3"))
	assert.FileExists(t, filepath.Join(dest, "Elis Regina", "Elis", "02 - Cabaré.mp3"))
	assert.NoDirExists(t, filepath.Join(dest, "Elis Regina", "Elis", "Organized"))
}

func TestOrganizeSortsAndNumbers(t *testing.T) {
	src := t.TempDir()
	writeFiles(t, src, "w.mp3", "x.mp3", "y.mp3", "z.mp3")
	dest := t.TempDir()

	o := New(&fakeProcessor{records: map[string]shared.TrackRecord{
		"w.mp3": {Artist: "A", Album: "B", Title: "B", TrackNumber: 2},
		"x.mp3": {Artist: "A", Album: "B", Title: "Z"},
		"y.mp3": {Artist: "A", Album: "B", Title: "A", TrackNumber: 1},
		"z.mp3": {Artist: "A", Album: "B", Title: "C"},
	}}, nil, nil, nil)

	_, err := o.Organize(context.Background(), src, dest, nil)
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(dest, "A", "B"))
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"01 - A.mp3", "02 - B.mp3", "03 - C.mp3", "04 - Z.mp3"}, names)
}

func TestOrganizeShortensLongTitles(t *testing.T) {
	src := t.TempDir()
	writeFiles(t, src, "long.mp3")
	dest := t.TempDir()

	title := "Abcdefghijklmnopqrst" + strings.Repeat("m", 275) + "VWXYZ"
	require.Equal(t, 300, len(title))

	o := New(&fakeProcessor{records: map[string]shared.TrackRecord{
		"long.mp3": {Artist: "Artist", Album: "Album", Title: title, TrackNumber: 7},
	}}, nil, nil, nil)

	result, err := o.Organize(context.Background(), src, dest, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Copied)
	assert.FileExists(t, filepath.Join(dest, "Artist", "Album", "07 - Abcdefghijklmnopqrst...VWXYZ.mp3"))
}

type warningLog struct {
	shared.NopLogger
	warnings []string
}

func (w *warningLog) Warning(message string, args ...interface{}) {
	w.warnings = append(w.warnings, fmt.Sprintf(message, args...))
}

func TestOrganizeWarnsWhenPathStaysTooLong(t *testing.T) {
	src := t.TempDir()
	writeFiles(t, src, "short.mp3", "fine.mp3")
	dest := filepath.Join(t.TempDir(), strings.Repeat("d", 120), strings.Repeat("e", 120))

	logger := &warningLog{}
	o := New(&fakeProcessor{records: map[string]shared.TrackRecord{
		"short.mp3": {Artist: "Artist", Album: "Album", Title: "Hi", TrackNumber: 1},
	}}, nil, logger, nil)

	result, err := o.Organize(context.Background(), src, dest, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Copied)
	require.Len(t, logger.warnings, 2)
	assert.Contains(t, strings.Join(logger.warnings, "\n"), filepath.Join("Artist", "Album", "01 - Hi.mp3"))
}

func TestTrackPathFits(t *testing.T) {
	used := map[string]bool{}
	dest, fits := trackPath("/music/A/B", shared.TrackRecord{SourcePath: "x.mp3", Title: "Hi", TrackNumber: 1}, 1, used)
	assert.True(t, fits)
	assert.Equal(t, filepath.Join("/music/A/B", "01 - Hi.mp3"), dest)

	deep := "/" + strings.Repeat("x", 250)
	_, fits = trackPath(deep, shared.TrackRecord{SourcePath: "x.mp3", Title: strings.Repeat("t", 40), TrackNumber: 2}, 2, used)
	assert.False(t, fits)
}

func TestOrganizeSuffixesCollidingNames(t *testing.T) {
	src := t.TempDir()
	writeFiles(t, src, "one.mp3", "two.mp3")
	dest := t.TempDir()

	o := New(&fakeProcessor{records: map[string]shared.TrackRecord{
		"one.mp3": {Artist: "A", Album: "B", Title: "Same", TrackNumber: 2},
		"two.mp3": {Artist: "A", Album: "B", Title: "Same", TrackNumber: 2},
	}}, nil, nil, nil)

	result, err := o.Organize(context.Background(), src, dest, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Copied)
	assert.FileExists(t, filepath.Join(dest, "A", "B", "02 - Same.mp3"))
	assert.FileExists(t, filepath.Join(dest, "A", "B", "02 - Same (2).mp3"))
}

func TestOrganizeWritesFirstCoverAndReportsUnknown(t *testing.T) {
	src := t.TempDir()
	writeFiles(t, src, "1.mp3", "2.mp3", "3.mp3")
	dest := t.TempDir()

	warnings := shared.NewWarningCollector(true)
	o := New(&fakeProcessor{
		records: map[string]shared.TrackRecord{
			"1.mp3": {Artist: "A", Album: "B", Title: "One", TrackNumber: 1},
			"2.mp3": {Artist: "A", Album: "B", Title: "Two", TrackNumber: 2, AlbumArt: []byte("second")},
			"3.mp3": {Artist: "A", Album: "B", Title: "Three", TrackNumber: 3, AlbumArt: []byte("third")},
		},
		incomplete: map[string]bool{"1.mp3": true},
	}, nil, nil, warnings)

	result, err := o.Organize(context.Background(), src, dest, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"1.mp3"}, result.Unknown)

	cover, err := os.ReadFile(filepath.Join(dest, "A", "B", coverFileName))
	require.NoError(t, err)
	assert.Equal(t, "second", string(cover))
}

func TestOrganizeSkipsFailedCopies(t *testing.T) {
	dest := t.TempDir()
	library := NewLibrary()
	library.Add(shared.TrackRecord{SourcePath: filepath.Join(dest, "missing.mp3"), Artist: "A", Album: "B", Title: "Gone", TrackNumber: 1})

	src := t.TempDir()
	writeFiles(t, src, "ok.mp3")
	library.Add(shared.TrackRecord{SourcePath: filepath.Join(src, "ok.mp3"), Artist: "A", Album: "B", Title: "Here", TrackNumber: 2})

	warnings := shared.NewWarningCollector(true)
	o := New(&fakeProcessor{}, nil, nil, warnings)
	result, err := o.Materialize(context.Background(), library, dest, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Copied)
	assert.Len(t, result.Failed, 1)
	assert.Equal(t, 1, warnings.GetWarningCount())
	assert.FileExists(t, filepath.Join(dest, "A", "B", "02 - Here.mp3"))
}

func TestOrganizeCancelAfterTwoAlbums(t *testing.T) {
	src := t.TempDir()
	writeFiles(t, src, "a1.mp3", "a2.mp3", "b1.mp3", "b2.mp3", "c1.mp3", "c2.mp3")
	dest := t.TempDir()

	records := map[string]shared.TrackRecord{}
	for _, album := range []string{"a", "b", "c"} {
		for _, n := range []string{"1", "2"} {
			records[album+n+".mp3"] = shared.TrackRecord{Artist: "Artist", Album: "Album " + album, Title: "T" + n}
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	progress := func(current, total int, stage string) {
		if stage == shared.StageOrganizing && current == 4 {
			cancel()
		}
	}

	o := New(&fakeProcessor{records: records}, nil, nil, nil)
	result, err := o.Organize(ctx, src, dest, progress)
	require.ErrorIs(t, err, shared.ErrCancelled)
	assert.Equal(t, 2, result.Albums)
	assert.Equal(t, 4, result.Copied)
	assert.DirExists(t, filepath.Join(dest, "Artist", "Album a"))
	assert.DirExists(t, filepath.Join(dest, "Artist", "Album b"))
	assert.NoDirExists(t, filepath.Join(dest, "Artist", "Album c"))
}

func TestAnalyzeCancelled(t *testing.T) {
	src := t.TempDir()
	writeFiles(t, src, "a.mp3")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := New(&fakeProcessor{}, nil, nil, nil).Analyze(ctx, src, filepath.Join(src, "out"), nil)
	assert.ErrorIs(t, err, shared.ErrCancelled)
}

func TestAnalyzeMissingSource(t *testing.T) {
	_, _, err := New(&fakeProcessor{}, nil, nil, nil).Analyze(context.Background(), filepath.Join(t.TempDir(), "nope"), t.TempDir(), nil)
	assert.Error(t, err)
}
