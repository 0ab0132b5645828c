package metadata

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/dhowden/tag"
	"github.com/go-audio/wav"
	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"

	"meloburn/internal/shared"
)

func readID3(path string) (shared.RawTags, error) {
	t, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return shared.RawTags{}, err
	}
	defer t.Close()

	tags := shared.RawTags{
		Artist: strings.TrimSpace(t.Artist()),
		Album:  strings.TrimSpace(t.Album()),
		Title:  strings.TrimSpace(t.Title()),
		Date:   strings.TrimSpace(t.Year()),
		Genre:  strings.TrimSpace(t.Genre()),
	}
	if frame := t.GetTextFrame(t.CommonID("Track number/Position in set")); frame.Text != "" {
		tags.TrackNumber = shared.ParseTrackNumber(frame.Text)
	}
	for _, f := range t.GetFrames(t.CommonID("Attached picture")) {
		if pic, ok := f.(id3v2.PictureFrame); ok && len(pic.Picture) > 0 {
			tags.Picture = pic.Picture
			break
		}
	}
	return tags, nil
}

func readFLACTags(path string) (shared.RawTags, error) {
	f, err := flac.ParseFile(path)
	if err != nil {
		return shared.RawTags{}, err
	}

	var tags shared.RawTags
	for _, block := range f.Meta {
		switch block.Type {
		case flac.VorbisComment:
			cmt, err := flacvorbis.ParseFromMetaDataBlock(*block)
			if err != nil {
				return shared.RawTags{}, err
			}
			tags.Artist = firstComment(cmt, flacvorbis.FIELD_ARTIST)
			tags.Album = firstComment(cmt, flacvorbis.FIELD_ALBUM)
			tags.Title = firstComment(cmt, flacvorbis.FIELD_TITLE)
			tags.Date = firstComment(cmt, flacvorbis.FIELD_DATE)
			tags.Genre = firstComment(cmt, flacvorbis.FIELD_GENRE)
			tags.TrackNumber = shared.ParseTrackNumber(firstComment(cmt, flacvorbis.FIELD_TRACKNUMBER))
		case flac.Picture:
			if tags.Picture != nil {
				continue
			}
			pic, err := flacpicture.ParseFromMetaDataBlock(*block)
			if err == nil && len(pic.ImageData) > 0 {
				tags.Picture = pic.ImageData
			}
		}
	}
	return tags, nil
}

var errNoWAVTags = errors.New("no INFO chunk in wav file")

// readWAVTags reads the RIFF INFO list. Album is stored as the product (IPRD).
func readWAVTags(path string) (shared.RawTags, error) {
	f, err := os.Open(path)
	if err != nil {
		return shared.RawTags{}, err
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return shared.RawTags{}, errors.New("invalid wav file")
	}
	d.ReadMetadata()
	if err := d.Err(); err != nil {
		return shared.RawTags{}, err
	}
	if d.Metadata == nil {
		return shared.RawTags{}, errNoWAVTags
	}

	m := d.Metadata
	tags := shared.RawTags{
		Artist:      infoText(m.Artist),
		Album:       infoText(m.Product),
		Title:       infoText(m.Title),
		Date:        infoText(m.CreationDate),
		Genre:       infoText(m.Genre),
		TrackNumber: shared.ParseTrackNumber(infoText(m.TrackNbr)),
	}
	if tags.Artist == "" && tags.Album == "" && tags.Title == "" {
		return tags, errNoWAVTags
	}
	return tags, nil
}

// infoText strips the NUL padding RIFF strings carry
func infoText(s string) string {
	return strings.TrimSpace(strings.TrimRight(s, "\x00"))
}

func firstComment(cmt *flacvorbis.MetaDataBlockVorbisComment, field string) string {
	values, err := cmt.Get(field)
	if err != nil || len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}

// readGenericTags covers MP4 atoms, Ogg comments and ASF headers
func readGenericTags(path string) (shared.RawTags, error) {
	f, err := os.Open(path)
	if err != nil {
		return shared.RawTags{}, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return shared.RawTags{}, err
	}

	tags := shared.RawTags{
		Artist: strings.TrimSpace(m.Artist()),
		Album:  strings.TrimSpace(m.Album()),
		Title:  strings.TrimSpace(m.Title()),
		Genre:  strings.TrimSpace(m.Genre()),
	}
	if year := m.Year(); year > 0 {
		tags.Date = strconv.Itoa(year)
	}
	if track, _ := m.Track(); track > 0 {
		tags.TrackNumber = track
	}
	if pic := m.Picture(); pic != nil && len(pic.Data) > 0 {
		tags.Picture = pic.Data
	}
	return tags, nil
}
