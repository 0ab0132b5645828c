package metadata

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-audio/wav"
	mflac "github.com/mewkiz/flac"
	"github.com/tcolgate/mp3"
	"github.com/tidwall/gjson"

	"meloburn/internal/shared"
)

// mp3Info walks every frame; bitrate comes from the first one
func mp3Info(path string, info *shared.AudioInfo) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	d := mp3.NewDecoder(bufio.NewReader(f))
	var (
		frame    mp3.Frame
		skipped  int
		duration time.Duration
		frames   int
	)
	for {
		if err := d.Decode(&frame, &skipped); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			if frames == 0 {
				return fmt.Errorf("no mp3 frames: %w", err)
			}
			break
		}
		if frames == 0 {
			header := frame.Header()
			info.Bitrate = int(header.BitRate()) / 1000
			info.SampleRate = int(header.SampleRate())
			info.Channels = 2
			if header.ChannelMode() == mp3.SingleChannel {
				info.Channels = 1
			}
		}
		duration += frame.Duration()
		frames++
	}
	if frames == 0 {
		return errors.New("no mp3 frames")
	}
	info.Duration = duration
	return nil
}

// flacInfo reads STREAMINFO and derives the average bitrate from the file size
func flacInfo(path string, info *shared.AudioInfo) error {
	stream, err := mflac.Open(path)
	if err != nil {
		return err
	}
	defer stream.Close()

	si := stream.Info
	info.SampleRate = int(si.SampleRate)
	info.Channels = int(si.NChannels)
	info.BitsPerSample = int(si.BitsPerSample)
	if si.SampleRate > 0 {
		info.Duration = time.Duration(si.NSamples) * time.Second / time.Duration(si.SampleRate)
	}
	if seconds := info.Duration.Seconds(); seconds > 0 && info.Size > 0 {
		info.Bitrate = int(float64(info.Size*8) / seconds / 1000)
	}
	return nil
}

func wavInfo(path string, info *shared.AudioInfo) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return errors.New("invalid wav file")
	}
	d.ReadInfo()
	info.SampleRate = int(d.SampleRate)
	info.Channels = int(d.NumChans)
	info.BitsPerSample = int(d.BitDepth)
	info.Bitrate = int(d.SampleRate) * int(d.NumChans) * int(d.BitDepth) / 1000
	if duration, err := d.Duration(); err == nil {
		info.Duration = duration
	}
	return nil
}

// ffprobeInfo fills whatever the native readers left empty
func ffprobeInfo(ctx context.Context, path string, info *shared.AudioInfo) error {
	cmd := exec.CommandContext(ctx, "ffprobe", "-v", "quiet", "-print_format", "json", "-show_format", "-show_streams", path)
	output, err := cmd.Output()
	if err != nil {
		return fmt.Errorf("ffprobe failed: %w", err)
	}
	if !gjson.ValidBytes(output) {
		return errors.New("ffprobe returned invalid JSON")
	}

	doc := gjson.ParseBytes(output)
	if info.Duration == 0 {
		if seconds := doc.Get("format.duration").Float(); seconds > 0 {
			info.Duration = time.Duration(seconds * float64(time.Second))
		}
	}
	if info.Bitrate == 0 {
		info.Bitrate = int(doc.Get("format.bit_rate").Int() / 1000)
	}

	stream := doc.Get(`streams.#(codec_type=="audio")`)
	if !stream.Exists() {
		return nil
	}
	if info.SampleRate == 0 {
		info.SampleRate = int(stream.Get("sample_rate").Int())
	}
	if info.Channels == 0 {
		info.Channels = int(stream.Get("channels").Int())
	}
	if info.BitsPerSample == 0 {
		if bits := stream.Get("bits_per_raw_sample").Int(); bits > 0 {
			info.BitsPerSample = int(bits)
		} else {
			info.BitsPerSample = int(stream.Get("bits_per_sample").Int())
		}
	}
	return nil
}

// Describe renders audio info as a short human readable line, e.g.
// "FLAC 44.1 kHz 16-bit stereo 3:45 1411 kbps 39 MB"
func Describe(info shared.AudioInfo) string {
	parts := []string{info.Format}
	if info.SampleRate > 0 {
		parts = append(parts, fmt.Sprintf("%s kHz", strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.1f", float64(info.SampleRate)/1000), "0"), ".")))
	}
	if info.BitsPerSample > 0 {
		parts = append(parts, fmt.Sprintf("%d-bit", info.BitsPerSample))
	}
	switch info.Channels {
	case 0:
	case 1:
		parts = append(parts, "mono")
	case 2:
		parts = append(parts, "stereo")
	default:
		parts = append(parts, fmt.Sprintf("%dch", info.Channels))
	}
	if info.Duration > 0 {
		total := int(info.Duration.Round(time.Second).Seconds())
		parts = append(parts, fmt.Sprintf("%d:%02d", total/60, total%60))
	}
	if info.Bitrate > 0 {
		parts = append(parts, fmt.Sprintf("%d kbps", info.Bitrate))
	}
	if info.Size > 0 {
		parts = append(parts, humanize.Bytes(uint64(info.Size)))
	}
	return strings.Join(parts, " ")
}
