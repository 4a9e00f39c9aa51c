// Package media resolves source descriptors (file paths, http(s) URLs,
// Base64 data URIs) into decoded audio streams. Load semantics and format
// decoding are delegated to the beep decoders; this layer only routes.
package media

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"

	"github.com/mixdesk/mixdesk/api"
	mixerrors "github.com/mixdesk/mixdesk/pkg/errors"
)

// SupportedFormats returns the list of supported audio file extensions.
func SupportedFormats() []string {
	return []string{".mp3", ".wav", ".flac"}
}

// IsSupported checks whether a file's format is supported.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}

// Load resolves a source descriptor and decodes it into a seekable stream.
// Metadata is read best-effort; a source without tags still loads.
func Load(source string) (beep.StreamSeekCloser, beep.Format, *api.TrackInfo, error) {
	rs, name, err := Resolve(source)
	if err != nil {
		return nil, beep.Format{}, nil, &mixerrors.SourceError{Source: source, Err: err}
	}

	info := readInfo(rs, source)
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		rs.Close()
		return nil, beep.Format{}, nil, &mixerrors.SourceError{Source: source, Err: err}
	}

	streamer, format, err := Decode(rs, name)
	if err != nil {
		rs.Close()
		return nil, beep.Format{}, nil, &mixerrors.SourceError{Source: source, Err: err}
	}
	if info.Title == "" {
		info.Title = filepath.Base(name)
	}
	info.Duration = format.SampleRate.D(streamer.Len())
	slog.Debug("source loaded", "source", name, "sample_rate", int(format.SampleRate))
	return streamer, format, info, nil
}

// Resolve turns a source descriptor into a seekable byte stream plus a
// name whose extension identifies the format.
func Resolve(source string) (io.ReadSeekCloser, string, error) {
	switch {
	case strings.HasPrefix(source, "data:"):
		return resolveDataURI(source)
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return resolveURL(source)
	default:
		f, err := os.Open(source)
		if err != nil {
			return nil, "", fmt.Errorf("open source: %w", err)
		}
		return f, source, nil
	}
}

// Decode dispatches to the beep decoder matching the name's extension.
func Decode(r io.ReadSeekCloser, name string) (beep.StreamSeekCloser, beep.Format, error) {
	ext := strings.ToLower(filepath.Ext(name))

	switch ext {
	case ".mp3":
		return mp3.Decode(r)
	case ".wav":
		return wav.Decode(r)
	case ".flac":
		return flac.Decode(r)
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %s", mixerrors.ErrUnsupportedSource, ext)
	}
}

// mimeExt maps data URI media types onto decoder extensions.
var mimeExt = map[string]string{
	"audio/mpeg":   ".mp3",
	"audio/mp3":    ".mp3",
	"audio/wav":    ".wav",
	"audio/x-wav":  ".wav",
	"audio/wave":   ".wav",
	"audio/flac":   ".flac",
	"audio/x-flac": ".flac",
}

// resolveDataURI decodes a data:<mime>;base64,<payload> descriptor into
// memory.
func resolveDataURI(source string) (io.ReadSeekCloser, string, error) {
	meta, payload, found := strings.Cut(strings.TrimPrefix(source, "data:"), ",")
	if !found {
		return nil, "", fmt.Errorf("%w: malformed data uri", mixerrors.ErrUnsupportedSource)
	}
	mime, _, _ := strings.Cut(meta, ";")
	if !strings.Contains(meta, "base64") {
		return nil, "", fmt.Errorf("%w: data uri without base64 payload", mixerrors.ErrUnsupportedSource)
	}
	ext, ok := mimeExt[mime]
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", mixerrors.ErrUnsupportedSource, mime)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decode base64 payload: %w", err)
	}
	return nopSeekCloser{bytes.NewReader(data)}, "inline" + ext, nil
}

// resolveURL fetches the source fully into memory so the decoders can
// seek in it.
func resolveURL(source string) (io.ReadSeekCloser, string, error) {
	resp, err := http.Get(source)
	if err != nil {
		return nil, "", fmt.Errorf("fetch source: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch source: unexpected status %s", resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read source body: %w", err)
	}
	return nopSeekCloser{bytes.NewReader(data)}, source, nil
}

// readInfo extracts embedded tags, if any. The reader position is
// unspecified afterwards.
func readInfo(rs io.ReadSeeker, source string) *api.TrackInfo {
	info := &api.TrackInfo{Source: source}
	meta, err := tag.ReadFrom(rs)
	if err != nil {
		return info
	}
	info.Title = meta.Title()
	info.Artist = meta.Artist()
	info.Album = meta.Album()
	return info
}

type nopSeekCloser struct {
	*bytes.Reader
}

func (nopSeekCloser) Close() error { return nil }
