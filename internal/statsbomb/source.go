package statsbomb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/pable/go-fb-metrics/internal/model"
)

// ErrNotFound is returned when a competition, season or match has no data.
var ErrNotFound = errors.New("not found")

// Source supplies match metadata and raw event streams.
type Source interface {
	Competitions(ctx context.Context) ([]model.Competition, error)
	Matches(ctx context.Context, competitionID, seasonID int) ([]model.Match, error)
	Events(ctx context.Context, matchID int) ([]model.Event, error)
}

func competitionsPath() string { return "competitions.json" }

func matchesPath(competitionID, seasonID int) string {
	return fmt.Sprintf("matches/%d/%d.json", competitionID, seasonID)
}

func eventsPath(matchID int) string {
	return fmt.Sprintf("events/%d.json", matchID)
}

// opener fetches one open-data file by its path relative to the data root.
type opener interface {
	open(ctx context.Context, path string) (io.ReadCloser, error)
}

// reader implements Source on top of an opener.
type reader struct{ o opener }

func (r reader) Competitions(ctx context.Context) ([]model.Competition, error) {
	rc, err := r.o.open(ctx, competitionsPath())
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return DecodeCompetitions(rc)
}

func (r reader) Matches(ctx context.Context, competitionID, seasonID int) ([]model.Match, error) {
	rc, err := r.o.open(ctx, matchesPath(competitionID, seasonID))
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return DecodeMatches(rc)
}

func (r reader) Events(ctx context.Context, matchID int) ([]model.Event, error) {
	rc, err := r.o.open(ctx, eventsPath(matchID))
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return DecodeEvents(rc, matchID)
}

// DirSource reads a local open-data checkout rooted at the directory holding
// competitions.json. A missing file is also looked up with a .zst suffix.
type DirSource struct {
	reader
	Root string
}

func NewDirSource(root string) *DirSource {
	d := &DirSource{Root: root}
	d.reader = reader{o: d}
	return d
}

func (d *DirSource) open(_ context.Context, path string) (io.ReadCloser, error) {
	full := filepath.Join(d.Root, filepath.FromSlash(path))
	f, err := os.Open(full)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("open %s: %w", full, err)
	}

	zf, zerr := os.Open(full + ".zst")
	if errors.Is(zerr, fs.ErrNotExist) {
		return nil, fmt.Errorf("open %s: %w", full, ErrNotFound)
	}
	if zerr != nil {
		return nil, fmt.Errorf("open %s.zst: %w", full, zerr)
	}
	rc, err := newZstdReadCloser(zf)
	if err != nil {
		zf.Close()
		return nil, err
	}
	return rc, nil
}

// zstdReadCloser decompresses src and closes it when done.
type zstdReadCloser struct {
	dec *zstd.Decoder
	src io.Closer
}

func newZstdReadCloser(src io.ReadCloser) (*zstdReadCloser, error) {
	dec, err := zstd.NewReader(src)
	if err != nil {
		return nil, fmt.Errorf("zstd: %w", err)
	}
	return &zstdReadCloser{dec: dec, src: src}, nil
}

func (z *zstdReadCloser) Read(p []byte) (int, error) { return z.dec.Read(p) }

func (z *zstdReadCloser) Close() error {
	z.dec.Close()
	return z.src.Close()
}
