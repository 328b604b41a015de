// Package backup pushes snapshots of the planning database to a sink.
//
// The food bank historically copied the database file to shared remote
// storage after every change. Sink is the seam for that destination;
// DirectorySink is the local implementation with retention.
package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const (
	filePrefix = "planning-"
	fileSuffix = ".db"
)

var pushes = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "roster_backup_pushes_total",
		Help: "Database snapshots pushed to the backup sink, by result.",
	},
	[]string{"result"},
)

// Sink receives snapshot files.
type Sink interface {
	Push(ctx context.Context, name string, r io.Reader) error
}

// Snapshotter writes a consistent copy of the database to a new file.
type Snapshotter interface {
	Snapshot(ctx context.Context, path string) error
}

// =============================================================================
// DIRECTORY SINK
// =============================================================================

// DirectorySink stores snapshots in a local directory and keeps the newest Keep
// of them. Keep <= 0 keeps everything.
type DirectorySink struct {
	dir  string
	keep int
}

func NewDirectorySink(dir string, keep int) (*DirectorySink, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create backup directory %s: %w", dir, err)
	}
	return &DirectorySink{dir: dir, keep: keep}, nil
}

// Push writes r to name through a temp file and an atomic rename, then prunes.
func (s *DirectorySink) Push(ctx context.Context, name string, r io.Reader) error {
	if name != filepath.Base(name) {
		return fmt.Errorf("invalid backup name %q", name)
	}
	fullPath := filepath.Join(s.dir, name)
	tmpPath := fullPath + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write backup: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync backup: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close backup: %w", err)
	}
	if err := ctx.Err(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename backup: %w", err)
	}
	return s.prune()
}

// List returns the stored snapshot names, oldest first.
func (s *DirectorySink) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		n := e.Name()
		if e.Type().IsRegular() && strings.HasPrefix(n, filePrefix) && strings.HasSuffix(n, fileSuffix) {
			names = append(names, n)
		}
	}
	// names embed a fixed-width UTC timestamp
	sort.Strings(names)
	return names, nil
}

func (s *DirectorySink) prune() error {
	if s.keep <= 0 {
		return nil
	}
	names, err := s.List()
	if err != nil {
		return err
	}
	for len(names) > s.keep {
		if err := os.Remove(filepath.Join(s.dir, names[0])); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to prune backup %s: %w", names[0], err)
		}
		names = names[1:]
	}
	return nil
}

// =============================================================================
// PUSHER
// =============================================================================

// Pusher snapshots the database and hands the file to a sink.
type Pusher struct {
	Source Snapshotter
	Sink   Sink
	Logger *zap.Logger
	Now    func() time.Time
}

func NewPusher(source Snapshotter, sink Sink, logger *zap.Logger) *Pusher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pusher{Source: source, Sink: sink, Logger: logger, Now: time.Now}
}

// Name returns the snapshot file name for t.
func Name(t time.Time) string {
	return filePrefix + t.UTC().Format("20060102T150405.000Z") + fileSuffix
}

// Push takes one snapshot and pushes it. It returns the snapshot name.
func (p *Pusher) Push(ctx context.Context) (string, error) {
	name, err := p.push(ctx)
	if err != nil {
		pushes.WithLabelValues("failed").Inc()
		p.Logger.Error("backup push failed", zap.Error(err))
		return "", err
	}
	pushes.WithLabelValues("ok").Inc()
	p.Logger.Info("backup pushed", zap.String("name", name))
	return name, nil
}

func (p *Pusher) push(ctx context.Context) (string, error) {
	tmpDir, err := os.MkdirTemp("", "roster-snapshot-")
	if err != nil {
		return "", fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	name := Name(p.Now())
	path := filepath.Join(tmpDir, name)
	if err := p.Source.Snapshot(ctx, path); err != nil {
		return "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	if err := p.Sink.Push(ctx, name, f); err != nil {
		return "", err
	}
	return name, nil
}
