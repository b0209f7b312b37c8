package maintenance

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// DirSink writes snapshots to a local directory and keeps the newest Keep files.
type DirSink struct {
	dir    string
	keep   int
	logger zerolog.Logger
}

// NewDirSink creates a DirSink. keep <= 0 retains every snapshot.
func NewDirSink(dir string, keep int, logger zerolog.Logger) *DirSink {
	return &DirSink{
		dir:    dir,
		keep:   keep,
		logger: logger.With().Str("component", "snapshot_dir").Logger(),
	}
}

// Name returns the sink name.
func (d *DirSink) Name() string { return "dir" }

// Write stores data as dir/name and prunes old snapshots.
func (d *DirSink) Write(_ context.Context, name string, data []byte) error {
	if err := os.MkdirAll(d.dir, 0750); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(d.dir, "."+name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create snapshot temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, filepath.Join(d.dir, name)); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("install snapshot: %w", err)
	}

	d.prune()
	return nil
}

// List returns snapshot file names, oldest first.
func (d *DirSink) List() ([]string, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), SnapshotExt) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func (d *DirSink) prune() {
	if d.keep <= 0 {
		return
	}

	names, err := d.List()
	if err != nil {
		d.logger.Error().Err(err).Msg("failed to list snapshots for retention")
		return
	}

	for i := 0; i < len(names)-d.keep; i++ {
		path := filepath.Join(d.dir, names[i])
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			d.logger.Error().Err(err).Str("snapshot", names[i]).Msg("failed to delete old snapshot")
			continue
		}
		d.logger.Debug().Str("snapshot", names[i]).Msg("deleted old snapshot")
	}
}
