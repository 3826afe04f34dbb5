package entrylog

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/downfa11-org/go-bookie/util"
)

const lastIDFileName = "lastId"

// dirManager selects storage directories for new segments and keeps the
// per-directory lastId marker files up to date.
type dirManager struct {
	dirs []string
}

func newDirManager(dirs []string) (*dirManager, error) {
	if len(dirs) == 0 {
		return nil, fmt.Errorf("no ledger directories configured")
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create ledger directory %s: %w", dir, err)
		}
	}
	return &dirManager{dirs: dirs}, nil
}

func segmentFileName(logID int64) string {
	return strconv.FormatInt(logID, 16) + ".log"
}

// pickDir returns a directory for a new segment, chosen uniformly at random.
func (dm *dirManager) pickDir() string {
	return dm.dirs[rand.Intn(len(dm.dirs))]
}

// findFile locates the segment file for logID across all directories.
func (dm *dirManager) findFile(logID int64) (string, error) {
	name := segmentFileName(logID)
	for _, dir := range dm.dirs {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrLogNotFound, name)
}

// lastLogID reads the lastId marker of a directory. Returns -1 when the
// marker is missing or unparsable.
func (dm *dirManager) lastLogID(dir string) int64 {
	data, err := os.ReadFile(filepath.Join(dir, lastIDFileName))
	if err != nil {
		return -1
	}
	id, err := strconv.ParseInt(strings.TrimSpace(string(data)), 16, 64)
	if err != nil {
		util.Warn("unparsable lastId marker in %s: %v", dir, err)
		return -1
	}
	return id
}

// maxLastLogID returns the highest lastId recorded across all directories,
// or -1 when none is recorded.
func (dm *dirManager) maxLastLogID() int64 {
	max := int64(-1)
	for _, dir := range dm.dirs {
		if id := dm.lastLogID(dir); id > max {
			max = id
		}
	}
	return max
}

// setLastLogID rewrites the lastId marker of every directory. Each marker is
// written to a temp file and renamed into place so a reader never observes a
// half-written id.
func (dm *dirManager) setLastLogID(logID int64) error {
	line := strconv.FormatInt(logID, 16) + "\n"
	for _, dir := range dm.dirs {
		tmp := filepath.Join(dir, lastIDFileName+".tmp")
		if err := os.WriteFile(tmp, []byte(line), 0o644); err != nil {
			return fmt.Errorf("write lastId marker in %s: %w", dir, err)
		}
		if err := os.Rename(tmp, filepath.Join(dir, lastIDFileName)); err != nil {
			return fmt.Errorf("rename lastId marker in %s: %w", dir, err)
		}
	}
	return nil
}
