package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"reposter/internal/models"
	"reposter/internal/security"

	"github.com/sirupsen/logrus"
)

// Store persists the RunState as a single JSON document at a fixed path.
// The whole record is read once at the start of a run and written once at the
// end; there are no partial writes for a concurrent reader to observe.
type Store struct {
	path   string
	logger *logrus.Logger
}

func NewStore(path string, logger *logrus.Logger) (*Store, error) {
	if err := security.ValidateFilePath(path); err != nil {
		return nil, fmt.Errorf("invalid state path: %w", err)
	}
	return &Store{path: path, logger: logger}, nil
}

// Load reads the persisted state. A missing file yields the default state. A
// file that exists but does not parse is re-initialized as well, but through a
// distinct, observable branch: losing the rotation index and cursors is
// recoverable (duplicates at worst), while refusing to run is not.
func (s *Store) Load() (*models.RunState, error) {
	data, err := os.ReadFile(s.path) // #nosec G304 - Path validated in NewStore
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.WithField("path", s.path).Info("State file not found, starting from defaults")
			return models.NewRunState(), nil
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var st models.RunState
	if err := json.Unmarshal(data, &st); err != nil {
		s.logger.WithFields(logrus.Fields{
			"path": s.path,
		}).WithError(err).Warn("State file is corrupt, re-initializing")
		return models.NewRunState(), nil
	}

	if st.LastProcessedIndex < -1 {
		st.LastProcessedIndex = -1
	}
	if st.LastSentIDs == nil {
		st.LastSentIDs = make(map[string]int64)
	}

	return &st, nil
}

// Save writes the state atomically: marshal, write to a temp file in the same
// directory, rename over the target.
func (s *Store) Save(st *models.RunState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp state file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace state file: %w", err)
	}

	return nil
}
