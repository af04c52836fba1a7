package filestate

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/rs/zerolog/log"
)

// CLIState is what the interactive surface remembers between sessions.
type CLIState struct {
	Cluster  string `json:"cluster,omitempty"`
	Database string `json:"database,omitempty"`
}

type Manager interface {
	LoadState() (CLIState, error)
	SaveState(state CLIState) error
	GetStateFilePath() string
}

type fileStateManager struct {
	filePath string
	mu       sync.RWMutex
}

func NewManager(filePath string) Manager {
	return &fileStateManager{
		filePath: filePath,
	}
}

func (m *fileStateManager) LoadState() (CLIState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, err := os.ReadFile(m.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debug().Str("file", m.filePath).Msg("State file not found, starting fresh.")
			return CLIState{}, nil
		}
		log.Error().Err(err).Str("file", m.filePath).Msg("Failed to read state file")
		return CLIState{}, err
	}

	if len(data) == 0 {
		log.Warn().Str("file", m.filePath).Msg("State file is empty, starting fresh.")
		return CLIState{}, nil
	}
	var state CLIState
	if err := json.Unmarshal(data, &state); err != nil {
		log.Error().Err(err).Str("file", m.filePath).Msg("Failed to unmarshal state file")
		return CLIState{}, err
	}

	log.Debug().Str("file", m.filePath).Str("cluster", state.Cluster).Str("database", state.Database).Msg("Loaded CLI state")
	return state, nil
}

func (m *fileStateManager) SaveState(state CLIState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal state")
		return err
	}

	tempFilePath := m.filePath + ".tmp"
	if err := os.WriteFile(tempFilePath, data, 0644); err != nil {
		log.Error().Err(err).Str("file", tempFilePath).Msg("Failed to write temporary state file")
		return err
	}

	if err := os.Rename(tempFilePath, m.filePath); err != nil {
		log.Error().Err(err).Str("from", tempFilePath).Str("to", m.filePath).Msg("Failed to rename state file")
		_ = os.Remove(tempFilePath)
		return err
	}
	log.Debug().Str("file", m.filePath).Msg("Saved CLI state")
	return nil
}

func (m *fileStateManager) GetStateFilePath() string {
	return m.filePath
}
