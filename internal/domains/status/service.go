package status

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/minthotspot/hotspot-agent/internal/constants"
	"github.com/minthotspot/hotspot-agent/internal/entities"
)

// Service publishes state transitions to the status file the GUI
// collaborator polls. Write failures are logged, never propagated:
// losing a notification must not affect the hotspot itself.
type Service struct {
	filePath string
}

func NewService(filePath string) *Service {
	return &Service{
		filePath: filePath,
	}
}

func (s *Service) PublishActive(message string) {
	s.write(entities.StatusUpdate{
		Timestamp: float64(time.Now().UnixMilli()) / 1000,
		Status:    entities.StatusActive,
		Message:   message,
	})
}

func (s *Service) PublishError(message string) {
	s.write(entities.StatusUpdate{
		Timestamp: float64(time.Now().UnixMilli()) / 1000,
		Status:    entities.StatusError,
		Message:   message,
		IsError:   true,
	})
}

func (s *Service) write(update entities.StatusUpdate) {
	data, err := json.Marshal(update)
	if err != nil {
		log.Error().Err(err).Msg("write: marshal status error")
		return
	}

	if err = os.WriteFile(s.filePath, data, constants.LogFilePerm); err != nil {
		log.Error().Err(err).Msgf("write: status file %s write error", s.filePath)
	}
}
