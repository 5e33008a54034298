// Package realtime brokers meetings and participant credentials on the
// RealtimeKit audio platform.
package realtime

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/riftvoice/backend/config"
)

// Broker modes.
const (
	ModeMock = "mock"
	ModeLive = "live"
)

// Meeting is a voice room on the audio platform.
type Meeting struct {
	ID string
}

// Participant describes who a credential is issued for.
type Participant struct {
	// Name is shown to other participants; the raw Riot handle.
	Name string
	// CustomID is the caller's stable id for the participant.
	CustomID string
}

// Credential is a single-use token binding one participant to one meeting.
// It is returned to the caller and never persisted.
type Credential struct {
	Token         string `json:"token"`
	ParticipantID string `json:"participantId,omitempty"`
	AppID         string `json:"appId,omitempty"`
}

// Broker creates meetings and participant credentials. Implementations are
// chosen once at startup; a session never moves between them.
type Broker interface {
	CreateMeeting(ctx context.Context, title string) (Meeting, error)
	AddParticipant(ctx context.Context, meetingID string, p Participant) (Credential, error)
	Mode() string
}

// New returns the mock broker when cfg.UseMock is set, otherwise a live
// RealtimeKit client.
func New(cfg config.RealtimeConfig, logger *zap.Logger) Broker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.UseMock {
		logger.Info("realtime broker in mock mode")
		return MockBroker{}
	}
	return NewLiveBroker(cfg, &http.Client{Timeout: cfg.HTTPTimeout}, logger)
}
