package realtime

import "context"

// Fixed values returned by MockBroker. The browser client recognizes
// MockToken and skips connecting to the platform.
const (
	MockMeetingID = "mock-meeting-id"
	MockToken     = "mock-token"
)

// MockBroker satisfies Broker without any network access. Every call succeeds.
type MockBroker struct{}

// CreateMeeting returns MockMeetingID for every title.
func (MockBroker) CreateMeeting(context.Context, string) (Meeting, error) {
	return Meeting{ID: MockMeetingID}, nil
}

// AddParticipant returns MockToken for every participant.
func (MockBroker) AddParticipant(context.Context, string, Participant) (Credential, error) {
	return Credential{Token: MockToken}, nil
}

// Mode reports ModeMock.
func (MockBroker) Mode() string { return ModeMock }
