package sessions

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/riftvoice/backend/internal/realtime"
	"github.com/riftvoice/backend/internal/riot"
	"github.com/riftvoice/backend/pkg/kv"
)

var errStoreDown = errors.New("store down")

// memStore is an in-memory kv.Store. Puts to keys with a prefix listed in
// failPrefixes fail.
type memStore struct {
	mu           sync.Mutex
	data         map[string][]byte
	failPrefixes []string
	failGets     bool
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGets {
		return nil, errStoreDown
	}
	v, ok := m.data[key]
	if !ok {
		return nil, kv.ErrAbsent
	}
	return append([]byte(nil), v...), nil
}

func (m *memStore) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.failPrefixes {
		if strings.HasPrefix(key, p) {
			return errStoreDown
		}
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *memStore) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

// recordingBroker wraps a broker and records the calls made through it.
type recordingBroker struct {
	inner          realtime.Broker
	mu             sync.Mutex
	titles         []string
	participants   []realtime.Participant
	meetingErr     error
	participantErr error
}

func (b *recordingBroker) CreateMeeting(ctx context.Context, title string) (realtime.Meeting, error) {
	b.mu.Lock()
	b.titles = append(b.titles, title)
	b.mu.Unlock()
	if b.meetingErr != nil {
		return realtime.Meeting{}, b.meetingErr
	}
	return b.inner.CreateMeeting(ctx, title)
}

func (b *recordingBroker) AddParticipant(ctx context.Context, meetingID string, p realtime.Participant) (realtime.Credential, error) {
	b.mu.Lock()
	b.participants = append(b.participants, p)
	b.mu.Unlock()
	if b.participantErr != nil {
		return realtime.Credential{}, b.participantErr
	}
	return b.inner.AddParticipant(ctx, meetingID, p)
}

func (b *recordingBroker) Mode() string { return b.inner.Mode() }

// stubIdentity verifies every well-formed handle except those whose name
// contains "invalid". Verified handles get icon 1234.
type stubIdentity struct {
	calls int
	err   error
}

func (s *stubIdentity) Resolve(_ context.Context, raw string) (riot.Identity, error) {
	s.calls++
	h, err := riot.ParseHandle(raw)
	if err != nil {
		return riot.Identity{}, err
	}
	if s.err != nil {
		return riot.Identity{}, s.err
	}
	if strings.Contains(strings.ToLower(h.Name), "invalid") {
		return riot.Identity{}, riot.ErrNotFound
	}
	return riot.Identity{
		Handle:  h,
		PUUID:   "puuid-" + h.Normalized(),
		IconID:  1234,
		IconURL: riot.IconURL(riot.DefaultDDragonVersion, 1234),
	}, nil
}
