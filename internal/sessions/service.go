// Package sessions creates voice-chat sessions and admits Riot accounts into them.
package sessions

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/riftvoice/backend/config"
	"github.com/riftvoice/backend/internal/models"
	"github.com/riftvoice/backend/internal/realtime"
	"github.com/riftvoice/backend/internal/riot"
)

var (
	// ErrInvalidSessionID is returned for ids that cannot be used as store keys.
	ErrInvalidSessionID = errors.New("invalid session id")
	// ErrInvalidIcon is returned when a caller-supplied icon is not an absolute http(s) URL.
	ErrInvalidIcon = errors.New("iconUrl must be an absolute http(s) URL")
)

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// IdentityResolver verifies a Riot handle. *riot.Client and riot.Passthrough implement it.
type IdentityResolver interface {
	Resolve(ctx context.Context, handle string) (riot.Identity, error)
}

// JoinRequest is the body of POST /sessions/:id/join.
type JoinRequest struct {
	SummonerID string `json:"summonerId" binding:"required"`
	IconURL    string `json:"iconUrl" binding:"omitempty,url"`
}

// JoinResult is returned to a joining user.
type JoinResult struct {
	Session  *models.Session     `json:"session"`
	Realtime realtime.Credential `json:"realtime"`
}

// Service orchestrates sessions across the store, the identity verifier and
// the meeting broker. It keeps no state between calls.
//
// Concurrent first joins for the same unseen session id are not serialized:
// each may create its own meeting, the last session write wins and the other
// meeting is orphaned. The store offers no multi-key transaction to prevent it.
type Service struct {
	repo     *Repository
	broker   realtime.Broker
	identity IdentityResolver
	rejoin   string
	logger   *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewService wires a session service.
func NewService(repo *Repository, broker realtime.Broker, identity IdentityResolver, cfg config.SessionsConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	rejoin := cfg.RejoinPolicy
	if rejoin == "" {
		rejoin = config.RejoinAppend
	}
	return &Service{
		repo:     repo,
		broker:   broker,
		identity: identity,
		rejoin:   rejoin,
		logger:   logger.With(zap.String("component", "sessions"), zap.String("broker", broker.Mode())),
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
}

// Create mints a meeting and stores an empty session for it. Nothing is
// stored when the meeting cannot be created. An existing session is
// returned unchanged: its meeting is never replaced.
func (s *Service) Create(ctx context.Context, sessionID string) (*models.Session, error) {
	if sessionID == "" {
		sessionID = s.newID()
	} else {
		if !sessionIDPattern.MatchString(sessionID) {
			return nil, ErrInvalidSessionID
		}
		existing, err := s.repo.GetSession(ctx, sessionID)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, ErrSessionNotFound) {
			s.logger.Error("read session failed", zap.Error(err), zap.String("session_id", sessionID))
			return nil, fmt.Errorf("read session: %w", err)
		}
	}
	session, err := s.createSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("session created", zap.String("session_id", session.SessionID), zap.String("meeting_id", session.MeetingID))
	return session, nil
}

// Get returns a stored session.
func (s *Service) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	if !sessionIDPattern.MatchString(sessionID) {
		return nil, ErrInvalidSessionID
	}
	return s.repo.GetSession(ctx, sessionID)
}

// LookupBySummoner returns the session and meeting a handle last joined.
func (s *Service) LookupBySummoner(ctx context.Context, handle string) (*models.Mapping, error) {
	h, err := riot.ParseHandle(handle)
	if err != nil {
		return nil, err
	}
	return s.repo.GetMapping(ctx, h.Normalized())
}

// Join verifies the handle, makes sure the session and its meeting exist,
// and issues a participant credential. An unseen session id is created on
// the fly.
func (s *Service) Join(ctx context.Context, sessionID string, req JoinRequest) (*JoinResult, error) {
	if !sessionIDPattern.MatchString(sessionID) {
		return nil, ErrInvalidSessionID
	}
	log := s.logger.With(zap.String("session_id", sessionID), zap.String("summoner_id", req.SummonerID))

	identity, err := s.identify(ctx, req)
	if err != nil {
		if !errors.Is(err, riot.ErrInvalidHandle) && !errors.Is(err, riot.ErrNotFound) && !errors.Is(err, ErrInvalidIcon) {
			log.Error("identity verification failed", zap.Error(err))
		}
		return nil, err
	}

	session, fresh, err := s.loadOrCreate(ctx, sessionID, log)
	if err != nil {
		return nil, err
	}

	customID := identity.PUUID
	if customID == "" {
		customID = identity.Handle.Normalized()
	}
	cred, err := s.broker.AddParticipant(ctx, session.MeetingID, realtime.Participant{Name: req.SummonerID, CustomID: customID})
	if err != nil {
		// A freshly created session stays stored: its meeting exists with no participant yet.
		log.Error("participant credential failed", zap.Error(err),
			zap.String("meeting_id", session.MeetingID), zap.Bool("fresh_session", fresh))
		return nil, fmt.Errorf("add participant: %w", err)
	}

	s.addUser(session, models.User{
		SummonerID: identity.Handle.String(),
		PUUID:      identity.PUUID,
		IconURL:    identity.IconURL,
		JoinedAt:   s.now().UnixMilli(),
	})
	if err := s.repo.PutSession(ctx, session); err != nil {
		log.Error("persist session failed", zap.Error(err), zap.String("meeting_id", session.MeetingID))
		return nil, fmt.Errorf("persist session: %w", err)
	}
	s.bindMapping(ctx, sessionID, session, log)
	s.bindMapping(ctx, identity.Handle.Normalized(), session, log)

	log.Info("user joined", zap.String("meeting_id", session.MeetingID), zap.Int("users", len(session.Users)))
	return &JoinResult{Session: session, Realtime: cred}, nil
}

// identify trusts a caller-supplied icon verbatim and otherwise resolves the
// handle through the identity verifier.
func (s *Service) identify(ctx context.Context, req JoinRequest) (riot.Identity, error) {
	h, err := riot.ParseHandle(req.SummonerID)
	if err != nil {
		return riot.Identity{}, err
	}
	if req.IconURL != "" {
		if !isAbsoluteHTTPURL(req.IconURL) {
			return riot.Identity{}, ErrInvalidIcon
		}
		return riot.Identity{Handle: h, IconURL: req.IconURL}, nil
	}
	identity, err := s.identity.Resolve(ctx, req.SummonerID)
	if err != nil {
		return riot.Identity{}, err
	}
	identity.Handle = h
	return identity, nil
}

// loadOrCreate reads the session bound to sessionID, creating it when absent.
// A mapping without its session is a stale index entry, not a failure.
func (s *Service) loadOrCreate(ctx context.Context, sessionID string, log *zap.Logger) (*models.Session, bool, error) {
	mapping, err := s.repo.GetMapping(ctx, sessionID)
	if err != nil && !errors.Is(err, ErrMappingNotFound) {
		log.Error("read mapping failed", zap.Error(err))
		return nil, false, fmt.Errorf("read mapping: %w", err)
	}

	session, err := s.repo.GetSession(ctx, sessionID)
	switch {
	case err == nil:
		if mapping != nil && mapping.MeetingID != session.MeetingID {
			log.Warn("mapping disagrees with session, using session meeting",
				zap.String("mapping_meeting_id", mapping.MeetingID), zap.String("meeting_id", session.MeetingID))
		}
		return session, false, nil
	case errors.Is(err, ErrSessionNotFound):
		if mapping != nil {
			log.Warn("stale mapping without session, recreating", zap.String("mapping_meeting_id", mapping.MeetingID))
		}
	default:
		log.Error("read session failed", zap.Error(err))
		return nil, false, fmt.Errorf("read session: %w", err)
	}

	session, err = s.createSession(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}
	log.Info("session created on join", zap.String("meeting_id", session.MeetingID))
	return session, true, nil
}

func (s *Service) createSession(ctx context.Context, sessionID string) (*models.Session, error) {
	meeting, err := s.broker.CreateMeeting(ctx, sessionID)
	if err != nil {
		s.logger.Error("create meeting failed", zap.Error(err), zap.String("session_id", sessionID))
		return nil, fmt.Errorf("create meeting: %w", err)
	}
	session := &models.Session{
		SessionID: sessionID,
		MeetingID: meeting.ID,
		Users:     []models.User{},
		CreatedAt: s.now().UnixMilli(),
	}
	if err := s.repo.PutSession(ctx, session); err != nil {
		s.logger.Error("persist session failed, meeting orphaned", zap.Error(err),
			zap.String("session_id", sessionID), zap.String("meeting_id", meeting.ID))
		return nil, fmt.Errorf("persist session: %w", err)
	}
	return session, nil
}

func (s *Service) addUser(session *models.Session, u models.User) {
	if s.rejoin == config.RejoinReplace {
		for i, existing := range session.Users {
			if sameHandle(existing.SummonerID, u.SummonerID) {
				session.Users[i] = u
				return
			}
		}
	}
	session.Users = append(session.Users, u)
}

// bindMapping points key at the session's meeting unless it already does.
// The session record is authoritative, so a failed mapping write is logged
// and the join still succeeds.
func (s *Service) bindMapping(ctx context.Context, key string, session *models.Session, log *zap.Logger) {
	current, err := s.repo.GetMapping(ctx, key)
	if err == nil && current.MeetingID == session.MeetingID && current.SessionID == session.SessionID {
		return
	}
	m := &models.Mapping{MeetingID: session.MeetingID, SessionID: session.SessionID, UpdatedAt: s.now().UnixMilli()}
	if err := s.repo.PutMapping(ctx, key, m); err != nil {
		log.Warn("persist mapping failed", zap.Error(err), zap.String("key", GameKey(key)))
	}
}

func sameHandle(a, b string) bool {
	ha, errA := riot.ParseHandle(a)
	hb, errB := riot.ParseHandle(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return ha.Normalized() == hb.Normalized()
}

func isAbsoluteHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
