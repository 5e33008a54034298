package realtime

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/riftvoice/backend/config"
	"github.com/riftvoice/backend/pkg/httpx"
)

const (
	// DefaultBaseURL is the RealtimeKit REST v2 endpoint.
	DefaultBaseURL = "https://api.realtime.cloudflare.com/v2"
	// DefaultPreset is the participant preset used for group voice calls.
	DefaultPreset = "group_call_participant"
)

type envelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

type createMeetingRequest struct {
	Title string `json:"title"`
}

type meetingData struct {
	ID string `json:"id"`
}

type addParticipantRequest struct {
	Name                string `json:"name"`
	PresetName          string `json:"preset_name"`
	CustomParticipantID string `json:"custom_participant_id"`
}

type participantData struct {
	ID    string `json:"id"`
	Token string `json:"token"`
}

// LiveBroker talks to RealtimeKit over HTTP with org-id/api-key basic auth.
type LiveBroker struct {
	http    *http.Client
	baseURL string
	orgID   string
	apiKey  string
	appID   string
	preset  string
	logger  *zap.Logger
}

// NewLiveBroker creates a RealtimeKit client.
func NewLiveBroker(cfg config.RealtimeConfig, httpClient *http.Client, logger *zap.Logger) *LiveBroker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	preset := cfg.Preset
	if preset == "" {
		preset = DefaultPreset
	}
	return &LiveBroker{
		http:    httpClient,
		baseURL: strings.TrimRight(base, "/"),
		orgID:   cfg.OrgID,
		apiKey:  cfg.APIKey,
		appID:   cfg.AppID,
		preset:  preset,
		logger:  logger.With(zap.String("component", "realtime")),
	}
}

// CreateMeeting creates a meeting titled after the session it belongs to.
func (b *LiveBroker) CreateMeeting(ctx context.Context, title string) (Meeting, error) {
	var resp envelope[meetingData]
	err := b.post(ctx, "realtime.create_meeting", b.baseURL+"/meetings", createMeetingRequest{Title: title}, &resp)
	if err == nil && (!resp.Success || resp.Data.ID == "") {
		err = &httpx.UpstreamError{Op: "realtime.create_meeting", Err: errors.New("response missing meeting id")}
	}
	if err != nil {
		b.logger.Error("create meeting failed", zap.Error(err), zap.String("title", title))
		return Meeting{}, err
	}
	b.logger.Info("meeting created", zap.String("meeting_id", resp.Data.ID), zap.String("title", title))
	return Meeting{ID: resp.Data.ID}, nil
}

// AddParticipant registers a participant and returns their join token.
func (b *LiveBroker) AddParticipant(ctx context.Context, meetingID string, p Participant) (Credential, error) {
	endpoint := fmt.Sprintf("%s/meetings/%s/participants", b.baseURL, url.PathEscape(meetingID))
	customID := p.CustomID
	if customID == "" {
		customID = p.Name
	}
	body := addParticipantRequest{Name: p.Name, PresetName: b.preset, CustomParticipantID: customID}

	var resp envelope[participantData]
	err := b.post(ctx, "realtime.add_participant", endpoint, body, &resp)
	if err == nil && (!resp.Success || resp.Data.Token == "") {
		err = &httpx.UpstreamError{Op: "realtime.add_participant", Err: errors.New("response missing token")}
	}
	if err != nil {
		b.logger.Error("add participant failed", zap.Error(err),
			zap.String("meeting_id", meetingID), zap.String("summoner_id", p.Name))
		return Credential{}, err
	}
	return Credential{Token: resp.Data.Token, ParticipantID: resp.Data.ID, AppID: b.appID}, nil
}

// Mode reports ModeLive.
func (b *LiveBroker) Mode() string { return ModeLive }

func (b *LiveBroker) post(ctx context.Context, op, endpoint string, body, out any) error {
	return httpx.DoJSON(ctx, b.http, httpx.Request{
		Op:     op,
		Method: http.MethodPost,
		URL:    endpoint,
		Body:   body,
		Decorate: func(r *http.Request) {
			r.SetBasicAuth(b.orgID, b.apiKey)
		},
	}, out)
}
