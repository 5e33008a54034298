package sessions

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/riftvoice/backend/internal/models"
	"github.com/riftvoice/backend/internal/realtime"
	"github.com/riftvoice/backend/pkg/httpx"
)

func newTestRouter(t *testing.T, f *fixture, guard ...gin.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(f.svc, zaptest.NewLogger(t)).Register(r.Group("/api"), guard...)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func TestHandler_CreateMock(t *testing.T) {
	f := newFixture(t, realtime.MockBroker{}, "")
	r := newTestRouter(t, f)

	w := do(r, http.MethodPost, "/api/sessions", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var s models.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &s))
	assert.Equal(t, "mock-meeting-id", s.MeetingID)
	assert.NotEmpty(t, s.SessionID)
	assert.Contains(t, w.Body.String(), `"users":[]`)
}

func TestHandler_CreateWithID(t *testing.T) {
	f := newFixture(t, realtime.MockBroker{}, "")
	r := newTestRouter(t, f)

	w := do(r, http.MethodPost, "/api/sessions", `{"sessionId":"lobby-1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"sessionId":"lobby-1"`)

	w = do(r, http.MethodPost, "/api/sessions", `{"sessionId":"bad id"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/api/sessions", `{"sessionId":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_CreateExistingID(t *testing.T) {
	f := newFixture(t, &seqBroker{}, "")
	r := newTestRouter(t, f)

	w := do(r, http.MethodPost, "/api/sessions", `{"sessionId":"lobby-42"}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = do(r, http.MethodPost, "/api/sessions/lobby-42/join", `{"summonerId":"user-1#JP1"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodPost, "/api/sessions", `{"sessionId":"lobby-42"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var s models.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &s))
	assert.Equal(t, "meeting-1", s.MeetingID)
	assert.Len(t, s.Users, 1)
	assert.Len(t, f.broker.titles, 1)
}

func TestHandler_CreateBrokerFailure(t *testing.T) {
	f := newFixture(t, &seqBroker{}, "")
	f.broker.meetingErr = &httpx.UpstreamError{Op: "create meeting", Status: 401}
	r := newTestRouter(t, f)

	w := do(r, http.MethodPost, "/api/sessions", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.NotEmpty(t, body.Error)
}

func TestHandler_CreateStoreFailure(t *testing.T) {
	f := newFixture(t, realtime.MockBroker{}, "")
	f.store.failPrefixes = []string{"session:"}
	r := newTestRouter(t, f)

	w := do(r, http.MethodPost, "/api/sessions", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandler_JoinUnknownSummoner(t *testing.T) {
	f := newFixture(t, realtime.MockBroker{}, "")
	r := newTestRouter(t, f)

	w := do(r, http.MethodPost, "/api/sessions/game-1/join", `{"summonerId":"invalid#tag"}`)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Summoner not found")
}

func TestHandler_JoinMalformedHandle(t *testing.T) {
	f := newFixture(t, realtime.MockBroker{}, "")
	r := newTestRouter(t, f)

	w := do(r, http.MethodPost, "/api/sessions/game-1/join", `{"summonerId":"no-tag"}`)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Summoner not found")
}

func TestHandler_JoinExistingSession(t *testing.T) {
	f := newFixture(t, realtime.MockBroker{}, "")
	f.seed(t, "test-game-1", realtime.MockMeetingID)
	r := newTestRouter(t, f)

	w := do(r, http.MethodPost, "/api/sessions/test-game-1/join", `{"summonerId":"user-1#JP1"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res struct {
		Session  models.Session `json:"session"`
		Realtime struct {
			Token string `json:"token"`
		} `json:"realtime"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Len(t, res.Session.Users, 1)
	assert.True(t, strings.HasSuffix(res.Session.Users[0].IconURL, "/profileicon/1234.png"))
	assert.Equal(t, "mock-token", res.Realtime.Token)
}

func TestHandler_JoinBadBody(t *testing.T) {
	f := newFixture(t, realtime.MockBroker{}, "")
	r := newTestRouter(t, f)

	for _, body := range []string{`{}`, `not json`, `{"summonerId":"A#1","iconUrl":"not a url"}`} {
		w := do(r, http.MethodPost, "/api/sessions/g/join", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
	assert.Zero(t, f.identity.calls)
}

func TestHandler_JoinUpstreamFailure(t *testing.T) {
	f := newFixture(t, realtime.MockBroker{}, "")
	f.identity.err = &httpx.UpstreamError{Op: "riot account", Status: 503}
	r := newTestRouter(t, f)

	w := do(r, http.MethodPost, "/api/sessions/g/join", `{"summonerId":"A#1"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestHandler_GetAndLookup(t *testing.T) {
	f := newFixture(t, realtime.MockBroker{}, "")
	r := newTestRouter(t, f)

	w := do(r, http.MethodGet, "/api/sessions/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodPost, "/api/sessions/g/join", `{"summonerId":"Zed#EUW"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/api/sessions/g", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"summonerId":"Zed#EUW"`)

	w = do(r, http.MethodGet, "/api/summoners/session?summonerId=zed%23euw", "")
	require.Equal(t, http.StatusOK, w.Code)
	var m models.Mapping
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	assert.Equal(t, "g", m.SessionID)
	assert.Equal(t, realtime.MockMeetingID, m.MeetingID)

	w = do(r, http.MethodGet, "/api/summoners/session?summonerId=Other%23EUW", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_GuardRunsOnMutatingRoutes(t *testing.T) {
	f := newFixture(t, realtime.MockBroker{}, "")
	blocked := func(c *gin.Context) { c.AbortWithStatus(http.StatusTooManyRequests) }
	r := newTestRouter(t, f, blocked)

	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodPost, "/api/sessions", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodPost, "/api/sessions/g/join", `{"summonerId":"A#1"}`).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/sessions/g", "").Code)
}
