package sessions

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/riftvoice/backend/internal/riot"
	"github.com/riftvoice/backend/pkg/httpx"
	"github.com/riftvoice/backend/pkg/response"
)

const (
	msgSummonerNotFound = "Summoner not found"
	msgBadHandle        = "Summoner not found: expected Name#Tag"
	msgSessionNotFound  = "session not found"
	msgUpstream         = "upstream service unavailable, please retry"
	msgInternal         = "internal error"
)

// CreateRequest is the optional body for POST /sessions.
type CreateRequest struct {
	SessionID string `json:"sessionId"`
}

// Handler handles session HTTP endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a session handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the session routes on rg. guard runs before the routes that
// create meetings or credentials.
func (h *Handler) Register(rg *gin.RouterGroup, guard ...gin.HandlerFunc) {
	rg.POST("/sessions", append(guard, h.Create)...)
	rg.GET("/sessions/:id", h.Get)
	rg.POST("/sessions/:id/join", append(guard, h.Join)...)
	rg.GET("/summoners/session", h.LookupBySummoner)
}

// Create handles POST /sessions. The body is optional.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	session, err := h.svc.Create(c.Request.Context(), req.SessionID)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, session)
}

// Get handles GET /sessions/:id.
func (h *Handler) Get(c *gin.Context) {
	session, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, session)
}

// Join handles POST /sessions/:id/join.
func (h *Handler) Join(c *gin.Context) {
	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	result, err := h.svc.Join(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, result)
}

// LookupBySummoner handles GET /summoners/session?summonerId=Name%23Tag.
func (h *Handler) LookupBySummoner(c *gin.Context) {
	mapping, err := h.svc.LookupBySummoner(c.Request.Context(), c.Query("summonerId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, mapping)
}

// fail maps service errors onto status codes. Upstream and store failures
// are logged by the service with their correlating ids.
func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, riot.ErrInvalidHandle):
		response.NotFound(c, msgBadHandle)
	case errors.Is(err, riot.ErrNotFound):
		response.NotFound(c, msgSummonerNotFound)
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrMappingNotFound):
		response.NotFound(c, msgSessionNotFound)
	case errors.Is(err, ErrInvalidIcon), errors.Is(err, ErrInvalidSessionID):
		response.BadRequest(c, err.Error())
	case httpx.IsUpstream(err):
		response.BadGateway(c, msgUpstream)
	default:
		h.logger.Error("request failed", zap.Error(err), zap.String("path", c.FullPath()))
		response.Internal(c, msgInternal)
	}
}
