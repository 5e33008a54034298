// Package auth runs the Riot Sign On authorization-code flow for the browser client.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/riftvoice/backend/config"
	"github.com/riftvoice/backend/pkg/response"
)

const defaultAuthBaseURL = "https://auth.riotgames.com"

// Scopes requested from Riot Sign On.
var Scopes = []string{"openid"}

// TokenResponse is returned to the browser after a successful exchange.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	IDToken     string `json:"id_token"`
}

// Handler handles auth HTTP endpoints. It holds no session state: tokens are
// handed to the caller and never stored.
type Handler struct {
	oauth  *oauth2.Config
	http   *http.Client
	logger *zap.Logger
}

// NewHandler creates an auth handler from the Riot client credentials.
func NewHandler(cfg config.RiotConfig, httpClient *http.Client, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	base := strings.TrimRight(cfg.AuthBaseURL, "/")
	if base == "" {
		base = defaultAuthBaseURL
	}
	return &Handler{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   base + "/authorize",
				TokenURL:  base + "/token",
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		http:   httpClient,
		logger: logger.With(zap.String("component", "auth")),
	}
}

// Register mounts the auth routes on rg.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/auth/login", h.Login)
	rg.GET("/auth/callback", h.Callback)
}

// Login handles GET /auth/login by redirecting to the Riot authorize page.
func (h *Handler) Login(c *gin.Context) {
	c.Redirect(http.StatusFound, h.oauth.AuthCodeURL(uuid.New().String()))
}

// Callback handles GET /auth/callback?code=. The code is exchanged for tokens
// which are returned verbatim.
func (h *Handler) Callback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		response.BadRequest(c, "missing code")
		return
	}

	ctx := context.WithValue(c.Request.Context(), oauth2.HTTPClient, h.http)
	tok, err := h.oauth.Exchange(ctx, code)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil && re.Response.StatusCode >= http.StatusBadRequest {
			h.logger.Warn("token exchange rejected", zap.Int("status", re.Response.StatusCode), zap.String("error_code", re.ErrorCode))
			response.Error(c, re.Response.StatusCode, "token exchange failed")
			return
		}
		h.logger.Error("token exchange failed", zap.Error(err))
		response.BadGateway(c, "token exchange failed")
		return
	}

	idToken, _ := tok.Extra("id_token").(string)
	if sub := subject(idToken); sub != "" {
		h.logger.Info("riot sign on completed", zap.String("sub", sub))
	}
	response.OK(c, TokenResponse{AccessToken: tok.AccessToken, IDToken: idToken})
}

// subject reads the sub claim of an id_token without verifying it. The value
// is only logged; the browser is the consumer of the token.
func subject(idToken string) string {
	if idToken == "" {
		return ""
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return ""
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}
