package handler

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"medlink/config"
	"medlink/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleStateCookie = "medlink_oauth_state"

// GoogleOAuthHandler signs existing accounts in with Google. Accounts are never created
// here; registration needs a role and profile.
type GoogleOAuthHandler struct {
	cfg     *config.Config
	authSvc *service.AuthService
	audit   *Auditor
	log     *zap.Logger
}

func NewGoogleOAuthHandler(cfg *config.Config, authSvc *service.AuthService, audit *Auditor, log *zap.Logger) *GoogleOAuthHandler {
	return &GoogleOAuthHandler{cfg: cfg, authSvc: authSvc, audit: audit, log: log}
}

func (h *GoogleOAuthHandler) OAuth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.cfg.OAuth.GoogleClientID,
		ClientSecret: h.cfg.OAuth.GoogleClientSecret,
		RedirectURL:  h.cfg.OAuth.GoogleRedirectURL,
		Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
		Endpoint:     google.Endpoint,
	}
}

func (h *GoogleOAuthHandler) configured(c *gin.Context) bool {
	if h.cfg.OAuth.GoogleClientID == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Google OAuth not configured"})
		return false
	}
	return true
}

// Redirect sends the user to the Google consent screen.
func (h *GoogleOAuthHandler) Redirect(c *gin.Context) {
	if !h.configured(c) {
		return
	}
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		respondError(c, h.log, err)
		return
	}
	state := hex.EncodeToString(b)
	c.SetCookie(googleStateCookie, state, 600, "/", "", h.cfg.IsProduction(), true)
	c.Redirect(http.StatusFound, h.OAuth2Config().AuthCodeURL(state))
}

type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Callback exchanges the code, reads the verified email and returns a JWT for the
// matching account (404 when none exists).
func (h *GoogleOAuthHandler) Callback(c *gin.Context) {
	if !h.configured(c) {
		return
	}
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing code"})
		return
	}
	if state, err := c.Cookie(googleStateCookie); err != nil || state != c.Query("state") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid oauth state"})
		return
	}
	ctx := c.Request.Context()
	conf := h.OAuth2Config()
	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "exchange failed"})
		return
	}
	resp, err := conf.Client(ctx, tok).Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		h.log.Warn("google userinfo request failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to get user info"})
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to get user info"})
		return
	}
	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "invalid user info"})
		return
	}
	if info.Email == "" || !info.VerifiedEmail {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Google account email is not verified"})
		return
	}
	u, token, err := h.authSvc.LoginWithGoogle(info.Email, info.Picture)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.audit.Record(c, u.ID, "google_oauth_login", "auth", u.ID)
	c.JSON(http.StatusOK, gin.H{"user": u, "token": token})
}
