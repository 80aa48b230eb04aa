package controllers

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/careloop/childcare-clinic/gcal"
	"github.com/careloop/childcare-clinic/redis"
	"github.com/careloop/childcare-clinic/utils"
)

const oauthStateTTL = 10 * time.Minute

func oauthStateKey(state string) string {
	return "oauth_state:" + state
}

func frontendURL() string {
	url := os.Getenv("FRONTEND_URL")
	if url == "" {
		url = "http://localhost:5173"
	}
	return url
}

// GetGoogleAuthURL returns the consent URL for the authenticated doctor.
// The state parameter correlates the callback back to this doctor, so the
// exchanged tokens land on the right record.
func GetGoogleAuthURL(c *fiber.Ctx) error {
	doctorID, _, ok := actorFromLocals(c)
	if !ok {
		return unauthenticated(c)
	}

	if !gcal.IsConfigured() {
		return utils.Respond(c, utils.External("Google OAuth not configured. Check your environment variables.", nil))
	}

	state := uuid.NewString()
	if err := redis.Client.Set(redis.Ctx, oauthStateKey(state), doctorID, oauthStateTTL).Err(); err != nil {
		return utils.Respond(c, utils.Internal("Failed to store authorization state", err))
	}

	// Offline access plus forced consent so a refresh token is issued.
	authURL := gcal.OAuthConfig().AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)

	return c.JSON(fiber.Map{
		"success": true,
		"authUrl": authURL,
	})
}

// HandleGoogleCallback exchanges the authorization code and persists the
// tokens for the doctor resolved from the state parameter. When the state
// cannot be resolved the tokens go to the shared fallback cache only, a
// documented degraded mode.
func HandleGoogleCallback(c *fiber.Ctx) error {
	code := c.Query("code")
	state := c.Query("state")

	if code == "" {
		log.Println("Google callback received without authorization code")
		return c.Redirect(frontendURL() + "/doctor/appointments?error=no_code")
	}

	token, err := gcal.OAuthConfig().Exchange(c.Context(), code)
	if err != nil {
		log.Printf("Failed to exchange authorization code: %v", err)
		return c.Redirect(frontendURL() + "/doctor/appointments?error=token_exchange_failed")
	}

	doctorID := resolveOAuthState(state)
	if doctorID != 0 {
		if err := gcal.Tokens.Store(c.Context(), doctorID, token); err != nil {
			log.Printf("Failed to store tokens for doctor %d: %v", doctorID, err)
			gcal.Tokens.StoreFallback(token)
		}
	} else {
		log.Println("OAuth state could not be resolved to a doctor, storing tokens in fallback cache")
		gcal.Tokens.StoreFallback(token)
	}

	return c.Redirect(frontendURL() + "/doctor/appointments?auth=success")
}

// GetOAuthStatus reports what credentials are stored for the doctor.
func GetOAuthStatus(c *fiber.Ctx) error {
	doctorID, _, ok := actorFromLocals(c)
	if !ok {
		return unauthenticated(c)
	}

	status, err := gcal.Tokens.Status(c.Context(), doctorID)
	if err != nil {
		return utils.Respond(c, utils.Internal("Error checking authorization status", err))
	}

	return c.JSON(fiber.Map{
		"success":         true,
		"isAuthorized":    status.HasTokens && !status.IsExpired,
		"hasValidTokens":  status.HasTokens && !status.IsExpired,
		"hasRefreshToken": status.HasRefreshToken,
		"isExpired":       status.IsExpired,
		"authSource":      status.Source,
		"lastUpdated":     status.LastUpdated,
	})
}

// resolveOAuthState maps a callback state value to the doctor who started
// the flow. Returns 0 when unknown or expired.
func resolveOAuthState(state string) uint {
	if state == "" {
		return 0
	}
	val, err := redis.Client.Get(redis.Ctx, oauthStateKey(state)).Result()
	if err != nil {
		return 0
	}
	redis.Client.Del(redis.Ctx, oauthStateKey(state))

	id, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		log.Printf("Invalid doctor id in oauth state: %v", err)
		return 0
	}
	fmt.Printf("OAuth state resolved to doctor %d\n", id)
	return uint(id)
}
