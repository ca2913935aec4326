package auth

import (
	"career-ebook-generator/internal/api"
	"career-ebook-generator/internal/database"
	"career-ebook-generator/internal/environment"
	"career-ebook-generator/internal/logging"
	"career-ebook-generator/internal/middlewares"
	"career-ebook-generator/internal/models"
	"errors"
	"github.com/gin-gonic/gin"
	"io"
	"net/http"
	"time"
)

// Api defines the session lifecycle endpoints.
//
// @Summary Session API
type Api interface {

	// StartSession issues the session cookie, creating a new empty session if needed.
	StartSession(c *gin.Context)

	// EndSession destroys the current session and its document.
	EndSession(c *gin.Context)
}

// Controller wires environment dependencies with session service methods.
type Controller struct {
	*environment.Env
	*AuthService

	SigningKey   []byte
	TokenTTL     time.Duration
	SecureCookie bool
}

// ensure Controller implements Api
var _ Api = &Controller{}

type startSessionPayload struct {
	Passcode string `mapstructure:"passcode"`
}

type sessionResponse struct {
	SessionId string `json:"sessionId"`
	Resumed   bool   `json:"resumed"`
}

// StartSession creates a session and sets the session cookie. A request that already
// carries a valid cookie for a live session resumes it instead.
//
// @ID startSession
// @Summary Start or resume a session
// @Tags session
// @Router /api/session [post]
// @Success 200 {object} api.RestJsonResponse{data=auth.sessionResponse}
// @Failure 401
// @Failure 500
func (ac *Controller) StartSession(c *gin.Context) {
	ctx := c.Request.Context()

	if sessionId := middlewares.SessionFromCookie(c, ac.SigningKey); len(sessionId) > 0 {
		var existing models.Session
		if err := ac.FindSession(ctx, sessionId, &existing); err == nil {
			if err := middlewares.RenewSessionCookie(c, ac.SigningKey, sessionId, ac.TokenTTL, ac.SecureCookie); err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponse("Error creating session token"))
				return
			}
			c.JSON(http.StatusOK, api.NewGenericResponse(api.Success, "", sessionResponse{SessionId: sessionId, Resumed: true}))
			return
		}
	}

	payload := startSessionPayload{}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		ac.LogErrorf(logging.GetLogType("session"), "Error reading session request: %v", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, api.NewErrorResponse("Error reading session request"))
		return
	}
	if len(body) > 0 {
		request := api.GenericRequest{}
		if err := request.Load(body); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, api.NewErrorResponsef("Error reading session request: %v", err))
			return
		}
		if err := request.DecodeDataTo(&payload); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, api.NewErrorResponsef("Error reading session request: %v", err))
			return
		}
	}

	if err := ac.VerifyPasscode(payload.Passcode); err != nil {
		ac.LogWarn(logging.GetLogType("session"), "rejected session start: wrong passcode")
		c.AbortWithStatusJSON(http.StatusUnauthorized, api.NewErrorResponse("Wrong passcode"))
		return
	}

	session, err := ac.AuthService.StartSession(ctx)
	if err != nil {
		ac.LogErrorf(logging.GetLogType("session"), "error creating session: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponsef("error creating session: %s", err))
		return
	}

	if err := middlewares.RenewSessionCookie(c, ac.SigningKey, session.ID, ac.TokenTTL, ac.SecureCookie); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponse("Error creating session token"))
		return
	}
	c.JSON(http.StatusOK, api.NewGenericResponse(api.Success, "", sessionResponse{SessionId: session.ID}))
}

// EndSession removes the session referenced by the cookie (if any) and clears the cookie.
//
// @ID endSession
// @Summary End the current session
// @Tags session
// @Router /api/session [delete]
// @Success 204
// @Failure 500
func (ac *Controller) EndSession(c *gin.Context) {
	sessionId := middlewares.SessionFromCookie(c, ac.SigningKey)
	if len(sessionId) > 0 {
		err := ac.AuthService.EndSession(c.Request.Context(), sessionId)
		if err != nil && !errors.Is(err, database.ErrSessionNotFound) {
			ac.LogErrorf(logging.GetLogTypeSession("session", sessionId), "error ending session: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponsef("error ending session: %s", err))
			return
		}
	}

	middlewares.ClearSessionCookie(c, ac.SecureCookie)
	c.Status(http.StatusNoContent)
}
