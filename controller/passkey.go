package controller

import (
	"errors"

	"shrnq/config"
	"shrnq/domain"
	"shrnq/dtos/request"
	"shrnq/dtos/response"
	"shrnq/middleware"
	"shrnq/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"go.uber.org/zap"
)

// SessionCeremonyKey holds the id of the challenge issued to this browser.
const SessionCeremonyKey = "webauthn_ceremony"

type IPasskeyController interface {
	LoginOptions(c *fiber.Ctx) error
	Login(c *fiber.Ctx) error
	Logout(c *fiber.Ctx) error
}

type PasskeyController struct {
	service  services.IPasskeyService
	sessions *session.Store
	webAuthn config.WebAuthn
	logger   *zap.Logger
}

func NewPasskeyController(service services.IPasskeyService, sessions *session.Store, webAuthn config.WebAuthn, logger *zap.Logger) IPasskeyController {
	return &PasskeyController{service: service, sessions: sessions, webAuthn: webAuthn, logger: logger}
}

func (pc *PasskeyController) LoginOptions(c *fiber.Ctx) error {
	query, ok := middleware.Query[request.LoginOptionsRequest](c)
	if !ok {
		return fiber.ErrBadRequest
	}
	currentUser, _ := c.Locals(middleware.LocalsUser).(*domain.User)

	options, ceremonyID, err := pc.service.GenerateChallenge(c.UserContext(), services.ChallengeInput{
		RelyingParty: relyingParty(c, pc.webAuthn),
		Username:     query.Username,
		CurrentUser:  currentUser,
	})
	if err != nil {
		pc.logger.Error("generate challenge", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(response.ErrorResponse{
			Status: response.StatusError,
			Error:  genericErrorMessage,
		})
	}

	sess, err := pc.sessions.Get(c)
	if err != nil {
		return err
	}
	sess.Set(SessionCeremonyKey, ceremonyID)
	if err := sess.Save(); err != nil {
		return err
	}
	options.CSRF, _ = c.Locals(middleware.CSRFContextKey).(string)
	return c.JSON(options)
}

func (pc *PasskeyController) Login(c *fiber.Ctx) error {
	body, ok := middleware.Body[request.LoginRequest](c)
	if !ok {
		return fiber.ErrBadRequest
	}

	sess, err := pc.sessions.Get(c)
	if err != nil {
		return err
	}
	ceremonyID, _ := sess.Get(SessionCeremonyKey).(string)

	user, err := pc.service.FinishCeremony(c.UserContext(), services.FinishInput{
		CeremonyID: ceremonyID,
		Intent:     body.Intent,
		Username:   body.Username,
		Response:   []byte(body.Response),
	})
	if err != nil {
		status := errorStatus(err)
		if status >= fiber.StatusInternalServerError {
			pc.logger.Error("passkey ceremony", zap.String("intent", body.Intent), zap.Error(err))
		} else if errors.Is(err, services.ErrClonedAuthenticator) || errors.Is(err, services.ErrCeremonyFailed) {
			pc.logger.Warn("passkey ceremony rejected", zap.String("intent", body.Intent), zap.Error(err))
		}
		return c.Status(status).JSON(response.LoginError{
			Error: response.LoginErrorMessage{Message: errorMessage(err)},
		})
	}

	// A fresh session id on privilege change.
	if err := sess.Regenerate(); err != nil {
		return err
	}
	sess.Delete(SessionCeremonyKey)
	sess.Set(middleware.SessionUserKey, user.ID)
	if err := sess.Save(); err != nil {
		return err
	}
	return c.Redirect("/", fiber.StatusFound)
}

func (pc *PasskeyController) Logout(c *fiber.Ctx) error {
	sess, err := pc.sessions.Get(c)
	if err != nil {
		return err
	}
	if err := sess.Destroy(); err != nil {
		return err
	}
	return c.Redirect("/", fiber.StatusFound)
}
