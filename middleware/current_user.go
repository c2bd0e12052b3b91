package middleware

import (
	"shrnq/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"go.uber.org/zap"
)

const (
	SessionUserKey = "user_id"
	LocalsUser     = "user"
)

// CurrentUser loads the signed in user, if any, into c.Locals(LocalsUser).
// Anonymous requests pass through untouched.
func CurrentUser(store *session.Store, users repository.ICredentialStore, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			logger.Warn("could not load session", zap.Error(err))
			return c.Next()
		}

		userID, ok := sess.Get(SessionUserKey).(string)
		if !ok || userID == "" {
			return c.Next()
		}

		user, err := users.FindUserByID(c.UserContext(), userID)
		if err != nil {
			return err
		}
		if user == nil {
			// The account is gone; forget it.
			sess.Delete(SessionUserKey)
			if err := sess.Save(); err != nil {
				logger.Warn("could not save session", zap.Error(err))
			}
			return c.Next()
		}

		c.Locals(LocalsUser, user)
		return c.Next()
	}
}
