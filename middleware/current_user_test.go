package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"shrnq/domain"
	"shrnq/repository"
	"shrnq/repository/command_repository"
	"shrnq/repository/query_repository"
	"shrnq/repository/repository_test"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCurrentUser(t *testing.T) {
	db := repository_test.SetupSQLiteDB(t)
	users := repository.NewPasskeyStore(db, query_repository.NewUserQueryRepository(), command_repository.NewUserCommandRepository())
	_, err := users.CreateUser(context.Background(), &domain.User{ID: "abcdefghij", Username: "alice"})
	require.NoError(t, err)

	store := session.New()
	app := fiber.New()
	app.Get("/as/:id", func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return err
		}
		sess.Set(SessionUserKey, c.Params("id"))
		return sess.Save()
	})
	app.Get("/me", CurrentUser(store, users, zap.NewNop()), func(c *fiber.Ctx) error {
		if user, ok := c.Locals(LocalsUser).(*domain.User); ok {
			return c.SendString(user.Username)
		}
		return c.SendString("anonymous")
	})

	whoAmI := func(cookies []*http.Cookie) string {
		req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return string(body)
	}
	signIn := func(id string) []*http.Cookie {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/as/"+id, nil))
		require.NoError(t, err)
		return resp.Cookies()
	}

	assert.Equal(t, "anonymous", whoAmI(nil))
	assert.Equal(t, "alice", whoAmI(signIn("abcdefghij")))
	assert.Equal(t, "anonymous", whoAmI(signIn("deleted123")))
}
