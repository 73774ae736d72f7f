package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PinsaraPerera/intellihack-backend/internal/dto"
	"github.com/PinsaraPerera/intellihack-backend/internal/pkg/logger"
	"github.com/PinsaraPerera/intellihack-backend/internal/pkg/serverutils"
	"github.com/PinsaraPerera/intellihack-backend/internal/service"
	"github.com/PinsaraPerera/intellihack-backend/internal/websocket"
	"github.com/PinsaraPerera/intellihack-backend/pkg/cache"
	"github.com/PinsaraPerera/intellihack-backend/pkg/storage"
	"github.com/PinsaraPerera/intellihack-backend/pkg/vectorstore"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubQueryService answers chat and history only.
type stubQueryService struct {
	service.IQueryService
	chatErr   error
	sessionID string
	limit     int
}

func (s *stubQueryService) Chat(_ context.Context, sessionId string, req *dto.ChatRequest) (*dto.QueryResponse, error) {
	s.sessionID = sessionId
	if s.chatErr != nil {
		return nil, s.chatErr
	}
	return &dto.QueryResponse{UserId: req.UserId, Kind: "chat", Message: req.Message, Response: "42"}, nil
}

func (s *stubQueryService) History(_ context.Context, userId string, limit int) ([]*dto.QueryResponse, error) {
	s.limit = limit
	return []*dto.QueryResponse{{UserId: userId, Message: "hi"}}, nil
}

func newTestApp(register func(r fiber.Router)) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	api := app.Group("/api", serverutils.SessionMiddleware("session_id"))
	register(api)
	return app
}

func decode(t *testing.T, resp *http.Response) serverutils.Response {
	t.Helper()
	var out serverutils.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(serverutils.SessionHeader, "sess-1")
	return req
}

func TestChatEndpoint(t *testing.T) {
	svc := &stubQueryService{}
	denyAll := func(ctx *fiber.Ctx) error { return fiber.ErrUnauthorized }
	app := newTestApp(func(r fiber.Router) { NewQueryController(svc).RegisterRoutes(r, denyAll) })

	resp, err := app.Test(postJSON("/api/query/chat", `{"user_id":"u1","username":"alice","message":"meaning?"}`))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.True(t, body.Success)
	assert.Equal(t, "sess-1", svc.sessionID)

	resp, err = app.Test(postJSON("/api/query/chat", `{"user_id":"u1"}`))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(postJSON("/api/query/chat", `{not json`))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	svc.chatErr = vectorstore.ErrNotFound
	resp, err = app.Test(postJSON("/api/query/chat", `{"user_id":"u1","username":"alice","message":"meaning?"}`))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHistoryEndpointRequiresAuth(t *testing.T) {
	svc := &stubQueryService{}
	auth := func(ctx *fiber.Ctx) error {
		if ctx.Get("Authorization") != "Bearer ok" {
			return fiber.ErrUnauthorized
		}
		return ctx.Next()
	}
	app := newTestApp(func(r fiber.Router) { NewQueryController(svc).RegisterRoutes(r, auth) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/query/history/u1/5", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/api/query/history/u1/5", nil)
	req.Header.Set("Authorization", "Bearer ok")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 5, svc.limit)

	req = httptest.NewRequest(http.MethodGet, "/api/query/history/u1/zero", nil)
	req.Header.Set("Authorization", "Bearer ok")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSessionEndpoints(t *testing.T) {
	c := cache.NewMemoryCache(time.Minute)
	loader := vectorstore.NewLoader(c, storage.NewLocalStore(t.TempDir()), nil,
		vectorstore.DefaultLoaderConfig("bucket"), logger.NewNopLogger())
	svc := service.NewSessionService(loader, logger.NewNopLogger())
	app := newTestApp(NewSessionController(svc).RegisterRoutes)

	ctx := context.Background()
	require.NoError(t, c.SetEx(ctx, vectorstore.IndexKey("sess-1"), time.Hour, []byte("i")))
	require.NoError(t, c.SetEx(ctx, vectorstore.MetadataKey("sess-1"), time.Hour, []byte("m")))

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	req.Header.Set(serverutils.SessionHeader, "sess-1")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	state := decode(t, resp).Data.(map[string]interface{})
	assert.Equal(t, "WARM", state["state"])

	req = httptest.NewRequest(http.MethodDelete, "/api/session", nil)
	req.Header.Set(serverutils.SessionHeader, "sess-1")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	cleared := decode(t, resp).Data.(map[string]interface{})
	assert.Equal(t, true, cleared["cleared"])

	n, err := c.Exists(ctx, vectorstore.IndexKey("sess-1"), vectorstore.MetadataKey("sess-1"))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestNotificationRouteRequiresTokenAndUpgrade(t *testing.T) {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	NewNotificationController(websocket.NewHub(nil, logger.NewNopLogger())).
		RegisterRoutes(app, serverutils.NewJwtMiddleware("secret"))

	upgrade := func(target string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		req.Header.Set("Connection", "Upgrade")
		req.Header.Set("Upgrade", "websocket")
		return req
	}

	// the username query is not trusted
	resp, err := app.Test(upgrade("/ws/notifications?username=amy"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(upgrade("/ws/notifications?access_token=" + signToken(t, "other", jwt.MapClaims{"sub": "amy"})))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	token := signToken(t, "secret", jwt.MapClaims{"sub": "amy"})
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/ws/notifications?access_token="+token, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)

	resp, err = app.Test(upgrade("/ws/notifications?access_token=" + signToken(t, "secret", jwt.MapClaims{"user_id": "1"})))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
