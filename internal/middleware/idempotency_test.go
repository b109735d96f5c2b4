package middleware

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/kobopay/kobopay/internal/logging"
)

func setupTestApp(t *testing.T) (*fiber.App, *atomic.Int64, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	app := fiber.New()
	logger := logging.Discard()
	app.Use(Idempotency(cache, time.Minute, logger))

	var hits atomic.Int64
	app.Post("/resource", func(c *fiber.Ctx) error {
		hits.Add(1)
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true})
	})

	cleanup := func() {
		cache.Close()
		mr.Close()
	}

	return app, &hits, cleanup
}

func postResource(t *testing.T, app *fiber.App, key string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/resource", strings.NewReader("{}"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if key != "" {
		req.Header.Set(idempotencyKeyHeader, key)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	rec := httptest.NewRecorder()
	rec.Code = resp.StatusCode
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	resp.Body.Close()
	rec.Body.Write(body)
	return rec
}

func TestIdempotencyPassesThroughWithoutHeader(t *testing.T) {
	app, hits, cleanup := setupTestApp(t)
	defer cleanup()

	first := postResource(t, app, "")
	second := postResource(t, app, "")

	if first.Code != fiber.StatusCreated || second.Code != fiber.StatusCreated {
		t.Fatalf("expected %d for both, got %d and %d", fiber.StatusCreated, first.Code, second.Code)
	}
	if got := hits.Load(); got != 2 {
		t.Fatalf("expected handler invoked twice, got %d", got)
	}
}

func TestIdempotencyReturnsCachedResponse(t *testing.T) {
	app, hits, cleanup := setupTestApp(t)
	defer cleanup()

	first := postResource(t, app, "abc123")
	if first.Code != fiber.StatusCreated {
		t.Fatalf("expected status %d got %d", fiber.StatusCreated, first.Code)
	}

	second := postResource(t, app, "abc123")
	if second.Code != fiber.StatusCreated {
		t.Fatalf("expected cached status %d got %d", fiber.StatusCreated, second.Code)
	}

	if got := hits.Load(); got != 1 {
		t.Fatalf("expected handler invoked once, got %d", got)
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("expected cached payload %s got %s", first.Body.String(), second.Body.String())
	}

	var decoded map[string]any
	if err := json.Unmarshal(second.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("cached payload invalid json: %v", err)
	}
}
