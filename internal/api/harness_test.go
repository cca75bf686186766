package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/threadspire/threadspire/internal/auth"
	"github.com/threadspire/threadspire/internal/config"
	"github.com/threadspire/threadspire/internal/models"
	"github.com/threadspire/threadspire/internal/repository"
	"go.uber.org/zap"
)

type testEnv struct {
	router *gin.Engine
	db     *memDB
	cfg    *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := newMemDB()
	cfg := &config.Config{
		AccessTokenSecret:  "test-access-secret",
		RefreshTokenSecret: "test-refresh-secret",
		AccessTokenTTL:     15 * time.Minute,
		RefreshTokenTTL:    7 * 24 * time.Hour,
	}
	logger := zap.NewNop()

	threads := &fakeThreads{db: db}
	h := Handlers{
		Auth:        NewAuthHandler(&fakeUsers{db: db}, &fakeTokens{db: db}, cfg, logger),
		Users:       NewUserHandler(&fakeUsers{db: db}, logger),
		Threads:     NewThreadHandler(threads, nil, logger),
		Feed:        NewFeedHandler(&fakeFeed{db: db}, nil, logger),
		Reactions:   NewReactionHandler(&fakeReactions{db: db}, threads, logger),
		Comments:    NewCommentHandler(&fakeComments{db: db}, threads, logger),
		Bookmarks:   NewBookmarkHandler(&fakeBookmarks{db: db}, threads, &fakeCollections{db: db}, logger),
		Collections: NewCollectionHandler(&fakeCollections{db: db}, logger),
	}

	r := gin.New()
	RegisterRoutes(r, cfg.AccessTokenSecret, h)
	return &testEnv{router: r, db: db, cfg: cfg}
}

func (e *testEnv) bearer(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, err := auth.IssueToken(userID, auth.PurposeAccess, e.cfg.AccessTokenSecret, e.cfg.AccessTokenTTL)
	require.NoError(t, err)
	return "Bearer " + token
}

func (e *testEnv) do(t *testing.T, method, path string, body any, bearer string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", bearer)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// seedThread writes a thread straight through the fake store, bypassing
// the HTTP surface, so tests can arrange state without chaining requests.
func (e *testEnv) seedThread(t *testing.T, author models.User, title string, published bool, tags ...string) models.Thread {
	t.Helper()

	store := &fakeThreads{db: e.db}
	thread, err := store.Create(context.Background(), author.ID, title, tags, []repository.SegmentInput{{Content: "first segment"}})
	require.NoError(t, err)
	if published {
		thread, err = store.Publish(context.Background(), thread.ID)
		require.NoError(t, err)
	}
	return *thread
}

// decodeData unmarshals the data field of a success envelope into out.
func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.True(t, envelope.Success, "expected success envelope, got %s", w.Body.String())
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

// failMessage unmarshals a failure envelope and returns its message.
func failMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var envelope struct {
		Success    bool   `json:"success"`
		StatusCode int    `json:"statusCode"`
		Message    string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.False(t, envelope.Success, "expected failure envelope, got %s", w.Body.String())
	require.Equal(t, w.Code, envelope.StatusCode)
	return envelope.Message
}

func refreshCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, ck := range w.Result().Cookies() {
		if ck.Name == refreshCookieName {
			return ck
		}
	}
	return nil
}
