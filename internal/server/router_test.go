package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postboard/internal/auth"
	"postboard/internal/feed"
	"postboard/internal/server"
	"postboard/internal/storage"
	"postboard/internal/upload"
	"postboard/pkg/file"
	"postboard/pkg/ratelimit"
)

type memUserStore struct {
	mu     sync.Mutex
	users  map[string]storage.User
	nextID int64
}

func (s *memUserStore) Create(_ context.Context, email, hash string) (storage.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[email]; ok {
		return storage.User{}, storage.ErrDuplicate
	}
	s.nextID++
	u := storage.User{ID: s.nextID, Email: email, PasswordHash: hash}
	s.users[email] = u
	return u, nil
}

func (s *memUserStore) FindByEmail(_ context.Context, email string) (storage.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return storage.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (s *memUserStore) SetConfirmed(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return storage.ErrNotFound
	}
	u.Confirmed = true
	s.users[email] = u
	return nil
}

type memPostStore struct {
	mu     sync.Mutex
	posts  map[int64]storage.Post
	nextID int64
}

func (s *memPostStore) CreatePost(_ context.Context, body string, userID int64) (storage.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	p := storage.Post{ID: s.nextID, Body: body, UserID: userID}
	s.posts[p.ID] = p
	return p, nil
}

func (s *memPostStore) ListPosts(_ context.Context, sorting storage.PostSorting) ([]storage.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	posts := make([]storage.Post, 0, len(s.posts))
	for _, p := range s.posts {
		posts = append(posts, p)
	}
	asc := sorting == storage.SortOld
	sort.Slice(posts, func(i, j int) bool {
		if asc {
			return posts[i].ID < posts[j].ID
		}
		return posts[i].ID > posts[j].ID
	})
	return posts, nil
}

func (s *memPostStore) FindPost(_ context.Context, postID int64) (storage.PostWithLikes, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[postID]
	if !ok {
		return storage.PostWithLikes{}, storage.ErrNotFound
	}
	return storage.PostWithLikes{Post: p}, nil
}

func (s *memPostStore) PostExists(_ context.Context, postID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.posts[postID]
	return ok, nil
}

func (s *memPostStore) CreateComment(_ context.Context, body string, postID, userID int64) (storage.Comment, error) {
	return storage.Comment{ID: 1, Body: body, PostID: postID, UserID: userID}, nil
}

func (s *memPostStore) ListComments(_ context.Context, _ int64) ([]storage.Comment, error) {
	return []storage.Comment{}, nil
}

func (s *memPostStore) CreateLike(_ context.Context, postID, userID int64) (storage.PostLike, error) {
	return storage.PostLike{ID: 1, PostID: postID, UserID: userID}, nil
}

type routerOptions struct {
	limiter      ratelimit.Limiter
	healthchecks map[string]server.Healthcheck
}

func newTestRouter(t *testing.T, opts routerOptions) http.Handler {
	t.Helper()

	tokens, err := auth.NewTokens(auth.Config{
		JWTSecret:            "test-signing-key",
		AccessTokenTTL:       30 * time.Minute,
		ConfirmationTokenTTL: 24 * time.Hour,
	})
	require.NoError(t, err)

	userStore := &memUserStore{users: make(map[string]storage.User)}
	authSvc := auth.NewService(userStore, auth.NewHasher(4), tokens, nil, "http://localhost:8080", nil)

	feedSvc := feed.NewService(&memPostStore{posts: make(map[int64]storage.Post)}, nil)

	staticDir := t.TempDir()
	fileStorage, err := file.NewLocalStorage(staticDir, "/static/")
	require.NoError(t, err)

	return server.New(server.Deps{
		Auth:         auth.NewHandler(authSvc),
		AuthSvc:      authSvc,
		Feed:         feed.NewHandler(feedSvc),
		Upload:       upload.NewHandler(fileStorage, 1<<20, nil),
		Limiter:      opts.limiter,
		StaticDir:    staticDir,
		Healthchecks: opts.healthchecks,
	})
}

func doReq(t *testing.T, h http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Root(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, routerOptions{})
	rec := doReq(t, h, "GET", "/", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":"banana"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRouter_Health(t *testing.T) {
	t.Parallel()

	t.Run("healthy", func(t *testing.T) {
		t.Parallel()
		h := newTestRouter(t, routerOptions{healthchecks: map[string]server.Healthcheck{
			"postgres": func(context.Context) error { return nil },
		}})

		rec := doReq(t, h, "GET", "/health", "", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"ok"`)
	})

	t.Run("degraded", func(t *testing.T) {
		t.Parallel()
		h := newTestRouter(t, routerOptions{healthchecks: map[string]server.Healthcheck{
			"postgres": func(context.Context) error { return errors.New("connection refused") },
		}})

		rec := doReq(t, h, "GET", "/health", "", "")
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "degraded")
	})
}

func TestRouter_EndToEnd(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, routerOptions{})

	// Register.
	rec := doReq(t, h, "POST", "/register", `{"email":"user@example.com","password":"pw"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var reg map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))

	// Login before confirmation is rejected.
	rec = doReq(t, h, "POST", "/token", `{"email":"user@example.com","password":"pw"}`, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "has not confirmed")

	// Confirm via the emitted link.
	confirmPath := reg["confirmation_url"][strings.Index(reg["confirmation_url"], "/confirm/"):]
	rec = doReq(t, h, "GET", confirmPath, "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	// Login succeeds now.
	rec = doReq(t, h, "POST", "/token", `{"email":"user@example.com","password":"pw"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var login map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	token := login["access_token"]
	require.NotEmpty(t, token)

	// Protected write requires the token.
	rec = doReq(t, h, "POST", "/post", `{"body":"hello"}`, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doReq(t, h, "POST", "/post", `{"body":"hello"}`, token)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Public read sees it.
	rec = doReq(t, h, "GET", "/post", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hello")
}

func TestRouter_RateLimit(t *testing.T) {
	t.Parallel()

	limiter, err := ratelimit.NewFixedWindow(ratelimit.NewMemoryStore(), 2, time.Minute)
	require.NoError(t, err)
	h := newTestRouter(t, routerOptions{limiter: limiter})

	body := `{"email":"user@example.com","password":"bad"}`
	for range 2 {
		rec := doReq(t, h, "POST", "/token", body, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	rec := doReq(t, h, "POST", "/token", body, "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// Unthrottled endpoints are unaffected.
	rec = doReq(t, h, "GET", "/", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
