package feed_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postboard/internal/auth"
	"postboard/internal/feed"
	"postboard/internal/storage"
)

type fakePostStore struct {
	mu       sync.Mutex
	posts    map[int64]storage.Post
	comments map[int64]storage.Comment
	likes    map[int64]storage.PostLike
	nextID   int64
}

func newFakePostStore() *fakePostStore {
	return &fakePostStore{
		posts:    make(map[int64]storage.Post),
		comments: make(map[int64]storage.Comment),
		likes:    make(map[int64]storage.PostLike),
	}
}

func (s *fakePostStore) CreatePost(_ context.Context, body string, userID int64) (storage.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	p := storage.Post{ID: s.nextID, Body: body, UserID: userID}
	s.posts[p.ID] = p
	return p, nil
}

func (s *fakePostStore) likeCount(postID int64) int64 {
	var n int64
	for _, l := range s.likes {
		if l.PostID == postID {
			n++
		}
	}
	return n
}

func (s *fakePostStore) ListPosts(_ context.Context, sorting storage.PostSorting) ([]storage.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts := make([]storage.Post, 0, len(s.posts))
	for _, p := range s.posts {
		posts = append(posts, p)
	}

	switch sorting {
	case storage.SortOld:
		sort.Slice(posts, func(i, j int) bool { return posts[i].ID < posts[j].ID })
	case storage.SortMostLikes:
		sort.Slice(posts, func(i, j int) bool {
			li, lj := s.likeCount(posts[i].ID), s.likeCount(posts[j].ID)
			if li != lj {
				return li > lj
			}
			return posts[i].ID < posts[j].ID
		})
	default:
		sort.Slice(posts, func(i, j int) bool { return posts[i].ID > posts[j].ID })
	}
	return posts, nil
}

func (s *fakePostStore) FindPost(_ context.Context, postID int64) (storage.PostWithLikes, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[postID]
	if !ok {
		return storage.PostWithLikes{}, storage.ErrNotFound
	}
	return storage.PostWithLikes{Post: p, Likes: s.likeCount(postID)}, nil
}

func (s *fakePostStore) PostExists(_ context.Context, postID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.posts[postID]
	return ok, nil
}

func (s *fakePostStore) CreateComment(_ context.Context, body string, postID, userID int64) (storage.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[postID]; !ok {
		return storage.Comment{}, storage.ErrNotFound
	}
	s.nextID++
	c := storage.Comment{ID: s.nextID, Body: body, PostID: postID, UserID: userID}
	s.comments[c.ID] = c
	return c, nil
}

func (s *fakePostStore) ListComments(_ context.Context, postID int64) ([]storage.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	comments := []storage.Comment{}
	for _, c := range s.comments {
		if c.PostID == postID {
			comments = append(comments, c)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })
	return comments, nil
}

func (s *fakePostStore) CreateLike(_ context.Context, postID, userID int64) (storage.PostLike, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[postID]; !ok {
		return storage.PostLike{}, storage.ErrNotFound
	}
	s.nextID++
	l := storage.PostLike{ID: s.nextID, PostID: postID, UserID: userID}
	s.likes[l.ID] = l
	return l, nil
}

// asUser injects a fixed authenticated user, standing in for the real
// bearer token middleware.
func asUser(user storage.User) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
		})
	}
}

func newFeedRouter(t *testing.T, store *fakePostStore) chi.Router {
	t.Helper()
	svc := feed.NewService(store, nil)

	r := chi.NewRouter()
	feed.NewHandler(svc).Routes(r, asUser(storage.User{ID: 1, Email: "user@example.com", Confirmed: true}))
	return r
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func createPost(t *testing.T, r http.Handler, body string) storage.Post {
	t.Helper()
	rec := do(t, r, "POST", "/post", `{"body":"`+body+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var p storage.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func TestHandler_CreatePost(t *testing.T) {
	t.Parallel()

	t.Run("creates post for current user", func(t *testing.T) {
		t.Parallel()
		r := newFeedRouter(t, newFakePostStore())

		p := createPost(t, r, "hello world")
		assert.Equal(t, int64(1), p.ID)
		assert.Equal(t, "hello world", p.Body)
		assert.Equal(t, int64(1), p.UserID)
	})

	t.Run("empty body rejected", func(t *testing.T) {
		t.Parallel()
		r := newFeedRouter(t, newFakePostStore())

		rec := do(t, r, "POST", "/post", `{}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestHandler_ListPosts(t *testing.T) {
	t.Parallel()

	setup := func(t *testing.T) (chi.Router, *fakePostStore) {
		t.Helper()
		store := newFakePostStore()
		r := newFeedRouter(t, store)
		createPost(t, r, "first")
		createPost(t, r, "second")
		return r, store
	}

	listIDs := func(t *testing.T, r http.Handler, path string) []int64 {
		t.Helper()
		rec := do(t, r, "GET", path, "")
		require.Equal(t, http.StatusOK, rec.Code)
		var posts []storage.Post
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &posts))
		ids := make([]int64, len(posts))
		for i, p := range posts {
			ids[i] = p.ID
		}
		return ids
	}

	t.Run("default is newest first", func(t *testing.T) {
		t.Parallel()
		r, _ := setup(t)
		assert.Equal(t, []int64{2, 1}, listIDs(t, r, "/post"))
	})

	t.Run("sorting old", func(t *testing.T) {
		t.Parallel()
		r, _ := setup(t)
		assert.Equal(t, []int64{1, 2}, listIDs(t, r, "/post?sorting=old"))
	})

	t.Run("sorting most_likes", func(t *testing.T) {
		t.Parallel()
		r, _ := setup(t)

		rec := do(t, r, "POST", "/like", `{"post_id":1}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		assert.Equal(t, []int64{1, 2}, listIDs(t, r, "/post?sorting=most_likes"))
	})

	t.Run("invalid sorting", func(t *testing.T) {
		t.Parallel()
		r, _ := setup(t)
		rec := do(t, r, "GET", "/post?sorting=bogus", "")
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("empty feed is an empty list", func(t *testing.T) {
		t.Parallel()
		r := newFeedRouter(t, newFakePostStore())
		rec := do(t, r, "GET", "/post", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
	})
}

func TestHandler_GetPost(t *testing.T) {
	t.Parallel()

	t.Run("post with likes and comments", func(t *testing.T) {
		t.Parallel()
		r := newFeedRouter(t, newFakePostStore())
		p := createPost(t, r, "a post")

		rec := do(t, r, "POST", "/comment", `{"body":"a comment","post_id":1}`)
		require.Equal(t, http.StatusCreated, rec.Code)
		rec = do(t, r, "POST", "/like", `{"post_id":1}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = do(t, r, "GET", "/post/1", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var detail feed.PostDetail
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
		assert.Equal(t, p.ID, detail.Post.ID)
		assert.Equal(t, int64(1), detail.Post.Likes)
		require.Len(t, detail.Comments, 1)
		assert.Equal(t, "a comment", detail.Comments[0].Body)
	})

	t.Run("missing post", func(t *testing.T) {
		t.Parallel()
		r := newFeedRouter(t, newFakePostStore())

		rec := do(t, r, "GET", "/post/99", "")
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "Post not found")
	})

	t.Run("non-numeric id", func(t *testing.T) {
		t.Parallel()
		r := newFeedRouter(t, newFakePostStore())
		rec := do(t, r, "GET", "/post/abc", "")
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestHandler_CreateComment(t *testing.T) {
	t.Parallel()

	t.Run("comment on existing post", func(t *testing.T) {
		t.Parallel()
		r := newFeedRouter(t, newFakePostStore())
		createPost(t, r, "a post")

		rec := do(t, r, "POST", "/comment", `{"body":"nice","post_id":1}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		var c storage.Comment
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
		assert.Equal(t, "nice", c.Body)
		assert.Equal(t, int64(1), c.PostID)
		assert.Equal(t, int64(1), c.UserID)
	})

	t.Run("comment on missing post", func(t *testing.T) {
		t.Parallel()
		r := newFeedRouter(t, newFakePostStore())

		rec := do(t, r, "POST", "/comment", `{"body":"nice","post_id":42}`)
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "Post not found.")
	})
}

func TestHandler_ListComments(t *testing.T) {
	t.Parallel()

	r := newFeedRouter(t, newFakePostStore())
	createPost(t, r, "a post")
	require.Equal(t, http.StatusCreated, do(t, r, "POST", "/comment", `{"body":"one","post_id":1}`).Code)
	require.Equal(t, http.StatusCreated, do(t, r, "POST", "/comment", `{"body":"two","post_id":1}`).Code)

	rec := do(t, r, "GET", "/post/1/comment", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var comments []storage.Comment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &comments))
	require.Len(t, comments, 2)
	assert.Equal(t, "one", comments[0].Body)
	assert.Equal(t, "two", comments[1].Body)
}

func TestHandler_LikePost(t *testing.T) {
	t.Parallel()

	t.Run("like existing post", func(t *testing.T) {
		t.Parallel()
		r := newFeedRouter(t, newFakePostStore())
		createPost(t, r, "a post")

		rec := do(t, r, "POST", "/like", `{"post_id":1}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		var like storage.PostLike
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &like))
		assert.Equal(t, int64(1), like.PostID)
		assert.Equal(t, int64(1), like.UserID)
	})

	t.Run("like missing post", func(t *testing.T) {
		t.Parallel()
		r := newFeedRouter(t, newFakePostStore())

		rec := do(t, r, "POST", "/like", `{"post_id":42}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
