package feed

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"postboard/internal/auth"
	"postboard/internal/httpx"
	"postboard/internal/storage"
)

// Handler exposes the feed service over HTTP.
type Handler struct {
	svc *Service
}

// NewHandler returns the feed HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Routes mounts the feed endpoints on r. Write operations go through the
// requireUser middleware; reads are public.
func (h *Handler) Routes(r chi.Router, requireUser func(http.Handler) http.Handler) {
	r.Get("/post", h.listPosts)
	r.Get("/post/{post_id}", h.getPost)
	r.Get("/post/{post_id}/comment", h.listComments)

	r.Group(func(r chi.Router) {
		r.Use(requireUser)
		r.Post("/post", h.createPost)
		r.Post("/comment", h.createComment)
		r.Post("/like", h.likePost)
	})
}

type postRequest struct {
	Body string `json:"body"`
}

type commentRequest struct {
	Body   string `json:"body"`
	PostID int64  `json:"post_id"`
}

type likeRequest struct {
	PostID int64 `json:"post_id"`
}

func (h *Handler) createPost(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.Detail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}

	var req postRequest
	if err := httpx.Decode(r, &req); err != nil || req.Body == "" {
		httpx.Detail(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}

	post, err := h.svc.CreatePost(r.Context(), req.Body, user.ID)
	if err != nil {
		httpx.Detail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.JSON(w, http.StatusCreated, post)
}

func (h *Handler) listPosts(w http.ResponseWriter, r *http.Request) {
	sorting := storage.PostSorting(r.URL.Query().Get("sorting"))
	if sorting == "" {
		sorting = storage.SortNew
	}
	if !sorting.Valid() {
		httpx.Detail(w, http.StatusUnprocessableEntity, "Invalid sorting value")
		return
	}

	posts, err := h.svc.ListPosts(r.Context(), sorting)
	if err != nil {
		httpx.Detail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.JSON(w, http.StatusOK, posts)
}

func (h *Handler) getPost(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.ParseInt(chi.URLParam(r, "post_id"), 10, 64)
	if err != nil {
		httpx.Detail(w, http.StatusUnprocessableEntity, "Invalid post id")
		return
	}

	detail, err := h.svc.GetPost(r.Context(), postID)
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			httpx.Detail(w, http.StatusNotFound, "Post not found")
			return
		}
		httpx.Detail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.JSON(w, http.StatusOK, detail)
}

func (h *Handler) createComment(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.Detail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}

	var req commentRequest
	if err := httpx.Decode(r, &req); err != nil || req.Body == "" || req.PostID == 0 {
		httpx.Detail(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}

	comment, err := h.svc.CreateComment(r.Context(), req.Body, req.PostID, user.ID)
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			httpx.Detail(w, http.StatusNotFound, "Post not found.")
			return
		}
		httpx.Detail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.JSON(w, http.StatusCreated, comment)
}

func (h *Handler) listComments(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.ParseInt(chi.URLParam(r, "post_id"), 10, 64)
	if err != nil {
		httpx.Detail(w, http.StatusUnprocessableEntity, "Invalid post id")
		return
	}

	comments, err := h.svc.ListComments(r.Context(), postID)
	if err != nil {
		httpx.Detail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.JSON(w, http.StatusOK, comments)
}

func (h *Handler) likePost(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.Detail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}

	var req likeRequest
	if err := httpx.Decode(r, &req); err != nil || req.PostID == 0 {
		httpx.Detail(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}

	like, err := h.svc.LikePost(r.Context(), req.PostID, user.ID)
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			httpx.Detail(w, http.StatusNotFound, "Post not found")
			return
		}
		httpx.Detail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.JSON(w, http.StatusCreated, like)
}
