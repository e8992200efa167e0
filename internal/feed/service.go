// Package feed implements posts, comments and likes.
package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"postboard/internal/storage"
	"postboard/pkg/logger"
)

// ErrPostNotFound is returned when an operation references a missing post.
var ErrPostNotFound = errors.New("post not found")

// PostStore is the persistence surface the feed service depends on.
// Implemented by storage.PostRepository.
type PostStore interface {
	CreatePost(ctx context.Context, body string, userID int64) (storage.Post, error)
	ListPosts(ctx context.Context, sorting storage.PostSorting) ([]storage.Post, error)
	FindPost(ctx context.Context, postID int64) (storage.PostWithLikes, error)
	PostExists(ctx context.Context, postID int64) (bool, error)
	CreateComment(ctx context.Context, body string, postID, userID int64) (storage.Comment, error)
	ListComments(ctx context.Context, postID int64) ([]storage.Comment, error)
	CreateLike(ctx context.Context, postID, userID int64) (storage.PostLike, error)
}

// PostDetail is a post with its like count and comments.
type PostDetail struct {
	Post     storage.PostWithLikes `json:"post"`
	Comments []storage.Comment     `json:"comments"`
}

// Service implements the feed operations.
type Service struct {
	posts PostStore
	log   *slog.Logger
}

// NewService wires the feed service.
func NewService(posts PostStore, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Service{posts: posts, log: log}
}

// CreatePost creates a post authored by userID.
func (s *Service) CreatePost(ctx context.Context, body string, userID int64) (storage.Post, error) {
	post, err := s.posts.CreatePost(ctx, body, userID)
	if err != nil {
		return storage.Post{}, fmt.Errorf("create post: %w", err)
	}
	s.log.InfoContext(ctx, "post created", slog.Int64("post_id", post.ID), logger.UserID(userID))
	return post, nil
}

// ListPosts returns all posts in the requested order. An unknown sorting
// value falls back to newest-first.
func (s *Service) ListPosts(ctx context.Context, sorting storage.PostSorting) ([]storage.Post, error) {
	if !sorting.Valid() {
		sorting = storage.SortNew
	}
	return s.posts.ListPosts(ctx, sorting)
}

// GetPost returns a post with its like count and comments.
func (s *Service) GetPost(ctx context.Context, postID int64) (PostDetail, error) {
	post, err := s.posts.FindPost(ctx, postID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return PostDetail{}, ErrPostNotFound
		}
		return PostDetail{}, fmt.Errorf("get post: %w", err)
	}

	comments, err := s.posts.ListComments(ctx, postID)
	if err != nil {
		return PostDetail{}, fmt.Errorf("get post comments: %w", err)
	}

	return PostDetail{Post: post, Comments: comments}, nil
}

// CreateComment attaches a comment to an existing post.
func (s *Service) CreateComment(ctx context.Context, body string, postID, userID int64) (storage.Comment, error) {
	exists, err := s.posts.PostExists(ctx, postID)
	if err != nil {
		return storage.Comment{}, fmt.Errorf("create comment: %w", err)
	}
	if !exists {
		return storage.Comment{}, ErrPostNotFound
	}

	comment, err := s.posts.CreateComment(ctx, body, postID, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.Comment{}, ErrPostNotFound
		}
		return storage.Comment{}, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}

// ListComments returns the comments on a post. A missing post yields an
// empty list, matching the listing semantics of the API.
func (s *Service) ListComments(ctx context.Context, postID int64) ([]storage.Comment, error) {
	return s.posts.ListComments(ctx, postID)
}

// LikePost records a like of an existing post by userID.
func (s *Service) LikePost(ctx context.Context, postID, userID int64) (storage.PostLike, error) {
	exists, err := s.posts.PostExists(ctx, postID)
	if err != nil {
		return storage.PostLike{}, fmt.Errorf("like post: %w", err)
	}
	if !exists {
		return storage.PostLike{}, ErrPostNotFound
	}

	like, err := s.posts.CreateLike(ctx, postID, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.PostLike{}, ErrPostNotFound
		}
		return storage.PostLike{}, fmt.Errorf("like post: %w", err)
	}
	return like, nil
}
