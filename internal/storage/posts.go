package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"postboard/pkg/pg"
)

// PostRepository persists posts, comments and likes.
type PostRepository struct {
	db DB
}

// NewPostRepository returns a posts repository backed by db.
func NewPostRepository(db DB) *PostRepository {
	return &PostRepository{db: db}
}

// CreatePost inserts a post for the given author.
func (r *PostRepository) CreatePost(ctx context.Context, body string, userID int64) (Post, error) {
	var p Post
	err := r.db.QueryRow(ctx,
		`INSERT INTO posts (body, user_id) VALUES ($1, $2)
		 RETURNING id, body, user_id`,
		body, userID,
	).Scan(&p.ID, &p.Body, &p.UserID)
	if err != nil {
		return Post{}, fmt.Errorf("create post: %w", err)
	}
	return p, nil
}

// ListPosts returns all posts in the requested order. The like count drives
// the most_likes order but is not part of the listing payload.
func (r *PostRepository) ListPosts(ctx context.Context, sorting PostSorting) ([]Post, error) {
	orderBy := "p.id DESC"
	switch sorting {
	case SortOld:
		orderBy = "p.id ASC"
	case SortMostLikes:
		orderBy = "likes DESC, p.id ASC"
	}

	rows, err := r.db.Query(ctx,
		`SELECT p.id, p.body, p.user_id, COUNT(l.id) AS likes
		 FROM posts p
		 LEFT JOIN likes l ON l.post_id = p.id
		 GROUP BY p.id
		 ORDER BY `+orderBy)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := []Post{}
	for rows.Next() {
		var p Post
		var likes int64
		if err := rows.Scan(&p.ID, &p.Body, &p.UserID, &likes); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// FindPost returns a single post with its like count.
func (r *PostRepository) FindPost(ctx context.Context, postID int64) (PostWithLikes, error) {
	var p PostWithLikes
	err := r.db.QueryRow(ctx,
		`SELECT p.id, p.body, p.user_id, COUNT(l.id) AS likes
		 FROM posts p
		 LEFT JOIN likes l ON l.post_id = p.id
		 WHERE p.id = $1
		 GROUP BY p.id`,
		postID,
	).Scan(&p.ID, &p.Body, &p.UserID, &p.Likes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PostWithLikes{}, ErrNotFound
		}
		return PostWithLikes{}, fmt.Errorf("find post: %w", err)
	}
	return p, nil
}

// PostExists reports whether a post with the given ID exists.
func (r *PostRepository) PostExists(ctx context.Context, postID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1)`, postID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check post: %w", err)
	}
	return exists, nil
}

// CreateComment inserts a comment on a post. Returns ErrNotFound if the
// post was deleted between the existence check and the insert.
func (r *PostRepository) CreateComment(ctx context.Context, body string, postID, userID int64) (Comment, error) {
	var c Comment
	err := r.db.QueryRow(ctx,
		`INSERT INTO comments (body, post_id, user_id) VALUES ($1, $2, $3)
		 RETURNING id, body, post_id, user_id`,
		body, postID, userID,
	).Scan(&c.ID, &c.Body, &c.PostID, &c.UserID)
	if err != nil {
		if pg.IsForeignKeyViolationError(err) {
			return Comment{}, ErrNotFound
		}
		return Comment{}, fmt.Errorf("create comment: %w", err)
	}
	return c, nil
}

// ListComments returns the comments on a post in insertion order.
func (r *PostRepository) ListComments(ctx context.Context, postID int64) ([]Comment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, body, post_id, user_id FROM comments
		 WHERE post_id = $1 ORDER BY id ASC`,
		postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := []Comment{}
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.Body, &c.PostID, &c.UserID); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// CreateLike records a like of a post by a user.
func (r *PostRepository) CreateLike(ctx context.Context, postID, userID int64) (PostLike, error) {
	var l PostLike
	err := r.db.QueryRow(ctx,
		`INSERT INTO likes (post_id, user_id) VALUES ($1, $2)
		 RETURNING id, post_id, user_id`,
		postID, userID,
	).Scan(&l.ID, &l.PostID, &l.UserID)
	if err != nil {
		if pg.IsForeignKeyViolationError(err) {
			return PostLike{}, ErrNotFound
		}
		return PostLike{}, fmt.Errorf("create like: %w", err)
	}
	return l, nil
}
