// Package storage provides pgx-backed repositories for users, posts,
// comments and likes.
package storage

// User is an account row. PasswordHash is never serialized.
type User struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Confirmed    bool   `json:"confirmed"`
}

// Post is a user-authored post.
type Post struct {
	ID     int64  `json:"id"`
	Body   string `json:"body"`
	UserID int64  `json:"user_id"`
}

// PostWithLikes is a post annotated with its like count.
type PostWithLikes struct {
	Post
	Likes int64 `json:"likes"`
}

// Comment is a reply attached to a post.
type Comment struct {
	ID     int64  `json:"id"`
	Body   string `json:"body"`
	PostID int64  `json:"post_id"`
	UserID int64  `json:"user_id"`
}

// PostLike records one like of a post by a user.
type PostLike struct {
	ID     int64 `json:"id"`
	PostID int64 `json:"post_id"`
	UserID int64 `json:"user_id"`
}

// PostSorting selects the order of the post listing.
type PostSorting string

const (
	SortNew       PostSorting = "new"
	SortOld       PostSorting = "old"
	SortMostLikes PostSorting = "most_likes"
)

// Valid reports whether s is a known sorting mode.
func (s PostSorting) Valid() bool {
	switch s {
	case SortNew, SortOld, SortMostLikes:
		return true
	}
	return false
}
