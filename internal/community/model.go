package community

import "time"

type Community struct {
	ID           int       `db:"id" json:"id"`
	InstructorID int       `db:"instructor_id" json:"instructor_id"`
	Name         string    `db:"name" json:"name"`
	Description  string    `db:"description" json:"description"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	MemberCount  int       `db:"member_count" json:"member_count"`
}

type Member struct {
	CommunityID int       `db:"community_id" json:"community_id"`
	UserID      int       `db:"user_id" json:"user_id"`
	UserName    string    `db:"user_name" json:"user_name"`
	JoinedAt    time.Time `db:"joined_at" json:"joined_at"`
}

type Post struct {
	ID           int       `db:"id" json:"id"`
	CommunityID  int       `db:"community_id" json:"community_id"`
	AuthorID     int       `db:"author_id" json:"author_id"`
	AuthorName   string    `db:"author_name" json:"author_name"`
	Content      string    `db:"content" json:"content"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	LikeCount    int       `db:"like_count" json:"like_count"`
	CommentCount int       `db:"comment_count" json:"comment_count"`
	LikedByMe    bool      `db:"liked_by_me" json:"liked_by_me"`
}

type Comment struct {
	ID         int       `db:"id" json:"id"`
	PostID     int       `db:"post_id" json:"post_id"`
	ParentID   *int      `db:"parent_id" json:"parent_id,omitempty"`
	AuthorID   int       `db:"author_id" json:"author_id"`
	AuthorName string    `db:"author_name" json:"author_name"`
	Content    string    `db:"content" json:"content"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	Replies    []Comment `db:"-" json:"replies,omitempty"`
}

type CommunityRequest struct {
	Name        string `json:"name" binding:"required,notblank,max=255" example:"Ochtendploeg"`
	Description string `json:"description" binding:"max=2000"`
}

type AddMemberRequest struct {
	UserID int `json:"user_id" binding:"required,gt=0" example:"12"`
}

type PostRequest struct {
	Content string `json:"content" binding:"required,notblank,max=5000" example:"Who's joining Saturday's run?"`
}

type CommentRequest struct {
	Content  string `json:"content" binding:"required,notblank,max=2000" example:"Count me in"`
	ParentID *int   `json:"parent_id" binding:"omitempty,gt=0"`
}

type LikeResponse struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}
