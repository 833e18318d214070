package community

import (
	"context"
	"fmt"

	"fitcoach/internal/db"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

const communitySelect = `
	SELECT c.id, c.instructor_id, c.name, c.description, c.created_at,
	       (SELECT COUNT(*) FROM community_members m WHERE m.community_id = c.id) AS member_count
	FROM communities c`

const commentSelect = `
	SELECT cm.id, cm.post_id, cm.parent_id, cm.author_id, u.name AS author_name, cm.content, cm.created_at
	FROM comments cm
	JOIN users u ON u.id = cm.author_id`

var postColumns = []string{
	"p.id", "p.community_id", "p.author_id", "u.name AS author_name", "p.content", "p.created_at",
	"(SELECT COUNT(*) FROM post_likes l WHERE l.post_id = p.id) AS like_count",
	"(SELECT COUNT(*) FROM comments cm WHERE cm.post_id = p.id) AS comment_count",
}

type repository struct {
	db *sqlx.DB
	sb squirrel.StatementBuilderType
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *repository) CreateCommunity(ctx context.Context, c *Community) (*Community, error) {
	var out Community
	err := r.db.GetContext(ctx, &out, `
		INSERT INTO communities (instructor_id, name, description)
		VALUES ($1, $2, $3)
		RETURNING id, instructor_id, name, description, created_at`,
		c.InstructorID, c.Name, c.Description)
	if err != nil {
		return nil, fmt.Errorf("create community: %w", err)
	}
	return &out, nil
}

func (r *repository) GetCommunity(ctx context.Context, id int) (*Community, error) {
	var c Community
	if err := r.db.GetContext(ctx, &c, communitySelect+` WHERE c.id = $1`, id); err != nil {
		if db.IsNotFound(err) {
			return nil, ErrCommunityNotFound
		}
		return nil, fmt.Errorf("get community: %w", err)
	}
	return &c, nil
}

// ListForUser returns communities the user owns or belongs to.
func (r *repository) ListForUser(ctx context.Context, userID int) ([]Community, error) {
	out := []Community{}
	err := r.db.SelectContext(ctx, &out, communitySelect+`
		WHERE c.instructor_id = $1
		   OR EXISTS (SELECT 1 FROM community_members m WHERE m.community_id = c.id AND m.user_id = $1)
		ORDER BY c.name, c.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list communities: %w", err)
	}
	return out, nil
}

func (r *repository) IsMember(ctx context.Context, communityID, userID int) (bool, error) {
	return db.Exists(ctx, r.db,
		`SELECT EXISTS(SELECT 1 FROM community_members WHERE community_id = $1 AND user_id = $2)`, communityID, userID)
}

func (r *repository) AddMember(ctx context.Context, communityID, userID int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO community_members (community_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (community_id, user_id) DO NOTHING`, communityID, userID)
	if err != nil {
		return fmt.Errorf("add community member: %w", err)
	}
	return nil
}

func (r *repository) RemoveMember(ctx context.Context, communityID, userID int) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM community_members WHERE community_id = $1 AND user_id = $2`, communityID, userID)
	if err != nil {
		return fmt.Errorf("remove community member: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotMember
	}
	return nil
}

func (r *repository) ListMembers(ctx context.Context, communityID int) ([]Member, error) {
	out := []Member{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT m.community_id, m.user_id, u.name AS user_name, m.joined_at
		FROM community_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.community_id = $1
		ORDER BY u.name, m.user_id`, communityID)
	if err != nil {
		return nil, fmt.Errorf("list community members: %w", err)
	}
	return out, nil
}

func (r *repository) CreatePost(ctx context.Context, p *Post) (*Post, error) {
	var id int
	err := r.db.GetContext(ctx, &id, `
		INSERT INTO posts (community_id, author_id, content)
		VALUES ($1, $2, $3)
		RETURNING id`, p.CommunityID, p.AuthorID, p.Content)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return r.GetPost(ctx, id)
}

func (r *repository) posts() squirrel.SelectBuilder {
	return r.sb.Select(postColumns...).From("posts p").Join("users u ON u.id = p.author_id")
}

func (r *repository) GetPost(ctx context.Context, id int) (*Post, error) {
	query, args, err := r.posts().Where(squirrel.Eq{"p.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build post query: %w", err)
	}
	var p Post
	if err := r.db.GetContext(ctx, &p, query, args...); err != nil {
		if db.IsNotFound(err) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	return &p, nil
}

// ListPosts pages through a community's posts newest first, flagging the ones viewerID liked.
func (r *repository) ListPosts(ctx context.Context, communityID, viewerID, limit, offset int) ([]Post, int, error) {
	var total int
	countQuery, countArgs, err := r.sb.Select("COUNT(*)").From("posts").Where(squirrel.Eq{"community_id": communityID}).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count posts query: %w", err)
	}
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	query, args, err := r.posts().
		Column(squirrel.Expr("EXISTS (SELECT 1 FROM post_likes l WHERE l.post_id = p.id AND l.user_id = ?) AS liked_by_me", viewerID)).
		Where(squirrel.Eq{"p.community_id": communityID}).
		OrderBy("p.created_at DESC", "p.id DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list posts query: %w", err)
	}
	posts := []Post{}
	if err := r.db.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	return posts, total, nil
}

func (r *repository) DeletePost(ctx context.Context, id int) error {
	return r.deleteByID(ctx, `DELETE FROM posts WHERE id = $1`, id, ErrPostNotFound)
}

func (r *repository) deleteByID(ctx context.Context, query string, id int, notFound error) error {
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return notFound
	}
	return nil
}

func (r *repository) CreateComment(ctx context.Context, c *Comment) (*Comment, error) {
	var id int
	err := r.db.GetContext(ctx, &id, `
		INSERT INTO comments (post_id, parent_id, author_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id`, c.PostID, c.ParentID, c.AuthorID, c.Content)
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return r.GetComment(ctx, id)
}

func (r *repository) GetComment(ctx context.Context, id int) (*Comment, error) {
	var c Comment
	if err := r.db.GetContext(ctx, &c, commentSelect+` WHERE cm.id = $1`, id); err != nil {
		if db.IsNotFound(err) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return &c, nil
}

func (r *repository) ListComments(ctx context.Context, postID int) ([]Comment, error) {
	out := []Comment{}
	if err := r.db.SelectContext(ctx, &out, commentSelect+` WHERE cm.post_id = $1 ORDER BY cm.created_at, cm.id`, postID); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return out, nil
}

func (r *repository) DeleteComment(ctx context.Context, id int) error {
	return r.deleteByID(ctx, `DELETE FROM comments WHERE id = $1`, id, ErrCommentNotFound)
}

func (r *repository) Like(ctx context.Context, postID, userID int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2)
		ON CONFLICT (post_id, user_id) DO NOTHING`, postID, userID)
	if err != nil {
		return fmt.Errorf("like post: %w", err)
	}
	return nil
}

func (r *repository) Unlike(ctx context.Context, postID, userID int) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID); err != nil {
		return fmt.Errorf("unlike post: %w", err)
	}
	return nil
}

func (r *repository) CountLikes(ctx context.Context, postID int) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM post_likes WHERE post_id = $1`, postID); err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return n, nil
}
