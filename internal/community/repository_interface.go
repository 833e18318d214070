package community

import "context"

type Repository interface {
	CreateCommunity(ctx context.Context, c *Community) (*Community, error)
	GetCommunity(ctx context.Context, id int) (*Community, error)
	ListForUser(ctx context.Context, userID int) ([]Community, error)
	IsMember(ctx context.Context, communityID, userID int) (bool, error)
	AddMember(ctx context.Context, communityID, userID int) error
	RemoveMember(ctx context.Context, communityID, userID int) error
	ListMembers(ctx context.Context, communityID int) ([]Member, error)

	CreatePost(ctx context.Context, p *Post) (*Post, error)
	GetPost(ctx context.Context, id int) (*Post, error)
	ListPosts(ctx context.Context, communityID, viewerID, limit, offset int) ([]Post, int, error)
	DeletePost(ctx context.Context, id int) error

	CreateComment(ctx context.Context, c *Comment) (*Comment, error)
	GetComment(ctx context.Context, id int) (*Comment, error)
	ListComments(ctx context.Context, postID int) ([]Comment, error)
	DeleteComment(ctx context.Context, id int) error

	Like(ctx context.Context, postID, userID int) error
	Unlike(ctx context.Context, postID, userID int) error
	CountLikes(ctx context.Context, postID int) (int, error)
}
