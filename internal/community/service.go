package community

import (
	"context"
	"errors"
	"fmt"

	"fitcoach/internal/api"
	"fitcoach/internal/auth"
	"fitcoach/internal/logger"
	"fitcoach/internal/user"
)

var (
	ErrCommunityNotFound = errors.New("community not found")
	ErrPostNotFound      = errors.New("post not found")
	ErrCommentNotFound   = errors.New("comment not found")
	ErrNotMember         = errors.New("not a member of this community")
)

type Service interface {
	Create(ctx context.Context, p auth.Principal, req CommunityRequest) (*Community, error)
	ListMine(ctx context.Context, p auth.Principal) ([]Community, error)
	AddMember(ctx context.Context, p auth.Principal, communityID, userID int) error
	RemoveMember(ctx context.Context, p auth.Principal, communityID, userID int) error
	ListMembers(ctx context.Context, p auth.Principal, communityID int) ([]Member, error)

	CreatePost(ctx context.Context, p auth.Principal, communityID int, content string) (*Post, error)
	ListPosts(ctx context.Context, p auth.Principal, communityID, limit, offset int) ([]Post, int, error)
	DeletePost(ctx context.Context, p auth.Principal, postID int) error

	CreateComment(ctx context.Context, p auth.Principal, postID int, req CommentRequest) (*Comment, error)
	ListComments(ctx context.Context, p auth.Principal, postID int) ([]Comment, error)
	DeleteComment(ctx context.Context, p auth.Principal, commentID int) error

	Like(ctx context.Context, p auth.Principal, postID int) (*LikeResponse, error)
	Unlike(ctx context.Context, p auth.Principal, postID int) (*LikeResponse, error)
}

type service struct {
	repo  Repository
	users user.Finder
}

func NewService(repo Repository, users user.Finder) Service {
	return &service{repo: repo, users: users}
}

func owns(p auth.Principal, c *Community) bool {
	return p.IsAdmin() || c.InstructorID == p.UserID
}

// readable loads a community the caller owns or belongs to.
func (s *service) readable(ctx context.Context, p auth.Principal, communityID int) (*Community, error) {
	c, err := s.repo.GetCommunity(ctx, communityID)
	if err != nil {
		return nil, err
	}
	if owns(p, c) {
		return c, nil
	}
	member, err := s.repo.IsMember(ctx, communityID, p.UserID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, api.ErrForbidden
	}
	return c, nil
}

func (s *service) Create(ctx context.Context, p auth.Principal, req CommunityRequest) (*Community, error) {
	if !p.IsInstructor() {
		return nil, api.ErrForbidden
	}
	c, err := s.repo.CreateCommunity(ctx, &Community{InstructorID: p.UserID, Name: req.Name, Description: req.Description})
	if err != nil {
		return nil, err
	}
	logger.Info("community created", "community_id", c.ID, "instructor_id", p.UserID)
	return c, nil
}

func (s *service) ListMine(ctx context.Context, p auth.Principal) ([]Community, error) {
	return s.repo.ListForUser(ctx, p.UserID)
}

// AddMember lets the owner add one of their own clients; admins may add any user.
func (s *service) AddMember(ctx context.Context, p auth.Principal, communityID, userID int) error {
	c, err := s.repo.GetCommunity(ctx, communityID)
	if err != nil {
		return err
	}
	if !owns(p, c) {
		return api.ErrForbidden
	}
	if p.IsAdmin() {
		_, err = s.users.FindByID(ctx, userID)
	} else {
		_, err = user.EnsureClientOf(ctx, s.users, c.InstructorID, userID)
	}
	if err != nil {
		return err
	}
	return s.repo.AddMember(ctx, communityID, userID)
}

// RemoveMember is allowed for the owner, and for members leaving on their own.
func (s *service) RemoveMember(ctx context.Context, p auth.Principal, communityID, userID int) error {
	c, err := s.repo.GetCommunity(ctx, communityID)
	if err != nil {
		return err
	}
	if !owns(p, c) && p.UserID != userID {
		return api.ErrForbidden
	}
	return s.repo.RemoveMember(ctx, communityID, userID)
}

func (s *service) ListMembers(ctx context.Context, p auth.Principal, communityID int) ([]Member, error) {
	if _, err := s.readable(ctx, p, communityID); err != nil {
		return nil, err
	}
	return s.repo.ListMembers(ctx, communityID)
}

func (s *service) CreatePost(ctx context.Context, p auth.Principal, communityID int, content string) (*Post, error) {
	if _, err := s.readable(ctx, p, communityID); err != nil {
		return nil, err
	}
	return s.repo.CreatePost(ctx, &Post{CommunityID: communityID, AuthorID: p.UserID, Content: content})
}

func (s *service) ListPosts(ctx context.Context, p auth.Principal, communityID, limit, offset int) ([]Post, int, error) {
	if _, err := s.readable(ctx, p, communityID); err != nil {
		return nil, 0, err
	}
	return s.repo.ListPosts(ctx, communityID, p.UserID, limit, offset)
}

// canReadPost checks that the post exists and the caller can see its community.
func (s *service) canReadPost(ctx context.Context, p auth.Principal, postID int) error {
	post, err := s.repo.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	_, err = s.readable(ctx, p, post.CommunityID)
	return err
}

func (s *service) DeletePost(ctx context.Context, p auth.Principal, postID int) error {
	post, err := s.repo.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != p.UserID {
		c, err := s.repo.GetCommunity(ctx, post.CommunityID)
		if err != nil {
			return err
		}
		if !owns(p, c) {
			return api.ErrForbidden
		}
	}
	return s.repo.DeletePost(ctx, postID)
}

func (s *service) CreateComment(ctx context.Context, p auth.Principal, postID int, req CommentRequest) (*Comment, error) {
	if err := s.canReadPost(ctx, p, postID); err != nil {
		return nil, err
	}

	c := &Comment{PostID: postID, AuthorID: p.UserID, Content: req.Content}
	if req.ParentID != nil {
		parent, err := s.repo.GetComment(ctx, *req.ParentID)
		if err != nil {
			if errors.Is(err, ErrCommentNotFound) {
				return nil, fmt.Errorf("%w: parent comment not found", api.ErrInvalidInput)
			}
			return nil, err
		}
		if parent.PostID != postID {
			return nil, fmt.Errorf("%w: parent comment belongs to another post", api.ErrInvalidInput)
		}
		root := rootOf(parent)
		c.ParentID = &root
	}
	return s.repo.CreateComment(ctx, c)
}

func (s *service) ListComments(ctx context.Context, p auth.Principal, postID int) ([]Comment, error) {
	if err := s.canReadPost(ctx, p, postID); err != nil {
		return nil, err
	}
	flat, err := s.repo.ListComments(ctx, postID)
	if err != nil {
		return nil, err
	}
	return Thread(flat), nil
}

func (s *service) DeleteComment(ctx context.Context, p auth.Principal, commentID int) error {
	c, err := s.repo.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	if c.AuthorID != p.UserID && !p.IsAdmin() {
		return api.ErrForbidden
	}
	return s.repo.DeleteComment(ctx, commentID)
}

func (s *service) Like(ctx context.Context, p auth.Principal, postID int) (*LikeResponse, error) {
	if err := s.canReadPost(ctx, p, postID); err != nil {
		return nil, err
	}
	if err := s.repo.Like(ctx, postID, p.UserID); err != nil {
		return nil, err
	}
	return s.likeState(ctx, postID, true)
}

func (s *service) Unlike(ctx context.Context, p auth.Principal, postID int) (*LikeResponse, error) {
	if err := s.canReadPost(ctx, p, postID); err != nil {
		return nil, err
	}
	if err := s.repo.Unlike(ctx, postID, p.UserID); err != nil {
		return nil, err
	}
	return s.likeState(ctx, postID, false)
}

func (s *service) likeState(ctx context.Context, postID int, liked bool) (*LikeResponse, error) {
	n, err := s.repo.CountLikes(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &LikeResponse{Liked: liked, LikeCount: n}, nil
}
