package media

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fitcoach/internal/api"
	"fitcoach/internal/auth"
	"fitcoach/internal/logger"
	"fitcoach/internal/storage"
	"fitcoach/internal/user"

	"github.com/google/uuid"
)

var (
	ErrMediaNotFound = errors.New("media not found")
	ErrFileTooLarge  = errors.New("file exceeds the 500 MiB limit")
)

type Service interface {
	CreateUpload(ctx context.Context, p auth.Principal, req UploadRequest) (*UploadResponse, error)
	List(ctx context.Context, p auth.Principal, f ListFilter) ([]Media, int, error)
	Get(ctx context.Context, p auth.Principal, id int) (*Media, error)
	Delete(ctx context.Context, p auth.Principal, id int) error
}

type service struct {
	repo   Repository
	files  storage.FileStorage
	users  user.Finder
	expiry time.Duration
	now    func() time.Time
}

func NewService(repo Repository, files storage.FileStorage, users user.Finder) Service {
	return &service{
		repo:   repo,
		files:  files,
		users:  users,
		expiry: storage.DefaultPresignExpiry,
		now:    time.Now,
	}
}

// objectKey namespaces uploads per instructor; the title never reaches the key.
func objectKey(instructorID int) string {
	return fmt.Sprintf("media/%d/%s", instructorID, uuid.NewString())
}

func checkContentType(kind, contentType string) error {
	switch kind {
	case KindImage:
		if !strings.HasPrefix(contentType, "image/") {
			return fmt.Errorf("%w: IMAGE requires an image/* content type", api.ErrInvalidInput)
		}
	case KindVideo:
		if !strings.HasPrefix(contentType, "video/") {
			return fmt.Errorf("%w: VIDEO requires a video/* content type", api.ErrInvalidInput)
		}
	}
	return nil
}

func (s *service) CreateUpload(ctx context.Context, p auth.Principal, req UploadRequest) (*UploadResponse, error) {
	if !p.IsInstructor() && !p.IsAdmin() {
		return nil, api.ErrForbidden
	}
	if req.SizeBytes > MaxSizeBytes {
		return nil, ErrFileTooLarge
	}
	if err := checkContentType(req.Kind, req.ContentType); err != nil {
		return nil, err
	}

	key := objectKey(p.UserID)
	url, err := s.files.PresignUpload(ctx, key, req.ContentType, s.expiry)
	if err != nil {
		return nil, err
	}

	m, err := s.repo.Create(ctx, &Media{
		InstructorID: p.UserID,
		Title:        req.Title,
		Kind:         req.Kind,
		ContentType:  req.ContentType,
		SizeBytes:    req.SizeBytes,
		ObjectKey:    key,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("media upload issued", "media_id", m.ID, "kind", m.Kind, "size_bytes", m.SizeBytes)
	return &UploadResponse{Media: m, UploadURL: url, ExpiresAt: s.now().Add(s.expiry)}, nil
}

// libraryOwner is the instructor whose library the caller browses; 0 means every library (admins).
func (s *service) libraryOwner(ctx context.Context, p auth.Principal) (int, error) {
	switch {
	case p.IsAdmin():
		return 0, nil
	case p.IsInstructor():
		return p.UserID, nil
	}
	u, err := s.users.FindByID(ctx, p.UserID)
	if err != nil {
		return 0, err
	}
	if u.InstructorID == nil {
		return 0, api.ErrForbidden
	}
	return *u.InstructorID, nil
}

func (s *service) List(ctx context.Context, p auth.Principal, f ListFilter) ([]Media, int, error) {
	owner, err := s.libraryOwner(ctx, p)
	if err != nil {
		return nil, 0, err
	}
	if owner != 0 {
		f.InstructorID = owner
	}
	return s.repo.List(ctx, f)
}

// Get attaches a short-lived download URL.
func (s *service) Get(ctx context.Context, p auth.Principal, id int) (*Media, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	owner, err := s.libraryOwner(ctx, p)
	if err != nil {
		return nil, err
	}
	if owner != 0 && owner != m.InstructorID {
		return nil, ErrMediaNotFound
	}

	m.URL, err = s.files.PresignDownload(ctx, m.ObjectKey, s.expiry)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Delete removes the object first so a failed storage call leaves the row for a retry.
func (s *service) Delete(ctx context.Context, p auth.Principal, id int) error {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !p.IsAdmin() && m.InstructorID != p.UserID {
		return api.ErrForbidden
	}

	if err := s.files.Delete(ctx, m.ObjectKey); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logger.Info("media deleted", "media_id", id)
	return nil
}
