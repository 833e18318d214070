package media

import "time"

const (
	KindImage    = "IMAGE"
	KindVideo    = "VIDEO"
	KindDocument = "DOCUMENT"
)

// MaxSizeBytes caps a single upload at 500 MiB.
const MaxSizeBytes int64 = 500 << 20

type Media struct {
	ID           int       `db:"id" json:"id"`
	InstructorID int       `db:"instructor_id" json:"instructor_id"`
	Title        string    `db:"title" json:"title"`
	Kind         string    `db:"kind" json:"kind"`
	ContentType  string    `db:"content_type" json:"content_type"`
	SizeBytes    int64     `db:"size_bytes" json:"size_bytes"`
	ObjectKey    string    `db:"object_key" json:"object_key"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	URL          string    `db:"-" json:"url,omitempty"`
}

type UploadRequest struct {
	Title       string `json:"title" binding:"required,notblank,max=255" example:"Squat demo"`
	Kind        string `json:"kind" binding:"required,oneof=IMAGE VIDEO DOCUMENT" example:"VIDEO"`
	ContentType string `json:"content_type" binding:"required,max=100" example:"video/mp4"`
	SizeBytes   int64  `json:"size_bytes" binding:"required,gt=0" example:"10485760"`
}

// UploadResponse carries the stored metadata and the URL the client PUTs the bytes to.
type UploadResponse struct {
	Media     *Media    `json:"media"`
	UploadURL string    `json:"upload_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ListFilter struct {
	InstructorID int
	Kind         string
	Limit        int
	Offset       int
}
