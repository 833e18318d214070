package server

import (
	"context"
	"net/http"
	"time"

	"fitcoach/internal/api"
	"fitcoach/internal/auth"
	"fitcoach/internal/clientprogram"
	"fitcoach/internal/community"
	"fitcoach/internal/config"
	"fitcoach/internal/email"
	"fitcoach/internal/event"
	"fitcoach/internal/exercise"
	"fitcoach/internal/media"
	"fitcoach/internal/notification"
	"fitcoach/internal/program"
	"fitcoach/internal/schedule"
	"fitcoach/internal/session"
	"fitcoach/internal/storage"
	"fitcoach/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Server struct {
	router  *gin.Engine
	http    *http.Server
	db      *sqlx.DB
	config  *config.Config
	email   *email.Service
	limiter *RateLimiter
}

type handlers struct {
	users          *user.Handler
	exercises      *exercise.Handler
	programs       *program.Handler
	clientPrograms *clientprogram.Handler
	schedules      *schedule.Handler
	sessions       *session.Handler
	notifications  *notification.Handler
	events         *event.Handler
	communities    *community.Handler
	media          *media.Handler
}

// New wires repositories, services and handlers onto one router. The limiter's
// cleanup loop runs until ctx is cancelled.
func New(ctx context.Context, db *sqlx.DB, cfg *config.Config, emailService *email.Service, files storage.FileStorage) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	limiter := NewRateLimiter(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst, 3*time.Minute)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		RequestIDMiddleware(),
		RequestLoggingMiddleware(),
		MetricsMiddleware(),
		corsMiddleware(),
	)

	router.GET("/health", Health)
	router.GET("/ready", Ready(map[string]func(context.Context) error{
		"database": db.PingContext,
		"redis":    emailService.Ping,
	}))
	router.GET("/metrics", Metrics(func(ctx context.Context) { emailService.QueueLength(ctx) }))
	if cfg.EnableAPIDocs {
		SetupSwagger(router)
	}

	registerRoutes(router.Group("/api", RateLimitMiddleware(limiter)), cfg.JWTSecret, buildHandlers(db, cfg, emailService, files))

	return &Server{
		router:  router,
		db:      db,
		config:  cfg,
		email:   emailService,
		limiter: limiter,
	}
}

func buildHandlers(db *sqlx.DB, cfg *config.Config, mailer event.Mailer, files storage.FileStorage) handlers {
	api.RegisterValidators()

	userRepo := user.NewRepository(db)
	exerciseRepo := exercise.NewRepository(db)
	programRepo := program.NewRepository(db)
	notificationSvc := notification.NewService(notification.NewRepository(db), userRepo)
	clientProgramSvc := clientprogram.NewService(clientprogram.NewRepository(db), programRepo, exerciseRepo, userRepo, notificationSvc)
	scheduleSvc := schedule.NewService(schedule.NewRepository(db), clientProgramSvc, userRepo)

	return handlers{
		users:          user.NewHandler(user.NewService(userRepo, cfg.JWTSecret, cfg.JWTRefreshSecret)),
		exercises:      exercise.NewHandler(exercise.NewService(exerciseRepo)),
		programs:       program.NewHandler(program.NewService(programRepo, exerciseRepo)),
		clientPrograms: clientprogram.NewHandler(clientProgramSvc),
		schedules:      schedule.NewHandler(scheduleSvc),
		sessions:       session.NewHandler(session.NewService(session.NewRepository(db), clientProgramSvc, scheduleSvc, userRepo, notificationSvc)),
		notifications:  notification.NewHandler(notificationSvc),
		events:         event.NewHandler(event.NewService(event.NewRepository(db), userRepo, notificationSvc, mailer)),
		communities:    community.NewHandler(community.NewService(community.NewRepository(db), userRepo)),
		media:          media.NewHandler(media.NewService(media.NewRepository(db), files, userRepo)),
	}
}

// NewAPIRouter mounts the /api routes without the operational middleware or system endpoints.
func NewAPIRouter(db *sqlx.DB, cfg *config.Config, mailer event.Mailer, files storage.FileStorage) *gin.Engine {
	r := gin.New()
	registerRoutes(r.Group("/api"), cfg.JWTSecret, buildHandlers(db, cfg, mailer, files))
	return r
}

func registerRoutes(root *gin.RouterGroup, secret string, h handlers) {
	public := root.Group("/auth")
	{
		public.POST("/register", h.users.Register)
		public.POST("/login", h.users.Login)
		public.POST("/refresh", h.users.RefreshToken)
	}

	protected := root.Group("", auth.AuthMiddleware(secret))
	coach := protected.Group("", auth.RequireRole(auth.RoleInstructor, auth.RoleAdmin))

	protected.GET("/me", h.users.GetMe)
	coach.POST("/clients", h.users.CreateClient)
	coach.GET("/clients", h.users.ListClients)
	protected.GET("/clients/:clientID", h.users.GetClient)
	coach.POST("/clients/:clientID/nudge", h.notifications.Nudge)

	protected.GET("/exercises", h.exercises.List)
	protected.GET("/exercises/:id", h.exercises.Get)
	coach.POST("/exercises", h.exercises.Create)
	coach.PUT("/exercises/:id", h.exercises.Update)
	coach.DELETE("/exercises/:id", h.exercises.Delete)

	protected.GET("/programs", h.programs.List)
	protected.GET("/programs/:id", h.programs.Get)
	coach.POST("/programs", h.programs.Create)
	coach.PUT("/programs/:id", h.programs.Update)
	coach.DELETE("/programs/:id", h.programs.Delete)
	coach.POST("/programs/:id/duplicate", h.programs.Duplicate)
	coach.POST("/programs/:id/items", h.programs.AddItems)
	coach.PUT("/programs/:id/items/reorder", h.programs.ReorderItems)
	coach.PUT("/programs/:id/items/:itemID", h.programs.UpdateItem)
	coach.DELETE("/programs/:id/items/:itemID", h.programs.RemoveItem)

	// Clients may manage programs they picked from the library; the service enforces ownership.
	protected.POST("/client-programs", h.clientPrograms.Assign)
	protected.GET("/clients/:clientID/programs", h.clientPrograms.ListForClient)
	protected.PUT("/clients/:clientID/programs/reorder", h.clientPrograms.ReorderPrograms)
	protected.GET("/client-programs/:id", h.clientPrograms.Get)
	protected.PUT("/client-programs/:id", h.clientPrograms.Update)
	protected.DELETE("/client-programs/:id", h.clientPrograms.Unassign)
	protected.GET("/client-programs/:id/effective", h.clientPrograms.Effective)
	protected.POST("/client-programs/:id/items", h.clientPrograms.AddItem)
	protected.PUT("/client-programs/:id/items/reorder", h.clientPrograms.ReorderItems)
	protected.PUT("/client-programs/:id/items/:exerciseID", h.clientPrograms.CustomizeItem)
	protected.DELETE("/client-programs/:id/items/:exerciseID", h.clientPrograms.ResetItem)
	protected.POST("/client-programs/:id/items/:exerciseID/remove", h.clientPrograms.RemoveItem)
	protected.POST("/client-programs/:id/items/:exerciseID/restore", h.clientPrograms.RestoreItem)

	protected.POST("/client-programs/:id/schedule", h.schedules.ScheduleDates)
	protected.POST("/client-programs/:id/schedule/weekly", h.schedules.ScheduleWeekly)
	protected.GET("/scheduled-programs", h.schedules.List)
	protected.PUT("/scheduled-programs/:id", h.schedules.UpdateNotes)
	protected.DELETE("/scheduled-programs/:id", h.schedules.Delete)
	protected.POST("/scheduled-programs/:id/complete", h.schedules.Complete)
	protected.POST("/scheduled-programs/:id/uncomplete", h.schedules.Uncomplete)

	protected.POST("/client-programs/:id/sessions", h.sessions.Start)
	protected.GET("/sessions", h.sessions.List)
	protected.GET("/sessions/:id", h.sessions.Get)
	protected.PUT("/sessions/:id/exercises/:exerciseID", h.sessions.RecordExercise)
	protected.POST("/sessions/:id/finish", h.sessions.Finish)
	coach.POST("/sessions/:id/kudos", h.sessions.GiveKudos)

	protected.GET("/notifications", h.notifications.List)
	protected.GET("/notifications/unread-count", h.notifications.UnreadCount)
	protected.POST("/notifications/read-all", h.notifications.MarkAllRead)
	protected.POST("/notifications/:id/read", h.notifications.MarkRead)

	protected.GET("/events", h.events.List)
	protected.GET("/events/:id", h.events.Get)
	coach.POST("/events", h.events.Create)
	coach.PUT("/events/:id", h.events.Update)
	coach.DELETE("/events/:id", h.events.Cancel)
	protected.POST("/events/:id/register", h.events.Register)
	protected.DELETE("/events/:id/register", h.events.Unregister)
	coach.GET("/events/:id/registrations", h.events.ListAttendees)

	protected.GET("/communities", h.communities.ListMine)
	coach.POST("/communities", h.communities.Create)
	protected.GET("/communities/:id/members", h.communities.ListMembers)
	coach.POST("/communities/:id/members", h.communities.AddMember)
	protected.DELETE("/communities/:id/members/:userID", h.communities.RemoveMember)
	protected.GET("/communities/:id/posts", h.communities.ListPosts)
	protected.POST("/communities/:id/posts", h.communities.CreatePost)
	protected.DELETE("/posts/:postID", h.communities.DeletePost)
	protected.GET("/posts/:postID/comments", h.communities.ListComments)
	protected.POST("/posts/:postID/comments", h.communities.CreateComment)
	protected.POST("/posts/:postID/like", h.communities.Like)
	protected.DELETE("/posts/:postID/like", h.communities.Unlike)
	protected.DELETE("/comments/:commentID", h.communities.DeleteComment)

	protected.GET("/media", h.media.List)
	protected.GET("/media/:id", h.media.Get)
	coach.POST("/media", h.media.CreateUpload)
	coach.DELETE("/media/:id", h.media.Delete)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:              ":" + port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
