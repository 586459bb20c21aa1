package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/clubhub/internal/app/controllers"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/middleware"
)

// Controllers groups the handlers mounted under /api/v1.
type Controllers struct {
	Auth      *controllers.AuthController
	User      *controllers.UserController
	Club      *controllers.ClubController
	Request   *controllers.RequestController
	Event     *controllers.EventController
	Poll      *controllers.PollController
	Feedback  *controllers.FeedbackController
	Analytics *controllers.AnalyticsController
	Health    *controllers.HealthController
}

// SetupRouter configures all application routes. live serves the poll
// websocket and may be nil.
func SetupRouter(
	router *gin.Engine,
	c Controllers,
	authMiddleware *middleware.AuthMiddleware,
	live gin.HandlerFunc,
) {
	router.GET("/health", c.Health.Health)

	// API version group
	v1 := router.Group("/api/v1")
	v1.GET("/health", c.Health.Health)

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", c.Auth.Register)
		auth.POST("/login", c.Auth.Login)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	adminOnly := authMiddleware.RoleRequired(models.RoleAdmin)

	authProtected := authenticated.Group("/auth")
	{
		authProtected.GET("/profile", c.Auth.GetProfile)
		authProtected.PUT("/change-password", c.Auth.ChangePassword)
		authProtected.PUT("/update-profile", c.Auth.UpdateProfile)
		authProtected.POST("/create-coordinator", adminOnly, c.Auth.CreateCoordinator)
	}

	users := authenticated.Group("/users")
	users.Use(adminOnly)
	{
		users.GET("", c.User.ListUsers)
		users.GET("/:id", c.User.GetUserByID)
		users.DELETE("/:id", c.User.DeleteUser)
	}

	clubs := authenticated.Group("/clubs")
	{
		clubs.GET("", c.Club.ListClubs)
		clubs.GET("/my", c.Club.MyClubs)
		clubs.GET("/requests/my", c.Request.MyRequests)
		clubs.PUT("/requests/:requestId", c.Request.ResolveRequest)
		clubs.GET("/:id", c.Club.GetClub)
		clubs.POST("", adminOnly, c.Club.CreateClub)
		clubs.PUT("/:id", c.Club.UpdateClub)
		clubs.DELETE("/:id", adminOnly, c.Club.DeleteClub)
		clubs.POST("/:id/logo", c.Club.UploadLogo)

		// Membership
		clubs.GET("/:id/members", c.Club.ListMembers)
		clubs.POST("/:id/members", c.Club.AddMember)
		clubs.DELETE("/:id/members/:userId", c.Club.RemoveMember)
		clubs.PATCH("/:id/enrollment", c.Club.ToggleEnrollment)
		clubs.POST("/:id/join", c.Club.Join)
		clubs.POST("/:id/enroll", c.Club.Enroll)
		clubs.POST("/:id/leave-request", c.Request.RequestLeave)
		clubs.POST("/:id/join-request", c.Request.RequestJoin)
		clubs.GET("/:id/requests", c.Request.ListClubRequests)
	}

	events := authenticated.Group("/events")
	{
		events.GET("", c.Event.ListEvents)
		events.GET("/my", c.Event.MyEvents)
		events.GET("/pending", adminOnly, c.Event.ListPendingEvents)
		events.GET("/:id", c.Event.GetEvent)
		events.POST("", c.Event.CreateEvent)
		events.PUT("/:id", c.Event.UpdateEvent)
		events.DELETE("/:id", c.Event.DeleteEvent)
		events.PUT("/:id/review", adminOnly, c.Event.ReviewEvent)
		events.POST("/:id/register", c.Event.Register)
		events.DELETE("/:id/register", c.Event.Unregister)
		events.GET("/:id/registrations", c.Event.ListRegistrations)
	}

	polls := authenticated.Group("/polls")
	{
		polls.POST("", c.Poll.CreatePoll)
		polls.GET("/active", c.Poll.ListActivePolls)
		polls.GET("/manage", c.Poll.ListManagedPolls)
		polls.POST("/:id/vote", c.Poll.Vote)
		polls.GET("/:id/results", c.Poll.GetPollResults)
		polls.PUT("/:id/close", c.Poll.ClosePoll)
		polls.DELETE("/:id", c.Poll.DeletePoll)
		if live != nil {
			polls.GET("/:id/live", live)
		}
	}

	feedback := authenticated.Group("/feedback")
	{
		feedback.POST("", c.Feedback.Submit)
		feedback.GET("/club", c.Feedback.ListClubFeedback)
		feedback.GET("/admin", adminOnly, c.Feedback.ListAdminFeedback)
		feedback.GET("/my", c.Feedback.MyFeedback)
		feedback.PUT("/:id/action", c.Feedback.Act)
	}

	analytics := authenticated.Group("/analytics")
	{
		analytics.GET("/admin", adminOnly, c.Analytics.AdminDashboard)
		analytics.GET("/club", c.Analytics.ClubDashboard)
	}
}
