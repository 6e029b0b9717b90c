package routes

import (
	"editorial-workflow-api/controllers"
	"editorial-workflow-api/middleware"
	"editorial-workflow-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Authentication
			public.POST("/login", controllers.Login)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Editorial Workflow API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Submissions
			submissions := protected.Group("/submissions")
			{
				submissions.GET("", controllers.GetSubmissions)
				submissions.GET("/:id", controllers.GetSubmission)
				submissions.GET("/:id/history", controllers.GetSubmissionHistory)
				submissions.GET("/:id/decisions", controllers.GetDecisions)
				submissions.GET("/:id/resubmit-eligibility", controllers.GetResubmitEligibility)

				// Authors create drafts and resubmit revisions
				submissions.POST("", middleware.RequireRole(models.RoleAuthor, models.RoleEditor, models.RoleAdmin), controllers.CreateSubmission)
				submissions.POST("/:id/resubmit", controllers.ResubmitRevision)

				// Editors drive the workflow
				submissions.POST("/:id/reviewers", middleware.RequireRole(models.RoleEditor, models.RoleAdmin), controllers.AssignReviewer)
				submissions.POST("/:id/decisions", middleware.RequireRole(models.RoleEditor, models.RoleAdmin), controllers.RecordDecision)

				// Production
				submissions.POST("/:id/galleys", middleware.RequireRole(models.RoleEditor, models.RoleAdmin), controllers.AddGalley)
				submissions.POST("/:id/schedule", middleware.RequireRole(models.RoleEditor, models.RoleAdmin), controllers.SchedulePublication)
				submissions.POST("/:id/publish", middleware.RequireRole(models.RoleEditor, models.RoleAdmin), controllers.PublishNow)
			}

			// Review assignments
			assignments := protected.Group("/assignments")
			{
				assignments.GET("/mine", controllers.GetMyAssignments)
				assignments.POST("/:id/respond", middleware.RequireRole(models.RoleReviewer, models.RoleEditor, models.RoleAdmin), controllers.RespondToAssignment)
				assignments.POST("/:id/review", middleware.RequireRole(models.RoleReviewer, models.RoleEditor, models.RoleAdmin), controllers.SubmitReview)
				assignments.DELETE("/:id", middleware.RequireRole(models.RoleEditor, models.RoleAdmin), controllers.CancelAssignment)
			}

			// Review rounds
			rounds := protected.Group("/rounds")
			{
				rounds.GET("/:id/assignments", middleware.RequireRole(models.RoleEditor, models.RoleAdmin), controllers.GetRoundAssignments)
			}

			// Issues
			issues := protected.Group("/issues")
			{
				issues.PUT("/:id/current", middleware.RequireRole(models.RoleEditor, models.RoleAdmin), controllers.SetCurrentIssue)
			}

			// Notifications
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", controllers.GetNotifications)
				notifications.GET("/unread-count", controllers.GetUnreadNotificationCount)
				notifications.PUT("/:id/read", controllers.MarkNotificationRead)
				notifications.PUT("/read-all", controllers.MarkAllNotificationsRead)
			}
		}
	}

	// 404 handler
	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"error": "Route not found"})
	})
}
