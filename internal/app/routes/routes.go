package routes

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nexasuite/powerup/internal/app/controllers"
	"github.com/nexasuite/powerup/internal/app/models/dto"
	"github.com/nexasuite/powerup/internal/middleware"
	"github.com/nexasuite/powerup/internal/pkg/realtime"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	communityController *controllers.CommunityController,
	challengeController *controllers.ChallengeController,
	workoutController *controllers.WorkoutController,
	realtimeHandler *realtime.Handler,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.GET("/auth/me", authController.GetMyProfile)

		// Community and membership routes
		communities := authenticated.Group("/communities")
		{
			communities.POST("", communityController.CreateCommunity)
			communities.GET("", communityController.ListCommunities)
			communities.POST("/join", communityController.JoinByCode)
			communities.GET("/:id", communityController.GetCommunity)
			communities.DELETE("/:id", communityController.DeleteCommunity)
			communities.POST("/:id/exit", communityController.ExitCommunity)

			// Member and admin management (admin only, enforced in the service)
			communities.POST("/:id/members", communityController.AddMember)
			communities.POST("/:id/members/remove", communityController.RemoveMember)
			communities.POST("/:id/admins", communityController.AddAdmin)
			communities.POST("/:id/admins/remove", communityController.RemoveAdmin)

			// Challenges scoped to a community
			communities.POST("/:id/challenges", challengeController.CreateChallenge)
			communities.GET("/:id/challenges", challengeController.ListChallenges)
		}

		// Challenge routes
		challenges := authenticated.Group("/challenges")
		{
			challenges.GET("/:id", challengeController.GetChallenge)
			challenges.DELETE("/:id", challengeController.DeleteChallenge)
			challenges.POST("/:id/join", challengeController.JoinChallenge)
			challenges.POST("/:id/exit", challengeController.ExitChallenge)
		}

		// Workout routes
		workouts := authenticated.Group("/workouts")
		{
			workouts.POST("", workoutController.RecordWorkout)
			workouts.GET("", workoutController.ListWorkouts)
			workouts.GET("/:id", workoutController.GetWorkout)
			workouts.DELETE("/:id", workoutController.DeleteWorkout)
		}

		// Workout type reference data
		authenticated.GET("/workout-types", workoutController.ListWorkoutTypes)

		// Real-time community feed (members only)
		authenticated.GET("/ws/communities/:id", realtimeHandler.HandleConnection)
	}

	// Health check endpoint (public)
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(200, dto.APIResponse{
			Data: gin.H{"status": "ok"},
		})
	})

	// Server time, used by clients to align workout dates
	v1.GET("/time", func(c *gin.Context) {
		c.JSON(200, dto.NewSuccessResponse(gin.H{"serverTime": time.Now().UTC().Format(time.RFC3339)}))
	})
}
