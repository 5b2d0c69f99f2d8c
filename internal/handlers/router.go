package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/election-service/internal/services"
	"github.com/SAP-F-2025/election-service/internal/utils"
)

type HandlerManager struct {
	serviceManager      services.ServiceManager
	electionHandler     *ElectionHandler
	positionHandler     *PositionHandler
	candidateHandler    *CandidateHandler
	voteHandler         *VoteHandler
	resultsHandler      *ResultsHandler
	importExportHandler *ImportExportHandler
	dashboardHandler    *DashboardHandler
	userHandler         *UserHandler
	authMiddleware      *CasdoorAuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
	parser TokenParser,
) *HandlerManager {
	authMiddleware := NewCasdoorAuthMiddleware(parser, serviceManager.User(), logger)

	return &HandlerManager{
		serviceManager:      serviceManager,
		electionHandler:     NewElectionHandler(serviceManager.Election(), logger),
		positionHandler:     NewPositionHandler(serviceManager.Position(), logger),
		candidateHandler:    NewCandidateHandler(serviceManager.Candidate(), logger),
		voteHandler:         NewVoteHandler(serviceManager.Vote(), logger),
		resultsHandler:      NewResultsHandler(serviceManager.Results(), logger),
		importExportHandler: NewImportExportHandler(serviceManager.ImportExport(), logger),
		dashboardHandler:    NewDashboardHandler(serviceManager.Dashboard(), logger),
		userHandler:         NewUserHandler(serviceManager.User(), logger),
		authMiddleware:      authMiddleware,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		// Voter routes
		v1.GET("/elections", hm.electionHandler.ListElections)
		v1.GET("/elections/:id", hm.electionHandler.GetBallot)
		v1.POST("/positions/:id/vote", hm.voteHandler.CastVote)
		v1.GET("/me", hm.userHandler.GetMe)
		v1.GET("/me/votes", hm.voteHandler.GetMyVotes)

		admin := v1.Group("/admin")
		admin.Use(hm.authMiddleware.RequireAdmin())
		{
			admin.GET("/dashboard", hm.dashboardHandler.GetDashboard)

			elections := admin.Group("/elections")
			{
				elections.GET("", hm.electionHandler.ListElections)
				elections.POST("", hm.electionHandler.CreateElection)
				elections.POST("/import", hm.importExportHandler.ImportElections)
				elections.GET("/export", hm.importExportHandler.ExportElections)
				elections.GET("/:id", hm.electionHandler.GetElection)
				elections.PUT("/:id", hm.electionHandler.UpdateElection)
				elections.DELETE("/:id", hm.electionHandler.DeleteElection)
				elections.PUT("/:id/status", hm.electionHandler.UpdateElectionStatus)

				// Results
				elections.GET("/:id/results", hm.resultsHandler.GetResults)
				elections.GET("/:id/results/live", hm.resultsHandler.GetLiveResults)
				elections.GET("/:id/results/snapshot", hm.resultsHandler.GetSnapshot)
				elections.GET("/:id/results/export", hm.resultsHandler.ExportCSV)
				elections.GET("/:id/results/export.xlsx", hm.resultsHandler.ExportXLSX)
			}

			positions := admin.Group("/positions")
			{
				positions.GET("", hm.positionHandler.ListPositions)
				positions.POST("", hm.positionHandler.CreatePosition)
				positions.POST("/import", hm.importExportHandler.ImportPositions)
				positions.GET("/export", hm.importExportHandler.ExportPositions)
				positions.GET("/:id", hm.positionHandler.GetPosition)
				positions.PUT("/:id", hm.positionHandler.UpdatePosition)
				positions.DELETE("/:id", hm.positionHandler.DeletePosition)
			}

			candidates := admin.Group("/candidates")
			{
				candidates.GET("", hm.candidateHandler.ListCandidates)
				candidates.POST("", hm.candidateHandler.CreateCandidate)
				candidates.POST("/import", hm.importExportHandler.ImportCandidates)
				candidates.GET("/export", hm.importExportHandler.ExportCandidates)
				candidates.GET("/:id", hm.candidateHandler.GetCandidate)
				candidates.PUT("/:id", hm.candidateHandler.UpdateCandidate)
				candidates.DELETE("/:id", hm.candidateHandler.DeleteCandidate)
			}

			users := admin.Group("/users")
			{
				users.GET("", hm.userHandler.ListUsers)
				users.POST("/import", hm.importExportHandler.ImportUsers)
				users.GET("/export", hm.importExportHandler.ExportUsers)
			}
		}
	}

	router.GET("/health", hm.HealthCheck)
}

// HealthCheck reports whether the database behind the services answers
func (hm *HandlerManager) HealthCheck(c *gin.Context) {
	if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": "election-service",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "election-service",
	})
}
