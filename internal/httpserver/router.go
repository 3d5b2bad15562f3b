package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rfpflow/internal/api"
)

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	authHandler *api.AuthHandler,
	rfpHandler *api.RFPHandler,
	vendorHandler *api.VendorHandler,
	proposalHandler *api.ProposalHandler,
	emailHandler *api.EmailHandler,
	jwtSecret string,
) *Router {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(MetricsMiddleware())

	// Public
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// The inbound webhook is called by the mail provider, not by users.
	r.POST("/api/email/inbound", emailHandler.Inbound)

	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "OK",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	// Protected
	auth := r.Group("/api")
	auth.Use(AuthMiddleware(jwtSecret))
	{
		auth.POST("/rfps", rfpHandler.Create)
		auth.GET("/rfps", rfpHandler.List)
		auth.POST("/rfps/send", rfpHandler.Send)
		auth.GET("/rfps/:id", rfpHandler.Get)
		auth.PUT("/rfps/:id", rfpHandler.Update)
		auth.DELETE("/rfps/:id", rfpHandler.Delete)
		auth.GET("/rfps/:id/vendors", rfpHandler.Vendors)
		auth.GET("/rfps/:id/proposals", rfpHandler.Proposals)
		auth.GET("/rfps/:id/proposals/archived", rfpHandler.ArchivedProposals)
		auth.GET("/rfps/:id/compare", rfpHandler.Compare)

		auth.POST("/vendors", vendorHandler.Create)
		auth.GET("/vendors", vendorHandler.List)
		auth.GET("/vendors/:id", vendorHandler.Get)
		auth.PUT("/vendors/:id", vendorHandler.Update)
		auth.DELETE("/vendors/:id", vendorHandler.Delete)

		auth.POST("/proposals", proposalHandler.Create)
		auth.GET("/proposals/rfp/:rfpId", proposalHandler.ListByRFP)
		auth.POST("/proposals/process-pending", proposalHandler.ProcessPending)
		auth.GET("/proposals/:id", proposalHandler.Get)
		auth.DELETE("/proposals/:id", proposalHandler.Delete)
		auth.POST("/proposals/:id/process", proposalHandler.Process)
		auth.POST("/proposals/:id/reprocess", proposalHandler.Reprocess)

		auth.GET("/email/status/:messageId", emailHandler.Status)
	}

	return &Router{Engine: r}
}

func (r *Router) Run(port string) error {
	return r.Engine.Run(port)
}
