package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/sujalbistaa/openforum/internal/store"
	"github.com/sujalbistaa/openforum/internal/ws"
)

// SetupRoutes configures all application routes and middleware.
func SetupRoutes(router *gin.Engine, s store.Store, hub *ws.Hub, corsOrigin string) {

	// --- Dependencies ---
	env := &Env{Store: s, Hub: hub}

	// --- Middleware ---
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(SecurityHeadersMiddleware()) // Security headers

	if corsOrigin == "" {
		corsOrigin = "*"
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{corsOrigin},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: corsOrigin != "*",
	}))

	router.SetHTMLTemplate(Templates())

	// --- Pages ---
	router.GET("/", env.ListPage)
	router.GET("/create", env.CreatePage)
	router.POST("/create", env.SubmitPost)
	router.GET("/post/:id", env.PostPage)
	router.POST("/post/:id/upvote", env.UpvotePage)
	router.POST("/post/:id/edit", env.SaveEditPage)
	router.POST("/post/:id/delete", env.DeletePage)
	router.POST("/post/:id/comments", env.AddCommentPage)

	// --- API Routes ---
	api := router.Group("/api")
	{
		api.GET("/posts", env.GetPosts)
		api.POST("/posts", env.CreatePost)
		api.GET("/posts/:id", env.GetPost)
		api.PATCH("/posts/:id", env.UpdatePost)
		api.DELETE("/posts/:id", env.DeletePost)
		api.POST("/posts/:id/upvote", env.UpvotePost)
		api.POST("/posts/:id/comments", env.AddComment)
	}

	// --- WebSocket Route ---
	router.GET("/ws", func(c *gin.Context) {
		ws.ServeWs(hub, c.Writer, c.Request)
	})
}
