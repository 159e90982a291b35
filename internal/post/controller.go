package post

import (
	"net/http"

	"blog_backend/internal/apperr"
	"blog_backend/internal/auth"
	"blog_backend/internal/observability"
	"blog_backend/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type PostController struct {
	service PostServiceInterface
	metrics *observability.Metrics
}

func NewPostController(service PostServiceInterface, metrics *observability.Metrics) *PostController {
	return &PostController{
		service: service,
		metrics: metrics,
	}
}

// SetupRoutes registers the /blog routes behind authMiddleware.
func (pc *PostController) SetupRoutes(r gin.IRouter, authMiddleware gin.HandlerFunc) {
	blog := r.Group("/blog")
	blog.Use(authMiddleware)
	{
		blog.POST("", pc.CreatePost)
		blog.PUT("", pc.UpdatePost)
		// Unbounded: returns every post in one response.
		blog.GET("/bulk", pc.ListPosts)
		blog.GET("/:id", pc.GetPost)
	}
}

// CreatePost handles post creation for the authenticated author
func (pc *PostController) CreatePost(c *gin.Context) {
	authorID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"message": "You are not logged in"})
		return
	}

	raw, err := c.GetRawData()
	if err != nil {
		pc.writeError(c, "create", apperr.Internal(err))
		return
	}

	input := validation.CreatePostSchema{}.SafeParse(raw)
	if !input.Success {
		pc.writeError(c, "create", apperr.Validation(input.Err))
		return
	}

	id, err := pc.service.CreatePost(c.Request.Context(), authorID, input.Data)
	if err != nil {
		pc.writeError(c, "create", err)
		return
	}

	pc.metrics.PostWritesTotal.WithLabelValues("create", "success").Inc()
	c.JSON(http.StatusOK, gin.H{"id": id})
}

// UpdatePost handles title/content updates by id
func (pc *PostController) UpdatePost(c *gin.Context) {
	editorID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"message": "You are not logged in"})
		return
	}

	raw, err := c.GetRawData()
	if err != nil {
		pc.writeError(c, "update", apperr.Internal(err))
		return
	}

	input := validation.UpdatePostSchema{}.SafeParse(raw)
	if !input.Success {
		pc.writeError(c, "update", apperr.Validation(input.Err))
		return
	}

	id, err := pc.service.UpdatePost(c.Request.Context(), editorID, input.Data)
	if err != nil {
		pc.writeError(c, "update", err)
		return
	}

	pc.metrics.PostWritesTotal.WithLabelValues("update", "success").Inc()
	c.JSON(http.StatusOK, gin.H{"id": id})
}

// ListPosts returns all posts with their author names
func (pc *PostController) ListPosts(c *gin.Context) {
	posts, err := pc.service.ListPosts(c.Request.Context())
	if err != nil {
		logrus.WithError(err).Error("List posts error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Internal server error",
			"error":   apperr.Detail(err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"blogs": posts})
}

// GetPost returns one post, or a null blog when the id is unknown. Lookup
// failures answer 411, unlike every other route.
func (pc *PostController) GetPost(c *gin.Context) {
	post, err := pc.service.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		logrus.WithError(err).WithField("post_id", c.Param("id")).Error("Get post error")
		c.JSON(http.StatusLengthRequired, gin.H{"message": "Error while fetching blog post !"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"blog": post})
}

// writeError maps create/update failures. These routes expose the cause.
func (pc *PostController) writeError(c *gin.Context, operation string, err error) {
	kind := apperr.KindOf(err)
	pc.metrics.PostWritesTotal.WithLabelValues(operation, kind.String()).Inc()

	switch kind {
	case apperr.KindValidation:
		c.JSON(http.StatusLengthRequired, gin.H{"message": "Inputs are not correct"})
	default:
		logrus.WithError(err).WithField("operation", operation).Error("Post write error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Internal server error",
			"error":   apperr.Detail(err),
		})
	}
}
