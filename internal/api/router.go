package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/TomMcAvoy/e-commerce-platform-sub001/internal/storage"
)

// Server is the read-only surface the storefront consumes. The write path is
// the scheduler's alone.
type Server struct {
	store *storage.Store
}

func NewServer(store *storage.Store) *Server {
	return &Server{store: store}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.health)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/articles", s.listArticles)
		v1.GET("/categories", s.listCategories)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// tenantID reads the tenant resolved by the marketplace's middleware. The
// pipeline itself never trusts this header; it only scopes reads.
func tenantID(c *gin.Context) string {
	if t := c.GetHeader("X-Tenant-ID"); t != "" {
		return t
	}
	return "default"
}

func (s *Server) listArticles(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	filter := storage.ArticleFilter{
		Country:  c.Query("country"),
		Category: c.Query("category"),
		SourceID: c.Query("source"),
		Limit:    limit,
		Offset:   offset,
	}

	items, err := s.store.ListArticles(c.Request.Context(), tenantID(c), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "internal_error",
			"message": "internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    items,
	})
}

func (s *Server) listCategories(c *gin.Context) {
	items, err := s.store.ListCategories(c.Request.Context(), tenantID(c), c.Query("name"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "internal_error",
			"message": "internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    items,
	})
}
