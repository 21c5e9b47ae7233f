package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"scroll_feed/internal/domain"
)

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listTags(c *gin.Context) {
	tags, err := s.tags.List(c.Request.Context())
	if err != nil {
		s.logger.Error("failed to list tags", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list tags"})
		return
	}
	if tags == nil {
		tags = []string{}
	}
	c.JSON(http.StatusOK, tags)
}

// listArticles honours readingTime_lte as an inclusive bound, including
// values below one. Without it every article is returned.
func (s *Server) listArticles(c *gin.Context) {
	var (
		articles []domain.Article
		err      error
	)

	raw, bounded := c.GetQuery("readingTime_lte")
	if bounded {
		maxReadingTime, convErr := strconv.Atoi(raw)
		if convErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "readingTime_lte must be an integer"})
			return
		}
		articles, err = s.articles.List(c.Request.Context(), maxReadingTime)
	} else {
		articles, err = s.articles.ListAll(c.Request.Context())
	}
	if err != nil {
		s.logger.Error("failed to list articles", "reading_time_lte", raw, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list articles"})
		return
	}
	if articles == nil {
		articles = []domain.Article{}
	}
	c.JSON(http.StatusOK, articles)
}

func (s *Server) getArticle(c *gin.Context) {
	id := c.Param("id")

	article, err := s.articles.Get(c.Request.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
		return
	}
	if err != nil {
		s.logger.Error("failed to get article", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get article"})
		return
	}
	c.JSON(http.StatusOK, article)
}
