package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"planets-be/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

// SearchHandler serves fuzzy task search within a planet
type SearchHandler struct {
	tasks TaskOperations
}

func NewSearchHandler(tasks TaskOperations) *SearchHandler {
	return &SearchHandler{tasks: tasks}
}

// SearchResponse is the response for task search
type SearchResponse struct {
	Results []models.TaskSearchResult `json:"results"`
	Query   string                    `json:"query"`
	Total   int                       `json:"total"`
}

// SearchTasks godoc
// @Summary Fuzzy search of a planet's tasks
// @Description Matches content and description, ignoring case and accents. Best matches first.
// @Tags search
// @Security ApiKeyAuth
// @Produce json
// @Param planetId path string true "Planet ID"
// @Param q query string true "Search text"
// @Param limit query int false "Maximum results (1-50)" default(10)
// @Success 200 {object} SearchResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /planets/{planetId}/tasks/search [get]
func (h *SearchHandler) SearchTasks(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	planetID, ok := objectIDParam(c, "planetId")
	if !ok {
		return
	}

	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		respondError(c, models.NewInvalidInput("Query cannot be empty"))
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultSearchLimit)))
	if err != nil || limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	results, err := h.tasks.Search(c.Request.Context(), actor, planetID, query)
	if err != nil {
		respondError(c, err)
		return
	}

	// Take top results
	total := len(results)
	if len(results) > limit {
		results = results[:limit]
	}

	c.JSON(http.StatusOK, SearchResponse{
		Results: results,
		Query:   query,
		Total:   total,
	})
}
