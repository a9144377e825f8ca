package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hingan-ai/agri-api/internal/logutil"
	"github.com/hingan-ai/agri-api/internal/store"
)

const historyLimit = 10

var historyTables = []string{
	store.TableCrop,
	store.TableDisease,
	store.TableFertilizer,
	store.TableYield,
}

// UserHistory returns the last predictions per category for a user. Each
// category is independently failure tolerant: a failed query yields an empty
// list, never an error for the whole response.
func (h *Handler) UserHistory(c *gin.Context) {
	if h.store == nil {
		errorJSON(c, http.StatusInternalServerError, "Database not configured")
		return
	}

	user := c.Param("user_id")
	history := gin.H{}
	total := 0

	for _, table := range historyTables {
		entries, err := h.store.Recent(c.Request.Context(), table, user, historyLimit)
		if err != nil {
			logutil.Warn("history query failed", err, map[string]interface{}{
				"table":   table,
				"user_id": user,
			})
			history[table] = []store.Entry{}
			continue
		}
		if entries == nil {
			entries = []store.Entry{}
		}
		history[table] = entries
		total += len(entries)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"user_id":       user,
		"history":       history,
		"total_records": total,
	})
}
