package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"student-mess-api/statemachine"
)

// Health reports that the API is up
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "API is operational",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// GetStateMachineInfo describes the order lifecycle for API consumers
func GetStateMachineInfo(c *gin.Context) {
	provider := gin.H{}
	student := gin.H{}
	for _, s := range statemachine.AllStatuses {
		provider[string(s)] = statemachine.ValidTransitionsFrom(s, statemachine.ActorProvider)
		if next := statemachine.ValidTransitionsFrom(s, statemachine.ActorStudent); len(next) > 0 {
			student[string(s)] = next
		}
	}
	ok(c, http.StatusOK, gin.H{
		"statuses":        statemachine.AllStatuses,
		"terminal_states": []string{"delivered", "cancelled"},
		"pending_like":    statemachine.PendingLike(),
		"provider":        provider,
		"student":         student,
		"description":     "Student mess order lifecycle",
	})
}
