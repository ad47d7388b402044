package dashboard

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/accessboard/accessboard/internal/webservice"
)

// ssePollInterval is how often the events endpoint recomputes project
// counts for connected clients.
const ssePollInterval = 5 * time.Second

// countsEvent is the payload streamed to the project list page so counts
// update without a reload.
type countsEvent struct {
	Projects []ProjectCard `json:"projects"`
}

// handleEvents streams project-count snapshots over SSE until the client
// disconnects.
func (d deps) handleEvents(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	writeSSE(c.Writer, "connected", map[string]string{"type": "connected"})
	c.Writer.Flush()

	ticker := time.NewTicker(ssePollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-ticker.C:
			tasks, err := d.tasks.ListTasks(c.Request.Context(), webservice.ListOpts{})
			if err != nil {
				d.log.Debug("sse: list tasks", zap.Error(err))
				continue
			}
			cards, err := ProjectCards(d.store, tasks)
			if err != nil {
				d.log.Debug("sse: project cards", zap.Error(err))
				continue
			}
			writeSSE(c.Writer, "counts", countsEvent{Projects: cards})
			c.Writer.Flush()
		}
	}
}

// writeSSE writes a single SSE event frame.
func writeSSE(w http.ResponseWriter, event string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
}
