// Reminder trigger endpoint.
//
// POST /cron/send-reminders runs one reminder batch. It is meant to be hit
// by an external cron (in addition to the in-process scheduler) and is
// guarded by a shared secret rather than a user token. The secret compare
// happens in constant time and before any data access. GET on the same
// path is a static liveness probe with no auth and no side effects.
package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/renewalradar/go-renewal-backend/internal/http/middleware"
)

// TriggerResponse is the success payload of the reminder trigger.
type TriggerResponse struct {
	Success       bool     `json:"success"`
	RemindersSent int      `json:"reminders_sent"`
	Errors        []string `json:"errors,omitempty"`
}

// cronAuthorized checks the bearer secret in constant time. A server with
// no secret configured never authorizes the trigger.
func (h *Handlers) cronAuthorized(c *gin.Context) bool {
	if h.opts.CronSecret == "" {
		return false
	}
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(parts[1]), []byte(h.opts.CronSecret)) == 1
}

// TriggerReminders godoc
// @ID          triggerReminders
// @Summary     Run the reminder batch now
// @Description Scans contracts and sends any due reminder emails. Requires the cron secret as a bearer token.
// @Tags        Reminders
// @Produce     json
//
// @Param       Authorization  header  string  true  "Bearer <CRON_SECRET>"
//
// @Success     200  {object}  handlers.TriggerResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Run failed"
// @Router      /cron/send-reminders [post]
func (h *Handlers) TriggerReminders(c *gin.Context) {
	if !h.cronAuthorized(c) {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid cron secret")
		return
	}

	summary, err := h.reminderSvc.Run(c.Request.Context(), time.Now())
	if err != nil {
		lg := middleware.LoggerFrom(c)
		lg.Error().Err(err).Msg("reminder run failed")
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "reminder run failed")
		return
	}
	ok(c, http.StatusOK, TriggerResponse{
		Success:       true,
		RemindersSent: summary.RemindersSent,
		Errors:        summary.Errors,
	})
}

// RemindersAlive godoc
// @ID          remindersAlive
// @Summary     Liveness probe for the reminder trigger
// @Description Static response confirming the endpoint is reachable. Sends nothing.
// @Tags        Reminders
// @Produce     json
//
// @Success     200  {object}  map[string]string
// @Router      /cron/send-reminders [get]
func (h *Handlers) RemindersAlive(c *gin.Context) {
	ok(c, http.StatusOK, gin.H{
		"status":  "ok",
		"message": "reminder endpoint ready; POST with the cron secret to run",
	})
}
