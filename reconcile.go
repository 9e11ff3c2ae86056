package main

import (
	"io"
	"net/http"
	"strconv"

	"github.com/cactuscup/admin_backend/config"
	"github.com/cactuscup/admin_backend/models"
	"github.com/cactuscup/admin_backend/stripesync"
	"github.com/cactuscup/admin_backend/utils"
	"github.com/gin-gonic/gin"
)

// ledger is set in main once STRIPE_SECRET_KEY is available. Handlers
// that need it return 503 until then.
var ledger *stripesync.StripeLedger

func requireLedger(c *gin.Context) (*stripesync.StripeLedger, bool) {
	if ledger == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "stripe is not configured"})
		return nil, false
	}
	return ledger, true
}

type pubSubPushMessage struct {
	Message struct {
		Data []byte `json:"data,omitempty"`
		ID   string `json:"id"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// reconciliationPubSubHandler is the Pub/Sub push endpoint for queued
// bulk runs. Malformed payloads are acked to avoid retry loops;
// processing failures return non-2xx so Pub/Sub redelivers.
func reconciliationPubSubHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			config.LogError(logger, "server.go", "reconciliationPubSubHandler", "io.ReadAll", nil, err)
			c.Status(http.StatusNoContent)
			return
		}

		var msg pubSubPushMessage
		if err := utils.UnmarshalFromJSON(body, &msg); err != nil {
			config.LogError(logger, "server.go", "reconciliationPubSubHandler", "Unmarshal body", body, err)
			c.Status(http.StatusNoContent)
			return
		}

		ld, ok := requireLedger(c)
		if !ok {
			// non-2xx: redeliver once Stripe is configured
			return
		}

		if err := stripesync.ProcessQueuedRun(c.Request.Context(), ld, msg.Message.Data); err != nil {
			config.LogError(logger, "server.go", "reconciliationPubSubHandler", "ProcessQueuedRun", msg.Message.ID, err)
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func registerReconcileRoutes(api *gin.RouterGroup, admin gin.HandlerFunc) {
	g := api.Group("/reconcile")

	g.GET("/users/:id/verify", func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		ld, ok := requireLedger(c)
		if !ok {
			return
		}
		result, err := stripesync.VerifyUserOrders(c.Request.Context(), ld, id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": result})
	})

	g.GET("/missing-registrations", func(c *gin.Context) {
		ld, ok := requireLedger(c)
		if !ok {
			return
		}
		result, err := stripesync.FindMissingRegistrations(c.Request.Context(), ld)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": result})
	})

	g.GET("/registration-sync", func(c *gin.Context) {
		result, err := stripesync.VerifyRegistrationSync(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": result})
	})

	g.POST("/bulk", admin, func(c *gin.Context) {
		requestedBy, _ := utils.GetUsernameFromContext(c.Request.Context())
		if displayName, ok := utils.GetUserNameFromContext(c.Request.Context()); ok && displayName != "" {
			requestedBy = displayName + " (" + requestedBy + ")"
		}
		run, err := stripesync.QueueBulkRun(c.Request.Context(), requestedBy)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"data": run})
	})

	g.POST("/orders/:id/sync", admin, func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		ld, ok := requireLedger(c)
		if !ok {
			return
		}
		result, err := stripesync.SyncOrderFromStripe(c.Request.Context(), ld, id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": result})
	})

	g.POST("/manual-entry", admin, func(c *gin.Context) {
		var input stripesync.ManualEntryInput
		if err := c.ShouldBindJSON(&input); err != nil {
			writeError(c, err)
			return
		}
		result, err := stripesync.AddManualTournamentEntry(c.Request.Context(), &input)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": result})
	})

	g.POST("/remove-registration", admin, func(c *gin.Context) {
		var input stripesync.RemoveRegistrationInput
		if err := c.ShouldBindJSON(&input); err != nil {
			writeError(c, err)
			return
		}
		var refunder stripesync.Refunder
		if input.Refund {
			ld, ok := requireLedger(c)
			if !ok {
				return
			}
			refunder = ld
		}
		result, err := stripesync.RemoveRegistration(c.Request.Context(), refunder, &input)
		if err != nil {
			writeError(c, err)
			return
		}
		// removed but refund failed: 207 so callers can tell it apart
		status := http.StatusOK
		if result.PartialSuccess() {
			status = http.StatusMultiStatus
		}
		c.JSON(status, gin.H{"data": result})
	})

	g.POST("/refund", admin, func(c *gin.Context) {
		var input stripesync.AdminRefundInput
		if err := c.ShouldBindJSON(&input); err != nil {
			writeError(c, err)
			return
		}
		ld, ok := requireLedger(c)
		if !ok {
			return
		}
		result, err := stripesync.ProcessAdminRefund(c.Request.Context(), ld, &input)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": result})
	})

	g.GET("/runs", func(c *gin.Context) {
		limit := 50
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}
		runs, err := models.GetReconciliationRuns(c.Request.Context(), limit)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": runs})
	})

	g.GET("/runs/:id", func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		run, err := models.GetReconciliationRun(c.Request.Context(), uint(id))
		if err != nil {
			writeError(c, err)
			return
		}
		runErrors, err := models.GetRunErrors(c.Request.Context(), run.ID)
		if err != nil {
			writeError(c, err)
			return
		}
		payload := gin.H{"run": run, "errors": runErrors}
		if run.Status == models.RunStatusRunning {
			if progress, found, err := config.GetRedisValue(stripesync.RunProgressKey(run.ID)); err == nil && found {
				payload["progress"] = progress
			}
		}
		c.JSON(http.StatusOK, gin.H{"data": payload})
	})
}
