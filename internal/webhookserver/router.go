// Package webhookserver is the minimal receiver for asynchronous Chapa
// payment notifications. It acknowledges every event with HTTP 200 and
// performs no verification or persistence; the client verifies payments
// itself by reference.
package webhookserver

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mssola/user_agent"
	"github.com/sirupsen/logrus"
)

// WebhookEvent is the notification payload Chapa posts. All fields are
// optional; the receiver acks regardless.
type WebhookEvent struct {
	Event    string  `json:"event"`
	TxRef    string  `json:"tx_ref"`
	Status   string  `json:"status"`
	Amount   float64 `json:"amount,omitempty"`
	Currency string  `json:"currency,omitempty"`
}

// NewRouter builds the webhook receiver's routes.
func NewRouter(logger *logrus.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", healthHandler)
	router.POST("/chapa/webhook", webhookHandler(logger))
	router.GET("/payment/return", returnHandler(logger))

	return router
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// webhookHandler acks every notification with 200. Failing to ack makes
// the gateway retry, and there is nothing to do here beyond logging: the
// app verifies the transaction by reference on its own.
func webhookHandler(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID := uuid.NewString()

		var event WebhookEvent
		if err := c.ShouldBindJSON(&event); err != nil {
			logger.WithFields(logrus.Fields{
				"event_id": eventID,
				"error":    err.Error(),
			}).Warn("Webhook payload unreadable, acknowledging anyway")
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}

		logger.WithFields(logrus.Fields{
			"event_id": eventID,
			"event":    event.Event,
			"tx_ref":   event.TxRef,
			"status":   event.Status,
		}).Info("Payment notification received")

		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}

// returnHandler is the landing page the hosted checkout redirects to. The
// app watches for this URL in the checkout navigation; the page itself just
// tells the user to go back to the app.
func returnHandler(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		txRef := c.Query("tx_ref")
		logger.WithFields(logrus.Fields{
			"tx_ref": txRef,
			"status": c.Query("status"),
		}).Info("Checkout return visited")

		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, "<html><body><h2>Payment processed</h2><p>You can return to the app now.</p></body></html>")
	}
}

// requestLogger logs each request with latency and the parsed client
// User-Agent.
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		ua := user_agent.New(c.Request.UserAgent())
		browser, browserVersion := ua.Browser()

		logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
			"os":         ua.OS(),
			"browser":    browser + " " + browserVersion,
			"bot":        ua.Bot(),
		}).Info("Request handled")
	}
}
