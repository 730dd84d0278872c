package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	chatH *ChatHandler,
	patientH *PatientHandler,
	apptH *AppointmentHandler,
	healthH *HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery con cuerpo JSON y CORS
	// permisivo (el dashboard corre en otro origen).
	r.Use(zapLoggerMiddleware(logger), jsonRecoveryMiddleware(logger))
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Authorization", "X-Client-Info", "Apikey", "Content-Type"},
		MaxAge:          12 * time.Hour,
	}))

	r.GET("/health", healthH.Check)

	chat := r.Group("/chat")
	chat.POST("", chatH.RelayMessage)
	chat.GET("/sessions", chatH.ListSessions)
	chat.GET("/:sessionId/messages", chatH.ListMessages)

	patients := r.Group("/patients")
	patients.GET("", patientH.ListPatients)
	patients.GET("/by-phone/:phone", patientH.GetPatientByPhone)
	patients.POST("", patientH.CreatePatient)
	patients.PUT("/:id", patientH.UpdatePatient)
	patients.DELETE("/:id", patientH.DeletePatient)

	appts := r.Group("/appointments")
	appts.GET("", apptH.ListAppointments)
	appts.POST("", apptH.CreateAppointment)
	appts.PUT("/:id", apptH.UpdateAppointment)
	appts.PATCH("/:id/status", apptH.ChangeStatus)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonRecoveryMiddleware responde los panics con un 500 JSON en lugar del
// cuerpo vacío por defecto de gin.
func jsonRecoveryMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("panic recovered", zap.Any("panic", recovered))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	})
}
