package app

import (
	"database/sql"
	"os"

	"go-fieldtrack/internal/attendance"
	"go-fieldtrack/internal/employee"
	"go-fieldtrack/internal/evidence"
	"go-fieldtrack/internal/messaging/kafka"
	"go-fieldtrack/internal/shared/counter"
	"go-fieldtrack/internal/visit"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	attendanceRepo := attendance.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)
	visitRepo := visit.NewRepository(gormDB)

	// --- Evidence store ---
	evidenceStore := evidence.NewUploadcareClient(os.Getenv("UPLOADCARE_PUBLIC_KEY"))

	// --- Services ---
	employeeService := employee.NewService(employeeRepo, evidenceStore, counterRepo, rdb)
	attendanceService := attendance.NewService(db, attendanceRepo, employeeService, outboxRepo)
	visitService := visit.NewService(db, visitRepo, evidenceStore, employeeService, outboxRepo)

	// --- Handlers ---
	attendanceHandler := attendance.NewHandler(attendanceService)
	employeeHandler := employee.NewHandler(employeeService)
	visitHandler := visit.NewHandler(visitService, rdb)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		attendance.RegisterRoutes(api, attendanceHandler)
		employee.RegisterRoutes(api, employeeHandler)
		visit.RegisterRoutes(api, visitHandler, rdb)
	}

	return nil
}
