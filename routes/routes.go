package routes

import (
	"routeerp_go/controllers"
	"routeerp_go/middleware"
	"routeerp_go/models"
	"routeerp_go/services"
	"routeerp_go/services/websocket"

	"github.com/gofiber/fiber/v2"
)

// Services bundles everything the route tree serves.
type Services struct {
	Auth       *services.AuthService
	Excuses    *services.ExcuseService
	HR         *services.HRService
	Groups     *services.GroupService
	Calendar   *services.CalendarService
	Exports    *services.ExportService
	Dashboards *services.DashboardService
	Logs       *services.ActivityLogService
	Health     *services.HealthService
	Hub        *websocket.Hub
}

// SetupRoutes configures all application routes
func SetupRoutes(app *fiber.App, svc *Services) {
	// Initialize controllers
	authController := controllers.NewAuthController(svc.Auth)
	settingsController := controllers.NewSettingsController(svc.Auth)
	userController := controllers.NewUserController(svc.Auth, svc.Calendar.Notes())
	groupController := controllers.NewGroupController(svc.Groups, svc.Auth)
	excuseController := controllers.NewExcuseController(svc.Excuses)
	hrController := controllers.NewHRController(svc.HR, svc.Exports)
	calendarController := controllers.NewCalendarController(svc.Calendar)
	dashboardController := controllers.NewDashboardController(svc.Dashboards)
	logController := controllers.NewLogController(svc.Logs)
	healthController := controllers.NewHealthController(svc.Health)
	wsController := controllers.NewWebSocketController(svc.Hub, svc.Auth)

	app.Get("/health", healthController.GetHealthStatus)

	// API group
	api := app.Group("/api")

	// Authentication routes (no middleware)
	api.Post("/auth/login", authController.Login)

	// Protected routes (require authentication)
	protected := api.Group("", middleware.JWTMiddleware(svc.Auth))
	protected.Post("/auth/logout", authController.Logout)
	protected.Get("/auth/me", authController.Me)

	// Settings and help (any role)
	protected.Get("/settings/profile", settingsController.GetProfile)
	protected.Put("/settings/profile", settingsController.UpdateProfile)
	protected.Put("/settings/password", settingsController.ChangePassword)
	protected.Get("/help", controllers.GetHelp)

	// Calendar (any role)
	calendar := protected.Group("/calendar")
	calendar.Get("/", calendarController.GetCalendar)
	calendar.Get("/notes", calendarController.GetNotes)
	calendar.Post("/notes", calendarController.CreateNote)
	calendar.Delete("/notes/:id", calendarController.DeleteNote)

	// Admin area
	admin := protected.Group("/admin", middleware.RequireAdmin())
	admin.Get("/dashboard", dashboardController.Admin)

	users := admin.Group("/users")
	users.Get("/", userController.GetUsers)
	users.Get("/:id", userController.GetUser)
	users.Post("/", userController.CreateUser)
	users.Put("/:id", userController.UpdateUser)
	users.Delete("/:id", userController.DeleteUser)

	groups := admin.Group("/groups")
	groups.Get("/", groupController.GetGroups)
	groups.Get("/:id", groupController.GetGroup)
	groups.Post("/", groupController.CreateGroup)
	groups.Put("/:id", groupController.UpdateGroup)
	groups.Delete("/:id", groupController.DeleteGroup)
	groups.Put("/:id/students", groupController.SetStudents)

	excuses := admin.Group("/excuses")
	excuses.Get("/", excuseController.GetExcuses)
	excuses.Get("/pending", excuseController.GetPendingExcuses)
	excuses.Put("/:id/status", excuseController.UpdateExcuseStatus)

	logs := admin.Group("/logs")
	logs.Get("/", logController.GetLogs)
	logs.Get("/export", logController.ExportLogs)
	logs.Post("/flush", logController.FlushLogs)
	logs.Delete("/old", logController.DeleteOldLogs)

	admin.Get("/ws/stats", wsController.GetWebSocketStats)

	// Instructor and mentor areas
	for _, role := range []string{models.RoleInstructor, models.RoleMentor} {
		area := protected.Group("/"+role, middleware.RequireRole(role))
		area.Get("/dashboard", dashboardController.Staff)
		area.Get("/groups", groupController.GetMyGroups)
	}

	// Student area
	student := protected.Group("/student", middleware.RequireRole(models.RoleStudent))
	student.Get("/dashboard", dashboardController.Student)
	student.Get("/groups", groupController.GetMyGroups)
	student.Get("/excuses", excuseController.GetMyExcuses)
	student.Post("/excuses", excuseController.SubmitExcuse)

	// HR area (admin only)
	hr := protected.Group("/hr", middleware.RequireAdmin())
	hr.Get("/dashboard", dashboardController.HR)

	employees := hr.Group("/employees")
	employees.Get("/", hrController.GetEmployees)
	employees.Get("/:id", hrController.GetEmployee)
	employees.Get("/:id/salary", hrController.GetEmployeeSalary)
	employees.Post("/", hrController.CreateEmployee)
	employees.Put("/:id", hrController.UpdateEmployee)
	employees.Delete("/:id", hrController.DeleteEmployee)

	worklogs := hr.Group("/worklogs")
	worklogs.Get("/", hrController.GetWorkLogs)
	worklogs.Post("/", hrController.CreateWorkLog)
	worklogs.Put("/:id", hrController.UpdateWorkLog)
	worklogs.Delete("/:id", hrController.DeleteWorkLog)

	hrExcuses := hr.Group("/excuses")
	hrExcuses.Get("/", hrController.GetExcuses)
	hrExcuses.Get("/pending", hrController.GetPendingExcuses)
	hrExcuses.Post("/", hrController.CreateExcuse)
	hrExcuses.Put("/:id/status", hrController.UpdateExcuseStatus)

	reports := hr.Group("/reports")
	reports.Get("/salary", hrController.GetSalaryReport)
	reports.Get("/salary.xlsx", hrController.ExportSalaryWorkbook)
	reports.Get("/worklogs.csv", hrController.ExportWorkLogs)

	// WebSocket connection endpoint; the token travels as ?token=
	app.Get("/ws", wsController.Upgrade, wsController.WebSocketHandler())
}

// SetupNotFound must be registered last.
func SetupNotFound(app *fiber.App) {
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":  "Route not found",
			"path":   c.Path(),
			"method": c.Method(),
		})
	})
}
