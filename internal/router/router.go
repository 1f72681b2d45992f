package router

import (
	"context"
	"net/http"
	"time"

	"medlink/config"
	"medlink/internal/cache"
	"medlink/internal/domain"
	"medlink/internal/handler"
	"medlink/internal/middleware"
	"medlink/internal/repository"
	"medlink/internal/service"
	"medlink/internal/ws"
	"medlink/pkg/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the process-wide resources built in main. Cache, Store and FCM may be nil.
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Log    *zap.Logger
	Cache  cache.Cache
	Store  storage.FileStore
	FCM    *service.FCMService
	Hub    *ws.Hub
}

// Services holds the domain services shared by the HTTP layer and background workers.
type Services struct {
	Auth          *service.AuthService
	Directory     *service.DirectoryService
	Notifications *service.NotificationService
	Rewards       *service.RewardService
	Schedules     *service.ScheduleService
	Appointments  *service.AppointmentService
	Documents     *service.DocumentService
	Prescriptions *service.PrescriptionService
	Admin         *service.AdminService
	Home          *service.HomeService
	Medicines     *service.MedicineService

	audit *repository.AuditLogRepository
}

func NewServices(d Deps) *Services {
	db, log := d.DB, d.Log
	userRepo := repository.NewUserRepository(db)
	providerRepo := repository.NewProviderRepository(db)
	assignRepo := repository.NewAssignmentRepository(db)
	medicineRepo := repository.NewMedicineRepository(db)

	notif := service.NewNotificationService(repository.NewNotificationRepository(db), userRepo, d.FCM, d.Hub, log)
	rewards := service.NewRewardService(db, userRepo,
		repository.NewReferralRepository(db),
		repository.NewRewardRepository(db),
		repository.NewSettingRepository(db),
		d.Cache, notif, log)
	schedules := service.NewScheduleService(db,
		repository.NewScheduleRepository(db),
		repository.NewNextVisitRepository(db),
		assignRepo, rewards, notif, d.Config.Reminder.Location(), log)

	auditRepo := repository.NewAuditLogRepository(db)
	return &Services{
		Auth:          service.NewAuthService(d.Config, userRepo, log),
		Directory:     service.NewDirectoryService(userRepo, providerRepo, assignRepo),
		Notifications: notif,
		Rewards:       rewards,
		Schedules:     schedules,
		Appointments:  service.NewAppointmentService(repository.NewAppointmentRepository(db), userRepo, assignRepo, notif, log),
		Documents:     service.NewDocumentService(repository.NewDocumentRepository(db), userRepo, assignRepo, d.Store, notif, log),
		Prescriptions: service.NewPrescriptionService(repository.NewPrescriptionRepository(db), assignRepo, schedules),
		Admin:         service.NewAdminService(repository.NewAdminRepository(db), userRepo, auditRepo, notif, log),
		Home:          service.NewHomeService(providerRepo, medicineRepo, d.Cache, log),
		Medicines:     service.NewMedicineService(medicineRepo),
		audit:         auditRepo,
	}
}

// Setup builds the gin engine. The rate limiter sweeper stops when ctx is done.
func Setup(ctx context.Context, d Deps, s *Services) *gin.Engine {
	cfg, log := d.Config, d.Log
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	handler.RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(cors.New(corsConfig(cfg)))
	limiter := middleware.NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	go limiter.RunSweeper(ctx.Done())
	r.Use(middleware.RateLimit(limiter))

	audit := handler.NewAuditor(s.audit, log)
	authH := handler.NewAuthHandler(s.Auth, audit, log)
	googleH := handler.NewGoogleOAuthHandler(cfg, s.Auth, audit, log)
	patientH := handler.NewPatientHandler(s.Directory, s.Schedules, log)
	scheduleH := handler.NewScheduleHandler(s.Schedules, log)
	appointmentH := handler.NewAppointmentHandler(s.Appointments, log)
	documentH := handler.NewDocumentHandler(s.Documents, audit, log)
	prescriptionH := handler.NewPrescriptionHandler(s.Prescriptions, log)
	rewardH := handler.NewRewardHandler(s.Rewards, audit, log)
	adminH := handler.NewAdminHandler(s.Admin, audit, log)
	homeH := handler.NewHomeHandler(s.Home, log)
	medicineH := handler.NewMedicineHandler(s.Medicines, audit, log)
	notificationH := handler.NewNotificationHandler(s.Notifications, log)

	authMw := middleware.AuthRequired(&cfg.JWT)
	optionalAuth := middleware.OptionalAuth(&cfg.JWT)
	adminMw := middleware.AdminRequired()

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	api := r.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authH.Register)
			authGroup.POST("/login", authH.Login)
			authGroup.GET("/me", authMw, authH.Me)
			authGroup.PATCH("/change-password", authMw, authH.ChangePassword)
			authGroup.POST("/fcm-token", authMw, authH.RegisterFCMToken)
			authGroup.GET("/google", googleH.Redirect)
			authGroup.GET("/google/callback", googleH.Callback)
		}

		api.GET("/home", homeH.Home)
		api.GET("/search", homeH.Search)

		// provider directories
		providers := map[string]domain.Role{
			"doctors":         domain.RoleDoctor,
			"hospitals":       domain.RoleHospital,
			"clinics":         domain.RoleClinic,
			"checkup-centers": domain.RoleCheckupCenter,
			"medstores":       domain.RoleMedStore,
		}
		for path, role := range providers {
			h := handler.NewProviderHandler(role, s.Directory, log)
			g := api.Group("/" + path)
			g.GET("", optionalAuth, h.List)
			g.GET("/:id", h.Get)

			me := g.Group("/me", authMw, middleware.RequireRole(role))
			me.PUT("", h.UpdateMe)
			if role != domain.RoleMedStore {
				me.GET("/patients", h.ListPatients)
				me.POST("/patients/:patientId", h.AssignPatient)
				me.DELETE("/patients/:patientId", h.UnassignPatient)
			}
			switch role {
			case domain.RoleDoctor, domain.RoleCheckupCenter:
				me.PUT("/patients/:patientId/next-visit", scheduleH.SetNextVisit)
				me.GET("/next-visits", scheduleH.ProviderNextVisits)
			}
			switch role {
			case domain.RoleDoctor:
				me.GET("/hospitals", h.MyHospitals)
				me.GET("/clinic", h.MyClinic)
			case domain.RoleHospital:
				g.GET("/:id/doctors", h.HospitalDoctors)
				me.GET("/doctors", h.MyDoctors)
				me.POST("/doctors/:doctorId", h.AddDoctor)
				me.DELETE("/doctors/:doctorId", h.RemoveDoctor)
			case domain.RoleClinic:
				me.PUT("/doctor/:doctorId", h.SetClinicDoctor)
				me.DELETE("/doctor", h.ClearClinicDoctor)
			case domain.RoleMedStore:
				me.GET("/requests", documentH.OpenRequests)
				me.GET("/hand-raises", documentH.MyHandRaises)
				g.POST("/requests/:documentId/hand-raise", authMw, middleware.RequireRole(role), documentH.RaiseHand)
				g.DELETE("/requests/:documentId/hand-raise", authMw, middleware.RequireRole(role), documentH.WithdrawHand)
			}
		}

		patients := api.Group("/patients", authMw)
		{
			self := patients.Group("/me", middleware.RequireRole(domain.RolePatient))
			self.GET("", patientH.Me)
			self.PUT("", patientH.UpdateMe)
			self.GET("/providers", patientH.Providers)
			self.GET("/next-visits", patientH.NextVisits)
			patients.GET("", adminMw, patientH.List)
			patients.GET("/:id", patientH.Get)
		}

		appointments := api.Group("/appointments", authMw)
		{
			appointments.POST("", middleware.RequireRole(domain.RolePatient), appointmentH.Book)
			appointments.GET("", appointmentH.List)
			appointments.GET("/:id", appointmentH.Get)
			appointments.PATCH("/:id/status", appointmentH.UpdateStatus)
		}

		docs := api.Group("/med-documents", authMw)
		{
			docs.POST("", documentH.Create)
			docs.GET("", documentH.List)
			docs.GET("/:id", documentH.Get)
			docs.DELETE("/:id", documentH.Delete)
			docs.POST("/:id/permissions/doctors", documentH.GrantDoctor)
			docs.DELETE("/:id/permissions/doctors/:doctorId", documentH.RevokeDoctor)
			docs.POST("/:id/permissions/checkup-centers", documentH.GrantCheckupCenter)
			docs.DELETE("/:id/permissions/checkup-centers/:checkupCenterId", documentH.RevokeCheckupCenter)
			docs.PATCH("/:id/seek-availability", documentH.SetSeekAvailability)
			docs.GET("/:id/hand-raises", documentH.HandRaises)
		}

		rx := api.Group("/prescriptions", authMw)
		{
			rx.POST("", middleware.RequireRole(domain.RoleDoctor), prescriptionH.Create)
			rx.GET("", prescriptionH.List)
			rx.GET("/:id", prescriptionH.Get)
			rx.POST("/:id/schedule", prescriptionH.CreateSchedule)
		}

		schedules := api.Group("/medicine-schedules", authMw)
		{
			schedules.POST("", middleware.RequireRole(domain.RolePatient, domain.RoleDoctor), scheduleH.Create)
			schedules.GET("", scheduleH.List)
			schedules.GET("/upcoming", middleware.RequireRole(domain.RolePatient), scheduleH.Upcoming)
			schedules.GET("/:id", scheduleH.Get)
			schedules.DELETE("/:id", scheduleH.Delete)
			schedules.PUT("/items/:itemId/reminders", scheduleH.UpdateReminderTimes)
			schedules.POST("/reminders/:reminderId/taken", middleware.RequireRole(domain.RolePatient), scheduleH.MarkTaken)
		}

		rewards := api.Group("/rewards", authMw)
		{
			rewards.GET("/me", rewardH.Me)
			rewards.GET("/me/transactions", rewardH.Transactions)
			rewards.GET("/me/referrals", rewardH.MyReferrals)
			rewards.POST("/referrals", rewardH.CreateReferral)
			rewards.POST("/referrals/:id/complete", rewardH.CompleteReferral)
			rewards.GET("/settings", rewardH.Settings)
		}

		meds := api.Group("/global-medicine")
		{
			meds.GET("", medicineH.List)
			meds.GET("/:id", medicineH.Get)
			meds.POST("", authMw, adminMw, medicineH.Create)
			meds.PUT("/:id", authMw, adminMw, medicineH.Update)
			meds.DELETE("/:id", authMw, adminMw, medicineH.Delete)
		}

		api.GET("/notifications", authMw, notificationH.List)
		api.PUT("/notifications/:id/read", authMw, notificationH.MarkRead)

		admin := api.Group("/admin", authMw, adminMw)
		{
			admin.GET("/dashboard", adminH.Dashboard)
			admin.GET("/users", adminH.ListUsers)
			admin.GET("/users/:id", adminH.GetUser)
			admin.PATCH("/users/:id/verification", adminH.SetVerification)
			admin.DELETE("/users/:id", adminH.DeleteUser)
			admin.POST("/users/:id/points", rewardH.AdjustPoints)
			admin.GET("/referrals", rewardH.ListReferrals)
			admin.POST("/referrals/:id/complete", rewardH.CompleteReferral)
			admin.GET("/reward-settings", rewardH.Settings)
			admin.PUT("/reward-settings/:key", rewardH.UpdateSetting)
			admin.GET("/audit-logs", adminH.AuditLogs)
		}
	}

	r.GET("/ws/notifications", ws.ServeNotifications(&cfg.JWT, d.Hub, log))

	return r
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.Server.CORSOrigins) == 0 || (len(cfg.Server.CORSOrigins) == 1 && cfg.Server.CORSOrigins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.Server.CORSOrigins
		c.AllowCredentials = true
	}
	return c
}
