package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"

	"github.com/webteam-dev/webteam_be/internal/config"
	"github.com/webteam-dev/webteam_be/internal/db"
	"github.com/webteam-dev/webteam_be/internal/handlers"
	"github.com/webteam-dev/webteam_be/internal/matching"
	"github.com/webteam-dev/webteam_be/internal/middleware"
	"github.com/webteam-dev/webteam_be/internal/models"
	"github.com/webteam-dev/webteam_be/internal/realtime"
	"github.com/webteam-dev/webteam_be/internal/repository"
	"github.com/webteam-dev/webteam_be/internal/scheduler"
	"github.com/webteam-dev/webteam_be/internal/services/intake"
	"github.com/webteam-dev/webteam_be/internal/services/notifier"
	"github.com/webteam-dev/webteam_be/internal/services/team"
	"github.com/webteam-dev/webteam_be/internal/services/tripay"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	gdb, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	rdb := realtime.NewRedis()
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Redis not reachable:", err)
	}

	hub := realtime.NewHub()
	go hub.Run()

	if err := gdb.AutoMigrate(
		&models.User{},
		&models.FreelancerProfile{},
		&models.Project{},
		&models.ChatRoom{},
		&models.Message{},
		&models.RoomMemberRead{},
		&models.Notification{},
		&models.Transaction{},
	); err != nil {
		log.Fatal(err)
	}

	store := repository.NewGormStore(gdb)
	notifs := notifier.NewService(gdb, hub, rdb)
	defer notifs.Release()

	teams := team.NewService(store, matching.KeywordInterpreter{}, notifs)
	intakeSvc := intake.NewService(gdb)
	tripaySvc := tripay.NewTripayService()

	sched := scheduler.Start(store, teams)
	defer sched.Stop()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendBaseURL,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    "Content-Length",
		AllowCredentials: true,
	}))

	app.Options("/*", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	authH := &handlers.AuthHandler{
		DB:        gdb,
		JWTSecret: cfg.JWTSecret,
		Expires:   cfg.JWTExpiresMin,
	}
	googleH := &handlers.GoogleOAuthHandler{
		DB:              gdb,
		JWTSecret:       cfg.JWTSecret,
		Expires:         cfg.JWTExpiresMin,
		GoogleClientID:  cfg.GoogleClientID,
		GoogleSecret:    cfg.GoogleSecret,
		GoogleRedirect:  cfg.GoogleRedirect,
		FrontendBaseURL: cfg.FrontendBaseURL,
	}

	freelancerH := handlers.NewFreelancerHandler(gdb)
	projectH := handlers.NewProjectHandler(gdb, intakeSvc)
	teamH := handlers.NewTeamHandler(teams)
	chatH := handlers.NewChatHandler(gdb, hub, rdb)
	notifH := handlers.NewNotificationHandler(gdb)
	paymentH := handlers.NewPaymentHandler(gdb, tripaySvc, hub, cfg.FrontendBaseURL+"/payments/done")

	api := app.Group("/api")

	// public
	api.Post("/auth/register", authH.Register)
	api.Post("/auth/login", authH.Login)
	api.Post("/auth/logout", authH.Logout)
	api.Get("/auth/google/start", googleH.GoogleStart)
	api.Get("/auth/google/callback", googleH.GoogleCallback)
	api.Get("/freelancers/:id", freelancerH.GetPublicProfile)

	// payment gateway webhook (signature-validated, no JWT)
	app.Post("/tripay/callback", paymentH.HandleCallback)

	// protected (JWT from cookie)
	protected := api.Group("/",
		middleware.JWTFromCookie(cfg.JWTSecret),
		middleware.AttachJWTLocals(),
	)

	protected.Get("/me", func(c *fiber.Ctx) error {
		uid := c.Locals("userId")

		var user models.User
		if err := gdb.First(&user, "id = ?", uid).Error; err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "User not found",
			})
		}

		return c.JSON(fiber.Map{
			"success": true,
			"data": fiber.Map{
				"id":    user.ID,
				"name":  user.Name,
				"email": user.Email,
				"role":  user.Role,
			},
		})
	})

	// freelancer profile + availability
	protected.Get("/freelancer/profile",
		middleware.RequireRoles("freelancer"),
		freelancerH.GetMyProfile,
	)
	protected.Put("/freelancer/profile",
		middleware.RequireRoles("freelancer"),
		freelancerH.UpdateProfile,
	)
	protected.Patch("/freelancer/availability",
		middleware.RequireRoles("freelancer"),
		freelancerH.SetAvailability,
	)

	// freelancer directory for businesses
	protected.Get("/freelancers",
		middleware.RequireRoles("client"),
		freelancerH.Directory,
	)

	// projects + intake (business only)
	protected.Post("/projects",
		middleware.RequireRoles("client"),
		projectH.StartIntake,
	)
	protected.Post("/projects/:id/intake",
		middleware.RequireRoles("client"),
		projectH.IntakeMessage,
	)
	protected.Get("/projects", projectH.ListMyProjects)
	protected.Get("/projects/:id", projectH.GetProject)

	// team offers and invitation lifecycle
	protected.Get("/projects/:id/offers",
		middleware.RequireRoles("client"),
		teamH.GetOffers,
	)
	protected.Post("/projects/:id/team",
		middleware.RequireRoles("client"),
		teamH.ChooseTeam,
	)
	protected.Post("/projects/:id/respond",
		middleware.RequireRoles("freelancer"),
		teamH.Respond,
	)
	protected.Get("/projects/:id/replacements",
		middleware.RequireRoles("client"),
		teamH.ReplacementCandidates,
	)
	protected.Post("/projects/:id/replacements",
		middleware.RequireRoles("client"),
		teamH.SelectReplacement,
	)

	// payments (unlock fees)
	protected.Get("/payments/channels",
		middleware.RequireRoles("client"),
		paymentH.GetChannels,
	)
	protected.Post("/payments",
		middleware.RequireRoles("client"),
		paymentH.CreatePayment,
	)

	// chat
	chat := protected.Group("/chat")
	chat.Get("/rooms", chatH.GetRooms)
	chat.Get("/rooms/:id/messages", chatH.GetMessages)
	chat.Post("/rooms/:id/messages", chatH.SendMessage)
	chat.Patch("/rooms/:id/read", chatH.MarkAsRead)

	// notifications
	protected.Get("/notifications", notifH.List)
	protected.Patch("/notifications/read-all", notifH.MarkAllRead)
	protected.Patch("/notifications/:id/read", notifH.MarkRead)

	// WebSocket endpoint (authenticated via query param)
	app.Get("/ws/chat", websocket.New(chatH.WebSocketHandler))

	log.Fatal(app.Listen(":" + cfg.AppPort))
}
