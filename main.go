package main

import (
	"fmt"
	"log"
	"os"

	"github.com/chaitu2303/FoodChain/models"
	"github.com/chaitu2303/FoodChain/routes"
	"github.com/chaitu2303/FoodChain/storage"
	"github.com/chaitu2303/FoodChain/utils"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func main() {
	// Only load .env in development
	if os.Getenv("RENDER") == "" {
		godotenv.Load()
	}

	// Initialize services
	storage.InitializeDB()
	storage.InitializeUploads()
	storage.InitializeRedis()

	app := iris.New()
	app.Validator = validator.New()

	// CORS configuration
	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	// Minimal middleware - compression only
	app.Use(iris.Compression)

	// JWT Verifiers
	resetTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("EMAIL_TOKEN_SECRET")))
	resetTokenVerifier.WithDefaultBlocklist()
	resetTokenVerifierMiddleware := resetTokenVerifier.Verify(func() interface{} {
		return new(utils.ForgotPasswordToken)
	})

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("REFRESH_TOKEN_SECRET")))
	refreshTokenVerifier.WithDefaultBlocklist()
	refreshTokenVerifierMiddleware := refreshTokenVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})

	refreshTokenVerifier.Extractors = append(refreshTokenVerifier.Extractors, func(ctx iris.Context) string {
		var tokenInput utils.RefreshTokenInput
		err := ctx.ReadJSON(&tokenInput)
		if err != nil {
			return ""
		}
		return tokenInput.RefreshToken
	})

	// Health check endpoint
	app.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})

	user := app.Party("/api/user")
	{
		user.Post("/register", routes.Register)
		user.Post("/login", routes.Login)
		user.Post("/login-phone/request", routes.RequestPhoneOTP)
		user.Post("/login-phone/verify", routes.VerifyPhoneOTP)
		user.Post("/google", routes.GoogleLoginOrSignUp)
		user.Post("/apple", routes.AppleLoginOrSignUp)
		user.Post("/forgot-password", routes.ForgotPassword)
		user.Post("/reset-password", resetTokenVerifierMiddleware, routes.ResetPassword)
		user.Get("/me", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.GetMe)
		user.Put("/profile", accessTokenVerifierMiddleware, utils.RequireApproved, routes.UpdateProfile)
		user.Post("/push-token", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.AlterPushToken)
		user.Post("/allows-notifications", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.AllowsNotifications)
	}

	donations := app.Party("/api/donations")
	{
		donations.Get("/", accessTokenVerifierMiddleware, utils.RequireApproved, routes.ListDonations)
		donations.Get("/mine", accessTokenVerifierMiddleware, utils.RequireRoles(models.RoleDonor), routes.ListMyDonations)
		donations.Get("/{id:uint}", accessTokenVerifierMiddleware, utils.RequireApproved, routes.GetDonation)
		donations.Post("/", accessTokenVerifierMiddleware, utils.RequireRoles(models.RoleDonor), routes.CreateDonation)
		donations.Patch("/{id:uint}", accessTokenVerifierMiddleware, utils.RequireRoles(models.RoleDonor), routes.UpdateDonation)
		donations.Post("/{id:uint}/accept", accessTokenVerifierMiddleware, utils.RequireRoles(models.RoleNGO), routes.AcceptDonation)
	}

	tasks := app.Party("/api/tasks")
	{
		tasks.Get("/mine", accessTokenVerifierMiddleware, utils.RequireRoles(models.RoleVolunteer), routes.ListMyTasks)
		tasks.Post("/claim", accessTokenVerifierMiddleware, utils.RequireRoles(models.RoleVolunteer), routes.ClaimDonation)
		tasks.Post("/{id:uint}/accept", accessTokenVerifierMiddleware, utils.RequireRoles(models.RoleVolunteer), routes.AcceptTask)
		tasks.Post("/{id:uint}/pickup", accessTokenVerifierMiddleware, utils.RequireRoles(models.RoleVolunteer), routes.PickupTask)
		tasks.Post("/{id:uint}/deliver", accessTokenVerifierMiddleware, utils.RequireRoles(models.RoleVolunteer, models.RoleNGO), routes.DeliverTask)
		tasks.Post("/{id:uint}/unassign", accessTokenVerifierMiddleware, utils.RequireRoles(models.RoleVolunteer), routes.UnassignTask)
	}

	volunteers := app.Party("/api/volunteers")
	{
		volunteers.Get("/me", accessTokenVerifierMiddleware, utils.RequireRoles(models.RoleVolunteer), routes.GetMyVolunteer)
		volunteers.Patch("/me", accessTokenVerifierMiddleware, utils.RequireRoles(models.RoleVolunteer), routes.UpdateMyVolunteer)
		volunteers.Get("/leaderboard", accessTokenVerifierMiddleware, utils.RequireApproved, routes.VolunteerLeaderboard)
	}

	verifications := app.Party("/api/verifications")
	{
		verifications.Post("/", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.RequestVerification)
		verifications.Get("/mine", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.GetMyVerification)
	}

	notifications := app.Party("/api/notifications")
	{
		notifications.Get("/", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.ListNotifications)
		notifications.Patch("/{id:uint}/read", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware, routes.MarkNotificationRead)
	}

	admin := app.Party("/api/admin", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware)
	{
		admin.Get("/users", routes.AdminListUsers)
		admin.Patch("/users/{id:uint}/approve", routes.AdminApproveUser)
		admin.Patch("/users/{id:uint}/badge", routes.AdminSetVerificationBadge)
		admin.Post("/donations/{id:uint}/approve", routes.AdminApproveDonation)
		admin.Post("/donations/{id:uint}/reject", routes.AdminRejectDonation)
		admin.Post("/donations/{id:uint}/assign", routes.AdminAssignVolunteer)
		admin.Delete("/donations/{id:uint}", routes.AdminDeleteDonation)
		admin.Get("/verifications", routes.AdminListVerifications)
		admin.Patch("/verifications/{id:uint}", routes.AdminProcessVerification)
		admin.Get("/stats", routes.AdminStats)
		admin.Get("/audit", routes.AdminListAuditLogs)
	}

	app.Post("/api/refresh", refreshTokenVerifierMiddleware, utils.RefreshToken)

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000" // fallback for local dev
	}
	addr := ":" + port

	fmt.Println("Starting server on", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
