package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/phoneshop/internal/config"
	"github.com/example/phoneshop/internal/handlers"
	"github.com/example/phoneshop/internal/middleware"
	"github.com/example/phoneshop/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	telegramService := services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat)
	voucherService := services.NewVoucherService(db)
	checkoutService := services.NewCheckoutService(db, voucherService)

	authHandler := handlers.NewAuthHandler(db, cfg)
	productHandler := handlers.NewProductHandler(db)
	reviewHandler := handlers.NewReviewHandler(db)
	cartHandler := handlers.NewCartHandler(db, checkoutService, voucherService)
	checkoutHandler := handlers.NewCheckoutHandler(db, checkoutService, telegramService)
	orderHandler := handlers.NewOrderHandler(db)
	profileHandler := handlers.NewProfileHandler(db, cfg, voucherService)
	feedbackHandler := handlers.NewFeedbackHandler(db)
	adminHandler := handlers.NewAdminHandler(db, voucherService)

	requireAuth := middleware.AuthMiddleware(cfg)
	optionalAuth := middleware.OptionalAuthMiddleware(cfg)
	requireAdmin := middleware.AdminMiddleware(db)

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/forgot-password", authHandler.ForgotPassword)
	auth.Post("/reset-password", authHandler.ResetPassword)

	// Storefront
	api.Get("/home", productHandler.Home)
	api.Get("/search", productHandler.Search)

	products := api.Group("/products")
	products.Get("/", productHandler.List)
	products.Get("/:id", optionalAuth, productHandler.Get)

	// Reviews
	api.Post("/reviews", requireAuth, reviewHandler.Create)

	// Cart: guests use the X-Session-Key header, customers their token
	cart := api.Group("/cart", optionalAuth)
	cart.Get("/", cartHandler.Get)
	cart.Post("/items", cartHandler.Add)
	cart.Post("/buy-now", cartHandler.BuyNow)
	cart.Put("/items", cartHandler.UpdateAll)
	cart.Put("/items/:id", cartHandler.Update)
	cart.Delete("/items/:id", cartHandler.Remove)
	cart.Post("/items/remove", cartHandler.RemoveBulk)
	cart.Delete("/", cartHandler.Clear)
	cart.Post("/select", cartHandler.SelectItems)
	cart.Post("/apply-coupon", cartHandler.ApplyCoupon)
	cart.Post("/remove-coupon", cartHandler.RemoveCoupon)

	// Checkout
	checkout := api.Group("/checkout", requireAuth)
	checkout.Get("/summary", checkoutHandler.Summary)
	checkout.Post("/place-order", checkoutHandler.PlaceOrder)

	// Customer orders
	orders := api.Group("/orders", requireAuth)
	orders.Get("/", orderHandler.ListMine)
	orders.Get("/:id", orderHandler.GetMine)
	orders.Post("/:id/cancel", orderHandler.Cancel)

	// Profile
	profile := api.Group("/profile", requireAuth)
	profile.Get("/", profileHandler.Get)
	profile.Put("/", profileHandler.Update)
	profile.Post("/verify-phone", profileHandler.VerifyPhone)
	profile.Post("/change-password", profileHandler.ChangePassword)
	profile.Get("/addresses", profileHandler.ListAddresses)
	profile.Post("/addresses", profileHandler.CreateAddress)
	profile.Put("/addresses/:id", profileHandler.UpdateAddress)
	profile.Delete("/addresses/:id", profileHandler.DeleteAddress)
	profile.Post("/addresses/:id/default", profileHandler.SetDefaultAddress)
	profile.Get("/vouchers", profileHandler.ListVouchers)
	profile.Post("/vouchers/delete", profileHandler.DeleteVouchers)

	// Feedback
	feedback := api.Group("/feedback", requireAuth)
	feedback.Post("/", feedbackHandler.Create)
	feedback.Get("/", feedbackHandler.ListMine)

	// Admin back office
	admin := api.Group("/admin", requireAuth, requireAdmin)
	admin.Get("/dashboard", adminHandler.Dashboard)

	admin.Get("/users", adminHandler.ListUsers)
	admin.Get("/users/:id", adminHandler.GetUser)
	admin.Delete("/users/:id", adminHandler.DeleteUser)

	admin.Post("/products", productHandler.Create)
	admin.Put("/products/:id", productHandler.Update)
	admin.Delete("/products/:id", productHandler.Delete)

	admin.Get("/orders", orderHandler.AdminList)
	admin.Get("/orders/:id", orderHandler.AdminGet)
	admin.Put("/orders/:id", orderHandler.AdminUpdate)

	admin.Get("/coupons", adminHandler.ListCoupons)
	admin.Post("/coupons", adminHandler.CreateCoupon)
	admin.Put("/coupons/:id", adminHandler.UpdateCoupon)
	admin.Delete("/coupons/:id", adminHandler.DeleteCoupon)
	admin.Get("/coupons/:id/usage", adminHandler.CouponUsage)

	admin.Get("/reviews", reviewHandler.AdminList)
	admin.Delete("/reviews/:id", reviewHandler.AdminDelete)

	admin.Get("/feedback", feedbackHandler.AdminList)
	admin.Post("/feedback/:id/respond", feedbackHandler.AdminRespond)
}
