package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hostelsync/hostelsync-api/internal/api/http/handlers"
	"github.com/hostelsync/hostelsync-api/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Water          *handlers.IssuesHandler
	Network        *handlers.IssuesHandler
	Cleaning       *handlers.CleaningHandler
	Mess           *handlers.MessHandler
	Transport      *handlers.TransportHandler
	AdminUsers     *handlers.AdminUsersHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	api := app.Group("/api")
	authn := cfg.AuthMiddleware.Handle
	can := auth.RequirePermission

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", authn, cfg.Auth.Logout)
	authGroup.Get("/me", authn, cfg.Auth.Me)
	authGroup.Get("/permissions", authn, cfg.Auth.Permissions)
	authGroup.Put("/password", authn, cfg.Auth.ChangePassword)

	water := api.Group("/water", authn)
	water.Post("/issues", can(auth.PermWaterReport), cfg.Water.Create)
	water.Get("/issues", can(auth.PermWaterList), cfg.Water.List)
	water.Get("/issues/:id", can(auth.PermWaterList), cfg.Water.Get)
	water.Patch("/issues/:id", can(auth.PermWaterUpdate), cfg.Water.Update)
	water.Get("/plumbers", can(auth.PermWaterDirectory), cfg.Water.Workers)

	network := api.Group("/network", authn)
	network.Post("/issues", can(auth.PermNetworkReport), cfg.Network.Create)
	network.Get("/issues", can(auth.PermNetworkList), cfg.Network.List)
	network.Get("/issues/:id", can(auth.PermNetworkList), cfg.Network.Get)
	network.Patch("/issues/:id", can(auth.PermNetworkUpdate), cfg.Network.Update)
	network.Post("/issues/:id/comments", can(auth.PermNetworkComment), cfg.Network.AddComment)
	network.Get("/issues/:id/comments", can(auth.PermNetworkComment), cfg.Network.ListComments)
	network.Get("/it-staff", can(auth.PermNetworkDirectory), cfg.Network.Workers)

	cleaning := api.Group("/cleaning", authn)
	cleaning.Get("/cleaners", can(auth.PermCleaningDirectory), cfg.Cleaning.Cleaners)
	cleaning.Post("/requests", can(auth.PermCleaningCreate), cfg.Cleaning.Create)
	cleaning.Get("/requests", can(auth.PermCleaningListAll), cfg.Cleaning.ListAll)
	cleaning.Get("/my-requests", can(auth.PermCleaningListOwn), cfg.Cleaning.ListOwn)
	cleaning.Patch("/requests/:id/status", can(auth.PermCleaningUpdate), cfg.Cleaning.Update)
	cleaning.Post("/requests/:id/feedback", can(auth.PermCleaningFeedback), cfg.Cleaning.Feedback)

	mess := api.Group("/mess")
	mess.Get("/menu", cfg.Mess.Menu)
	mess.Post("/menu", authn, can(auth.PermMenuWrite), cfg.Mess.CreateMenu)
	mess.Post("/menu/recurring", authn, can(auth.PermMenuSeries), cfg.Mess.CreateRecurring)
	mess.Get("/menu/recurring/:baseMenuId", authn, can(auth.PermMenuSeries), cfg.Mess.Series)
	mess.Delete("/menu/recurring/:baseMenuId", authn, can(auth.PermMenuSeries), cfg.Mess.DeleteSeries)
	mess.Put("/menu/:id", authn, can(auth.PermMenuWrite), cfg.Mess.UpdateMenu)
	mess.Delete("/menu/:id", authn, can(auth.PermMenuWrite), cfg.Mess.DeleteMenu)
	mess.Post("/feedback", authn, can(auth.PermMealFeedback), cfg.Mess.SubmitFeedback)
	mess.Get("/feedback", authn, can(auth.PermMealFeedbackList), cfg.Mess.ListFeedback)
	mess.Get("/menus/export", authn, can(auth.PermMenuTransfer), cfg.Mess.Export)
	mess.Post("/menus/import", authn, can(auth.PermMenuTransfer), cfg.Mess.Import)
	mess.Get("/menus/import/template", authn, can(auth.PermMenuTransfer), cfg.Mess.Template)

	transport := api.Group("/transport")
	transport.Get("/vehicles", cfg.Transport.AvailableVehicles)
	transport.Get("/routes", cfg.Transport.Routes)
	transport.Post("/bookings", authn, can(auth.PermBookingCreate), cfg.Transport.Book)
	transport.Get("/bookings", authn, can(auth.PermBookingList), cfg.Transport.Bookings)
	transport.Delete("/bookings/:id", authn, can(auth.PermBookingCancel), cfg.Transport.Cancel)

	fleet := transport.Group("/admin", authn, can(auth.PermTransportManage))
	fleet.Get("/vehicles", cfg.Transport.Vehicles)
	fleet.Post("/vehicles", cfg.Transport.CreateVehicle)
	fleet.Delete("/vehicles/:id", cfg.Transport.DeleteVehicle)
	fleet.Post("/routes", cfg.Transport.CreateRoute)
	fleet.Delete("/routes/:id", cfg.Transport.DeleteRoute)
	fleet.Post("/schedules", cfg.Transport.CreateSchedule)
	fleet.Patch("/schedules/:id/active", cfg.Transport.SetScheduleActive)
	fleet.Get("/bookings", cfg.Transport.AllBookings)

	admin := api.Group("/admin/users", authn, can(auth.PermUsersManage))
	admin.Get("/", cfg.AdminUsers.List)
	admin.Get("/role/:role", cfg.AdminUsers.ByRole)
	admin.Get("/:id", cfg.AdminUsers.Get)
	admin.Post("/", cfg.AdminUsers.Create)
	admin.Put("/:id", cfg.AdminUsers.Update)
	admin.Delete("/:id", cfg.AdminUsers.Delete)
}
