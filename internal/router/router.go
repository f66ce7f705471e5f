package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"bistro/internal/auth"
	"bistro/internal/config"
	"bistro/internal/handler"
	"bistro/internal/logger"
	"bistro/internal/metrics"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth    *handler.AuthHandler
	User    *handler.UserHandler
	Cart    *handler.CartHandler
	Menu    *handler.MenuHandler
	Review  *handler.ReviewHandler
	Payment *handler.PaymentHandler
	Stats   *handler.StatsHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, cfg *config.Config, guard *auth.Guard, h Handlers) {
	e.Use(middleware.RequestID())
	e.Use(logger.Middleware())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(metrics.Middleware())

	e.Validator = handler.NewValidator()

	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "Welcome to the server!")
	})
	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", metrics.Handler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authed := guard.Authenticated()
	admin := guard.Admin()

	e.POST("/jwt", h.Auth.IssueToken)

	e.GET("/users", h.User.ListUsers, authed, admin)
	e.POST("/user", h.User.CreateUser)
	e.GET("/user/admin/:email", h.User.AdminStatus, authed, guard.Self("email"))
	e.PATCH("/user/admin/:id", h.User.PromoteToAdmin, authed, admin)
	e.DELETE("/user/:id", h.User.DeleteUser, authed, admin)

	// carts are keyed by the email in the request; no identity check
	e.POST("/carts", h.Cart.AddToCart)
	e.GET("/carts", h.Cart.ListCart)
	e.DELETE("/carts/:id", h.Cart.RemoveFromCart)

	e.GET("/menu", h.Menu.ListMenu)
	e.GET("/menu/:id", h.Menu.GetMenuItem)
	e.POST("/menu", h.Menu.CreateMenuItem, authed, admin)
	e.PATCH("/menu/:id", h.Menu.UpdateMenuItem, authed, admin)
	e.DELETE("/menu/:id", h.Menu.DeleteMenuItem, authed, admin)

	e.GET("/review", h.Review.ListReviews)

	e.POST("/create_payment_intent", h.Payment.CreatePaymentIntent)
	e.GET("/payment/:email", h.Payment.PaymentHistory, authed, guard.Self("email"))
	e.POST("/payment", h.Payment.FinalizePayment)

	e.GET("/admin-stats", h.Stats.AdminStats, authed, admin)
	e.GET("/order-stats", h.Stats.OrderStats, authed, admin)
}
