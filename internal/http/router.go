package http

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/guntanalaganesh-web/shoe-store/internal/cart"
	"github.com/guntanalaganesh-web/shoe-store/internal/catalog"
	"github.com/guntanalaganesh-web/shoe-store/internal/config"
	"github.com/guntanalaganesh-web/shoe-store/internal/middleware"
	"github.com/guntanalaganesh-web/shoe-store/internal/notifications"
	"github.com/guntanalaganesh-web/shoe-store/internal/order"
	"github.com/guntanalaganesh-web/shoe-store/internal/session"
	"github.com/guntanalaganesh-web/shoe-store/internal/user"
)

type Deps struct {
	Logger *log.Logger
	Cfg    config.Config

	Catalog  *catalog.Service
	Carts    *cart.Service
	Orders   *order.Service
	Users    *user.Service
	Sessions session.Store
	Feed     notifications.Repository
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID, chimw.RealIP)
	r.Use(chimw.Logger, chimw.Recoverer)
	r.Use(middleware.CorrelationID)
	r.Use(middleware.CORS(d.Cfg.CORSAllowOrigins))
	r.Use(middleware.Sessions(d.Sessions, d.Cfg.SessionTTL))

	r.Get("/health", healthHandler)

	cat := NewCatalogHandler(d.Catalog, d.Users, d.Logger)
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", cat.ListProducts)
		r.Get("/search", cat.SearchProducts)
		r.Route("/{idOrSlug}", func(r chi.Router) {
			r.Get("/", cat.GetProduct)
			r.With(middleware.RequireUser).Post("/reviews", cat.CreateReview)
		})
	})

	crt := NewCartHandler(d.Carts, d.Logger)
	r.Route("/api/cart", func(r chi.Router) {
		r.Get("/", crt.GetCart)
		r.Post("/add", crt.AddItem)
		r.Put("/update", crt.UpdateItem)
		r.Delete("/remove", crt.RemoveItem)
		r.Delete("/clear", crt.ClearCart)
	})

	ord := NewOrderHandler(d.Orders, d.Logger)
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Post("/", ord.Checkout)
		r.Get("/", ord.ListOrders)
		r.Get("/{orderID}", ord.GetOrder)
		r.Post("/{orderID}/cancel", ord.CancelOrder)
	})

	auth := NewAuthHandler(d.Users, d.Sessions, d.Logger)
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", auth.Register)
		r.Post("/login", auth.Login)
		r.Post("/logout", auth.Logout)
		r.With(middleware.RequireUser).Get("/me", auth.Me)
	})

	adm := NewAdminHandler(d.Catalog, d.Orders, d.Feed, d.Logger)
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.RequireAdmin(d.Users))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", adm.ListProducts)
			r.Post("/", adm.CreateProduct)
			r.Put("/{productID}", adm.UpdateProduct)
			r.Delete("/{productID}", adm.DeleteProduct)
			r.Put("/{productID}/stock", adm.SetStock)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", adm.ListOrders)
			r.Put("/{orderID}/status", adm.UpdateOrderStatus)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", adm.ListNotifications)
			r.Put("/{notificationID}/read", adm.MarkNotificationRead)
		})
	})

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "storefront",
	})
}
