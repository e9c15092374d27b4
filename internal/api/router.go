package api

import (
	"database/sql"
	"net/http"

	"github.com/aguilarm/mobiliario/internal/events"
	"github.com/aguilarm/mobiliario/internal/mailer"
	"github.com/aguilarm/mobiliario/internal/model"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string, m mailer.Mailer, ev *events.Client) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	categoriesHandler := &CategoriesHandler{DB: db}
	articlesHandler := &ArticlesHandler{DB: db}
	requestsHandler := &RequestsHandler{DB: db, Mailer: m}
	loadingHandler := &LoadingHandler{DB: db}
	repairsHandler := &RepairsHandler{DB: db}
	deliveryHandler := &DeliveryHandler{DB: db, Mailer: m}
	poolsHandler := &PoolsHandler{DB: db}
	eventsHandler := &EventsHandler{Client: ev}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireStaff := RequireStaff()
	requireInfra := RequireRole(model.RoleAdmin, model.RoleInfrastructure)
	requireAreas := RequireRole(model.RoleAdmin, model.RoleAreas)

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Users (admin only).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("GET /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Get))))
	mux.Handle("PUT /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Update))))
	mux.Handle("PUT /api/users/{id}/password", authMW(requireAdmin(http.HandlerFunc(usersHandler.ResetPassword))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	// Categories: read (all roles), write (staff).
	mux.Handle("GET /api/categories", authMW(http.HandlerFunc(categoriesHandler.List)))
	mux.Handle("POST /api/categories", authMW(requireStaff(http.HandlerFunc(categoriesHandler.Create))))
	mux.Handle("GET /api/categories/{id}", authMW(http.HandlerFunc(categoriesHandler.Get)))
	mux.Handle("PUT /api/categories/{id}", authMW(requireStaff(http.HandlerFunc(categoriesHandler.Update))))
	mux.Handle("DELETE /api/categories/{id}", authMW(requireStaff(http.HandlerFunc(categoriesHandler.Delete))))

	// Articles: read (all roles), write (staff).
	mux.Handle("GET /api/articles", authMW(http.HandlerFunc(articlesHandler.List)))
	mux.Handle("POST /api/articles", authMW(requireStaff(http.HandlerFunc(articlesHandler.Create))))
	mux.Handle("GET /api/articles/{id}", authMW(http.HandlerFunc(articlesHandler.Get)))
	mux.Handle("PUT /api/articles/{id}", authMW(requireStaff(http.HandlerFunc(articlesHandler.Update))))
	mux.Handle("DELETE /api/articles/{id}", authMW(requireStaff(http.HandlerFunc(articlesHandler.Delete))))
	mux.Handle("PUT /api/articles/{id}/image", authMW(requireStaff(http.HandlerFunc(articlesHandler.UploadImage))))
	mux.Handle("GET /api/articles/{id}/image", authMW(http.HandlerFunc(articlesHandler.GetImage)))

	// Reservation requests.
	mux.Handle("GET /api/requests", authMW(http.HandlerFunc(requestsHandler.List)))
	mux.Handle("POST /api/requests/check", authMW(http.HandlerFunc(requestsHandler.Check)))
	mux.Handle("POST /api/requests", authMW(http.HandlerFunc(requestsHandler.Create)))
	mux.Handle("GET /api/requests/{id}", authMW(http.HandlerFunc(requestsHandler.Get)))
	mux.Handle("PUT /api/requests/{id}", authMW(http.HandlerFunc(requestsHandler.Update)))
	mux.Handle("POST /api/requests/{id}/approve", authMW(requireStaff(http.HandlerFunc(requestsHandler.Approve))))
	mux.Handle("POST /api/requests/{id}/reject", authMW(requireStaff(http.HandlerFunc(requestsHandler.Reject))))
	mux.Handle("DELETE /api/requests/{id}", authMW(requireAdmin(http.HandlerFunc(requestsHandler.Delete))))
	mux.Handle("GET /api/requests/{id}/reminders", authMW(http.HandlerFunc(requestsHandler.Reminders)))

	// Delivery checklist (staff).
	mux.Handle("GET /api/requests/{id}/delivery", authMW(http.HandlerFunc(deliveryHandler.List)))
	mux.Handle("POST /api/requests/{id}/delivery/{article}", authMW(requireStaff(http.HandlerFunc(deliveryHandler.Save))))
	mux.Handle("GET /api/requests/{id}/delivery/{article}/{phase}/signature", authMW(http.HandlerFunc(deliveryHandler.GetSignature)))

	// Loading-time blackout windows (infrastructure).
	mux.Handle("GET /api/loading-windows", authMW(http.HandlerFunc(loadingHandler.List)))
	mux.Handle("POST /api/loading-windows", authMW(requireInfra(http.HandlerFunc(loadingHandler.Create))))
	mux.Handle("DELETE /api/loading-windows/{id}", authMW(requireInfra(http.HandlerFunc(loadingHandler.Delete))))

	// Repairs: created by areas, finalized and approved by infrastructure.
	mux.Handle("GET /api/repairs", authMW(http.HandlerFunc(repairsHandler.List)))
	mux.Handle("POST /api/repairs", authMW(requireAreas(http.HandlerFunc(repairsHandler.Create))))
	mux.Handle("GET /api/repairs/{id}", authMW(http.HandlerFunc(repairsHandler.Get)))
	mux.Handle("POST /api/repairs/{id}/finalize", authMW(requireInfra(http.HandlerFunc(repairsHandler.Finalize))))
	mux.Handle("POST /api/repairs/{id}/approve", authMW(requireInfra(http.HandlerFunc(repairsHandler.Approve))))
	mux.Handle("GET /api/repairs/{id}/handovers", authMW(http.HandlerFunc(repairsHandler.Handovers)))
	mux.Handle("PUT /api/handovers/{id}/notes", authMW(requireInfra(http.HandlerFunc(repairsHandler.SetHandoverNotes))))

	// Notification pools (admin).
	mux.Handle("GET /api/pools", authMW(requireAdmin(http.HandlerFunc(poolsHandler.List))))
	mux.Handle("POST /api/pools", authMW(requireAdmin(http.HandlerFunc(poolsHandler.Create))))
	mux.Handle("DELETE /api/pools/{id}", authMW(requireAdmin(http.HandlerFunc(poolsHandler.Delete))))

	// Event title lookup (best-effort enrichment).
	mux.Handle("GET /api/events/lookup", authMW(http.HandlerFunc(eventsHandler.Lookup)))

	return mux
}
