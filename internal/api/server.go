package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/verdant/sprout/internal/service"
)

type Server struct {
	mx             *chi.Mux
	userService    service.UserServiceI
	sessionService service.SessionServiceI
	plantsService  service.PlantsServiceI
	careService    service.CareServiceI
}

type ServicesList struct {
	UserService    service.UserServiceI
	SessionService service.SessionServiceI
	PlantsService  service.PlantsServiceI
	CareService    service.CareServiceI
}

func New(servicesOptions *ServicesList) *Server {
	return &Server{
		mx:             chi.NewMux(),
		userService:    servicesOptions.UserService,
		sessionService: servicesOptions.SessionService,
		plantsService:  servicesOptions.PlantsService,
		careService:    servicesOptions.CareService,
	}
}

func (s *Server) routes() {
	s.mx.Route("/api/v1", func(r chi.Router) {
		r.Use(s.RequestIDMiddleware)
		r.Use(s.SettingUpLoggerMiddleware)
		r.Post("/auth/register", s.Register)
		r.Post("/auth/login", s.Login)
		r.Group(func(r chi.Router) {
			r.Use(s.SessionAuthMiddleware)
			r.Use(s.LoggerExtensionMiddleware)
			r.Use(s.CSRFMiddleware)
			r.Post("/auth/logout", s.Logout)
			r.Post("/plants", s.CreatePlant)
			r.Get("/plants", s.GetPlants)
			r.Get("/plants/{id}", s.GetPlant)
			r.Patch("/plants/{id}", s.UpdatePlant)
			r.Delete("/plants/{id}", s.DeletePlant)
			r.Get("/plants/{id}/care-logs", s.GetPlantCareLogs)
			r.Get("/plants/{id}/advice", s.GetPlantAdvice)
			r.Post("/care-logs", s.CreateCareLog)
			r.Get("/reminders", s.GetReminders)
			r.Post("/reminders/{id}/complete", s.CompleteReminder)
			r.Post("/reminders/{id}/dismiss", s.DismissReminder)
			r.Get("/dashboard/care-needed", s.GetCareNeeded)
		})
	})
}

func (s *Server) Run(addr string) error {
	s.routes()
	return http.ListenAndServe(addr, s.mx)
}

// Handler exposes the routed mux for tests.
func (s *Server) Handler() http.Handler {
	s.routes()
	return s.mx
}
