package app

import (
	"net/http"
	"time"

	"englab/internal/app/observability"
	"englab/internal/assignment"
	"englab/internal/auth"
	"englab/internal/feedback"
	"englab/internal/generator"
	"englab/internal/gitsync"
	"englab/internal/problem"
	"englab/internal/report"
	"englab/internal/review"
	"englab/internal/student"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(cfg Config, stores *Stores) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	collector := observability.NewCollector(
		observability.CollectionGauge{Name: "problems", Len: stores.Problems.Len},
		observability.CollectionGauge{Name: "pending_problems", Len: stores.Pending.Len},
		observability.CollectionGauge{Name: "students", Len: stores.Students.Len},
		observability.CollectionGauge{Name: "assignments", Len: stores.Assignments.Len},
		observability.CollectionGauge{Name: "problem_requests", Len: stores.Requests.Len},
	)
	r.Use(collector.Middleware)

	problemSvc := problem.NewService(stores.Problems)
	problemHandler := problem.NewHandler(problemSvc)

	studentSvc := student.NewService(stores.Students, stores.Assignments)
	studentHandler := student.NewHandler(studentSvc)

	assignSvc := assignment.NewService(stores.Assignments, stores.Problems, stores.Students, stores.Settings)
	feedbackGen := feedback.NewGenerator(feedback.NewProseParser())
	assignHandler := assignment.NewHandler(assignSvc, problemSvc, feedbackGen)

	reviewSvc := review.NewService(stores.Pending, stores.Requests, problemSvc)
	reviewHandler := review.NewHandler(reviewSvc)

	genSvc := generator.NewService(generator.ServiceConfig{
		GeminiAPIKey: cfg.GeminiAPIKey,
		GeminiModel:  cfg.GeminiModel,
	}, reviewSvc)
	genHandler := generator.NewHandler(genSvc)

	syncClient := gitsync.NewClient(gitsync.ClientConfig{
		Token:  cfg.GitHubToken,
		Owner:  cfg.GitHubOwner,
		Repo:   cfg.GitHubRepo,
		Branch: cfg.GitHubBranch,
	})
	syncHandler := gitsync.NewHandler(gitsync.NewService(syncClient, problemSvc, cfg.GitHubPath))

	reportSvc := report.NewService(stores.Students, stores.Problems, stores.Assignments)
	reportHandler := report.NewHandler(reportSvc)

	authSvc := auth.NewService(auth.ServiceConfig{
		AdminPassHash:   cfg.AdminPassHash,
		TeacherPassHash: cfg.TeacherPassHash,
		SessionTTL:      time.Duration(cfg.SessionTTLMinutes) * time.Minute,
	}, studentSvc)
	authHandler := auth.NewHandler(authSvc)

	loginLimiter := NewIPRateLimiter(cfg.AuthRateLimitPerMin, time.Minute)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"englab","api":"/api/v1"}`))
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	r.Get("/metrics", collector.MetricsHandler)

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(CSRFMiddleware(cfg.CSRFEnforced))

		api.Group(func(public chi.Router) {
			public.Use(RateLimitMiddleware(loginLimiter))
			public.Post("/auth/login", authHandler.Login)
		})

		api.Group(func(secure chi.Router) {
			secure.Use(authHandler.RequireAuth)
			secure.Get("/auth/me", authHandler.Me)
			secure.Post("/auth/logout", authHandler.Logout)

			secure.Get("/problems", problemHandler.List)
			secure.Get("/problems/{id}", problemHandler.Get)

			secure.Get("/students/{studentID}/assignments", assignHandler.ListForStudent)
			secure.Get("/assignments/{id}", assignHandler.Get)
			secure.Post("/assignments/{id}/submit", assignHandler.Submit)
			secure.Get("/assignments/{id}/feedback", assignHandler.Feedback)
			secure.Post("/assignments/auto", assignHandler.AutoAssign)

			secure.Post("/requests", reviewHandler.CreateRequest)

			secure.Group(func(staff chi.Router) {
				staff.Use(authHandler.RequireRoles(auth.RoleTeacher, auth.RoleAdmin))

				staff.Post("/problems", problemHandler.Create)
				staff.Put("/problems/{id}", problemHandler.Update)
				staff.Delete("/problems/{id}", problemHandler.Delete)
				staff.Post("/problems/import/csv", problemHandler.ImportCSV)
				staff.Post("/problems/import/xlsx", problemHandler.ImportXLSX)
				staff.Get("/problems/export/csv", problemHandler.ExportCSV)
				staff.Get("/problems/export/xlsx", problemHandler.ExportXLSX)
				staff.Post("/problems/seed", problemHandler.Seed)

				staff.Get("/students", studentHandler.List)
				staff.Post("/students", studentHandler.Create)
				staff.Get("/students/{id}", studentHandler.Get)
				staff.Put("/students/{id}", studentHandler.Update)
				staff.Delete("/students/{id}", studentHandler.Delete)

				staff.Post("/assignments", assignHandler.Assign)
				staff.Post("/assignments/{id}/grade", assignHandler.Grade)

				staff.Get("/review/pending", reviewHandler.ListPending)
				staff.Post("/review/pending", reviewHandler.Enqueue)
				staff.Post("/review/pending/{id}/approve", reviewHandler.Approve)
				staff.Post("/review/pending/{id}/reject", reviewHandler.Reject)

				staff.Get("/requests", reviewHandler.ListRequests)
				staff.Post("/requests/{id}/approve", reviewHandler.ApproveRequest)
				staff.Post("/requests/{id}/reject", reviewHandler.RejectRequest)

				staff.Post("/generate", genHandler.Generate)
				staff.Get("/generate/quota", genHandler.Quota)

				staff.Get("/reports/overview", reportHandler.Overview)
				staff.Get("/reports/students/{studentID}", reportHandler.StudentSummary)
				staff.Get("/reports/students/{studentID}/card", reportHandler.ReportCard)

				staff.Get("/settings/auto-assign", assignHandler.GetSettings)
			})

			secure.Group(func(admin chi.Router) {
				admin.Use(authHandler.RequireRoles(auth.RoleAdmin))
				admin.Put("/settings/auto-assign", assignHandler.UpdateSettings)
				admin.Post("/sync/export", syncHandler.Export)
				admin.Post("/sync/import", syncHandler.Import)
			})
		})
	})

	return r
}
