package server

import (
	"embed"
	"html/template"
	nethttp "net/http"
	"strconv"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/saasgenius/saasgenius/internal/biz"
	"github.com/saasgenius/saasgenius/internal/conf"
	"github.com/saasgenius/saasgenius/internal/render"
	"github.com/saasgenius/saasgenius/internal/service"
)

//go:embed assets/*
var assets embed.FS

var pages = template.Must(template.ParseFS(assets, "assets/*.html"))

type pageData struct {
	User     *biz.User
	Project  map[string]any
	Sections map[string]template.HTML
}

func NewHTTPServer(c *conf.Server, s *service.WebService, projects *biz.ProjectUseCase, logger log.Logger) *http.Server {
	helper := log.NewHelper(logger)

	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
		),
	}
	if c.Http.Addr != "" {
		opts = append(opts, http.Address(c.Http.Addr))
	}
	if c.Http.Timeout != "" {
		if d, err := time.ParseDuration(c.Http.Timeout); err == nil {
			opts = append(opts, http.Timeout(d))
		}
	}

	srv := http.NewServer(opts...)

	renderPage := func(w nethttp.ResponseWriter, name string, data pageData) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := pages.ExecuteTemplate(w, name, data); err != nil {
			helper.Errorf("render %s: %v", name, err)
		}
	}

	// Pages
	srv.HandleFunc("/", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.URL.Path != "/" {
			nethttp.NotFound(w, r)
			return
		}
		renderPage(w, "index.html", pageData{User: s.CurrentUser(r)})
	})

	srv.HandleFunc("/login", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if s.CurrentUser(r) != nil {
			nethttp.Redirect(w, r, "/dashboard", nethttp.StatusFound)
			return
		}
		renderPage(w, "login.html", pageData{})
	})

	srv.HandleFunc("/dashboard", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		u := s.CurrentUser(r)
		if u == nil {
			nethttp.Redirect(w, r, "/login", nethttp.StatusFound)
			return
		}
		renderPage(w, "dashboard.html", pageData{User: u})
	})

	srv.HandleFunc("/analysis", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		u := s.CurrentUser(r)
		if u == nil {
			nethttp.Redirect(w, r, "/login", nethttp.StatusFound)
			return
		}
		id, err := strconv.Atoi(r.URL.Query().Get("id"))
		if err != nil || id <= 0 {
			nethttp.Redirect(w, r, "/dashboard", nethttp.StatusFound)
			return
		}
		p, err := projects.Get(r.Context(), u.ID, id)
		if err != nil {
			nethttp.Redirect(w, r, "/dashboard", nethttp.StatusFound)
			return
		}
		renderPage(w, "analysis.html", pageData{
			User: u,
			Project: map[string]any{
				"ID":          p.ID,
				"Title":       p.Title,
				"Description": p.Description,
				"IsFavorite":  p.IsFavorite,
				"CreatedAt":   p.CreatedAt.Format("2006-01-02 15:04"),
			},
			Sections: render.RenderAll(p.AnalysisResult),
		})
	})

	srv.HandleFunc("/static/app.css", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		content, _ := assets.ReadFile("assets/app.css")
		w.Header().Set("Content-Type", "text/css; charset=utf-8")
		_, _ = w.Write(content)
	})

	// Analysis API
	srv.HandleFunc("/analyze_project", s.AnalyzeProject)
	srv.HandleFunc("/api/analyze/async", s.AnalyzeAsync)
	srv.HandleFunc("/api/analyze/status/{id}", s.TaskStatus)
	srv.HandleFunc("/api/analyze/cancel/{id}", s.CancelTask)
	srv.HandleFunc("/api/history", s.History)

	// Project API
	srv.HandleFunc("/api/projects", s.Projects)
	srv.HandleFunc("/api/projects/{id}", s.Project)
	srv.HandleFunc("/api/projects/{id}/favorite", s.ToggleFavorite)
	srv.HandleFunc("/api/projects/{id}/export", s.ExportProject)

	// Auth API
	srv.HandleFunc("/auth/register", s.Register)
	srv.HandleFunc("/auth/login", s.Login)
	srv.HandleFunc("/auth/demo-login", s.DemoLogin)
	srv.HandleFunc("/auth/logout", s.Logout)
	srv.HandleFunc("/auth/profile", s.Profile)
	srv.HandleFunc("/auth/change-password", s.ChangePassword)

	// Operations
	srv.HandleFunc("/health", s.Health)
	srv.HandleFunc("/metrics", s.Metrics)
	srv.HandleFunc("/performance", s.Performance)

	return srv
}
