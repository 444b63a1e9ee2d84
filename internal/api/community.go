package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/autopneuma/pneuma/internal/domain"
)

func (s *Server) communityRoutes(r chi.Router) {
	r.Get("/categories", s.listCategories)

	r.Get("/posts", s.listPosts)
	r.Get("/posts/{postID}", s.getPost)
	r.Get("/posts/{postID}/related", s.relatedPosts)

	r.Get("/prayer-requests", s.listPrayerRequests)
	r.Get("/prayer-requests/{requestID}", s.getPrayerRequest)

	r.Get("/projects", s.listProjects)
	r.Get("/projects/{slug}", s.getProject)

	r.Group(func(r chi.Router) {
		r.Use(requireUser)

		r.Post("/posts", s.createPost)
		r.Post("/posts/{postID}/comments", s.addComment)

		r.Post("/prayer-requests", s.createPrayerRequest)
		r.Post("/prayer-requests/{requestID}/pray", s.pray)
		r.Post("/prayer-requests/{requestID}/updates", s.addPrayerUpdate)

		r.Post("/projects", s.submitProject)
		r.Post("/projects/{slug}/star", s.toggleStar)

		r.Get("/profile", s.getProfile)
		r.Put("/profile", s.setupProfile)

		r.Get("/admin/metrics", s.adminMetrics)
	})
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"categories": domain.Categories})
}

func (s *Server) listPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := s.svc.Community.ListPosts(r.Context(),
		r.URL.Query().Get("category"), intParam(r, "limit", 20), intParam(r, "offset", 0))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": posts})
}

func (s *Server) createPost(w http.ResponseWriter, r *http.Request) {
	var in domain.NewPost
	if !decode(w, r, &in) {
		return
	}
	res, err := s.svc.Community.CreatePost(r.Context(), userID(r), in)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) getPost(w http.ResponseWriter, r *http.Request) {
	thread, err := s.svc.Community.GetPost(r.Context(), userID(r), chi.URLParam(r, "postID"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, thread)
}

func (s *Server) relatedPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := s.svc.Community.RelatedPosts(r.Context(), chi.URLParam(r, "postID"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": posts})
}

func (s *Server) addComment(w http.ResponseWriter, r *http.Request) {
	var in domain.NewComment
	if !decode(w, r, &in) {
		return
	}
	comment, err := s.svc.Community.AddComment(r.Context(), userID(r), chi.URLParam(r, "postID"), in)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (s *Server) listPrayerRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := s.svc.Community.ListPrayerRequests(r.Context(),
		domain.PrayerCategory(r.URL.Query().Get("category")), intParam(r, "limit", 20), intParam(r, "offset", 0))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"prayer_requests": reqs})
}

func (s *Server) createPrayerRequest(w http.ResponseWriter, r *http.Request) {
	var in domain.NewPrayerRequest
	if !decode(w, r, &in) {
		return
	}
	req, err := s.svc.Community.CreatePrayerRequest(r.Context(), userID(r), in)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

func (s *Server) getPrayerRequest(w http.ResponseWriter, r *http.Request) {
	thread, err := s.svc.Community.GetPrayerRequest(r.Context(), userID(r), chi.URLParam(r, "requestID"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, thread)
}

func (s *Server) pray(w http.ResponseWriter, r *http.Request) {
	count, err := s.svc.Community.Pray(r.Context(), userID(r), chi.URLParam(r, "requestID"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"prayer_count": count})
}

func (s *Server) addPrayerUpdate(w http.ResponseWriter, r *http.Request) {
	var in domain.NewPrayerUpdate
	if !decode(w, r, &in) {
		return
	}
	update, err := s.svc.Community.AddPrayerUpdate(r.Context(), userID(r), chi.URLParam(r, "requestID"), in)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, update)
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.svc.Community.ListProjects(r.Context(),
		domain.ProjectStatus(r.URL.Query().Get("status")), intParam(r, "limit", 20), intParam(r, "offset", 0))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

func (s *Server) submitProject(w http.ResponseWriter, r *http.Request) {
	var in domain.NewProject
	if !decode(w, r, &in) {
		return
	}
	project, err := s.svc.Community.SubmitProject(r.Context(), userID(r), in)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	project, err := s.svc.Community.GetProject(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (s *Server) toggleStar(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Community.ToggleStar(r.Context(), userID(r), chi.URLParam(r, "slug"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.svc.Community.GetProfile(r.Context(), userID(r))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) setupProfile(w http.ResponseWriter, r *http.Request) {
	var in domain.ProfileSetup
	if !decode(w, r, &in) {
		return
	}
	profile, err := s.svc.Community.SetupProfile(r.Context(), userID(r), in)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) adminMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := s.svc.Community.AdminMetrics(r.Context(), userID(r))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}
