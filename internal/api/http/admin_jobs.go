package http

import (
	"embed"
	"html/template"
	"net/http"
	"strconv"

	"journal-backend/internal/domain"
	"journal-backend/internal/logger"
	"journal-backend/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

type jobsView string

const (
	jobsViewPending jobsView = "pending"
	jobsViewFailed  jobsView = "failed"
)

const jobsPageSize = 25

type adminJobsHandler struct {
	svc  service.JobAdminService
	tmpl *template.Template
}

func newAdminJobsHandler(svc service.JobAdminService) *adminJobsHandler {
	return &adminJobsHandler{
		svc:  svc,
		tmpl: template.Must(template.ParseFS(templateFS, "templates/jobs.html")),
	}
}

// jobsPage is the data of templates/jobs.html.
type jobsPage struct {
	View     jobsView
	Jobs     []domain.Job
	Failed   []domain.FailedJob
	Total    int32
	Page     int32
	PrevPage int32
	NextPage int32
}

// page renders the html listing for view. Job queues are site-wide, so only site
// admins get in.
func (h *adminJobsHandler) page(view jobsView) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireScope(w, r, nil) {
			return
		}
		page, _ := pageParams(r)
		if page < 1 {
			page = 1
		}
		size := int32(jobsPageSize)
		data := jobsPage{View: view, Page: page}

		var (
			count int
			err   error
		)
		if view == jobsViewFailed {
			data.Failed, data.Total, err = h.svc.ListFailedJobs(r.Context(), page, size)
			count = len(data.Failed)
		} else {
			data.Jobs, data.Total, err = h.svc.ListJobs(r.Context(), page, size)
			count = len(data.Jobs)
		}
		if err != nil {
			writeError(w, r, err)
			return
		}
		if page > 1 {
			data.PrevPage = page - 1
		}
		if offset := (page-1)*jobsPageSize + int32(count); count > 0 && offset < data.Total {
			data.NextPage = page + 1
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := h.tmpl.Execute(w, data); err != nil {
			logger.ErrorContext(r.Context(), "Failed to render jobs page", "view", view, "error", err)
		}
	}
}

func (h *adminJobsHandler) listJSON(w http.ResponseWriter, r *http.Request) {
	if !requireScope(w, r, nil) {
		return
	}
	page, size := pageParams(r)
	jobs, total, err := h.svc.ListJobs(r.Context(), page, size)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if jobs == nil {
		jobs = []domain.Job{}
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(int(total)))
	writeJSON(w, http.StatusOK, map[string]any{"jobs": jobs, "total": total})
}

func (h *adminJobsHandler) listFailedJSON(w http.ResponseWriter, r *http.Request) {
	if !requireScope(w, r, nil) {
		return
	}
	page, size := pageParams(r)
	jobs, total, err := h.svc.ListFailedJobs(r.Context(), page, size)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if jobs == nil {
		jobs = []domain.FailedJob{}
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(int(total)))
	writeJSON(w, http.StatusOK, map[string]any{"jobs": jobs, "total": total})
}

func (h *adminJobsHandler) getFailed(w http.ResponseWriter, r *http.Request) {
	if !requireScope(w, r, nil) {
		return
	}
	id, ok := pathID64(w, r, "id")
	if !ok {
		return
	}
	job, err := h.svc.GetFailedJob(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (h *adminJobsHandler) redispatch(w http.ResponseWriter, r *http.Request) {
	if !requireScope(w, r, nil) {
		return
	}
	id, ok := pathID64(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.RedispatchFailedJob(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *adminJobsHandler) redispatchAll(w http.ResponseWriter, r *http.Request) {
	if !requireScope(w, r, nil) {
		return
	}
	n, err := h.svc.RedispatchAllFailedJobs(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"redispatched": n})
}

func (h *adminJobsHandler) deleteFailed(w http.ResponseWriter, r *http.Request) {
	if !requireScope(w, r, nil) {
		return
	}
	id, ok := pathID64(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteFailedJob(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
