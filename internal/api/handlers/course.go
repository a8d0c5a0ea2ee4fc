package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmartin/coursehub/internal/api/middleware"
	"github.com/jmartin/coursehub/internal/service"
)

type CourseHandler struct {
	courseService *service.CourseService
}

func NewCourseHandler(courseService *service.CourseService) *CourseHandler {
	return &CourseHandler{courseService: courseService}
}

// CourseRequest carries the course fields plus an optional base64 thumbnail.
type CourseRequest struct {
	service.CourseInput
	Thumbnail string `json:"thumbnail"`
}

func (h *CourseHandler) decode(r *http.Request) (service.CourseInput, error) {
	var req CourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return service.CourseInput{}, err
	}

	input := req.CourseInput
	image, err := decodeImage(req.Thumbnail)
	if err != nil {
		return service.CourseInput{}, err
	}
	input.Thumbnail = image
	return input, nil
}

func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	input, err := h.decode(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	course, err := h.courseService.Create(r.Context(), input)
	if err != nil {
		handleError(w, "course.Create", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"course":  course,
	})
}

func (h *CourseHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid course id")
		return
	}

	input, err := h.decode(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	course, err := h.courseService.Update(r.Context(), id, input)
	if err != nil {
		handleError(w, "course.Update", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"course":  course,
	})
}

func (h *CourseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid course id")
		return
	}

	course, err := h.courseService.Get(r.Context(), id)
	if err != nil {
		handleError(w, "course.Get", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"course":  course,
	})
}

func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	courses, err := h.courseService.List(r.Context())
	if err != nil {
		handleError(w, "course.List", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"courses": courses,
	})
}

func (h *CourseHandler) Content(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "please login to access this resource")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid course id")
		return
	}

	content, err := h.courseService.ContentFor(r.Context(), user, id)
	if err != nil {
		handleError(w, "course.Content", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"content": content,
	})
}
