package httpapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/nibzard/todolist-go/internal/todo"
	"github.com/nibzard/todolist-go/internal/view"
)

// errTaskNotFound answers ids the store does not hold. The store would treat
// them as no-ops; handlers check first so clients see the miss.
var errTaskNotFound = echo.NewHTTPError(http.StatusNotFound, "task not found")

type tasksResponse struct {
	Tasks   []todo.Task `json:"tasks"`
	Version uint64      `json:"version"`
}

type categoriesResponse struct {
	Categories []string `json:"categories"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
	Tasks   int    `json:"tasks"`
	Version uint64 `json:"version"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// taskRequest is the body of create and update calls.
type taskRequest struct {
	Title    string `json:"title"`
	DueDate  string `json:"due_date"`
	Priority string `json:"priority"`
	Category string `json:"category"`
}

func (s *Server) draft(req taskRequest) (todo.Draft, error) {
	title, err := todo.ValidateTitle(req.Title)
	if err != nil {
		return todo.Draft{}, err
	}
	priority := s.opts.DefaultPriority
	if strings.TrimSpace(req.Priority) != "" {
		if priority, err = todo.ParsePriority(req.Priority); err != nil {
			return todo.Draft{}, err
		}
	}
	due, err := todo.ParseDueDate(req.DueDate, s.opts.Location)
	if err != nil {
		return todo.Draft{}, err
	}
	return todo.Draft{
		Title:    title,
		DueDate:  due,
		Priority: priority,
		Category: strings.TrimSpace(req.Category),
	}, nil
}

func (s *Server) bindDraft(c echo.Context) (todo.Draft, error) {
	var req taskRequest
	if err := c.Bind(&req); err != nil {
		return todo.Draft{}, err
	}
	d, err := s.draft(req)
	if err != nil {
		return todo.Draft{}, echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	}
	return d, nil
}

func (s *Server) healthz(c echo.Context) error {
	s.mu.Lock()
	resp := healthResponse{
		Status:  "ok",
		Backend: s.store.Backend().Describe(),
		Tasks:   s.store.Len(),
		Version: s.store.Version(),
	}
	if err := s.store.PersistErr(); err != nil {
		resp.Status = "degraded"
	}
	s.mu.Unlock()
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) listTasks(c echo.Context) error {
	p := view.Params{
		Search: c.QueryParam("search"),
		Sort:   s.opts.DefaultSort,
	}
	query := c.QueryParams()
	if query.Has("category") {
		cat := query.Get("category")
		p.Category = &cat
	}
	if raw := query.Get("sort"); raw != "" {
		sortOpt, err := view.ParseSortOption(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		p.Sort = sortOpt
	}

	s.mu.Lock()
	resp := tasksResponse{Tasks: s.store.View(p), Version: s.store.Version()}
	s.mu.Unlock()
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) createTask(c echo.Context) error {
	d, err := s.bindDraft(c)
	if err != nil {
		return err
	}
	s.mu.Lock()
	task := s.store.Create(c.Request().Context(), d)
	s.mu.Unlock()
	return c.JSON(http.StatusCreated, task)
}

func (s *Server) getTask(c echo.Context) error {
	s.mu.Lock()
	task, ok := s.store.Get(c.Param("id"))
	s.mu.Unlock()
	if !ok {
		return errTaskNotFound
	}
	return c.JSON(http.StatusOK, task)
}

func (s *Server) updateTask(c echo.Context) error {
	d, err := s.bindDraft(c)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.store.Get(c.Param("id")); !ok {
		return errTaskNotFound
	}
	s.store.Update(c.Request().Context(), c.Param("id"), d)
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) toggleTask(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.store.Get(c.Param("id")); !ok {
		return errTaskNotFound
	}
	s.store.Toggle(c.Request().Context(), c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) deleteTask(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.store.Get(c.Param("id")); !ok {
		return errTaskNotFound
	}
	s.store.Delete(c.Request().Context(), c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) listCategories(c echo.Context) error {
	s.mu.Lock()
	cats := s.store.Categories()
	s.mu.Unlock()
	return c.JSON(http.StatusOK, categoriesResponse{Categories: cats})
}
