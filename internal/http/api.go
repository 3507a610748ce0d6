package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"quest-tracker/internal/domain"
	"quest-tracker/internal/service"
)

const requestIDHeader = "X-Request-ID"

// Handler wires HTTP routes to domain services.
type Handler struct {
	users       service.UserService
	tasks       service.TaskService
	progression service.ProgressionService
	leaderboard service.LeaderboardService
	logger      logrus.FieldLogger
}

func NewHandler(
	users service.UserService,
	tasks service.TaskService,
	progression service.ProgressionService,
	leaderboard service.LeaderboardService,
	logger logrus.FieldLogger,
) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		users:       users,
		tasks:       tasks,
		progression: progression,
		leaderboard: leaderboard,
		logger:      logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", requestIDHeader)
	corsCfg.ExposeHeaders = []string{requestIDHeader}
	router.Use(cors.New(corsCfg))
	router.Use(h.requestLogger())

	api := router.Group("/api")
	{
		api.POST("/users", h.registerUser)
		api.GET("/users/:id", h.getUser)
		api.POST("/users/:id/tasks", h.createTask)
		api.GET("/users/:id/tasks", h.listTasks)
		api.DELETE("/users/:id/tasks/:taskID", h.deleteTask)
		api.POST("/users/:id/tasks/:taskID/complete", h.completeTask)
		api.GET("/leaderboard", h.topUsers)
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})
	}
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)

		start := time.Now()
		c.Next()

		h.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).String(),
		}).Debug("request served")
	}
}

type registerUserRequest struct {
	ID       *int64 `json:"id" binding:"required"`
	Username string `json:"username"`
}

type createTaskRequest struct {
	Title    string     `json:"title" binding:"required"`
	XP       int        `json:"xp"`
	RemindAt *time.Time `json:"remind_at"`
}

type TaskResponse struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	XP       int     `json:"xp"`
	IsDone   bool    `json:"is_done"`
	RemindAt *string `json:"remind_at,omitempty"`
}

type UserResponse struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	XP             int    `json:"xp"`
	Level          int    `json:"level"`
	TasksCompleted int    `json:"tasks_completed"`
}

func (h *Handler) registerUser(c *gin.Context) {
	var req registerUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.users.Register(c.Request.Context(), *req.ID, req.Username)
	if err != nil {
		h.writeError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"id": *req.ID, "created": created})
}

func (h *Handler) getUser(c *gin.Context) {
	userID, ok := parseID(c, "id")
	if !ok {
		return
	}

	user, err := h.users.Get(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, UserResponse{
		ID:             user.ID,
		Username:       user.Username,
		XP:             user.XP,
		Level:          user.Level,
		TasksCompleted: user.TasksCompleted,
	})
}

func (h *Handler) createTask(c *gin.Context) {
	userID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.tasks.CreateTask(c.Request.Context(), service.CreateTaskInput{
		UserID:   userID,
		Title:    req.Title,
		XP:       req.XP,
		RemindAt: req.RemindAt,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *Handler) listTasks(c *gin.Context) {
	userID, ok := parseID(c, "id")
	if !ok {
		return
	}

	tasks, err := h.tasks.ListTasks(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]TaskResponse, len(tasks))
	for i := range tasks {
		resp[i] = taskToResponse(tasks[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) deleteTask(c *gin.Context) {
	userID, ok := parseID(c, "id")
	if !ok {
		return
	}
	taskID, ok := parseID(c, "taskID")
	if !ok {
		return
	}

	removed, err := h.tasks.DeleteTask(c.Request.Context(), userID, taskID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": removed})
}

func (h *Handler) completeTask(c *gin.Context) {
	userID, ok := parseID(c, "id")
	if !ok {
		return
	}
	taskID, ok := parseID(c, "taskID")
	if !ok {
		return
	}

	completion, err := h.progression.CompleteTask(c.Request.Context(), userID, taskID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, completion)
}

func (h *Handler) topUsers(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(domain.DefaultLeaderboardLimit)))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}

	entries, err := h.leaderboard.Top(c.Request.Context(), limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func parseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + param})
		return 0, false
	}
	return id, true
}

// writeError maps the domain error taxonomy onto HTTP status codes.
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotCompletable):
		c.JSON(http.StatusConflict, gin.H{"error": domain.ErrNotCompletable.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrStorageUnavailable):
		h.logger.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": domain.ErrStorageUnavailable.Error()})
	default:
		h.logger.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func taskToResponse(task domain.Task) TaskResponse {
	resp := TaskResponse{
		ID:     task.ID,
		Title:  task.Title,
		XP:     task.XP,
		IsDone: task.IsDone,
	}
	if task.RemindAt != nil {
		v := task.RemindAt.Format(time.RFC3339)
		resp.RemindAt = &v
	}
	return resp
}
