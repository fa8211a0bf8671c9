// controllers/todo.go
package controllers

import (
	"context"
	"errors"
	"net/http"

	"customerhub-backend/models"
	"customerhub-backend/services"
	"customerhub-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// TodoInput defines the expected JSON structure for creating or replacing a todo
type TodoInput struct {
	Title       string `json:"title" binding:"required,max=100"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// TodoPatchInput defines the expected JSON structure for a partial update
type TodoPatchInput struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

type TodoStore interface {
	ListTodos(ctx context.Context) ([]models.Todo, error)
	GetTodo(ctx context.Context, id uint) (*models.Todo, error)
	CreateTodo(ctx context.Context, in services.TodoData) (*models.Todo, error)
	UpdateTodo(ctx context.Context, id uint, in services.TodoData) (*models.Todo, error)
	PatchTodo(ctx context.Context, id uint, in services.TodoPatch) (*models.Todo, error)
	DeleteTodo(ctx context.Context, id uint) error
}

type TodoController struct {
	store TodoStore
	log   logrus.FieldLogger
}

func NewTodoController(store TodoStore, log logrus.FieldLogger) *TodoController {
	return &TodoController{store: store, log: log}
}

func (tc *TodoController) GetTodos(c *gin.Context) {
	todos, err := tc.store.ListTodos(c.Request.Context())
	if err != nil {
		tc.serverError(c, err, "Failed to retrieve todos")
		return
	}

	c.JSON(http.StatusOK, todos)
}

func (tc *TodoController) CreateTodo(c *gin.Context) {
	var input TodoInput
	if errs := utils.BindJSON(c, &input); errs != nil {
		utils.RespondWithFieldErrors(c, http.StatusBadRequest, errs)
		return
	}

	todo, err := tc.store.CreateTodo(c.Request.Context(), services.TodoData(input))
	if err != nil {
		tc.serverError(c, err, "Failed to create todo")
		return
	}

	c.JSON(http.StatusCreated, todo)
}

func (tc *TodoController) GetTodo(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		utils.RespondWithError(c, http.StatusNotFound, "Todo not found")
		return
	}

	todo, err := tc.store.GetTodo(c.Request.Context(), id)
	if err != nil {
		tc.storeError(c, err, "Database error")
		return
	}

	c.JSON(http.StatusOK, todo)
}

func (tc *TodoController) UpdateTodo(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		utils.RespondWithError(c, http.StatusNotFound, "Todo not found")
		return
	}

	var input TodoInput
	if errs := utils.BindJSON(c, &input); errs != nil {
		utils.RespondWithFieldErrors(c, http.StatusBadRequest, errs)
		return
	}

	todo, err := tc.store.UpdateTodo(c.Request.Context(), id, services.TodoData(input))
	if err != nil {
		tc.storeError(c, err, "Failed to update todo")
		return
	}

	c.JSON(http.StatusOK, todo)
}

func (tc *TodoController) PatchTodo(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		utils.RespondWithError(c, http.StatusNotFound, "Todo not found")
		return
	}

	var input TodoPatchInput
	if errs := utils.BindJSON(c, &input); errs != nil {
		utils.RespondWithFieldErrors(c, http.StatusBadRequest, errs)
		return
	}

	todo, err := tc.store.PatchTodo(c.Request.Context(), id, services.TodoPatch(input))
	if err != nil {
		tc.storeError(c, err, "Failed to update todo")
		return
	}

	c.JSON(http.StatusOK, todo)
}

func (tc *TodoController) DeleteTodo(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		utils.RespondWithError(c, http.StatusNotFound, "Todo not found")
		return
	}

	if err := tc.store.DeleteTodo(c.Request.Context(), id); err != nil {
		tc.storeError(c, err, "Failed to delete todo")
		return
	}

	c.Status(http.StatusNoContent)
}

func (tc *TodoController) storeError(c *gin.Context, err error, message string) {
	if errors.Is(err, services.ErrTodoNotFound) {
		utils.RespondWithError(c, http.StatusNotFound, "Todo not found")
		return
	}
	tc.serverError(c, err, message)
}

func (tc *TodoController) serverError(c *gin.Context, err error, message string) {
	tc.log.WithError(err).WithFields(logrus.Fields{
		"path":       c.Request.URL.Path,
		"request_id": c.GetString("requestId"),
	}).Error(message)
	_ = c.Error(err)
	utils.RespondWithError(c, http.StatusInternalServerError, message)
}
