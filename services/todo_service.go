package services

import (
	"context"
	"errors"
	"fmt"

	"customerhub-backend/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrTodoNotFound = errors.New("todo not found")

type TodoData struct {
	Title       string
	Description string
	Completed   bool
}

// TodoPatch holds the fields of a partial update; nil fields are kept.
type TodoPatch struct {
	Title       *string
	Description *string
	Completed   *bool
}

type TodoService struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

func NewTodoService(db *gorm.DB, log logrus.FieldLogger) *TodoService {
	return &TodoService{db: db, log: log.WithField("service", "todos")}
}

func (s *TodoService) ListTodos(ctx context.Context) ([]models.Todo, error) {
	todos := []models.Todo{}
	if err := s.db.WithContext(ctx).Order("id").Find(&todos).Error; err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return todos, nil
}

func (s *TodoService) GetTodo(ctx context.Context, id uint) (*models.Todo, error) {
	var todo models.Todo
	if err := s.db.WithContext(ctx).First(&todo, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("get todo %d: %w", id, err)
	}
	return &todo, nil
}

func (s *TodoService) CreateTodo(ctx context.Context, in TodoData) (*models.Todo, error) {
	todo := models.Todo{
		Title:       in.Title,
		Description: in.Description,
		Completed:   in.Completed,
	}
	if err := s.db.WithContext(ctx).Create(&todo).Error; err != nil {
		return nil, fmt.Errorf("create todo: %w", err)
	}
	s.log.WithField("todo_id", todo.ID).Info("Todo created")
	return &todo, nil
}

// UpdateTodo overwrites every writable field.
func (s *TodoService) UpdateTodo(ctx context.Context, id uint, in TodoData) (*models.Todo, error) {
	return s.PatchTodo(ctx, id, TodoPatch{
		Title:       &in.Title,
		Description: &in.Description,
		Completed:   &in.Completed,
	})
}

func (s *TodoService) PatchTodo(ctx context.Context, id uint, in TodoPatch) (*models.Todo, error) {
	var todo models.Todo
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&todo, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTodoNotFound
			}
			return err
		}

		updates := map[string]interface{}{}
		if in.Title != nil {
			updates["title"] = *in.Title
		}
		if in.Description != nil {
			updates["description"] = *in.Description
		}
		if in.Completed != nil {
			updates["completed"] = *in.Completed
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&todo).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&todo, id).Error
	})
	if err != nil {
		if errors.Is(err, ErrTodoNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update todo %d: %w", id, err)
	}

	s.log.WithField("todo_id", id).Info("Todo updated")
	return &todo, nil
}

func (s *TodoService) DeleteTodo(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Todo{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete todo %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTodoNotFound
	}
	s.log.WithField("todo_id", id).Info("Todo deleted")
	return nil
}
