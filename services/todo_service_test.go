package services_test

import (
	"context"
	"testing"

	"customerhub-backend/services"
	"customerhub-backend/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTodoService(t *testing.T) *services.TodoService {
	t.Helper()
	log, _ := testutil.NewLogger()
	return services.NewTodoService(testutil.NewDB(t), log)
}

func TestTodoLifecycle(t *testing.T) {
	svc := newTodoService(t)
	ctx := context.Background()

	todos, err := svc.ListTodos(ctx)
	require.NoError(t, err)
	assert.NotNil(t, todos)
	assert.Empty(t, todos)

	created, err := svc.CreateTodo(ctx, services.TodoData{Title: "write tests", Description: "all of them"})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.False(t, created.Completed)

	got, err := svc.GetTodo(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "write tests", got.Title)
	assert.Equal(t, "all of them", got.Description)

	updated, err := svc.UpdateTodo(ctx, created.ID, services.TodoData{Title: "ship", Completed: true})
	require.NoError(t, err)
	assert.Equal(t, "ship", updated.Title)
	assert.Equal(t, "", updated.Description)
	assert.True(t, updated.Completed)

	require.NoError(t, svc.DeleteTodo(ctx, created.ID))
	_, err = svc.GetTodo(ctx, created.ID)
	assert.ErrorIs(t, err, services.ErrTodoNotFound)
}

func TestPatchTodoOnlyTouchesGivenFields(t *testing.T) {
	svc := newTodoService(t)
	ctx := context.Background()

	created, err := svc.CreateTodo(ctx, services.TodoData{Title: "a", Description: "keep me"})
	require.NoError(t, err)

	done := true
	patched, err := svc.PatchTodo(ctx, created.ID, services.TodoPatch{Completed: &done})
	require.NoError(t, err)
	assert.Equal(t, "a", patched.Title)
	assert.Equal(t, "keep me", patched.Description)
	assert.True(t, patched.Completed)

	undone := false
	patched, err = svc.PatchTodo(ctx, created.ID, services.TodoPatch{Completed: &undone})
	require.NoError(t, err)
	assert.False(t, patched.Completed)

	unchanged, err := svc.PatchTodo(ctx, created.ID, services.TodoPatch{})
	require.NoError(t, err)
	assert.Equal(t, "a", unchanged.Title)
}

func TestTodoNotFound(t *testing.T) {
	svc := newTodoService(t)
	ctx := context.Background()

	_, err := svc.GetTodo(ctx, 1)
	assert.ErrorIs(t, err, services.ErrTodoNotFound)

	_, err = svc.UpdateTodo(ctx, 1, services.TodoData{Title: "x"})
	assert.ErrorIs(t, err, services.ErrTodoNotFound)

	assert.ErrorIs(t, svc.DeleteTodo(ctx, 1), services.ErrTodoNotFound)
}
