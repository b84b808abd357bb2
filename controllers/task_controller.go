package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"wink/services"
	"wink/utils"
)

const (
	taskNotFound  = "Task not found"
	taskForbidden = "Only the creator of a task can modify it"
)

type TaskController struct {
	Tasks  *services.TaskService
	Logger *logrus.Entry
}

func NewTaskController(tasks *services.TaskService, logger *logrus.Entry) *TaskController {
	return &TaskController{
		Tasks:  tasks,
		Logger: logger,
	}
}

type createTaskRequest struct {
	Task *services.CreateTaskInput `json:"task"`
}

type updateTaskRequest struct {
	Task *services.UpdateTaskInput `json:"task"`
}

// GetTasks lists the tasks of the caller's team and the tasks it helps with, newest first
func (tc *TaskController) GetTasks(c *fiber.Ctx) error {
	tasks, err := tc.Tasks.List(c.UserContext(), currentUser(c))
	if err != nil {
		return respondError(c, tc.Logger, err, taskNotFound, taskForbidden)
	}
	return c.JSON(tasks)
}

// GetTask returns a single task with its subtasks
func (tc *TaskController) GetTask(c *fiber.Ctx) error {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, taskNotFound, nil)
	}

	task, err := tc.Tasks.Get(c.UserContext(), currentUser(c), id)
	if err != nil {
		return respondError(c, tc.Logger, err, taskNotFound, "Task is not visible to your team")
	}
	return c.JSON(task)
}

func (tc *TaskController) CreateTask(c *fiber.Ctx) error {
	var req createTaskRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	task, err := tc.Tasks.Create(c.UserContext(), currentUser(c), req.Task)
	if err != nil {
		return respondError(c, tc.Logger, err, taskNotFound, taskForbidden)
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

// UpdateTask patches task fields and merges its subtasks
func (tc *TaskController) UpdateTask(c *fiber.Ctx) error {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, taskNotFound, nil)
	}

	var req updateTaskRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	task, err := tc.Tasks.Update(c.UserContext(), currentUser(c), id, req.Task)
	if err != nil {
		return respondError(c, tc.Logger, err, taskNotFound, taskForbidden)
	}
	return c.JSON(task)
}

// DeleteTask deletes a task and all of its subtasks
func (tc *TaskController) DeleteTask(c *fiber.Ctx) error {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, taskNotFound, nil)
	}

	if err := tc.Tasks.Delete(c.UserContext(), currentUser(c), id); err != nil {
		return respondError(c, tc.Logger, err, taskNotFound, "Only the creator of a task can delete it")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
