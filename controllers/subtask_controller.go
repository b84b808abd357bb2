package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"wink/services"
	"wink/utils"
)

const subTaskNotFound = "SubTask not found"

type SubTaskController struct {
	SubTasks *services.SubTaskService
	Logger   *logrus.Entry
}

func NewSubTaskController(subtasks *services.SubTaskService, logger *logrus.Entry) *SubTaskController {
	return &SubTaskController{
		SubTasks: subtasks,
		Logger:   logger,
	}
}

type updateSubTaskRequest struct {
	IsComplete *bool `json:"is_complete"`
}

func (sc *SubTaskController) GetSubTask(c *fiber.Ctx) error {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, subTaskNotFound, nil)
	}

	subtask, err := sc.SubTasks.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, sc.Logger, err, subTaskNotFound, "")
	}
	return c.JSON(subtask)
}

// UpdateSubTask toggles completion; only members of the subtask's team may do so
func (sc *SubTaskController) UpdateSubTask(c *fiber.Ctx) error {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, subTaskNotFound, nil)
	}

	var req updateSubTaskRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	subtask, err := sc.SubTasks.SetCompletion(c.UserContext(), currentUser(c), id, req.IsComplete)
	if err != nil {
		return respondError(c, sc.Logger, err, subTaskNotFound,
			"Only the team assigned to a subtask can change its completion")
	}
	return c.JSON(subtask)
}

func (sc *SubTaskController) DeleteSubTask(c *fiber.Ctx) error {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, subTaskNotFound, nil)
	}

	if err := sc.SubTasks.Delete(c.UserContext(), currentUser(c), id); err != nil {
		return respondError(c, sc.Logger, err, subTaskNotFound,
			"Only the creator of the parent task can delete its subtasks")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
