package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"wink/services"
)

type TeamController struct {
	Teams  *services.TeamService
	Logger *logrus.Entry
}

func NewTeamController(teams *services.TeamService, logger *logrus.Entry) *TeamController {
	return &TeamController{
		Teams:  teams,
		Logger: logger,
	}
}

func (tc *TeamController) GetTeams(c *fiber.Ctx) error {
	teams, err := tc.Teams.List(c.UserContext())
	if err != nil {
		return respondError(c, tc.Logger, err, "", "")
	}
	return c.JSON(teams)
}

func (tc *TeamController) CreateTeam(c *fiber.Ctx) error {
	var req services.CreateTeamInput
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	team, err := tc.Teams.Create(c.UserContext(), req)
	if err != nil {
		return respondError(c, tc.Logger, err, "", "")
	}
	return c.Status(fiber.StatusCreated).JSON(team)
}
