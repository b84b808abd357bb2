package services

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"wink/models"
	"wink/utils"
)

type CreateTeamInput struct {
	Name string `json:"name" validate:"required,max=100"`
}

type TeamService struct {
	db        *gorm.DB
	validator *utils.Validator
	log       *logrus.Entry
}

func NewTeamService(db *gorm.DB, validator *utils.Validator, log *logrus.Entry) *TeamService {
	return &TeamService{db: db, validator: validator, log: log}
}

func (s *TeamService) List(ctx context.Context) ([]models.Team, error) {
	teams := []models.Team{}
	if err := s.db.WithContext(ctx).Order("id").Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}

func (s *TeamService) Get(ctx context.Context, id uint) (*models.Team, error) {
	var team models.Team
	if err := s.db.WithContext(ctx).First(&team, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &team, nil
}

func (s *TeamService) Create(ctx context.Context, in CreateTeamInput) (*models.Team, error) {
	in.Name = strings.TrimSpace(in.Name)
	if errs := s.validator.Struct(in); errs != nil {
		return nil, newValidationError(errs)
	}

	team := models.Team{Name: in.Name}
	if err := s.db.WithContext(ctx).Create(&team).Error; err != nil {
		return nil, err
	}
	utils.LogEvent(s.log, "team_created", map[string]interface{}{
		"team_id": team.ID,
		"name":    team.Name,
	})
	return &team, nil
}

// existingTeams returns the subset of ids that reference a stored team.
func existingTeams(db *gorm.DB, ids []uint) (map[uint]bool, error) {
	found := make(map[uint]bool, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	var stored []uint
	if err := db.Model(&models.Team{}).Where("id IN ?", ids).Pluck("id", &stored).Error; err != nil {
		return nil, err
	}
	for _, id := range stored {
		found[id] = true
	}
	return found, nil
}
