package team

import (
	"errors"

	"gorm.io/gorm"
)

// TeamRepository defines the interface for team and player data operations.
type TeamRepository interface {
	// Team operations
	GetTeamByID(id uint) (*Team, error)
	GetTeamByUserID(userID uint) (*Team, error)
	GetAllTeams(page, limit int) ([]Team, int64, error)

	// Player operations
	GetPlayerByID(id uint) (*Player, error)
	GetAllPlayers(page, limit int) ([]Player, int64, error)
	GetPlayersByTeamID(teamID uint) ([]Player, error)
}

type teamRepository struct {
	db *gorm.DB
}

// NewTeamRepository creates a new instance of TeamRepository
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &teamRepository{db: db}
}

// --- Team Operations ---

func (r *teamRepository) GetTeamByID(id uint) (*Team, error) {
	var t Team
	if err := r.db.Preload("Players").First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *teamRepository) GetTeamByUserID(userID uint) (*Team, error) {
	var t Team
	if err := r.db.Preload("Players").Where("user_id = ?", userID).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *teamRepository) GetAllTeams(page, limit int) ([]Team, int64, error) {
	var teams []Team
	var total int64

	query := r.db.Model(&Team{}).Preload("Players")
	query.Count(&total)

	offset := (page - 1) * limit
	if err := query.Offset(offset).Limit(limit).Order("created_at desc").Find(&teams).Error; err != nil {
		return nil, 0, err
	}
	return teams, total, nil
}

// --- Player Operations ---

func (r *teamRepository) GetPlayerByID(id uint) (*Player, error) {
	var p Player
	if err := r.db.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *teamRepository) GetAllPlayers(page, limit int) ([]Player, int64, error) {
	var players []Player
	var total int64

	query := r.db.Model(&Player{})
	query.Count(&total)

	offset := (page - 1) * limit
	if err := query.Offset(offset).Limit(limit).Order("created_at desc").Find(&players).Error; err != nil {
		return nil, 0, err
	}
	return players, total, nil
}

func (r *teamRepository) GetPlayersByTeamID(teamID uint) ([]Player, error) {
	var players []Player
	if err := r.db.Where("owner_id = ?", teamID).Order("id asc").Find(&players).Error; err != nil {
		return nil, err
	}
	return players, nil
}
