package team

import (
	"fmt"

	"gorm.io/gorm"
)

// rosterSlot pairs a position with how many players of it a new roster gets.
type rosterSlot struct {
	Position Position
	Count    int
}

// DefaultRosterPlan is the composition of every freshly provisioned roster:
// 2 goalkeepers, 6 defenders, 6 midfielders, 6 attackers (20 players total).
var DefaultRosterPlan = []rosterSlot{
	{Goalkeeper, 2},
	{Defender, 6},
	{Midfielder, 6},
	{Attacker, 6},
}

// BuildRoster generates the initial players for a new team. Player names are
// derived from the position and the owner's username.
func BuildRoster(ownerID uint, username string) []Player {
	short := username
	if len(short) > 6 {
		short = short[:6]
	}

	var players []Player
	for _, slot := range DefaultRosterPlan {
		for i := 1; i <= slot.Count; i++ {
			players = append(players, Player{
				Name:     fmt.Sprintf("%s-%s-%d", slot.Position, short, i),
				Position: slot.Position,
				OwnerID:  ownerID,
				Value:    DefaultPlayerValue,
			})
		}
	}
	return players
}

// ProvisionTeam creates a team with the starting capital and its initial
// roster for a newly registered user. It must run inside the caller's
// transaction so user, team and players commit together.
func ProvisionTeam(tx *gorm.DB, userID uint, username string) (*Team, error) {
	t := &Team{
		UserID:  userID,
		Name:    fmt.Sprintf("%s's Team", username),
		Capital: StartingCapital,
	}
	if err := tx.Create(t).Error; err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	players := BuildRoster(t.ID, username)
	if err := tx.Create(&players).Error; err != nil {
		return nil, fmt.Errorf("failed to create initial roster: %w", err)
	}
	t.Players = players
	return t, nil
}
