// team/model.go
package team

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Position is a player's field position.
type Position string

const (
	Goalkeeper Position = "GK"
	Defender   Position = "DEF"
	Midfielder Position = "MID"
	Attacker   Position = "ATT"
)

// ValidPositions lists every accepted position code.
var ValidPositions = []Position{Goalkeeper, Defender, Midfielder, Attacker}

// DisplayName returns the long-form name of the position.
func (p Position) DisplayName() string {
	switch p {
	case Goalkeeper:
		return "Goalkeeper"
	case Defender:
		return "Defender"
	case Midfielder:
		return "Midfielder"
	case Attacker:
		return "Attacker"
	}
	return string(p)
}

// StartingCapital is the liquid balance every new team begins with.
var StartingCapital = decimal.RequireFromString("5000000.00")

// DefaultPlayerValue is the market value assigned to every generated player.
var DefaultPlayerValue = decimal.RequireFromString("1000000.00")

// Team is a user's franchise. Capital is only ever mutated by the market
// engine inside a transaction; it is read-only through the API.
type Team struct {
	gorm.Model
	UserID  uint            `json:"user_id" gorm:"uniqueIndex;not null"`
	Name    string          `json:"name" gorm:"not null"`
	Capital decimal.Decimal `json:"capital" gorm:"type:decimal(20,2);not null"`
	Players []Player        `json:"players,omitempty" gorm:"foreignKey:OwnerID"`
}

// Player is a tradeable asset. OwnerID and Value are reassigned only by the
// market engine when a trade settles.
type Player struct {
	gorm.Model
	Name     string          `json:"name" gorm:"not null"`
	Position Position        `json:"position" gorm:"type:varchar(4);not null;index"`
	OwnerID  uint            `json:"owner_id" gorm:"index;not null"`
	Value    decimal.Decimal `json:"value" gorm:"type:decimal(20,2);not null"`
}

// TotalValue is the team's capital plus the combined value of its roster.
// Players must be preloaded.
func (t *Team) TotalValue() decimal.Decimal {
	total := t.Capital
	for _, p := range t.Players {
		total = total.Add(p.Value)
	}
	return total
}
