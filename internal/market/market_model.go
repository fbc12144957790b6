// market/model.go
package market

import (
	"github.com/dhruvpatel-01/fantasyfc/internal/team"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ListingStatus is the lifecycle state of a transfer listing. A listing is
// created active and moves exactly once to cancelled (by the seller) or sold
// (by a settled purchase). Rows are never deleted; inactive listings stay
// around for audit.
type ListingStatus string

const (
	ListingActive    ListingStatus = "active"
	ListingCancelled ListingStatus = "cancelled"
	ListingSold      ListingStatus = "sold"
)

// TransferListing is an open offer to sell one player at a fixed price.
// At most one active listing exists per player at any time; the engine
// enforces this under a row lock rather than a unique index so a player can
// be re-listed after a cancelled or sold listing.
type TransferListing struct {
	gorm.Model
	PlayerID uint            `json:"player_id" gorm:"index;not null"`
	Player   team.Player     `json:"player" gorm:"foreignKey:PlayerID"`
	SellerID uint            `json:"seller_id" gorm:"index;not null"`
	Seller   team.Team       `json:"-" gorm:"foreignKey:SellerID"`
	Price    decimal.Decimal `json:"price" gorm:"type:decimal(20,2);not null"`
	Status   ListingStatus   `json:"status" gorm:"type:varchar(10);not null;default:'active';index"`
}

// Transaction is the immutable record of a settled trade. It is written
// exactly once by the market engine inside the buy transaction and never
// updated or deleted afterwards; creation is the commit point.
type Transaction struct {
	gorm.Model
	BuyerID  uint            `json:"buyer_id" gorm:"index;not null"`
	Buyer    team.Team       `json:"-" gorm:"foreignKey:BuyerID"`
	SellerID uint            `json:"seller_id" gorm:"index;not null"`
	Seller   team.Team       `json:"-" gorm:"foreignKey:SellerID"`
	PlayerID uint            `json:"player_id" gorm:"index;not null"`
	Player   team.Player     `json:"player" gorm:"foreignKey:PlayerID"`
	Amount   decimal.Decimal `json:"amount" gorm:"type:decimal(20,2);not null"`
}
