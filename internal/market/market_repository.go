package market

import (
	"errors"

	"github.com/dhruvpatel-01/fantasyfc/internal/team"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MarketRepository is the storage boundary of the market engine: listings,
// the team/player ledger rows, and the append-only transaction log. The
// ForUpdate reads take exclusive row locks and are only valid inside
// WithTransaction.
type MarketRepository interface {
	// Listing operations
	CreateListing(l *TransferListing) error
	SaveListing(l *TransferListing) error
	GetActiveListingByID(id uint) (*TransferListing, error)
	GetActiveListingByPlayerID(playerID uint) (*TransferListing, error)
	GetListingForUpdate(id uint) (*TransferListing, error)
	GetActiveListings(page, limit int) ([]TransferListing, int64, error)

	// Ledger rows
	GetTeamByID(id uint) (*team.Team, error)
	GetTeamForUpdate(id uint) (*team.Team, error)
	GetPlayerForUpdate(id uint) (*team.Player, error)
	SaveTeam(t *team.Team) error
	SavePlayer(p *team.Player) error

	// Transaction log (append-only, no update or delete exposed)
	CreateTransaction(tx *Transaction) error
	GetTransactions(page, limit int) ([]Transaction, int64, error)

	// WithTransaction runs txFunc inside a single database transaction.
	// The repository passed to txFunc is bound to that transaction; any
	// error rolls every write back.
	WithTransaction(txFunc func(MarketRepository) error) error
}

type marketRepository struct {
	db *gorm.DB
}

// NewMarketRepository creates a new instance of MarketRepository
func NewMarketRepository(db *gorm.DB) MarketRepository {
	return &marketRepository{db: db}
}

// --- Listing Operations ---

func (r *marketRepository) CreateListing(l *TransferListing) error {
	return r.db.Omit(clause.Associations).Create(l).Error
}

func (r *marketRepository) SaveListing(l *TransferListing) error {
	return r.db.Omit(clause.Associations).Save(l).Error
}

func (r *marketRepository) GetActiveListingByID(id uint) (*TransferListing, error) {
	var l TransferListing
	err := r.db.Preload("Player").Preload("Seller").
		Where("status = ?", ListingActive).First(&l, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

func (r *marketRepository) GetActiveListingByPlayerID(playerID uint) (*TransferListing, error) {
	var l TransferListing
	err := r.db.Where("player_id = ? AND status = ?", playerID, ListingActive).First(&l).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

func (r *marketRepository) GetListingForUpdate(id uint) (*TransferListing, error) {
	var l TransferListing
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&l, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

func (r *marketRepository) GetActiveListings(page, limit int) ([]TransferListing, int64, error) {
	var listings []TransferListing
	var total int64

	query := r.db.Model(&TransferListing{}).Where("status = ?", ListingActive)
	query.Count(&total)

	offset := (page - 1) * limit
	err := query.Preload("Player").Preload("Seller").
		Offset(offset).Limit(limit).Order("created_at desc").Find(&listings).Error
	if err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

// --- Ledger Rows ---

func (r *marketRepository) GetTeamByID(id uint) (*team.Team, error) {
	var t team.Team
	if err := r.db.First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *marketRepository) GetTeamForUpdate(id uint) (*team.Team, error) {
	var t team.Team
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&t, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *marketRepository) GetPlayerForUpdate(id uint) (*team.Player, error) {
	var p team.Player
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *marketRepository) SaveTeam(t *team.Team) error {
	return r.db.Omit(clause.Associations).Save(t).Error
}

func (r *marketRepository) SavePlayer(p *team.Player) error {
	return r.db.Omit(clause.Associations).Save(p).Error
}

// --- Transaction Log ---

func (r *marketRepository) CreateTransaction(tx *Transaction) error {
	return r.db.Omit(clause.Associations).Create(tx).Error
}

func (r *marketRepository) GetTransactions(page, limit int) ([]Transaction, int64, error) {
	var txs []Transaction
	var total int64

	query := r.db.Model(&Transaction{})
	query.Count(&total)

	offset := (page - 1) * limit
	err := query.Preload("Buyer").Preload("Seller").Preload("Player").
		Offset(offset).Limit(limit).Order("created_at desc").Find(&txs).Error
	if err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}

// --- Transactions ---

func (r *marketRepository) WithTransaction(txFunc func(MarketRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return txFunc(&marketRepository{db: tx})
	})
}
