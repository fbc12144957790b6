package market

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Appreciation bounds for a settled trade: the traded player's value is
// multiplied by (1 + r) with r drawn uniformly from [0.05, 0.15).
const (
	minAppreciation = 0.05
	maxAppreciation = 0.15
)

// Engine orchestrates the transfer market: listing lifecycle and the atomic
// buy operation. All mutations of team capital, player ownership and player
// value go through here, inside a single database transaction with exclusive
// row locks, so no partial effect is ever observable.
type Engine struct {
	repo MarketRepository

	// rng drives the value appreciation on settled trades. It is injected so
	// tests can seed it; *rand.Rand is not safe for concurrent use, hence the
	// mutex.
	mu  sync.Mutex
	rng *rand.Rand
}

// NewEngine creates a market engine. Passing a nil rng falls back to a
// time-seeded generator.
func NewEngine(repo MarketRepository, rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{repo: repo, rng: rng}
}

// appreciationRate draws the random appreciation factor for one trade.
func (e *Engine) appreciationRate() decimal.Decimal {
	e.mu.Lock()
	f := minAppreciation + e.rng.Float64()*(maxAppreciation-minAppreciation)
	e.mu.Unlock()
	return decimal.NewFromFloat(f)
}

// CreateListing puts a player up for sale. The ownership and already-listed
// checks run under an exclusive lock on the player row, which is what keeps
// the one-active-listing-per-player invariant under concurrent requests.
func (e *Engine) CreateListing(playerID uint, price decimal.Decimal, sellerTeamID uint) (*TransferListing, error) {
	if !price.IsPositive() {
		return nil, ErrInvalidPrice
	}

	var listing *TransferListing
	err := e.repo.WithTransaction(func(r MarketRepository) error {
		p, err := r.GetPlayerForUpdate(playerID)
		if err != nil {
			return err
		}
		if p == nil {
			return ErrPlayerNotFound
		}
		if p.OwnerID != sellerTeamID {
			return ErrNotOwner
		}

		existing, err := r.GetActiveListingByPlayerID(playerID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrAlreadyListed
		}

		l := &TransferListing{
			PlayerID: playerID,
			SellerID: sellerTeamID,
			Price:    price,
			Status:   ListingActive,
		}
		if err := r.CreateListing(l); err != nil {
			return fmt.Errorf("failed to create listing: %w", err)
		}
		l.Player = *p
		listing = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return listing, nil
}

// CancelListing deactivates an active listing. Only the seller may cancel;
// the row is kept for audit and the player can be listed again afterwards.
func (e *Engine) CancelListing(listingID uint, requesterTeamID uint) (*TransferListing, error) {
	var listing *TransferListing
	err := e.repo.WithTransaction(func(r MarketRepository) error {
		l, err := r.GetListingForUpdate(listingID)
		if err != nil {
			return err
		}
		// Inactive listings are invisible to lookup-by-id; only audit
		// queries ever see them again.
		if l == nil || l.Status != ListingActive {
			return ErrListingNotFound
		}
		if l.SellerID != requesterTeamID {
			return ErrNotSeller
		}

		l.Status = ListingCancelled
		if err := r.SaveListing(l); err != nil {
			return fmt.Errorf("failed to cancel listing: %w", err)
		}
		listing = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return listing, nil
}

// Buy settles a purchase: debits the buyer, credits the seller, reassigns the
// player with an appreciated value, appends the immutable transaction record
// and retires the listing. Preconditions are checked twice: a fast advisory
// pass on unlocked reads, then an authoritative re-check once the listing,
// both team rows and the player row are locked. Everything inside
// WithTransaction commits or rolls back as a unit.
func (e *Engine) Buy(listingID uint, buyerTeamID uint) (*Transaction, error) {
	l, err := e.repo.GetActiveListingByID(listingID)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, ErrListingNotFound
	}
	if l.SellerID == buyerTeamID {
		return nil, ErrCannotBuyOwnPlayer
	}
	buyerTeam, err := e.repo.GetTeamByID(buyerTeamID)
	if err != nil {
		return nil, err
	}
	if buyerTeam == nil {
		return nil, fmt.Errorf("buyer team %d not found", buyerTeamID)
	}
	if buyerTeam.Capital.LessThan(l.Price) {
		return nil, ErrInsufficientCapital
	}

	var settled *Transaction
	err = e.repo.WithTransaction(func(r MarketRepository) error {
		// Locking the listing row first serializes competing buys on the
		// same listing: the loser re-reads it as sold and backs out.
		locked, err := r.GetListingForUpdate(listingID)
		if err != nil {
			return err
		}
		if locked == nil {
			return ErrListingNotFound
		}
		if locked.Status != ListingActive {
			return ErrListingNotActive
		}
		price := locked.Price

		// Team rows are locked in ascending id order so two buys with
		// overlapping teams cannot deadlock each other.
		firstID, secondID := buyerTeamID, locked.SellerID
		if secondID < firstID {
			firstID, secondID = secondID, firstID
		}
		first, err := r.GetTeamForUpdate(firstID)
		if err != nil {
			return err
		}
		second, err := r.GetTeamForUpdate(secondID)
		if err != nil {
			return err
		}
		if first == nil || second == nil {
			return fmt.Errorf("team row missing for listing %d", listingID)
		}
		buyer, seller := first, second
		if buyer.ID != buyerTeamID {
			buyer, seller = second, first
		}

		player, err := r.GetPlayerForUpdate(locked.PlayerID)
		if err != nil {
			return err
		}
		if player == nil {
			return ErrPlayerNotFound
		}
		if player.OwnerID != seller.ID {
			return ErrSellerNoLongerOwnsPlayer
		}
		if buyer.Capital.LessThan(price) {
			return ErrInsufficientCapital
		}

		// Transfer money: capital moves buyer -> seller by exactly the price.
		buyer.Capital = buyer.Capital.Sub(price)
		seller.Capital = seller.Capital.Add(price)
		if err := r.SaveTeam(buyer); err != nil {
			return fmt.Errorf("failed to debit buyer: %w", err)
		}
		if err := r.SaveTeam(seller); err != nil {
			return fmt.Errorf("failed to credit seller: %w", err)
		}

		// Reassign ownership and apply the random appreciation. Round is
		// half away from zero on the 2nd decimal place.
		player.OwnerID = buyer.ID
		rate := e.appreciationRate()
		player.Value = player.Value.Mul(decimal.NewFromInt(1).Add(rate)).Round(2)
		if err := r.SavePlayer(player); err != nil {
			return fmt.Errorf("failed to transfer player: %w", err)
		}

		tx := &Transaction{
			BuyerID:  buyer.ID,
			SellerID: seller.ID,
			PlayerID: player.ID,
			Amount:   price,
		}
		if err := r.CreateTransaction(tx); err != nil {
			return fmt.Errorf("failed to record transaction: %w", err)
		}

		locked.Status = ListingSold
		if err := r.SaveListing(locked); err != nil {
			return fmt.Errorf("failed to retire listing: %w", err)
		}

		tx.Buyer = *buyer
		tx.Seller = *seller
		tx.Player = *player
		settled = tx
		return nil
	})
	if err != nil {
		return nil, err
	}
	return settled, nil
}

// ListActiveListings returns the open market, newest first.
func (e *Engine) ListActiveListings(page, limit int) ([]TransferListing, int64, error) {
	return e.repo.GetActiveListings(page, limit)
}

// ListTransactions returns the global trade history, newest first. History
// is deliberately not scoped per team.
func (e *Engine) ListTransactions(page, limit int) ([]Transaction, int64, error) {
	return e.repo.GetTransactions(page, limit)
}
