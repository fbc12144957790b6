package market

import (
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/dhruvpatel-01/fantasyfc/internal/team"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// --- In-memory MarketRepository ---
//
// memRepo implements MarketRepository over plain maps with a single mutex.
// WithTransaction takes the mutex for the whole callback and restores a
// snapshot on error, which gives the engine the same serializable,
// all-or-nothing semantics the gorm repository gets from the database.

type memStore struct {
	mu           sync.Mutex
	teams        map[uint]team.Team
	players      map[uint]team.Player
	listings     map[uint]TransferListing
	transactions []Transaction
	nextID       uint
}

type memSnapshot struct {
	teams        map[uint]team.Team
	players      map[uint]team.Player
	listings     map[uint]TransferListing
	transactions []Transaction
	nextID       uint
}

func newMemStore() *memStore {
	return &memStore{
		teams:    make(map[uint]team.Team),
		players:  make(map[uint]team.Player),
		listings: make(map[uint]TransferListing),
		nextID:   1,
	}
}

func (s *memStore) snapshot() memSnapshot {
	snap := memSnapshot{
		teams:        make(map[uint]team.Team, len(s.teams)),
		players:      make(map[uint]team.Player, len(s.players)),
		listings:     make(map[uint]TransferListing, len(s.listings)),
		transactions: append([]Transaction(nil), s.transactions...),
		nextID:       s.nextID,
	}
	for k, v := range s.teams {
		snap.teams[k] = v
	}
	for k, v := range s.players {
		snap.players[k] = v
	}
	for k, v := range s.listings {
		snap.listings[k] = v
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.teams = snap.teams
	s.players = snap.players
	s.listings = snap.listings
	s.transactions = snap.transactions
	s.nextID = snap.nextID
}

type memRepo struct {
	store *memStore
	inTx  bool
}

func (r *memRepo) lock() func() {
	if r.inTx {
		return func() {}
	}
	r.store.mu.Lock()
	return r.store.mu.Unlock
}

func (r *memRepo) WithTransaction(txFunc func(MarketRepository) error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	snap := r.store.snapshot()
	if err := txFunc(&memRepo{store: r.store, inTx: true}); err != nil {
		r.store.restore(snap)
		return err
	}
	return nil
}

func (r *memRepo) CreateListing(l *TransferListing) error {
	defer r.lock()()
	l.ID = r.store.nextID
	r.store.nextID++
	l.CreatedAt = time.Now()
	r.store.listings[l.ID] = *l
	return nil
}

func (r *memRepo) SaveListing(l *TransferListing) error {
	defer r.lock()()
	r.store.listings[l.ID] = *l
	return nil
}

func (r *memRepo) getListing(id uint) *TransferListing {
	l, ok := r.store.listings[id]
	if !ok {
		return nil
	}
	l.Player = r.store.players[l.PlayerID]
	l.Seller = r.store.teams[l.SellerID]
	return &l
}

func (r *memRepo) GetActiveListingByID(id uint) (*TransferListing, error) {
	defer r.lock()()
	l := r.getListing(id)
	if l == nil || l.Status != ListingActive {
		return nil, nil
	}
	return l, nil
}

func (r *memRepo) GetActiveListingByPlayerID(playerID uint) (*TransferListing, error) {
	defer r.lock()()
	for id, l := range r.store.listings {
		if l.PlayerID == playerID && l.Status == ListingActive {
			return r.getListing(id), nil
		}
	}
	return nil, nil
}

func (r *memRepo) GetListingForUpdate(id uint) (*TransferListing, error) {
	defer r.lock()()
	l, ok := r.store.listings[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r *memRepo) GetActiveListings(page, limit int) ([]TransferListing, int64, error) {
	defer r.lock()()
	var active []TransferListing
	for id, l := range r.store.listings {
		if l.Status == ListingActive {
			active = append(active, *r.getListing(id))
		}
	}
	return active, int64(len(active)), nil
}

func (r *memRepo) GetTeamByID(id uint) (*team.Team, error) {
	defer r.lock()()
	t, ok := r.store.teams[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *memRepo) GetTeamForUpdate(id uint) (*team.Team, error) {
	return r.GetTeamByID(id)
}

func (r *memRepo) GetPlayerForUpdate(id uint) (*team.Player, error) {
	defer r.lock()()
	p, ok := r.store.players[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *memRepo) SaveTeam(t *team.Team) error {
	defer r.lock()()
	r.store.teams[t.ID] = *t
	return nil
}

func (r *memRepo) SavePlayer(p *team.Player) error {
	defer r.lock()()
	r.store.players[p.ID] = *p
	return nil
}

func (r *memRepo) CreateTransaction(tx *Transaction) error {
	defer r.lock()()
	tx.ID = r.store.nextID
	r.store.nextID++
	tx.CreatedAt = time.Now()
	r.store.transactions = append(r.store.transactions, *tx)
	return nil
}

func (r *memRepo) GetTransactions(page, limit int) ([]Transaction, int64, error) {
	defer r.lock()()
	total := int64(len(r.store.transactions))
	// Newest first.
	txs := make([]Transaction, 0, len(r.store.transactions))
	for i := len(r.store.transactions) - 1; i >= 0; i-- {
		tx := r.store.transactions[i]
		tx.Buyer = r.store.teams[tx.BuyerID]
		tx.Seller = r.store.teams[tx.SellerID]
		tx.Player = r.store.players[tx.PlayerID]
		txs = append(txs, tx)
	}
	return txs, total, nil
}

var _ MarketRepository = (*memRepo)(nil)

// --- Test fixtures ---

const (
	sellerTeamID = 1
	buyerTeamID  = 2
	thirdTeamID  = 3
	playerID     = 10
)

func newTestMarket(seed int64) (*Engine, *memStore) {
	store := newMemStore()
	store.nextID = 100

	store.teams[sellerTeamID] = newTeam(sellerTeamID, "Alpha FC", "5000000.00")
	store.teams[buyerTeamID] = newTeam(buyerTeamID, "Bravo FC", "5000000.00")
	store.teams[thirdTeamID] = newTeam(thirdTeamID, "Charlie FC", "5000000.00")
	store.players[playerID] = newPlayer(playerID, "ATT-alpha-1", sellerTeamID, "1000000.00")

	engine := NewEngine(&memRepo{store: store}, rand.New(rand.NewSource(seed)))
	return engine, store
}

func newTeam(id uint, name, capital string) team.Team {
	t := team.Team{Name: name, Capital: dec(capital)}
	t.ID = id
	t.UserID = id
	return t
}

func newPlayer(id uint, name string, ownerID uint, value string) team.Player {
	p := team.Player{Name: name, Position: team.Attacker, OwnerID: ownerID, Value: dec(value)}
	p.ID = id
	return p
}

func mustList(t *testing.T, e *Engine, playerID uint, price string, sellerID uint) *TransferListing {
	t.Helper()
	l, err := e.CreateListing(playerID, dec(price), sellerID)
	if err != nil {
		t.Fatalf("CreateListing failed: %v", err)
	}
	return l
}

// --- Listing lifecycle ---

func TestCreateListing(t *testing.T) {
	engine, store := newTestMarket(1)

	l := mustList(t, engine, playerID, "1000000.00", sellerTeamID)

	if l.Status != ListingActive {
		t.Errorf("expected active listing, got %s", l.Status)
	}
	if l.SellerID != sellerTeamID {
		t.Errorf("expected seller %d, got %d", sellerTeamID, l.SellerID)
	}
	if got := store.listings[l.ID]; !got.Price.Equal(dec("1000000.00")) {
		t.Errorf("expected stored price 1000000.00, got %s", got.Price)
	}
}

func TestCreateListingValidation(t *testing.T) {
	engine, _ := newTestMarket(1)

	tests := []struct {
		name     string
		playerID uint
		price    string
		sellerID uint
		wantErr  error
	}{
		{"zero price", playerID, "0.00", sellerTeamID, ErrInvalidPrice},
		{"negative price", playerID, "-5.00", sellerTeamID, ErrInvalidPrice},
		{"unknown player", 999, "100.00", sellerTeamID, ErrPlayerNotFound},
		{"not the owner", playerID, "100.00", buyerTeamID, ErrNotOwner},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.CreateListing(tt.playerID, dec(tt.price), tt.sellerID)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCreateListingRejectsSecondActiveListing(t *testing.T) {
	engine, _ := newTestMarket(1)
	mustList(t, engine, playerID, "1000000.00", sellerTeamID)

	_, err := engine.CreateListing(playerID, dec("2000000.00"), sellerTeamID)
	if !errors.Is(err, ErrAlreadyListed) {
		t.Fatalf("expected ErrAlreadyListed, got %v", err)
	}
}

func TestCancelListing(t *testing.T) {
	engine, store := newTestMarket(1)
	l := mustList(t, engine, playerID, "1000000.00", sellerTeamID)

	if _, err := engine.CancelListing(l.ID, sellerTeamID); err != nil {
		t.Fatalf("CancelListing failed: %v", err)
	}

	// Soft delete: the row stays, with cancelled status.
	stored, ok := store.listings[l.ID]
	if !ok {
		t.Fatal("cancelled listing row was removed")
	}
	if stored.Status != ListingCancelled {
		t.Errorf("expected cancelled status, got %s", stored.Status)
	}

	// Cancelled listings are invisible to further lifecycle operations.
	if _, err := engine.CancelListing(l.ID, sellerTeamID); !errors.Is(err, ErrListingNotFound) {
		t.Errorf("expected ErrListingNotFound on second cancel, got %v", err)
	}
}

func TestCancelListingOnlyBySeller(t *testing.T) {
	engine, store := newTestMarket(1)
	l := mustList(t, engine, playerID, "1000000.00", sellerTeamID)

	if _, err := engine.CancelListing(l.ID, buyerTeamID); !errors.Is(err, ErrNotSeller) {
		t.Fatalf("expected ErrNotSeller, got %v", err)
	}
	if store.listings[l.ID].Status != ListingActive {
		t.Error("listing should stay active after a forbidden cancel")
	}
}

func TestRelistAfterCancel(t *testing.T) {
	engine, _ := newTestMarket(1)
	l := mustList(t, engine, playerID, "1000000.00", sellerTeamID)
	if _, err := engine.CancelListing(l.ID, sellerTeamID); err != nil {
		t.Fatalf("CancelListing failed: %v", err)
	}

	relisted := mustList(t, engine, playerID, "1500000.00", sellerTeamID)
	if relisted.ID == l.ID {
		t.Error("relisting must create a new row, not revive the cancelled one")
	}
}

// --- The buy operation ---

func TestBuySettlesTrade(t *testing.T) {
	engine, store := newTestMarket(42)
	l := mustList(t, engine, playerID, "1000000.00", sellerTeamID)

	tx, err := engine.Buy(l.ID, buyerTeamID)
	if err != nil {
		t.Fatalf("Buy failed: %v", err)
	}

	seller := store.teams[sellerTeamID]
	buyer := store.teams[buyerTeamID]
	player := store.players[playerID]

	if !seller.Capital.Equal(dec("6000000.00")) {
		t.Errorf("expected seller capital 6000000.00, got %s", seller.Capital)
	}
	if !buyer.Capital.Equal(dec("4000000.00")) {
		t.Errorf("expected buyer capital 4000000.00, got %s", buyer.Capital)
	}
	if player.OwnerID != buyerTeamID {
		t.Errorf("expected player owned by %d, got %d", buyerTeamID, player.OwnerID)
	}

	// Value appreciation stays within [5%, 15%].
	if player.Value.LessThan(dec("1050000.00")) || player.Value.GreaterThan(dec("1150000.00")) {
		t.Errorf("player value %s outside appreciation bounds", player.Value)
	}

	if store.listings[l.ID].Status != ListingSold {
		t.Errorf("expected sold listing, got %s", store.listings[l.ID].Status)
	}

	if len(store.transactions) != 1 {
		t.Fatalf("expected exactly one transaction, got %d", len(store.transactions))
	}
	if !tx.Amount.Equal(dec("1000000.00")) || tx.BuyerID != buyerTeamID || tx.SellerID != sellerTeamID || tx.PlayerID != playerID {
		t.Errorf("transaction record mismatch: %+v", tx)
	}
}

func TestBuyConservesMoney(t *testing.T) {
	engine, store := newTestMarket(7)
	l := mustList(t, engine, playerID, "123456.78", sellerTeamID)

	before := store.teams[sellerTeamID].Capital.Add(store.teams[buyerTeamID].Capital)

	if _, err := engine.Buy(l.ID, buyerTeamID); err != nil {
		t.Fatalf("Buy failed: %v", err)
	}

	after := store.teams[sellerTeamID].Capital.Add(store.teams[buyerTeamID].Capital)
	if !after.Equal(before) {
		t.Errorf("capital not conserved: before %s, after %s", before, after)
	}
}

func TestBuyOwnListingRejected(t *testing.T) {
	engine, store := newTestMarket(1)
	l := mustList(t, engine, playerID, "1000000.00", sellerTeamID)

	_, err := engine.Buy(l.ID, sellerTeamID)
	if !errors.Is(err, ErrCannotBuyOwnPlayer) {
		t.Fatalf("expected ErrCannotBuyOwnPlayer, got %v", err)
	}
	if store.listings[l.ID].Status != ListingActive {
		t.Error("listing must stay active after a rejected self-purchase")
	}
}

func TestBuyInsufficientCapital(t *testing.T) {
	engine, store := newTestMarket(1)
	l := mustList(t, engine, playerID, "6000000.00", sellerTeamID)

	_, err := engine.Buy(l.ID, buyerTeamID)
	if !errors.Is(err, ErrInsufficientCapital) {
		t.Fatalf("expected ErrInsufficientCapital, got %v", err)
	}

	// Zero side effects on the failure path.
	if !store.teams[buyerTeamID].Capital.Equal(dec("5000000.00")) {
		t.Errorf("buyer capital mutated: %s", store.teams[buyerTeamID].Capital)
	}
	if !store.teams[sellerTeamID].Capital.Equal(dec("5000000.00")) {
		t.Errorf("seller capital mutated: %s", store.teams[sellerTeamID].Capital)
	}
	if store.players[playerID].OwnerID != sellerTeamID {
		t.Error("ownership mutated on failed buy")
	}
	if store.listings[l.ID].Status != ListingActive {
		t.Error("listing deactivated on failed buy")
	}
	if len(store.transactions) != 0 {
		t.Error("transaction recorded on failed buy")
	}
}

func TestBuyCancelledListingRejected(t *testing.T) {
	engine, _ := newTestMarket(1)
	l := mustList(t, engine, playerID, "1000000.00", sellerTeamID)
	if _, err := engine.CancelListing(l.ID, sellerTeamID); err != nil {
		t.Fatalf("CancelListing failed: %v", err)
	}

	_, err := engine.Buy(l.ID, buyerTeamID)
	if !errors.Is(err, ErrListingNotFound) {
		t.Fatalf("expected ErrListingNotFound for a cancelled listing, got %v", err)
	}
}

func TestBuyUnknownListingRejected(t *testing.T) {
	engine, _ := newTestMarket(1)
	if _, err := engine.Buy(999, buyerTeamID); !errors.Is(err, ErrListingNotFound) {
		t.Fatalf("expected ErrListingNotFound, got %v", err)
	}
}

func TestBuySellerNoLongerOwnsPlayer(t *testing.T) {
	engine, store := newTestMarket(1)
	l := mustList(t, engine, playerID, "1000000.00", sellerTeamID)

	// Ownership changes behind the listing's back.
	p := store.players[playerID]
	p.OwnerID = thirdTeamID
	store.players[playerID] = p

	_, err := engine.Buy(l.ID, buyerTeamID)
	if !errors.Is(err, ErrSellerNoLongerOwnsPlayer) {
		t.Fatalf("expected ErrSellerNoLongerOwnsPlayer, got %v", err)
	}
	if !store.teams[buyerTeamID].Capital.Equal(dec("5000000.00")) {
		t.Error("buyer was debited even though the ownership re-check failed")
	}
	if len(store.transactions) != 0 {
		t.Error("transaction recorded for an aborted buy")
	}
}

func TestBuyAppreciationBounds(t *testing.T) {
	// Run many settlements with different seeds; every appreciated value must
	// land in [value*1.05, value*1.15] after rounding to 2 decimals.
	for seed := int64(0); seed < 25; seed++ {
		engine, store := newTestMarket(seed)
		l := mustList(t, engine, playerID, "1000000.00", sellerTeamID)
		if _, err := engine.Buy(l.ID, buyerTeamID); err != nil {
			t.Fatalf("seed %d: Buy failed: %v", seed, err)
		}
		v := store.players[playerID].Value
		if v.LessThan(dec("1050000.00")) || v.GreaterThan(dec("1150000.00")) {
			t.Errorf("seed %d: value %s outside [1050000.00, 1150000.00]", seed, v)
		}
		if v.Exponent() < -2 {
			t.Errorf("seed %d: value %s not rounded to 2 decimal places", seed, v)
		}
	}
}

func TestConcurrentBuySingleWinner(t *testing.T) {
	engine, store := newTestMarket(99)
	l := mustList(t, engine, playerID, "1000000.00", sellerTeamID)

	buyers := []uint{buyerTeamID, thirdTeamID}
	errs := make([]error, len(buyers))

	var wg sync.WaitGroup
	for i, id := range buyers {
		wg.Add(1)
		go func(i int, id uint) {
			defer wg.Done()
			_, errs[i] = engine.Buy(l.ID, id)
		}(i, id)
	}
	wg.Wait()

	var winners, losers int
	for i, err := range errs {
		switch {
		case err == nil:
			winners++
			if store.players[playerID].OwnerID != buyers[i] {
				t.Errorf("winner %d did not end up owning the player", buyers[i])
			}
		case errors.Is(err, ErrListingNotActive) || errors.Is(err, ErrListingNotFound):
			losers++
		default:
			t.Errorf("unexpected loser error: %v", err)
		}
	}
	if winners != 1 || losers != 1 {
		t.Fatalf("expected exactly one winner and one loser, got %d/%d", winners, losers)
	}

	if store.listings[l.ID].Status != ListingSold {
		t.Error("listing should be sold exactly once")
	}
	if len(store.transactions) != 1 {
		t.Fatalf("expected exactly one settled transaction, got %d", len(store.transactions))
	}

	// Only the winner paid; total capital across all teams is conserved.
	total := store.teams[sellerTeamID].Capital.
		Add(store.teams[buyerTeamID].Capital).
		Add(store.teams[thirdTeamID].Capital)
	if !total.Equal(dec("15000000.00")) {
		t.Errorf("capital not conserved across concurrent buys: %s", total)
	}
}

func TestListTransactionsNewestFirst(t *testing.T) {
	engine, store := newTestMarket(3)
	store.players[11] = newPlayer(11, "MID-alpha-1", sellerTeamID, "1000000.00")

	l1 := mustList(t, engine, playerID, "1000000.00", sellerTeamID)
	if _, err := engine.Buy(l1.ID, buyerTeamID); err != nil {
		t.Fatalf("first Buy failed: %v", err)
	}
	l2 := mustList(t, engine, 11, "500000.00", sellerTeamID)
	if _, err := engine.Buy(l2.ID, thirdTeamID); err != nil {
		t.Fatalf("second Buy failed: %v", err)
	}

	txs, total, err := engine.ListTransactions(1, 10)
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if total != 2 || len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %d", total)
	}
	if txs[0].PlayerID != 11 || txs[1].PlayerID != playerID {
		t.Errorf("transactions not ordered newest first: %d, %d", txs[0].PlayerID, txs[1].PlayerID)
	}
}

func TestListActiveListingsExcludesInactive(t *testing.T) {
	engine, store := newTestMarket(3)
	store.players[11] = newPlayer(11, "MID-alpha-1", sellerTeamID, "1000000.00")
	store.players[12] = newPlayer(12, "DEF-alpha-1", sellerTeamID, "1000000.00")

	l1 := mustList(t, engine, playerID, "1000000.00", sellerTeamID)
	l2 := mustList(t, engine, 11, "750000.00", sellerTeamID)
	mustList(t, engine, 12, "600000.00", sellerTeamID)

	if _, err := engine.CancelListing(l1.ID, sellerTeamID); err != nil {
		t.Fatalf("CancelListing failed: %v", err)
	}
	if _, err := engine.Buy(l2.ID, buyerTeamID); err != nil {
		t.Fatalf("Buy failed: %v", err)
	}

	listings, total, err := engine.ListActiveListings(1, 10)
	if err != nil {
		t.Fatalf("ListActiveListings failed: %v", err)
	}
	if total != 1 || len(listings) != 1 {
		t.Fatalf("expected 1 active listing, got %d", total)
	}
	if listings[0].PlayerID != 12 {
		t.Errorf("unexpected active listing for player %d", listings[0].PlayerID)
	}
}

func TestAppreciationRateRange(t *testing.T) {
	engine, _ := newTestMarket(5)
	for i := 0; i < 1000; i++ {
		r := engine.appreciationRate()
		if r.LessThan(dec("0.05")) || r.GreaterThanOrEqual(dec("0.15")) {
			t.Fatalf("rate %s outside [0.05, 0.15)", r)
		}
	}
}
