package market

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dhruvpatel-01/fantasyfc/config"
	"github.com/dhruvpatel-01/fantasyfc/internal/common"
	"github.com/dhruvpatel-01/fantasyfc/internal/team"
	"github.com/dhruvpatel-01/fantasyfc/pkg/responses"
	"github.com/dhruvpatel-01/fantasyfc/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// MarketController exposes the transfer market API. It resolves the
// authenticated user's team and delegates everything else to the engine.
type MarketController struct {
	engine *Engine
	teams  team.TeamRepository
	config *config.Config
}

// NewMarketController creates a new MarketController.
func NewMarketController(engine *Engine, teams team.TeamRepository, cfg *config.Config) *MarketController {
	return &MarketController{
		engine: engine,
		teams:  teams,
		config: cfg,
	}
}

// --- DTOs ---

type CreateListingRequest struct {
	PlayerID uint            `json:"player_id" binding:"required"`
	Price    decimal.Decimal `json:"price" binding:"required"`
}

type ListingResponse struct {
	ListingID uint            `json:"listing_id"`
	Player    team.Player     `json:"player"`
	Price     decimal.Decimal `json:"price"`
	Seller    string          `json:"seller"`
	Status    ListingStatus   `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

type TransactionResponse struct {
	ID        uint            `json:"id"`
	Buyer     string          `json:"buyer"`
	Seller    string          `json:"seller"`
	Player    team.Player     `json:"player"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

func toListingResponse(l *TransferListing) ListingResponse {
	return ListingResponse{
		ListingID: l.ID,
		Player:    l.Player,
		Price:     l.Price,
		Seller:    l.Seller.Name,
		Status:    l.Status,
		CreatedAt: l.CreatedAt,
	}
}

func toTransactionResponse(tx *Transaction) TransactionResponse {
	return TransactionResponse{
		ID:        tx.ID,
		Buyer:     tx.Buyer.Name,
		Seller:    tx.Seller.Name,
		Player:    tx.Player,
		Amount:    tx.Amount,
		CreatedAt: tx.CreatedAt,
	}
}

// resolveTeam looks up the requester's team from the authenticated user ID.
func (mc *MarketController) resolveTeam(c *gin.Context) (*team.Team, bool) {
	userID, err := common.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "")
		return nil, false
	}
	t, err := mc.teams.GetTeamByUserID(userID)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to resolve team", err.Error())
		return nil, false
	}
	if t == nil {
		responses.NotFound(c, "Team")
		return nil, false
	}
	return t, true
}

// sendEngineError maps engine sentinel errors to HTTP statuses.
func sendEngineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrListingNotFound), errors.Is(err, ErrPlayerNotFound):
		responses.SendError(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, ErrNotOwner), errors.Is(err, ErrNotSeller):
		responses.SendError(c, http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, ErrInvalidPrice),
		errors.Is(err, ErrAlreadyListed),
		errors.Is(err, ErrListingNotActive),
		errors.Is(err, ErrCannotBuyOwnPlayer),
		errors.Is(err, ErrInsufficientCapital),
		errors.Is(err, ErrSellerNoLongerOwnsPlayer):
		responses.SendError(c, http.StatusBadRequest, err.Error(), nil)
	default:
		responses.SendError(c, http.StatusInternalServerError, "Market operation failed", err.Error())
	}
}

// --- Handlers ---

// CreateListing godoc
// @Summary List a player for sale
// @Description Put one of your own players on the transfer market at a fixed price
// @Tags Market
// @Accept json
// @Produce json
// @Param listing body CreateListingRequest true "Listing creation request"
// @Success 201 {object} responses.SuccessResponse{data=ListingResponse}
// @Failure 400 {object} responses.ErrorResponse "Invalid price or player already listed"
// @Failure 403 {object} responses.ErrorResponse "Not the player's owner"
// @Failure 404 {object} responses.ErrorResponse "Player not found"
// @Router /listings [post]
// @Security BearerAuth
func (mc *MarketController) CreateListing(c *gin.Context) {
	var req CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendError(c, http.StatusBadRequest, "Validation failed", validator.ParseError(err))
		return
	}

	t, ok := mc.resolveTeam(c)
	if !ok {
		return
	}

	listing, err := mc.engine.CreateListing(req.PlayerID, req.Price, t.ID)
	if err != nil {
		sendEngineError(c, err)
		return
	}

	listing.Seller = *t
	responses.SendSuccess(c, http.StatusCreated, "Player listed for sale", toListingResponse(listing))
}

// CancelListing godoc
// @Summary Cancel a listing
// @Description Take one of your own listings off the market; the row is kept for audit
// @Tags Market
// @Produce json
// @Param listing_id path int true "Listing ID"
// @Success 200 {object} responses.SuccessResponse
// @Failure 403 {object} responses.ErrorResponse "Only the seller can cancel"
// @Failure 404 {object} responses.ErrorResponse "No active listing with that ID"
// @Router /listings/{listing_id} [delete]
// @Security BearerAuth
func (mc *MarketController) CancelListing(c *gin.Context) {
	listingID, err := strconv.ParseUint(c.Param("listing_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid listing ID format", nil)
		return
	}

	t, ok := mc.resolveTeam(c)
	if !ok {
		return
	}

	if _, err := mc.engine.CancelListing(uint(listingID), t.ID); err != nil {
		sendEngineError(c, err)
		return
	}

	responses.SendSuccess(c, http.StatusOK, "Listing cancelled", nil)
}

// BuyPlayer godoc
// @Summary Buy a listed player
// @Description Purchase a player from an active listing; payment, ownership transfer, value appreciation and the transaction record settle atomically
// @Tags Market
// @Produce json
// @Param listing_id path int true "Listing ID"
// @Success 201 {object} responses.SuccessResponse{data=TransactionResponse}
// @Failure 400 {object} responses.ErrorResponse "Self purchase, insufficient capital, or lost race"
// @Failure 404 {object} responses.ErrorResponse "No active listing with that ID"
// @Router /listings/{listing_id}/buy [post]
// @Security BearerAuth
func (mc *MarketController) BuyPlayer(c *gin.Context) {
	listingID, err := strconv.ParseUint(c.Param("listing_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid listing ID format", nil)
		return
	}

	t, ok := mc.resolveTeam(c)
	if !ok {
		return
	}

	tx, err := mc.engine.Buy(uint(listingID), t.ID)
	if err != nil {
		sendEngineError(c, err)
		return
	}

	responses.SendSuccess(c, http.StatusCreated, "Player purchased", toTransactionResponse(tx))
}

// GetMarket godoc
// @Summary Browse the transfer market
// @Description Get all active listings with player and seller details, newest first
// @Tags Market
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Number of items per page" default(10)
// @Success 200 {object} responses.PaginatedResponse{data=[]ListingResponse}
// @Router /market [get]
// @Security BearerAuth
func (mc *MarketController) GetMarket(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	listings, total, err := mc.engine.ListActiveListings(page, limit)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve market", err.Error())
		return
	}

	data := make([]ListingResponse, len(listings))
	for i := range listings {
		data[i] = toListingResponse(&listings[i])
	}
	responses.SendPaginated(c, http.StatusOK, "Market retrieved successfully", data, total, page, limit)
}

// GetTransactions godoc
// @Summary Trade history
// @Description Get the global settled-trade history, newest first
// @Tags Market
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Number of items per page" default(10)
// @Success 200 {object} responses.PaginatedResponse{data=[]TransactionResponse}
// @Router /transactions [get]
// @Security BearerAuth
func (mc *MarketController) GetTransactions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	txs, total, err := mc.engine.ListTransactions(page, limit)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve transactions", err.Error())
		return
	}

	data := make([]TransactionResponse, len(txs))
	for i := range txs {
		data[i] = toTransactionResponse(&txs[i])
	}
	responses.SendPaginated(c, http.StatusOK, "Transactions retrieved successfully", data, total, page, limit)
}
