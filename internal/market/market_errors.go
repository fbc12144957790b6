package market

import "errors"

// Sentinel errors returned by the market engine. Controllers map these to
// HTTP statuses; everything else is treated as an internal error.
var (
	// Not-found class (404)
	ErrListingNotFound = errors.New("listing not found")
	ErrPlayerNotFound  = errors.New("player not found")

	// Authorization class (403)
	ErrNotOwner  = errors.New("only the owner can list this player")
	ErrNotSeller = errors.New("only the seller can cancel this listing")

	// Validation / conflict class (400)
	ErrInvalidPrice             = errors.New("listing price must be greater than zero")
	ErrAlreadyListed            = errors.New("this player is already listed")
	ErrListingNotActive         = errors.New("listing is no longer active")
	ErrCannotBuyOwnPlayer       = errors.New("cannot buy your own player")
	ErrInsufficientCapital      = errors.New("insufficient capital")
	ErrSellerNoLongerOwnsPlayer = errors.New("seller no longer owns this player")
)
