package handlers

import (
	"lelang/internal/middleware"
	"lelang/internal/models"
	"lelang/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/rs/zerolog"
)

// AuctionHandler handles HTTP requests for auctions and their bids.
type AuctionHandler struct {
	auctionService *services.AuctionService
	biddingService *services.BiddingService
	validate       *validator.Validate
	logger         zerolog.Logger
}

// NewAuctionHandler creates a new AuctionHandler.
func NewAuctionHandler(auctionService *services.AuctionService, biddingService *services.BiddingService, logger zerolog.Logger) *AuctionHandler {
	return &AuctionHandler{
		auctionService: auctionService,
		biddingService: biddingService,
		validate:       validator.New(),
		logger:         logger.With().Str("component", "auction_handler").Logger(),
	}
}

// RegisterRoutes registers the auction routes. Reads are public;
// mutations run behind auth. Public routes are registered first so the
// auth middleware never sees them.
func (h *AuctionHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	router.Get("/auctions", h.HandleListAuctions)
	router.Get("/auctions/:id", h.HandleGetAuction)
	router.Get("/auctions/:id/bids", h.HandleGetBidHistory)

	protected := router.Group("/auctions", auth)
	protected.Post("/", h.HandleCreateAuction)
	protected.Patch("/:id", h.HandleUpdateAuction)
	protected.Put("/:id", h.HandleUpdateAuction)
	protected.Delete("/:id", h.HandleDeleteAuction)
	protected.Post("/:id/bids", h.HandlePlaceBid)
}

// CreateAuctionRequest represents the request body for listing an auction.
type CreateAuctionRequest struct {
	Title         string  `json:"title" validate:"omitempty,max=255"`
	Description   string  `json:"description"`
	ImageSrc      string  `json:"image_src"`
	CurrentBid    float64 `json:"current_bid" validate:"gte=0"`
	ValidTillDays int     `json:"valid_till_days" validate:"gte=0"`
}

// PlaceBidRequest represents the request body for a bid.
type PlaceBidRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

// auctionID copies the :id param out of fiber's reused request buffer.
// The id outlives the request as a lock key and inside stored records.
func auctionID(c *fiber.Ctx) string {
	return utils.CopyString(c.Params("id"))
}

// HandleListAuctions returns every auction.
func (h *AuctionHandler) HandleListAuctions(c *fiber.Ctx) error {
	auctions, err := h.auctionService.ListAuctions(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, "Could not list auctions", err)
	}
	return c.JSON(auctions)
}

// HandleGetAuction returns one auction.
func (h *AuctionHandler) HandleGetAuction(c *fiber.Ctx) error {
	auction, err := h.auctionService.GetAuction(c.UserContext(), auctionID(c))
	if err != nil {
		return respondError(c, h.logger, "Could not get auction", err)
	}
	return c.JSON(auction)
}

// HandleCreateAuction lists an auction owned by the caller.
func (h *AuctionHandler) HandleCreateAuction(c *fiber.Ctx) error {
	var req CreateAuctionRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationResponse(c, err)
	}

	auction, err := h.auctionService.CreateAuction(c.UserContext(), models.AuctionDraft{
		Title:         req.Title,
		Description:   req.Description,
		ImageSrc:      req.ImageSrc,
		CurrentBid:    req.CurrentBid,
		ValidTillDays: req.ValidTillDays,
	}, middleware.Identity(c))
	if err != nil {
		return respondError(c, h.logger, "Could not create auction", err)
	}
	return c.Status(fiber.StatusCreated).JSON(auction)
}

// HandleUpdateAuction applies a merge-patch. Absent and null fields are
// left unchanged.
func (h *AuctionHandler) HandleUpdateAuction(c *fiber.Ctx) error {
	var patch models.AuctionPatch
	if err := c.BodyParser(&patch); err != nil {
		return badBody(c, err)
	}

	auction, err := h.auctionService.UpdateAuction(c.UserContext(), auctionID(c), middleware.Identity(c), patch)
	if err != nil {
		return respondError(c, h.logger, "Could not update auction", err)
	}
	return c.JSON(auction)
}

// HandleDeleteAuction removes an auction owned by the caller.
func (h *AuctionHandler) HandleDeleteAuction(c *fiber.Ctx) error {
	id := auctionID(c)
	if err := h.auctionService.DeleteAuction(c.UserContext(), id, middleware.Identity(c)); err != nil {
		return respondError(c, h.logger, "Could not delete auction", err)
	}
	return c.JSON(fiber.Map{
		"message": "Auction deleted successfully",
		"id":      id,
	})
}

// HandlePlaceBid places a bid for the caller.
func (h *AuctionHandler) HandlePlaceBid(c *fiber.Ctx) error {
	var req PlaceBidRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationResponse(c, err)
	}

	auction, bid, err := h.biddingService.PlaceBid(c.UserContext(), auctionID(c), middleware.Identity(c), req.Amount)
	if err != nil {
		return respondError(c, h.logger, "Bid rejected", err)
	}
	return c.JSON(fiber.Map{
		"message": "Bid placed successfully",
		"bid":     bid,
		"auction": auction,
	})
}

// HandleGetBidHistory returns the bid ledger of an auction.
func (h *AuctionHandler) HandleGetBidHistory(c *fiber.Ctx) error {
	history, err := h.biddingService.GetBidHistory(c.UserContext(), auctionID(c))
	if err != nil {
		return respondError(c, h.logger, "Could not get bid history", err)
	}
	return c.JSON(fiber.Map{
		"bid_history": history,
	})
}
