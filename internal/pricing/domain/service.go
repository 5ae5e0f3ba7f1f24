// Package domain defines the quote API served to storefronts and the admin
// preview.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/smallbiznis/cushionly/internal/catalog/domain"
	"github.com/smallbiznis/cushionly/internal/pricing/engine"
	"github.com/smallbiznis/cushionly/internal/resolver"
)

// CalculatedPriceAttribute is the cart line attribute carrying the final
// price. The cart transform reprices the line to match it.
const CalculatedPriceAttribute = "_calculated_price"

type Service interface {
	// Configuration returns the resolved options for a shop and optional
	// profile id. An empty or "0" profile id selects the shop defaults.
	Configuration(ctx context.Context, shop, profileID string) (*resolver.Configuration, error)
	Quote(ctx context.Context, req QuoteRequest) (*Quote, error)
	Invalidate(ctx context.Context, shop string) error
}

type QuoteRequest struct {
	Shop      string `json:"-"`
	ProfileID string `json:"profile_id,omitempty"`
	resolver.QuoteInput
}

// Quote is a priced request. ID correlates the quote with the cart line it
// is attached to. FinalPrice is the rounded price with exactly two decimals
// and shadows the breakdown's decimal value in JSON.
type Quote struct {
	ID        string        `json:"id"`
	Shop      string        `json:"shop"`
	ProfileID *snowflake.ID `json:"profile_id,omitempty"`
	engine.Breakdown
	FinalPrice string            `json:"final_price"`
	Attributes map[string]string `json:"attributes"`
	CreatedAt  time.Time         `json:"created_at"`
}

var (
	ErrInvalidShop     = catalogdomain.ErrInvalidShop
	ErrProfileNotFound = catalogdomain.ErrProfileNotFound
	ErrTooManyPieces   = catalogdomain.ErrTooManyPieces
	ErrInvalidID       = catalogdomain.ErrInvalidID
	ErrInvalidQuote    = errors.New("invalid_quote")
)
