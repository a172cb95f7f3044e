package ports

import (
	"context"

	"github.com/tdex-network/buysell-daemon/internal/core/domain"
)

// BuyViewOptions are the flags attached to a buy-view transition.
type BuyViewOptions struct {
	BitcoinReceived bool `json:"bitcoinReceived,omitempty"`
}

// ConfirmOptions are the labels of the confirm and cancel actions of a
// confirmation prompt.
type ConfirmOptions struct {
	Action string
	Cancel string
}

// Notifier delivers UI-level events. Every method is fire-and-forget.
type Notifier interface {
	DisplayError(msg string)
	DisplaySuccess(msg string)
	// Clear dismisses the displayed alerts.
	Clear()
	OpenTradeSummary(trade domain.Trade, state string)
	// OpenBuyView opens the buy view, optionally focused on a trade.
	OpenBuyView(trade *domain.Trade, opts BuyViewOptions)
	// GoToBuySell navigates to the buy-sell view and dismisses open modals.
	GoToBuySell()
}

// Confirmer asks the user to confirm an action. A false result with nil error
// means the user declined.
type Confirmer interface {
	Confirm(ctx context.Context, message string, opts ConfirmOptions) (bool, error)
}
