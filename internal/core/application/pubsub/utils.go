package pubsub

import "github.com/tdex-network/buysell-daemon/internal/core/domain"

func getTradePayload(trade domain.Trade) map[string]interface{} {
	payload := map[string]interface{}{
		"id":               trade.ID,
		"state":            trade.State,
		"direction":        trade.Direction(),
		"medium":           trade.Medium,
		"receive_address":  trade.ReceiveAddress,
		"bitcoin_received": trade.BitcoinReceived,
		"in_currency":      trade.InCurrency,
		"out_currency":     trade.OutCurrency,
		"in_amount":        trade.InAmount.String(),
		"out_amount":       trade.OutAmount.String(),
	}
	if trade.TxHash != "" {
		payload["tx_hash"] = trade.TxHash
	}
	return payload
}
