package httpinterface

import (
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/buysell-daemon/internal/infrastructure/wallet"
)

func (h *handler) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newStatusResponse(h.opts.BuySellSvc.Status()))
}

// login stores the wallet info and initializes the exchange session. The
// wallet stays logged in even if the profile can't be fetched.
func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var info wallet.LoginInfo
	if err := decodeBody(r, &info); err != nil {
		writeError(w, err)
		return
	}

	h.opts.BuySellSvc.Logout()
	if err := h.opts.WalletSvc.Login(info); err != nil {
		writeError(w, err)
		return
	}
	if err := h.opts.BuySellSvc.Login(r.Context()); err != nil {
		log.WithError(err).Warn("exchange session login failed")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newStatusResponse(h.opts.BuySellSvc.Status()))
}

func (h *handler) logout(w http.ResponseWriter, r *http.Request) {
	h.opts.WalletSvc.Logout()
	h.opts.BuySellSvc.Logout()

	h.lock.Lock()
	h.kycPoll = nil
	h.lock.Unlock()

	writeJSON(w, http.StatusOK, newStatusResponse(h.opts.BuySellSvc.Status()))
}

func (h *handler) options(w http.ResponseWriter, r *http.Request) {
	opts, err := h.opts.OptionsSvc.Fetch(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, optionsResponse{
		BuySellEnabled: h.opts.BuySellDebug || len(opts.ShowBuySellTab) > 0,
		ShowBuySellTab: opts.ShowBuySellTab,
		AreaCodes:      opts.AreaCodes,
	})
}
