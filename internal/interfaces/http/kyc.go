package httpinterface

import (
	"net/http"
	"strconv"

	"github.com/tdex-network/buysell-daemon/internal/core/application"
	"github.com/tdex-network/buysell-daemon/internal/core/domain"
)

func (h *handler) getKYCs(w http.ResponseWriter, r *http.Request) {
	refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))
	if !refresh {
		writeJSON(w, http.StatusOK, newKYCList(h.opts.BuySellSvc.KYCs()))
		return
	}

	kycs, err := h.opts.BuySellSvc.GetKYCs(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newKYCList(kycs))
}

func (h *handler) triggerKYC(w http.ResponseWriter, r *http.Request) {
	kyc, err := h.opts.BuySellSvc.TriggerKYC(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newKYCResponse(*kyc))
}

func (h *handler) getOpenKYC(w http.ResponseWriter, r *http.Request) {
	kyc, err := h.opts.BuySellSvc.GetOpenKYC(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newKYCResponse(*kyc))
}

// pollKYC starts polling the pending KYC case. With wait set, the response is
// sent once the poll settles.
func (h *handler) pollKYC(w http.ResponseWriter, r *http.Request) {
	poll, err := h.opts.BuySellSvc.PollKYC()
	if err != nil {
		writeError(w, err)
		return
	}

	h.lock.Lock()
	h.kycPoll = poll
	h.lock.Unlock()

	if wait, _ := strconv.ParseBool(r.URL.Query().Get("wait")); wait {
		if err := poll.Wait(r.Context()); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newPollResponse(poll))
		return
	}
	writeJSON(w, http.StatusAccepted, newPollResponse(poll))
}

func (h *handler) kycPollStatus(w http.ResponseWriter, r *http.Request) {
	h.lock.Lock()
	poll := h.kycPoll
	h.lock.Unlock()

	if poll == nil {
		writeError(w, application.ErrNoPendingKYC)
		return
	}
	writeJSON(w, http.StatusOK, newPollResponse(poll))
}

// pollUserLevel polls the given KYC case and then the profile level until
// verified. The poll is canceled if the client goes away.
func (h *handler) pollUserLevel(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var kyc *domain.KYC
	for _, k := range h.opts.BuySellSvc.KYCs() {
		if k.ID == id {
			k := k
			kyc = &k
			break
		}
	}
	if kyc == nil {
		writeError(w, errKYCNotFound)
		return
	}

	poll, err := h.opts.BuySellSvc.PollUserLevel(*kyc)
	if err != nil {
		writeError(w, err)
		return
	}
	defer poll.Cancel()

	if err := poll.Wait(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newProfileResponse(h.opts.BuySellSvc.Profile()))
}
