package httpinterface

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
)

var errTickerNotFound = errors.New("ticker not found")

func (h *handler) listWebhooks(w http.ResponseWriter, r *http.Request) {
	hooks, err := h.opts.PubSubSvc.ListWebhooks(r.Context(), r.URL.Query().Get("event"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hooks)
}

func (h *handler) addWebhook(w http.ResponseWriter, r *http.Request) {
	var req webhookRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	id, err := h.opts.PubSubSvc.AddWebhook(r.Context(), req.Event, req.Endpoint, req.Secret)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *handler) removeWebhook(w http.ResponseWriter, r *http.Request) {
	if err := h.opts.PubSubSvc.RemoveWebhook(r.Context(), r.PathValue("id")); err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// listEvents returns the UI events recorded after the since sequence number.
func (h *handler) listEvents(w http.ResponseWriter, r *http.Request) {
	var since uint64
	if s := r.URL.Query().Get("since"); s != "" {
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			writeError(w, errBadRequest)
			return
		}
		since = n
	}
	writeJSON(w, http.StatusOK, h.opts.PubSubSvc.Events(since))
}

func (h *handler) listTickers(w http.ResponseWriter, r *http.Request) {
	tickers := h.opts.TickerSvc.ListTickers()
	list := make([]tickerResponse, 0, len(tickers))
	for _, t := range tickers {
		list = append(list, newTickerResponse(t))
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handler) getTicker(w http.ResponseWriter, r *http.Request) {
	base := strings.ToUpper(r.PathValue("base"))
	quote := strings.ToUpper(r.PathValue("quote"))

	ticker, err := h.opts.TickerSvc.GetTicker(base, quote)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: errTickerNotFound.Error()})
		return
	}
	writeJSON(w, http.StatusOK, newTickerResponse(*ticker))
}
