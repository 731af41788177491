package handlers

import "net/http"

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	rows, err := h.Transactions.ListByUser(r.Context(), userID, parseLimit(r.URL.Query().Get("limit"), 50))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load transactions")
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

func (h *Handler) ListVisits(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	rows, err := h.Visits.ListByUser(r.Context(), userID, parseLimit(r.URL.Query().Get("limit"), 50))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load visits")
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

func (h *Handler) Activity(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	rows, err := h.Transactions.ListActivity(r.Context(), userID, parseLimit(r.URL.Query().Get("limit"), 20))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load activity")
		return
	}
	respondJSON(w, http.StatusOK, rows)
}
