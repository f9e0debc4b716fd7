package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"cardforge-backend/internal/middleware"
	"cardforge-backend/internal/models"
	"cardforge-backend/internal/services"
)

type DeckHandler struct {
	deckService *services.DeckService
	pdfService  *services.PDFService
}

func NewDeckHandler(deckService *services.DeckService, pdfService *services.PDFService) *DeckHandler {
	return &DeckHandler{deckService: deckService, pdfService: pdfService}
}

// Save persists a deck for the authenticated user. Anonymous callers get
// an acknowledgment telling the client to keep the deck locally.
func (h *DeckHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req models.SaveDeckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		if err := h.deckService.ValidateSave(req); err != nil {
			handleServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"message": "Deck saved locally. Sign in to sync decks across devices.",
			"storage": "local",
		})
		return
	}

	deck, err := h.deckService.Save(r.Context(), userID, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, deck)
}

func (h *DeckHandler) List(w http.ResponseWriter, r *http.Request) {
	decks, err := h.deckService.List(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	if decks == nil {
		decks = []models.Deck{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"decks": decks})
}

func (h *DeckHandler) Get(w http.ResponseWriter, r *http.Request) {
	deckID, ok := deckIDFromURL(w, r)
	if !ok {
		return
	}

	deck, err := h.deckService.Get(r.Context(), middleware.GetUserID(r.Context()), deckID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, deck)
}

func (h *DeckHandler) Delete(w http.ResponseWriter, r *http.Request) {
	deckID, ok := deckIDFromURL(w, r)
	if !ok {
		return
	}

	if err := h.deckService.Delete(r.Context(), middleware.GetUserID(r.Context()), deckID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Deck deleted"})
}

// Study marks the deck as studied and returns its cards.
func (h *DeckHandler) Study(w http.ResponseWriter, r *http.Request) {
	deckID, ok := deckIDFromURL(w, r)
	if !ok {
		return
	}

	deck, err := h.deckService.Study(r.Context(), middleware.GetUserID(r.Context()), deckID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, deck)
}

// ExportPDF streams the deck as a downloadable PDF document.
func (h *DeckHandler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	deckID, ok := deckIDFromURL(w, r)
	if !ok {
		return
	}

	deck, err := h.deckService.Get(r.Context(), middleware.GetUserID(r.Context()), deckID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	data, err := h.pdfService.RenderDeck(deck.Title, deck.Cards)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", deck.Title+".pdf"))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func deckIDFromURL(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	deckID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid deck ID", r))
		return uuid.Nil, false
	}
	return deckID, true
}
