package handlers

import (
	"net/http"

	"github.com/faceoff-gg/progression/services"
)

type PlayoffHandler struct {
	playoffService services.PlayoffService
}

func NewPlayoffHandler(ps services.PlayoffService) *PlayoffHandler {
	return &PlayoffHandler{
		playoffService: ps,
	}
}

func (h *PlayoffHandler) CreatePlayoff(w http.ResponseWriter, r *http.Request) {
	var input services.CreatePlayoffInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	playoff, err := h.playoffService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"playoff": playoff}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayoffHandler) GetPlayoffByID(w http.ResponseWriter, r *http.Request) {
	playoffID, err := getIDFromURL(r, "playoffID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	playoff, err := h.playoffService.GetByID(r.Context(), playoffID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"playoff": playoff}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayoffHandler) GetFullBracket(w http.ResponseWriter, r *http.Request) {
	playoffID, err := getIDFromURL(r, "playoffID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	bracket, err := h.playoffService.GetFullBracket(r.Context(), playoffID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"bracket": bracket}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayoffHandler) ListPlayoffs(w http.ResponseWriter, r *http.Request) {
	opts, err := parseListOptions(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	playoffs, err := h.playoffService.List(r.Context(), opts)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"playoffs": playoffs}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayoffHandler) PlayMatch(w http.ResponseWriter, r *http.Request) {
	playoffID, err := getIDFromURL(r, "playoffID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	seriaID, err := getIDFromURL(r, "seriaID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input scoreInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	playoff, err := h.playoffService.PlayMatch(r.Context(), playoffID, seriaID, input.Score)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"playoff": playoff}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayoffHandler) ChangeLastMatch(w http.ResponseWriter, r *http.Request) {
	playoffID, err := getIDFromURL(r, "playoffID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	seriaID, err := getIDFromURL(r, "seriaID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input scoreInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	playoff, err := h.playoffService.ChangeLastMatch(r.Context(), playoffID, seriaID, input.Score)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"playoff": playoff}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayoffHandler) ResetLastMatch(w http.ResponseWriter, r *http.Request) {
	playoffID, err := getIDFromURL(r, "playoffID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	seriaID, err := getIDFromURL(r, "seriaID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	playoff, err := h.playoffService.ResetLastMatch(r.Context(), playoffID, seriaID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"playoff": playoff}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayoffHandler) DestroyLastRound(w http.ResponseWriter, r *http.Request) {
	playoffID, err := getIDFromURL(r, "playoffID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	playoff, err := h.playoffService.DestroyLastRound(r.Context(), playoffID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"playoff": playoff}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayoffHandler) DeletePlayoff(w http.ResponseWriter, r *http.Request) {
	playoffID, err := getIDFromURL(r, "playoffID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.playoffService.Remove(r.Context(), playoffID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
