package handlers

import (
	"net/http"

	"github.com/faceoff-gg/progression/repositories"
	"github.com/faceoff-gg/progression/services"
)

type scoreInput struct {
	Score [2]int `json:"score"`
}

type SeriaHandler struct {
	seriaService services.SeriaService
}

func NewSeriaHandler(ss services.SeriaService) *SeriaHandler {
	return &SeriaHandler{
		seriaService: ss,
	}
}

func (h *SeriaHandler) CreateSeria(w http.ResponseWriter, r *http.Request) {
	var input services.CreateSeriaInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	seria, err := h.seriaService.Create(r.Context(), nil, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"seria": seria}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SeriaHandler) GetSeriaByID(w http.ResponseWriter, r *http.Request) {
	seriaID, err := getIDFromURL(r, "seriaID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	seria, err := h.seriaService.GetByID(r.Context(), seriaID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	matches, err := h.seriaService.GetSortedMatches(r.Context(), nil, seria)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"seria": seria, "matches": matches}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SeriaHandler) ListSeries(w http.ResponseWriter, r *http.Request) {
	opts, err := parseListOptions(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	filter := repositories.SeriaFilter{}
	if belongID := r.URL.Query().Get("belong_id"); belongID != "" {
		filter.BelongID = &belongID
	}

	series, err := h.seriaService.List(r.Context(), filter, opts)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"series": series}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SeriaHandler) UpdateMapPool(w http.ResponseWriter, r *http.Request) {
	seriaID, err := getIDFromURL(r, "seriaID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		MapPool []string `json:"map_pool"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	seria, err := h.seriaService.UpdateMapPool(r.Context(), seriaID, input.MapPool)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"seria": seria}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SeriaHandler) PlayMatch(w http.ResponseWriter, r *http.Request) {
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

	seria, err := h.seriaService.PlayMatch(r.Context(), nil, seriaID, input.Score, nil)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"seria": seria}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SeriaHandler) ChangeLastMatch(w http.ResponseWriter, r *http.Request) {
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

	seria, err := h.seriaService.ChangeLastMatch(r.Context(), nil, seriaID, input.Score, nil)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"seria": seria}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SeriaHandler) ResetLastMatch(w http.ResponseWriter, r *http.Request) {
	seriaID, err := getIDFromURL(r, "seriaID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	seria, err := h.seriaService.ResetLastMatch(r.Context(), nil, seriaID, nil)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"seria": seria}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SeriaHandler) DeleteSeria(w http.ResponseWriter, r *http.Request) {
	seriaID, err := getIDFromURL(r, "seriaID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.seriaService.Remove(r.Context(), nil, seriaID, nil); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
