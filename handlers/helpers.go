package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/faceoff-gg/progression/repositories"
	"github.com/faceoff-gg/progression/services"
	"github.com/go-chi/chi/v5"
)

type jsonResponse map[string]interface{}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case err.Error() == "http: request body too large":
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err) // Ошибка программиста: передан не указатель
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	env := jsonResponse{"error": message}
	if err := writeJSON(w, status, env, nil); err != nil {
		slog.ErrorContext(r.Context(), "failed to write error response", slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)
	message := "the server encountered a problem and could not process your request"
	errorResponse(w, r, http.StatusInternalServerError, message)
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func notFoundResponse(w http.ResponseWriter, r *http.Request) {
	message := "the requested resource could not be found"
	errorResponse(w, r, http.StatusNotFound, message)
}

func conflictResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusConflict, message)
}

func getIDFromURL(r *http.Request, param string) (string, error) {
	id := chi.URLParam(r, param)
	if id == "" {
		return "", fmt.Errorf("missing %s in URL", param)
	}
	return id, nil
}

// parseListOptions читает skip, limit, sort_by и sort_desc из query.
func parseListOptions(r *http.Request) (repositories.ListOptions, error) {
	opts := repositories.ListOptions{}
	query := r.URL.Query()

	if raw := query.Get("skip"); raw != "" {
		skip, err := strconv.Atoi(raw)
		if err != nil || skip < 0 {
			return opts, fmt.Errorf("invalid skip parameter: %q", raw)
		}
		opts.Skip = skip
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return opts, fmt.Errorf("invalid limit parameter: %q", raw)
		}
		opts.Limit = limit
	}

	opts.SortBy = query.Get("sort_by")
	if raw := query.Get("sort_desc"); raw != "" {
		desc, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, fmt.Errorf("invalid sort_desc parameter: %q", raw)
		}
		opts.SortDesc = desc
	}

	return opts, nil
}

// mapServiceErrorToHTTP преобразует ошибки сервисного слоя в HTTP-ответы
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	// Ресурс не найден
	case errors.Is(err, services.ErrTeamNotFound),
		errors.Is(err, services.ErrMatchNotFound),
		errors.Is(err, services.ErrSeriaNotFound),
		errors.Is(err, services.ErrPlayoffNotFound),
		errors.Is(err, services.ErrGroupNotFound),
		errors.Is(err, services.ErrSeriaWithoutLastMatch):
		notFoundResponse(w, r)

	// Невалидные данные / бизнес-правила
	case errors.Is(err, services.ErrEmptyTeamID),
		errors.Is(err, services.ErrEqualTeamIDs),
		errors.Is(err, services.ErrWrongSeriaDuration),
		errors.Is(err, services.ErrMapsNotMatch),
		errors.Is(err, services.ErrEqualScoreInSeria),
		errors.Is(err, services.ErrPlayoffSchemaInvalid),
		errors.Is(err, services.ErrTeamsAmountInvalid),
		errors.Is(err, services.ErrSeriaNotInRound),
		errors.Is(err, services.ErrGroupWithoutTeams),
		errors.Is(err, services.ErrGroupTeamNotExist),
		errors.Is(err, services.ErrIncorrectGroupTables),
		errors.Is(err, services.ErrIncorrectGroupMatches),
		errors.Is(err, services.ErrIncorrectGroupSeries),
		errors.Is(err, services.ErrIncorrectGroupGame),
		errors.Is(err, services.ErrTeamNameRequired),
		errors.Is(err, services.ErrUnsupportedLogoType):
		badRequestResponse(w, r, err)

	// Конфликты состояния
	case errors.Is(err, services.ErrReadonlyMatch),
		errors.Is(err, services.ErrReadonlySeria),
		errors.Is(err, services.ErrSeriaIsComplete),
		errors.Is(err, services.ErrMapPoolIsEmpty),
		errors.Is(err, services.ErrMapPoolChangeDisallowed),
		errors.Is(err, services.ErrCannotRemoveRound),
		errors.Is(err, services.ErrLastGroupStage),
		errors.Is(err, services.ErrIncompleteGroupStage),
		errors.Is(err, services.ErrCannotRemoveStage),
		errors.Is(err, services.ErrTeamNameConflict),
		errors.Is(err, services.ErrTeamTagConflict):
		conflictResponse(w, r, err.Error())

	default:
		serverErrorResponse(w, r, err)
	}
}
