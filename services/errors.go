package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден
	ErrTeamNotFound          = errors.New("team not found")
	ErrMatchNotFound         = errors.New("match not found")
	ErrSeriaNotFound         = errors.New("seria not found")
	ErrPlayoffNotFound       = errors.New("playoff not found")
	ErrGroupNotFound         = errors.New("group not found")
	ErrSeriaWithoutLastMatch = errors.New("there are no completed matches in this seria")

	// Ошибки валидации и бизнес-правил
	ErrEmptyTeamID           = errors.New("team id cannot be empty")
	ErrEqualTeamIDs          = errors.New("match requires two different teams")
	ErrWrongSeriaDuration    = errors.New("seria duration must be 1, 3, 5 or 7")
	ErrMapsNotMatch          = errors.New("map pool size must be equal to seria duration")
	ErrEqualScoreInSeria     = errors.New("draw is not allowed in a seria match")
	ErrPlayoffSchemaInvalid  = errors.New("playoff schema must be a non-empty list of valid durations")
	ErrTeamsAmountInvalid    = errors.New("teams amount does not match the playoff schema")
	ErrSeriaNotInRound       = errors.New("seria does not belong to the current playoff round")
	ErrGroupWithoutTeams     = errors.New("group cannot be created without teams")
	ErrGroupTeamNotExist     = errors.New("referenced team does not exist")
	ErrIncorrectGroupTables  = errors.New("tables may only contain group teams, without repeats")
	ErrIncorrectGroupMatches = errors.New("matches may only reference teams of the group")
	ErrIncorrectGroupSeries  = errors.New("series may only reference teams of the group")
	ErrIncorrectGroupGame    = errors.New("game does not belong to the current group stage")

	// Ошибки конфликтов (нарушение предусловий состояния)
	ErrReadonlyMatch           = errors.New("match belongs to a seria or group and is readonly")
	ErrReadonlySeria           = errors.New("seria belongs to a playoff or group and is readonly")
	ErrSeriaIsComplete         = errors.New("seria is complete, there are no matches to play")
	ErrMapPoolIsEmpty          = errors.New("seria cannot be played without a map pool")
	ErrMapPoolChangeDisallowed = errors.New("map pool cannot be changed after the seria has begun")
	ErrCannotRemoveRound       = errors.New("playoff must contain at least one round")
	ErrLastGroupStage          = errors.New("all planned group stages already exist")
	ErrIncompleteGroupStage    = errors.New("current group stage has not been completed")
	ErrCannotRemoveStage       = errors.New("group must contain at least one stage")

	// Ошибки команд (CRUD)
	ErrTeamNameRequired    = errors.New("team name is required")
	ErrUnsupportedLogoType = errors.New("unsupported logo content type")
	ErrTeamNameConflict    = errors.New("team name is already in use")
	ErrTeamTagConflict     = errors.New("team tag is already in use")
)
