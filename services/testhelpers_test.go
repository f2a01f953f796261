package services

import (
	"context"
	"strings"
	"testing"

	"github.com/faceoff-gg/progression/models"
	"github.com/faceoff-gg/progression/repositories"
)

// stubTx выполняет юнит работы без настоящей транзакции, сохраняя
// семантику переиспользования контекста.
type stubTx struct{}

func (stubTx) WithTransaction(ctx context.Context, exec repositories.SQLExecutor, fn func(exec repositories.SQLExecutor) error) error {
	return fn(exec)
}

func copyIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyStringSlice(values []string) []string {
	if values == nil {
		return nil
	}
	result := make([]string, len(values))
	copy(result, values)
	return result
}

func copyMatch(match *models.Match) *models.Match {
	clone := *match
	clone.BelongID = copyStringPtr(match.BelongID)
	clone.WinnerID = copyStringPtr(match.WinnerID)
	clone.IsOvertime = nil
	if match.IsOvertime != nil {
		v := *match.IsOvertime
		clone.IsOvertime = &v
	}
	clone.Score = [2]*int{copyIntPtr(match.Score[0]), copyIntPtr(match.Score[1])}
	return &clone
}

func copySeria(seria *models.Seria) *models.Seria {
	clone := *seria
	clone.BelongID = copyStringPtr(seria.BelongID)
	clone.WinnerID = copyStringPtr(seria.WinnerID)
	clone.MapPool = copyStringSlice(seria.MapPool)
	clone.MatchOrder = copyStringSlice(seria.MatchOrder)
	return &clone
}

func copyPlayoff(playoff *models.Playoff) *models.Playoff {
	clone := *playoff
	clone.SortedTeams = copyStringSlice(playoff.SortedTeams)
	clone.WinnerID = copyStringPtr(playoff.WinnerID)
	clone.Schema = nil
	if playoff.Schema != nil {
		clone.Schema = make([]models.SeriaDuration, len(playoff.Schema))
		copy(clone.Schema, playoff.Schema)
	}
	clone.Progress = nil
	if playoff.Progress != nil {
		clone.Progress = make([][]string, 0, len(playoff.Progress))
		for _, round := range playoff.Progress {
			clone.Progress = append(clone.Progress, copyStringSlice(round))
		}
	}
	return &clone
}

func copyGroup(group *models.Group) *models.Group {
	clone := *group
	clone.Teams = copyStringSlice(group.Teams)
	if group.PlacesCriteria != nil {
		clone.PlacesCriteria = make([]models.PlacesCriteria, len(group.PlacesCriteria))
		copy(clone.PlacesCriteria, group.PlacesCriteria)
	}
	if group.PointKoeffs != nil {
		clone.PointKoeffs = make([]int, len(group.PointKoeffs))
		copy(clone.PointKoeffs, group.PointKoeffs)
	}
	clone.Progress = nil
	for _, stage := range group.Progress {
		stageCopy := models.StageProgress{
			Games: models.StageGames{
				Matches: copyStringSlice(stage.Games.Matches),
				Series:  copyStringSlice(stage.Games.Series),
			},
		}
		if stage.Tables != nil {
			stageCopy.Tables = make([][]string, 0, len(stage.Tables))
			for _, table := range stage.Tables {
				stageCopy.Tables = append(stageCopy.Tables, copyStringSlice(table))
			}
		}
		clone.Progress = append(clone.Progress, stageCopy)
	}
	clone.Stats = nil
	if group.Stats != nil {
		clone.Stats = make(map[string]models.GroupTeamStat, len(group.Stats))
		for teamID, stat := range group.Stats {
			statCopy := stat
			statCopy.RangeCriteria = nil
			if stat.RangeCriteria != nil {
				statCopy.RangeCriteria = make([]int, len(stat.RangeCriteria))
				copy(statCopy.RangeCriteria, stat.RangeCriteria)
			}
			clone.Stats[teamID] = statCopy
		}
	}
	clone.Result = nil
	for _, stage := range group.Result {
		if stage == nil {
			clone.Result = append(clone.Result, nil)
			continue
		}
		stageCopy := make([][]string, 0, len(stage))
		for _, table := range stage {
			stageCopy = append(stageCopy, copyStringSlice(table))
		}
		clone.Result = append(clone.Result, stageCopy)
	}
	if group.Result != nil && clone.Result == nil {
		clone.Result = [][][]string{}
	}
	return &clone
}

type memTeamRepo struct {
	teams map[string]*models.Team
	order []string
}

func newMemTeamRepo() *memTeamRepo {
	return &memTeamRepo{teams: make(map[string]*models.Team)}
}

func (r *memTeamRepo) Create(ctx context.Context, exec repositories.SQLExecutor, team *models.Team) error {
	for _, existing := range r.teams {
		if existing.Name == team.Name {
			return repositories.ErrTeamNameConflict
		}
		if team.Tag != "" && existing.Tag == team.Tag {
			return repositories.ErrTeamTagConflict
		}
	}
	clone := *team
	r.teams[team.ID] = &clone
	r.order = append(r.order, team.ID)
	return nil
}

func (r *memTeamRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id string) (*models.Team, error) {
	team, ok := r.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	clone := *team
	return &clone, nil
}

func (r *memTeamRepo) GetManyByIDs(ctx context.Context, exec repositories.SQLExecutor, ids []string) ([]*models.Team, error) {
	var result []*models.Team
	seen := make(map[string]struct{})
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if team, ok := r.teams[id]; ok {
			clone := *team
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (r *memTeamRepo) List(ctx context.Context, exec repositories.SQLExecutor, filter repositories.TeamFilter, opts repositories.ListOptions) ([]*models.Team, error) {
	var result []*models.Team
	for _, id := range r.order {
		team := r.teams[id]
		if filter.Search != nil {
			search := strings.ToLower(*filter.Search)
			if !strings.Contains(strings.ToLower(team.Name), search) &&
				!strings.Contains(strings.ToLower(team.Tag), search) {
				continue
			}
		}
		clone := *team
		result = append(result, &clone)
	}
	return result, nil
}

func (r *memTeamRepo) Update(ctx context.Context, exec repositories.SQLExecutor, team *models.Team) error {
	if _, ok := r.teams[team.ID]; !ok {
		return repositories.ErrTeamNotFound
	}
	clone := *team
	r.teams[team.ID] = &clone
	return nil
}

func (r *memTeamRepo) UpdateLogoKey(ctx context.Context, exec repositories.SQLExecutor, id string, logoKey *string) error {
	team, ok := r.teams[id]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	team.LogoKey = copyStringPtr(logoKey)
	return nil
}

func (r *memTeamRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id string) error {
	if _, ok := r.teams[id]; !ok {
		return repositories.ErrTeamNotFound
	}
	delete(r.teams, id)
	for i, teamID := range r.order {
		if teamID == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

type memMatchRepo struct {
	matches map[string]*models.Match
	order   []string
}

func newMemMatchRepo() *memMatchRepo {
	return &memMatchRepo{matches: make(map[string]*models.Match)}
}

func (r *memMatchRepo) Create(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	r.matches[match.ID] = copyMatch(match)
	r.order = append(r.order, match.ID)
	return nil
}

func (r *memMatchRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id string) (*models.Match, error) {
	match, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return copyMatch(match), nil
}

func (r *memMatchRepo) ListByBelongID(ctx context.Context, exec repositories.SQLExecutor, belongID string) ([]*models.Match, error) {
	var result []*models.Match
	for _, id := range r.order {
		match := r.matches[id]
		if match.BelongID != nil && *match.BelongID == belongID {
			result = append(result, copyMatch(match))
		}
	}
	return result, nil
}

func (r *memMatchRepo) List(ctx context.Context, exec repositories.SQLExecutor, filter repositories.MatchFilter, opts repositories.ListOptions) ([]*models.Match, error) {
	var result []*models.Match
	for _, id := range r.order {
		match := r.matches[id]
		if filter.BelongID != nil && (match.BelongID == nil || *match.BelongID != *filter.BelongID) {
			continue
		}
		if filter.IsComplete != nil && match.IsComplete != *filter.IsComplete {
			continue
		}
		result = append(result, copyMatch(match))
	}
	return result, nil
}

func (r *memMatchRepo) Update(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	if _, ok := r.matches[match.ID]; !ok {
		return repositories.ErrMatchNotFound
	}
	r.matches[match.ID] = copyMatch(match)
	return nil
}

func (r *memMatchRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id string) error {
	if _, ok := r.matches[id]; !ok {
		return repositories.ErrMatchNotFound
	}
	delete(r.matches, id)
	for i, matchID := range r.order {
		if matchID == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

type memSeriaRepo struct {
	series map[string]*models.Seria
	order  []string
}

func newMemSeriaRepo() *memSeriaRepo {
	return &memSeriaRepo{series: make(map[string]*models.Seria)}
}

func (r *memSeriaRepo) Create(ctx context.Context, exec repositories.SQLExecutor, seria *models.Seria) error {
	r.series[seria.ID] = copySeria(seria)
	r.order = append(r.order, seria.ID)
	return nil
}

func (r *memSeriaRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id string) (*models.Seria, error) {
	seria, ok := r.series[id]
	if !ok {
		return nil, repositories.ErrSeriaNotFound
	}
	return copySeria(seria), nil
}

func (r *memSeriaRepo) GetManyByIDs(ctx context.Context, exec repositories.SQLExecutor, ids []string) ([]*models.Seria, error) {
	var result []*models.Seria
	for _, id := range ids {
		if seria, ok := r.series[id]; ok {
			result = append(result, copySeria(seria))
		}
	}
	return result, nil
}

func (r *memSeriaRepo) ListByBelongID(ctx context.Context, exec repositories.SQLExecutor, belongID string) ([]*models.Seria, error) {
	var result []*models.Seria
	for _, id := range r.order {
		seria := r.series[id]
		if seria.BelongID != nil && *seria.BelongID == belongID {
			result = append(result, copySeria(seria))
		}
	}
	return result, nil
}

func (r *memSeriaRepo) List(ctx context.Context, exec repositories.SQLExecutor, filter repositories.SeriaFilter, opts repositories.ListOptions) ([]*models.Seria, error) {
	var result []*models.Seria
	for _, id := range r.order {
		seria := r.series[id]
		if filter.BelongID != nil && (seria.BelongID == nil || *seria.BelongID != *filter.BelongID) {
			continue
		}
		if filter.IsComplete != nil && seria.IsComplete != *filter.IsComplete {
			continue
		}
		result = append(result, copySeria(seria))
	}
	return result, nil
}

func (r *memSeriaRepo) Update(ctx context.Context, exec repositories.SQLExecutor, seria *models.Seria) error {
	if _, ok := r.series[seria.ID]; !ok {
		return repositories.ErrSeriaNotFound
	}
	r.series[seria.ID] = copySeria(seria)
	return nil
}

func (r *memSeriaRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id string) error {
	if _, ok := r.series[id]; !ok {
		return repositories.ErrSeriaNotFound
	}
	delete(r.series, id)
	for i, seriaID := range r.order {
		if seriaID == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

type memPlayoffRepo struct {
	playoffs map[string]*models.Playoff
	order    []string
}

func newMemPlayoffRepo() *memPlayoffRepo {
	return &memPlayoffRepo{playoffs: make(map[string]*models.Playoff)}
}

func (r *memPlayoffRepo) Create(ctx context.Context, exec repositories.SQLExecutor, playoff *models.Playoff) error {
	r.playoffs[playoff.ID] = copyPlayoff(playoff)
	r.order = append(r.order, playoff.ID)
	return nil
}

func (r *memPlayoffRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id string) (*models.Playoff, error) {
	playoff, ok := r.playoffs[id]
	if !ok {
		return nil, repositories.ErrPlayoffNotFound
	}
	return copyPlayoff(playoff), nil
}

func (r *memPlayoffRepo) List(ctx context.Context, exec repositories.SQLExecutor, opts repositories.ListOptions) ([]*models.Playoff, error) {
	var result []*models.Playoff
	for _, id := range r.order {
		result = append(result, copyPlayoff(r.playoffs[id]))
	}
	return result, nil
}

func (r *memPlayoffRepo) Update(ctx context.Context, exec repositories.SQLExecutor, playoff *models.Playoff) error {
	if _, ok := r.playoffs[playoff.ID]; !ok {
		return repositories.ErrPlayoffNotFound
	}
	r.playoffs[playoff.ID] = copyPlayoff(playoff)
	return nil
}

func (r *memPlayoffRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id string) error {
	if _, ok := r.playoffs[id]; !ok {
		return repositories.ErrPlayoffNotFound
	}
	delete(r.playoffs, id)
	for i, playoffID := range r.order {
		if playoffID == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

type memGroupRepo struct {
	groups map[string]*models.Group
	order  []string
}

func newMemGroupRepo() *memGroupRepo {
	return &memGroupRepo{groups: make(map[string]*models.Group)}
}

func (r *memGroupRepo) Create(ctx context.Context, exec repositories.SQLExecutor, group *models.Group) error {
	r.groups[group.ID] = copyGroup(group)
	r.order = append(r.order, group.ID)
	return nil
}

func (r *memGroupRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id string) (*models.Group, error) {
	group, ok := r.groups[id]
	if !ok {
		return nil, repositories.ErrGroupNotFound
	}
	return copyGroup(group), nil
}

func (r *memGroupRepo) List(ctx context.Context, exec repositories.SQLExecutor, opts repositories.ListOptions) ([]*models.Group, error) {
	var result []*models.Group
	for _, id := range r.order {
		result = append(result, copyGroup(r.groups[id]))
	}
	return result, nil
}

func (r *memGroupRepo) Update(ctx context.Context, exec repositories.SQLExecutor, group *models.Group) error {
	if _, ok := r.groups[group.ID]; !ok {
		return repositories.ErrGroupNotFound
	}
	r.groups[group.ID] = copyGroup(group)
	return nil
}

func (r *memGroupRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id string) error {
	if _, ok := r.groups[id]; !ok {
		return repositories.ErrGroupNotFound
	}
	delete(r.groups, id)
	for i, groupID := range r.order {
		if groupID == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// testEnv собирает сервисы поверх репозиториев в памяти.
type testEnv struct {
	teamRepo    *memTeamRepo
	matchRepo   *memMatchRepo
	seriaRepo   *memSeriaRepo
	playoffRepo *memPlayoffRepo
	groupRepo   *memGroupRepo

	teamService    TeamService
	matchService   MatchService
	seriaService   SeriaService
	playoffService PlayoffService
	groupService   GroupService
}

func newTestEnv(t *testing.T, teamIDs ...string) *testEnv {
	t.Helper()

	env := &testEnv{
		teamRepo:    newMemTeamRepo(),
		matchRepo:   newMemMatchRepo(),
		seriaRepo:   newMemSeriaRepo(),
		playoffRepo: newMemPlayoffRepo(),
		groupRepo:   newMemGroupRepo(),
	}

	for _, teamID := range teamIDs {
		env.teamRepo.teams[teamID] = &models.Team{ID: teamID, Name: "team " + teamID, Tag: teamID}
		env.teamRepo.order = append(env.teamRepo.order, teamID)
	}

	tx := stubTx{}
	env.teamService = NewTeamService(env.teamRepo, nil)
	env.matchService = NewMatchService(env.matchRepo, env.teamRepo)
	env.seriaService = NewSeriaService(tx, env.seriaRepo, env.matchRepo, env.matchService)
	env.playoffService = NewPlayoffService(tx, env.playoffRepo, env.seriaRepo, env.matchRepo, env.seriaService)
	env.groupService = NewGroupService(tx, env.groupRepo, env.teamRepo, env.matchRepo, env.seriaRepo, env.matchService, env.seriaService)
	return env
}

func intPtr(v int) *int { return &v }
