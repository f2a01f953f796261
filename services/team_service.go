package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/faceoff-gg/progression/models"
	"github.com/faceoff-gg/progression/repositories"
	"github.com/faceoff-gg/progression/storage"
	"github.com/google/uuid"
)

type CreateTeamInput struct {
	Name        string  `json:"name"`
	Tag         string  `json:"tag"`
	Description *string `json:"description"`
}

type UpdateTeamInput struct {
	Name        *string `json:"name"`
	Tag         *string `json:"tag"`
	Description *string `json:"description"`
}

type TeamService interface {
	Create(ctx context.Context, input CreateTeamInput) (*models.Team, error)
	GetByID(ctx context.Context, id string) (*models.Team, error)
	List(ctx context.Context, filter repositories.TeamFilter, opts repositories.ListOptions) ([]*models.Team, error)
	Update(ctx context.Context, id string, input UpdateTeamInput) (*models.Team, error)
	Delete(ctx context.Context, id string) error
	UploadLogo(ctx context.Context, id string, contentType string, reader io.Reader) (*models.Team, error)
}

type teamService struct {
	teamRepo repositories.TeamRepository
	uploader storage.FileUploader
}

func NewTeamService(teamRepo repositories.TeamRepository, uploader storage.FileUploader) TeamService {
	return &teamService{
		teamRepo: teamRepo,
		uploader: uploader,
	}
}

func (s *teamService) Create(ctx context.Context, input CreateTeamInput) (*models.Team, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}

	team := &models.Team{
		ID:          uuid.NewString(),
		Name:        name,
		Tag:         strings.TrimSpace(input.Tag),
		Description: input.Description,
	}
	if err := s.teamRepo.Create(ctx, nil, team); err != nil {
		return nil, mapTeamRepoError(err)
	}

	s.populateLogoURL(team)
	return team, nil
}

func (s *teamService) GetByID(ctx context.Context, id string) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapTeamRepoError(err)
	}

	s.populateLogoURL(team)
	return team, nil
}

func (s *teamService) List(ctx context.Context, filter repositories.TeamFilter, opts repositories.ListOptions) ([]*models.Team, error) {
	teams, err := s.teamRepo.List(ctx, nil, filter, opts)
	if err != nil {
		return nil, err
	}

	for _, team := range teams {
		s.populateLogoURL(team)
	}
	return teams, nil
}

func (s *teamService) Update(ctx context.Context, id string, input UpdateTeamInput) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapTeamRepoError(err)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrTeamNameRequired
		}
		team.Name = name
	}
	if input.Tag != nil {
		team.Tag = strings.TrimSpace(*input.Tag)
	}
	if input.Description != nil {
		team.Description = input.Description
	}

	if err := s.teamRepo.Update(ctx, nil, team); err != nil {
		return nil, mapTeamRepoError(err)
	}

	s.populateLogoURL(team)
	return team, nil
}

func (s *teamService) Delete(ctx context.Context, id string) error {
	team, err := s.teamRepo.GetByID(ctx, nil, id)
	if err != nil {
		return mapTeamRepoError(err)
	}

	if err := s.teamRepo.Delete(ctx, nil, id); err != nil {
		return mapTeamRepoError(err)
	}

	// Логотип в хранилище чистим после удаления записи. Ошибка здесь
	// уже не отменяет удаление команды.
	if team.LogoKey != nil && *team.LogoKey != "" && s.uploader != nil {
		_ = s.uploader.Delete(ctx, *team.LogoKey)
	}
	return nil
}

// UploadLogo загружает новый логотип и удаляет прежний объект из
// хранилища после успешной замены ключа.
func (s *teamService) UploadLogo(ctx context.Context, id string, contentType string, reader io.Reader) (*models.Team, error) {
	if s.uploader == nil {
		return nil, errors.New("file storage is not configured")
	}

	team, err := s.teamRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapTeamRepoError(err)
	}

	ext, err := GetExtensionFromContentType(contentType)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("teams/%s/logo_%s%s", team.ID, uuid.NewString(), ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, reader); err != nil {
		return nil, fmt.Errorf("failed to upload team logo: %w", err)
	}

	oldKey := team.LogoKey
	if err := s.teamRepo.UpdateLogoKey(ctx, nil, team.ID, &key); err != nil {
		_ = s.uploader.Delete(ctx, key)
		return nil, mapTeamRepoError(err)
	}
	team.LogoKey = &key

	if oldKey != nil && *oldKey != "" {
		_ = s.uploader.Delete(ctx, *oldKey)
	}

	s.populateLogoURL(team)
	return team, nil
}

func (s *teamService) populateLogoURL(team *models.Team) {
	if team == nil || team.LogoKey == nil || *team.LogoKey == "" || s.uploader == nil {
		return
	}
	if url := s.uploader.GetPublicURL(*team.LogoKey); url != "" {
		team.LogoURL = &url
	}
}

// GetExtensionFromContentType подбирает расширение файла по MIME-типу
// изображения.
func GetExtensionFromContentType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	case "image/svg+xml":
		return ".svg", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedLogoType, contentType)
	}
}

func mapTeamRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrTeamNotFound):
		return ErrTeamNotFound
	case errors.Is(err, repositories.ErrTeamNameConflict):
		return ErrTeamNameConflict
	case errors.Is(err, repositories.ErrTeamTagConflict):
		return ErrTeamTagConflict
	default:
		return err
	}
}
