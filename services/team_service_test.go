package services

import (
	"context"
	"errors"
	"testing"

	"github.com/faceoff-gg/progression/repositories"
)

func TestTeamServiceCreate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	team, err := env.teamService.Create(ctx, CreateTeamInput{Name: "  Natus Vincere  ", Tag: " navi "})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if team.Name != "Natus Vincere" || team.Tag != "navi" {
		t.Errorf("team = %q / %q, want trimmed values", team.Name, team.Tag)
	}

	if _, err := env.teamService.Create(ctx, CreateTeamInput{Name: "   "}); !errors.Is(err, ErrTeamNameRequired) {
		t.Errorf("Create(blank name) error = %v, want %v", err, ErrTeamNameRequired)
	}
	if _, err := env.teamService.Create(ctx, CreateTeamInput{Name: "Natus Vincere"}); !errors.Is(err, ErrTeamNameConflict) {
		t.Errorf("Create(duplicate name) error = %v, want %v", err, ErrTeamNameConflict)
	}
	if _, err := env.teamService.Create(ctx, CreateTeamInput{Name: "Other", Tag: "navi"}); !errors.Is(err, ErrTeamTagConflict) {
		t.Errorf("Create(duplicate tag) error = %v, want %v", err, ErrTeamTagConflict)
	}
}

func TestTeamServiceUpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	team, err := env.teamService.Create(ctx, CreateTeamInput{Name: "Vitality", Tag: "vit"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	name := "Team Vitality"
	updated, err := env.teamService.Update(ctx, team.ID, UpdateTeamInput{Name: &name})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Name != "Team Vitality" || updated.Tag != "vit" {
		t.Errorf("updated = %q / %q, want renamed with tag intact", updated.Name, updated.Tag)
	}

	if _, err := env.teamService.Update(ctx, "missing", UpdateTeamInput{Name: &name}); !errors.Is(err, ErrTeamNotFound) {
		t.Errorf("Update(missing) error = %v, want %v", err, ErrTeamNotFound)
	}

	if err := env.teamService.Delete(ctx, team.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := env.teamService.GetByID(ctx, team.ID); !errors.Is(err, ErrTeamNotFound) {
		t.Errorf("GetByID() after delete error = %v, want %v", err, ErrTeamNotFound)
	}
}

func TestTeamServiceListSearch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, name := range []string{"Astralis", "Astana Dragons", "Fnatic"} {
		if _, err := env.teamService.Create(ctx, CreateTeamInput{Name: name}); err != nil {
			t.Fatalf("Create(%s) error = %v", name, err)
		}
	}

	search := "Ast"
	teams, err := env.teamService.List(ctx, repositories.TeamFilter{Search: &search}, repositories.ListOptions{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(teams) != 2 {
		t.Errorf("List(Ast) = %d teams, want 2", len(teams))
	}
}

func TestGetExtensionFromContentType(t *testing.T) {
	tests := []struct {
		contentType string
		want        string
		wantErr     bool
	}{
		{"image/png", ".png", false},
		{"image/jpeg", ".jpg", false},
		{"image/webp", ".webp", false},
		{"image/svg+xml", ".svg", false},
		{"application/pdf", "", true},
	}

	for _, tt := range tests {
		got, err := GetExtensionFromContentType(tt.contentType)
		if tt.wantErr {
			if !errors.Is(err, ErrUnsupportedLogoType) {
				t.Errorf("GetExtensionFromContentType(%q) error = %v, want %v", tt.contentType, err, ErrUnsupportedLogoType)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("GetExtensionFromContentType(%q) = %q, %v, want %q", tt.contentType, got, err, tt.want)
		}
	}
}
