package models

type Team struct {
	ID          string  `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Tag         string  `json:"tag" db:"tag"`
	Description *string `json:"description,omitempty" db:"description"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`
}
