package model

// Organization is a named entity sponsoring flyers, identified by its slug.
type Organization struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
	Type string `json:"type"`
}
