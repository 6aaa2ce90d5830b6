package dto

import (
	"encoding/json"
	"time"
)

type SaveProjectRequest struct {
	ProjectName   string          `json:"projectName"`
	SearchParams  json.RawMessage `json:"searchParams"`
	SearchResults json.RawMessage `json:"searchResults"`
}

type ProjectSummary struct {
	ID        int       `json:"id"`
	Name      string    `json:"projectName"`
	CreatedAt time.Time `json:"createdAt"`
}

type ProjectDetail struct {
	Success           bool   `json:"success"`
	SearchParamsJSON  string `json:"search_params_json"`
	SearchResultsJSON string `json:"search_results_json"`
}
