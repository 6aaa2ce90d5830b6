package model

import (
	"time"
)

// Project is a saved search: the query a user ran and the results it
// returned at that moment.
type Project struct {
	ID                int       `json:"id"                  gorm:"primaryKey;autoIncrement"`
	Name              string    `json:"projectName"         gorm:"column:project_name;size:100;not null"`
	UserID            int       `json:"userId"              gorm:"column:user_id;not null;index"`
	SearchParamsJSON  string    `json:"search_params_json"  gorm:"column:search_params_json;type:text;not null"`
	SearchResultsJSON string    `json:"search_results_json" gorm:"column:search_results_json;type:longtext"`
	CreatedAt         time.Time `json:"createdAt"           gorm:"autoCreateTime;index"`
}

func (Project) TableName() string { return "projects" }
