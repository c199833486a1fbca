package domain

import (
	"time"

	"gorm.io/datatypes"
)

// CREATE TABLE public.model_artifacts (
//     id          BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     version     TEXT NOT NULL,
//     name        TEXT NOT NULL,
//     payload     JSONB NOT NULL,
//     checksum    TEXT,
//     created_at  TIMESTAMPTZ DEFAULT NOW(),
//     updated_at  TIMESTAMPTZ DEFAULT NOW(),
//     UNIQUE (version, name)
// );

// ModelArtifact is one serialized artifact (model, explainer, feature names
// or schema) of a published model version.
type ModelArtifact struct {
	ID        uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	Version   string         `gorm:"column:version;type:text;not null;uniqueIndex:idx_model_artifacts_version_name" json:"version"`
	Name      string         `gorm:"column:name;type:text;not null;uniqueIndex:idx_model_artifacts_version_name" json:"name"`
	Payload   datatypes.JSON `gorm:"column:payload;not null" json:"-"`
	Checksum  string         `gorm:"column:checksum;type:text" json:"checksum"`
	CreatedAt time.Time      `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at" json:"updated_at"`
}

func (ModelArtifact) TableName() string { return "model_artifacts" }
