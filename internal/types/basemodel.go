package types

import (
	"context"
	"time"
)

// BaseModel carries the bookkeeping fields shared by all persisted entities
type BaseModel struct {
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
	CreatedBy string    `json:"created_by" bson:"created_by"`
	UpdatedBy string    `json:"updated_by" bson:"updated_by"`
}

// GetDefaultBaseModel stamps a fresh BaseModel from the request context
func GetDefaultBaseModel(ctx context.Context) BaseModel {
	now := time.Now().UTC()
	actor := GetUserID(ctx)
	return BaseModel{
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: actor,
		UpdatedBy: actor,
	}
}

// LogLevel controls logger verbosity
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
)

// DeploymentMode names the process flavor for logs and config
type DeploymentMode string

const (
	ModeLocal DeploymentMode = "local"
	ModeAPI   DeploymentMode = "api"
)
