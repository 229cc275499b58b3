package models

import "time"

// TemplateVariable declares one substitutable parameter of a template.
type TemplateVariable struct {
	Name     string `json:"name"`
	Type     string `json:"type,omitempty"`
	Required bool   `json:"required"`
	Default  string `json:"default,omitempty"`
}

// ConfigTemplate is a parameterized configuration body with {{variable}}
// placeholders. Immutable at deployment time; rendering never mutates it.
// Locator is set for model-driven vendors where the rendered payload is
// applied at an XPath instead of as raw text.
type ConfigTemplate struct {
	ID         string             `json:"template_id"`
	Name       string             `json:"name"`
	Vendor     VendorTag          `json:"vendor"`
	Category   string             `json:"category,omitempty"`
	Body       string             `json:"body"`
	Variables  []TemplateVariable `json:"variables,omitempty"`
	Locator    string             `json:"locator,omitempty"`
	UsageCount int                `json:"usage_count"`
}

// DeploymentStatus tracks a render+apply attempt.
type DeploymentStatus string

const (
	DeploymentPending    DeploymentStatus = "pending"
	DeploymentValidated  DeploymentStatus = "validated"
	DeploymentSuccess    DeploymentStatus = "success"
	DeploymentFailed     DeploymentStatus = "failed"
	DeploymentRolledBack DeploymentStatus = "rolled_back"
)

// TemplateDeployment records one render+apply attempt against one device.
// Created by the engine, persisted externally.
type TemplateDeployment struct {
	ID          string            `json:"deployment_id"`
	TemplateID  string            `json:"template_id"`
	DeviceID    string            `json:"device_id"`
	Variables   map[string]string `json:"variables,omitempty"`
	Rendered    string            `json:"rendered,omitempty"`
	Status      DeploymentStatus  `json:"status"`
	Error       string            `json:"error,omitempty"`
	BackupID    string            `json:"backup_id,omitempty"`
	DryRun      bool              `json:"dry_run"`
	CreatedAt   time.Time         `json:"created_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
}

// DeploymentSummary aggregates a bulk deployment.
type DeploymentSummary struct {
	Successful int                   `json:"successful"`
	Failed     int                   `json:"failed"`
	Results    []*TemplateDeployment `json:"results"`
}
