// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Tool is a single curated external link with metadata. Every tool
// belongs to exactly one ToolCategory. Inactive tools are hidden from
// non-admin views; featured tools surface in the home-page highlights.
type Tool struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	URL         string    `json:"url"`
	ImageURL    *string   `json:"image_url"`
	CategoryID  uuid.UUID `json:"category_id"`
	SortOrder   int       `json:"sort_order"`
	IsActive    bool      `json:"is_active"`
	IsFeatured  bool      `json:"is_featured"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Virtual field populated by store methods that join the category.
	Category *ToolCategory `json:"category,omitempty"`
}
