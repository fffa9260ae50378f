package model

import (
	"encoding/json"
	"time"

	"insadmin/internal/document"
)

// PolicyKind selects one of the three supported policy lines. All three share
// the same document lifecycle: a named "documents" slot and a single
// "policy file" slot.
type PolicyKind string

const (
	PolicyLife    PolicyKind = "life"
	PolicyHealth  PolicyKind = "health"
	PolicyVehicle PolicyKind = "vehicle"
)

// ValidPolicyKind reports whether s names a supported policy line.
func ValidPolicyKind(s string) bool {
	switch PolicyKind(s) {
	case PolicyLife, PolicyHealth, PolicyVehicle:
		return true
	}
	return false
}

// Policy is one insurance policy of any kind. Kind-specific detail blocks
// (nominee/rider details for life, member details for health, vehicle details
// for vehicle) live in ExtraDetails as free-form JSON.
type Policy struct {
	ID           string     `json:"id"`
	Kind         PolicyKind `json:"kind"`
	PolicyNumber string     `json:"policy_number"`
	CustomerID   string     `json:"customer_id"`

	ClientDetails     json.RawMessage `json:"client_details,omitempty"`
	InsuranceDetails  json.RawMessage `json:"insurance_details,omitempty"`
	CommissionDetails json.RawMessage `json:"commission_details,omitempty"`
	ExtraDetails      json.RawMessage `json:"extra_details,omitempty"`
	Notes             json.RawMessage `json:"notes,omitempty"`

	Documents  document.Collection `json:"documents"`
	PolicyFile *document.Record    `json:"policy_file,omitempty"`

	IsActive      bool      `json:"is_active"`
	CreatedBy     string    `json:"created_by,omitempty"`
	LastUpdatedBy string    `json:"last_updated_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// PolicyStats aggregates counts for one policy line.
type PolicyStats struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
	New      int `json:"new"`
	Renewal  int `json:"renewal"`
}
