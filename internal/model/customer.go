package model

import (
	"encoding/json"
	"time"

	"insadmin/internal/document"
)

// CustomerType distinguishes individual from corporate customers.
type CustomerType string

const (
	CustomerIndividual CustomerType = "individual"
	CustomerCorporate  CustomerType = "corporate"
)

// DocumentKinds is the closed set of category tags for the customer
// "documents" slot. The "additional documents" slot is discriminated by a
// free-text name instead.
var DocumentKinds = map[string]bool{
	"aadhaar_card":    true,
	"pan_card":        true,
	"driving_license": true,
	"mediclaim":       true,
	"rc_book":         true,
	"other":           true,
}

// Customer is an insurance consultancy client. Detail blocks are free-form
// JSON validated at the HTTP boundary; document slots are embedded collections
// owned by the customer row, with no separate documents table.
type Customer struct {
	ID            string       `json:"id"`
	CustomerCode  string       `json:"customer_code"`
	CustomerType  CustomerType `json:"customer_type"`

	PersonalDetails  json.RawMessage `json:"personal_details,omitempty"`
	CorporateDetails json.RawMessage `json:"corporate_details,omitempty"`
	FamilyDetails    json.RawMessage `json:"family_details,omitempty"`

	ProfilePhoto        *document.Record    `json:"profile_photo,omitempty"`
	Documents           document.Collection `json:"documents"`
	AdditionalDocuments document.Collection `json:"additional_documents"`

	IsActive      bool      `json:"is_active"`
	CreatedBy     string    `json:"created_by,omitempty"`
	LastUpdatedBy string    `json:"last_updated_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CustomerStats aggregates counts for the dashboard.
type CustomerStats struct {
	Total      int `json:"total"`
	Active     int `json:"active"`
	Inactive   int `json:"inactive"`
	Individual int `json:"individual"`
	Corporate  int `json:"corporate"`
}
