package models

import "time"

// Bootcamp represents a single bootcamp listing. Each listing is owned by
// exactly one user; non-admin publishers may own at most one.
type Bootcamp struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Website       string    `json:"website,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Email         string    `json:"email,omitempty"`
	Address       string    `json:"address"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	Careers       []string  `json:"careers"`
	Housing       bool      `json:"housing"`
	JobAssistance bool      `json:"jobAssistance"`
	JobGuarantee  bool      `json:"jobGuarantee"`
	AcceptGIBill  bool      `json:"acceptGiBill"`
	AverageCost   int       `json:"averageCost"`
	Photo         string    `json:"photo"`
	UserID        string    `json:"userId"`
	CreatedAt     time.Time `json:"createdAt"`
}
