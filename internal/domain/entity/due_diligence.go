package entity

import "time"

type VerificationType string

const (
	VerificationAnalytics VerificationType = "analytics"
	VerificationFinancial VerificationType = "financial"
	VerificationLegal     VerificationType = "legal"
	VerificationTechnical VerificationType = "technical"
)

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

const (
	DueDiligencePending   = "pending"
	DueDiligenceCompleted = "completed"
)

type DueDiligenceRequest struct {
	ID        string             `json:"id"`
	AssetID   string             `json:"assetId"`
	BuyerID   string             `json:"buyerId"`
	Status    string             `json:"status"`
	CreatedAt time.Time          `json:"createdAt"`
	Items     []VerificationItem `json:"items,omitempty"`
}

type VerificationItem struct {
	ID          string             `json:"id"`
	RequestID   string             `json:"requestId"`
	Type        VerificationType   `json:"type"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Status      VerificationStatus `json:"status"`
	Notes       string             `json:"notes"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   *time.Time         `json:"updatedAt,omitempty"`
}

// DefaultVerificationItems is the checklist every new request starts with.
func DefaultVerificationItems() []VerificationItem {
	return []VerificationItem{
		{
			Type:        VerificationAnalytics,
			Title:       "Traffic Analytics Verification",
			Description: "Verify traffic sources, user engagement metrics, and growth trends.",
			Status:      VerificationPending,
		},
		{
			Type:        VerificationFinancial,
			Title:       "Revenue Verification",
			Description: "Verify revenue claims, payment processors, and financial statements.",
			Status:      VerificationPending,
		},
		{
			Type:        VerificationLegal,
			Title:       "Legal Documentation",
			Description: "Review terms of service, privacy policy, and other legal documents.",
			Status:      VerificationPending,
		},
		{
			Type:        VerificationTechnical,
			Title:       "Technical Audit",
			Description: "Review codebase, infrastructure, and technical documentation.",
			Status:      VerificationPending,
		},
	}
}
