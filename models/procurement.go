package models

import "time"

// RequirementItem is one parsed line of a procurement request. Name is
// always non-empty; extraction discards empty-name rows.
type RequirementItem struct {
	Name     string   `json:"name"`
	Spec     string   `json:"spec,omitempty"`
	Quantity *float64 `json:"quantity,omitempty"`
	Source   string   `json:"source,omitempty"` // originating file, when extracted from a spreadsheet
}

// ScoredCandidate is a catalog entry plus its fuzzy score. Only exists
// in the output of candidate search; every returned score is >= 60.
type ScoredCandidate struct {
	AssetInventory
	FuzzyScore float64 `json:"fuzzy_score"`
}

// MatchSource says which branch of the decision produced an outcome.
type MatchSource string

const (
	MatchSourceFuzzy    MatchSource = "fuzzy"    // shortcut accept, score >= 85
	MatchSourceAI       MatchSource = "ai"       // AI arbitration picked a candidate
	MatchSourceFallback MatchSource = "fallback" // AI declined or failed, discounted fuzzy top
	MatchSourceNone     MatchSource = "none"     // zero candidates
)

// MatchOutcome is the terminal result for one requirement item. Exactly
// one outcome exists per item, in input order.
type MatchOutcome struct {
	Source     MatchSource     `json:"source"`
	MatchedID  *int64          `json:"matched_id"`
	Matched    *AssetInventory `json:"matched_inventory,omitempty"`
	Confidence float64         `json:"confidence"`
	Reason     string          `json:"reason"`
	ParsedName string          `json:"parsed_name"`
	ParsedSpec string          `json:"parsed_spec"`
}

// --- API shapes ---

type TextAnalyzeRequest struct {
	Content string `json:"content"`
}

type MatchedInventory struct {
	ID          int64    `json:"id"`
	ProductName string   `json:"product_name"`
	Category    string   `json:"category,omitempty"`
	Spec        string   `json:"spec,omitempty"`
	Quantity    *float64 `json:"quantity,omitempty"`
	Unit        string   `json:"unit,omitempty"`
	SalePrice   *float64 `json:"sale_price,omitempty"`
	Supplier    string   `json:"supplier,omitempty"`
}

type ProcurementDetailResponse struct {
	ID              int64             `json:"id"`
	OriginalContent string            `json:"original_content,omitempty"`
	ParsedName      string            `json:"parsed_name"`
	ParsedSpec      string            `json:"parsed_spec,omitempty"`
	ParsedQuantity  *float64          `json:"parsed_quantity,omitempty"`
	ConfidenceScore float64           `json:"confidence_score"`
	MatchReason     string            `json:"match_reason,omitempty"`
	Status          string            `json:"status"`
	Matched         *MatchedInventory `json:"matched_inventory,omitempty"`
}

type ProcurementTaskResponse struct {
	ID         int64                       `json:"id"`
	TaskName   string                      `json:"task_name"`
	InputType  string                      `json:"input_type"`
	Status     string                      `json:"status"`
	CreateTime time.Time                   `json:"create_time"`
	Details    []ProcurementDetailResponse `json:"details"`
}

type AnalyzeResponse struct {
	TaskID  int64                       `json:"task_id"`
	Status  string                      `json:"status"`
	Message string                      `json:"message"`
	Details []ProcurementDetailResponse `json:"details"`
}

// ExportRequest carries reviewed results back for spreadsheet export.
type ExportRequest struct {
	CustomerAbbr    string            `json:"customer_abbr"`
	ProjectName     string            `json:"project_name"`
	InvoiceTitle    string            `json:"invoice_title"`
	Requester       string            `json:"requester"`
	OrderDate       string            `json:"order_date"`
	DeliveryAddress string            `json:"delivery_address"`
	Details         []ExportDetailRow `json:"details"`
}

type ExportDetailRow struct {
	ParsedName     string            `json:"parsed_name"`
	ParsedSpec     string            `json:"parsed_spec,omitempty"`
	ParsedQuantity *float64          `json:"parsed_quantity,omitempty"`
	Matched        *MatchedInventory `json:"matched_inventory,omitempty"`
	Remark         string            `json:"remark,omitempty"`
	PurchaseLink   string            `json:"purchase_link,omitempty"`
}

// MatchedInventoryOf projects a catalog row into its response shape.
func MatchedInventoryOf(inv *AssetInventory) *MatchedInventory {
	if inv == nil {
		return nil
	}
	return &MatchedInventory{
		ID:          inv.ID,
		ProductName: inv.ProductName,
		Category:    inv.Category,
		Spec:        inv.Spec,
		Quantity:    inv.Quantity,
		Unit:        inv.Unit,
		SalePrice:   inv.SalePrice,
		Supplier:    inv.Supplier,
	}
}
