package models

// BulkOperationStatus is the overall status of one bulk operation.
type BulkOperationStatus string

const (
	BulkStatusSuccess        BulkOperationStatus = "SUCCESS"
	BulkStatusPartialSuccess BulkOperationStatus = "PARTIAL_SUCCESS"
	BulkStatusFailure        BulkOperationStatus = "FAILURE"
)

// ItemStatus is the per-item outcome within a bulk operation.
type ItemStatus string

const (
	ItemStatusSuccess  ItemStatus = "SUCCESS"
	ItemStatusConflict ItemStatus = "CONFLICT"
	ItemStatusFailure  ItemStatus = "FAILURE"
)

// BulkUploadSummary carries the counters of one bulk operation.
type BulkUploadSummary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// AnnotatableCreationResult reports the outcome for one submitted bulk item.
type AnnotatableCreationResult struct {
	ItemID                     string     `json:"item_id,omitempty"`
	BackReference              string     `json:"back_reference,omitempty"`
	BulkOperationAnnotatableID string     `json:"bulk_operation_annotatable_id,omitempty"`
	Status                     ItemStatus `json:"status"`
	Errors                     []string   `json:"errors,omitempty"`
}

// BulkResponse is the response shape of every bulk-create endpoint.
type BulkResponse struct {
	Status  BulkOperationStatus         `json:"status"`
	Summary BulkUploadSummary           `json:"summary"`
	Results []AnnotatableCreationResult `json:"results"`
}

// BulkMediaCreate is one media item of a bulk-create request.
type BulkMediaCreate struct {
	Name                       string    `json:"name,omitempty"`
	MediaType                  MediaType `json:"media_type"`
	BackReference              string    `json:"back_reference"`
	BulkOperationAnnotatableID string    `json:"bulk_operation_annotatable_id"`
}

// BulkMediaObjectCreate is one media-object item of a bulk-create request.
type BulkMediaObjectCreate struct {
	MediaID                    string         `json:"media_id"`
	BackReference              string         `json:"back_reference"`
	Reference                  *geometryField `json:"reference_data,omitempty"`
	SubsetIDs                  []string       `json:"subset_ids,omitempty"`
	BulkOperationAnnotatableID string         `json:"bulk_operation_annotatable_id"`
}

// BulkAttributeCreate is one attribute item of a bulk-create request.
type BulkAttributeCreate struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Value           Value           `json:"value"`
	AnnotatableID   string          `json:"annotatable_id"`
	AnnotatableType AnnotatableType `json:"annotatable_type"`
}
