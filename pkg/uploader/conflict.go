package uploader

import (
	"github.com/kaptinlin/jsonrepair"

	jsonx "github.com/quality-match/hari-client-sub000/internal/shared/json"
	"github.com/quality-match/hari-client-sub000/pkg/client"
	"github.com/quality-match/hari-client-sub000/pkg/models"
)

// parseConflictResponse turns a conflict-class attribute upload error into
// the bulk-response shape, best effort. Attribute id conflicts are an
// expected consequence of attribute identity reuse, so they are a partial
// outcome rather than a hard abort.
//
// The body is decoded directly first; malformed payloads get one repair pass
// before we give up and synthesize a FAILURE result per submitted item.
func parseConflictResponse(apiErr *client.APIError, items []models.BulkAttributeCreate) *models.BulkResponse {
	if resp, ok := decodeBulkResponse(apiErr.Body); ok {
		return resp
	}

	if repaired, err := jsonrepair.JSONRepair(string(apiErr.Body)); err == nil {
		if resp, ok := decodeBulkResponse([]byte(repaired)); ok {
			return resp
		}
	}

	message := apiErr.Message
	if message == "" {
		message = apiErr.Error()
	}
	resp := &models.BulkResponse{
		Status:  models.BulkStatusFailure,
		Summary: models.BulkUploadSummary{Total: len(items), Failed: len(items)},
	}
	for _, item := range items {
		resp.Results = append(resp.Results, models.AnnotatableCreationResult{
			ItemID: item.ID,
			Status: models.ItemStatusFailure,
			Errors: []string{message},
		})
	}
	return resp
}

func decodeBulkResponse(body []byte) (*models.BulkResponse, bool) {
	var resp models.BulkResponse
	if err := jsonx.Unmarshal(body, &resp); err != nil {
		return nil, false
	}
	if resp.Status == "" && len(resp.Results) == 0 {
		return nil, false
	}
	if resp.Status == "" {
		resp.Status = models.BulkStatusPartialSuccess
	}
	return &resp, true
}
