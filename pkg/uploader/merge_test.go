package uploader

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quality-match/hari-client-sub000/pkg/models"
)

func bulkResp(status models.BulkOperationStatus, results ...models.AnnotatableCreationResult) *models.BulkResponse {
	summary := models.BulkUploadSummary{Total: len(results)}
	for _, r := range results {
		if r.Status == models.ItemStatusFailure {
			summary.Failed++
		} else {
			summary.Successful++
		}
	}
	return &models.BulkResponse{Status: status, Summary: summary, Results: results}
}

func TestMergeBulkResponsesZeroInputs(t *testing.T) {
	merged := MergeBulkResponses()
	require.Equal(t, models.BulkStatusSuccess, merged.Status)
	require.Empty(t, merged.Results)
	require.Zero(t, merged.Summary.Total)
}

func TestMergeBulkResponsesSingleInputUnchanged(t *testing.T) {
	resp := bulkResp(models.BulkStatusFailure, models.AnnotatableCreationResult{Status: models.ItemStatusFailure})
	merged := MergeBulkResponses(resp)
	require.Same(t, resp, merged)
}

func TestMergeBulkResponsesIdenticalStatusesKept(t *testing.T) {
	merged := MergeBulkResponses(
		bulkResp(models.BulkStatusFailure, models.AnnotatableCreationResult{Status: models.ItemStatusFailure}),
		bulkResp(models.BulkStatusFailure, models.AnnotatableCreationResult{Status: models.ItemStatusFailure}),
	)
	require.Equal(t, models.BulkStatusFailure, merged.Status)
	require.Equal(t, 2, merged.Summary.Total)
	require.Equal(t, 2, merged.Summary.Failed)
}

func TestMergeBulkResponsesMixedWithSuccess(t *testing.T) {
	merged := MergeBulkResponses(
		bulkResp(models.BulkStatusSuccess, models.AnnotatableCreationResult{Status: models.ItemStatusSuccess, BulkOperationAnnotatableID: "a"}),
		bulkResp(models.BulkStatusFailure, models.AnnotatableCreationResult{Status: models.ItemStatusFailure, BulkOperationAnnotatableID: "b"}),
	)
	require.Equal(t, models.BulkStatusPartialSuccess, merged.Status)
	require.Equal(t, 2, merged.Summary.Total)
	require.Equal(t, 1, merged.Summary.Successful)
	require.Equal(t, 1, merged.Summary.Failed)

	// Relative order is preserved.
	require.Equal(t, "a", merged.Results[0].BulkOperationAnnotatableID)
	require.Equal(t, "b", merged.Results[1].BulkOperationAnnotatableID)
}

func TestMergeBulkResponsesMixedWithoutSuccess(t *testing.T) {
	merged := MergeBulkResponses(
		bulkResp(models.BulkStatusPartialSuccess),
		bulkResp(models.BulkStatusFailure),
	)
	require.Equal(t, models.BulkStatusFailure, merged.Status)
}
