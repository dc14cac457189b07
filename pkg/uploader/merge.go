package uploader

import (
	"github.com/quality-match/hari-client-sub000/pkg/models"
)

// MergeBulkResponses combines partial bulk outcomes into one aggregate.
//
// Zero inputs yield an empty SUCCESS response; one input is returned
// unchanged. Otherwise result lists are concatenated preserving relative
// order, counters are summed, and the overall status derives as: identical
// statuses are kept; any SUCCESS among mixed inputs makes the merge
// PARTIAL_SUCCESS; a mix without SUCCESS is FAILURE.
func MergeBulkResponses(responses ...*models.BulkResponse) *models.BulkResponse {
	if len(responses) == 0 {
		return &models.BulkResponse{Status: models.BulkStatusSuccess}
	}
	if len(responses) == 1 {
		return responses[0]
	}

	merged := &models.BulkResponse{}
	for _, resp := range responses {
		merged.Results = append(merged.Results, resp.Results...)
		merged.Summary.Total += resp.Summary.Total
		merged.Summary.Successful += resp.Summary.Successful
		merged.Summary.Failed += resp.Summary.Failed
	}
	merged.Status = mergeStatuses(responses)
	return merged
}

func mergeStatuses(responses []*models.BulkResponse) models.BulkOperationStatus {
	allSame := true
	anySuccess := false
	first := responses[0].Status
	for _, resp := range responses {
		if resp.Status != first {
			allSame = false
		}
		if resp.Status == models.BulkStatusSuccess {
			anySuccess = true
		}
	}
	if allSame {
		return first
	}
	if anySuccess {
		return models.BulkStatusPartialSuccess
	}
	return models.BulkStatusFailure
}
