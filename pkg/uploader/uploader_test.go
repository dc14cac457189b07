package uploader

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quality-match/hari-client-sub000/pkg/client"
	"github.com/quality-match/hari-client-sub000/pkg/models"
)

// fakeAPI records every bulk call and answers with SUCCESS results carrying
// generated server ids, echoing each item's correlation id back.
type fakeAPI struct {
	mediaBatches     [][]models.BulkMediaCreate
	objectBatches    [][]models.BulkMediaObjectCreate
	attributeBatches [][]models.BulkAttributeCreate

	existingMedias  []models.MediaSummary
	existingObjects []models.MediaObjectSummary
	subsets         []models.Subset
	createdSubsets  []string

	mediaListCalls  int
	objectListCalls int

	attributesErr error
	nextServerID  int
}

func (f *fakeAPI) serverID(prefix string) string {
	f.nextServerID++
	return fmt.Sprintf("%s-%d", prefix, f.nextServerID)
}

func successResponse(results []models.AnnotatableCreationResult) *models.BulkResponse {
	return &models.BulkResponse{
		Status:  models.BulkStatusSuccess,
		Summary: models.BulkUploadSummary{Total: len(results), Successful: len(results)},
		Results: results,
	}
}

func (f *fakeAPI) CreateMedias(_ context.Context, _ string, items []models.BulkMediaCreate) (*models.BulkResponse, error) {
	f.mediaBatches = append(f.mediaBatches, items)
	results := make([]models.AnnotatableCreationResult, 0, len(items))
	for _, item := range items {
		results = append(results, models.AnnotatableCreationResult{
			ItemID:                     f.serverID("media"),
			BackReference:              item.BackReference,
			BulkOperationAnnotatableID: item.BulkOperationAnnotatableID,
			Status:                     models.ItemStatusSuccess,
		})
	}
	return successResponse(results), nil
}

func (f *fakeAPI) CreateMediaObjects(_ context.Context, _ string, items []models.BulkMediaObjectCreate) (*models.BulkResponse, error) {
	f.objectBatches = append(f.objectBatches, items)
	results := make([]models.AnnotatableCreationResult, 0, len(items))
	for _, item := range items {
		results = append(results, models.AnnotatableCreationResult{
			ItemID:                     f.serverID("object"),
			BackReference:              item.BackReference,
			BulkOperationAnnotatableID: item.BulkOperationAnnotatableID,
			Status:                     models.ItemStatusSuccess,
		})
	}
	return successResponse(results), nil
}

func (f *fakeAPI) CreateAttributes(_ context.Context, _ string, items []models.BulkAttributeCreate) (*models.BulkResponse, error) {
	f.attributeBatches = append(f.attributeBatches, items)
	if f.attributesErr != nil {
		return nil, f.attributesErr
	}
	results := make([]models.AnnotatableCreationResult, 0, len(items))
	for _, item := range items {
		results = append(results, models.AnnotatableCreationResult{
			ItemID: item.ID,
			Status: models.ItemStatusSuccess,
		})
	}
	return successResponse(results), nil
}

func (f *fakeAPI) GetMedias(context.Context, string) ([]models.MediaSummary, error) {
	f.mediaListCalls++
	return f.existingMedias, nil
}

func (f *fakeAPI) GetMediaObjects(context.Context, string) ([]models.MediaObjectSummary, error) {
	f.objectListCalls++
	return f.existingObjects, nil
}

func (f *fakeAPI) GetSubsets(context.Context, string) ([]models.Subset, error) {
	return f.subsets, nil
}

func (f *fakeAPI) CreateSubset(_ context.Context, _ string, subsetType models.SubsetType, name string) (string, error) {
	id := f.serverID("subset")
	f.createdSubsets = append(f.createdSubsets, name)
	f.subsets = append(f.subsets, models.Subset{ID: id, Name: name, SubsetType: subsetType})
	return id, nil
}

func buildMedia(backRef string, objects, attrsPerEntity int) *models.Media {
	media := models.NewMedia(backRef, models.MediaTypeImage)
	for a := 0; a < attrsPerEntity; a++ {
		media.AddAttribute(models.NewAttribute(fmt.Sprintf("m-attr-%d", a), models.Number(float64(a))))
	}
	for o := 0; o < objects; o++ {
		object := models.NewMediaObject(
			fmt.Sprintf("%s/obj-%d", backRef, o),
			&models.BBox2DCenterPoint{X: 10, Y: 20, Width: 30, Height: 40},
		)
		for a := 0; a < attrsPerEntity; a++ {
			object.AddAttribute(models.NewAttribute(fmt.Sprintf("o-attr-%d", a), models.Bool(a%2 == 0)))
		}
		media.AddMediaObject(object)
	}
	return media
}

func TestUploadEmptyQueueMakesNoCalls(t *testing.T) {
	api := &fakeAPI{}
	u := New(api, "ds-1")

	results, err := u.Upload(context.Background())
	require.NoError(t, err)
	require.Equal(t, models.BulkStatusSuccess, results.Medias.Status)
	require.Empty(t, api.mediaBatches)
	require.Zero(t, api.mediaListCalls)
}

func TestUploadThreadsServerIDsDownTheTiers(t *testing.T) {
	api := &fakeAPI{}
	u := New(api, "ds-1")

	media := buildMedia("img-1", 2, 1)
	media.MediaObjects[0].ObjectCategory = "pedestrian"
	require.NoError(t, u.AddMedia(media))

	results, err := u.Upload(context.Background())
	require.NoError(t, err)

	require.Equal(t, models.BulkStatusSuccess, results.Medias.Status)
	require.Equal(t, models.BulkStatusSuccess, results.MediaObjects.Status)
	require.Equal(t, models.BulkStatusSuccess, results.Attributes.Status)

	require.NotEmpty(t, media.Upload.ID)
	for _, object := range media.MediaObjects {
		require.Equal(t, media.Upload.ID, object.MediaID)
		require.NotEmpty(t, object.Upload.ID)
		for _, attr := range object.Attributes {
			require.Equal(t, object.Upload.ID, attr.AnnotatableID)
			require.Equal(t, models.AnnotatableTypeMediaObject, attr.AnnotatableType)
		}
	}
	for _, attr := range media.Attributes {
		require.Equal(t, media.Upload.ID, attr.AnnotatableID)
		require.Equal(t, models.AnnotatableTypeMedia, attr.AnnotatableType)
	}

	// The categorized object carries the subset created for its label.
	require.Equal(t, []string{"pedestrian"}, api.createdSubsets)
	require.Len(t, api.objectBatches, 1)
	var categorized *models.BulkMediaObjectCreate
	for i := range api.objectBatches[0] {
		if len(api.objectBatches[0][i].SubsetIDs) > 0 {
			categorized = &api.objectBatches[0][i]
		}
	}
	require.NotNil(t, categorized)
	require.Equal(t, "img-1/obj-0", categorized.BackReference)

	// Every wire item carried a fresh correlation id.
	for _, item := range api.mediaBatches[0] {
		require.NotEmpty(t, item.BulkOperationAnnotatableID)
	}
}

func TestUploadBatchSizesRespected(t *testing.T) {
	api := &fakeAPI{}
	u := New(api, "ds-1",
		WithMediaBatchSize(2),
		WithMediaObjectBatchSize(3),
		WithAttributeBatchSize(4),
	)

	// 5 medias, 2 objects each, 1 attribute per entity.
	for i := 0; i < 5; i++ {
		require.NoError(t, u.AddMedia(buildMedia(fmt.Sprintf("img-%d", i), 2, 1)))
	}

	results, err := u.Upload(context.Background())
	require.NoError(t, err)
	require.Equal(t, models.BulkStatusSuccess, results.Medias.Status)

	// Medias: 5 at size 2 -> [2, 2, 1].
	require.Len(t, api.mediaBatches, 3)
	require.Len(t, api.mediaBatches[0], 2)
	require.Len(t, api.mediaBatches[2], 1)

	// Objects per media batch: 4, 4, 2 at size 3 -> [3,1], [3,1], [2].
	require.Len(t, api.objectBatches, 5)

	// Attributes per media batch: 6, 6, 3 at size 4 -> [4,2], [4,2], [3].
	require.Len(t, api.attributeBatches, 5)
	total := 0
	for _, batch := range api.attributeBatches {
		require.LessOrEqual(t, len(batch), 4)
		total += len(batch)
	}
	require.Equal(t, 15, total)
	require.Equal(t, 15, results.Attributes.Summary.Total)
}

func TestUploadSkipsDuplicatesAndReportsConflict(t *testing.T) {
	api := &fakeAPI{
		existingMedias: []models.MediaSummary{{ID: "srv-m1", BackReference: "img-0"}},
		existingObjects: []models.MediaObjectSummary{
			{ID: "srv-o1", BackReference: "img-0/obj-0"},
		},
	}
	u := New(api, "ds-1")

	dup := buildMedia("img-0", 1, 1)
	fresh := buildMedia("img-1", 1, 1)
	require.NoError(t, u.AddMedia(dup, fresh))

	results, err := u.Upload(context.Background())
	require.NoError(t, err)

	// Only the fresh media went over the wire.
	require.Len(t, api.mediaBatches, 1)
	require.Len(t, api.mediaBatches[0], 1)
	require.Equal(t, "img-1", api.mediaBatches[0][0].BackReference)

	// The duplicate surfaces as a CONFLICT result counted as successful.
	require.Equal(t, 2, results.Medias.Summary.Total)
	require.Equal(t, 2, results.Medias.Summary.Successful)
	var conflict *models.AnnotatableCreationResult
	for i := range results.Medias.Results {
		if results.Medias.Results[i].Status == models.ItemStatusConflict {
			conflict = &results.Medias.Results[i]
		}
	}
	require.NotNil(t, conflict)
	require.Equal(t, "srv-m1", conflict.ItemID)
	require.Equal(t, "img-0", conflict.BackReference)

	// Children of the duplicate still reference the existing server id.
	require.Equal(t, "srv-m1", dup.MediaObjects[0].MediaID)
	require.Equal(t, "srv-m1", dup.Attributes[0].AnnotatableID)

	// The duplicate object was skipped as well.
	require.Len(t, api.objectBatches, 1)
	require.Len(t, api.objectBatches[0], 1)
	require.Equal(t, "srv-o1", dup.MediaObjects[0].Attributes[0].AnnotatableID)
}

func TestUploadRerunIdempotent(t *testing.T) {
	api := &fakeAPI{}
	u := New(api, "ds-1")
	require.NoError(t, u.AddMedia(buildMedia("img-0", 1, 0)))

	_, err := u.Upload(context.Background())
	require.NoError(t, err)
	require.Len(t, api.mediaBatches, 1)

	// Simulate a rerun against the now-populated dataset.
	api.existingMedias = []models.MediaSummary{{ID: "srv-m", BackReference: "img-0"}}
	api.existingObjects = []models.MediaObjectSummary{{ID: "srv-o", BackReference: "img-0/obj-0"}}

	u2 := New(api, "ds-1")
	require.NoError(t, u2.AddMedia(buildMedia("img-0", 1, 0)))
	results, err := u2.Upload(context.Background())
	require.NoError(t, err)

	// No new wire items, only synthesized conflicts.
	require.Len(t, api.mediaBatches, 1)
	require.Len(t, api.objectBatches, 1)
	require.Equal(t, 1, results.Medias.Summary.Total)
	require.Equal(t, models.ItemStatusConflict, results.Medias.Results[0].Status)
}

func TestUploadDuplicateCheckDisabledSkipsListing(t *testing.T) {
	api := &fakeAPI{
		existingMedias: []models.MediaSummary{{ID: "srv-m1", BackReference: "img-0"}},
	}
	u := New(api, "ds-1",
		WithMediaDuplicateCheck(false),
		WithMediaObjectDuplicateCheck(false),
	)
	require.NoError(t, u.AddMedia(buildMedia("img-0", 1, 0)))

	_, err := u.Upload(context.Background())
	require.NoError(t, err)

	require.Zero(t, api.mediaListCalls)
	require.Zero(t, api.objectListCalls)
	// Without the check the duplicate is re-sent.
	require.Len(t, api.mediaBatches[0], 1)
}

func TestUploadNoObjectsSkipsObjectListing(t *testing.T) {
	api := &fakeAPI{}
	u := New(api, "ds-1")
	require.NoError(t, u.AddMedia(buildMedia("img-0", 0, 1)))

	_, err := u.Upload(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, api.mediaListCalls)
	require.Zero(t, api.objectListCalls)
	require.Empty(t, api.objectBatches)
}

func TestUploadValidationAbortsBeforeNetwork(t *testing.T) {
	api := &fakeAPI{}
	u := New(api, "ds-1")

	media := models.NewMedia("img-0", models.MediaTypeImage)
	media.AddAttribute(models.NewAttribute("weather", models.String("sunny")))
	media.AddAttribute(models.NewAttribute("weather", models.Number(3)))
	require.NoError(t, u.AddMedia(media))

	_, err := u.Upload(context.Background())
	var typeErr *InconsistentValueTypeError
	require.ErrorAs(t, err, &typeErr)

	require.Zero(t, api.mediaListCalls)
	require.Empty(t, api.mediaBatches)
}

func TestUploadAttributeConflictRecovered(t *testing.T) {
	api := &fakeAPI{
		attributesErr: &client.APIError{
			Method:     http.MethodPost,
			Path:       "/datasets/ds-1/attributes:bulk",
			StatusCode: http.StatusConflict,
			Message:    "attribute id already exists",
			Body: []byte(`{"status":"PARTIAL_SUCCESS",` +
				`"summary":{"total":1,"successful":0,"failed":1},` +
				`"results":[{"status":"CONFLICT"}]}`),
		},
	}
	u := New(api, "ds-1")
	require.NoError(t, u.AddMedia(buildMedia("img-0", 0, 1)))

	results, err := u.Upload(context.Background())
	require.NoError(t, err)
	require.Equal(t, models.BulkStatusPartialSuccess, results.Attributes.Status)
	require.Equal(t, models.ItemStatusConflict, results.Attributes.Results[0].Status)
}

func TestUploadAttributeNonConflictErrorAborts(t *testing.T) {
	api := &fakeAPI{
		attributesErr: &client.APIError{
			Method:     http.MethodPost,
			Path:       "/datasets/ds-1/attributes:bulk",
			StatusCode: http.StatusInternalServerError,
			Message:    "boom",
		},
	}
	u := New(api, "ds-1")
	require.NoError(t, u.AddMedia(buildMedia("img-0", 0, 1)))

	_, err := u.Upload(context.Background())
	require.Error(t, err)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
}

func TestUploadReusesExistingSubset(t *testing.T) {
	api := &fakeAPI{
		subsets: []models.Subset{
			{ID: "sub-1", Name: "pedestrian", SubsetType: models.SubsetTypeMediaObject},
			{ID: "sub-2", Name: "pedestrian", SubsetType: models.SubsetTypeMedia},
		},
	}
	u := New(api, "ds-1")

	media := buildMedia("img-0", 1, 0)
	media.MediaObjects[0].ObjectCategory = "pedestrian"
	require.NoError(t, u.AddMedia(media))

	_, err := u.Upload(context.Background())
	require.NoError(t, err)

	require.Empty(t, api.createdSubsets)
	require.Equal(t, []string{"sub-1"}, api.objectBatches[0][0].SubsetIDs)
}

func TestUploadDeclaredCategoriesCreatedUpfront(t *testing.T) {
	api := &fakeAPI{}
	u := New(api, "ds-1", WithObjectCategories("cyclist", "pedestrian"))
	require.NoError(t, u.AddMedia(buildMedia("img-0", 0, 0)))

	_, err := u.Upload(context.Background())
	require.NoError(t, err)

	// Deterministic creation order regardless of declaration order.
	require.Equal(t, []string{"cyclist", "pedestrian"}, api.createdSubsets)
}

func TestAddMediaRejectsDuplicateBackReference(t *testing.T) {
	u := New(&fakeAPI{}, "ds-1")
	require.NoError(t, u.AddMedia(buildMedia("img-0", 0, 0)))

	err := u.AddMedia(buildMedia("img-0", 0, 0))
	var dupErr *DuplicateBackReferenceError
	require.ErrorAs(t, err, &dupErr)
	require.Equal(t, "img-0", dupErr.BackReference)
}
