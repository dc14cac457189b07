package uploader

import (
	"context"
	"fmt"

	harid "github.com/quality-match/hari-client-sub000/internal/id"
	"github.com/quality-match/hari-client-sub000/internal/logging"
	"github.com/quality-match/hari-client-sub000/pkg/client"
	"github.com/quality-match/hari-client-sub000/pkg/models"
)

// API is the slice of the HARI client the uploader consumes. *client.Client
// satisfies it; tests substitute their own implementation.
type API interface {
	CreateMedias(ctx context.Context, datasetID string, items []models.BulkMediaCreate) (*models.BulkResponse, error)
	CreateMediaObjects(ctx context.Context, datasetID string, items []models.BulkMediaObjectCreate) (*models.BulkResponse, error)
	CreateAttributes(ctx context.Context, datasetID string, items []models.BulkAttributeCreate) (*models.BulkResponse, error)
	GetMedias(ctx context.Context, datasetID string) ([]models.MediaSummary, error)
	GetMediaObjects(ctx context.Context, datasetID string) ([]models.MediaObjectSummary, error)
	GetSubsets(ctx context.Context, datasetID string) ([]models.Subset, error)
	CreateSubset(ctx context.Context, datasetID string, subsetType models.SubsetType, name string) (string, error)
}

var _ API = (*client.Client)(nil)

// UploadResults carries the merged per-tier outcomes of one upload run.
type UploadResults struct {
	Medias       *models.BulkResponse
	MediaObjects *models.BulkResponse
	Attributes   *models.BulkResponse
}

// Uploader batches Media trees through the bulk endpoints of one dataset.
//
// All mutable state is instance-local, so disjoint uploaders may run
// concurrently. Concurrent uploaders targeting the same dataset rely on
// back-reference duplicate detection only; the window between the duplicate
// check and the actual upload is an accepted race.
type Uploader struct {
	api       API
	datasetID string
	logger    logging.Logger

	mediaBatchSize     int
	objectBatchSize    int
	attributeBatchSize int

	checkMediaDuplicates  bool
	checkObjectDuplicates bool
	extraCategories       []string

	medias    []*models.Media
	byBackRef map[string]*models.Media
}

// Option customizes an Uploader.
type Option func(*Uploader)

// WithMediaBatchSize tunes the media batch size; values outside (0, limit]
// fall back to the endpoint ceiling.
func WithMediaBatchSize(size int) Option {
	return func(u *Uploader) { u.mediaBatchSize = clampBatchSize(size, MediaBulkLimit) }
}

// WithMediaObjectBatchSize tunes the media-object batch size.
func WithMediaObjectBatchSize(size int) Option {
	return func(u *Uploader) { u.objectBatchSize = clampBatchSize(size, MediaObjectBulkLimit) }
}

// WithAttributeBatchSize tunes the attribute batch size.
func WithAttributeBatchSize(size int) Option {
	return func(u *Uploader) { u.attributeBatchSize = clampBatchSize(size, AttributeBulkLimit) }
}

// WithMediaDuplicateCheck toggles the pre-upload media listing. Disabling it
// skips one O(dataset-size) call at the cost of re-uploading duplicates.
func WithMediaDuplicateCheck(enabled bool) Option {
	return func(u *Uploader) { u.checkMediaDuplicates = enabled }
}

// WithMediaObjectDuplicateCheck toggles the pre-upload media-object listing.
func WithMediaObjectDuplicateCheck(enabled bool) Option {
	return func(u *Uploader) { u.checkObjectDuplicates = enabled }
}

// WithObjectCategories declares category labels that must exist as subsets
// even when no queued media object references them yet.
func WithObjectCategories(labels ...string) Option {
	return func(u *Uploader) { u.extraCategories = append(u.extraCategories, labels...) }
}

// WithLogger overrides the uploader's logger.
func WithLogger(logger logging.Logger) Option {
	return func(u *Uploader) { u.logger = logging.OrNop(logger) }
}

// New builds an uploader for one dataset.
func New(api API, datasetID string, opts ...Option) *Uploader {
	u := &Uploader{
		api:                   api,
		datasetID:             datasetID,
		logger:                logging.NewComponentLogger("uploader"),
		mediaBatchSize:        MediaBulkLimit,
		objectBatchSize:       MediaObjectBulkLimit,
		attributeBatchSize:    AttributeBulkLimit,
		checkMediaDuplicates:  true,
		checkObjectDuplicates: true,
		byBackRef:             make(map[string]*models.Media),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// AddMedia registers media trees for the next upload run. A back reference
// already registered with this uploader is rejected.
func (u *Uploader) AddMedia(medias ...*models.Media) error {
	for _, media := range medias {
		if media == nil {
			return fmt.Errorf("nil media")
		}
		if media.BackReference != "" {
			if _, exists := u.byBackRef[media.BackReference]; exists {
				u.logger.Warn("media with back_reference %q added twice", media.BackReference)
				return &DuplicateBackReferenceError{BackReference: media.BackReference}
			}
			u.byBackRef[media.BackReference] = media
		}
		u.medias = append(u.medias, media)
	}
	return nil
}

// Upload drives one full run: validate, detect duplicates, resolve
// categories, then batch and upload tier by tier, threading server ids
// downward, and merge the partial outcomes.
//
// Entities are mutated in place and must not be reused across runs. A
// validation, category or non-attribute-tier upload error aborts the run;
// re-running with duplicate detection enabled skips what already succeeded.
func (u *Uploader) Upload(ctx context.Context) (*UploadResults, error) {
	if len(u.medias) == 0 {
		u.logger.Info("No media queued, nothing to upload")
		return emptyResults(), nil
	}

	attributes := u.collectAttributes()
	u.logger.Info("Starting upload run: %d medias, %d attributes total", len(u.medias), len(attributes))

	if err := validateAttributes(attributes); err != nil {
		return nil, err
	}
	assignAttributeIDs(attributes)

	if err := u.detectDuplicates(ctx); err != nil {
		return nil, err
	}

	categories, err := u.resolveObjectCategories(ctx)
	if err != nil {
		return nil, err
	}

	var mediaResponses []*models.BulkResponse
	var objectResponses []*models.BulkResponse
	var attributeResponses []*models.BulkResponse

	for batchIdx, mediaBatch := range chunk(u.medias, u.mediaBatchSize) {
		u.logger.Debug("Uploading media batch %d (%d items)", batchIdx, len(mediaBatch))
		mediaResp, err := u.uploadMediaBatch(ctx, mediaBatch)
		if err != nil {
			return nil, err
		}
		mediaResponses = append(mediaResponses, mediaResp)

		objects, batchAttributes := collectChildren(mediaBatch)

		for _, objectBatch := range chunk(objects, u.objectBatchSize) {
			objectResp, err := u.uploadObjectBatch(ctx, objectBatch, categories)
			if err != nil {
				return nil, err
			}
			objectResponses = append(objectResponses, objectResp)
		}

		for _, attributeBatch := range chunk(batchAttributes, u.attributeBatchSize) {
			attributeResp, err := u.uploadAttributeBatch(ctx, attributeBatch)
			if err != nil {
				return nil, err
			}
			attributeResponses = append(attributeResponses, attributeResp)
		}
	}

	results := &UploadResults{
		Medias:       MergeBulkResponses(mediaResponses...),
		MediaObjects: MergeBulkResponses(objectResponses...),
		Attributes:   MergeBulkResponses(attributeResponses...),
	}
	u.logger.Info("Upload run finished: medias %s, media objects %s, attributes %s",
		results.Medias.Status, results.MediaObjects.Status, results.Attributes.Status)
	return results, nil
}

func emptyResults() *UploadResults {
	return &UploadResults{
		Medias:       MergeBulkResponses(),
		MediaObjects: MergeBulkResponses(),
		Attributes:   MergeBulkResponses(),
	}
}

// collectAttributes flattens every queued attribute and stamps its
// annotatable type from the owner kind.
func (u *Uploader) collectAttributes() []*models.Attribute {
	var attrs []*models.Attribute
	for _, media := range u.medias {
		for _, attr := range media.Attributes {
			attr.AnnotatableType = models.AnnotatableTypeMedia
			attrs = append(attrs, attr)
		}
		for _, object := range media.MediaObjects {
			for _, attr := range object.Attributes {
				attr.AnnotatableType = models.AnnotatableTypeMediaObject
				attrs = append(attrs, attr)
			}
		}
	}
	return attrs
}

// assignAttributeIDs gives every (name, annotatable type) group one id:
// the caller-supplied one when present, a fresh one otherwise. Runs after
// validation, so conflicting caller-supplied ids are already ruled out.
func assignAttributeIDs(attrs []*models.Attribute) {
	groupIDs := make(map[attributeGroupKey]string)
	for _, attr := range attrs {
		if attr.ID == "" {
			continue
		}
		groupIDs[attributeGroupKey{name: attr.Name, annotatableType: attr.AnnotatableType}] = attr.ID
	}
	for _, attr := range attrs {
		if attr.ID != "" {
			continue
		}
		key := attributeGroupKey{name: attr.Name, annotatableType: attr.AnnotatableType}
		groupID, ok := groupIDs[key]
		if !ok {
			groupID = harid.NewAttributeID()
			groupIDs[key] = groupID
		}
		attr.ID = groupID
	}
}

func (u *Uploader) detectDuplicates(ctx context.Context) error {
	if u.checkMediaDuplicates {
		existing, err := u.api.GetMedias(ctx, u.datasetID)
		if err != nil {
			return fmt.Errorf("list medias for duplicate check: %w", err)
		}
		markMediaDuplicates(u.medias, existing, u.logger)
	}

	if u.checkObjectDuplicates {
		var objects []*models.MediaObject
		for _, media := range u.medias {
			objects = append(objects, media.MediaObjects...)
		}
		if len(objects) == 0 {
			return nil
		}
		existing, err := u.api.GetMediaObjects(ctx, u.datasetID)
		if err != nil {
			return fmt.Errorf("list media objects for duplicate check: %w", err)
		}
		markMediaObjectDuplicates(objects, existing, u.logger)
	}
	return nil
}

func collectChildren(mediaBatch []*models.Media) ([]*models.MediaObject, []*models.Attribute) {
	var objects []*models.MediaObject
	var attrs []*models.Attribute
	for _, media := range mediaBatch {
		attrs = append(attrs, media.Attributes...)
		for _, object := range media.MediaObjects {
			objects = append(objects, object)
			attrs = append(attrs, object.Attributes...)
		}
	}
	return objects, attrs
}

func (u *Uploader) uploadMediaBatch(ctx context.Context, batch []*models.Media) (*models.BulkResponse, error) {
	byBulkID := make(map[string]*models.Media, len(batch))
	var items []models.BulkMediaCreate
	var skipped []models.AnnotatableCreationResult

	for _, media := range batch {
		media.Upload.BulkOperationAnnotatableID = harid.NewBulkItemID()
		if media.Upload.Uploaded {
			// Children of a duplicate still need the existing server id.
			u.propagateMediaID(media)
			skipped = append(skipped, conflictResult(
				media.Upload.ID,
				media.BackReference,
				media.Upload.BulkOperationAnnotatableID,
				fmt.Sprintf("media with back_reference %q already exists, skipped", media.BackReference),
			))
			continue
		}
		byBulkID[media.Upload.BulkOperationAnnotatableID] = media
		items = append(items, media.ToBulkCreate())
	}

	resp := &models.BulkResponse{Status: models.BulkStatusSuccess}
	if len(items) > 0 {
		created, err := u.api.CreateMedias(ctx, u.datasetID, items)
		if err != nil {
			return nil, fmt.Errorf("create medias: %w", err)
		}
		resp = created

		for _, result := range resp.Results {
			media, ok := byBulkID[result.BulkOperationAnnotatableID]
			if !ok {
				u.logger.Warn("media bulk response carries unknown correlation id %q", result.BulkOperationAnnotatableID)
				continue
			}
			if result.ItemID != "" {
				media.Upload.ID = result.ItemID
				u.propagateMediaID(media)
			}
		}
	}

	foldSkipped(resp, skipped)
	return resp, nil
}

func (u *Uploader) uploadObjectBatch(ctx context.Context, batch []*models.MediaObject, categories map[string]string) (*models.BulkResponse, error) {
	byBulkID := make(map[string]*models.MediaObject, len(batch))
	var items []models.BulkMediaObjectCreate
	var skipped []models.AnnotatableCreationResult

	for _, object := range batch {
		object.Upload.BulkOperationAnnotatableID = harid.NewBulkItemID()
		if object.Upload.Uploaded {
			u.propagateObjectID(object)
			skipped = append(skipped, conflictResult(
				object.Upload.ID,
				object.BackReference,
				object.Upload.BulkOperationAnnotatableID,
				fmt.Sprintf("media object with back_reference %q already exists, skipped", object.BackReference),
			))
			continue
		}
		subsetID := ""
		if object.ObjectCategory != "" {
			resolved, ok := categories[object.ObjectCategory]
			if !ok {
				return nil, &UnresolvedCategoryError{Label: object.ObjectCategory}
			}
			subsetID = resolved
		}
		byBulkID[object.Upload.BulkOperationAnnotatableID] = object
		items = append(items, object.ToBulkCreate(subsetID))
	}

	resp := &models.BulkResponse{Status: models.BulkStatusSuccess}
	if len(items) > 0 {
		created, err := u.api.CreateMediaObjects(ctx, u.datasetID, items)
		if err != nil {
			return nil, fmt.Errorf("create media objects: %w", err)
		}
		resp = created

		for _, result := range resp.Results {
			object, ok := byBulkID[result.BulkOperationAnnotatableID]
			if !ok {
				u.logger.Warn("media object bulk response carries unknown correlation id %q", result.BulkOperationAnnotatableID)
				continue
			}
			if result.ItemID != "" {
				object.Upload.ID = result.ItemID
				u.propagateObjectID(object)
			}
		}
	}

	foldSkipped(resp, skipped)
	return resp, nil
}

// uploadAttributeBatch uploads one attribute sub-batch. Conflict-class API
// errors are recovered into the bulk-response shape because attribute id
// reuse makes them an expected partial outcome; everything else propagates.
func (u *Uploader) uploadAttributeBatch(ctx context.Context, batch []*models.Attribute) (*models.BulkResponse, error) {
	items := make([]models.BulkAttributeCreate, 0, len(batch))
	for _, attr := range batch {
		items = append(items, attr.ToBulkCreate())
	}

	resp, err := u.api.CreateAttributes(ctx, u.datasetID, items)
	if err != nil {
		if apiErr, ok := client.AsAPIError(err); ok && client.IsConflict(err) {
			u.logger.Warn("attribute batch returned conflict, recovering result from error body")
			return parseConflictResponse(apiErr, items), nil
		}
		return nil, fmt.Errorf("create attributes: %w", err)
	}
	return resp, nil
}

// propagateMediaID threads a media's server id into its children so the next
// tiers can reference it.
func (u *Uploader) propagateMediaID(media *models.Media) {
	for _, object := range media.MediaObjects {
		object.MediaID = media.Upload.ID
	}
	for _, attr := range media.Attributes {
		attr.AnnotatableID = media.Upload.ID
		attr.AnnotatableType = models.AnnotatableTypeMedia
	}
}

func (u *Uploader) propagateObjectID(object *models.MediaObject) {
	for _, attr := range object.Attributes {
		attr.AnnotatableID = object.Upload.ID
		attr.AnnotatableType = models.AnnotatableTypeMediaObject
	}
}

// conflictResult synthesizes the CONFLICT entry reported for a skipped
// duplicate, so callers can distinguish "already there" from "failed"
// without a second network call.
func conflictResult(itemID, backReference, bulkID, message string) models.AnnotatableCreationResult {
	return models.AnnotatableCreationResult{
		ItemID:                     itemID,
		BackReference:              backReference,
		BulkOperationAnnotatableID: bulkID,
		Status:                     models.ItemStatusConflict,
		Errors:                     []string{message},
	}
}

// foldSkipped appends synthesized duplicate entries into a tier response.
// Skipped entities count as successful: they exist server-side.
func foldSkipped(resp *models.BulkResponse, skipped []models.AnnotatableCreationResult) {
	if len(skipped) == 0 {
		return
	}
	resp.Results = append(resp.Results, skipped...)
	resp.Summary.Total += len(skipped)
	resp.Summary.Successful += len(skipped)
}
