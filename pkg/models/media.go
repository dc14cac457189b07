package models

import (
	"github.com/quality-match/hari-client-sub000/internal/logging"
)

// MediaType identifies the asset kind of a Media.
type MediaType string

const (
	MediaTypeImage      MediaType = "image"
	MediaTypeVideo      MediaType = "video"
	MediaTypePointCloud MediaType = "point_cloud"
)

// UploadState is the server-assigned sub-record of an entity. It is owned and
// mutated by the uploader during a run; callers own the construction fields.
type UploadState struct {
	// ID is the server-assigned id, empty until uploaded or matched as duplicate.
	ID string
	// Uploaded marks an entity that already exists server-side and is skipped.
	Uploaded bool
	// BulkOperationAnnotatableID correlates a batch request item with its
	// response item; assigned fresh per batch.
	BulkOperationAnnotatableID string
}

// Media represents one uploadable asset. It exclusively owns its media
// objects and attributes; sharing them across Media instances is not
// supported.
type Media struct {
	BackReference string
	// FilePath is the local source file; it is never part of a wire payload.
	FilePath  string
	Name      string
	MediaType MediaType

	MediaObjects []*MediaObject
	Attributes   []*Attribute

	Upload UploadState
}

var modelLogger = logging.NewComponentLogger("models")

// NewMedia builds a media entity. An empty back reference is tolerated but
// makes duplicate detection ambiguous, so it is logged.
func NewMedia(backReference string, mediaType MediaType) *Media {
	if backReference == "" {
		modelLogger.Warn("media created without back_reference; duplicate detection will not cover it")
	}
	return &Media{
		BackReference: backReference,
		MediaType:     mediaType,
	}
}

// AddMediaObject attaches a media object to this media.
func (m *Media) AddMediaObject(obj *MediaObject) {
	m.MediaObjects = append(m.MediaObjects, obj)
}

// AddAttribute attaches a media-level attribute.
func (m *Media) AddAttribute(attr *Attribute) {
	m.Attributes = append(m.Attributes, attr)
}

// ToBulkCreate converts the media into its bulk-create wire item. FilePath is
// deliberately absent from the payload.
func (m *Media) ToBulkCreate() BulkMediaCreate {
	return BulkMediaCreate{
		Name:                       m.Name,
		MediaType:                  m.MediaType,
		BackReference:              m.BackReference,
		BulkOperationAnnotatableID: m.Upload.BulkOperationAnnotatableID,
	}
}

// MediaObject represents one geometric annotation belonging to exactly one Media.
type MediaObject struct {
	BackReference string
	Reference     Geometry
	// ObjectCategory is a label resolved to a subset id during orchestration.
	ObjectCategory string
	// MediaID is filled in after the parent media is uploaded.
	MediaID string

	Attributes []*Attribute

	Upload UploadState
}

// NewMediaObject builds a media object with its geometric reference.
func NewMediaObject(backReference string, reference Geometry) *MediaObject {
	if backReference == "" {
		modelLogger.Warn("media object created without back_reference; duplicate detection will not cover it")
	}
	return &MediaObject{
		BackReference: backReference,
		Reference:     reference,
	}
}

// AddAttribute attaches an object-level attribute.
func (o *MediaObject) AddAttribute(attr *Attribute) {
	o.Attributes = append(o.Attributes, attr)
}

// ToBulkCreate converts the media object into its bulk-create wire item.
// subsetID carries the resolved object-category subset, empty when the object
// has no category.
func (o *MediaObject) ToBulkCreate(subsetID string) BulkMediaObjectCreate {
	item := BulkMediaObjectCreate{
		MediaID:                    o.MediaID,
		BackReference:              o.BackReference,
		BulkOperationAnnotatableID: o.Upload.BulkOperationAnnotatableID,
	}
	if o.Reference != nil {
		item.Reference = &geometryField{Geometry: o.Reference}
	}
	if subsetID != "" {
		item.SubsetIDs = []string{subsetID}
	}
	return item
}

// MediaSummary is the listing projection used for duplicate detection.
type MediaSummary struct {
	ID            string `json:"id"`
	BackReference string `json:"back_reference"`
}

// MediaObjectSummary is the listing projection used for duplicate detection.
type MediaObjectSummary struct {
	ID            string `json:"id"`
	MediaID       string `json:"media_id"`
	BackReference string `json:"back_reference"`
}
