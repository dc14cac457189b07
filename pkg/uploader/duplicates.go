package uploader

import (
	"github.com/quality-match/hari-client-sub000/internal/logging"
	"github.com/quality-match/hari-client-sub000/pkg/models"
)

// entityRef is one already-present server-side entity keyed for duplicate
// detection.
type entityRef struct {
	BackReference string
	ID            string
}

// backReferenceIndex builds a back_reference -> server id lookup. Collisions
// are resolved last-write-wins with a warning; empty back references are
// skipped entirely so they can never alias each other.
func backReferenceIndex(existing []entityRef, logger logging.Logger) map[string]string {
	index := make(map[string]string, len(existing))
	for _, entry := range existing {
		if entry.BackReference == "" {
			continue
		}
		if previous, seen := index[entry.BackReference]; seen && previous != entry.ID {
			logger.Warn("back_reference %q maps to multiple server ids (%s, %s); keeping the latter",
				entry.BackReference, previous, entry.ID)
		}
		index[entry.BackReference] = entry.ID
	}
	return index
}

// markMediaDuplicates flags queued medias whose back reference already exists
// server-side. Flagged medias keep the existing server id and are skipped by
// the upload tiers; the decision is purely advisory.
func markMediaDuplicates(medias []*models.Media, existing []models.MediaSummary, logger logging.Logger) {
	refs := make([]entityRef, 0, len(existing))
	for _, entry := range existing {
		refs = append(refs, entityRef{BackReference: entry.BackReference, ID: entry.ID})
	}
	index := backReferenceIndex(refs, logger)

	for _, media := range medias {
		serverID, found := index[media.BackReference]
		media.Upload.Uploaded = found
		media.Upload.ID = serverID
	}
}

// markMediaObjectDuplicates is markMediaDuplicates for media objects.
func markMediaObjectDuplicates(objects []*models.MediaObject, existing []models.MediaObjectSummary, logger logging.Logger) {
	refs := make([]entityRef, 0, len(existing))
	for _, entry := range existing {
		refs = append(refs, entityRef{BackReference: entry.BackReference, ID: entry.ID})
	}
	index := backReferenceIndex(refs, logger)

	for _, object := range objects {
		serverID, found := index[object.BackReference]
		object.Upload.Uploaded = found
		object.Upload.ID = serverID
	}
}
