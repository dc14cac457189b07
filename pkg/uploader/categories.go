package uploader

import (
	"context"
	"sort"

	"github.com/quality-match/hari-client-sub000/pkg/models"
)

// resolveObjectCategories ensures a media-object subset exists for every
// distinct object-category label referenced by the queued media objects or
// declared by the caller, and returns the label -> subset id mapping.
func (u *Uploader) resolveObjectCategories(ctx context.Context) (map[string]string, error) {
	labels := map[string]bool{}
	for _, media := range u.medias {
		for _, object := range media.MediaObjects {
			if object.ObjectCategory != "" {
				labels[object.ObjectCategory] = true
			}
		}
	}
	for _, label := range u.extraCategories {
		if label != "" {
			labels[label] = true
		}
	}
	if len(labels) == 0 {
		return nil, nil
	}

	subsets, err := u.api.GetSubsets(ctx, u.datasetID)
	if err != nil {
		return nil, err
	}
	known := make(map[string]string, len(subsets))
	for _, subset := range subsets {
		if subset.SubsetType == models.SubsetTypeMediaObject {
			known[subset.Name] = subset.ID
		}
	}

	// Stable order keeps subset creation deterministic across runs.
	sorted := make([]string, 0, len(labels))
	for label := range labels {
		sorted = append(sorted, label)
	}
	sort.Strings(sorted)

	resolved := make(map[string]string, len(sorted))
	for _, label := range sorted {
		if subsetID, exists := known[label]; exists {
			u.logger.Debug("Object category %q reuses subset %s", label, subsetID)
			resolved[label] = subsetID
			continue
		}
		subsetID, err := u.api.CreateSubset(ctx, u.datasetID, models.SubsetTypeMediaObject, label)
		if err != nil {
			return nil, err
		}
		if subsetID == "" {
			return nil, &UnresolvedCategoryError{Label: label}
		}
		u.logger.Info("Created subset %s for object category %q", subsetID, label)
		resolved[label] = subsetID
	}
	return resolved, nil
}
