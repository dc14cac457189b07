package models

// SubsetType identifies what kind of entities a subset groups.
type SubsetType string

const (
	SubsetTypeMedia       SubsetType = "media"
	SubsetTypeMediaObject SubsetType = "media_object"
)

// Subset is a named, queryable grouping of entities in a dataset. Object
// categories are represented as media-object subsets.
type Subset struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	SubsetType SubsetType `json:"subset_type"`
}
