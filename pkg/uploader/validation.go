package uploader

import (
	"github.com/quality-match/hari-client-sub000/pkg/models"
)

type attributeGroupKey struct {
	name            string
	annotatableType models.AnnotatableType
}

// validateAttributes checks the full flattened attribute set for id and
// value-type consistency per (name, annotatable type) group. It runs purely
// in memory, before any network call; a violation aborts the whole run.
func validateAttributes(attrs []*models.Attribute) error {
	groups := make(map[attributeGroupKey][]*models.Attribute)
	var order []attributeGroupKey
	for _, attr := range attrs {
		key := attributeGroupKey{name: attr.Name, annotatableType: attr.AnnotatableType}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], attr)
	}

	for _, key := range order {
		if err := validateGroup(key, groups[key]); err != nil {
			return err
		}
	}
	return nil
}

func validateGroup(key attributeGroupKey, group []*models.Attribute) error {
	// Null values are wildcards for every check below.
	kinds := distinctKinds(group)
	if len(kinds) > 1 {
		return &InconsistentValueTypeError{
			Name:            key.name,
			AnnotatableType: key.annotatableType,
			Kinds:           kinds,
		}
	}

	if len(kinds) == 1 && kinds[0] == models.KindList {
		if err := validateListElements(key, group); err != nil {
			return err
		}
	}

	ids := distinctIDs(group)
	if len(ids) > 1 {
		return &AttributeIDNotReusedError{
			Name:            key.name,
			AnnotatableType: key.annotatableType,
			IDs:             ids,
		}
	}
	return nil
}

func validateListElements(key attributeGroupKey, group []*models.Attribute) error {
	// First pass: each list must be homogeneous on its own.
	var groupKinds []models.Kind
	listedAttrs := 0
	for _, attr := range group {
		elems, ok := attr.Value.AsList()
		if !ok {
			continue
		}
		local := distinctElementKinds(elems)
		if len(local) > 1 {
			return &InconsistentListElementTypeError{
				Name:            key.name,
				AnnotatableType: key.annotatableType,
				Kinds:           local,
			}
		}
		if len(local) == 1 {
			listedAttrs++
			groupKinds = appendKind(groupKinds, local[0])
		}
	}

	// Second pass: element kinds must agree across all instances.
	if len(groupKinds) > 1 && listedAttrs > 1 {
		return &InconsistentListElementTypeMultiError{
			Name:            key.name,
			AnnotatableType: key.annotatableType,
			Kinds:           groupKinds,
		}
	}
	return nil
}

func distinctKinds(group []*models.Attribute) []models.Kind {
	var kinds []models.Kind
	for _, attr := range group {
		if attr.Value.IsNull() {
			continue
		}
		kinds = appendKind(kinds, attr.Value.Kind())
	}
	return kinds
}

func distinctElementKinds(elems []models.Value) []models.Kind {
	var kinds []models.Kind
	for _, elem := range elems {
		if elem.IsNull() {
			continue
		}
		kinds = appendKind(kinds, elem.Kind())
	}
	return kinds
}

func appendKind(kinds []models.Kind, kind models.Kind) []models.Kind {
	for _, existing := range kinds {
		if existing == kind {
			return kinds
		}
	}
	return append(kinds, kind)
}

func distinctIDs(group []*models.Attribute) []string {
	var ids []string
	for _, attr := range group {
		if attr.ID == "" {
			continue
		}
		found := false
		for _, existing := range ids {
			if existing == attr.ID {
				found = true
				break
			}
		}
		if !found {
			ids = append(ids, attr.ID)
		}
	}
	return ids
}
