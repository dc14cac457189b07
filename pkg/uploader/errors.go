package uploader

import (
	"fmt"
	"strings"

	"github.com/quality-match/hari-client-sub000/pkg/models"
)

// InconsistentValueTypeError reports attributes sharing a name and owner type
// but disagreeing on value classification.
type InconsistentValueTypeError struct {
	Name            string
	AnnotatableType models.AnnotatableType
	Kinds           []models.Kind
}

func (e *InconsistentValueTypeError) Error() string {
	return fmt.Sprintf("attribute %q on %s has inconsistent value types: %s",
		e.Name, e.AnnotatableType, joinKinds(e.Kinds))
}

// InconsistentListElementTypeError reports mixed element classifications
// within one list-valued attribute.
type InconsistentListElementTypeError struct {
	Name            string
	AnnotatableType models.AnnotatableType
	Kinds           []models.Kind
}

func (e *InconsistentListElementTypeError) Error() string {
	return fmt.Sprintf("attribute %q on %s has a list value with mixed element types: %s",
		e.Name, e.AnnotatableType, joinKinds(e.Kinds))
}

// InconsistentListElementTypeMultiError reports list element classifications
// that disagree across several attribute instances of the same group.
type InconsistentListElementTypeMultiError struct {
	Name            string
	AnnotatableType models.AnnotatableType
	Kinds           []models.Kind
}

func (e *InconsistentListElementTypeMultiError) Error() string {
	return fmt.Sprintf("attribute %q on %s has list values whose element types disagree across instances: %s",
		e.Name, e.AnnotatableType, joinKinds(e.Kinds))
}

// AttributeIDNotReusedError reports attributes sharing a name and owner type
// but carrying different ids.
type AttributeIDNotReusedError struct {
	Name            string
	AnnotatableType models.AnnotatableType
	IDs             []string
}

func (e *AttributeIDNotReusedError) Error() string {
	return fmt.Sprintf("attribute %q on %s must reuse one id, found: %s",
		e.Name, e.AnnotatableType, strings.Join(e.IDs, ", "))
}

// UnresolvedCategoryError reports an object-category label that could not be
// resolved to a subset.
type UnresolvedCategoryError struct {
	Label string
}

func (e *UnresolvedCategoryError) Error() string {
	return fmt.Sprintf("object category %q could not be resolved to a subset", e.Label)
}

// DuplicateBackReferenceError reports a back reference registered twice with
// the same uploader.
type DuplicateBackReferenceError struct {
	BackReference string
}

func (e *DuplicateBackReferenceError) Error() string {
	return fmt.Sprintf("media with back_reference %q is already registered", e.BackReference)
}

func joinKinds(kinds []models.Kind) string {
	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		names = append(names, k.String())
	}
	return strings.Join(names, ", ")
}
