package models

import (
	"fmt"

	jsonx "github.com/quality-match/hari-client-sub000/internal/shared/json"
)

// GeometryType names the geometry kinds accepted as media-object references.
type GeometryType string

const (
	GeometryTypeBBox2D     GeometryType = "bb2d_center_point"
	GeometryTypePoint2D    GeometryType = "point2d_xy"
	GeometryTypePolyline2D GeometryType = "polyline2d_flat_coordinates"
	GeometryTypePoint3D    GeometryType = "point3d_xyz"
	GeometryTypeCuboid     GeometryType = "cuboid_center_point"
)

// Geometry is the closed union of media-object reference shapes.
type Geometry interface {
	GeometryType() GeometryType
}

// BBox2DCenterPoint is an axis-aligned 2D bounding box given by its center.
type BBox2DCenterPoint struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (BBox2DCenterPoint) GeometryType() GeometryType { return GeometryTypeBBox2D }

// Point2DXY is a single 2D point.
type Point2DXY struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (Point2DXY) GeometryType() GeometryType { return GeometryTypePoint2D }

// PolyLine2DFlatCoordinates is a polyline given as [x0,y0,x1,y1,...].
type PolyLine2DFlatCoordinates struct {
	Coordinates []float64 `json:"coordinates"`
	ClosedPath  bool      `json:"closed,omitempty"`
}

func (PolyLine2DFlatCoordinates) GeometryType() GeometryType { return GeometryTypePolyline2D }

// Point3DXYZ is a single 3D point.
type Point3DXYZ struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (Point3DXYZ) GeometryType() GeometryType { return GeometryTypePoint3D }

// CuboidCenterPoint is a 3D cuboid given by center position, dimensions and heading.
type CuboidCenterPoint struct {
	Position   [3]float64 `json:"position"`
	Dimensions [3]float64 `json:"dimensions"`
	Heading    [4]float64 `json:"heading"`
}

func (CuboidCenterPoint) GeometryType() GeometryType { return GeometryTypeCuboid }

// MarshalGeometry encodes a geometry with its discriminator field.
func MarshalGeometry(g Geometry) ([]byte, error) {
	if g == nil {
		return []byte("null"), nil
	}
	payload, err := jsonx.Marshal(g)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := jsonx.Unmarshal(payload, &fields); err != nil {
		return nil, err
	}
	fields["type"] = string(g.GeometryType())
	return jsonx.Marshal(fields)
}

// DecodeGeometry decodes a geometry payload by its discriminator field.
func DecodeGeometry(data []byte) (Geometry, error) {
	var probe struct {
		Type GeometryType `json:"type"`
	}
	if err := jsonx.Unmarshal(data, &probe); err != nil {
		return nil, err
	}
	switch probe.Type {
	case GeometryTypeBBox2D:
		var g BBox2DCenterPoint
		return g, jsonx.Unmarshal(data, &g)
	case GeometryTypePoint2D:
		var g Point2DXY
		return g, jsonx.Unmarshal(data, &g)
	case GeometryTypePolyline2D:
		var g PolyLine2DFlatCoordinates
		return g, jsonx.Unmarshal(data, &g)
	case GeometryTypePoint3D:
		var g Point3DXYZ
		return g, jsonx.Unmarshal(data, &g)
	case GeometryTypeCuboid:
		var g CuboidCenterPoint
		return g, jsonx.Unmarshal(data, &g)
	default:
		return nil, fmt.Errorf("unknown geometry type %q", probe.Type)
	}
}

// geometryField wraps a Geometry so bulk payloads serialize the discriminator.
type geometryField struct {
	Geometry
}

func (f geometryField) MarshalJSON() ([]byte, error) {
	return MarshalGeometry(f.Geometry)
}
