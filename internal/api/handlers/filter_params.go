package handlers

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/zatekoja/doctordirectory/backend/internal/domain/entities"
	apperrors "github.com/zatekoja/doctordirectory/backend/pkg/errors"
)

// parseFilterState reads accepts, bounds, search and type from the query string.
// bounds is "swLat,swLng,neLat,neLng"; type may repeat or be comma separated.
func parseFilterState(query url.Values) (entities.FilterState, error) {
	state := entities.FilterState{
		Accepts: entities.AcceptsFilterAll,
		Search:  query.Get("search"),
	}

	switch accepts := entities.AcceptsFilter(strings.ToLower(strings.TrimSpace(query.Get("accepts")))); accepts {
	case "", entities.AcceptsFilterAll:
	case entities.AcceptsFilterYes, entities.AcceptsFilterNo:
		state.Accepts = accepts
	default:
		return state, apperrors.NewFieldValidationError("invalid filter", map[string]string{
			"accepts": "accepts must be one of [y n all]",
		})
	}

	if raw := strings.TrimSpace(query.Get("bounds")); raw != "" {
		bounds, err := parseBounds(raw)
		if err != nil {
			return state, apperrors.NewFieldValidationError("invalid filter", map[string]string{
				"bounds": err.Error(),
			})
		}
		state.Bounds = bounds
	}

	for _, value := range query["type"] {
		for _, code := range strings.Split(value, ",") {
			code = strings.ToLower(strings.TrimSpace(code))
			if code == "" {
				continue
			}
			doctorType := entities.DoctorType(code)
			if !doctorType.Valid() {
				return state, apperrors.NewFieldValidationError("invalid filter", map[string]string{
					"type": fmt.Sprintf("unknown doctor type %q", code),
				})
			}
			state.Types = append(state.Types, doctorType)
		}
	}

	return state, nil
}

func parseBounds(raw string) (*entities.Bounds, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("bounds must be swLat,swLng,neLat,neLng")
	}

	values := make([]float64, 4)
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("bounds must contain four numbers")
		}
		values[i] = v
	}

	bounds := &entities.Bounds{
		SouthWest: entities.GeoPoint{Lat: values[0], Lng: values[1]},
		NorthEast: entities.GeoPoint{Lat: values[2], Lng: values[3]},
	}
	if !bounds.SouthWest.Valid() || !bounds.NorthEast.Valid() {
		return nil, fmt.Errorf("bounds are out of range")
	}
	if bounds.SouthWest.Lat > bounds.NorthEast.Lat || bounds.SouthWest.Lng > bounds.NorthEast.Lng {
		return nil, fmt.Errorf("south-west corner must not exceed north-east corner")
	}
	return bounds, nil
}
