package caravan

import (
	"context"
	"encoding/json"
)

// TransferMethod is the traveler-facing transit choice offered by the
// get_transit_time tool.
type TransferMethod string

const (
	DriveOrTaxi     TransferMethod = "drive_or_taxi"
	PublicTransport TransferMethod = "public_transport"
)

// TravelMode is a directions-API travel mode.
type TravelMode string

const (
	TravelModeDriving TravelMode = "driving"
	TravelModeTransit TravelMode = "transit"
)

// Modes maps a transfer method to its primary directions mode and the
// alternative looked up alongside it.
func (m TransferMethod) Modes() (primary, alternative TravelMode) {
	if m == DriveOrTaxi {
		return TravelModeDriving, TravelModeTransit
	}
	return TravelModeTransit, TravelModeDriving
}

// Method is the inverse of Modes for a single travel mode.
func (m TravelMode) Method() TransferMethod {
	if m == TravelModeDriving {
		return DriveOrTaxi
	}
	return PublicTransport
}

// LatLng is a geocoded coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// TransferRoute is one origin→destination pair from a get_transit_time call.
type TransferRoute struct {
	From string         `json:"from"`
	To   string         `json:"to"`
	By   TransferMethod `json:"by"`
}

// TransferPlan is the decoded argument shape of a get_transit_time call.
type TransferPlan struct {
	Routes []TransferRoute `json:"routes"`
}

// AlternativeDuration is the travel time by the mode the traveler did not
// ask for. Duration is nil when the lookup failed.
type AlternativeDuration struct {
	By       TransferMethod `json:"by"`
	Duration *string        `json:"duration"`
}

// RouteWithDuration is the answer for one transfer route, fed back to the
// transport agent as a tool result.
type RouteWithDuration struct {
	From        string              `json:"from"`
	To          string              `json:"to"`
	By          TransferMethod      `json:"by"`
	Duration    string              `json:"duration"`
	Alternative AlternativeDuration `json:"alternative"`
}

// MapsClient resolves place names and transit durations. Implementations
// wrap the Google Maps web services.
type MapsClient interface {
	// Geocode resolves a free-form place name to coordinates.
	Geocode(ctx context.Context, place string, language Language) (LatLng, error)
	// Duration returns the human-readable duration of the first leg of the
	// first route between two coordinates, departing at noon local time.
	Duration(ctx context.Context, from, to LatLng, mode TravelMode, language Language) (string, error)
}

// getTransitTimeTool is the tool attached to the transport agent's calls.
var getTransitTimeTool = ToolDefinition{
	Name:        "get_transit_time",
	Description: "Get transit time needed to navigate from one place to another.",
	Strict:      true,
	Parameters: json.RawMessage(`{
		"type": "object",
		"properties": {
			"routes": {
				"type": "array",
				"description": "A list of routes covered in the itinerary.",
				"items": {
					"type": "object",
					"properties": {
						"from": {
							"type": "string",
							"description": "The origin or start point of a route. Make sure that it's a valid and correct place name."
						},
						"to": {
							"type": "string",
							"description": "The destination, goal, or end point of a route. Make sure that it's a valid and correct place name."
						},
						"by": {
							"type": "string",
							"description": "The preferred type of transit to take.",
							"enum": ["drive_or_taxi", "public_transport"]
						}
					},
					"required": ["from", "to", "by"],
					"additionalProperties": false
				}
			}
		},
		"required": ["routes"],
		"additionalProperties": false
	}`),
}

// resolveTransferPlan executes a decoded get_transit_time call: geocode both
// ends of every route (memoizing by place name for the duration of the
// call), then look up the requested mode and its alternative. Geocoding
// errors abort the whole call; directions failures degrade to "No result"
// for the primary mode and a nil alternative.
func resolveTransferPlan(ctx context.Context, maps MapsClient, plan TransferPlan, language Language) ([]RouteWithDuration, error) {
	coords := make(map[string]LatLng)
	locate := func(place string) (LatLng, error) {
		if ll, ok := coords[place]; ok {
			return ll, nil
		}
		ll, err := maps.Geocode(ctx, place, language)
		if err != nil {
			return LatLng{}, err
		}
		coords[place] = ll
		return ll, nil
	}

	results := make([]RouteWithDuration, 0, len(plan.Routes))
	for _, route := range plan.Routes {
		from, err := locate(route.From)
		if err != nil {
			return nil, err
		}
		to, err := locate(route.To)
		if err != nil {
			return nil, err
		}

		primary, alternative := route.By.Modes()

		duration, err := maps.Duration(ctx, from, to, primary, language)
		if err != nil {
			duration = "No result"
		}

		alt := AlternativeDuration{By: alternative.Method()}
		if d, err := maps.Duration(ctx, from, to, alternative, language); err == nil {
			alt.Duration = &d
		}

		results = append(results, RouteWithDuration{
			From:        route.From,
			To:          route.To,
			By:          route.By,
			Duration:    duration,
			Alternative: alt,
		})
	}
	return results, nil
}
