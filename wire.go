package garmentag

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// poseResponse is the JSON document pose workers and services reply with.
//
//	{"landmarks":[{"visibility":0.98,"presence":0.99,"x":0.5,"y":0.2,"z":-0.1}, ...]}
//
// An empty or missing landmarks array means no pose was found.
type poseResponse struct {
	Landmarks []wireLandmark `json:"landmarks"`
}

type wireLandmark struct {
	Visibility *float64 `json:"visibility"`
	Presence   float64  `json:"presence"`
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	Z          float64  `json:"z"`
}

// decodePoseResponse reads one poseResponse from r.
func decodePoseResponse(r io.Reader) (LandmarkSet, error) {
	var resp poseResponse
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decoding pose response: %w", err)
	}
	if len(resp.Landmarks) == 0 {
		return nil, nil
	}

	set := make(LandmarkSet, len(resp.Landmarks))
	for i, wl := range resp.Landmarks {
		vis := UnknownVisibility()
		if wl.Visibility != nil {
			vis = *wl.Visibility
		}
		set[i] = Landmark{Visibility: vis, Presence: wl.Presence, X: wl.X, Y: wl.Y, Z: wl.Z}
	}
	return set, nil
}
