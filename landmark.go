package garmentag

import "math"

// Landmark is one pose keypoint reported by the oracle. Only Visibility takes
// part in classification; the position fields are carried through untouched.
type Landmark struct {
	Visibility float64 // [0,1], NaN when the detector does not report it
	Presence   float64
	X, Y, Z    float64
}

// LandmarkSet is the full keypoint list for a single detected pose.
// A nil LandmarkSet means no pose was found.
type LandmarkSet []Landmark

// LandmarkCount is the number of keypoints in the body landmark scheme.
const LandmarkCount = 33

// Body landmark indices.
const (
	Nose = iota
	LeftEyeInner
	LeftEye
	LeftEyeOuter
	RightEyeInner
	RightEye
	RightEyeOuter
	LeftEar
	RightEar
	MouthLeft
	MouthRight
	LeftShoulder
	RightShoulder
	LeftElbow
	RightElbow
	LeftWrist
	RightWrist
	LeftPinky
	RightPinky
	LeftIndex
	RightIndex
	LeftThumb
	RightThumb
	LeftHip
	RightHip
	LeftKnee
	RightKnee
	LeftAnkle
	RightAnkle
	LeftHeel
	RightHeel
	LeftFootIndex
	RightFootIndex
)

// Classification policy. Changing any of these changes which label a photo
// gets, so bump PolicyVersion alongside.
const (
	PolicyVersion       = 1
	VisibilityThreshold = 0.5
)

// UpperBodyIndices are the shoulders, elbows and wrists.
var UpperBodyIndices = [...]int{
	LeftShoulder, RightShoulder,
	LeftElbow, RightElbow,
	LeftWrist, RightWrist,
}

// LowerBodyIndices are the hips, knees, ankles, heels and feet.
var LowerBodyIndices = [...]int{
	LeftHip, RightHip,
	LeftKnee, RightKnee,
	LeftAnkle, RightAnkle,
	LeftHeel, RightHeel,
	LeftFootIndex, RightFootIndex,
}

// UnknownVisibility is the Visibility value for a landmark without a score.
func UnknownVisibility() float64 { return math.NaN() }

// Visible reports whether the landmark clears VisibilityThreshold.
// Unknown (NaN) visibility is never visible.
func (l Landmark) Visible() bool {
	return l.Visibility > VisibilityThreshold
}

// LandmarkCounts is the number of visible upper and lower body landmarks.
type LandmarkCounts struct {
	Upper int
	Lower int
}

// CountVisible counts visible landmarks over the upper and lower index sets.
// Indices beyond the end of set count as not visible.
func CountVisible(set LandmarkSet) LandmarkCounts {
	var c LandmarkCounts
	for _, i := range UpperBodyIndices {
		if i < len(set) && set[i].Visible() {
			c.Upper++
		}
	}
	for _, i := range LowerBodyIndices {
		if i < len(set) && set[i].Visible() {
			c.Lower++
		}
	}
	return c
}
