package garmentag

// Category is the body region a garment photo is classified into.
type Category int

const (
	UpperBody Category = iota // shirts, jackets, tops
	LowerBody                 // trousers, skirts, shoes
)

// Tag suffixes appended to the file's base name.
const (
	UpperSuffix = "_U"
	LowerSuffix = "_L"
)

func (c Category) String() string {
	switch c {
	case UpperBody:
		return "upper_body"
	case LowerBody:
		return "lower_body"
	default:
		return "unknown"
	}
}

// Suffix returns the file name tag for c.
func (c Category) Suffix() string {
	if c == UpperBody {
		return UpperSuffix
	}
	return LowerSuffix
}
