package rtac

// Shape is the input dialect recognized in an export.
type Shape uint8

const (
	// ShapeGeneric is the fallback: point-tagged elements anywhere.
	ShapeGeneric Shape = iota
	// ShapeDevice is a Device tree with a DNP server connection.
	ShapeDevice
	// ShapeTagList is one or more bare TagList tables.
	ShapeTagList
)

// String returns the shape name.
func (s Shape) String() string {
	switch s {
	case ShapeGeneric:
		return "generic"
	case ShapeDevice:
		return "device"
	case ShapeTagList:
		return "taglist"
	default:
		return "unknown"
	}
}

// Classify decides which extractor handles the document rooted at root.
// The first match wins: any Device element, then any TagList element,
// otherwise generic extraction.
func Classify(root *Node) Shape {
	doc := document(root)
	if doc.Find("Device") != nil {
		return ShapeDevice
	}
	if doc.Find("TagList") != nil {
		return ShapeTagList
	}
	return ShapeGeneric
}
