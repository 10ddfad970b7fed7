package rtac

// DefaultFilename is used for provenance when the caller has no file name.
const DefaultFilename = "upload.xml"

// Parse decodes an RTAC export and returns its devices and points.
//
// filename is recorded on every record for provenance and never influences
// parsing. The only error is a *ParseError (matching ErrMalformedInput) for
// input that is not well-formed XML.
func Parse(data []byte, filename string) ([]DeviceRecord, []PointRecord, error) {
	if filename == "" {
		filename = DefaultFilename
	}
	root, err := Decode(data)
	if err != nil {
		return nil, nil, &ParseError{File: filename, Cause: err}
	}
	devices, points := ParseTree(root, filename)
	return devices, points, nil
}

// ParseTree extracts records from an already decoded document.
func ParseTree(root *Node, filename string) ([]DeviceRecord, []PointRecord) {
	switch Classify(root) {
	case ShapeDevice:
		return parseDevice(root, filename)
	case ShapeTagList:
		return nil, parseTagLists(root, filename)
	default:
		return nil, parseGeneric(root, filename)
	}
}

// ExtractPoints parses data and returns only the point records.
func ExtractPoints(data []byte, filename string) ([]PointRecord, error) {
	_, points, err := Parse(data, filename)
	return points, err
}
