package rtac

import "strings"

// pointTags are the element names treated as points by generic extraction.
// Matching is case-sensitive.
var pointTags = map[string]bool{
	"point":       true,
	"Point":       true,
	"Tag":         true,
	"tag":         true,
	"DataPoint":   true,
	"datapoint":   true,
	"DevicePoint": true,
	"devicepoint": true,
}

// IsPointTag reports whether generic extraction treats an element with this
// local name as a point.
func IsPointTag(name string) bool {
	return pointTags[name]
}

func parseGeneric(root *Node, filename string) []PointRecord {
	var points []PointRecord
	root.Walk(func(n *Node) {
		if !pointTags[n.Name()] {
			return
		}
		p := extractPoint(n)
		p.SourceFile = filename
		points = append(points, p)
	})
	return points
}

// extractPoint harvests the known child elements of a point element.
func extractPoint(elem *Node) PointRecord {
	var p PointRecord
	hasName := false
	for _, child := range elem.Children {
		text := strings.TrimSpace(child.Text())
		switch strings.ToLower(child.Name()) {
		case "name", "id", "tag", "tagname":
			p.Name = text
			hasName = true
		case "address", "addr", "ioaddress":
			p.Address = text
		case "type", "pointtype", "datatype":
			p.DataType = text
		case "units", "unit", "uom":
			p.Units = text
		case "description", "desc":
			p.Description = text
		default:
			p.setExtra(child.Name(), text)
		}
	}
	if !hasName {
		p.Name = elem.Attr("name")
		if p.Name == "" {
			p.Name = elem.Attr("id")
		}
	}
	return p
}
