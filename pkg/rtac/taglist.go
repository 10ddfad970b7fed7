package rtac

import "strings"

// Tag-table column names.
const (
	columnEnable      = "Enable"
	columnTagName     = "Tag Name"
	columnPointNumber = "Point Number"
	columnTagType     = "Tag Type"
	columnComment     = "Comment"
)

// mappedColumns are the normalized column keys that never land in Extra.
var mappedColumns = map[string]bool{
	"tag_name":     true,
	"point_number": true,
	"tag_type":     true,
	"comment":      true,
	"enable":       true,
}

func parseTagLists(root *Node, filename string) []PointRecord {
	var points []PointRecord
	for _, table := range document(root).FindAll("TagList") {
		points = append(points, parseTagList(table, filename, "")...)
	}
	return points
}

// parseTagList reads every enabled row of a tag table.
func parseTagList(table *Node, filename, mapName string) []PointRecord {
	var points []PointRecord
	for _, page := range table.FindAll("SettingPage") {
		for _, row := range page.ChildrenNamed("Row") {
			settings := rowSettings(row)
			if !strings.EqualFold(strings.TrimSpace(settings[columnEnable]), "true") {
				continue
			}
			if !hasPointData(settings, mapName) {
				continue
			}
			points = append(points, pointFromRow(settings, filename, mapName))
		}
	}
	return points
}

// rowSettings collects the Column/Value pairs of a row. A repeated column
// keeps its last value.
func rowSettings(row *Node) map[string]string {
	settings := make(map[string]string)
	for _, s := range row.ChildrenNamed("Setting") {
		col := s.Child("Column")
		val := s.Child("Value")
		if col == nil || val == nil {
			continue
		}
		settings[col.Text()] = val.Text()
	}
	return settings
}

// hasPointData reports whether an enabled row carries anything besides its
// Enable flag. A mapped column counts even when empty, except Comment.
func hasPointData(settings map[string]string, mapName string) bool {
	if mapName != "" {
		return true
	}
	for col, val := range settings {
		switch col {
		case columnTagName, columnPointNumber, columnTagType:
			return true
		case columnComment:
			if val != "" {
				return true
			}
			continue
		}
		if !mappedColumns[normalizeColumn(col)] {
			return true
		}
	}
	return false
}

func normalizeColumn(col string) string {
	return strings.ReplaceAll(strings.ToLower(col), " ", "_")
}

func pointFromRow(settings map[string]string, filename, mapName string) PointRecord {
	p := PointRecord{
		Name:       settings[columnTagName],
		Address:    settings[columnPointNumber],
		DataType:   settings[columnTagType],
		MapName:    mapName,
		SourceFile: filename,
	}
	if c := settings[columnComment]; c != "" {
		p.Description = c
	}
	for col, val := range settings {
		key := normalizeColumn(col)
		if mappedColumns[key] {
			continue
		}
		p.setExtra(key, val)
	}
	return p
}
