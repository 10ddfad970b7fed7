package rtac

// ProtocolDNPServer is the connection protocol whose tag tables are exported.
const ProtocolDNPServer = "DNPServer"

func parseDevice(root *Node, filename string) ([]DeviceRecord, []PointRecord) {
	device := document(root).Find("Device")
	if device == nil {
		return nil, nil
	}

	name := filename
	if n := device.Find("Name"); n != nil {
		name = n.Text()
	}

	conn := device.Find("Connection")
	if conn == nil {
		return nil, nil
	}
	protocol := conn.Child("Protocol")
	if protocol == nil || protocol.Text() != ProtocolDNPServer {
		return nil, nil
	}

	mapName := connectionMapName(conn)

	var devices []DeviceRecord
	if mapName != "" {
		devices = append(devices, DeviceRecord{
			Name:       name,
			MapName:    mapName,
			SourceFile: filename,
			Protocol:   ProtocolDNPServer,
		})
	}

	var points []PointRecord
	for _, table := range device.FindAll("TagList") {
		points = append(points, parseTagList(table, filename, mapName)...)
	}
	return devices, points
}

// connectionMapName finds the settings row of the form
// {Column: "Setting", Value: "Map Name"}, {Value: <map>} and returns <map>.
func connectionMapName(conn *Node) string {
	for _, row := range conn.FindAll("Row") {
		settings := row.ChildrenNamed("Setting")
		if len(settings) < 2 {
			continue
		}
		col := settings[0].Child("Column")
		val := settings[0].Child("Value")
		if col == nil || val == nil || col.Text() != "Setting" || val.Text() != "Map Name" {
			continue
		}
		if v := settings[1].Child("Value"); v != nil {
			return v.Text()
		}
	}
	return ""
}
