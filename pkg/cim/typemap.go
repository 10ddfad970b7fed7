package cim

import "strings"

// Point types used in points lists and Measurement.measurementType.
const (
	PointTypeAI = "AI"
	PointTypeBI = "BI"
	PointTypeCT = "CT"
	PointTypeAO = "AO"
	PointTypeBO = "BO"
)

// MeasurementClass is the CIM class an RTAC data type maps to.
type MeasurementClass string

const (
	ClassAnalog        MeasurementClass = "Analog"
	ClassDiscrete      MeasurementClass = "Discrete"
	ClassAccumulator   MeasurementClass = "Accumulator"
	ClassAnalogControl MeasurementClass = "AnalogControl"
	ClassCommand       MeasurementClass = "Command"
)

// Tables are keyed by the upper-cased RTAC data type.
var (
	pointTypes = map[string]string{
		"MV":      PointTypeAI,
		"CMV":     PointTypeAI,
		"INT":     PointTypeAI,
		"INS":     PointTypeAI,
		"SPS":     PointTypeBI,
		"BOOL":    PointTypeBI,
		"DPS":     PointTypeBI,
		"BCR":     PointTypeCT,
		"APC":     PointTypeAO,
		"INC":     PointTypeAO,
		"OPERAPC": PointTypeAO,
		"SPC":     PointTypeBO,
		"DPC":     PointTypeBO,
		"OPERSPC": PointTypeBO,
	}

	classes = map[string]MeasurementClass{
		"MV":      ClassAnalog,
		"CMV":     ClassAnalog,
		"INT":     ClassAnalog,
		"INS":     ClassAnalog,
		"SPS":     ClassDiscrete,
		"BOOL":    ClassDiscrete,
		"DPS":     ClassDiscrete,
		"BCR":     ClassAccumulator,
		"APC":     ClassAnalogControl,
		"INC":     ClassAnalogControl,
		"OPERAPC": ClassAnalogControl,
		"SPC":     ClassCommand,
		"DPC":     ClassCommand,
		"OPERSPC": ClassCommand,
	}

	controlTypes = map[string]bool{
		"OPERAPC": true,
		"OPERSPC": true,
		"APC":     true,
		"INC":     true,
		"SPC":     true,
		"DPC":     true,
	}
)

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// PointType returns the generic point type for an RTAC data type.
// Unknown codes are returned unchanged.
func PointType(code string) string {
	if pt, ok := pointTypes[normalize(code)]; ok {
		return pt
	}
	return code
}

// MeasurementType returns the value written to Measurement.measurementType.
// Unknown codes fall back to BI, matching the Discrete class default.
func MeasurementType(code string) string {
	if pt, ok := pointTypes[normalize(code)]; ok {
		return pt
	}
	return PointTypeBI
}

// ClassOf returns the CIM measurement class for an RTAC data type,
// defaulting to Discrete.
func ClassOf(code string) MeasurementClass {
	if c, ok := classes[normalize(code)]; ok {
		return c
	}
	return ClassDiscrete
}

// IsControl reports whether the data type is an output (control) point.
func IsControl(code string) bool {
	return controlTypes[normalize(code)]
}
