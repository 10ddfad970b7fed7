// Package rtac parses RTAC configuration exports into device and point records.
//
// Engineering tools export RTAC projects in more than one XML dialect. Parse
// inspects the decoded document once, picks a single Shape and runs the
// matching extractor:
//
//   - ShapeDevice: a Device tree whose DNP server connection names a map and
//     owns one or more tag tables.
//   - ShapeTagList: bare TagList tables with no device context.
//   - ShapeGeneric: any document with point-like elements (Point, Tag,
//     DataPoint, ...).
//
// Only well-formedness is fatal. Anything else the parser does not recognize
// degrades to fewer (or zero) records.
package rtac
