// Package cim holds the CIM vocabulary used by SCADA configuration profiles:
// namespace URIs, the RTAC data-type tables, deterministic mRID generation
// and an RDF/XML document encoder.
//
// Nothing in this package keeps global mutable state. Namespace prefixes are
// passed to Encode explicitly, so concurrent encodes never share a prefix
// table.
package cim
