// Package scprofile builds SCADA configuration (SC) profiles: CIM RDF/XML
// documents describing the remote units of an RTAC export and the
// measurement and control points they carry.
//
// A Builder accumulates devices and points and materializes the graph on
// demand. Link resolution happens when the graph is built, so the order of
// AddDevices, SetCentralUnit and AddPoints calls does not change the output.
// Builders are not safe for concurrent use; separate builders share nothing.
package scprofile
