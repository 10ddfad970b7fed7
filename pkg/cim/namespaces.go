package cim

import (
	"fmt"
	"sort"
)

// Namespace URIs.
const (
	NamespaceRDF = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	NamespaceCIM = "http://iec.ch/TC57/CIM100#"
	NamespaceMD  = "http://iec.ch/TC57/61970-552/ModelDescription/1#"
	NamespaceVER = "http://verance.ai/CIM/SecondarySystem/1#"
)

// ProfileSCADAConfiguration identifies the SCADA configuration (SC) profile.
const ProfileSCADAConfiguration = "http://verance.ai/CIM/SCADAConfiguration/1"

// QName is a namespace-qualified element or attribute name.
type QName struct {
	Space string
	Local string
}

// String returns the name in {space}local form.
func (q QName) String() string {
	return "{" + q.Space + "}" + q.Local
}

// RDF returns a name in the RDF syntax namespace.
func RDF(local string) QName { return QName{Space: NamespaceRDF, Local: local} }

// CIM returns a name in the CIM namespace.
func CIM(local string) QName { return QName{Space: NamespaceCIM, Local: local} }

// MD returns a name in the model description namespace.
func MD(local string) QName { return QName{Space: NamespaceMD, Local: local} }

// VER returns a name in the secondary-system extension namespace.
func VER(local string) QName { return QName{Space: NamespaceVER, Local: local} }

// Prefixes maps namespace URIs to the short prefixes written in a document.
type Prefixes map[string]string

// DefaultPrefixes returns a fresh prefix table for the four profile namespaces.
func DefaultPrefixes() Prefixes {
	return Prefixes{
		NamespaceRDF: "rdf",
		NamespaceCIM: "cim",
		NamespaceMD:  "md",
		NamespaceVER: "ver",
	}
}

// Qualify renders q as prefix:local.
func (p Prefixes) Qualify(q QName) (string, error) {
	prefix, ok := p[q.Space]
	if !ok || prefix == "" {
		return "", fmt.Errorf("no prefix registered for namespace %q", q.Space)
	}
	return prefix + ":" + q.Local, nil
}

// declarations returns xmlns attribute pairs sorted by prefix.
func (p Prefixes) declarations() [][2]string {
	decls := make([][2]string, 0, len(p))
	for ns, prefix := range p {
		decls = append(decls, [2]string{prefix, ns})
	}
	sort.Slice(decls, func(i, j int) bool { return decls[i][0] < decls[j][0] })
	return decls
}
