package cim

import "time"

// TimeLayout is the timestamp format used in model headers.
const TimeLayout = "2006-01-02T15:04:05Z"

// Property is one child element of a resource: a literal value, or a
// reference when Resource is set.
type Property struct {
	Name     QName
	Value    string
	Resource string
}

// IsReference reports whether the property points at another resource.
func (p Property) IsReference() bool {
	return p.Resource != ""
}

// Resource is a typed RDF node. Exactly one of ID and About is normally set.
type Resource struct {
	Class      QName
	ID         string
	About      string
	Properties []Property
}

// NewResource returns a resource of class with rdf:ID set to id.
func NewResource(class QName, id string) *Resource {
	return &Resource{Class: class, ID: id}
}

// Literal appends a text-valued property.
func (r *Resource) Literal(name QName, value string) *Resource {
	r.Properties = append(r.Properties, Property{Name: name, Value: value})
	return r
}

// LiteralIfSet appends a text-valued property when value is not empty.
func (r *Resource) LiteralIfSet(name QName, value string) *Resource {
	if value == "" {
		return r
	}
	return r.Literal(name, value)
}

// Ref appends an rdf:resource reference.
func (r *Resource) Ref(name QName, target string) *Resource {
	r.Properties = append(r.Properties, Property{Name: name, Resource: target})
	return r
}

// Get returns the first literal value of name.
func (r *Resource) Get(name QName) (string, bool) {
	for _, p := range r.Properties {
		if p.Name == name && !p.IsReference() {
			return p.Value, true
		}
	}
	return "", false
}

// RefTo returns the first reference target of name.
func (r *Resource) RefTo(name QName) (string, bool) {
	for _, p := range r.Properties {
		if p.Name == name && p.IsReference() {
			return p.Resource, true
		}
	}
	return "", false
}

// LocalRef renders an in-document reference to an rdf:ID.
func LocalRef(id string) string {
	return "#" + id
}

// FullModel is the md:FullModel header of a profile document.
type FullModel struct {
	URN                  string
	ScenarioTime         time.Time
	Created              time.Time
	Description          string
	ModelingAuthoritySet string
	Profile              string
	DependentOn          []string
}

// Resource renders the header as an rdf:about resource.
func (m FullModel) Resource() Resource {
	r := Resource{Class: MD("FullModel"), About: m.URN}
	r.Literal(MD("Model.scenarioTime"), FormatTime(m.ScenarioTime))
	r.Literal(MD("Model.created"), FormatTime(m.Created))
	r.Literal(MD("Model.description"), m.Description)
	r.Literal(MD("Model.modelingAuthoritySet"), m.ModelingAuthoritySet)
	r.Literal(MD("Model.profile"), m.Profile)
	for _, dep := range m.DependentOn {
		if dep != "" {
			r.Ref(MD("Model.DependentOn"), dep)
		}
	}
	return r
}

// FormatTime renders t in UTC with second precision.
func FormatTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(TimeLayout)
}

// Document is a complete RDF/XML profile: an optional header followed by
// resources in output order.
type Document struct {
	Header    *FullModel
	Resources []Resource
}
