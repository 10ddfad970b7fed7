package cim

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
)

// Encode writes doc as pretty-printed RDF/XML, preceded by an XML declaration.
// Element and attribute names are written with the short prefixes in
// prefixes; every namespace used by doc must have an entry.
func Encode(w io.Writer, doc Document, prefixes Prefixes) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")

	rootName, err := prefixes.Qualify(RDF("RDF"))
	if err != nil {
		return err
	}
	root := xml.StartElement{Name: xml.Name{Local: rootName}}
	for _, decl := range prefixes.declarations() {
		root.Attr = append(root.Attr, xml.Attr{
			Name:  xml.Name{Local: "xmlns:" + decl[0]},
			Value: decl[1],
		})
	}
	if err := enc.EncodeToken(root); err != nil {
		return err
	}

	if doc.Header != nil {
		if err := encodeResource(enc, doc.Header.Resource(), prefixes); err != nil {
			return fmt.Errorf("encode header: %w", err)
		}
	}
	for i := range doc.Resources {
		if err := encodeResource(enc, doc.Resources[i], prefixes); err != nil {
			return fmt.Errorf("encode %s %s: %w", doc.Resources[i].Class.Local, doc.Resources[i].ID, err)
		}
	}

	if err := enc.EncodeToken(root.End()); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}

// Marshal returns the RDF/XML encoding of doc.
func Marshal(doc Document, prefixes Prefixes) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, doc, prefixes); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeResource(enc *xml.Encoder, r Resource, prefixes Prefixes) error {
	class, err := prefixes.Qualify(r.Class)
	if err != nil {
		return err
	}
	start := xml.StartElement{Name: xml.Name{Local: class}}
	if r.ID != "" {
		attr, err := rdfAttr(prefixes, "ID", r.ID)
		if err != nil {
			return err
		}
		start.Attr = append(start.Attr, attr)
	}
	if r.About != "" {
		attr, err := rdfAttr(prefixes, "about", r.About)
		if err != nil {
			return err
		}
		start.Attr = append(start.Attr, attr)
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}

	for _, p := range r.Properties {
		name, err := prefixes.Qualify(p.Name)
		if err != nil {
			return err
		}
		el := xml.StartElement{Name: xml.Name{Local: name}}
		if p.IsReference() {
			attr, err := rdfAttr(prefixes, "resource", p.Resource)
			if err != nil {
				return err
			}
			el.Attr = append(el.Attr, attr)
		}
		if err := enc.EncodeToken(el); err != nil {
			return err
		}
		if !p.IsReference() && p.Value != "" {
			if err := enc.EncodeToken(xml.CharData(p.Value)); err != nil {
				return err
			}
		}
		if err := enc.EncodeToken(el.End()); err != nil {
			return err
		}
	}

	return enc.EncodeToken(start.End())
}

func rdfAttr(prefixes Prefixes, local, value string) (xml.Attr, error) {
	name, err := prefixes.Qualify(RDF(local))
	if err != nil {
		return xml.Attr{}, err
	}
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}, nil
}
