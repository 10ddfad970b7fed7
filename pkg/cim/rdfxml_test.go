package cim

import (
	"encoding/xml"
	"strings"
	"sync"
	"testing"
	"time"
)

func sampleDocument() Document {
	ts := time.Date(2026, 3, 1, 12, 30, 45, 999, time.FixedZone("X", 3600))
	unit := NewResource(CIM("RemoteUnit"), "_rtu-1").
		Literal(CIM("IdentifiedObject.name"), "RTU <1> & co").
		Ref(CIM("RemoteUnit.remoteUnitType"), NamespaceCIM+"RemoteUnitType.RTU").
		LiteralIfSet(VER("RemoteUnit.model"), "")
	return Document{
		Header: &FullModel{
			URN:                  "urn:uuid:abc",
			ScenarioTime:         ts,
			Created:              ts,
			Description:          "test model",
			ModelingAuthoritySet: "http://verance.ai/SA/maple",
			Profile:              ProfileSCADAConfiguration,
			DependentOn:          []string{"urn:uuid:eq", ""},
		},
		Resources: []Resource{*unit},
	}
}

func TestMarshalLayout(t *testing.T) {
	out, err := Marshal(sampleDocument(), DefaultPrefixes())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	s := string(out)

	if !strings.HasPrefix(s, `<?xml version="1.0" encoding="UTF-8"?>`+"\n<rdf:RDF ") {
		t.Fatalf("unexpected document start:\n%s", s)
	}
	for _, want := range []string{
		`xmlns:cim="http://iec.ch/TC57/CIM100#"`,
		`xmlns:md="http://iec.ch/TC57/61970-552/ModelDescription/1#"`,
		`xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"`,
		`xmlns:ver="http://verance.ai/CIM/SecondarySystem/1#"`,
		"\n  <md:FullModel rdf:about=\"urn:uuid:abc\">",
		"\n    <md:Model.scenarioTime>2026-03-01T11:30:45Z</md:Model.scenarioTime>",
		"<md:Model.profile>http://verance.ai/CIM/SCADAConfiguration/1</md:Model.profile>",
		`<md:Model.DependentOn rdf:resource="urn:uuid:eq">`,
		"\n  <cim:RemoteUnit rdf:ID=\"_rtu-1\">",
		"<cim:IdentifiedObject.name>RTU &lt;1&gt; &amp; co</cim:IdentifiedObject.name>",
		`<cim:RemoteUnit.remoteUnitType rdf:resource="http://iec.ch/TC57/CIM100#RemoteUnitType.RTU">`,
		"\n</rdf:RDF>\n",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("output missing %q\n%s", want, s)
		}
	}
	if strings.Count(s, "Model.DependentOn") != 2 {
		t.Errorf("empty dependency should be skipped:\n%s", s)
	}
	if strings.Contains(s, "RemoteUnit.model") {
		t.Errorf("empty optional literal was written:\n%s", s)
	}
	if strings.Index(s, "md:FullModel") > strings.Index(s, "cim:RemoteUnit") {
		t.Error("header must precede resources")
	}
}

func TestMarshalWellFormed(t *testing.T) {
	out, err := Marshal(sampleDocument(), DefaultPrefixes())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var doc struct {
		XMLName xml.Name
		Units   []struct {
			ID   string `xml:"http://www.w3.org/1999/02/22-rdf-syntax-ns# ID,attr"`
			Name string `xml:"http://iec.ch/TC57/CIM100# IdentifiedObject.name"`
		} `xml:"http://iec.ch/TC57/CIM100# RemoteUnit"`
	}
	if err := xml.Unmarshal(out, &doc); err != nil {
		t.Fatalf("output is not well-formed: %v", err)
	}
	if doc.XMLName.Space != NamespaceRDF || doc.XMLName.Local != "RDF" {
		t.Errorf("root = %v", doc.XMLName)
	}
	if len(doc.Units) != 1 || doc.Units[0].ID != "_rtu-1" || doc.Units[0].Name != "RTU <1> & co" {
		t.Errorf("unexpected decoded units: %+v", doc.Units)
	}
}

func TestMarshalEmptyDocument(t *testing.T) {
	out, err := Marshal(Document{}, DefaultPrefixes())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if err := xml.Unmarshal(out, new(struct{})); err != nil {
		t.Fatalf("empty document is not well-formed: %v\n%s", err, out)
	}
}

func TestMarshalUnknownNamespace(t *testing.T) {
	doc := Document{Resources: []Resource{{Class: QName{Space: "urn:other#", Local: "Thing"}, ID: "_x"}}}
	if _, err := Marshal(doc, DefaultPrefixes()); err == nil {
		t.Fatal("expected error for unregistered namespace")
	}
}

func TestMarshalCustomPrefixes(t *testing.T) {
	prefixes := DefaultPrefixes()
	prefixes[NamespaceVER] = "vx"
	doc := Document{Resources: []Resource{*NewResource(CIM("RemoteUnit"), "_a").Literal(VER("RemoteUnit.role"), "rtu")}}

	out, err := Marshal(doc, prefixes)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(out), "<vx:RemoteUnit.role>rtu</vx:RemoteUnit.role>") {
		t.Fatalf("custom prefix not used:\n%s", out)
	}

	// The default table is untouched by the caller's copy.
	if DefaultPrefixes()[NamespaceVER] != "ver" {
		t.Fatal("DefaultPrefixes returned shared state")
	}
}

func TestMarshalConcurrent(t *testing.T) {
	want, err := Marshal(sampleDocument(), DefaultPrefixes())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			prefixes := DefaultPrefixes()
			if i%2 == 1 {
				prefixes[NamespaceVER] = "ext"
			}
			got, err := Marshal(sampleDocument(), prefixes)
			if err != nil {
				errs <- err.Error()
				return
			}
			if i%2 == 0 && string(got) != string(want) {
				errs <- "output differs under concurrency"
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Error(e)
	}
}

func TestResourceAccessors(t *testing.T) {
	r := NewResource(CIM("RemoteSource"), "_rs").
		Ref(CIM("RemoteSource.MeasurementValue"), LocalRef("_pt")).
		Literal(CIM("IdentifiedObject.name"), "x")

	if v, ok := r.RefTo(CIM("RemoteSource.MeasurementValue")); !ok || v != "#_pt" {
		t.Errorf("RefTo = %q, %v", v, ok)
	}
	if _, ok := r.Get(CIM("RemoteSource.MeasurementValue")); ok {
		t.Error("Get should ignore references")
	}
	if v, ok := r.Get(CIM("IdentifiedObject.name")); !ok || v != "x" {
		t.Errorf("Get = %q, %v", v, ok)
	}
}

func TestFormatTime(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 600_000_000, time.UTC)
	if got := FormatTime(ts); got != "2026-01-02T03:04:05Z" {
		t.Fatalf("FormatTime = %q", got)
	}
}
