package voc

import (
	"github.com/cayleygraph/quad/voc/rdf"
	"github.com/cayleygraph/quad/voc/rdfs"
)

// Well-known vocabularies.
const (
	SchemaOrg = "http://schema.org/"
	DC        = "http://purl.org/dc/elements/1.1/"
	DCTerms   = "http://purl.org/dc/terms/"
	FOAF      = "http://xmlns.com/foaf/0.1/"
	SKOS      = "http://www.w3.org/2004/02/skos/core#"
	OWL       = "http://www.w3.org/2002/07/owl#"
	XSD       = "http://www.w3.org/2001/XMLSchema#"
)

// Full IRIs of the RDF and RDFS terms the importer interprets. The constants
// of quad/voc/rdf and quad/voc/rdfs are prefixed short forms.
const (
	RDFType           = rdf.NS + "type"
	RDFSSubClassOf    = rdfs.NS + "subClassOf"
	RDFSSubPropertyOf = rdfs.NS + "subPropertyOf"
)

// XML Schema datatypes used for literal conversion.
const (
	XSDString   = XSD + "string"
	XSDBoolean  = XSD + "boolean"
	XSDInteger  = XSD + "integer"
	XSDLong     = XSD + "long"
	XSDInt      = XSD + "int"
	XSDDouble   = XSD + "double"
	XSDFloat    = XSD + "float"
	XSDDecimal  = XSD + "decimal"
	XSDDateTime = XSD + "dateTime"
	XSDDate     = XSD + "date"
)

// Common lists the vocabularies registered by RegisterCommon.
var Common = []Namespace{
	{Prefix: "sch", Full: SchemaOrg},
	{Prefix: "dc", Full: DC},
	{Prefix: "dct", Full: DCTerms},
	{Prefix: "foaf", Full: FOAF},
	{Prefix: "skos", Full: SKOS},
	{Prefix: "rdf", Full: rdf.NS},
	{Prefix: "rdfs", Full: rdfs.NS},
	{Prefix: "owl", Full: OWL},
	{Prefix: "xsd", Full: XSD},
}

// RegisterCommon registers all Common vocabularies.
func (p *Namespaces) RegisterCommon() {
	for _, ns := range Common {
		p.Register(ns)
	}
}
