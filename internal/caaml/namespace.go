package caaml

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// Namespace roles. Every element lookup goes through the resolver so the
// document's declared URIs — not its prefix spellings — decide what matches.
type nsRole int

const (
	nsProfile nsRole = iota // CAAML snow profile schema
	nsGML                   // OGC geography markup
	nsExtension             // SnowPilot site extension
)

const (
	gmlURI       = "http://www.opengis.net/gml"
	extensionURI = "http://www.snowpilot.org/Schemas/caaml"
)

// profileURIs lists the schema versions this package understands, current
// version first.
var profileURIs = []string{
	"http://caaml.org/Schemas/SnowProfileIACS/v6.0.3",
	"http://caaml.org/Schemas/SnowProfileIACS/v6.0.2",
}

// resolver maps logical element names to fully qualified names for one
// document. Built once from the root element's namespace declarations.
type resolver struct {
	profile   string
	gml       string
	extension string
}

// newResolver inspects the root element and binds each namespace role to the
// URI the document declares for it. A URI that belongs to a role family but
// is not a version this package understands is a hard failure.
func newResolver(root *element) (*resolver, error) {
	r := &resolver{gml: gmlURI, extension: extensionURI}

	for _, uri := range declaredURIs(root) {
		switch {
		case isProfileFamily(uri):
			if !knownProfileURI(uri) {
				return nil, fmt.Errorf("%w: %s", ErrUnknownNamespace, uri)
			}
			r.profile = uri
		case strings.Contains(uri, "snowpilot.org"):
			if uri != extensionURI {
				return nil, fmt.Errorf("%w: %s", ErrUnknownNamespace, uri)
			}
		}
	}

	// Some exports declare the profile namespace only on the root element
	// itself rather than as an xmlns attribute.
	if r.profile == "" && knownProfileURI(root.name.Space) {
		r.profile = root.name.Space
	}
	if r.profile == "" {
		return nil, fmt.Errorf("%w: no recognized profile schema declared", ErrUnknownNamespace)
	}
	return r, nil
}

// name qualifies a logical element name for the given role.
func (r *resolver) name(role nsRole, local string) xml.Name {
	switch role {
	case nsGML:
		return xml.Name{Space: r.gml, Local: local}
	case nsExtension:
		return xml.Name{Space: r.extension, Local: local}
	default:
		return xml.Name{Space: r.profile, Local: local}
	}
}

// declaredURIs collects every namespace URI declared on the root element,
// from both prefixed (xmlns:caaml="…") and default (xmlns="…") declarations.
func declaredURIs(root *element) []string {
	var uris []string
	for _, a := range root.attrs {
		if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
			uris = append(uris, a.Value)
		}
	}
	return uris
}

func isProfileFamily(uri string) bool {
	return strings.Contains(uri, "caaml.org")
}

func knownProfileURI(uri string) bool {
	for _, known := range profileURIs {
		if uri == known {
			return true
		}
	}
	return false
}
