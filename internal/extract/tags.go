// Package extract derives plain narrative text from USLM Public Law
// XML documents.
package extract

// Namespaces used by govinfo Public Law documents: the USLM schema for
// the law body plus the two Dublin Core vocabularies carrying document
// metadata.
const (
	uslmNamespace    = "http://schemas.gpo.gov/xml/uslm"
	dcNamespace      = "http://purl.org/dc/elements/1.1/"
	dcTermsNamespace = "http://purl.org/dc/terms/"
)

// administrativeNames lists the local names of elements that carry
// administrative or structural content rather than substantive law
// text: action descriptions, tables of contents, labels, reference
// markers, numbering, citations, dates, publication metadata, committee
// references, document-type markers, page markers, processing metadata,
// public/private markers and end markers.
var administrativeNames = []string{
	"actionDescription",
	"toc",
	"designator",
	"label",
	"referenceItem",
	"num",
	"citableAs",
	"approvedDate",
	"publisher",
	"creator",
	"format",
	"language",
	"rights",
	"congress",
	"docNumber",
	"ref",
	"committee",
	"type",
	"page",
	"processedBy",
	"processedDate",
	"publicPrivate",
	"endMarker",
}

// administrativeTags holds every (namespace, local name) pair to skip,
// keyed as "namespace|local".
var administrativeTags = buildAdministrativeTags()

func buildAdministrativeTags() map[string]struct{} {
	set := make(map[string]struct{}, 3*len(administrativeNames))
	for _, ns := range []string{uslmNamespace, dcNamespace, dcTermsNamespace} {
		for _, name := range administrativeNames {
			set[ns+"|"+name] = struct{}{}
		}
	}
	return set
}

// IsAdministrativeTag reports whether an element with the given
// namespace URI and local name should be excluded from text
// extraction. Elements outside the three known namespaces are never
// excluded.
func IsAdministrativeTag(namespace, local string) bool {
	_, ok := administrativeTags[namespace+"|"+local]
	return ok
}
