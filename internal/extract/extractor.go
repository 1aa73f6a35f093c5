package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
	"go.uber.org/zap"

	"github.com/lawcorpus/plawfetch/internal/metrics"
	"github.com/lawcorpus/plawfetch/internal/store/local"
)

const (
	xmlExt = ".xml"
	txtExt = ".txt"

	// legislativeHistoryMarker begins the procedural appendix that
	// follows the substantive law text.
	legislativeHistoryMarker = "LEGISLATIVE HISTORY"
)

// Extractor turns cached raw XML documents into plain-text artifacts.
type Extractor struct {
	docs   *local.Store
	out    *local.Store
	logger *zap.Logger
}

// NewExtractor builds an Extractor reading raw documents from one cache
// and writing text into another.
func NewExtractor(docs, out *local.Store, logger *zap.Logger) *Extractor {
	return &Extractor{
		docs:   docs,
		out:    out,
		logger: logger,
	}
}

// Extract parses one cached XML document and writes the cleaned text
// artifact. A document that fails to parse is logged and deleted from
// the raw cache so later runs skip it instead of retrying the same bad
// content; this is not an error for the batch.
func (e *Extractor) Extract(fileName string) error {
	raw, err := e.docs.Read(fileName)
	if err != nil {
		return fmt.Errorf("read document %s: %w", fileName, err)
	}

	doc, err := xmlquery.Parse(bytes.NewReader(raw))
	if err != nil {
		e.logger.Error("failed to parse document, deleting cached file",
			zap.String("name", fileName),
			zap.Error(err))
		metrics.IncExtraction("parse_error")
		if rmErr := e.docs.Remove(fileName); rmErr != nil {
			return fmt.Errorf("remove unparsable document %s: %w", fileName, rmErr)
		}
		return nil
	}

	texts := truncateAtLegislativeHistory(collectTexts(doc))

	outName := strings.TrimSuffix(fileName, xmlExt) + txtExt
	if err := e.out.Write(outName, []byte(strings.Join(texts, "\n"))); err != nil {
		return fmt.Errorf("write extracted text %s: %w", outName, err)
	}
	metrics.IncExtraction("ok")
	e.logger.Info("extracted text",
		zap.String("name", fileName),
		zap.Int("segments", len(texts)))
	return nil
}

// ExtractAll applies Extract to every cached raw document. Per-file
// failures are logged and do not abort the batch.
func (e *Extractor) ExtractAll() error {
	names, err := e.docs.List()
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}
	for _, name := range names {
		if err := e.Extract(name); err != nil {
			e.logger.Error("extraction failed", zap.String("name", name), zap.Error(err))
		}
	}
	return nil
}

// collectTexts walks every element in document order and gathers each
// kept element's leading text content. Elements whose tag is in the
// administrative exclusion set contribute no text of their own, but
// their descendants are still visited. Text trailing a child element
// is not collected; that can drop legitimate content adjacent to
// nested elements.
func collectTexts(doc *xmlquery.Node) []string {
	var texts []string
	var walk func(n *xmlquery.Node)
	walk = func(n *xmlquery.Node) {
		if n.Type == xmlquery.ElementNode && !IsAdministrativeTag(n.NamespaceURI, n.Data) {
			if text := leadingText(n); strings.TrimSpace(text) != "" {
				texts = append(texts, text)
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return texts
}

// leadingText concatenates the text nodes between an element's start
// tag and its first child element.
func leadingText(n *xmlquery.Node) string {
	var b strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case xmlquery.TextNode, xmlquery.CharDataNode:
			b.WriteString(child.Data)
		case xmlquery.CommentNode:
			// Text on either side of a comment still counts as leading.
		default:
			return b.String()
		}
	}
	return b.String()
}

// truncateAtLegislativeHistory cuts the collected sequence at the first
// segment equal (case-insensitively) to the legislative-history marker,
// dropping the marker and everything after it. A marker in the very
// first segment truncates to an empty sequence.
func truncateAtLegislativeHistory(texts []string) []string {
	for i, text := range texts {
		if strings.ToUpper(text) == legislativeHistoryMarker {
			return texts[:i]
		}
	}
	return texts
}
