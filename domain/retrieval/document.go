// Package retrieval provides the semantic index domain types: documents,
// query hits, and the index and embedder contracts.
package retrieval

// Metadata holds auxiliary document fields, returned verbatim with hits.
type Metadata map[string]any

func (m Metadata) clone() Metadata {
	if m == nil {
		return nil
	}
	cp := make(Metadata, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

// Document is a unit of retrievable knowledge: a plain-text rendering of a
// source row plus structured metadata. The ID is derived from the source
// entity type and primary key (e.g. "product_7") and is stable across
// re-indexing.
type Document struct {
	id       string
	text     string
	metadata Metadata
}

// NewDocument creates a new Document.
func NewDocument(id, text string, metadata Metadata) Document {
	return Document{
		id:       id,
		text:     text,
		metadata: metadata.clone(),
	}
}

// ID returns the stable document identifier.
func (d Document) ID() string { return d.id }

// Text returns the plain-text content.
func (d Document) Text() string { return d.text }

// Metadata returns a copy of the document metadata.
func (d Document) Metadata() Metadata { return d.metadata.clone() }

// Hit is a single query result: the matched document text, its metadata,
// and the squared L2 distance to the query embedding. Smaller distance
// means more similar; scores are not bounded to [0,1].
type Hit struct {
	document string
	metadata Metadata
	distance float64
}

// NewHit creates a new Hit.
func NewHit(document string, metadata Metadata, distance float64) Hit {
	return Hit{
		document: document,
		metadata: metadata.clone(),
		distance: distance,
	}
}

// Document returns the matched document text.
func (h Hit) Document() string { return h.document }

// Metadata returns a copy of the hit metadata.
func (h Hit) Metadata() Metadata { return h.metadata.clone() }

// Distance returns the squared L2 distance to the query embedding.
func (h Hit) Distance() float64 { return h.distance }
