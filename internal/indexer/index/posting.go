package index

// Posting is one document's entry under a term.
type Posting struct {
	DocID    int     `json:"doc_id"`
	TermFreq float64 `json:"tf"`
}

type PostingList []Posting

// TermEntry is a term with its postings sorted by document id.
type TermEntry struct {
	Term     string      `json:"term"`
	Postings PostingList `json:"postings"`
}
