package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing so identical inputs produce identical IDs.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Page is one page of extracted document text.
type Page struct {
	Number int
	Text   string
}

// Document is an ingested source document. It is immutable once ingested;
// sections reference it rather than copying it.
type Document struct {
	Id       ID
	Filename string
	Title    string
	Pages    []Page
}

// SectionType is a coarse classification of a section derived from its title.
type SectionType string

const (
	SectionTypeContent       SectionType = "content"
	SectionTypeGuide         SectionType = "guide"
	SectionTypeConversion    SectionType = "conversion"
	SectionTypeSignatures    SectionType = "signatures"
	SectionTypeChecklist     SectionType = "checklist"
	SectionTypeActivity      SectionType = "activity"
	SectionTypeTips          SectionType = "tips"
	SectionTypeEntertainment SectionType = "entertainment"
)

// Section is a candidate section handed to the ranking engine.
// Sections are consumed read-only by every scoring component.
type Section struct {
	Id            ID
	Document      *Document
	DocumentIndex int // Position of the document in the job's input list
	Ordinal       int // Position of the section within its document
	Title         string
	PageNumber    int
	Text          string
	WordCount     int
	Type          SectionType
}

// DocumentName returns the filename of the owning document, or "" for detached sections.
func (s *Section) DocumentName() string {
	if s == nil || s.Document == nil {
		return ""
	}
	return s.Document.Filename
}

// Before reports whether s precedes other in document, page, and ordinal order.
// This is the deterministic tie-break used by ranking.
func (s *Section) Before(other *Section) bool {
	if s.DocumentIndex != other.DocumentIndex {
		return s.DocumentIndex < other.DocumentIndex
	}
	if s.PageNumber != other.PageNumber {
		return s.PageNumber < other.PageNumber
	}
	return s.Ordinal < other.Ordinal
}

// Query is the weighted representation of a persona and task.
// It is built once per job and never mutated afterwards.
type Query struct {
	Persona  string
	Task     string
	Text     string             // Natural language text used for semantic embedding
	Terms    map[string]float64 // Normalized term or space-joined phrase -> weight
	Order    []string           // Keys of Terms in first-seen order
	MustHave []string           // Normalized phrases the task explicitly called out
}

// Weight returns the weight of a normalized term, or 0 if the query does not contain it.
func (q *Query) Weight(term string) float64 {
	return q.Terms[term]
}

// ScoreRecord carries the per-section scores of one job.
// Scorers write the raw scores; fusion writes Fused and Rank exactly once.
type ScoreRecord struct {
	Section          *Section
	Lexical          float64
	Probabilistic    float64
	Semantic         float64
	SemanticDegraded bool // Semantic was replaced by the corpus mean
	Fused            float64
	Rank             int // 1-based importance rank; 0 until selected
}

// RefinedSnippet is the bounded-length text extracted for a selected section.
type RefinedSnippet struct {
	Section    *Section
	Text       string
	PageNumber int
}

// JobDocument names one input document of a job.
type JobDocument struct {
	Filename string `json:"filename"`
	Title    string `json:"title,omitempty"`
}

// Job is a single batch ranking request.
type Job struct {
	Documents []JobDocument
	Persona   string
	Task      string
}

// Filenames returns the filenames of the job's documents in input order.
func (j *Job) Filenames() []string {
	names := make([]string, len(j.Documents))
	for i, d := range j.Documents {
		names[i] = d.Filename
	}
	return names
}

// Metadata describes a completed job.
type Metadata struct {
	JobID               string    `json:"job_id"`
	InputDocuments      []string  `json:"input_documents"`
	Persona             string    `json:"persona"`
	Task                string    `json:"job_to_be_done"`
	ProcessingTimestamp time.Time `json:"processing_timestamp"`
	Warnings            []string  `json:"warnings"`
	Partial             bool      `json:"partial"`
}

// ExtractedSection is one ranked section in a job result.
type ExtractedSection struct {
	Document       string      `json:"document"`
	SectionTitle   string      `json:"section_title"`
	ImportanceRank int         `json:"importance_rank"`
	PageNumber     int         `json:"page_number"`
	SectionType    SectionType `json:"section_type,omitempty"`
}

// SubsectionAnalysis is the refined text of one ranked section.
type SubsectionAnalysis struct {
	Document    string `json:"document"`
	RefinedText string `json:"refined_text"`
	PageNumber  int    `json:"page_number"`
}

// Result is the output of a job. Both lists follow ascending importance rank.
type Result struct {
	Metadata    Metadata             `json:"metadata"`
	Sections    []ExtractedSection   `json:"extracted_sections"`
	Subsections []SubsectionAnalysis `json:"subsection_analysis"`
	Records     []*ScoreRecord       `json:"-"`
}
