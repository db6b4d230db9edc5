package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantSame bool
	}{
		{
			name:     "same content produces same ID",
			content:  "report.pdf#3#Executive Summary",
			wantSame: true,
		},
		{
			name:     "empty string",
			content:  "",
			wantSame: true,
		},
		{
			name:     "long content",
			content:  "This is a much longer piece of section content that should still hash consistently",
			wantSame: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if tt.wantSame && id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestSection_Before(t *testing.T) {
	tests := []struct {
		name string
		a, b Section
		want bool
	}{
		{
			name: "earlier document wins",
			a:    Section{DocumentIndex: 0, PageNumber: 9},
			b:    Section{DocumentIndex: 1, PageNumber: 1},
			want: true,
		},
		{
			name: "same document earlier page wins",
			a:    Section{DocumentIndex: 1, PageNumber: 2},
			b:    Section{DocumentIndex: 1, PageNumber: 3},
			want: true,
		},
		{
			name: "same page falls back to ordinal",
			a:    Section{DocumentIndex: 1, PageNumber: 2, Ordinal: 5},
			b:    Section{DocumentIndex: 1, PageNumber: 2, Ordinal: 4},
			want: false,
		},
		{
			name: "identical position is not before",
			a:    Section{DocumentIndex: 1, PageNumber: 2, Ordinal: 4},
			b:    Section{DocumentIndex: 1, PageNumber: 2, Ordinal: 4},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Before(&tt.b); got != tt.want {
				t.Errorf("Section.Before() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSection_DocumentName(t *testing.T) {
	var nilSection *Section
	if got := nilSection.DocumentName(); got != "" {
		t.Errorf("nil section DocumentName() = %q, want empty", got)
	}

	s := &Section{Document: &Document{Filename: "guide.pdf"}}
	if got := s.DocumentName(); got != "guide.pdf" {
		t.Errorf("DocumentName() = %q, want guide.pdf", got)
	}
}

func TestJob_Filenames(t *testing.T) {
	job := &Job{Documents: []JobDocument{{Filename: "a.pdf"}, {Filename: "b.pdf", Title: "B"}}}
	got := job.Filenames()
	if len(got) != 2 || got[0] != "a.pdf" || got[1] != "b.pdf" {
		t.Errorf("Filenames() = %v", got)
	}
}
