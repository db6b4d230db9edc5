package scoring

import (
	"context"
	"testing"

	"github.com/poiesic/sectionrank/core"
	"github.com/poiesic/sectionrank/corpus"
	"github.com/poiesic/sectionrank/query"
	"github.com/poiesic/sectionrank/text"
	"github.com/stretchr/testify/require"
)

func newSections(bodies ...string) []*core.Section {
	doc := &core.Document{Id: core.IDFromContent("doc.pdf"), Filename: "doc.pdf"}
	sections := make([]*core.Section, len(bodies))
	for i, body := range bodies {
		sections[i] = &core.Section{
			Id:         core.IDFromContent(body),
			Document:   doc,
			Ordinal:    i,
			PageNumber: i + 1,
			Text:       body,
			WordCount:  text.WordCount(body),
		}
	}
	return sections
}

func newInput(t *testing.T, persona, task string, sections []*core.Section) *Input {
	t.Helper()
	tok := text.NewTokenizer()

	builder, err := query.NewBuilder(tok)
	require.NoError(t, err)
	q, err := builder.Build(persona, task)
	require.NoError(t, err)

	stats, err := corpus.Build(context.Background(), sections, tok)
	require.NoError(t, err)

	return &Input{Query: q, Sections: sections, Stats: stats}
}

var tripSections = []string{
	"Planning a group trip to the south of France with friends on a budget",
	"Vegetable lasagna recipe with cheese and tomato sauce baked slowly",
	"Nightlife in France: clubs and bars to enjoy with friends",
}
