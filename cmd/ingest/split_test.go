package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/schema"

	"github.com/roivaz/ragsplit/internal/document"
)

func splitDocs() []document.Document {
	return []document.Document{
		{Content: "first", ContentToEmbed: "embed first", Metadata: document.Metadata{document.KeyFileKey: "a.md", document.KeyPosition: 0}},
		{Content: "second", Metadata: document.Metadata{document.KeyFileKey: "a.md", document.KeyPosition: 1}},
	}
}

func decodeLines[T any](t *testing.T, out *bytes.Buffer) []T {
	t.Helper()
	var got []T
	sc := bufio.NewScanner(out)
	for sc.Scan() {
		var v T
		require.NoError(t, json.Unmarshal(sc.Bytes(), &v))
		got = append(got, v)
	}
	require.NoError(t, sc.Err())
	return got
}

func TestWriteDocumentsRows(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, writeDocuments(&out, splitDocs(), formatRows))

	rows := decodeLines[document.Row](t, &out)
	require.Len(t, rows, 2)
	assert.Equal(t, document.NewRow(splitDocs()[0]).ID, rows[0].ID)
	assert.Equal(t, "embed first", rows[0].ContentToEmbed)
	assert.Equal(t, "a.md", rows[1].FileKey)
}

func TestWriteDocumentsSchema(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, writeDocuments(&out, splitDocs(), formatSchema))

	docs := decodeLines[schema.Document](t, &out)
	require.Len(t, docs, 2)
	assert.Equal(t, "first", docs[0].PageContent)
	assert.Equal(t, "embed first", docs[0].Metadata[document.KeyContentToEmbed])
	assert.Equal(t, "a.md", docs[0].Metadata[document.KeyFileKey])
	assert.Equal(t, "second", docs[1].PageContent)
	assert.NotContains(t, docs[1].Metadata, document.KeyContentToEmbed)
}

func TestWriteDocumentsUnknownFormat(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, writeDocuments(&out, splitDocs(), "csv"))
	assert.Zero(t, out.Len())
}
