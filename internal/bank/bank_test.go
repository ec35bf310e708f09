package bank

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mcqprep/internal/question"
)

const moduleDoc = `{"questions":[
	{"id":2,"question":"Second?","options":["a","b","c","d"],"answer":0},
	{"id":1,"question":"First?","options":["a","b","c","d"],"answer":1}
]}`

func TestDecode_JSONAndYAMLAgree(t *testing.T) {
	yamlDoc := `
questions:
  - id: 2
    question: "Second?"
    options: [a, b, c, d]
    answer: 0
  - id: 1
    question: "First?"
    options: [a, b, c, d]
    answer: 1
`
	fromJSON, err := Decode([]byte(moduleDoc), FormatJSON, "m.json")
	require.NoError(t, err)
	fromYAML, err := Decode([]byte(yamlDoc), FormatYAML, "m.yaml")
	require.NoError(t, err)

	assert.Equal(t, fromJSON.Questions, fromYAML.Questions)
	assert.Equal(t, SupportedFormat, fromJSON.FormatVersion)
}

func TestDecode_RejectsBadEnvelope(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{`},
		{"no questions", `{"name":"x"}`},
		{"empty questions", `{"questions":[]}`},
		{"questions not objects", `{"questions":["a","b"]}`},
		{"top-level array", `[{"question":"Q?"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.doc), FormatJSON, tt.name)
			assert.Error(t, err)
		})
	}
}

func TestDecode_FormatVersion(t *testing.T) {
	tests := []struct {
		version string
		want    string
		wantErr bool
	}{
		{`"1.0"`, "v1.0.0", false},
		{`1`, "v1.0.0", false},
		{`"v1.2.3"`, "v1.2.3", false},
		{`"2.0"`, "", true},
		{`"banana"`, "", true},
	}
	for _, tt := range tests {
		doc := `{"formatVersion":` + tt.version + `,"questions":[{"question":"Q?","options":["a"],"answer":0}]}`
		got, err := Decode([]byte(doc), FormatJSON, "doc")
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrUnsupportedFormat, tt.version)
			continue
		}
		require.NoError(t, err, tt.version)
		assert.Equal(t, tt.want, got.FormatVersion, tt.version)
	}
}

func TestFSLoader_ProbesCandidatePaths(t *testing.T) {
	fsys := fstest.MapFS{
		"data/module1.json": {Data: []byte(moduleDoc)},
		"module2.yml":       {Data: []byte("questions:\n  - question: \"Q?\"\n    options: [a]\n    answer: 0\n")},
		"icai_review.json":  {Data: []byte(moduleDoc)},
	}
	l := NewFSLoader(fsys)
	ctx := context.Background()

	for _, id := range []string{"module1", "module2", ReviewPoolID} {
		doc, err := l.Load(ctx, id)
		require.NoError(t, err, id)
		assert.NotEmpty(t, doc.Questions, id)
	}

	_, err := l.Load(ctx, "module3")
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestFSLoader_LaterRootUsedWhenFirstLacksFile(t *testing.T) {
	first := fstest.MapFS{"module1.json": {Data: []byte(moduleDoc)}}
	second := fstest.MapFS{"module2.json": {Data: []byte(moduleDoc)}}

	doc, err := NewFSLoader(first, second).Load(context.Background(), "module2")
	require.NoError(t, err)
	assert.Equal(t, "fs1/module2.json", doc.Origin)
}

func TestFSLoader_CorruptFileIsUnavailable(t *testing.T) {
	fsys := fstest.MapFS{"module1.json": {Data: []byte(`{"questions":`)}}
	_, err := NewFSLoader(fsys).Load(context.Background(), "module1")
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestHTTPLoader(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/banks/module1.json":
			_, _ = w.Write([]byte(moduleDoc))
		case "/banks/data/module5.json":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	l := NewHTTPLoader(server.URL + "/banks/")
	ctx := context.Background()

	doc, err := l.Load(ctx, "module1")
	require.NoError(t, err)
	assert.Len(t, doc.Questions, 2)
	assert.Equal(t, server.URL+"/banks/module1.json", doc.Origin)

	_, err = l.Load(ctx, "module5")
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.Contains(t, err.Error(), "HTTP 500")

	_, err = l.Load(ctx, "module6")
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

type failingLoader struct{ err error }

func (f failingLoader) Load(context.Context, string) (*Document, error) { return nil, f.err }

func TestChain(t *testing.T) {
	boom := errors.New("network down")
	fsys := fstest.MapFS{"module1.json": {Data: []byte(moduleDoc)}}

	doc, err := Chain{failingLoader{boom}, NewFSLoader(fsys)}.Load(context.Background(), "module1")
	require.NoError(t, err)
	assert.Len(t, doc.Questions, 2)

	_, err = Chain{failingLoader{boom}}.Load(context.Background(), "module1")
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.ErrorIs(t, err, boom)

	_, err = Chain{}.Load(context.Background(), "module1")
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestLoadPool_NormalizesAndSorts(t *testing.T) {
	fsys := fstest.MapFS{"module1.json": {Data: []byte(moduleDoc)}}
	res, err := LoadPool(context.Background(), NewFSLoader(fsys), "module1", nil)
	require.NoError(t, err)

	assert.Equal(t, "Module 1", res.Pool.Name)
	require.Equal(t, 2, res.Pool.Len())
	assert.Equal(t, "1", res.Pool.Questions[0].ID)
	assert.Empty(t, res.Drops)
}

func TestLoadPool_AllDroppedIsUnavailable(t *testing.T) {
	doc := `{"questions":[{"question":"Solution: 42","options":["a"],"answer":0}]}`
	fsys := fstest.MapFS{"module1.json": {Data: []byte(doc)}}

	_, err := LoadPool(context.Background(), NewFSLoader(fsys), "module1", nil)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestSamples_EveryPoolLoads(t *testing.T) {
	l := Samples()
	for _, id := range AllPoolIDs() {
		res, err := LoadPool(context.Background(), l, id, nil)
		require.NoError(t, err, id)
		for _, q := range res.Pool.Questions {
			assert.True(t, q.Valid(), "%s/%s", id, q.ID)
		}
	}

	res, err := LoadPool(context.Background(), l, ReviewPoolID, nil)
	require.NoError(t, err)
	require.Len(t, res.Drops, 1)
	assert.Equal(t, question.ReasonExplanatoryText, res.Drops[0].Reason)
}

func TestPoolNames(t *testing.T) {
	assert.Equal(t, "Module 3", PoolName("module3"))
	assert.Equal(t, "ICAI Review Questions", PoolName(ReviewPoolID))
	assert.Equal(t, "icai_review", FileStem(ReviewPoolID))
	assert.Len(t, AllPoolIDs(), 7)
}
