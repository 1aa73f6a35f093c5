package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/lawcorpus/plawfetch/internal/extract"
	"github.com/lawcorpus/plawfetch/internal/fetcher"
	"github.com/lawcorpus/plawfetch/internal/lawdoc"
	"github.com/lawcorpus/plawfetch/internal/manifest"
	"github.com/lawcorpus/plawfetch/internal/pipeline"
	"github.com/lawcorpus/plawfetch/internal/store/local"
)

type stageLog struct {
	order []string
}

type stubManifests struct {
	log *stageLog
	err error
}

func (s *stubManifests) EnsureAll(_ context.Context) error {
	s.log.order = append(s.log.order, "manifests")
	return s.err
}

type stubDocuments struct {
	log *stageLog
	err error
}

func (s *stubDocuments) ProcessAll(_ context.Context) error {
	s.log.order = append(s.log.order, "documents")
	return s.err
}

type stubExtractor struct {
	log *stageLog
}

func (s *stubExtractor) ExtractAll() error {
	s.log.order = append(s.log.order, "extract")
	return nil
}

func TestRunExecutesStagesInOrder(t *testing.T) {
	t.Parallel()

	log := &stageLog{}
	p := pipeline.New(&stubManifests{log: log}, &stubDocuments{log: log}, &stubExtractor{log: log},
		zaptest.NewLogger(t))

	require.NoError(t, p.Run(context.Background()))
	assert.Equal(t, []string{"manifests", "documents", "extract"}, log.order)
}

func TestRunAbortsWhenManifestStageFails(t *testing.T) {
	t.Parallel()

	log := &stageLog{}
	wantErr := errors.New("upstream down")
	p := pipeline.New(&stubManifests{log: log, err: wantErr}, &stubDocuments{log: log},
		&stubExtractor{log: log}, zaptest.NewLogger(t))

	err := p.Run(context.Background())
	require.ErrorIs(t, err, wantErr)
	assert.Equal(t, []string{"manifests"}, log.order, "later stages must not start")
}

func TestRunAbortsWhenDocumentStageFails(t *testing.T) {
	t.Parallel()

	log := &stageLog{}
	wantErr := errors.New("response code 502")
	p := pipeline.New(&stubManifests{log: log}, &stubDocuments{log: log, err: wantErr},
		&stubExtractor{log: log}, zaptest.NewLogger(t))

	err := p.Run(context.Background())
	require.ErrorIs(t, err, wantErr)
	assert.Equal(t, []string{"manifests", "documents"}, log.order)
}

// noLimit admits every call immediately.
type noLimit struct{}

func (noLimit) Wait(_ context.Context) error { return nil }

// TestRunIsIdempotent wires real stages against a counting test server
// and verifies that a second full run issues no fetches and leaves
// every artifact byte-identical.
func TestRunIsIdempotent(t *testing.T) {
	t.Parallel()

	var hits atomic.Int64
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	lawXML := `<pLaw xmlns="http://schemas.gpo.gov/xml/uslm"><content>An Act</content></pLaw>`
	mux.HandleFunc("/bulkdata/json/PLAW/", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprintf(w, `{"files":[
			{"name":"PLAW-115publ1.xml","link":"%s/docs/PLAW-115publ1.xml"},
			{"name":"PLAW-115publ1.pdf","link":"%s/docs/PLAW-115publ1.pdf"}
		]}`, srv.URL, srv.URL)
	})
	mux.HandleFunc("/docs/", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(lawXML))
	})

	logger := zaptest.NewLogger(t)
	bulk := newStore(t)
	individual := newStore(t)
	processed := newStore(t)

	client := fetcher.New(fetcher.Config{}, noLimit{}, logger)
	manifests := manifest.NewDownloader(manifest.Config{
		Endpoint: srv.URL + "/bulkdata/json/PLAW/%d/public",
		Start:    115,
		End:      115,
	}, client, bulk, logger)
	documents := lawdoc.NewDownloader(client, bulk, individual, logger)
	extractor := extract.NewExtractor(individual, processed, logger)

	p := pipeline.New(manifests, documents, extractor, logger)

	require.NoError(t, p.Run(context.Background()))
	firstHits := hits.Load()
	assert.Equal(t, int64(2), firstHits, "one manifest fetch plus one xml fetch")

	firstOutputs := snapshot(t, processed)
	require.NoError(t, p.Run(context.Background()))

	assert.Equal(t, firstHits, hits.Load(), "second run must not fetch anything")
	assert.Equal(t, firstOutputs, snapshot(t, processed))

	text, err := processed.Read("PLAW-115publ1.txt")
	require.NoError(t, err)
	assert.Equal(t, "An Act", string(text))
	assert.False(t, individual.Exists("PLAW-115publ1.pdf"))
}

func newStore(t *testing.T) *local.Store {
	t.Helper()
	store, err := local.New(local.Config{BaseDir: t.TempDir()})
	require.NoError(t, err)
	return store
}

// snapshot reads every artifact in a store into a map for comparison.
func snapshot(t *testing.T, store *local.Store) map[string]string {
	t.Helper()
	names, err := store.List()
	require.NoError(t, err)
	out := make(map[string]string, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Clean(store.Path(name)))
		require.NoError(t, err)
		out[name] = string(data)
	}
	return out
}
