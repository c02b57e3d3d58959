package inputs_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wflint/wflint/pkg/ghclient"
	"github.com/wflint/wflint/pkg/inputs"
)

func TestParseRemoteSlugWithAndWithoutRef(t *testing.T) {
	owner, repo, ref, err := inputs.ParseRemoteSlug("actions/checkout@v4")
	require.NoError(t, err)
	require.Equal(t, "actions", owner)
	require.Equal(t, "checkout", repo)
	require.Equal(t, "v4", ref)

	owner, repo, ref, err = inputs.ParseRemoteSlug("actions/checkout")
	require.NoError(t, err)
	require.Equal(t, "actions", owner)
	require.Equal(t, "checkout", repo)
	require.Equal(t, "", ref)
}

func TestParseRemoteSlugRejectsMalformedInput(t *testing.T) {
	_, _, _, err := inputs.ParseRemoteSlug("/not/a/valid/slug")
	require.Error(t, err)
}

func TestCollectRemoteFetchesWorkflows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/octo/demo/contents/.github/workflows":
			w.Write([]byte(`[{"name":"ci.yml","path":".github/workflows/ci.yml"}]`))
		case "/repos/octo/demo/contents/.github/workflows/ci.yml":
			w.Write([]byte(`{"name":"ci.yml","path":".github/workflows/ci.yml","type":"file","encoding":"base64","content":"bmFtZTogQ0kKb246IHB1c2gK"}`))
		case "/repos/octo/demo/contents/action.yml":
			w.WriteHeader(http.StatusNotFound)
		case "/repos/octo/demo/contents/action.yaml":
			w.WriteHeader(http.StatusNotFound)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	t.Cleanup(server.Close)

	gh := ghclient.NewWithHTTPClient(server.URL, server.Client())

	ins, errs, err := inputs.CollectRemote(context.Background(), gh, "octo", "demo", "", inputs.ModeWorkflows|inputs.ModeActions)
	require.NoError(t, err)
	require.Empty(t, errs)
	require.Len(t, ins, 1)
	require.Equal(t, inputs.KindWorkflow, ins[0].Key.Kind())
	require.Contains(t, ins[0].Contents, "name: CI")
}
