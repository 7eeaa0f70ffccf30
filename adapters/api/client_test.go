package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"spikereview/domain/neuron"
	"spikereview/internal/errors"
	"spikereview/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	client, err := NewClient(ClientConfig{BaseURL: url}, nil)
	require.NoError(t, err)
	return client
}

func TestListNeuronsPreservesServerOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, NeuronsPath, r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[
			{"filename":"rec2.dat","cluster_id":1,"excluded":false,"ISI_bins":[1],"ISI_freqs":[1],"waveform_quintiles":[[0]]},
			{"filename":"rec1.dat","cluster_id":4,"excluded":true,"firing_rate":3.5,"ISI_bins":[1],"ISI_freqs":[1],"waveform_quintiles":[[0]]}
		]`)
	}))
	defer server.Close()

	records, err := newTestClient(t, server.URL).ListNeurons(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, neuron.NewUnitKey("rec2.dat", 1), records[0].Key())
	assert.False(t, records[0].HasFiringRate())
	assert.Equal(t, neuron.NewUnitKey("rec1.dat", 4), records[1].Key())
	assert.True(t, records[1].Excluded)
	require.True(t, records[1].HasFiringRate())
	assert.Equal(t, 3.5, *records[1].FiringRateHz)
}

func TestListNeuronsFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"malformed json", http.StatusOK, `[{"filename":`},
		{"not an array", http.StatusOK, `{"neurons":[]}`},
		{"server error", http.StatusInternalServerError, `boom`},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(test.status)
				_, _ = io.WriteString(w, test.body)
			}))
			defer server.Close()

			records, err := newTestClient(t, server.URL).ListNeurons(context.Background())
			require.Error(t, err)
			assert.Nil(t, records)
			assert.True(t, errors.Is(err, errors.CodeExternalService))
		})
	}
}

func TestListNeuronsUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := newTestClient(t, url).ListNeurons(context.Background())
	require.Error(t, err)
	assert.Equal(t, http.StatusBadGateway, errors.StatusFor(err))
}

func TestToggleSendsKeyAndParsesSet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, TogglePath, r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, "rec1.dat", gjson.GetBytes(body, "filename").String())
		assert.Equal(t, int64(3), gjson.GetBytes(body, "cluster_id").Int())

		_, _ = io.WriteString(w, `{"status":"ok","excluded":[["rec1.dat",3],["rec2.dat",1]]}`)
	}))
	defer server.Close()

	set, err := newTestClient(t, server.URL).Toggle(context.Background(), neuron.NewUnitKey("rec1.dat", 3))
	require.NoError(t, err)
	assert.True(t, set.Equal(neuron.NewExclusionSet(
		neuron.NewUnitKey("rec1.dat", 3),
		neuron.NewUnitKey("rec2.dat", 1),
	)))
}

func TestToggleUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).Toggle(context.Background(), neuron.NewUnitKey("a", 1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestParseExclusionSet(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    []neuron.UnitKey
		wantErr bool
	}{
		{name: "empty", body: `{"excluded":[]}`, want: nil},
		{name: "extra fields ignored", body: `{"status":"ok","excluded":[["a",1]]}`, want: []neuron.UnitKey{{Filename: "a", ClusterID: 1}}},
		{name: "duplicates collapse", body: `{"excluded":[["a",1],["a",1]]}`, want: []neuron.UnitKey{{Filename: "a", ClusterID: 1}}},
		{name: "invalid json", body: `{"excluded":`, wantErr: true},
		{name: "missing field", body: `{"status":"ok"}`, wantErr: true},
		{name: "not an array", body: `{"excluded":"a_1"}`, wantErr: true},
		{name: "short tuple", body: `{"excluded":[["a"]]}`, wantErr: true},
		{name: "swapped tuple", body: `{"excluded":[[1,"a"]]}`, wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			set, err := ParseExclusionSet([]byte(test.body))
			if test.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, set.Equal(neuron.NewExclusionSet(test.want...)), "got %v", set.Keys())
		})
	}
}

func TestToggleRoundTripAgainstFixture(t *testing.T) {
	records := testkit.SyntheticRecords(testkit.DefaultSyntheticConfig())
	_, server := testkit.StartFixture(records)
	defer server.Close()

	client := newTestClient(t, server.URL)
	key := records[0].Key()
	ctx := context.Background()

	first, err := client.Toggle(ctx, key)
	require.NoError(t, err)
	assert.True(t, first.Contains(key))

	second, err := client.Toggle(ctx, key)
	require.NoError(t, err)
	assert.False(t, second.Contains(key))
	assert.Equal(t, 0, second.Len())

	listed, err := client.ListNeurons(ctx)
	require.NoError(t, err)
	for _, r := range listed {
		assert.False(t, r.Excluded, r.Key().String())
	}
}

func TestClientConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultClientConfig().Validate())
	assert.Error(t, ClientConfig{}.Validate())
	assert.Error(t, ClientConfig{BaseURL: "ftp://host"}.Validate())
	assert.Error(t, ClientConfig{BaseURL: "http://host", Timeout: -1}.Validate())
	assert.Equal(t, "http://host/api/neurons", ClientConfig{BaseURL: "http://host/"}.endpoint(NeuronsPath))
}
