package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aure/amberctl/internal/models"
)

const siteBody = `[{"id": "516659425499187395570254629", "nmi": "50147919623",
	"channels": [{"identifier": "E1", "type": "general", "tariff": "A100"}], "network": "test",
	"status": "testing", "activeFrom": "2021-05-05", "closedOn": "2022-05-01"}]`

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, NewClient(srv.URL, "token", 2*time.Second)
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}

func TestClient_SendsHeadersAndCallsOnce(t *testing.T) {
	var calls int32
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, []string{"Bearer token"}, r.Header.Values("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		respond(http.StatusOK, siteBody)(w, r)
	})

	_, err := client.SiteData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestSiteData_DecodesSite(t *testing.T) {
	srv, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sites", r.URL.Path)
		respond(http.StatusOK, siteBody)(w, r)
	})
	require.Equal(t, srv.URL+"/sites", SitesURL(client.BaseURL()))

	sites, err := client.SiteData(context.Background())
	require.NoError(t, err)
	require.Len(t, sites, 1)

	want := models.SiteDetails{
		ID:         "516659425499187395570254629",
		NMI:        "50147919623",
		Network:    "test",
		Status:     "testing",
		ActiveFrom: strfmt.Date(time.Date(2021, 5, 5, 0, 0, 0, 0, time.UTC)),
		Channels: []models.SiteChannel{
			{Identifier: "E1", Tariff: "A100", TariffType: "general"},
		},
	}
	assert.Equal(t, want, sites[0])
}

func TestSiteData_UnauthorizedKeepsRawBody(t *testing.T) {
	_, client := newTestServer(t, respond(http.StatusUnauthorized, `{"message": "Unauthorized"}`))

	_, err := client.SiteData(context.Background())
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se), "got %T", err)
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
	assert.Equal(t, "401 Unauthorized", se.Status)
	assert.Equal(t, `{"message": "Unauthorized"}`, se.Body)
}

func TestSiteData_NonJSONErrorBody(t *testing.T) {
	_, client := newTestServer(t, respond(http.StatusBadGateway, "<html>bad gateway</html>"))

	_, err := client.SiteData(context.Background())
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "<html>bad gateway</html>", se.Body)
}

func TestSiteData_DecodeErrors(t *testing.T) {
	cases := map[string]string{
		"empty body":       "",
		"not json":         "hello",
		"object not array": `{"id": "x"}`,
		"null":             "null",
		"missing id":       `[{"nmi": "1", "network": "n", "status": "active", "activeFrom": "2021-05-05", "channels": []}]`,
		"null id":          `[{"id": null, "nmi": "1", "network": "n", "status": "active", "activeFrom": "2021-05-05", "channels": []}]`,
		"bad date":         `[{"id": "x", "nmi": "1", "network": "n", "status": "active", "activeFrom": "May 5", "channels": []}]`,
		"wrong type":       `[{"id": 7, "nmi": "1", "network": "n", "status": "active", "activeFrom": "2021-05-05", "channels": []}]`,
		"empty channel":    `[{"id": "x", "nmi": "1", "network": "n", "status": "active", "activeFrom": "2021-05-05", "channels": [{}]}]`,
		"channel no type":  `[{"id": "x", "nmi": "1", "network": "n", "status": "active", "activeFrom": "2021-05-05", "channels": [{"identifier": "E1", "tariff": "A100"}]}]`,
		"null channel":     `[{"id": "x", "nmi": "1", "network": "n", "status": "active", "activeFrom": "2021-05-05", "channels": [null]}]`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, client := newTestServer(t, respond(http.StatusOK, body))

			_, err := client.SiteData(context.Background())
			require.Error(t, err)
			var de *DecodeError
			assert.True(t, errors.As(err, &de), "got %T: %v", err, err)
		})
	}
}

func TestClient_TransportErrorOnClosedServer(t *testing.T) {
	srv := httptest.NewServer(respond(http.StatusOK, "[]"))
	client := NewClient(srv.URL, "token", time.Second)
	srv.Close()

	_, err := client.SiteData(context.Background())
	var te *TransportError
	require.True(t, errors.As(err, &te), "got %T", err)
	assert.Equal(t, srv.URL+"/sites", te.URL)
}

func TestClient_TransportErrorOnTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	client := NewClient(srv.URL, "token", 50*time.Millisecond)
	_, err := client.SiteData(context.Background())
	var te *TransportError
	require.True(t, errors.As(err, &te), "got %T", err)
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("", "token", 0)
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)

	c = NewClient("http://localhost:8080/v1/", "token", time.Second)
	assert.Equal(t, "http://localhost:8080/v1", c.BaseURL())
}
