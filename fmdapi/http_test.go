package fmdapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const metadataBody = `{
  "response": {
    "fieldMetaData": [
      {"name": "name", "type": "normal", "displayType": "editText", "result": "text"},
      {"name": "age", "type": "normal", "displayType": "editText", "result": "number"}
    ],
    "portalMetaData": {"Orders": [{"name": "Orders::total", "result": "number"}]},
    "valueLists": [{"name": "Status", "type": "customList", "values": [{"value": "Open", "displayValue": "Open"}]}]
  },
  "messages": [{"code": "0", "message": "OK"}]
}`

func writeFM(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"response": map[string]any{},
		"messages": []map[string]string{{"code": code, "message": msg}},
	})
}

func TestOttoAdapter(t *testing.T) {
	t.Run("InvalidKey", func(t *testing.T) {
		_, err := NewOttoAdapter(OttoOptions{
			BaseOptions: BaseOptions{Server: "fm.example.com", Database: "Sales"},
			APIKey:      "bogus",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "KEY_")
		assert.Panics(t, func() {
			MustOttoAdapter(OttoOptions{BaseOptions: BaseOptions{Server: "fm.example.com", Database: "Sales"}, APIKey: "x"})
		})
	})

	t.Run("Otto3Port", func(t *testing.T) {
		a, err := NewOttoAdapter(OttoOptions{
			BaseOptions: BaseOptions{Server: "fm.example.com", Database: "Sales"},
			APIKey:      "KEY_abc",
		})
		require.NoError(t, err)
		assert.Equal(t, "https://fm.example.com:3030/fmi/data/vLatest/databases/Sales/layouts/Customers",
			a.endpoint(layoutPath("Customers"), nil))

		a, err = NewOttoAdapter(OttoOptions{
			BaseOptions: BaseOptions{Server: "https://fm.example.com", Database: "Sales"},
			APIKey:      "KEY_abc",
			Port:        4040,
		})
		require.NoError(t, err)
		assert.Equal(t, "https://fm.example.com:4040/fmi/data/vLatest/databases/Sales", a.endpoint("", nil))
	})

	t.Run("OttoFMSPrefix", func(t *testing.T) {
		a, err := NewOttoAdapter(OttoOptions{
			BaseOptions: BaseOptions{Server: "fm.example.com", Database: "Sales"},
			APIKey:      "dk_abc",
		})
		require.NoError(t, err)
		assert.Equal(t, "https://fm.example.com/otto/fmi/data/vLatest/databases/Sales", a.endpoint("", nil))
	})

	t.Run("LayoutMetadata", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/otto/fmi/data/vLatest/databases/Sales/layouts/Customers", r.URL.Path)
			assert.Equal(t, "Bearer dk_secret", r.Header.Get("Authorization"))
			_, _ = io.WriteString(w, metadataBody)
		}))
		defer srv.Close()

		a, err := NewOttoAdapter(OttoOptions{
			BaseOptions: BaseOptions{Server: srv.URL, Database: "Sales"},
			APIKey:      "dk_secret",
		})
		require.NoError(t, err)
		meta, err := a.LayoutMetadata(context.Background(), "Customers")
		require.NoError(t, err)
		require.Len(t, meta.FieldMetaData, 2)
		assert.Equal(t, "number", meta.FieldMetaData[1].Result)
		assert.Contains(t, meta.PortalMetaData, "Orders")
		require.Len(t, meta.ValueLists, 1)
		assert.Equal(t, "Open", meta.ValueLists[0].Values[0].Value)
	})

	t.Run("LayoutMissing", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeFM(w, http.StatusInternalServerError, CodeLayoutMissing, "Layout is missing")
		}))
		defer srv.Close()

		a, err := NewOttoAdapter(OttoOptions{BaseOptions: BaseOptions{Server: srv.URL, Database: "Sales"}, APIKey: "dk_secret"})
		require.NoError(t, err)
		_, err = a.LayoutMetadata(context.Background(), "Nope")
		require.Error(t, err)
		assert.True(t, IsLayoutMissing(err))
		var ferr *Error
		require.ErrorAs(t, err, &ferr)
		assert.Equal(t, http.StatusInternalServerError, ferr.Status)
	})
}

func TestResponseError(t *testing.T) {
	assert.Nil(t, responseError(200, []byte(`{"messages":[{"code":"0","message":"OK"}]}`)))
	assert.Nil(t, responseError(200, []byte(`{}`)))

	err := responseError(502, []byte(`<html>bad gateway</html>`))
	require.NotNil(t, err)
	assert.Equal(t, "502", err.Code)
	assert.Equal(t, "Bad Gateway", err.Message)
}

func TestPortalRangesQuery(t *testing.T) {
	p := ListParams{
		GetParams: GetParams{PortalRanges: PortalRanges{"Orders": {Offset: 2, Limit: 5}, "Notes": {Limit: 1}}},
		Limit:     10,
	}
	q := p.query()
	p.PortalRanges.portalQuery(q)
	assert.Equal(t, map[string]string{
		"_limit":         "10",
		"_offset.Orders": "2",
		"_limit.Orders":  "5",
		"_limit.Notes":   "1",
	}, q)
}

func TestFetchAdapter(t *testing.T) {
	var sessions, calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/fmi/data/vLatest/databases/Sales/sessions":
			user, pass, ok := r.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "admin", user)
			assert.Equal(t, "secret", pass)
			n := sessions.Add(1)
			w.Header().Set("X-FM-Data-Access-Token", "token-"+string(rune('0'+n)))
			writeFM(w, http.StatusOK, CodeOK, "OK")
		case r.Method == http.MethodGet:
			// The first session token is reported as expired.
			if calls.Add(1) == 1 {
				assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
				writeFM(w, http.StatusUnauthorized, CodeInvalidToken, "Invalid FileMaker Data API token")
				return
			}
			assert.Equal(t, "Bearer token-2", r.Header.Get("Authorization"))
			_, _ = io.WriteString(w, metadataBody)
		case r.Method == http.MethodDelete:
			assert.Equal(t, "/fmi/data/vLatest/databases/Sales/sessions/token-2", r.URL.Path)
			writeFM(w, http.StatusOK, CodeOK, "OK")
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	store := &memoryTokens{tokens: map[string]string{}}
	a, err := NewFetchAdapter(FetchOptions{
		BaseOptions: BaseOptions{Server: srv.URL, Database: "Sales"},
		Username:    "admin",
		Password:    "secret",
		TokenStore:  store,
	})
	require.NoError(t, err)

	ctx := context.Background()
	meta, err := a.LayoutMetadata(ctx, "Customers")
	require.NoError(t, err)
	assert.Len(t, meta.FieldMetaData, 2)
	assert.Equal(t, int32(2), sessions.Load())

	token, err := store.Token(ctx, srv.URL+"/Sales")
	require.NoError(t, err)
	assert.Equal(t, "token-2", token)

	require.NoError(t, a.Disconnect(ctx))
	token, err = store.Token(ctx, srv.URL+"/Sales")
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestFetchAdapterValidation(t *testing.T) {
	_, err := NewFetchAdapter(FetchOptions{BaseOptions: BaseOptions{Server: "fm", Database: "Sales"}, Password: "p"})
	assert.ErrorContains(t, err, "username")
	_, err = NewFetchAdapter(FetchOptions{BaseOptions: BaseOptions{Server: "fm", Database: "Sales"}, Username: "u"})
	assert.ErrorContains(t, err, "password")
	_, err = NewFetchAdapter(FetchOptions{BaseOptions: BaseOptions{Server: "fm"}, Username: "u", Password: "p"})
	assert.ErrorContains(t, err, "database")
}

func TestHostAdapter(t *testing.T) {
	ctx := context.Background()

	t.Run("NoBridge", func(t *testing.T) {
		RegisterHost(nil)
		_, err := NewHostAdapter(HostOptions{ScriptName: "ExecuteDataApi"}).LayoutMetadata(ctx, "Customers")
		assert.ErrorIs(t, err, ErrNoHost)
	})

	t.Run("Payload", func(t *testing.T) {
		var payload map[string]any
		bridge := HostBridgeFunc(func(_ context.Context, script string, body []byte) ([]byte, error) {
			assert.Equal(t, "ExecuteDataApi", script)
			require.NoError(t, json.Unmarshal(body, &payload))
			return []byte(`{"response":{"data":[{"fieldData":{"name":"Ada"},"portalData":{},"recordId":"1","modId":"0"}],"dataInfo":{"foundCount":1}},"messages":[{"code":"0"}]}`), nil
		})
		RegisterHost(bridge)
		defer RegisterHost(nil)

		res, err := NewHostAdapter(HostOptions{ScriptName: "ExecuteDataApi"}).Get(ctx, "Customers", 1, GetParams{})
		require.NoError(t, err)
		require.Len(t, res.Data, 1)
		assert.Equal(t, "Ada", res.Data[0].FieldData["name"])
		assert.Equal(t, "Customers", payload["layouts"])
		assert.Equal(t, "read", payload["action"])
		assert.Equal(t, "vLatest", payload["version"])
		assert.Equal(t, "1", payload["recordId"])
	})

	t.Run("Error", func(t *testing.T) {
		bridge := HostBridgeFunc(func(context.Context, string, []byte) ([]byte, error) {
			return []byte(`{"messages":[{"code":"105","message":"Layout is missing"}]}`), nil
		})
		_, err := NewHostAdapter(HostOptions{ScriptName: "s", Bridge: bridge}).LayoutMetadata(ctx, "Nope")
		assert.True(t, IsLayoutMissing(err))
	})
}
