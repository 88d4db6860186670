package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productPageHTML = `<html><body>
<span id="productTitle">
	Беспроводные наушники XYZ-100
</span>
<div class="a-price"><span class="a-offscreen">¥12,345</span></div>
</body></html>`

func newPageServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

// ===================== Fetch Tests =====================

func TestFetch_Success(t *testing.T) {
	srv := newPageServer(t, http.StatusOK, productPageHTML)
	defer srv.Close()

	client := NewScraperClient("test-agent", 5)

	snapshot, err := client.Fetch(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "Беспроводные наушники XYZ-100", snapshot.Name)
	assert.Equal(t, 12345, snapshot.Price)
	assert.Equal(t, srv.URL, snapshot.URL)
}

func TestFetch_SendsUserAgent(t *testing.T) {
	var gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(productPageHTML))
	}))
	defer srv.Close()

	client := NewScraperClient("pricewatch-agent", 5)

	_, err := client.Fetch(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "pricewatch-agent", gotAgent)
}

func TestFetch_TitleNotFound(t *testing.T) {
	html := `<html><body><div class="a-price"><span class="a-offscreen">¥100</span></div></body></html>`
	srv := newPageServer(t, http.StatusOK, html)
	defer srv.Close()

	client := NewScraperClient("test-agent", 5)

	snapshot, err := client.Fetch(context.Background(), srv.URL)

	assert.Nil(t, snapshot)
	assert.ErrorIs(t, err, ErrTitleNotFound)
}

func TestFetch_PriceNotFound(t *testing.T) {
	html := `<html><body><span id="productTitle">Widget</span></body></html>`
	srv := newPageServer(t, http.StatusOK, html)
	defer srv.Close()

	client := NewScraperClient("test-agent", 5)

	snapshot, err := client.Fetch(context.Background(), srv.URL)

	assert.Nil(t, snapshot)
	assert.ErrorIs(t, err, ErrPriceNotFound)
}

func TestFetch_PriceUnparseable(t *testing.T) {
	html := `<html><body>
<span id="productTitle">Widget</span>
<div class="a-price"><span class="a-offscreen">цена по запросу</span></div>
</body></html>`
	srv := newPageServer(t, http.StatusOK, html)
	defer srv.Close()

	client := NewScraperClient("test-agent", 5)

	snapshot, err := client.Fetch(context.Background(), srv.URL)

	assert.Nil(t, snapshot)
	assert.ErrorIs(t, err, ErrPriceUnparseable)
}

func TestFetch_NonOKStatus(t *testing.T) {
	srv := newPageServer(t, http.StatusServiceUnavailable, "")
	defer srv.Close()

	client := NewScraperClient("test-agent", 5)

	snapshot, err := client.Fetch(context.Background(), srv.URL)

	assert.Nil(t, snapshot)
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestFetch_ConnectionRefused(t *testing.T) {
	srv := newPageServer(t, http.StatusOK, productPageHTML)
	srv.Close() // сервер уже закрыт - соединение откажет

	client := NewScraperClient("test-agent", 5)

	snapshot, err := client.Fetch(context.Background(), srv.URL)

	assert.Nil(t, snapshot)
	assert.ErrorIs(t, err, ErrUnreachable)
}

// ===================== parsePrice Tests =====================

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    int
		wantErr bool
	}{
		{name: "yen with comma", text: "¥12,345", want: 12345},
		{name: "dollars with cents", text: "$56.00", want: 5600},
		{name: "plain digits", text: "1000", want: 1000},
		{name: "whitespace around", text: "  ¥799 ", want: 799},
		{name: "no digits", text: "N/A", wantErr: true},
		{name: "empty", text: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePrice(tt.text)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
