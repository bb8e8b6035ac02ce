package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"p2p_market/internal/domain"
	"p2p_market/internal/domain/entity"
	"p2p_market/internal/domain/service/offerbook"
	"p2p_market/internal/infrastructure/egress"
	"p2p_market/internal/server"
	"p2p_market/pkg/errcodes"
	"p2p_market/pkg/logx"
	"p2p_market/pkg/rest"
	"p2p_market/pkg/tests"
)

var capturedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeOfferBook struct {
	mu       sync.Mutex
	requests []offerbook.ReadRequest
	result   offerbook.Result
	toggles  []string
}

func (f *fakeOfferBook) GetOffers(_ context.Context, request offerbook.ReadRequest) offerbook.Result {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, request)

	return f.result
}

func (f *fakeOfferBook) ToggleAutoUpdate(_ context.Context, enabled bool, actor string) offerbook.Result {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.toggles = append(f.toggles, actor)

	if f.result.Err != nil {
		return f.result
	}

	return offerbook.Result{Success: true, AutoUpdate: enabled}
}

func newTestServer(t *testing.T, book *fakeOfferBook) tests.APIClient {
	t.Helper()

	s := server.NewServer(server.NewOffersServer(book), server.NewSettingsServer(book))
	ts := httptest.NewServer(server.NewRouter(s, logx.NewNopSensitiveDataMasker(), 0))
	t.Cleanup(ts.Close)

	return tests.NewAPIClient(ts.URL, ts.Client())
}

func TestGetV1Offers(t *testing.T) {
	rq := require.New(t)

	book := &fakeOfferBook{result: offerbook.Result{
		Success: true,
		Side:    entity.SideBuy,
		Offers: []entity.Offer{
			{
				ID:                "1",
				Side:              entity.SideBuy,
				Price:             decimal.RequireFromString("95.37"),
				MinAmount:         decimal.NewFromInt(500),
				MaxAmount:         decimal.NewFromInt(500),
				AvailableQuantity: decimal.RequireFromString("120.5"),
				MakerName:         "gold maker",
				PaymentMethods:    []string{"SBP", "Tinkoff"},
				IsTriangle:        true,
				MerchantTier:      entity.TierGold,
			},
			{ID: "2", Side: entity.SideBuy, Price: decimal.NewFromInt(95), MerchantTier: entity.TierNone},
		},
		Source:      offerbook.SourceStore,
		PagesLoaded: 2,
		CapturedAt:  capturedAt,
		AutoUpdate:  true,
	}}

	client := newTestServer(t, book)

	var response rest.OffersResponse

	resp, err := client.Get(context.Background(), "/v1/offers", url.Values{
		"side":  {"0"},
		"force": {"true"},
	}, &response, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.Equal("*", resp.Header.Get("Access-Control-Allow-Origin"))
	rq.NotEmpty(resp.Header.Get("X-Trace-Id"))

	rq.Equal([]offerbook.ReadRequest{{Side: entity.SideBuy, Force: true}}, book.requests)

	rq.True(response.Success)
	rq.Equal(2, response.Total)
	rq.Equal("buy", response.Side)
	rq.Equal("store", response.Source)
	rq.Equal(2, response.PagesLoaded)
	rq.True(response.AutoUpdateEnabled)
	rq.True(capturedAt.Equal(response.CapturedAt))

	gold := response.Offers[0]
	rq.Equal("95.37", string(gold.Price))
	rq.Equal("120.5", string(gold.Quantity))
	rq.True(gold.IsMerchant)
	rq.True(gold.IsTriangle)
	rq.NotNil(gold.MerchantType)
	rq.Equal("gold", *gold.MerchantType)
	rq.Equal("vaGoldIcon", *gold.MerchantBadge)
	rq.Equal([]string{"SBP", "Tinkoff"}, gold.PaymentMethods)

	plain := response.Offers[1]
	rq.False(plain.IsMerchant)
	rq.Nil(plain.MerchantType)
	rq.Nil(plain.MerchantBadge)
	rq.Empty(plain.PaymentMethods)
}

func TestGetV1OffersDefaultsToSell(t *testing.T) {
	rq := require.New(t)

	book := &fakeOfferBook{result: offerbook.Result{Success: true, Side: entity.SideSell}}
	client := newTestServer(t, book)

	var response rest.OffersResponse

	_, err := client.Get(context.Background(), "/v1/offers", nil, &response, nil)
	rq.NoError(err)
	rq.Equal([]offerbook.ReadRequest{{Side: entity.SideSell}}, book.requests)
	rq.NotNil(response.Offers)
	rq.Empty(response.Offers)
}

func TestGetV1OffersErrors(t *testing.T) {
	testCases := []struct {
		name       string
		query      url.Values
		result     offerbook.Result
		wantStatus int
		wantCode   string
	}{
		{
			name:       "invalid side",
			query:      url.Values{"side": {"up"}},
			wantStatus: http.StatusBadRequest,
			wantCode:   string(errcodes.InvalidSide),
		},
		{
			name:       "invalid flag",
			query:      url.Values{"side": {"sell"}, "quick": {"maybe"}},
			wantStatus: http.StatusBadRequest,
			wantCode:   string(errcodes.ValidationError),
		},
		{
			name:       "no data",
			query:      url.Values{"side": {"sell"}},
			result:     offerbook.Result{Err: domain.NewError(errcodes.NoData, "no data yet for this side")},
			wantStatus: http.StatusNotFound,
			wantCode:   string(errcodes.NoData),
		},
		{
			name:       "marketplace unreachable",
			query:      url.Values{"side": {"buy"}},
			result:     offerbook.Result{Err: domain.NewError(errcodes.MarketplaceUnreachable, "marketplace unreachable")},
			wantStatus: http.StatusBadGateway,
			wantCode:   string(errcodes.MarketplaceUnreachable),
		},
		{
			name:       "store unavailable",
			query:      url.Values{"side": {"buy"}},
			result:     offerbook.Result{Err: domain.NewError(errcodes.StoreUnavailable, "store unavailable")},
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   string(errcodes.StoreUnavailable),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			client := newTestServer(t, &fakeOfferBook{result: tc.result})

			var errResponse rest.Error

			resp, err := client.Get(context.Background(), "/v1/offers", tc.query, nil, &errResponse)
			rq.NoError(err)
			rq.Equal(tc.wantStatus, resp.StatusCode)
			rq.False(errResponse.Success)
			rq.Equal(tc.wantCode, string(errResponse.Code))
			rq.NotEmpty(errResponse.SupportID)
		})
	}
}

func TestGetV1OffersStatus(t *testing.T) {
	rq := require.New(t)

	book := &fakeOfferBook{result: offerbook.Result{
		Success: true,
		Status: &offerbook.Status{
			AutoUpdateEnabled: false,
			StoreAvailable:    true,
			Sides: []offerbook.SideStatus{
				{Side: entity.SideSell, Stored: true, LastUpdate: capturedAt, OffersCount: 300, Age: 45 * time.Second},
				{Side: entity.SideBuy, Cached: true, CacheAge: 5 * time.Second},
			},
			Egress: egress.StatsSnapshot{TotalRequests: 4, SuccessfulRequests: 3, SuccessRate: 75, ProxyUsageRate: 50},
		},
	}}

	client := newTestServer(t, book)

	var response rest.StatusResponse

	_, err := client.Get(context.Background(), "/v1/offers", url.Values{"status": {"true"}}, &response, nil)
	rq.NoError(err)
	rq.Equal([]offerbook.ReadRequest{{StatusOnly: true}}, book.requests)

	rq.True(response.Success)
	rq.False(response.AutoUpdateEnabled)
	rq.True(response.StoreAvailable)
	rq.InDelta(75.0, response.Stats.SuccessRate, 0.001)
	rq.Equal(uint64(4), response.Stats.TotalRequests)
	rq.Len(response.Sides, 2)

	sell := response.Sides[0]
	rq.Equal(300, sell.OffersCount)
	rq.NotNil(sell.AgeSeconds)
	rq.InDelta(45.0, *sell.AgeSeconds, 0.001)
	rq.Nil(sell.CacheAgeSeconds)

	buy := response.Sides[1]
	rq.Nil(buy.LastUpdate)
	rq.Nil(buy.AgeSeconds)
	rq.NotNil(buy.CacheAgeSeconds)
}

func TestPostV1Settings(t *testing.T) {
	rq := require.New(t)

	book := &fakeOfferBook{}
	client := newTestServer(t, book)

	var response rest.SettingsResponse

	resp, err := client.PostJSON(
		context.Background(),
		"/v1/settings",
		http.Header{"X-Actor": {"ops"}},
		`{"action":"toggle_auto_update","enabled":false}`,
		&response,
		nil,
	)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.True(response.Success)
	rq.False(response.AutoUpdateEnabled)
	rq.Equal([]string{"ops"}, book.toggles)

	_, err = client.PostJSON(
		context.Background(),
		"/v1/settings",
		nil,
		`{"action":"toggle_auto_update","enabled":true}`,
		&response,
		nil,
	)
	rq.NoError(err)
	rq.True(response.AutoUpdateEnabled)
	rq.Equal([]string{"ops", "api"}, book.toggles)
}

func TestPostV1SettingsErrors(t *testing.T) {
	testCases := []struct {
		name       string
		body       string
		result     offerbook.Result
		wantStatus int
		wantCode   string
	}{
		{
			name:       "unknown action",
			body:       `{"action":"reboot","enabled":true}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   string(errcodes.ValidationError),
		},
		{
			name:       "missing enabled",
			body:       `{"action":"toggle_auto_update"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   string(errcodes.ValidationError),
		},
		{
			name:       "broken json",
			body:       `{"action":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   string(errcodes.ValidationError),
		},
		{
			name:       "store unavailable",
			body:       `{"action":"toggle_auto_update","enabled":true}`,
			result:     offerbook.Result{Err: domain.NewError(errcodes.StoreUnavailable, "failed to save auto update setting")},
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   string(errcodes.StoreUnavailable),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			client := newTestServer(t, &fakeOfferBook{result: tc.result})

			var errResponse rest.Error

			resp, err := client.PostJSON(context.Background(), "/v1/settings", nil, tc.body, nil, &errResponse)
			rq.NoError(err)
			rq.Equal(tc.wantStatus, resp.StatusCode)
			rq.Equal(tc.wantCode, string(errResponse.Code))
		})
	}
}

func TestPreflight(t *testing.T) {
	rq := require.New(t)

	book := &fakeOfferBook{}
	s := server.NewServer(server.NewOffersServer(book), server.NewSettingsServer(book))
	h := server.NewRouter(s, logx.NewNopSensitiveDataMasker(), 0)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/v1/settings", http.NoBody))

	rq.Equal(http.StatusOK, rec.Code)
	rq.Equal("*", rec.Header().Get("Access-Control-Allow-Origin"))
	rq.Equal("GET, POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	rq.Empty(book.toggles)
}
