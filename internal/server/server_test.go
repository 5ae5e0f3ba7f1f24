package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	catalogdomain "github.com/smallbiznis/cushionly/internal/catalog/domain"
	"github.com/smallbiznis/cushionly/internal/config"
	pricingdomain "github.com/smallbiznis/cushionly/internal/pricing/domain"
	"github.com/smallbiznis/cushionly/internal/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePricingService struct {
	lastRequest   pricingdomain.QuoteRequest
	lastProfileID string
	invalidated   []string
	quoteErr      error
	configErr     error
}

func (f *fakePricingService) Configuration(_ context.Context, shop, profileID string) (*resolver.Configuration, error) {
	f.lastProfileID = profileID
	if f.configErr != nil {
		return nil, f.configErr
	}
	return &resolver.Configuration{}, nil
}

func (f *fakePricingService) Quote(_ context.Context, req pricingdomain.QuoteRequest) (*pricingdomain.Quote, error) {
	f.lastRequest = req
	if f.quoteErr != nil {
		return nil, f.quoteErr
	}
	return &pricingdomain.Quote{
		ID:         "01HZZZZZZZZZZZZZZZZZZZZZZZ",
		Shop:       req.Shop,
		FinalPrice: "182.85",
		Attributes: map[string]string{pricingdomain.CalculatedPriceAttribute: "182.85"},
	}, nil
}

func (f *fakePricingService) Invalidate(_ context.Context, shop string) error {
	f.invalidated = append(f.invalidated, shop)
	return nil
}

type fakeCatalogService struct {
	catalogdomain.Service

	deletedKind catalogdomain.EntityKind
	deletedID   snowflake.ID
	deleteErr   error
	tiersErr    error
}

func (f *fakeCatalogService) SaveShape(_ context.Context, shape *catalogdomain.Shape) ([]catalogdomain.ShapeDiagnostic, error) {
	shape.ID = 42
	return nil, nil
}

func (f *fakeCatalogService) Delete(_ context.Context, kind catalogdomain.EntityKind, _ string, id snowflake.ID) error {
	f.deletedKind = kind
	f.deletedID = id
	return f.deleteErr
}

func (f *fakeCatalogService) ReplacePriceTiers(_ context.Context, _ string, tiers []catalogdomain.PriceTier) ([]catalogdomain.PriceTier, error) {
	if f.tiersErr != nil {
		return nil, f.tiersErr
	}
	return tiers, nil
}

func newTestServer(t *testing.T, catalogSvc catalogdomain.Service, pricingSvc pricingdomain.Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	srv := NewServer(ServerParams{
		Gin:        NewEngine(config.Config{Environment: "test"}),
		Log:        zap.NewNop(),
		CatalogSvc: catalogSvc,
		PricingSvc: pricingSvc,
	})
	return srv.Engine()
}

func doJSON(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

func TestHealth(t *testing.T) {
	r := newTestServer(t, &fakeCatalogService{}, &fakePricingService{})

	rec := doJSON(t, r, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestCreateQuoteUsesShopFromPath(t *testing.T) {
	pricing := &fakePricingService{}
	r := newTestServer(t, &fakeCatalogService{}, pricing)

	body := `{"profile_id":" 7 ","fabric_id":"11","weatherproof":true,"add_ons":{"design":null},"pieces":[{"shape_id":"3","dimensions":{"length":20}}]}`
	rec := doJSON(t, r, http.MethodPost, "/api/shops/demo.myshopify.com/quotes", body)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "demo.myshopify.com", pricing.lastRequest.Shop)
	assert.Equal(t, "7", pricing.lastRequest.ProfileID)
	assert.True(t, pricing.lastRequest.Weatherproof)
	require.NotNil(t, pricing.lastRequest.FabricID)
	assert.Equal(t, snowflake.ID(11), *pricing.lastRequest.FabricID)
	require.Len(t, pricing.lastRequest.Pieces, 1)
	assert.Equal(t, 20.0, pricing.lastRequest.Pieces[0].Dimensions["length"])
	design, ok := pricing.lastRequest.AddOns[catalogdomain.AddOnDesign]
	assert.True(t, ok)
	assert.Nil(t, design)

	var resp struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "182.85", resp.Data["final_price"])
}

func TestCreateQuoteRejectsMalformedBody(t *testing.T) {
	r := newTestServer(t, &fakeCatalogService{}, &fakePricingService{})

	rec := doJSON(t, r, http.MethodPost, "/api/shops/demo/quotes", `{"pieces":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	payload := decodeError(t, rec)
	assert.Equal(t, "validation_error", payload.Type)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "invalid_request", payload.Errors[0].Code)
}

func TestCreateQuoteMapsDomainErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "invalid quote", err: pricingdomain.ErrInvalidQuote, status: http.StatusBadRequest, code: "invalid_quote"},
		{name: "too many pieces", err: pricingdomain.ErrTooManyPieces, status: http.StatusBadRequest, code: "too_many_pieces"},
		{name: "profile missing", err: pricingdomain.ErrProfileNotFound, status: http.StatusNotFound},
		{name: "storage failure", err: assert.AnError, status: http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestServer(t, &fakeCatalogService{}, &fakePricingService{quoteErr: tc.err})

			rec := doJSON(t, r, http.MethodPost, "/api/shops/demo/quotes", `{"pieces":[]}`)

			assert.Equal(t, tc.status, rec.Code)
			payload := decodeError(t, rec)
			if tc.code != "" {
				require.Len(t, payload.Errors, 1)
				assert.Equal(t, tc.code, payload.Errors[0].Code)
			}
			if tc.status == http.StatusInternalServerError {
				assert.Equal(t, "internal server error", payload.Message)
			}
		})
	}
}

func TestGetConfigurationPassesProfileID(t *testing.T) {
	pricing := &fakePricingService{}
	r := newTestServer(t, &fakeCatalogService{}, pricing)

	rec := doJSON(t, r, http.MethodGet, "/api/shops/demo/configuration?profile_id=12", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "12", pricing.lastProfileID)
}

func TestGetConfigurationInvalidProfile(t *testing.T) {
	pricing := &fakePricingService{configErr: pricingdomain.ErrInvalidID}
	r := newTestServer(t, &fakeCatalogService{}, pricing)

	rec := doJSON(t, r, http.MethodGet, "/api/shops/demo/configuration?profile_id=abc", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_id", decodeError(t, rec).Errors[0].Code)
}

func TestSaveShapeReturnsDiagnostics(t *testing.T) {
	r := newTestServer(t, &fakeCatalogService{}, &fakePricingService{})

	rec := doJSON(t, r, http.MethodPost, "/api/shops/demo/shapes", `{"name":"Box","surface_area_formula":"2*l*w"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Data struct {
			Shape       catalogdomain.Shape             `json:"shape"`
			Diagnostics []catalogdomain.ShapeDiagnostic `json:"diagnostics"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, snowflake.ID(42), resp.Data.Shape.ID)
	assert.Equal(t, "demo", resp.Data.Shape.Shop)
	assert.NotNil(t, resp.Data.Diagnostics)
}

func TestDeleteCatalogEntity(t *testing.T) {
	catalog := &fakeCatalogService{}
	r := newTestServer(t, catalog, &fakePricingService{})

	rec := doJSON(t, r, http.MethodDelete, "/api/shops/demo/fill-types/99", "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, catalogdomain.EntityFillType, catalog.deletedKind)
	assert.Equal(t, snowflake.ID(99), catalog.deletedID)
}

func TestDeleteCatalogEntityErrors(t *testing.T) {
	r := newTestServer(t, &fakeCatalogService{deleteErr: catalogdomain.ErrNotFound}, &fakePricingService{})

	assert.Equal(t, http.StatusNotFound, doJSON(t, r, http.MethodDelete, "/api/shops/demo/widgets/1", "").Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(t, r, http.MethodDelete, "/api/shops/demo/shapes/abc", "").Code)
	assert.Equal(t, http.StatusNotFound, doJSON(t, r, http.MethodDelete, "/api/shops/demo/shapes/5", "").Code)
}

func TestReplacePriceTiersRejectsOverlap(t *testing.T) {
	catalog := &fakeCatalogService{tiersErr: catalogdomain.ErrOverlappingTiers}
	r := newTestServer(t, catalog, &fakePricingService{})

	rec := doJSON(t, r, http.MethodPut, "/api/shops/demo/price-tiers", `{"tiers":[{"min_price":0,"max_price":100,"adjustment_percent":40},{"min_price":50,"adjustment_percent":20}]}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "overlapping_tiers", decodeError(t, rec).Errors[0].Code)
}

func TestInvalidateCache(t *testing.T) {
	pricing := &fakePricingService{}
	r := newTestServer(t, &fakeCatalogService{}, pricing)

	rec := doJSON(t, r, http.MethodPost, "/api/shops/demo/cache/invalidate", "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"demo"}, pricing.invalidated)
}

func TestClassifyErrorForLog(t *testing.T) {
	errorType, code := classifyErrorForLog(catalogdomain.ErrInvalidTierRange)
	assert.Equal(t, "validation_error", errorType)
	assert.Equal(t, "invalid_tier_range", code)

	errorType, code = classifyErrorForLog(assert.AnError)
	assert.Equal(t, "internal_error", errorType)
	assert.Equal(t, "internal_error", code)
}
