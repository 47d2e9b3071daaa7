package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopsync/internal/config"
	"shopsync/internal/constants"
	"shopsync/internal/destination"
	"shopsync/internal/mapper"
	"shopsync/internal/schema"
	"shopsync/internal/signature"
	syncsvc "shopsync/internal/sync"
	"shopsync/internal/tenant"
)

const webhookSecret = "integration-webhook-secret"

const orderPayload = `{
	"id": 820982911946154500,
	"order_number": 1234,
	"name": "#1234",
	"email": "jane@example.com",
	"total_price": "254.98",
	"currency": "EUR",
	"financial_status": "paid",
	"fulfillment_status": "fulfilled",
	"line_items": [
		{"title": "Espresso Machine", "quantity": 1},
		{"title": "Coffee Beans", "quantity": 2}
	],
	"created_at": "2025-06-01T10:30:00Z"
}`

type pageCapture struct {
	mu    sync.Mutex
	pages []map[string]interface{}
}

func (p *pageCapture) add(page map[string]interface{}) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pages = append(p.pages, page)
	return len(p.pages)
}

func (p *pageCapture) databaseIDs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var ids []string
	for _, page := range p.pages {
		parent := page["parent"].(map[string]interface{})
		ids = append(ids, parent["database_id"].(string))
	}
	return ids
}

func newDestinationServer(t *testing.T, capture *pageCapture) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/databases/", func(w http.ResponseWriter, r *http.Request) {
		databaseID := strings.TrimPrefix(r.URL.Path, "/v1/databases/")
		fmt.Fprintf(w, `{
			"id": %q,
			"properties": {
				"Order": {"type": "title"},
				"Total": {"type": "number"},
				"Currency": {"type": "select"},
				"Email": {"type": "email"}
			}
		}`, databaseID)
	})
	mux.HandleFunc("/v1/pages", func(w http.ResponseWriter, r *http.Request) {
		var page map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&page); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		n := capture.add(page)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id": "page-%d"}`, n)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestOrderWebhookSyncsToAllBoundTenants(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)
	ctx := context.Background()
	log := createTestLogger()

	repo := tenant.NewPostgresRepository(infra.PostgresDB)
	require.NoError(t, repo.CreateBinding(ctx, createTestBinding("acme-store", "db-aaa")))
	require.NoError(t, repo.CreateBinding(ctx, createTestBinding("acme-store", "db-bbb")))

	capture := &pageCapture{}
	server := newDestinationServer(t, capture)

	client := destination.NewHTTPClient(config.DestinationConfig{
		BaseURL:        server.URL,
		APIVersion:     "2022-06-28",
		TimeoutSeconds: 5,
	}, nil, log)

	resolver := tenant.NewResolver(repo, ".myshopify.com", log)
	introspector := schema.NewIntrospector(client, nil, 60, log)
	orderMapper := mapper.New(mapper.Config{HighValueThreshold: 100})

	service := syncsvc.NewService(
		resolver, introspector, client, orderMapper,
		webhookSecret, config.FallbackDestination{}, nil, log,
	)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	syncsvc.NewHandler(service, introspector, "client-secret", log).RegisterRoutes(router)

	body := []byte(orderPayload)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/orders", bytes.NewReader(body))
	req.Header.Set(constants.HeaderWebhookSignature, signature.Sign(body, webhookSecret, signature.ModeBase64))
	req.Header.Set(constants.HeaderShopDomain, "acme-store.myshopify.com")
	req.Header.Set(constants.HeaderWebhookTopic, "orders/create")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result syncsvc.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.SyncedToTenants)
	assert.Equal(t, 2, result.TotalTenants)

	assert.ElementsMatch(t, []string{"db-aaa", "db-bbb"}, capture.databaseIDs())

	props := capture.pages[0]["properties"].(map[string]interface{})
	title := props["Order"].(map[string]interface{})
	assert.NotNil(t, title["title"])
	assert.Contains(t, props, "Total")
	assert.Contains(t, props, "Email")
}

func TestOrderWebhookRejectsBadSignature(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, true, false, false)
	log := createTestLogger()

	repo := tenant.NewPostgresRepository(infra.PostgresDB)

	capture := &pageCapture{}
	server := newDestinationServer(t, capture)

	client := destination.NewHTTPClient(config.DestinationConfig{
		BaseURL:        server.URL,
		TimeoutSeconds: 5,
	}, nil, log)

	resolver := tenant.NewResolver(repo, ".myshopify.com", log)
	introspector := schema.NewIntrospector(client, nil, 60, log)
	orderMapper := mapper.New(mapper.Config{HighValueThreshold: 100})

	service := syncsvc.NewService(
		resolver, introspector, client, orderMapper,
		webhookSecret, config.FallbackDestination{}, nil, log,
	)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	syncsvc.NewHandler(service, introspector, "client-secret", log).RegisterRoutes(router)

	body := []byte(orderPayload)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/orders", bytes.NewReader(body))
	req.Header.Set(constants.HeaderWebhookSignature, "bm90LXRoZS1yZWFsLXNpZ25hdHVyZQ==")
	req.Header.Set(constants.HeaderShopDomain, "acme-store.myshopify.com")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, capture.pages)
}
