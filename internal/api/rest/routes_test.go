package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/Dhoini/storefront-service/internal/domain"
	"github.com/Dhoini/storefront-service/internal/events"
	"github.com/Dhoini/storefront-service/internal/metrics"
	"github.com/Dhoini/storefront-service/internal/repository"
	"github.com/Dhoini/storefront-service/internal/service"
	"github.com/Dhoini/storefront-service/internal/storage"
	"github.com/Dhoini/storefront-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	router *gin.Engine
	images *storage.LocalStore
}

func newTestAPI(t *testing.T, policy service.OrderPolicy) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.Nop()
	store := repository.NewMemoryStore(log)
	registry := prometheus.NewRegistry()
	m := metrics.NewStorefrontMetrics(registry, log)
	publisher := events.NopPublisher{}

	images, err := storage.NewLocalStore(t.TempDir(), "/public", 64, log)
	require.NoError(t, err)

	orders := service.NewOrderService(store, policy, nil, publisher, m, log)
	router := SetupRouter(Services{
		Customers: service.NewCustomerService(store, orders, publisher, m, log),
		Products:  service.NewProductService(store.Products, images, m, log),
		Services:  service.NewServiceService(store.Services, images, m, log),
		Orders:    orders,
		Health:    store,
	}, RouterConfig{
		PublicPrefix: "/public",
		StaticDir:    images.Dir(),
		Registry:     registry,
		Metrics:      m,
	}, log)

	return &testAPI{router: router, images: images}
}

func (a *testAPI) do(t *testing.T, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.RemoteAddr = "192.0.2.10:52311"
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) doJSON(t *testing.T, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	return a.do(t, method, path, body, "application/json")
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type filePart struct {
	field, name, contentType string
	data                     []byte
}

// multipartBody builds a form whose file parts carry their own content type
func multipartBody(t *testing.T, fields map[string]string, files ...filePart) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.field, f.name))
		h.Set("Content-Type", f.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	return &buf, w.FormDataContentType()
}

var customerPayload = map[string]string{
	"email":   "ada@example.com",
	"name":    "Ada Lovelace",
	"mobile":  "+1 555 0100",
	"address": "1 Main St",
	"zipcode": "10001",
}

func orderPayload(orderType, productID string, amount float64) map[string]any {
	return map[string]any{
		"productId":   productID,
		"name":        "Ada Lovelace",
		"email":       "ada@example.com",
		"phone":       "+1 555 0100",
		"address":     "1 Main St",
		"zipcode":     "10001",
		"totalAmount": amount,
		"orderType":   orderType,
	}
}

func TestCustomerRoutes(t *testing.T) {
	api := newTestAPI(t, service.OrderPolicy{})

	rec := api.doJSON(t, http.MethodPost, "/api/customers", customerPayload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[domain.Customer](t, rec)
	assert.Equal(t, "192.0.2.10", created.IPAddress)
	assert.Equal(t, []string{}, created.Orders)

	rec = api.doJSON(t, http.MethodPost, "/api/customers", customerPayload)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = api.doJSON(t, http.MethodPut, "/api/customers/"+created.ID, map[string]string{"name": "Ada King"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ada King", decode[domain.Customer](t, rec).Name)

	rec = api.doJSON(t, http.MethodGet, "/api/customers", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Customer](t, rec), 1)

	rec = api.doJSON(t, http.MethodDelete, "/api/customers/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Customer deleted"}`, rec.Body.String())

	rec = api.doJSON(t, http.MethodGet, "/api/customers/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestErrorResponses(t *testing.T) {
	api := newTestAPI(t, service.OrderPolicy{})

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"malformed id", http.MethodGet, "/api/customers/42", "", http.StatusBadRequest},
		{"unknown id", http.MethodGet, "/api/orders/6f1c1f3e-2b7a-4c1e-9a55-3b1d2f0e9c11", "", http.StatusNotFound},
		{"malformed json", http.MethodPost, "/api/customers", `{"email":`, http.StatusBadRequest},
		{"empty body", http.MethodPost, "/api/orders", "", http.StatusBadRequest},
		{"bad populate flag", http.MethodGet, "/api/orders?populate=maybe", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(t, tt.method, tt.path, strings.NewReader(tt.body), "application/json")
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.NotEmpty(t, decode[map[string]any](t, rec)["error"])
		})
	}
}

func TestValidationDetails(t *testing.T) {
	api := newTestAPI(t, service.OrderPolicy{})

	rec := api.doJSON(t, http.MethodPost, "/api/customers", map[string]string{"email": "nope"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode[struct {
		Error   string                   `json:"error"`
		Details []domain.ValidationError `json:"details"`
	}](t, rec)
	assert.Equal(t, "validation failed", body.Error)

	fields := make([]string, 0, len(body.Details))
	for _, d := range body.Details {
		fields = append(fields, d.Field)
	}
	assert.ElementsMatch(t, []string{"email", "name", "mobile", "address", "zipcode"}, fields)
}

func TestProductRoutes(t *testing.T) {
	api := newTestAPI(t, service.OrderPolicy{})
	fields := map[string]string{"name": "Mug", "price": "12.50", "category": "kitchen"}

	body, ct := multipartBody(t, fields, filePart{"image", "mug.png", "image/png", []byte("png-bytes")})
	rec := api.do(t, http.MethodPost, "/api/products", body, ct)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	product := decode[domain.Product](t, rec)
	assert.Equal(t, "kitchen", product.Category)
	require.True(t, strings.HasPrefix(product.Image, "/public/"))

	rec = api.do(t, http.MethodGet, product.Image, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png-bytes", rec.Body.String())

	body, ct = multipartBody(t, fields, filePart{"image", "notes.txt", "text/plain", []byte("hello")})
	rec = api.do(t, http.MethodPost, "/api/products", body, ct)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	body, ct = multipartBody(t, fields, filePart{"image", "big.png", "image/png", bytes.Repeat([]byte("x"), 65)})
	rec = api.do(t, http.MethodPost, "/api/products", body, ct)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = api.doJSON(t, http.MethodPost, "/api/products", map[string]string{"name": "Spoon", "price": "2"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Empty(t, decode[domain.Product](t, rec).Image)

	rec = api.doJSON(t, http.MethodPut, "/api/products/"+product.ID, map[string]string{"price": "abc"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.doJSON(t, http.MethodDelete, "/api/products/"+product.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = api.do(t, http.MethodGet, product.Image, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestImagePathsAreNotPatchable(t *testing.T) {
	api := newTestAPI(t, service.OrderPolicy{})

	body, ct := multipartBody(t, map[string]string{"name": "Bowl", "price": "8"},
		filePart{"image", "b.png", "image/png", []byte("bowl")})
	rec := api.do(t, http.MethodPost, "/api/products", body, ct)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	owner := decode[domain.Product](t, rec)

	rec = api.doJSON(t, http.MethodPost, "/api/products", map[string]string{"name": "Plate", "price": "4"})
	require.Equal(t, http.StatusCreated, rec.Code)
	other := decode[domain.Product](t, rec)

	rec = api.doJSON(t, http.MethodPut, "/api/products/"+other.ID, map[string]string{"image": owner.Image, "name": "Big plate"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[domain.Product](t, rec)
	assert.Equal(t, "Big plate", updated.Name)
	assert.Empty(t, updated.Image)

	body, ct = multipartBody(t, map[string]string{"name": "Yoga", "description": "Morning class", "price": "20"})
	rec = api.do(t, http.MethodPost, "/api/services", body, ct)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	svc := decode[domain.Service](t, rec)

	rec = api.doJSON(t, http.MethodPut, "/api/services/"+svc.ID, map[string]any{"images": []string{owner.Image}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, decode[domain.Service](t, rec).Images)

	// Deleting the other entities leaves the owner's file in place
	require.Equal(t, http.StatusOK, api.doJSON(t, http.MethodDelete, "/api/products/"+other.ID, nil).Code)
	require.Equal(t, http.StatusOK, api.doJSON(t, http.MethodDelete, "/api/services/"+svc.ID, nil).Code)

	rec = api.do(t, http.MethodGet, owner.Image, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "bowl", rec.Body.String())
}

func TestServiceRoutes(t *testing.T) {
	api := newTestAPI(t, service.OrderPolicy{})
	fields := map[string]string{
		"name":        "Yoga",
		"description": "Morning class",
		"price":       "20",
		"offers":      `[{"name":"Trial","price":"5","description":"First visit"}]`,
	}

	body, ct := multipartBody(t, fields,
		filePart{"images", "a.png", "image/png", []byte("a")},
		filePart{"images", "b.jpg", "image/jpeg", []byte("b")},
	)
	rec := api.do(t, http.MethodPost, "/api/services", body, ct)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[domain.Service](t, rec)
	require.Len(t, created.Images, 2)
	assert.True(t, strings.HasSuffix(created.Images[0], "-a.png"))
	assert.Equal(t, []domain.Offer{{Name: "Trial", Price: "5", Description: "First visit"}}, created.Offers)

	fields["offers"] = `[{"name":"Trial"}]`
	body, ct = multipartBody(t, fields, filePart{"images", "c.png", "image/png", []byte("c")})
	rec = api.do(t, http.MethodPost, "/api/services", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	fields["offers"] = `not json`
	body, ct = multipartBody(t, fields)
	rec = api.do(t, http.MethodPost, "/api/services", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.doJSON(t, http.MethodPut, "/api/services/"+created.ID, map[string]any{"offers": []domain.Offer{}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[domain.Service](t, rec).Offers)
}

func TestOrderRoutes(t *testing.T) {
	api := newTestAPI(t, service.OrderPolicy{StrictReferences: true, Status: domain.StatusPolicy{Strict: true}})

	rec := api.doJSON(t, http.MethodPost, "/api/products", map[string]string{"name": "Mug", "price": "12.50"})
	require.Equal(t, http.StatusCreated, rec.Code)
	product := decode[domain.Product](t, rec)

	rec = api.doJSON(t, http.MethodPost, "/api/orders", orderPayload("product", "", 10))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.doJSON(t, http.MethodPost, "/api/orders", orderPayload("product", product.ID, 10))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decode[domain.Order](t, rec)
	assert.Equal(t, domain.StatusPending, order.OrderStatus)

	rec = api.doJSON(t, http.MethodGet, "/api/orders", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	views := decode[[]domain.OrderView](t, rec)
	require.Len(t, views, 1)
	require.NotNil(t, views[0].Product)
	assert.Equal(t, "Mug", views[0].Product.Name)

	rec = api.doJSON(t, http.MethodGet, "/api/orders/"+order.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode[domain.OrderView](t, rec).Product)

	rec = api.doJSON(t, http.MethodPut, "/api/orders/"+order.ID, map[string]string{"orderStatus": "Completed"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.doJSON(t, http.MethodPut, "/api/orders/"+order.ID, map[string]string{"orderStatus": "Confirmed"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.StatusConfirmed, decode[domain.Order](t, rec).OrderStatus)

	rec = api.doJSON(t, http.MethodDelete, "/api/orders/"+order.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCustomerOrderRoutes(t *testing.T) {
	api := newTestAPI(t, service.OrderPolicy{})

	rec := api.doJSON(t, http.MethodPost, "/api/customers", customerPayload)
	require.Equal(t, http.StatusCreated, rec.Code)
	customer := decode[domain.Customer](t, rec)

	rec = api.doJSON(t, http.MethodPost, "/api/customers/"+customer.ID+"/orders", orderPayload("product", "", 30))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	placed := decode[service.PlacedOrder](t, rec)
	assert.Equal(t, []string{placed.Order.ID}, placed.Customer.Orders)

	rec = api.doJSON(t, http.MethodPost, "/api/orders", orderPayload("service", "", 15))
	require.Equal(t, http.StatusCreated, rec.Code)
	second := decode[domain.Order](t, rec)

	path := "/api/customers/" + customer.ID + "/orders/" + second.ID
	for range 2 {
		rec = api.doJSON(t, http.MethodPut, path, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	assert.Equal(t, []string{placed.Order.ID, second.ID}, decode[domain.Customer](t, rec).Orders)
}

func TestHealthAndMetrics(t *testing.T) {
	api := newTestAPI(t, service.OrderPolicy{})

	rec := api.do(t, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", decode[map[string]any](t, rec)["status"])

	rec = api.do(t, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `storefront_http_requests_total{method="GET",route="/health",status="200"} 1`)
}
