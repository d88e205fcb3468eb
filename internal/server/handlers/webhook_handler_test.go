package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alx-707/whatsapp-webhook-pipeline/internal/domain/models"
	service "github.com/Alx-707/whatsapp-webhook-pipeline/internal/service/events"
	"github.com/Alx-707/whatsapp-webhook-pipeline/internal/webhook"
)

type fakeIngestService struct {
	verifyResp   string
	verifyErr    error
	handleResult webhook.ParseResult
	handleErr    error
	queryResult  []models.WebhookEvent
	queryErr     error
	statsResult  models.EventStatistics

	gotBody      []byte
	gotSignature string
	gotFilter    models.EventFilter
	gotLimit     int64
}

func (f *fakeIngestService) VerifyWebhookToken(_, _, _ string) (string, error) {
	return f.verifyResp, f.verifyErr
}

func (f *fakeIngestService) HandleWebhook(_ context.Context, rawBody []byte, signatureHeader string) (webhook.ParseResult, error) {
	f.gotBody = rawBody
	f.gotSignature = signatureHeader
	return f.handleResult, f.handleErr
}

func (f *fakeIngestService) QueryEvents(_ context.Context, filter models.EventFilter, limit int64) ([]models.WebhookEvent, error) {
	f.gotFilter = filter
	f.gotLimit = limit
	return f.queryResult, f.queryErr
}

func (f *fakeIngestService) Statistics(_ context.Context, filter models.EventFilter) (models.EventStatistics, error) {
	f.gotFilter = filter
	return f.statsResult, nil
}

func newTestRouter(svc service.IngestService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewWebhookHandler(svc, nil)

	r := gin.New()
	r.GET("/webhook", handler.Verify)
	r.POST("/webhook", handler.Receive)
	r.GET("/events", handler.ListEvents)
	r.GET("/events/stats", handler.Stats)
	return r
}

func TestVerify_EchoesChallenge(t *testing.T) {
	svc := &fakeIngestService{verifyResp: "challenge-42"}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=tok&hub.challenge=challenge-42", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "challenge-42", rec.Body.String())
}

func TestVerify_Forbidden(t *testing.T) {
	svc := &fakeIngestService{verifyErr: errors.New("invalid verify token")}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=bad&hub.challenge=x", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestReceive_PassesRawBodyAndSignature(t *testing.T) {
	svc := &fakeIngestService{handleResult: webhook.ParseResult{Success: true}}
	router := newTestRouter(svc)

	body := `{"object":"whatsapp_business_account","entry":[]}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set("X-Hub-Signature-256", "sha256=abc")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, body, string(svc.gotBody))
	assert.Equal(t, "sha256=abc", svc.gotSignature)
	assert.Contains(t, rec.Body.String(), `"success":true`)
}

func TestReceive_SignatureMismatch(t *testing.T) {
	svc := &fakeIngestService{handleErr: service.ErrInvalidSignature}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestReceive_InvalidPayload(t *testing.T) {
	svc := &fakeIngestService{handleErr: &service.ValidationError{
		Result: webhook.ValidationResult{Errors: []string{"entry must be an array"}},
	}}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "entry must be an array")
}

func TestReceive_InternalError(t *testing.T) {
	svc := &fakeIngestService{handleErr: errors.New("mongo down")}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestListEvents_BindsFilterAndLimit(t *testing.T) {
	svc := &fakeIngestService{queryResult: []models.WebhookEvent{
		{Type: models.EventMessageReceived, Timestamp: time.Now()},
	}}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/events?type=message_received&phone_number_id=pn-1&limit=5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []models.EventType{models.EventMessageReceived}, svc.gotFilter.EventTypes)
	assert.Equal(t, []string{"pn-1"}, svc.gotFilter.PhoneNumberIDs)
	assert.Equal(t, int64(5), svc.gotLimit)
	assert.Contains(t, rec.Body.String(), `"count":1`)
}

func TestListEvents_RejectsBadLimit(t *testing.T) {
	// A zero limit would disable the repository cap entirely, so it is
	// rejected along with garbage and negatives.
	for _, raw := range []string{"banana", "-1", "0"} {
		t.Run(raw, func(t *testing.T) {
			router := newTestRouter(&fakeIngestService{})

			req := httptest.NewRequest(http.MethodGet, "/events?limit="+raw, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestListEvents_CapsOversizedLimit(t *testing.T) {
	svc := &fakeIngestService{}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/events?limit=50000", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(maxQueryLimit), svc.gotLimit)
}

func TestStats_ReturnsSummary(t *testing.T) {
	svc := &fakeIngestService{statsResult: models.EventStatistics{
		TotalEvents:  3,
		CountsByType: map[models.EventType]int{models.EventMessageReceived: 3},
	}}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/events/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_events":3`)
}
