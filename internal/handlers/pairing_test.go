package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/otcheredev/call-panel-gateway/internal/models"
	"github.com/otcheredev/call-panel-gateway/internal/pairing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPairingFixture(registryErr error) (*PairingHandler, *fakeRegistry, *recordingAudit, *models.Channel) {
	channel := &models.Channel{TenantID: uuid.New(), Slug: "clinic-a", APIKey: "channel-secret", IsActive: true}
	channels := &fakeChannels{channels: map[string]*models.Channel{"clinic-a": channel}}
	registry := &fakeRegistry{err: registryErr}
	audit := &recordingAudit{}
	return NewPairingHandler(channels, registry, audit, NewValidator()), registry, audit, channel
}

func pairingRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/pairing/validate", strings.NewReader(body))
	req.Header.Set("User-Agent", "operator-console")
	return req
}

func TestPairingValidateSuccess(t *testing.T) {
	h, registry, audit, channel := newPairingFixture(nil)

	rec := httptest.NewRecorder()
	h.Validate(rec, pairingRequest(`{"code":"123456","channelSlug":"clinic-a"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"message":"Paired successfully"}`, rec.Body.String())

	assert.Equal(t, "123456", registry.code)
	assert.Equal(t, "clinic-a", registry.slug)
	assert.Equal(t, "channel-secret", registry.secret)

	entry := audit.last()
	require.NotNil(t, entry)
	assert.Equal(t, models.AuditPairingValidate, entry.Action)
	assert.Equal(t, models.AuditStatusSuccess, entry.Status)
	assert.Equal(t, channel.TenantID, *entry.TenantID)
	assert.Equal(t, "operator-console", entry.UserAgent)
}

func TestPairingValidateExpiredCode(t *testing.T) {
	h, _, audit, _ := newPairingFixture(pairing.ErrExpiredOrInvalidCode)

	rec := httptest.NewRecorder()
	h.Validate(rec, pairingRequest(`{"code":"654321","channelSlug":"clinic-a"}`))

	require.Equal(t, http.StatusGone, rec.Code)
	var resp failure
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid or expired code", resp.Error)

	entry := audit.last()
	require.NotNil(t, entry)
	assert.Equal(t, models.AuditStatusFailure, entry.Status)
	assert.NotEmpty(t, entry.ErrorMessage)
}

func TestPairingValidateUnknownChannel(t *testing.T) {
	h, registry, audit, _ := newPairingFixture(nil)

	rec := httptest.NewRecorder()
	h.Validate(rec, pairingRequest(`{"code":"123456","channelSlug":"nowhere"}`))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, registry.code)
	require.NotNil(t, audit.last())
	assert.Equal(t, "nowhere", audit.last().ChannelSlug)
}

func TestPairingValidateRegistryFailure(t *testing.T) {
	h, _, _, _ := newPairingFixture(errors.New("redis: connection refused"))

	rec := httptest.NewRecorder()
	h.Validate(rec, pairingRequest(`{"code":"123456","channelSlug":"clinic-a"}`))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestPairingValidateBadRequest(t *testing.T) {
	bodies := map[string]string{
		"short code":      `{"code":"123","channelSlug":"clinic-a"}`,
		"non numeric":     `{"code":"12345a","channelSlug":"clinic-a"}`,
		"missing channel": `{"code":"123456"}`,
		"not json":        `code=123456`,
		"negative sign":   `{"code":"-12345","channelSlug":"clinic-a"}`,
		"positive sign":   `{"code":"+12345","channelSlug":"clinic-a"}`,
		"decimal point":   `{"code":"1.2345","channelSlug":"clinic-a"}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			h, registry, audit, _ := newPairingFixture(nil)
			rec := httptest.NewRecorder()
			h.Validate(rec, pairingRequest(body))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, registry.code)
			assert.Nil(t, audit.last())
		})
	}
}
