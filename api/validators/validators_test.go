package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/configurator-backend/pkg/errors"
)

type selectionBody struct {
	OptionID string `json:"option_id" validate:"required,uuid"`
}

type resetBody struct {
	Purge bool `json:"purge"`
}

func TestDecodeJSONBodyValidation(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"option_id":"nope"}`))
	var body selectionBody
	err := DecodeJSONBody(req, &body)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, map[string]string{"option_id": "must be a valid uuid"}, typed.Details())

	req = httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"option_id":"x","extra":1}`))
	assert.True(t, pkgerrors.IsCode(DecodeJSONBody(req, &body), pkgerrors.CodeValidation), "unknown fields rejected")
}

func TestDecodeJSONBodyRejectsTrailingAndOversizedBodies(t *testing.T) {
	var body resetBody
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"purge":true} {"purge":false}`))
	assert.True(t, pkgerrors.IsCode(DecodeJSONBody(req, &body), pkgerrors.CodeValidation))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"purge":true}`+"\n"))
	require.NoError(t, DecodeJSONBody(req, &body))

	oversized := `{"purge":true,"pad":"` + strings.Repeat("x", MaxBodyBytes) + `"}`
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(oversized))
	err := DecodeJSONBody(req, &body)
	require.Error(t, err)
	assert.Contains(t, pkgerrors.As(err).Details(), "error")
}

func TestDecodeOptionalJSONBodyAcceptsEmpty(t *testing.T) {
	var body resetBody
	req := httptest.NewRequest(http.MethodPost, "/", http.NoBody)
	require.NoError(t, DecodeOptionalJSONBody(req, &body))
	assert.False(t, body.Purge)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"purge":true}`))
	require.NoError(t, DecodeOptionalJSONBody(req, &body))
	assert.True(t, body.Purge)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	assert.Error(t, DecodeOptionalJSONBody(req, &body))
}

func TestQueryHelpers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?months=24&rate=3.2&base_price=52950.50&wait=5m&model_id=2a1f4c3e-7d2b-4a57-9bb8-1f0c3f9a6e21", nil)

	months, err := ParseQueryInt(req, "months", 36, 1, 120)
	require.NoError(t, err)
	assert.Equal(t, 24, months)

	rate, err := ParseQueryFloat(req, "rate", 0)
	require.NoError(t, err)
	assert.InDelta(t, 3.2, rate, 1e-9)

	price, err := ParseQueryDecimal(req, "base_price")
	require.NoError(t, err)
	assert.Equal(t, "52950.5", price.String())

	wait, err := ParseQueryDuration(req, "wait", 0, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, wait, "capped at max")

	id, err := ParseQueryUUID(req, "model_id")
	require.NoError(t, err)
	require.NotNil(t, id)

	missing, err := ParseQueryUUID(req, "draft_id")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestQueryHelpersRejectBadInput(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?months=abc&rate=NaN&base_price=12k&wait=soon&model_id=x", nil)

	_, err := ParseQueryInt(req, "months", 36, 1, 120)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = ParseQueryFloat(req, "rate", 0)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = ParseQueryDecimal(req, "base_price")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = ParseQueryDecimal(req, "principal")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "required")
	_, err = ParseQueryDuration(req, "wait", 0, time.Minute)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = ParseQueryUUID(req, "model_id")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestParseUUIDParam(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rc := chi.NewRouteContext()
	rc.URLParams.Add("draftId", "2a1f4c3e-7d2b-4a57-9bb8-1f0c3f9a6e21")
	rc.URLParams.Add("bad", "123")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))

	id, err := ParseUUIDParam(req, "draftId")
	require.NoError(t, err)
	assert.Equal(t, "2a1f4c3e-7d2b-4a57-9bb8-1f0c3f9a6e21", id.String())

	_, err = ParseUUIDParam(req, "bad")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "Ada", SanitizeString("  Ada \n", 100))
	assert.Equal(t, "AdaLovelace", SanitizeString("Ada\x00Love\x07lace", 0))
	assert.Equal(t, "Zo", SanitizeString("Zoë", 3))
	assert.Equal(t, "Zoë", SanitizeString("Zoë", 4))
}
