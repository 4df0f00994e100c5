package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentryops/guard-roster-api/internal/models"
	"github.com/sentryops/guard-roster-api/internal/service"
	appErrors "github.com/sentryops/guard-roster-api/pkg/errors"
)

type positionReaderMock struct {
	position *models.Position
}

func (m positionReaderMock) GetByID(ctx context.Context, id string) (*models.Position, error) {
	if m.position == nil {
		return nil, sql.ErrNoRows
	}
	return m.position, nil
}

type overrideReaderMock struct {
	override *models.SiteServiceRate
}

func (m overrideReaderMock) GetBySiteAndPosition(ctx context.Context, siteID, positionID string) (*models.SiteServiceRate, error) {
	return m.override, nil
}

func TestRateHandlerResolveAppliesOverride(t *testing.T) {
	gin.SetMode(gin.TestMode)
	custom := 520.0
	svc := service.NewRateService(
		positionReaderMock{position: &models.Position{
			ID: "pos-1", Code: "GRD", Name: "Security Guard", Active: true,
			DailyRate: 450, DiligenceBonus: 30,
		}},
		overrideReaderMock{override: &models.SiteServiceRate{
			SiteID: "site-1", PositionID: "pos-1", CustomRate: &custom,
		}},
		nil,
	)
	handler := NewRateHandler(svc)

	c, w := newGinContext(http.MethodGet, "/sites/site-1/rates/pos-1", nil)
	c.Params = gin.Params{{Key: "siteId", Value: "site-1"}, {Key: "positionId", Value: "pos-1"}}

	handler.Resolve(c)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data models.RateComponents `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 520.0, envelope.Data.DailyRate)
	assert.Equal(t, 30.0, envelope.Data.DiligenceBonus)
	assert.True(t, envelope.Data.Overridden)
}

func TestRateHandlerResolveUnknownPosition(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := service.NewRateService(positionReaderMock{}, overrideReaderMock{}, nil)
	handler := NewRateHandler(svc)

	c, w := newGinContext(http.MethodGet, "/sites/site-1/rates/ghost", nil)
	c.Params = gin.Params{{Key: "siteId", Value: "site-1"}, {Key: "positionId", Value: "ghost"}}

	handler.Resolve(c)

	require.Equal(t, http.StatusNotFound, w.Code)
	var envelope struct {
		Error *appErrors.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrNotFound.Code, envelope.Error.Code)
}
