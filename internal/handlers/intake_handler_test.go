package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stwalsh4118/valuator/api/internal/enrichment"
	apierrors "github.com/stwalsh4118/valuator/api/internal/errors"
	"github.com/stwalsh4118/valuator/api/internal/models"
	"github.com/stwalsh4118/valuator/api/internal/services"
)

func setupIntakeRouter() (*gin.Engine, *MockIntakeService) {
	svc := new(MockIntakeService)
	handler := NewIntakeHandler(svc)

	router := gin.New()
	router.GET("/dashboard", handler.Dashboard)
	router.POST("/check_file_number", handler.CheckFileNumber)
	router.POST("/get-lat-lng", handler.GetLatLng)
	router.POST("/form-step1", handler.StepOne)
	router.GET("/form-step2/:file_number", handler.StepTwo)
	router.POST("/form-step2/:file_number", handler.SubmitStepTwo)
	router.POST("/form-step2/:file_number/comps/:comp/lookup", handler.LookupComparable)
	return router, svc
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apierrors.ErrorDetail {
	t.Helper()
	var resp apierrors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

func TestIntakeHandler_StepOne(t *testing.T) {
	t.Run("creates record and redirects to step 2", func(t *testing.T) {
		router, svc := setupIntakeRouter()
		svc.On("Start", mock.Anything, mock.MatchedBy(func(id models.Identity) bool {
			return id.FileNumber == "F-100" &&
				*id.Address == "4529 Winona Court" &&
				id.Unit == nil &&
				*id.Latitude == 39.7 && *id.Longitude == -104.9
		})).Return(&services.StartResult{ID: 1, FileNumber: "F-100"}, nil)

		w := postForm(router, "/form-step1", url.Values{
			"file_number": {" F-100 "},
			"address":     {"4529 Winona Court"},
			"unit":        {""},
			"latitude":    {"39.7"},
			"longitude":   {"-104.9"},
		})

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/form-step2/F-100", w.Header().Get("Location"))
		svc.AssertExpectations(t)
	})

	t.Run("duplicate file number", func(t *testing.T) {
		router, svc := setupIntakeRouter()
		svc.On("Start", mock.Anything, mock.Anything).Return(nil, services.ErrDuplicateFileNumber)

		w := postForm(router, "/form-step1", url.Values{"file_number": {"F-100"}})

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, apierrors.ErrConflict, decodeError(t, w).Code)
	})

	t.Run("missing file number", func(t *testing.T) {
		router, svc := setupIntakeRouter()

		w := postForm(router, "/form-step1", url.Values{"address": {"1 Main St"}})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, apierrors.ErrValidation, decodeError(t, w).Code)
		svc.AssertNotCalled(t, "Start", mock.Anything, mock.Anything)
	})

	t.Run("latitude out of range", func(t *testing.T) {
		router, svc := setupIntakeRouter()

		w := postForm(router, "/form-step1", url.Values{
			"file_number": {"F-100"},
			"latitude":    {"123"},
			"longitude":   {"0"},
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "Start", mock.Anything, mock.Anything)
	})

	t.Run("invalid identity from service", func(t *testing.T) {
		router, svc := setupIntakeRouter()
		svc.On("Start", mock.Anything, mock.Anything).Return(nil, services.ErrInvalidIdentity)

		w := postForm(router, "/form-step1", url.Values{"file_number": {"F-100"}, "latitude": {"10"}})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestIntakeHandler_StepTwo(t *testing.T) {
	t.Run("unknown file number redirects to step 1", func(t *testing.T) {
		router, svc := setupIntakeRouter()
		svc.On("GetRecord", mock.Anything, "F-404").Return(nil, services.ErrRecordNotFound)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/form-step2/F-404", nil))

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, StepOnePath, w.Header().Get("Location"))
	})

	t.Run("returns prefill data", func(t *testing.T) {
		router, svc := setupIntakeRouter()
		rec := &models.PropertyRecord{Identity: models.Identity{FileNumber: "F-100", Address: strPtr("4529 Winona Court")}}
		svc.On("GetRecord", mock.Anything, "F-100").Return(rec, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/form-step2/F-100", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var got models.PropertyRecord
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "4529 Winona Court", *got.Address)
	})
}

func TestIntakeHandler_SubmitStepTwo(t *testing.T) {
	form := url.Values{
		"subject_gla":       {"1500"},
		"subject_condition": {"Average"},
		"comp1_address":     {"1 Main St"},
		"not_a_column":      {"ignored"},
	}

	t.Run("stores submission and redirects to dashboard", func(t *testing.T) {
		router, svc := setupIntakeRouter()
		svc.On("Complete", mock.Anything, "F-100", mock.MatchedBy(func(sub models.FullSubmission) bool {
			return *sub.Subject.GLA == 1500 &&
				*sub.Subject.Condition == "Average" &&
				*sub.Comps[0].Address == "1 Main St" &&
				sub.Subject.Beds == nil
		})).Return(nil)

		w := postForm(router, "/form-step2/F-100", form)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, DashboardPath, w.Header().Get("Location"))
		svc.AssertExpectations(t)
	})

	t.Run("unknown file number redirects to step 1", func(t *testing.T) {
		router, svc := setupIntakeRouter()
		svc.On("Complete", mock.Anything, "F-404", mock.Anything).Return(services.ErrRecordNotFound)

		w := postForm(router, "/form-step2/F-404", form)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, StepOnePath, w.Header().Get("Location"))
	})

	t.Run("unparseable fields", func(t *testing.T) {
		router, svc := setupIntakeRouter()

		w := postForm(router, "/form-step2/F-100", url.Values{"subject_gla": {"large"}, "comp2_beds": {"2.5"}})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		detail := decodeError(t, w)
		assert.Equal(t, apierrors.ErrValidation, detail.Code)
		assert.Contains(t, detail.Details, "subject_gla")
		assert.Contains(t, detail.Details, "comp2_beds")
		svc.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("storage failure", func(t *testing.T) {
		router, svc := setupIntakeRouter()
		svc.On("Complete", mock.Anything, "F-100", mock.Anything).Return(errors.New("connection reset"))

		w := postForm(router, "/form-step2/F-100", form)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "An error occurred while saving the data.", decodeError(t, w).Message)
	})
}

func TestIntakeHandler_CheckFileNumber(t *testing.T) {
	router, svc := setupIntakeRouter()
	svc.On("CheckFileNumber", mock.Anything, "F-100").Return(true, nil)

	w := postJSON(router, "/check_file_number", `{"file_number":"F-100"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"exists":true}`, w.Body.String())

	w = postJSON(router, "/check_file_number", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIntakeHandler_GetLatLng(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		router, svc := setupIntakeRouter()
		svc.On("Geocode", mock.Anything, "4529 Winona Court, Denver, CO").
			Return(&enrichment.LatLng{Latitude: 39.77, Longitude: -104.95}, nil)

		w := postJSON(router, "/get-lat-lng", `{"address":"4529 Winona Court, Denver, CO"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"latitude":39.77,"longitude":-104.95}`, w.Body.String())
	})

	t.Run("missing address", func(t *testing.T) {
		router, _ := setupIntakeRouter()

		w := postJSON(router, "/get-lat-lng", `{"address":"  "}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Address is required", decodeError(t, w).Message)
	})

	t.Run("geocoder status is reported", func(t *testing.T) {
		router, svc := setupIntakeRouter()
		svc.On("Geocode", mock.Anything, "nowhere").Return(nil, &enrichment.GeocodeError{Status: "ZERO_RESULTS"})

		w := postJSON(router, "/get-lat-lng", `{"address":"nowhere"}`)

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Equal(t, "ZERO_RESULTS", decodeError(t, w).Details["status"])
	})
}

func TestIntakeHandler_LookupComparable(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		router, svc := setupIntakeRouter()
		addr := enrichment.Address{Street: "12 Oak St", City: "Denver", State: "CO", Zip: "80205"}
		svc.On("EnrichComparable", mock.Anything, "F-100", 2, addr).
			Return(&services.EnrichResult{Applied: true, Warnings: []services.Warning{}}, nil)

		w := postJSON(router, "/form-step2/F-100/comps/2/lookup",
			`{"address":"12 Oak St","city":"Denver","state":"CO","zip":"80205"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"applied":true,"warnings":[]}`, w.Body.String())
	})

	t.Run("non-numeric comp", func(t *testing.T) {
		router, _ := setupIntakeRouter()

		w := postJSON(router, "/form-step2/F-100/comps/x/lookup", `{"address":"12 Oak St"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid comp_number", decodeError(t, w).Message)
	})

	t.Run("unknown file number", func(t *testing.T) {
		router, svc := setupIntakeRouter()
		svc.On("EnrichComparable", mock.Anything, "F-404", 1, mock.Anything).Return(nil, services.ErrRecordNotFound)

		w := postJSON(router, "/form-step2/F-404/comps/1/lookup", `{"address":"12 Oak St"}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestIntakeHandler_Dashboard(t *testing.T) {
	router, svc := setupIntakeRouter()
	svc.On("Dashboard", mock.Anything).Return([]models.RecordSummary{{FileNumber: "F-100"}}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp DashboardResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Records, 1)
	assert.Equal(t, "F-100", resp.Records[0].FileNumber)
}
