package tests

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/darslik/apps/api/echo"
	"github.com/trezcool/darslik/core/llm"
	"github.com/trezcool/darslik/core/provider"
	"github.com/trezcool/darslik/tests"
)

func providerResp(p provider.Provider) echoapi.ProviderResponse {
	return echoapi.ProviderResponse{Provider: p, APIKey: "****1234"}
}

func Test_providerApi_create(t *testing.T) {
	e := setup(t)
	teacher := e.teacher(t, "teacher")
	student := e.student(t, "student")

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Teacher required", token: e.token(t, student), wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"})},
		{
			name: "unsupported vendor", token: e.token(t, teacher), wantCode: http.StatusBadRequest,
			body:     []byte(`{"name": "Mine", "provider_type": "skynet", "model_name": "t-800", "api_key": "sk-1"}`),
			wantData: []byte(`{"provider_type": "unsupported provider type"}`),
		},
		{
			name: "custom vendor without base url", token: e.token(t, teacher), wantCode: http.StatusBadRequest,
			body:     []byte(`{"name": "Local", "provider_type": "custom", "model_name": "llama3", "api_key": "sk-1"}`),
			wantData: []byte(`{"base_url": "base_url is required for custom providers"}`),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/providers"

		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, e.serve(tt))
		})
	}

	t.Run("created with a masked key", func(t *testing.T) {
		rec := e.serve(httpTest{
			method: http.MethodPost,
			path:   "/v1/providers",
			token:  e.token(t, teacher),
			body:   []byte(`{"name": "My Claude", "provider_type": "ANTHROPIC", "model_name": "claude-sonnet-4-5", "api_key": "sk-ant-secret-9876"}`),
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.NotContains(t, rec.Body.String(), "sk-ant-secret")

		var resp echoapi.ProviderResponse
		unmarshal(t, rec, &resp)
		assert.Equal(t, "****9876", resp.APIKey)
		assert.Equal(t, provider.VendorAnthropic, resp.Vendor)
		assert.True(t, resp.IsActive)
		assert.Equal(t, teacher.ID, resp.TeacherID)
	})
}

func Test_providerApi_queryUpdateDelete(t *testing.T) {
	e := setup(t)
	teacher := e.teacher(t, "teacher")
	other := e.teacher(t, "other")
	token := e.token(t, teacher)

	active := testutil.CreateProvider(t, e.provRepo, teacher.ID, provider.VendorOpenAI, "gpt-4o", true)
	inactive := testutil.CreateProvider(t, e.provRepo, teacher.ID, provider.VendorGroq, "llama-3.3-70b", false)
	foreign := testutil.CreateProvider(t, e.provRepo, other.ID, provider.VendorGoogle, "gemini-2.5-flash", true)

	notFound := marchallObj(t, httpErr{Error: provider.ErrNotFound.Error()})
	tests := []httpTest{
		{name: "list own", path: "/v1/providers", wantData: marchallObj(t, []echoapi.ProviderResponse{providerResp(active), providerResp(inactive)})},
		{name: "list active", path: "/v1/providers/active", wantData: marchallObj(t, []echoapi.ProviderResponse{providerResp(active)})},
		{name: "update foreign", method: http.MethodPatch, path: "/v1/providers/" + foreign.ID, body: []byte(`{"is_active": false}`), wantCode: http.StatusNotFound, wantData: notFound},
		{name: "update requires is_active", method: http.MethodPatch, path: "/v1/providers/" + active.ID, body: []byte(`{}`), wantCode: http.StatusBadRequest},
		{name: "delete foreign", method: http.MethodDelete, path: "/v1/providers/" + foreign.ID, wantCode: http.StatusNotFound, wantData: notFound},
	}
	for _, tt := range tests {
		tt.token = token
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, e.serve(tt))
		})
	}

	t.Run("deactivate", func(t *testing.T) {
		rec := e.serve(httpTest{method: http.MethodPatch, path: "/v1/providers/" + active.ID, token: token, body: []byte(`{"is_active": false}`)})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp echoapi.ProviderResponse
		unmarshal(t, rec, &resp)
		assert.False(t, resp.IsActive)
	})

	t.Run("delete", func(t *testing.T) {
		rec := e.serve(httpTest{method: http.MethodDelete, path: "/v1/providers/" + inactive.ID, token: token})
		require.Equal(t, http.StatusNoContent, rec.Code)

		_, err := e.provRepo.GetProviderByID(ctxBg, inactive.ID)
		assert.Equal(t, provider.ErrNotFound, err)
	})
}

func Test_providerApi_test(t *testing.T) {
	e := setup(t)
	teacher := e.teacher(t, "teacher")
	other := e.teacher(t, "other")
	token := e.token(t, teacher)
	foreign := testutil.CreateProvider(t, e.provRepo, other.ID, provider.VendorOpenAI, "gpt-4o", true)

	t.Run("unsaved configuration", func(t *testing.T) {
		e.client.AddResponse(llm.MockResponse{Content: "OK"})
		rec := e.serve(httpTest{
			method: http.MethodPost, path: "/v1/providers/test", token: token,
			body: []byte(`{"name": "Try", "provider_type": "openai", "model_name": "gpt-4o-mini", "api_key": "sk-try"}`),
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp echoapi.TestProviderResponse
		unmarshal(t, rec, &resp)
		assert.True(t, resp.Success)
		assert.Equal(t, "OK", resp.Message)
	})

	t.Run("provider failure", func(t *testing.T) {
		e.client.AddResponse(llm.MockResponse{Err: &llm.ErrProviderUnavailable{}})
		rec := e.serve(httpTest{
			method: http.MethodPost, path: "/v1/providers/test", token: token,
			body: []byte(`{"name": "Try", "provider_type": "openai", "model_name": "gpt-4o-mini", "api_key": "sk-try"}`),
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var errs map[string]string
		unmarshal(t, rec, &errs)
		assert.NotEmpty(t, errs["provider"])
	})

	t.Run("foreign saved provider", func(t *testing.T) {
		rec := e.serve(httpTest{
			method: http.MethodPost, path: "/v1/providers/test", token: token,
			body: []byte(fmt.Sprintf(`{"provider_id": %q}`, foreign.ID)),
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
