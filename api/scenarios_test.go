package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListScenarios(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/scenarios", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[[]Scenario](t, resp)
	assert.Len(t, list, len(scenarios))
}

func TestLoadScenario_EachLoadsCleanly(t *testing.T) {
	srv := newTestServer(t)

	for _, sc := range scenarios {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/scenarios/load",
			map[string]string{"scenario_id": sc.ID})
		assert.Equal(t, http.StatusOK, resp.StatusCode, "scenario %s", sc.ID)
	}
}

func TestLoadScenario_LendingSettlement(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/scenarios/load",
		map[string]string{"scenario_id": "lending-settlement"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/borrowers/demo-borrower/summary", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	summary := decode[BorrowerSummaryDTO](t, resp)
	assert.Equal(t, 1, summary.ActiveLoans)
	assert.Equal(t, 1, summary.SettledLoans)
	assert.Equal(t, "12000", summary.TotalPrincipal)
}

func TestLoadScenario_ResetsPreviousData(t *testing.T) {
	srv := newTestServer(t)

	// Loading one scenario then another leaves only the latter's students
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/scenarios/load",
		map[string]string{"scenario_id": "new-student"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/scenarios/load",
		map[string]string{"scenario_id": "arrears"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/students", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	students := decode[[]StudentDTO](t, resp)
	require.Len(t, students, 1)
	assert.Equal(t, "Kabir Shah", students[0].Name)
}

func TestLoadScenario_Unknown(t *testing.T) {
	srv := newTestServer(t)
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/scenarios/load",
		map[string]string{"scenario_id": "nope"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
