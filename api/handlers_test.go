package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/LdDl/commonroad"
	"github.com/go-chi/chi/v5"
	"github.com/paulmach/orb"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer serves chain of lanelets 1 -> 2 -> 3 along x axis (0..30) with single lane 4
func newTestServer(t *testing.T) (*httptest.Server, *prometheus.Registry) {
	t.Helper()
	lanelets := make([]*commonroad.Lanelet, 0, 3)
	for i := 0; i < 3; i++ {
		x0 := float64(i * 10)
		lanelet, err := commonroad.NewLanelet(
			commonroad.LaneletID(i+1),
			orb.LineString{{x0, 1}, {x0 + 10, 1}},
			orb.LineString{{x0, -1}, {x0 + 10, -1}},
			[]commonroad.LaneletType{commonroad.LANELET_URBAN},
		)
		require.NoError(t, err)
		if i > 0 {
			lanelets[i-1].AddSuccessor(lanelet)
			lanelet.AddPredecessor(lanelets[i-1])
		}
		lanelets = append(lanelets, lanelet)
	}
	net, err := commonroad.NewRoadNetwork(lanelets)
	require.NoError(t, err)
	_, err = net.CreateLanes()
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	r := chi.NewRouter()
	r.Use(PromeHttpMiddleware(m))
	RoadNetworkRouter(r, net, m)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server, reg
}

func doJSON(t *testing.T, method, url string, body interface{}, out interface{}) int {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req, err := http.NewRequest(method, url, &payload)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func queryCount(t *testing.T, reg *prometheus.Registry, query string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != "commonroad_query_count" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "query" && label.GetValue() == query {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestLaneletByID(t *testing.T) {
	server, reg := newTestServer(t)

	response := LaneletResponse{}
	status := doJSON(t, http.MethodGet, server.URL+"/api/lanelets/2", nil, &response)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(2), response.ID)
	assert.Equal(t, []string{"urban"}, response.Types)
	assert.Equal(t, []int64{1}, response.Predecessors)
	assert.Equal(t, []int64{3}, response.Successors)
	assert.Nil(t, response.AdjacentLeft)
	assert.InDelta(t, 10.0, response.Length, 1e-9)
	assert.Equal(t, [][]float64{{10, 0}, {20, 0}}, response.CenterLine)
	assert.Equal(t, 1.0, queryCount(t, reg, "lanelet_by_id"))

	errResponse := ErrResponse{}
	status = doJSON(t, http.MethodGet, server.URL+"/api/lanelets/42", nil, &errResponse)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Resource not found.", errResponse.StatusText)

	status = doJSON(t, http.MethodGet, server.URL+"/api/lanelets/abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestLaneletsByPosition(t *testing.T) {
	server, _ := newTestServer(t)

	response := LaneletsResponse{}
	status := doJSON(t, http.MethodPost, server.URL+"/api/lanelets/by-position", map[string]float64{"x": 5, "y": 0}, &response)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, response.Lanelets, 1)
	assert.Equal(t, int64(1), response.Lanelets[0].ID)

	response = LaneletsResponse{}
	status = doJSON(t, http.MethodPost, server.URL+"/api/lanelets/by-position", map[string]float64{"x": 5, "y": 50}, &response)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, response.Lanelets)

	errResponse := ErrResponse{}
	status = doJSON(t, http.MethodPost, server.URL+"/api/lanelets/by-position", map[string]float64{"x": 5}, &errResponse)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Len(t, errResponse.ErrValidation, 1)

	req, err := http.NewRequest(http.MethodPost, server.URL+"/api/lanelets/by-position", bytes.NewBufferString("{"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLaneletsByShape(t *testing.T) {
	server, _ := newTestServer(t)

	response := LaneletsResponse{}
	shape := map[string][][]float64{"points": {{14, -0.5}, {16, -0.5}, {16, 0.5}, {14, 0.5}}}
	status := doJSON(t, http.MethodPost, server.URL+"/api/lanelets/by-shape", shape, &response)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, response.Lanelets, 1)
	assert.Equal(t, int64(2), response.Lanelets[0].ID)

	status = doJSON(t, http.MethodPost, server.URL+"/api/lanelets/by-shape", map[string][][]float64{"points": {{0, 0}, {1, 1}}}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	status = doJSON(t, http.MethodPost, server.URL+"/api/lanelets/by-shape", map[string][][]float64{"points": {{0, 0}, {1, 1}, {2}}}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestPathsAndRoute(t *testing.T) {
	server, reg := newTestServer(t)

	paths := PathsResponse{}
	status := doJSON(t, http.MethodGet, server.URL+"/api/lanelets/1/paths/3?adjacency=true", nil, &paths)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, [][]int64{{1, 2, 3}}, paths.Paths)

	status = doJSON(t, http.MethodGet, server.URL+"/api/lanelets/1/paths/3?adjacency=maybe", nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	route := RouteResponse{}
	status = doJSON(t, http.MethodGet, server.URL+"/api/lanelets/1/route/3", nil, &route)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []int64{1, 2, 3}, route.Path)
	assert.InDelta(t, 20.0, route.Length, 1e-6)
	assert.Equal(t, 1.0, queryCount(t, reg, "route"))

	status = doJSON(t, http.MethodGet, server.URL+"/api/lanelets/3/route/1", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status = doJSON(t, http.MethodGet, server.URL+"/api/lanelets/1/route/99", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestLaneConversions(t *testing.T) {
	server, _ := newTestServer(t)

	curvilinear := CurvilinearResponse{}
	status := doJSON(t, http.MethodPost, server.URL+"/api/lanes/4/curvilinear", map[string]float64{"x": 15, "y": 0.5}, &curvilinear)
	require.Equal(t, http.StatusOK, status)
	assert.InDelta(t, 15.0, curvilinear.S, 1e-6)
	assert.InDelta(t, 0.5, curvilinear.D, 1e-6)
	assert.True(t, curvilinear.InProjDomain)
	assert.InDelta(t, 30.0, curvilinear.LaneLength, 1e-6)
	assert.InDelta(t, 0.0, curvilinear.ReferenceAngle, 1e-9)

	cartesian := CartesianResponse{}
	status = doJSON(t, http.MethodPost, server.URL+"/api/lanes/4/cartesian", map[string]float64{"s": 15, "d": 0.5}, &cartesian)
	require.Equal(t, http.StatusOK, status)
	assert.InDelta(t, 15.0, cartesian.X, 1e-6)
	assert.InDelta(t, 0.5, cartesian.Y, 1e-6)

	status = doJSON(t, http.MethodPost, server.URL+"/api/lanes/99/curvilinear", map[string]float64{"x": 15, "y": 0.5}, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status = doJSON(t, http.MethodPost, server.URL+"/api/lanes/4/cartesian", map[string]float64{"s": 15}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestStatusCodes(t *testing.T) {
	assert.Equal(t, http.StatusOK, getStatusCode(nil))
	assert.Equal(t, http.StatusNotFound, getStatusCode(commonroad.ErrLaneNotFound))
	assert.Equal(t, http.StatusBadRequest, getStatusCode(commonroad.ErrNotSupported))
	assert.Equal(t, http.StatusInternalServerError, getStatusCode(assert.AnError))
}
