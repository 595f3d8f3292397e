package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/LdDl/commonroad"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// RoadNetworkService is the set of road network queries exposed over HTTP
type RoadNetworkService interface {
	FindLaneletByID(id commonroad.LaneletID) (*commonroad.Lanelet, error)
	FindLaneletsByPosition(x, y float64) []*commonroad.Lanelet
	FindOccupiedLaneletsByShape(shape orb.Ring) []*commonroad.Lanelet
	FindLaneByID(id commonroad.LaneID) (*commonroad.Lane, error)
	LaneletGraph() (*commonroad.LaneletGraph, error)
}

type RoadNetworkHandler struct {
	svc          RoadNetworkService
	promeMetrics *metrics
	validate     *validator.Validate
	trans        ut.Translator
}

func RoadNetworkRouter(r *chi.Mux, svc RoadNetworkService, m *metrics) {
	validate := validator.New()
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)
	handler := &RoadNetworkHandler{
		svc:          svc,
		promeMetrics: m,
		validate:     validate,
		trans:        trans,
	}

	r.Group(func(r chi.Router) {
		r.Route("/api/lanelets", func(r chi.Router) {
			r.Get("/{id}", handler.laneletByID)
			r.Post("/by-position", handler.laneletsByPosition)
			r.Post("/by-shape", handler.laneletsByShape)
			r.Get("/{id}/paths/{target}", handler.paths)
			r.Get("/{id}/route/{target}", handler.route)
		})
		r.Route("/api/lanes", func(r chi.Router) {
			r.Post("/{id}/curvilinear", handler.toCurvilinear)
			r.Post("/{id}/cartesian", handler.toCartesian)
		})
	})
}

// PositionRequest is Cartesian position
type PositionRequest struct {
	X *float64 `json:"x" validate:"required"`
	Y *float64 `json:"y" validate:"required"`
}

func (s *PositionRequest) Bind(r *http.Request) error {
	return nil
}

// ShapeRequest is polygon given by its vertices. Closing vertex is optional
type ShapeRequest struct {
	Points [][]float64 `json:"points" validate:"required,min=3,dive,len=2"`
}

func (s *ShapeRequest) Bind(r *http.Request) error {
	return nil
}

// CurvilinearRequest is position in curvilinear coordinates of a lane
type CurvilinearRequest struct {
	S *float64 `json:"s" validate:"required"`
	D *float64 `json:"d" validate:"required"`
}

func (s *CurvilinearRequest) Bind(r *http.Request) error {
	return nil
}

type AdjacencyResponse struct {
	ID        int64  `json:"id"`
	Direction string `json:"direction"`
}

type LaneletResponse struct {
	ID            int64              `json:"id"`
	Types         []string           `json:"types"`
	Predecessors  []int64            `json:"predecessors"`
	Successors    []int64            `json:"successors"`
	AdjacentLeft  *AdjacencyResponse `json:"adjacent_left,omitempty"`
	AdjacentRight *AdjacencyResponse `json:"adjacent_right,omitempty"`
	Length        float64            `json:"length"`
	CenterLine    [][]float64        `json:"center_line"`
}

func pointsToSlices(line orb.LineString) [][]float64 {
	return lo.Map(line, func(pt orb.Point, _ int) []float64 { return []float64{pt.X(), pt.Y()} })
}

func idsOf(lanelets []*commonroad.Lanelet) []int64 {
	return lo.Map(lanelets, func(l *commonroad.Lanelet, _ int) int64 { return int64(l.ID) })
}

func adjacencyResponse(adjacency *commonroad.Adjacency) *AdjacencyResponse {
	if adjacency == nil || adjacency.Lanelet == nil {
		return nil
	}
	return &AdjacencyResponse{ID: int64(adjacency.Lanelet.ID), Direction: adjacency.Direction.String()}
}

func NewLaneletResponse(lanelet *commonroad.Lanelet) *LaneletResponse {
	return &LaneletResponse{
		ID:            int64(lanelet.ID),
		Types:         lo.Map(lanelet.LaneletTypes(), func(t commonroad.LaneletType, _ int) string { return t.String() }),
		Predecessors:  idsOf(lanelet.Predecessors()),
		Successors:    idsOf(lanelet.Successors()),
		AdjacentLeft:  adjacencyResponse(lanelet.AdjacentLeft()),
		AdjacentRight: adjacencyResponse(lanelet.AdjacentRight()),
		Length:        lanelet.Length(),
		CenterLine:    pointsToSlices(lanelet.CenterVertices()),
	}
}

type LaneletsResponse struct {
	Lanelets []*LaneletResponse `json:"lanelets"`
}

func NewLaneletsResponse(lanelets []*commonroad.Lanelet) *LaneletsResponse {
	return &LaneletsResponse{
		Lanelets: lo.Map(lanelets, func(l *commonroad.Lanelet, _ int) *LaneletResponse { return NewLaneletResponse(l) }),
	}
}

type PathsResponse struct {
	Paths [][]int64 `json:"paths"`
}

type RouteResponse struct {
	Path   []int64 `json:"path"`
	Length float64 `json:"length"`
}

type CurvilinearResponse struct {
	S              float64 `json:"s"`
	D              float64 `json:"d"`
	InProjDomain   bool    `json:"in_projection_domain"`
	LaneLength     float64 `json:"lane_length"`
	ReferenceAngle float64 `json:"reference_angle"`
}

type CartesianResponse struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func parseIDParam(r *http.Request, name string) (int64, error) {
	value := chi.URLParam(r, name)
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "Can't parse parameter '%s'", name)
	}
	return id, nil
}

// validateRequest returns renderer for validation errors or nil
func (h *RoadNetworkHandler) validateRequest(data interface{}) render.Renderer {
	if err := h.validate.Struct(data); err != nil {
		return ErrValidation(err, translateError(err, h.trans))
	}
	return nil
}

func (h *RoadNetworkHandler) laneletByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	h.promeMetrics.queryCount.WithLabelValues("lanelet_by_id").Inc()
	lanelet, err := h.svc.FindLaneletByID(commonroad.LaneletID(id))
	if err != nil {
		render.Render(w, r, ErrDomain(err))
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, NewLaneletResponse(lanelet))
}

func (h *RoadNetworkHandler) laneletsByPosition(w http.ResponseWriter, r *http.Request) {
	data := &PositionRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if errRender := h.validateRequest(data); errRender != nil {
		render.Render(w, r, errRender)
		return
	}
	h.promeMetrics.queryCount.WithLabelValues("lanelets_by_position").Inc()
	lanelets := h.svc.FindLaneletsByPosition(*data.X, *data.Y)
	render.Status(r, http.StatusOK)
	render.JSON(w, r, NewLaneletsResponse(lanelets))
}

func (h *RoadNetworkHandler) laneletsByShape(w http.ResponseWriter, r *http.Request) {
	data := &ShapeRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if errRender := h.validateRequest(data); errRender != nil {
		render.Render(w, r, errRender)
		return
	}
	ring := make(orb.Ring, 0, len(data.Points)+1)
	for _, pt := range data.Points {
		ring = append(ring, orb.Point{pt[0], pt[1]})
	}
	if !ring[0].Equal(ring[len(ring)-1]) {
		ring = append(ring, ring[0])
	}
	h.promeMetrics.queryCount.WithLabelValues("lanelets_by_shape").Inc()
	lanelets := h.svc.FindOccupiedLaneletsByShape(ring)
	render.Status(r, http.StatusOK)
	render.JSON(w, r, NewLaneletsResponse(lanelets))
}

func (h *RoadNetworkHandler) paths(w http.ResponseWriter, r *http.Request) {
	source, err := parseIDParam(r, "id")
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	target, err := parseIDParam(r, "target")
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	considerAdjacency := false
	if adjacency := r.URL.Query().Get("adjacency"); adjacency != "" {
		considerAdjacency, err = strconv.ParseBool(adjacency)
		if err != nil {
			render.Render(w, r, ErrInvalidRequest(errors.Wrap(err, "Can't parse query parameter 'adjacency'")))
			return
		}
	}
	graph, err := h.svc.LaneletGraph()
	if err != nil {
		render.Render(w, r, ErrInternalServerErrorRend(err))
		return
	}
	h.promeMetrics.queryCount.WithLabelValues("paths").Inc()
	found := graph.FindPaths(commonroad.LaneletID(source), commonroad.LaneletID(target), considerAdjacency)
	response := &PathsResponse{
		Paths: lo.Map(found, func(path []commonroad.LaneletID, _ int) []int64 {
			return lo.Map(path, func(id commonroad.LaneletID, _ int) int64 { return int64(id) })
		}),
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, response)
}

func (h *RoadNetworkHandler) route(w http.ResponseWriter, r *http.Request) {
	source, err := parseIDParam(r, "id")
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	target, err := parseIDParam(r, "target")
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	graph, err := h.svc.LaneletGraph()
	if err != nil {
		render.Render(w, r, ErrInternalServerErrorRend(err))
		return
	}
	h.promeMetrics.queryCount.WithLabelValues("route").Inc()
	path, length, err := graph.ShortestPath(commonroad.LaneletID(source), commonroad.LaneletID(target))
	if err != nil {
		render.Render(w, r, ErrDomain(err))
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, &RouteResponse{
		Path:   lo.Map(path, func(id commonroad.LaneletID, _ int) int64 { return int64(id) }),
		Length: length,
	})
}

func (h *RoadNetworkHandler) laneCCS(r *http.Request) (*commonroad.CurvilinearCoordinateSystem, render.Renderer) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		return nil, ErrInvalidRequest(err)
	}
	lane, err := h.svc.FindLaneByID(commonroad.LaneID(id))
	if err != nil {
		return nil, ErrDomain(err)
	}
	ccs, err := lane.CurvilinearCoordinateSystem()
	if err != nil {
		return nil, ErrDomain(err)
	}
	return ccs, nil
}

func (h *RoadNetworkHandler) toCurvilinear(w http.ResponseWriter, r *http.Request) {
	ccs, errRender := h.laneCCS(r)
	if errRender != nil {
		render.Render(w, r, errRender)
		return
	}
	data := &PositionRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if errRender := h.validateRequest(data); errRender != nil {
		render.Render(w, r, errRender)
		return
	}
	h.promeMetrics.queryCount.WithLabelValues("to_curvilinear").Inc()
	s, d := ccs.ToCurvilinear(*data.X, *data.Y)
	render.Status(r, http.StatusOK)
	render.JSON(w, r, &CurvilinearResponse{
		S:              s,
		D:              d,
		InProjDomain:   ccs.InProjectionDomain(*data.X, *data.Y),
		LaneLength:     ccs.Length(),
		ReferenceAngle: ccs.TangentAt(s),
	})
}

func (h *RoadNetworkHandler) toCartesian(w http.ResponseWriter, r *http.Request) {
	ccs, errRender := h.laneCCS(r)
	if errRender != nil {
		render.Render(w, r, errRender)
		return
	}
	data := &CurvilinearRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if errRender := h.validateRequest(data); errRender != nil {
		render.Render(w, r, errRender)
		return
	}
	h.promeMetrics.queryCount.WithLabelValues("to_cartesian").Inc()
	x, y := ccs.ToCartesian(*data.S, *data.D)
	render.Status(r, http.StatusOK)
	render.JSON(w, r, &CartesianResponse{X: x, Y: y})
}

// ErrResponse model info
type ErrResponse struct {
	Err            error `json:"-"` // low-level runtime error
	HTTPStatusCode int   `json:"-"` // http response status code

	StatusText    string   `json:"status"`          // user-level status message
	ErrorText     string   `json:"error,omitempty"` // application-level error message, for debugging
	ErrValidation []string `json:"validation,omitempty"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func ErrInternalServerErrorRend(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusInternalServerError,
		StatusText:     "Internal server error.",
		ErrorText:      err.Error(),
	}
}

func ErrValidation(err error, errV []error) render.Renderer {
	vv := []string{}
	for _, v := range errV {
		vv = append(vv, v.Error())
	}
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
		ErrValidation:  vv,
	}
}

func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
	}
}

// ErrDomain renders error of road network query with status code by its cause
func ErrDomain(err error) render.Renderer {
	statusCode := getStatusCode(err)
	statusText := ""
	switch statusCode {
	case http.StatusNotFound:
		statusText = "Resource not found."
	case http.StatusBadRequest:
		statusText = "Bad request."
	default:
		statusText = "Internal server error."
	}
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: statusCode,
		StatusText:     statusText,
		ErrorText:      err.Error(),
	}
}

func getStatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, commonroad.ErrLaneletNotFound),
		errors.Is(err, commonroad.ErrLaneNotFound),
		errors.Is(err, commonroad.ErrNoPath):
		return http.StatusNotFound
	case errors.Is(err, commonroad.ErrDegeneratePath),
		errors.Is(err, commonroad.ErrNotSupported):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func translateError(err error, trans ut.Translator) (errs []error) {
	if err == nil {
		return nil
	}
	var validatorErrs validator.ValidationErrors
	if !errors.As(err, &validatorErrs) {
		return []error{err}
	}
	for _, e := range validatorErrs {
		errs = append(errs, fmt.Errorf("%s", e.Translate(trans)))
	}
	return errs
}
