// Package httpapi exposes the calculator form over HTTP: the two selectors
// and the submit action.
package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"lombada-bot/internal/catalog"
	"lombada-bot/internal/form"
	"lombada-bot/internal/lombada"
)

type Handler struct {
	catalog catalog.Result
	logger  *zap.Logger
}

func NewHandler(res catalog.Result, logger *zap.Logger) *Handler {
	return &Handler{catalog: res, logger: logger}
}

func (h *Handler) Register(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	api := e.Group("/api")
	api.GET("/papeis", h.Papers)
	api.GET("/papeis/gramaturas", h.Weights)
	api.POST("/lombada", h.Calculate)
}

type optionResponse struct {
	Value    string `json:"value"`
	Text     string `json:"text"`
	Disabled bool   `json:"disabled,omitempty"`
}

type selectResponse struct {
	Options  []optionResponse `json:"options"`
	Disabled bool             `json:"disabled"`
	Message  *messageResponse `json:"message,omitempty"`
}

type messageResponse struct {
	Severity form.Severity `json:"severity"`
	Message  string        `json:"message"`
	SpineMM  *float64      `json:"lombada_mm,omitempty"`
	Binding  string        `json:"encadernacao,omitempty"`
}

// CalculateRequest mirrors the form fields. Pages is taken as typed and
// accepts both a JSON number and a string.
type CalculateRequest struct {
	Paper     string    `json:"papel"`
	Weight    string    `json:"gramatura"`
	Pages     PageCount `json:"paginas"`
	CaseBound bool      `json:"cartonado"`
	Milled    bool      `json:"fresado"`
	Sewn      bool      `json:"costurado"`
}

type PageCount string

var errPageCountType = errors.New("paginas must be a number or a string")

// UnmarshalJSON keeps numbers and strings as text. Objects, arrays and
// booleans are rejected.
func (p *PageCount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return errPageCountType
	}

	switch c := data[0]; {
	case bytes.Equal(data, []byte("null")):
		*p = ""
	case c == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = PageCount(s)
	case c == '-' || (c >= '0' && c <= '9'):
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*p = PageCount(n)
	default:
		return errPageCountType
	}
	return nil
}

func (r CalculateRequest) values() form.Values {
	return form.Values{
		Paper:  r.Paper,
		Weight: r.Weight,
		Pages:  string(r.Pages),
		Binding: lombada.Binding{
			CaseBound: r.CaseBound,
			Milled:    r.Milled,
			Sewn:      r.Sewn,
		},
	}
}

// Health reports liveness and whether the catalog loaded
// GET /healthz
func (h *Handler) Health(c echo.Context) error {
	status := "loaded"
	if !h.catalog.OK() {
		status = "failed"
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status":  "ok",
		"catalog": status,
		"papers":  h.catalog.Catalog.Len(),
	})
}

// Papers returns the paper selector
// GET /api/papeis
func (h *Handler) Papers(c echo.Context) error {
	sel, msg := form.PaperSelect(h.catalog)
	if msg != nil {
		return c.JSON(http.StatusServiceUnavailable, toSelectResponse(sel, msg))
	}
	return c.JSON(http.StatusOK, toSelectResponse(sel, nil))
}

// Weights returns the weight selector for one paper
// GET /api/papeis/gramaturas?papel=Offset
func (h *Handler) Weights(c echo.Context) error {
	if !h.catalog.OK() {
		msg := form.ErrorMessage(h.catalog.Err)
		return c.JSON(http.StatusServiceUnavailable, toSelectResponse(form.Select{Disabled: true}, &msg))
	}

	sel := form.WeightSelect(h.catalog.Catalog, c.QueryParam("papel"))
	return c.JSON(http.StatusOK, toSelectResponse(sel, nil))
}

// Calculate submits the form
// POST /api/lombada
func (h *Handler) Calculate(c echo.Context) error {
	var req CalculateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if !h.catalog.OK() {
		msg := form.ErrorMessage(h.catalog.Err)
		return c.JSON(http.StatusServiceUnavailable, toMessageResponse(msg))
	}

	msg := form.Submit(h.catalog.Catalog, req.values())
	if msg.IsError() {
		h.logger.Debug("Calculation rejected",
			zap.String("paper", req.Paper),
			zap.String("weight", req.Weight),
			zap.String("reason", msg.Text))
		return c.JSON(http.StatusUnprocessableEntity, toMessageResponse(msg))
	}

	return c.JSON(http.StatusOK, toMessageResponse(msg))
}

func toSelectResponse(sel form.Select, msg *form.Message) selectResponse {
	resp := selectResponse{
		Options:  make([]optionResponse, 0, len(sel.Options)),
		Disabled: sel.Disabled,
	}
	for _, o := range sel.Options {
		resp.Options = append(resp.Options, optionResponse(o))
	}
	if msg != nil {
		m := toMessageResponse(*msg)
		resp.Message = &m
	}
	return resp
}

func toMessageResponse(msg form.Message) messageResponse {
	resp := messageResponse{
		Severity: msg.Severity,
		Message:  msg.Text,
	}
	if msg.Result != nil {
		mm := msg.Result.SpineWidthMM
		resp.SpineMM = &mm
		resp.Binding = msg.Result.Description
	}
	return resp
}
