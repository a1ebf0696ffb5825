package controllers

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/GrupoSemah/salidasform/internal/dtos"
	"github.com/GrupoSemah/salidasform/internal/refdata"
	"github.com/GrupoSemah/salidasform/internal/services"
	"github.com/GrupoSemah/salidasform/internal/signature"
	"github.com/GrupoSemah/salidasform/internal/utils"
)

type MoveOutController struct {
	svc     services.MoveOutService
	catalog *refdata.Catalog
}

func NewMoveOutController(s services.MoveOutService, catalog *refdata.Catalog) *MoveOutController {
	return &MoveOutController{svc: s, catalog: catalog}
}

var validate = validator.New()

// -----------------------------------------------------------------------------
// POST /api/v1/moveout
// -----------------------------------------------------------------------------
func (c *MoveOutController) SubmitMoveOut(w http.ResponseWriter, r *http.Request) {
	var req dtos.MoveOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err,
		)
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Malformed field values", nil, err,
		)
		return
	}

	resp, err := c.svc.Submit(r.Context(), clientIP(r), req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// -----------------------------------------------------------------------------
// GET /api/v1/moveout/refdata
// -----------------------------------------------------------------------------
func (c *MoveOutController) GetRefData(w http.ResponseWriter, _ *http.Request) {
	branches := make([]dtos.BranchOption, 0, len(c.catalog.Branches))
	for _, b := range c.catalog.Branches {
		branches = append(branches, dtos.BranchOption{ID: b.ID, Name: b.Name})
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.RefDataResponse{
		Branches:          branches,
		Banks:             c.catalog.Banks,
		VacateReasons:     c.catalog.VacateReasons,
		GoodsDispositions: c.catalog.GoodsDispositions,
	})
}

// -----------------------------------------------------------------------------
// POST /api/v1/moveout/signature
//
// Replays a captured stroke set through the signature pad and returns the
// encoded image, for clients without a local canvas.
// -----------------------------------------------------------------------------
func (c *MoveOutController) RenderSignature(w http.ResponseWriter, r *http.Request) {
	var req dtos.SignatureRenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid JSON payload", nil, err,
		)
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Malformed field values", nil, err,
		)
		return
	}

	var latest string
	pad := signature.NewPad(req.Width, req.Height, req.DevicePixelRatio, func(img string) {
		latest = img
	})
	for _, stroke := range req.Strokes {
		if len(stroke) == 0 {
			continue
		}
		pad.BeginStroke(signature.Point{X: stroke[0].X, Y: stroke[0].Y})
		for _, pt := range stroke[1:] {
			pad.ExtendStroke(signature.Point{X: pt.X, Y: pt.Y})
		}
		pad.EndStroke()
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.SignatureRenderResponse{Image: latest})
}

// clientIP prefers the forwarding header the edge proxy sets and falls back
// to the connection's remote address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
