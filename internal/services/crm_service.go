package services

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/GrupoSemah/salidasform/internal/dtos"
	"github.com/GrupoSemah/salidasform/internal/utils"
)

const crmResourcePath = "/salidas"

// CRMService mirrors each dispatched request to the move-out tracking
// backend. The post is best-effort: every failure is logged and discarded,
// the email to branch staff has already gone out.
type CRMService interface {
	TrackMoveOut(ctx context.Context, submissionID string, req dtos.MoveOutRequest)
}

type crmService struct {
	baseURL string
	client  *http.Client
}

func NewCRMService(baseURL string) CRMService {
	return &crmService{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type crmMoveOutRecord struct {
	dtos.MoveOutRequest
	SubmissionID string `json:"submissionId"`
}

func (s *crmService) TrackMoveOut(ctx context.Context, submissionID string, req dtos.MoveOutRequest) {
	if s.baseURL == "" {
		return
	}

	body, err := json.Marshal(crmMoveOutRecord{MoveOutRequest: req, SubmissionID: submissionID})
	if err != nil {
		utils.Logger.WithError(err).Warn("CRM tracking: failed to marshal record")
		return
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+crmResourcePath, bytes.NewReader(body))
	if err != nil {
		utils.Logger.WithError(err).Warn("CRM tracking: failed to build request")
		return
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		utils.Logger.WithError(err).Warnf("CRM tracking post failed (submission %s)", submissionID)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		utils.Logger.Warnf("CRM tracking post returned %d (submission %s)", resp.StatusCode, submissionID)
		return
	}

	utils.Logger.Debugf("CRM tracking post accepted (submission %s)", submissionID)
}
