package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/akrishnanDG/migration-analyzer/internal/models"
)

// Analyze uploads an artifact and returns the id of the stored report
func (c *Client) Analyze(ctx context.Context, artifact *models.Artifact, cfg models.MigrationConfig) (string, error) {
	body, contentType, err := encodeSubmission(artifact, cfg)
	if err != nil {
		return "", err
	}

	var resp models.AnalysisResponse
	err = c.do(ctx, request{
		op:            opAnalyze,
		method:        http.MethodPost,
		path:          "/migration/analyze",
		body:          body,
		contentType:   contentType,
		authenticated: true,
	}, &resp)
	if err != nil {
		return "", err
	}

	if resp.ReportID == "" {
		return "", &RequestError{Op: opAnalyze.name, StatusCode: http.StatusOK, Message: opAnalyze.fallback}
	}
	return resp.ReportID, nil
}

// GetReport fetches a full report by id
func (c *Client) GetReport(ctx context.Context, reportID string) (*models.MigrationReport, error) {
	var report models.MigrationReport
	err := c.do(ctx, request{
		op:            opGetReport,
		method:        http.MethodGet,
		path:          "/migration/report/" + url.PathEscape(reportID),
		authenticated: true,
	}, &report)
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// ListReports returns one page of report summaries in server order
func (c *Client) ListReports(ctx context.Context, limit, skip int) ([]models.ReportSummary, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("skip", strconv.Itoa(skip))

	var list models.ReportList
	err := c.do(ctx, request{
		op:            opListReports,
		method:        http.MethodGet,
		path:          "/migration/reports?" + query.Encode(),
		authenticated: true,
	}, &list)
	if err != nil {
		return nil, err
	}
	if list.Reports == nil {
		list.Reports = []models.ReportSummary{}
	}
	return list.Reports, nil
}

// DeleteReport removes a report on the service. Any 2xx is success; the
// body is not read.
func (c *Client) DeleteReport(ctx context.Context, reportID string) error {
	return c.do(ctx, request{
		op:            opDeleteReport,
		method:        http.MethodDelete,
		path:          "/migration/report/" + url.PathEscape(reportID),
		authenticated: true,
	}, nil)
}

func encodeSubmission(artifact *models.Artifact, cfg models.MigrationConfig) ([]byte, string, error) {
	src, err := artifact.Open()
	if err != nil {
		return nil, "", fmt.Errorf("failed to open artifact: %w", err)
	}
	defer src.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", artifact.Name)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, src); err != nil {
		return nil, "", fmt.Errorf("failed to read artifact: %w", err)
	}
	if err := w.WriteField("source_version", cfg.SourceVersion); err != nil {
		return nil, "", err
	}
	if err := w.WriteField("target_version", cfg.TargetVersion); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}
