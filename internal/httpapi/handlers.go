package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/MeghanaMH1/rag-edi-assistant/internal/edi"
	"github.com/MeghanaMH1/rag-edi-assistant/internal/ingest"
	"github.com/MeghanaMH1/rag-edi-assistant/internal/lifecycle"
	"github.com/MeghanaMH1/rag-edi-assistant/internal/retrieval"
)

// UploadResponse is the response body for POST /upload-csv.
type UploadResponse struct {
	Message    string `json:"message"`
	RowsLoaded int    `json:"rows_loaded"`
}

// handleUploadCSV replaces the in-memory dataset with the uploaded file.
func (s *Server) handleUploadCSV(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file field is required")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot open uploaded file")
	}
	defer f.Close()

	uploadID := uuid.NewString()
	records, err := ingest.ParseCSV(f)
	if err != nil {
		s.logger.Warn("csv parse failed",
			zap.String("upload_id", uploadID),
			zap.String("filename", fileHeader.Filename),
			zap.Error(err),
		)
		if errors.Is(err, ingest.ErrEmptyFile) {
			return echo.NewHTTPError(http.StatusBadRequest, "uploaded file is empty")
		}
		return echo.NewHTTPError(http.StatusBadRequest, "invalid CSV file")
	}

	snapshot := s.store.Replace(records)
	s.logger.Info("csv uploaded",
		zap.String("upload_id", uploadID),
		zap.String("filename", fileHeader.Filename),
		zap.Int("rows", len(records)),
		zap.Uint64("generation", snapshot.Generation),
	)

	// Warm the answer-rewrite model so the first question is not slow.
	if s.explainer != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			s.explainer.Warmup(ctx)
		}()
	}

	return c.JSON(http.StatusOK, UploadResponse{
		Message:    "CSV uploaded and indexed successfully",
		RowsLoaded: len(records),
	})
}

// AskRequest is the request body for POST /ask.
type AskRequest struct {
	Question string `json:"question"`
}

// AskResponse is the response body for POST /ask.
type AskResponse struct {
	Answer string `json:"answer"`
	Intent string `json:"intent"`
}

// handleAsk answers one natural-language question over the loaded rows.
func (s *Server) handleAsk(c echo.Context) error {
	var req AskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Question == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "question field is required")
	}

	ctx := c.Request().Context()
	snapshot := s.store.Snapshot()

	cls := s.classifier.Classify(ctx, req.Question)
	answer := s.engine.Execute(ctx, req.Question, cls, snapshot)
	if s.explainer != nil {
		answer = s.explainer.Explain(ctx, answer)
	}

	return c.JSON(http.StatusOK, AskResponse{
		Answer: answer,
		Intent: string(cls.Intent),
	})
}

// POListItem is one purchase order in the PO listing.
type POListItem struct {
	DocumentID string `json:"document_id"`
	Partner    string `json:"partner,omitempty"`
	Status     string `json:"status,omitempty"`
	PODate     string `json:"po_date,omitempty"`
}

// POListResponse is the response body for GET /api/v1/lifecycle/pos.
type POListResponse struct {
	CSVLoaded bool         `json:"csv_loaded"`
	POs       []POListItem `json:"pos"`
}

// handlePOList lists all purchase orders in received order.
func (s *Server) handlePOList(c echo.Context) error {
	snapshot := s.store.Snapshot()
	if snapshot.Empty() {
		return c.JSON(http.StatusOK, POListResponse{CSVLoaded: false, POs: []POListItem{}})
	}

	pos := make([]POListItem, 0)
	for _, r := range snapshot.Records {
		if r.TransactionType != edi.TypeOrder || r.DocumentID == "" {
			continue
		}
		pos = append(pos, POListItem{
			DocumentID: r.DocumentID,
			Partner:    r.Partner,
			Status:     r.Status,
			PODate:     r.ExpectedDate,
		})
	}
	return c.JSON(http.StatusOK, POListResponse{CSVLoaded: true, POs: pos})
}

// handleLifecycle assembles the document chain for one purchase order.
func (s *Server) handleLifecycle(c echo.Context) error {
	snapshot := s.store.Snapshot()
	if snapshot.Empty() {
		return echo.NewHTTPError(http.StatusBadRequest, "No CSV uploaded")
	}

	idx := s.builder.For(snapshot)
	result, err := lifecycle.Assemble(c.Request().Context(), idx, c.Param("id"))
	switch {
	case errors.Is(err, lifecycle.ErrOrderNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "PO not found")
	case errors.Is(err, lifecycle.ErrTypeMismatch):
		return echo.NewHTTPError(http.StatusBadRequest, "PO must have transaction_type=850")
	case err != nil:
		s.logger.Error("lifecycle assembly failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "lifecycle assembly failed")
	}
	return c.JSON(http.StatusOK, result)
}

// SearchRequest is the request body for POST /api/v1/search.
type SearchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

// SearchResponse is the response body for POST /api/v1/search.
type SearchResponse struct {
	Matches []retrieval.Match `json:"matches"`
}

// handleSearch runs semantic row search over the loaded rows.
func (s *Server) handleSearch(c echo.Context) error {
	if s.searcher == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "semantic search is not available")
	}

	var req SearchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query field is required")
	}
	if req.TopK <= 0 {
		req.TopK = s.config.SearchTopK
	}

	matches, err := s.searcher.Search(c.Request().Context(), req.Query, req.TopK)
	switch {
	case errors.Is(err, retrieval.ErrNoData):
		return echo.NewHTTPError(http.StatusBadRequest, "No CSV uploaded")
	case err != nil:
		s.logger.Error("semantic search failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
	}
	return c.JSON(http.StatusOK, SearchResponse{Matches: matches})
}
