// Package server exposes the bill converter over HTTP. Uploading an export
// to POST /convert returns the converted CSV as a download.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/ginjaninja78/bill-transformer/internal/converter"
	"github.com/ginjaninja78/bill-transformer/internal/logger"
	"github.com/ginjaninja78/bill-transformer/internal/tablewriter"
	"github.com/ginjaninja78/bill-transformer/internal/types"
	"github.com/ginjaninja78/bill-transformer/pkg/utils"
)

// MaxUploadSize is the default limit on the size of an uploaded export.
const MaxUploadSize = 32 << 20

const (
	messageNoFile       = "请选择要上传的文件"
	messageFileTooLarge = "文件过大，请上传不超过 32 MB 的账单"
)

// Options configures a Server.
type Options struct {
	// DefaultMember is used when a request names no member.
	DefaultMember string

	// Members is returned by GET /formats for member pickers.
	Members []string

	// MaxUploadSize limits the request body of POST /convert. Zero means
	// MaxUploadSize.
	MaxUploadSize int64
}

// Server serves the conversion endpoints.
type Server struct {
	pipeline *converter.Pipeline
	options  Options
	logger   zerolog.Logger
}

// New creates a Server.
func New(pipeline *converter.Pipeline, options Options, log zerolog.Logger) *Server {
	if options.MaxUploadSize <= 0 {
		options.MaxUploadSize = MaxUploadSize
	}
	return &Server{
		pipeline: pipeline,
		options:  options,
		logger:   log,
	}
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/formats", s.handleFormats)
	r.Get("/classify", s.handleClassify)
	r.Post("/convert", s.handleConvert)

	return r
}

// ListenAndServe serves on addr until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// requestLogger tags every request with an ID and logs its outcome.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqLog := s.logger.With().
			Str("request_id", utils.NewRunID()).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Logger()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(logger.WithContext(r.Context(), reqLog)))

		reqLog.Info().
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type formatsResponse struct {
	Formats       []string `json:"formats"`
	Members       []string `json:"members"`
	DefaultMember string   `json:"default_member"`
}

func (s *Server) handleFormats(w http.ResponseWriter, r *http.Request) {
	resp := formatsResponse{
		Members:       s.options.Members,
		DefaultMember: s.options.DefaultMember,
	}
	for _, f := range types.Formats() {
		resp.Formats = append(resp.Formats, f.String())
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleClassify returns the output row a single name would produce.
func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"title": types.TitleRow(),
		"row":   s.pipeline.Classify(name, s.member(r)),
	})
}

// handleConvert converts a multipart upload (field "file") and returns it
// as a CSV download.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	format, err := types.ParseFormat(r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, http.StatusBadRequest, converter.UserMessage(err))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.options.MaxUploadSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log.Warn().Int64("limit", tooLarge.Limit).Msg("upload too large")
			writeError(w, http.StatusRequestEntityTooLarge, messageFileTooLarge)
			return
		}
		writeError(w, http.StatusBadRequest, messageNoFile)
		return
	}
	defer file.Close()

	output, err := s.pipeline.Convert(r.Context(), converter.Input{
		Name:   header.Filename,
		Data:   file,
		Format: format,
		Member: s.member(r),
	})
	if err != nil {
		log.Warn().Err(err).Str("upload", header.Filename).Msg("conversion failed")
		writeError(w, http.StatusBadRequest, converter.UserMessage(err))
		return
	}

	log.Info().
		Str("upload", header.Filename).
		Str("output", output.FileName).
		Int("rows", output.Summary.Rows).
		Msg("converted upload")

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", contentDisposition(output.FileName))
	if err := tablewriter.WriteCSV(w, output.Table); err != nil {
		log.Error().Err(err).Msg("failed to write response")
	}
}

// member returns the member query parameter or the default member.
func (s *Server) member(r *http.Request) string {
	if m := r.URL.Query().Get("member"); m != "" {
		return m
	}
	return s.options.DefaultMember
}

// contentDisposition builds an attachment header for a UTF-8 file name.
func contentDisposition(fileName string) string {
	return fmt.Sprintf(`attachment; filename="export.csv"; filename*=UTF-8''%s`, url.PathEscape(fileName))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
