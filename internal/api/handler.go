package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/insightdelivered/transfer-extractor/internal/extractor"
	"github.com/insightdelivered/transfer-extractor/internal/models"
	"github.com/insightdelivered/transfer-extractor/internal/parser"
	"github.com/insightdelivered/transfer-extractor/internal/store"
	"github.com/insightdelivered/transfer-extractor/internal/writer"
)

// Version is reported by the health endpoint.
var Version = "1.0.0"

const storeTimeout = 2 * time.Second

// ProcessRequest is the JSON body accepted by /api/process.
type ProcessRequest struct {
	Text     string `json:"text"`
	Session  string `json:"session"`
	Revision int64  `json:"revision"`
	// Layout forces a strategy instead of detecting one.
	Layout   string `json:"layout,omitempty"`
}

// GroupResponse is one bank's slice of the records.
type GroupResponse struct {
	Bank    string          `json:"bank"`
	Count   int             `json:"count"`
	Total   float64         `json:"total"`
	Records []models.Record `json:"records"`
}

// ProcessResponse is the JSON response from /api/process and /api/session.
type ProcessResponse struct {
	Success      bool            `json:"success"`
	Error        string          `json:"error,omitempty"`
	Session      string          `json:"session,omitempty"`
	Revision     int64           `json:"revision,omitempty"`
	Stale        bool            `json:"stale"`
	Format       models.Format   `json:"format,omitempty"`
	Count        int             `json:"count"`
	TotalAmount  float64         `json:"totalAmount"`
	TotalDisplay string          `json:"totalDisplay,omitempty"`
	Records      []models.Record `json:"records"`
	Groups       []GroupResponse `json:"groups"`
	Badges       []string        `json:"badges"`
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	engine *parser.Engine
	store  store.Store
	logger *log.Logger
}

func NewHandler(engine *parser.Engine, st store.Store, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Handler{engine: engine, store: st, logger: logger}
}

// NewApp builds the fiber application with JSON handled by sonic.
func NewApp(h *Handler, maxUploadMB int) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "transfer-extractor",
		BodyLimit:             maxUploadMB << 20,
		DisableStartupMessage: true,
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		ErrorHandler:          h.handleError,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Content-Type",
	}))
	app.Use(h.logRequest)

	h.RegisterRoutes(app)
	return app
}

// RegisterRoutes sets up the HTTP routes.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Get("/api/health", HandleHealth)
	app.Post("/api/process", h.HandleProcess)
	app.Get("/api/export/:session", h.HandleExport)
	app.Get("/api/session/:session", h.HandleSession)
	app.Delete("/api/session/:session", h.HandleClear)
}

func (h *Handler) logRequest(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	h.logger.Info("request",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"duration", time.Since(start),
	)
	return err
}

// handleError turns returned and recovered errors into the JSON error shape.
func (h *Handler) handleError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	}
	if status >= fiber.StatusInternalServerError {
		h.logger.Error("request failed", "path", c.Path(), "err", err)
	}
	return writeError(c, status, err.Error())
}

func HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"engine":  "fiber",
		"version": Version,
	})
}

// HandleProcess extracts records from the submitted text and stores them
// as the session's latest result.
func (h *Handler) HandleProcess(c *fiber.Ctx) error {
	req, err := h.readProcessRequest(c)
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, err.Error())
	}

	if req.Session == "" {
		req.Session = uuid.NewString()
	}
	if req.Revision == 0 {
		req.Revision = time.Now().UnixNano()
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), storeTimeout)
	defer cancel()

	var res models.Result
	switch {
	case strings.TrimSpace(req.Text) == "":
		// Blank input clears the session. The empty result is stored rather
		// than deleted so it keeps its revision and older requests stay stale.
		res = models.Result{Format: models.FormatNone, Records: []models.Record{}}
	case req.Layout != "":
		format, err := parser.ParseFormat(req.Layout)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, err.Error())
		}
		if res, err = h.engine.ProcessAs(req.Text, format); err != nil {
			return writeError(c, fiber.StatusBadRequest, err.Error())
		}
	default:
		res = h.engine.Process(req.Text)
	}

	saved, err := h.store.Save(ctx, req.Session, req.Revision, res)
	if err != nil {
		return errors.Wrap(err, "store result")
	}
	if !saved {
		h.logger.Debug("stale result discarded", "session", req.Session, "revision", req.Revision)
	}

	resp := newProcessResponse(req.Session, req.Revision, res)
	resp.Stale = !saved
	return c.JSON(resp)
}

func (h *Handler) readProcessRequest(c *fiber.Ctx) (ProcessRequest, error) {
	var req ProcessRequest
	contentType := strings.ToLower(string(c.Request().Header.ContentType()))

	switch {
	case strings.HasPrefix(contentType, fiber.MIMEApplicationJSON):
		if err := c.BodyParser(&req); err != nil {
			return req, errors.Wrap(err, "invalid JSON body")
		}

	case strings.HasPrefix(contentType, fiber.MIMEMultipartForm):
		file, err := c.FormFile("file")
		if err != nil {
			return req, errors.New("no file uploaded. Use form field 'file'")
		}
		text, err := readUpload(file.Filename, func() ([]byte, error) {
			f, err := file.Open()
			if err != nil {
				return nil, err
			}
			defer f.Close()
			buf := bytes.NewBuffer(make([]byte, 0, file.Size))
			_, err = buf.ReadFrom(f)
			return buf.Bytes(), err
		})
		if err != nil {
			return req, err
		}
		req.Text = text
		req.Session = c.FormValue("session")
		req.Layout = c.FormValue("layout")
		if req.Revision, err = parseRevision(c.FormValue("revision")); err != nil {
			return req, err
		}

	default:
		var err error
		req.Text = string(c.Body())
		req.Session = c.Query("session")
		req.Layout = c.Query("layout")
		if req.Revision, err = parseRevision(c.Query("revision")); err != nil {
			return req, err
		}
	}
	return req, nil
}

func parseRevision(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	rev, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errors.Errorf("invalid revision %q", s)
	}
	return rev, nil
}

// readUpload returns the text of an uploaded file, running PDFs through
// the extractor.
func readUpload(name string, read func() ([]byte, error)) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".txt", ".html", ".htm", ".pdf":
	default:
		return "", errors.Errorf("unsupported file type %q. Use .txt, .html, .htm or .pdf", ext)
	}

	data, err := read()
	if err != nil {
		return "", errors.Wrap(err, "failed to read uploaded file")
	}
	if ext != ".pdf" {
		return string(data), nil
	}

	text, err := extractor.ExtractBytes(data)
	if err != nil {
		return "", errors.Wrap(err, "PDF extraction failed")
	}
	return text, nil
}

// HandleExport renders the session's stored result as a download.
func (h *Handler) HandleExport(c *fiber.Ctx) error {
	order, ok := models.ParseOrder(c.Query("order"))
	if !ok {
		return writeError(c, fiber.StatusBadRequest, fmt.Sprintf("unknown order %q. Use flat or grouped", c.Query("order")))
	}
	w, err := writer.New(c.Query("format"), order, c.Query("header") != "false")
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, err.Error())
	}

	entry, err := h.load(c)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := w.Write(&buf, entry.Result); err != nil {
		return errors.Wrap(err, "export")
	}

	c.Attachment("transfers-" + c.Params("session") + w.Extension())
	c.Set(fiber.HeaderContentType, w.ContentType())
	return c.Send(buf.Bytes())
}

// HandleSession returns the session's stored result.
func (h *Handler) HandleSession(c *fiber.Ctx) error {
	entry, err := h.load(c)
	if err != nil {
		return err
	}
	return c.JSON(newProcessResponse(c.Params("session"), entry.Revision, entry.Result))
}

func (h *Handler) HandleClear(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), storeTimeout)
	defer cancel()

	if err := h.store.Delete(ctx, c.Params("session")); err != nil {
		return errors.Wrap(err, "clear session")
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) load(c *fiber.Ctx) (store.Entry, error) {
	ctx, cancel := context.WithTimeout(c.UserContext(), storeTimeout)
	defer cancel()

	entry, err := h.store.Load(ctx, c.Params("session"))
	if errors.Is(err, store.ErrNotFound) {
		return entry, fiber.NewError(fiber.StatusNotFound, "no result stored for this session")
	}
	if err != nil {
		return entry, errors.Wrap(err, "load session")
	}
	return entry, nil
}

func newProcessResponse(session string, revision int64, res models.Result) ProcessResponse {
	// Never nil: nil marshals to JSON null, not []
	records := res.Records
	if records == nil {
		records = []models.Record{}
	}

	groups := make([]GroupResponse, 0)
	for _, g := range res.Grouped() {
		groups = append(groups, GroupResponse{
			Bank:    g.Bank,
			Count:   len(g.Records),
			Total:   g.Total(),
			Records: g.Records,
		})
	}

	return ProcessResponse{
		Success:      true,
		Session:      session,
		Revision:     revision,
		Format:       res.Format,
		Count:        len(records),
		TotalAmount:  res.TotalAmount,
		TotalDisplay: writer.FormatDisplay(res.TotalAmount),
		Records:      records,
		Groups:       groups,
		Badges:       writer.Badges(res),
	}
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ProcessResponse{
		Success: false,
		Error:   msg,
		Records: []models.Record{},
		Groups:  []GroupResponse{},
		Badges:  []string{},
	})
}
