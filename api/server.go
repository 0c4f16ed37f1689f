package api

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/klauspost/compress/gzhttp"
	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"

	"github.com/dassCS/qP/logger"
	"github.com/dassCS/qP/qp"
	"github.com/dassCS/qP/raster"
)

// DefaultMaxBodyBytes caps request bodies when Config.MaxBodyBytes is unset.
const DefaultMaxBodyBytes int64 = 64 << 20

// DefaultMaxPixels caps decoded image area when Config.MaxPixels is unset.
const DefaultMaxPixels int64 = 1 << 26

const headerRequestID = "X-Request-Id"

// ErrTooManyPixels is returned when a request image declares more pixels
// than the server accepts.
var ErrTooManyPixels = errors.New("api: image exceeds the pixel limit")

type Config struct {
	MaxBodyBytes int64
	// MaxPixels bounds width*height of any image the server decodes.
	MaxPixels int64
	Raster    *raster.Options
	Logger    logger.Logger
}

type Server struct {
	maxBody   int64
	maxPixels int64
	raster    *raster.Options
	log       logger.Logger
}

func NewServer(cfg Config) *Server {
	s := &Server{
		maxBody:   cfg.MaxBodyBytes,
		maxPixels: cfg.MaxPixels,
		raster:    cfg.Raster,
		log:       cfg.Logger,
	}
	if s.maxBody <= 0 {
		s.maxBody = DefaultMaxBodyBytes
	}
	if s.maxPixels <= 0 {
		s.maxPixels = DefaultMaxPixels
	}
	if s.log == nil {
		s.log = logger.Default()
	}
	return s
}

// NewEcho returns an echo instance with the standard middleware and s registered.
func NewEcho(s *Server) *echo.Echo {
	e := echo.New()
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(s.requestID)
	s.Register(e)
	return e
}

// compressibleTypes are the response types worth gzipping; the other image
// formats are already compressed.
var compressibleTypes = []string{
	echo.MIMEApplicationJSON,
	"image/bmp",
	"image/tiff",
	"image/x-tga",
}

// Compress wraps h so responses of uncompressed types are gzipped for
// clients that accept it.
func Compress(h http.Handler) (http.Handler, error) {
	wrap, err := gzhttp.NewWrapper(gzhttp.ContentTypes(compressibleTypes))
	if err != nil {
		return nil, err
	}
	return wrap(h), nil
}

func (s *Server) Register(e *echo.Echo) {
	e.POST("/v1/encode", s.handleEncode)
	e.POST("/v1/decode", s.handleDecode)
	e.POST("/v1/info", s.handleInfo)
	e.GET("/healthz", s.handleHealth)
}

// requestID keeps an incoming X-Request-Id or assigns a new one, echoes it on
// the response and attaches it to the request logger.
func (s *Server) requestID(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c *echo.Context) error {
		req := c.Request()
		id := req.Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Response().Header().Set(headerRequestID, id)
		ctx := logger.WithContext(req.Context(), s.log.With("request_id", id))
		c.SetRequest(req.WithContext(ctx))
		return next(c)
	}
}

func (s *Server) handleEncode(c *echo.Context) error {
	body, err := s.readBody(c)
	if err != nil {
		return s.writeFailure(c, err)
	}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(body)); err == nil {
		if err := s.checkPixels(int64(cfg.Width)*int64(cfg.Height), cfg.Width, cfg.Height); err != nil {
			return s.writeFailure(c, err)
		}
	}
	out, err := EncodeImage(body)
	if err != nil {
		return s.writeFailure(c, err)
	}
	logger.FromContext(c.Request().Context()).Debug("encoded", "in_bytes", len(body), "out_bytes", len(out))
	return writeBytes(c, "application/octet-stream", out)
}

func (s *Server) handleDecode(c *echo.Context) error {
	f, err := raster.ParseFormat(c.QueryParam("format"))
	if err != nil {
		return s.writeFailure(c, err)
	}
	body, err := s.readBody(c)
	if err != nil {
		return s.writeFailure(c, err)
	}
	if err := s.checkQP(body); err != nil {
		return s.writeFailure(c, err)
	}
	out, err := DecodeImage(body, f, s.raster)
	if err != nil {
		return s.writeFailure(c, err)
	}
	logger.FromContext(c.Request().Context()).Debug("decoded", "format", f.String(), "in_bytes", len(body), "out_bytes", len(out))
	return writeBytes(c, f.ContentType(), out)
}

type infoResponse struct {
	qp.Info
	Ratio float64 `json:"ratio"`
}

func (s *Server) handleInfo(c *echo.Context) error {
	body, err := s.readBody(c)
	if err != nil {
		return s.writeFailure(c, err)
	}
	if err := s.checkQP(body); err != nil {
		return s.writeFailure(c, err)
	}
	info, err := Inspect(body)
	if err != nil {
		return s.writeFailure(c, err)
	}
	return writeJSON(c, http.StatusOK, infoResponse{Info: info, Ratio: info.Ratio()})
}

func (s *Server) handleHealth(c *echo.Context) error {
	return writeJSON(c, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readBody(c *echo.Context) ([]byte, error) {
	body := http.MaxBytesReader(c.Response(), c.Request().Body, s.maxBody)
	defer body.Close()
	return io.ReadAll(body)
}

// checkQP rejects QP bodies whose header promises more pixels than allowed,
// before any payload is decompressed.
func (s *Server) checkQP(body []byte) error {
	hdr, err := qp.ParseHeader(body)
	if err != nil {
		return err
	}
	n, err := hdr.PixelLen()
	if err != nil {
		return err
	}
	return s.checkPixels(int64(n/4), int(hdr.Width), int(hdr.Height))
}

func (s *Server) checkPixels(n int64, w, h int) error {
	if n > s.maxPixels {
		return fmt.Errorf("%w: %dx%d is over %d pixels", ErrTooManyPixels, w, h, s.maxPixels)
	}
	return nil
}

type errorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (s *Server) writeFailure(c *echo.Context, err error) error {
	status, errType := classify(err)
	log := logger.FromContext(c.Request().Context())
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "path", c.Request().URL.Path, "err", err)
	} else {
		log.Debug("request rejected", "path", c.Request().URL.Path, "status", status, "err", err)
	}
	return writeJSON(c, status, map[string]errorBody{
		"error": {Message: err.Error(), Type: errType},
	})
}

func classify(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "request_too_large"
	case errors.Is(err, ErrTooManyPixels):
		return http.StatusRequestEntityTooLarge, "image_too_large"
	case errors.Is(err, image.ErrFormat):
		return http.StatusUnsupportedMediaType, "unsupported_media_type"
	case errors.Is(err, qp.ErrInvalidMagic),
		errors.Is(err, qp.ErrUnsupportedCompression),
		errors.Is(err, qp.ErrUnsupportedChannels),
		errors.Is(err, qp.ErrSizeMismatch),
		errors.Is(err, qp.ErrCorruptPayload),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, io.EOF),
		errors.Is(err, raster.ErrUnsupportedFormat),
		errors.Is(err, raster.ErrDimensions):
		return http.StatusBadRequest, "invalid_request_error"
	default:
		return http.StatusInternalServerError, "server_error"
	}
}

func writeBytes(c *echo.Context, contentType string, data []byte) error {
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, contentType)
	res.Header().Set("Content-Length", strconv.Itoa(len(data)))
	res.WriteHeader(http.StatusOK)
	_, err := res.Write(data)
	return err
}

func writeJSON(c *echo.Context, status int, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	res.WriteHeader(status)
	_, err = res.Write(data)
	return err
}
