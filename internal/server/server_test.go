package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.followtheprocess.codes/log"
	"go.followtheprocess.codes/preset/internal/config"
	"go.followtheprocess.codes/preset/internal/convert"
	"go.followtheprocess.codes/preset/internal/server"
	"go.followtheprocess.codes/test"
	"go.uber.org/goleak"
)

const templateSource = "s = {\n  title = \"Test\",\n  Exposure2012 = 0.5,\n  Clarity2012 = 10,\n}\n"

// upload is a single file part of a multipart request.
type upload struct {
	name string
	data string
}

// newServer returns a server with a fixed clock that logs nowhere.
func newServer(t *testing.T, cfg config.Config) *server.Server {
	t.Helper()

	clock := func() time.Time { return time.Unix(1700000000, 0) }

	srv, err := server.New(cfg, log.New(io.Discard), server.WithConverter(convert.New(convert.WithClock(clock))))
	test.Ok(t, err)

	return srv
}

// multipartRequest builds a POST /api/convert request.
func multipartRequest(t *testing.T, outputFormat string, uploads ...upload) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if outputFormat != "" {
		test.Ok(t, writer.WriteField("outputFormat", outputFormat))
	}

	for _, file := range uploads {
		part, err := writer.CreateFormFile("file", file.name)
		test.Ok(t, err)

		_, err = io.WriteString(part, file.data)
		test.Ok(t, err)
	}

	test.Ok(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/convert", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return req
}

// errorBody decodes the JSON error from a response.
func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Error string `json:"error"`
	}

	test.Ok(t, json.NewDecoder(rec.Body).Decode(&body), test.Context("response body was not a JSON error"))

	return body.Error
}

func TestConvert(t *testing.T) {
	srv := newServer(t, config.Default())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, multipartRequest(t, "xmp", upload{name: "My Preset!!.lrtemplate", data: templateSource}))

	test.Equal(t, rec.Code, http.StatusOK, test.Context("body: %s", rec.Body.String()))

	header := rec.Header()
	test.Equal(t, header.Get("Content-Type"), "application/rdf+xml")
	test.Equal(t, header.Get("Content-Disposition"), `attachment; filename="My_Preset__.xmp"`)
	test.Equal(t, header.Get("X-Detected-Format"), "lrtemplate")
	test.Equal(t, header.Get("X-Output-Filename"), "My_Preset__.xmp")
	test.Equal(t, header.Get("X-Settings-Count"), "4")
	test.Equal(t, header.Get("Access-Control-Allow-Origin"), "*")
	test.Ok(t, uuid.Validate(header.Get("X-Request-Id")))

	body := rec.Body.String()
	test.True(t, strings.Contains(body, `crs:Exposure2012="0.5"`), test.Context("body: %s", body))
	test.True(t, strings.Contains(body, `crs:Clarity2012="10"`), test.Context("body: %s", body))
	test.True(t, strings.Contains(body, `crs:Name="My Preset!!"`), test.Context("body: %s", body))
}

func TestConvertDNGPassThrough(t *testing.T) {
	srv := newServer(t, config.Default())

	dng := "II*\x00\x08\x00\x00\x00<x:xmpmeta><rdf:Description crs:Exposure2012=\"1\"/></x:xmpmeta>\x00\x01"

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, multipartRequest(t, "DNG", upload{name: "IMG_0001.dng", data: dng}))

	test.Equal(t, rec.Code, http.StatusOK, test.Context("body: %s", rec.Body.String()))
	test.Equal(t, rec.Header().Get("Content-Type"), "image/x-adobe-dng")
	test.Equal(t, rec.Header().Get("X-Settings-Count"), "1")
	test.Equal(t, rec.Body.String(), dng)
}

func TestConvertErrors(t *testing.T) {
	small := config.Default()
	small.MaxUploadSize = config.MB

	tests := []struct {
		request func(t *testing.T) *http.Request // Builds the request to send
		name    string                           // Name of the test case
		want    string                           // Expected error message
		cfg     config.Config                    // Server config
	}{
		{
			name: "not multipart",
			cfg:  config.Default(),
			request: func(t *testing.T) *http.Request {
				req := httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader(`{"file": "nope"}`))
				req.Header.Set("Content-Type", "application/json")

				return req
			},
			want: "expected multipart/form-data request",
		},
		{
			name: "no content type",
			cfg:  config.Default(),
			request: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader("hello"))
			},
			want: "expected multipart/form-data request",
		},
		{
			name: "malformed multipart",
			cfg:  config.Default(),
			request: func(t *testing.T) *http.Request {
				req := httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader("not really multipart"))
				req.Header.Set("Content-Type", "multipart/form-data; boundary=xyz")

				return req
			},
			want: "expected multipart/form-data request",
		},
		{
			name: "file too large",
			cfg:  small,
			request: func(t *testing.T) *http.Request {
				big := strings.Repeat("a", config.MB+1)
				return multipartRequest(t, "xmp", upload{name: "big.lrtemplate", data: big})
			},
			want: "file too large, maximum is 1MB",
		},
		{
			name: "body too large",
			cfg:  small,
			request: func(t *testing.T) *http.Request {
				big := strings.Repeat("a", 2*config.MB)
				return multipartRequest(t, "xmp", upload{name: "big.lrtemplate", data: big})
			},
			want: "file too large, maximum is 1MB",
		},
		{
			name: "missing output format",
			cfg:  config.Default(),
			request: func(t *testing.T) *http.Request {
				return multipartRequest(t, "", upload{name: "a.lrtemplate", data: templateSource})
			},
			want: "output format must be .lrtemplate, .xmp, or .dng",
		},
		{
			name: "bad output format",
			cfg:  config.Default(),
			request: func(t *testing.T) *http.Request {
				return multipartRequest(t, "jpeg", upload{name: "a.lrtemplate", data: templateSource})
			},
			want: "output format must be .lrtemplate, .xmp, or .dng",
		},
		{
			name: "output format checked before file",
			cfg:  config.Default(),
			request: func(t *testing.T) *http.Request {
				return multipartRequest(t, "gif")
			},
			want: "output format must be .lrtemplate, .xmp, or .dng",
		},
		{
			name: "no file",
			cfg:  config.Default(),
			request: func(t *testing.T) *http.Request {
				return multipartRequest(t, "xmp")
			},
			want: "no file uploaded",
		},
		{
			name: "two files",
			cfg:  config.Default(),
			request: func(t *testing.T) *http.Request {
				return multipartRequest(
					t,
					"xmp",
					upload{name: "a.lrtemplate", data: templateSource},
					upload{name: "b.lrtemplate", data: templateSource},
				)
			},
			want: "only one file may be uploaded",
		},
		{
			name: "unsupported input",
			cfg:  config.Default(),
			request: func(t *testing.T) *http.Request {
				return multipartRequest(t, "xmp", upload{name: "notes.txt", data: "shopping list"})
			},
			want: "unsupported input file: notes.txt",
		},
		{
			name: "parse error",
			cfg:  config.Default(),
			request: func(t *testing.T) *http.Request {
				return multipartRequest(t, "xmp", upload{name: "empty.lrtemplate", data: "-- nothing"})
			},
			want: "preset settings could not be read from .lrtemplate file",
		},
		{
			name: "conversion error",
			cfg:  config.Default(),
			request: func(t *testing.T) *http.Request {
				return multipartRequest(t, "dng", upload{name: "a.xmp", data: `<x:xmpmeta crs:Exposure2012="1"/>`})
			},
			want: "converting into .dng requires a .dng source file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, tt.cfg)

			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, tt.request(t))

			test.Equal(t, rec.Code, http.StatusBadRequest)
			test.Equal(t, rec.Header().Get("Content-Type"), "application/json; charset=utf-8")
			test.Equal(t, errorBody(t, rec), tt.want)
		})
	}
}

func TestRoutes(t *testing.T) {
	tests := []struct {
		name   string // Name of the test case
		method string // HTTP method
		path   string // Request path
		body   string // Expected exact body, empty to skip
		status int    // Expected status code
	}{
		{
			name:   "health",
			method: http.MethodGet,
			path:   "/api/health",
			status: http.StatusOK,
			body:   `{"ok":true,"service":"preset-converter-api"}` + "\n",
		},
		{
			name:   "convert wrong method",
			method: http.MethodGet,
			path:   "/api/convert",
			status: http.StatusMethodNotAllowed,
			body:   `{"error":"method not allowed"}` + "\n",
		},
		{
			name:   "health wrong method",
			method: http.MethodDelete,
			path:   "/api/health",
			status: http.StatusMethodNotAllowed,
			body:   `{"error":"method not allowed"}` + "\n",
		},
		{
			name:   "unknown api path",
			method: http.MethodGet,
			path:   "/api/nope",
			status: http.StatusNotFound,
			body:   `{"error":"not found"}` + "\n",
		},
		{
			name:   "root without static dir",
			method: http.MethodGet,
			path:   "/",
			status: http.StatusNotFound,
			body:   `{"error":"not found"}` + "\n",
		},
		{
			name:   "preflight",
			method: http.MethodOptions,
			path:   "/api/convert",
			status: http.StatusNoContent,
			body:   "",
		},
		{
			name:   "metrics",
			method: http.MethodGet,
			path:   "/metrics",
			status: http.StatusOK,
			body:   "",
		},
	}

	srv := newServer(t, config.Default())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			test.Equal(t, rec.Code, tt.status)
			test.NotEqual(t, rec.Header().Get("X-Request-Id"), "")

			if tt.body != "" {
				test.Diff(t, rec.Body.String(), tt.body)
			}
		})
	}
}

func TestPreflightHeaders(t *testing.T) {
	srv := newServer(t, config.Default())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/convert", nil))

	test.Equal(t, rec.Code, http.StatusNoContent)
	test.Equal(t, rec.Header().Get("Access-Control-Allow-Origin"), "*")
	test.True(t, strings.Contains(rec.Header().Get("Access-Control-Allow-Methods"), "POST"))
	test.True(t, strings.Contains(rec.Header().Get("Access-Control-Expose-Headers"), "X-Output-Filename"))
}

func TestRequestIDReused(t *testing.T) {
	srv := newServer(t, config.Default())
	id := uuid.NewString()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-Id", id)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	test.Equal(t, rec.Header().Get("X-Request-Id"), id)

	// Garbage is replaced
	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-Id", "<script>")

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	test.NotEqual(t, rec.Header().Get("X-Request-Id"), "<script>")
	test.Ok(t, uuid.Validate(rec.Header().Get("X-Request-Id")))
}

func TestMetricsRecorded(t *testing.T) {
	srv := newServer(t, config.Default())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, multipartRequest(t, "xmp", upload{name: "a.lrtemplate", data: templateSource}))
	test.Equal(t, rec.Code, http.StatusOK)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	test.Equal(t, rec.Code, http.StatusOK)

	body := rec.Body.String()
	for _, want := range []string{
		`preset_conversions_total{result="success",source="lrtemplate",target="xmp"} 1`,
		`preset_http_requests_total{code="200",route="/api/convert"} 1`,
		`preset_upload_size_bytes_count 1`,
	} {
		test.True(t, strings.Contains(body, want), test.Context("metrics missing %s", want))
	}
}

func TestStatic(t *testing.T) {
	dir := t.TempDir()
	test.Ok(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>Preset</h1>"), 0o644))
	test.Ok(t, os.MkdirAll(filepath.Join(dir, "assets"), 0o755))
	test.Ok(t, os.WriteFile(filepath.Join(dir, "assets", "app.js"), []byte("console.log('hi')"), 0o644))

	cfg := config.Default()
	cfg.StaticDir = dir

	srv := newServer(t, cfg)

	tests := []struct {
		name   string // Name of the test case
		method string // HTTP method
		path   string // Request path
		want   string // Expected body substring
		status int    // Expected status
	}{
		{name: "root", method: http.MethodGet, path: "/", want: "<h1>Preset</h1>", status: http.StatusOK},
		{name: "asset", method: http.MethodGet, path: "/assets/app.js", want: "console.log", status: http.StatusOK},
		{name: "client route", method: http.MethodGet, path: "/convert/batch", want: "<h1>Preset</h1>", status: http.StatusOK},
		{name: "api still json", method: http.MethodGet, path: "/api/missing", want: `"not found"`, status: http.StatusNotFound},
		{name: "post to static", method: http.MethodPost, path: "/", want: `"not found"`, status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			test.Equal(t, rec.Code, tt.status)
			test.True(t, strings.Contains(rec.Body.String(), tt.want), test.Context("body: %s", rec.Body.String()))
		})
	}
}

func TestNewInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.MaxUploadSize = -1

	_, err := server.New(cfg, log.New(io.Discard))
	test.Err(t, err)
}

func TestServeShutdown(t *testing.T) {
	defer goleak.VerifyNone(t)

	srv := newServer(t, config.Default())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	test.Ok(t, err)

	ctx, cancel := context.WithCancel(t.Context())

	errs := make(chan error, 1)
	go func() {
		errs <- srv.Serve(ctx, ln)
	}()

	client := &http.Client{Timeout: 5 * time.Second}

	res, err := client.Get("http://" + ln.Addr().String() + "/api/health")
	test.Ok(t, err)

	body, err := io.ReadAll(res.Body)
	test.Ok(t, err)
	test.Ok(t, res.Body.Close())

	test.Equal(t, res.StatusCode, http.StatusOK)
	test.True(t, strings.Contains(string(body), `"ok":true`))

	client.CloseIdleConnections()
	cancel()

	select {
	case err := <-errs:
		test.Ok(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after context was cancelled")
	}
}
