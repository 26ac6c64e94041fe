package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/opustools/opustools-go/internal/cache"
	"github.com/opustools/opustools-go/internal/handler/api"
	cMiddleware "github.com/opustools/opustools-go/internal/middleware"
	"github.com/opustools/opustools-go/internal/port"
	"github.com/opustools/opustools-go/internal/renderer"
	"github.com/opustools/opustools-go/internal/repository/mariadb"
	"github.com/opustools/opustools-go/internal/task"
	"github.com/opustools/opustools-go/internal/token"
	"github.com/opustools/opustools-go/internal/usecase/account"
	"github.com/opustools/opustools-go/internal/usecase/imagetool"
	"github.com/opustools/opustools-go/internal/usecase/pdftool"
	"github.com/opustools/opustools-go/internal/uuid"
	"github.com/opustools/opustools-go/test/testutil"
)

const maxUploadSize = 10 << 20

// resetCapture keeps the last reset link handed to the worker so tests can
// play the part of the mailbox.
type resetCapture struct {
	port.TaskDispatcher
	mu    sync.Mutex
	uid   string
	token string
}

func (d *resetCapture) EnqueuePasswordResetEmail(ctx context.Context, userID uuid.UUID, uid, token string) error {
	d.mu.Lock()
	d.uid, d.token = uid, token
	d.mu.Unlock()
	return d.TaskDispatcher.EnqueuePasswordResetEmail(ctx, userID, uid, token)
}

func (d *resetCapture) last() (string, string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.uid, d.token
}

type testServer struct {
	*httptest.Server
	resets *resetCapture
}

// setupServer wires the API the way cmd/api does, against fresh storage and
// database, with a worker consuming the same Redis.
func setupServer(t *testing.T, anonLimit int) *testServer {
	t.Helper()

	testDB, err := testutil.SetupTestDB()
	if err != nil {
		t.Fatalf("setup DB: %v", err)
	}
	t.Cleanup(func() { _ = testDB.Cleanup() })
	dbConn := testDB.DB

	strg, err := testutil.NewTestStorage(context.Background(), MinioEndpoint)
	if err != nil {
		t.Fatalf("setup storage: %v", err)
	}

	d := task.NewDispatcher(RedisAddr, "")
	t.Cleanup(func() { _ = d.Close() })
	dispatcher := &resetCapture{TaskDispatcher: d}

	workerStop := testutil.StartWorker(dbConn, strg, RedisAddr)
	t.Cleanup(workerStop)

	ca := cache.NewCache(RedisAddr, "")
	users := mariadb.NewUserRepository(dbConn)
	uploads := mariadb.NewUploadedFileRepository(dbConn)
	imageJobs := mariadb.NewImageJobRepository(dbConn)
	pdfJobs := mariadb.NewPdfJobRepository(dbConn)
	resets := mariadb.NewPasswordResetRepository(dbConn)
	tokens := token.NewManager("e2e-secret", time.Hour)
	rendererSvc := renderer.NewHTTPRenderer(ca, time.Minute)

	optionalAuth := cMiddleware.WithOptionalAuth(tokens, ca)
	requireAuth := cMiddleware.WithAuth(tokens, ca)

	r := chi.NewRouter()
	r.Use(cMiddleware.WithTrustedProxy(true))
	r.Use(middleware.Recoverer)
	r.NotFound(api.NotFoundHandler())
	r.MethodNotAllowed(api.MethodNotAllowedHandler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/image", func(r chi.Router) {
			imgCfg := imagetool.Config{MaxUploadSize: maxUploadSize, DownloadURLTTL: time.Minute, MaxDimension: 10000}
			creator := imagetool.NewJobCreator(uploads, imageJobs, strg, dispatcher, ca, uuid.NewUUID, imgCfg)
			allowance := cMiddleware.WithConversionAllowance(ca, port.ImageJobKind, anonLimit)
			r.With(optionalAuth, allowance).Post("/convert", api.CreateImageJobHandler(creator))
			r.With(cMiddleware.WithJobID()).Get("/jobs/{id}/status",
				api.GetImageJobStatusHandler(rendererSvc, imagetool.NewStatusGetter(imageJobs, strg, time.Minute)))
			r.With(cMiddleware.WithJobID()).Get("/jobs/{id}/download",
				api.DownloadImageJobHandler(imagetool.NewDownloader(imageJobs, strg)))
		})

		r.Route("/pdf", func(r chi.Router) {
			pdfCfg := pdftool.Config{MaxUploadSize: maxUploadSize, DownloadURLTTL: time.Minute}
			creator := pdftool.NewJobCreator(uploads, pdfJobs, strg, dispatcher, ca, uuid.NewUUID, pdfCfg)
			allowance := cMiddleware.WithConversionAllowance(ca, port.PdfJobKind, anonLimit)
			r.With(optionalAuth, allowance).Post("/process", api.CreatePdfJobHandler(creator))
			r.With(cMiddleware.WithJobID()).Get("/jobs/{id}/status",
				api.GetPdfJobStatusHandler(rendererSvc, pdftool.NewStatusGetter(pdfJobs, strg, time.Minute)))
			r.With(cMiddleware.WithJobID()).Get("/jobs/{id}/download",
				api.DownloadPdfJobHandler(pdftool.NewDownloader(pdfJobs, strg)))
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", api.RegisterHandler(account.NewRegisterer(users, tokens, uuid.NewUUID)))
			r.Post("/login", api.LoginHandler(account.NewAuthenticator(users, tokens)))
			r.Post("/password/reset", api.RequestPasswordResetHandler(
				account.NewPasswordResetRequester(users, resets, dispatcher, time.Hour)))
			r.Post("/password/reset/confirm", api.ConfirmPasswordResetHandler(
				account.NewPasswordResetConfirmer(users, resets)))

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/logout", api.LogoutHandler(account.NewSessionCloser(ca)))
				r.Get("/user", api.GetUserHandler(account.NewUserGetter(users)))
				r.Patch("/user", api.UpdateUserHandler(account.NewUserUpdater(users)))
			})
		})
	})

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return &testServer{Server: ts, resets: dispatcher}
}

// client sends requests as one caller: a fixed client address and,
// once logged in, a bearer token.
type client struct {
	t     *testing.T
	base  string
	ip    string
	token string
}

// newClient picks a random documentation-range IPv6 address so allowance
// counters never collide, even against a long lived Redis.
func newClient(t *testing.T, ts *testServer) *client {
	id := uuid.NewUUID()
	b := id[:]
	ip := fmt.Sprintf("2001:db8:%x:%x:%x:%x:%x:%x",
		uint16(b[0])<<8|uint16(b[1]), uint16(b[2])<<8|uint16(b[3]),
		uint16(b[4])<<8|uint16(b[5]), uint16(b[6])<<8|uint16(b[7]),
		uint16(b[8])<<8|uint16(b[9]), uint16(b[10])<<8|uint16(b[11]))
	return &client{t: t, base: ts.URL, ip: ip}
}

func (c *client) do(method, path string, body io.Reader, contentType string, header http.Header) *http.Response {
	c.t.Helper()
	req, err := http.NewRequest(method, c.base+path, body)
	if err != nil {
		c.t.Fatalf("build request: %v", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("X-Real-IP", c.ip)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func (c *client) getJSON(path string, out any) int {
	c.t.Helper()
	resp := c.do(http.MethodGet, path, nil, "", nil)
	defer resp.Body.Close()
	decode(c.t, resp, out)
	return resp.StatusCode
}

func (c *client) sendJSON(method, path string, in, out any) int {
	c.t.Helper()
	b, err := json.Marshal(in)
	if err != nil {
		c.t.Fatalf("marshal: %v", err)
	}
	resp := c.do(method, path, bytes.NewReader(b), "application/json", nil)
	defer resp.Body.Close()
	decode(c.t, resp, out)
	return resp.StatusCode
}

type formFile struct {
	field string
	name  string
	data  []byte
}

func (c *client) postForm(path string, fields map[string]string, files []formFile, out any) int {
	c.t.Helper()
	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			c.t.Fatalf("write field: %v", err)
		}
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.name)
		if err != nil {
			c.t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write(f.data); err != nil {
			c.t.Fatalf("write form file: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		c.t.Fatalf("close multipart: %v", err)
	}

	resp := c.do(http.MethodPost, path, body, mw.FormDataContentType(), nil)
	defer resp.Body.Close()
	decode(c.t, resp, out)
	return resp.StatusCode
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode %s response (%d): %v", resp.Request.URL.Path, resp.StatusCode, err)
	}
}
