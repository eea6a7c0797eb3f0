package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/sakif/peerhub/internal/auth"
	"github.com/sakif/peerhub/internal/media"
	"github.com/sakif/peerhub/internal/model"
	"github.com/sakif/peerhub/internal/repository/sqlstore"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

// fakeMedia is an in-memory media.Store. URLs look like fake://<n>.
type fakeMedia struct {
	mu         sync.Mutex
	objects    map[string][]byte
	destroyed  []string
	uploadErr  error
	destroyErr error
	n          int
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{objects: map[string][]byte{}}
}

func (f *fakeMedia) Upload(_ context.Context, u media.Upload) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	data, _ := io.ReadAll(u.Body)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n++
	url := "fake://" + u.Folder + "/" + strings.Repeat("x", f.n)
	f.objects[url] = data
	return url, nil
}

func (f *fakeMedia) Destroy(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destroyed = append(f.destroyed, url)
	if f.destroyErr != nil {
		return f.destroyErr
	}
	delete(f.objects, url)
	return nil
}

func (f *fakeMedia) has(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[url]
	return ok
}

// env bundles every service over one real SQLite store.
type env struct {
	store    *sqlstore.Store
	media    *fakeMedia
	auth     *AuthService
	projects *ProjectService
	ledger   *LedgerService
	comments *CommentService
	users    *UserService
	tokens   *auth.TokenService
	toggles  *recordingObserver
}

type recordingObserver struct {
	mu      sync.Mutex
	results []model.ToggleResult
}

func (r *recordingObserver) ObserveToggle(res model.ToggleResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()

	store, err := sqlstore.Open(ctx, sqlstore.DialectSQLite, filepath.Join(t.TempDir(), "peerhub.db"))
	if err != nil {
		t.Fatalf("sqlstore.Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}

	logger := testLogger()
	fm := newFakeMedia()
	obs := &recordingObserver{}
	projects := NewProjectService(store, fm, logger)

	return &env{
		store:    store,
		media:    fm,
		auth:     NewAuthService(store, tokens, auth.NewPasswordServiceForTest(4), logger),
		projects: projects,
		ledger:   NewLedgerService(store, store, obs, logger),
		comments: NewCommentService(store, logger),
		users:    NewUserService(store, projects, fm, logger),
		tokens:   tokens,
		toggles:  obs,
	}
}

func (e *env) register(t *testing.T, username string) *model.User {
	t.Helper()
	u, err := e.auth.Register(context.Background(), username, username+"@example.com", "correct horse battery staple")
	if err != nil {
		t.Fatalf("Register(%s) error = %v", username, err)
	}
	return u
}

func (e *env) createProject(t *testing.T, owner *model.User, title string) *model.Project {
	t.Helper()
	p, err := e.projects.Create(context.Background(), owner.ID, projectInput(title), nil)
	if err != nil {
		t.Fatalf("Create(%s) error = %v", title, err)
	}
	return p
}

func projectInput(title string) ProjectInput {
	return ProjectInput{
		Title:       ptr(title),
		Description: ptr("about " + title),
		Category:    ptr("web"),
		RepoLink:    ptr("https://github.com/example/" + title),
	}
}

func pngUpload(t *testing.T, folder string) *media.Upload {
	t.Helper()
	data := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 16)...)
	u, err := media.Prepare(bytes.NewReader(data), "image", folder, "img.png", 1<<20)
	if err != nil {
		t.Fatalf("media.Prepare() error = %v", err)
	}
	return &u
}

func ptr[T any](v T) *T { return &v }

var errBoom = errors.New("boom")
