package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	"github.com/rhuss/secretkey/pkg/auth"
	"github.com/rhuss/secretkey/pkg/auth/secretkey"
	"github.com/rhuss/secretkey/pkg/config"
	"github.com/rhuss/secretkey/pkg/source/kubernetes"
)

func writeSecrets(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing secrets file: %v", err)
	}
}

// fileConfig returns a secretkey config reading secrets from a temp file.
func fileConfig(t *testing.T, content string) (*config.Config, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "secrets.yaml")
	writeSecrets(t, path, content)

	cfg := config.Defaults()
	cfg.Auth.SecretKey.Sources = []string{"file"}
	cfg.Auth.SecretKey.SecretsFile = path
	return &cfg, path
}

func newService(t *testing.T, cfg *config.Config, opts ...Option) *Service {
	t.Helper()
	svc, err := New(context.Background(), cfg, opts...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return svc
}

func do(t *testing.T, h http.Handler, path, authorization string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest("GET", path, nil)
	if authorization != "" {
		r.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestWhoAmI(t *testing.T) {
	cfg, _ := fileConfig(t, "AUTH_SECRET_KEY_svc1: abc123\nAUTH_SECRET_KEY_svc2: def456\n")
	cfg.Auth.SecretKey.Claims = map[string][]config.ClaimConfig{
		"*":    {{Type: "role", Value: "reader"}},
		"svc1": {{Type: "role", Value: "writer"}},
	}
	svc := newService(t, cfg)

	w := do(t, svc.Handler(), "/whoami", "Bearer abc123")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body=%s", w.Code, w.Body.String())
	}

	var id auth.Identity
	if err := json.NewDecoder(w.Body).Decode(&id); err != nil {
		t.Fatalf("decoding identity: %v", err)
	}
	if id.Subject != "svc1" || id.Scheme != "SecretKey" {
		t.Errorf("identity = %+v, want svc1/SecretKey", id)
	}
	want := []auth.Claim{
		{Type: "role", Value: "reader"},
		{Type: "role", Value: "writer"},
		{Type: auth.ClaimNameIdentifier, Value: "svc1"},
	}
	if len(id.Claims) != len(want) {
		t.Fatalf("claims = %v, want %v", id.Claims, want)
	}
	for i := range want {
		if id.Claims[i] != want[i] {
			t.Errorf("claims[%d] = %+v, want %+v", i, id.Claims[i], want[i])
		}
	}
}

func TestRejections(t *testing.T) {
	cfg, _ := fileConfig(t, "AUTH_SECRET_KEY_svc1: abc123\n")
	cfg.Auth.Realm = "internal"
	svc := newService(t, cfg)

	for _, header := range []string{"", "Basic abc123", "Bearer ", "Bearer nope"} {
		w := do(t, svc.Handler(), "/whoami", header)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", header, w.Code)
		}
		if got := w.Header().Get("WWW-Authenticate"); got != `Bearer realm="internal"` {
			t.Errorf("header %q: WWW-Authenticate = %q", header, got)
		}
	}
}

func TestBypassEndpoints(t *testing.T) {
	cfg, _ := fileConfig(t, "AUTH_SECRET_KEY_svc1: abc123\n")
	svc := newService(t, cfg)

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		if w := do(t, svc.Handler(), path, ""); w.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want 200", path, w.Code)
		}
	}

	w := do(t, svc.Handler(), "/metrics", "")
	if !strings.Contains(w.Body.String(), "secretkey_credential_store_entries") {
		t.Error("metrics output missing secretkey_credential_store_entries")
	}
}

func TestMetricsDisabled(t *testing.T) {
	cfg, _ := fileConfig(t, "AUTH_SECRET_KEY_svc1: abc123\n")
	cfg.Observability.Metrics.Enabled = false
	svc := newService(t, cfg)

	if w := do(t, svc.Handler(), "/metrics", ""); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestEmptyStore(t *testing.T) {
	cfg, _ := fileConfig(t, "UNRELATED: value\n")
	svc := newService(t, cfg)

	if w := do(t, svc.Handler(), "/readyz", ""); w.Code != http.StatusServiceUnavailable {
		t.Errorf("readyz status = %d, want 503", w.Code)
	}
	// The scheme abstains and the default decision rejects.
	if w := do(t, svc.Handler(), "/whoami", "Bearer abc123"); w.Code != http.StatusUnauthorized {
		t.Errorf("whoami status = %d, want 401", w.Code)
	}
}

func TestEmptyStoreDefaultAccept(t *testing.T) {
	cfg, _ := fileConfig(t, "")
	cfg.Auth.DefaultDecision = "yes"
	svc := newService(t, cfg)

	w := do(t, svc.Handler(), "/whoami", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"subject":"anonymous"`) {
		t.Errorf("body = %s, want anonymous identity", w.Body.String())
	}
}

func TestDuplicateSecretFailsStartup(t *testing.T) {
	cfg, _ := fileConfig(t, "AUTH_SECRET_KEY_alice: shared\nAUTH_SECRET_KEY_bob: shared\n")

	_, err := New(context.Background(), cfg)
	if !errors.Is(err, secretkey.ErrDuplicateSecret) {
		t.Fatalf("New() error = %v, want ErrDuplicateSecret", err)
	}
	if strings.Contains(err.Error(), "shared") {
		t.Errorf("error leaks the secret: %v", err)
	}
}

func TestNoneType(t *testing.T) {
	cfg := config.Defaults()
	cfg.Auth.Type = "none"
	svc := newService(t, &cfg)

	if w := do(t, svc.Handler(), "/whoami", ""); w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if svc.Secrets() != nil {
		t.Error("Secrets() non-nil for auth.type=none")
	}
	if err := svc.Reload(context.Background()); !errors.Is(err, ErrNoReload) {
		t.Errorf("Reload() = %v, want ErrNoReload", err)
	}
}

func TestChainFallsThroughToJWT(t *testing.T) {
	jwks := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"keys":[]}`))
	}))
	defer jwks.Close()

	cfg, _ := fileConfig(t, "AUTH_SECRET_KEY_svc1: abc123\n")
	cfg.Auth.Type = "chain"
	cfg.Auth.JWT.JWKSURL = jwks.URL
	svc := newService(t, cfg)

	if w := do(t, svc.Handler(), "/whoami", "Bearer abc123"); w.Code != http.StatusOK {
		t.Errorf("secret: status = %d, want 200", w.Code)
	}

	// JWT-shaped tokens reach the JWT scheme, which cannot verify them.
	if w := do(t, svc.Handler(), "/whoami", "Bearer aaa.bbb.ccc"); w.Code != http.StatusUnauthorized {
		t.Errorf("jwt: status = %d, want 401", w.Code)
	}

	// Readiness does not depend on the secret store in chain mode.
	if w := do(t, svc.Handler(), "/readyz", ""); w.Code != http.StatusOK {
		t.Errorf("readyz status = %d, want 200", w.Code)
	}
}

func TestReload(t *testing.T) {
	cfg, path := fileConfig(t, "AUTH_SECRET_KEY_svc1: abc123\n")
	svc := newService(t, cfg)

	writeSecrets(t, path, "AUTH_SECRET_KEY_svc2: rotated\n")
	if err := svc.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error: %v", err)
	}
	if w := do(t, svc.Handler(), "/whoami", "Bearer rotated"); w.Code != http.StatusOK {
		t.Errorf("new secret: status = %d, want 200", w.Code)
	}
	if w := do(t, svc.Handler(), "/whoami", "Bearer abc123"); w.Code != http.StatusUnauthorized {
		t.Errorf("old secret: status = %d, want 401", w.Code)
	}

	// A broken file keeps the current store.
	writeSecrets(t, path, "AUTH_SECRET_KEY_a: x\nAUTH_SECRET_KEY_b: x\n")
	if err := svc.Reload(context.Background()); !errors.Is(err, secretkey.ErrDuplicateSecret) {
		t.Fatalf("Reload() = %v, want ErrDuplicateSecret", err)
	}
	if w := do(t, svc.Handler(), "/whoami", "Bearer rotated"); w.Code != http.StatusOK {
		t.Errorf("after failed reload: status = %d, want 200", w.Code)
	}
}

func TestKubernetesSource(t *testing.T) {
	scheme, err := kubernetes.NewScheme()
	if err != nil {
		t.Fatal(err)
	}
	secret := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{Namespace: "apps", Name: "api-secrets"},
		Data:       map[string][]byte{"AUTH_SECRET_KEY_ci": []byte("from-cluster")},
	}
	kube := fake.NewClientBuilder().WithScheme(scheme).WithObjects(secret).Build()

	cfg := config.Defaults()
	cfg.Auth.SecretKey.Sources = []string{"kubernetes"}
	cfg.Auth.SecretKey.Kubernetes = config.KubernetesSecretConfig{Namespace: "apps", Name: "api-secrets"}
	svc := newService(t, &cfg, WithKubernetesReader(kube))

	w := do(t, svc.Handler(), "/whoami", "Bearer from-cluster")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"subject":"ci"`) {
		t.Errorf("got %d %s, want 200 for ci", w.Code, w.Body.String())
	}
}

func TestSourceLayering(t *testing.T) {
	cfg, _ := fileConfig(t, "AUTH_SECRET_KEY_svc1: from-file\n")
	cfg.Auth.SecretKey.Sources = []string{"env", "file"}
	t.Setenv("AUTH_SECRET_KEY_svc1", "from-env")

	svc := newService(t, cfg)
	if w := do(t, svc.Handler(), "/whoami", "Bearer from-file"); w.Code != http.StatusOK {
		t.Errorf("file value: status = %d, want 200", w.Code)
	}
	if w := do(t, svc.Handler(), "/whoami", "Bearer from-env"); w.Code != http.StatusUnauthorized {
		t.Errorf("overridden env value: status = %d, want 401", w.Code)
	}
}

func TestDecision(t *testing.T) {
	if Decision("yes") != auth.Yes || Decision("no") != auth.No || Decision("") != auth.No {
		t.Error("Decision mapping wrong")
	}
}
