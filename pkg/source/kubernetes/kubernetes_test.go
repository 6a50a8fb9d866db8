package kubernetes

import (
	"context"
	"testing"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"
)

func TestEntries(t *testing.T) {
	scheme, err := NewScheme()
	if err != nil {
		t.Fatalf("NewScheme: %v", err)
	}

	secret := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{Name: "api-secrets", Namespace: "auth"},
		Data: map[string][]byte{
			"AUTH_SECRET_KEY_alice": []byte("sA"),
			"AUTH_SECRET_KEY_bob":   []byte("sB"),
		},
	}
	c := fake.NewClientBuilder().WithScheme(scheme).WithObjects(secret).Build()

	entries, err := New(c, "auth", "api-secrets").Entries(context.Background())
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries["AUTH_SECRET_KEY_alice"] != "sA" {
		t.Errorf("alice = %q, want %q", entries["AUTH_SECRET_KEY_alice"], "sA")
	}
	if entries["AUTH_SECRET_KEY_bob"] != "sB" {
		t.Errorf("bob = %q, want %q", entries["AUTH_SECRET_KEY_bob"], "sB")
	}
}

func TestEntries_NotFound(t *testing.T) {
	scheme, err := NewScheme()
	if err != nil {
		t.Fatalf("NewScheme: %v", err)
	}
	c := fake.NewClientBuilder().WithScheme(scheme).Build()

	if _, err := New(c, "auth", "missing").Entries(context.Background()); err == nil {
		t.Fatal("expected error for missing secret")
	}
}
