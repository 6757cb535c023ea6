package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/vbilous/signalbot/internal/core/domain"
	"github.com/vbilous/signalbot/internal/core/ports"
	"github.com/vbilous/signalbot/internal/testutil"
)

func TestCreateKey(t *testing.T) {
	svc := new(testutil.MockAccessService)
	expires := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.On("IssueKey", int64(42), domain.DurationWeek).
		Return(&ports.IssuedKey{ID: "id1", Value: "sig_abc", ExpiresAt: &expires}, nil)

	out := &bytes.Buffer{}
	if err := createKey(svc, 42, "week", out); err != nil {
		t.Fatalf("createKey failed: %v", err)
	}

	if !bytes.Contains(out.Bytes(), []byte("Access Key Created Successfully!")) {
		t.Errorf("expected success message in output")
	}
	if !bytes.Contains(out.Bytes(), []byte("sig_abc")) {
		t.Errorf("expected key value in output")
	}
	svc.AssertExpectations(t)
}

func TestCreateKeyInvalidDuration(t *testing.T) {
	svc := new(testutil.MockAccessService)
	out := &bytes.Buffer{}

	if err := createKey(svc, 42, "fortnight", out); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}

func TestListKeys(t *testing.T) {
	keys := new(testutil.MockKeyRepo)
	owner := int64(7)
	keys.On("ListKeys").Return([]domain.AccessKey{
		{ID: "id1", Active: true, OwnerID: &owner},
		{ID: "id2", Active: false},
	}, nil)

	out := &bytes.Buffer{}
	if err := listKeys(keys, out); err != nil {
		t.Fatalf("listKeys failed: %v", err)
	}

	if !bytes.Contains(out.Bytes(), []byte("id1")) {
		t.Errorf("expected key ID in output")
	}
	if !bytes.Contains(out.Bytes(), []byte("revoked")) {
		t.Errorf("expected revoked status in output")
	}
	keys.AssertExpectations(t)
}

func TestRevokeKey(t *testing.T) {
	keys := new(testutil.MockKeyRepo)
	keys.On("DeactivateKey", "id1").Return(nil)

	out := &bytes.Buffer{}
	if err := revokeKey(keys, "id1", out); err != nil {
		t.Fatalf("revokeKey failed: %v", err)
	}

	if !bytes.Contains(out.Bytes(), []byte("revoked")) {
		t.Errorf("expected revocation message in output")
	}
	keys.AssertExpectations(t)
}

func TestRevokeKeyRequiresID(t *testing.T) {
	keys := new(testutil.MockKeyRepo)
	out := &bytes.Buffer{}

	if err := revokeKey(keys, "", out); err == nil {
		t.Fatal("expected error for empty ID")
	}
}

func TestRunCommand(t *testing.T) {
	svc := new(testutil.MockAccessService)
	keys := new(testutil.MockKeyRepo)
	out := &bytes.Buffer{}

	err := run([]string{"accesskey"}, out, svc, keys)
	if err == nil || err.Error() != "expected 'create', 'list' or 'revoke' subcommands" {
		t.Errorf("expected missing subcommand error, got: %v", err)
	}

	err = run([]string{"accesskey", "unknown"}, out, svc, keys)
	if err == nil || err.Error() != "unknown subcommand: unknown" {
		t.Errorf("expected unknown subcommand error, got: %v", err)
	}

	svc.On("IssueKey", int64(9), domain.DurationForever).
		Return(&ports.IssuedKey{ID: "id1", Value: "sig_x"}, nil).Once()
	err = run([]string{"accesskey", "create", "-admin", "9", "-duration", "forever"}, out, svc, keys)
	if err != nil {
		t.Errorf("unexpected error for create: %v", err)
	}

	keys.On("ListKeys").Return([]domain.AccessKey{}, nil).Once()
	err = run([]string{"accesskey", "list"}, out, svc, keys)
	if err != nil {
		t.Errorf("unexpected error for list: %v", err)
	}

	keys.On("DeactivateKey", "id1").Return(nil).Once()
	err = run([]string{"accesskey", "revoke", "-id", "id1"}, out, svc, keys)
	if err != nil {
		t.Errorf("unexpected error for revoke: %v", err)
	}

	svc.AssertExpectations(t)
	keys.AssertExpectations(t)
}
