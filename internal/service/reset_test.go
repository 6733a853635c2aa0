package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cinehome/cinehome-go/internal/crypto"
	"github.com/cinehome/cinehome-go/internal/mail"
	"github.com/cinehome/cinehome-go/internal/model"
	"github.com/cinehome/cinehome-go/internal/store"
)

func newTestResetService(users UserStore, kv store.KV, mailer mail.Mailer) *ResetService {
	return NewResetService(users, kv, mailer, testSecret, 10*time.Minute, 15*time.Minute)
}

func registerUser(t *testing.T, users UserStore, email, password string) {
	t.Helper()
	svc := newTestAuthService(users)
	if _, err := svc.Register(context.Background(), model.RegisterRequest{Email: email, Password: password}); err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}
}

func TestForgot_EmptyEmail(t *testing.T) {
	svc := newTestResetService(newFakeUserStore(), store.NewMemory(), newFakeMailer())

	_, err := svc.Forgot(context.Background(), "")
	if !errors.Is(err, ErrEmailRequired) {
		t.Errorf("expected ErrEmailRequired, got %v", err)
	}
}

func TestForgot_UnknownEmailLooksLikeSuccess(t *testing.T) {
	users := newFakeUserStore()
	registerUser(t, users, "known@example.com", "pw123456")
	mailer := newFakeMailer()
	svc := newTestResetService(users, store.NewMemory(), mailer)
	ctx := context.Background()

	known, err := svc.Forgot(ctx, "known@example.com")
	if err != nil {
		t.Fatalf("Forgot(known) unexpected error: %v", err)
	}
	unknown, err := svc.Forgot(ctx, "unknown@example.com")
	if err != nil {
		t.Fatalf("Forgot(unknown) unexpected error: %v", err)
	}

	if known != unknown {
		t.Errorf("responses differ: known=%+v unknown=%+v", known, unknown)
	}
	if mailer.lastCode("unknown@example.com") != "" {
		t.Error("a code was mailed to an unregistered email")
	}
}

func TestForgot_SendsCodeAndOverwritesPrevious(t *testing.T) {
	users := newFakeUserStore()
	registerUser(t, users, "a@b.com", "pw123456")
	kv := store.NewMemory()
	mailer := newFakeMailer()
	svc := newTestResetService(users, kv, mailer)
	ctx := context.Background()

	if _, err := svc.Forgot(ctx, "a@b.com"); err != nil {
		t.Fatalf("Forgot() unexpected error: %v", err)
	}
	first := mailer.lastCode("a@b.com")
	if first == "" {
		t.Fatal("no code was mailed")
	}

	if _, err := svc.Forgot(ctx, "a@b.com"); err != nil {
		t.Fatalf("Forgot() unexpected error: %v", err)
	}
	second := mailer.lastCode("a@b.com")

	// Only the most recently issued code may verify.
	if first != second {
		if _, err := svc.VerifyCode(ctx, "a@b.com", first); !errors.Is(err, ErrCodeMismatch) {
			t.Errorf("stale code: error = %v, want ErrCodeMismatch", err)
		}
	}
	if _, err := svc.VerifyCode(ctx, "a@b.com", second); err != nil {
		t.Errorf("current code rejected: %v", err)
	}
}

func TestForgot_DevModeWithoutMailer(t *testing.T) {
	users := newFakeUserStore()
	registerUser(t, users, "a@b.com", "pw123456")
	svc := newTestResetService(users, store.NewMemory(), nil)

	resp, err := svc.Forgot(context.Background(), "a@b.com")
	if err != nil {
		t.Fatalf("Forgot() unexpected error: %v", err)
	}
	if !resp.DevMode {
		t.Error("expected DevMode=true with no mailer configured")
	}
	if len(resp.Code) != 6 {
		t.Errorf("expected a 6-digit code in the response, got %q", resp.Code)
	}
}

func TestForgot_MailFailureStaysGeneric(t *testing.T) {
	users := newFakeUserStore()
	registerUser(t, users, "a@b.com", "pw123456")
	mailer := newFakeMailer()
	mailer.fail = true
	svc := newTestResetService(users, store.NewMemory(), mailer)

	resp, err := svc.Forgot(context.Background(), "a@b.com")
	if err != nil {
		t.Fatalf("Forgot() should not fail when mail delivery fails, got %v", err)
	}
	if resp.DevMode || resp.Code != "" {
		t.Error("dev mode must never be set when a mailer is configured")
	}
}

func TestVerifyCode_Errors(t *testing.T) {
	users := newFakeUserStore()
	registerUser(t, users, "a@b.com", "pw123456")
	kv := store.NewMemory()
	svc := newTestResetService(users, kv, nil)
	ctx := context.Background()

	if _, err := svc.VerifyCode(ctx, "", ""); !errors.Is(err, ErrEmailAndCodeRequired) {
		t.Errorf("empty input: error = %v, want ErrEmailAndCodeRequired", err)
	}

	if _, err := svc.VerifyCode(ctx, "a@b.com", "123456"); !errors.Is(err, ErrCodeNotFound) {
		t.Errorf("no pending code: error = %v, want ErrCodeNotFound", err)
	}

	resp, err := svc.Forgot(ctx, "a@b.com")
	if err != nil {
		t.Fatalf("Forgot() unexpected error: %v", err)
	}

	if _, err := svc.VerifyCode(ctx, "a@b.com", "000000"); !errors.Is(err, ErrCodeMismatch) {
		t.Errorf("wrong code: error = %v, want ErrCodeMismatch", err)
	}

	// A mismatch must not consume the pending code.
	if _, err := svc.VerifyCode(ctx, "a@b.com", resp.Code); err != nil {
		t.Errorf("correct code after a mismatch: unexpected error %v", err)
	}
}

func TestVerifyCode_Expired(t *testing.T) {
	users := newFakeUserStore()
	registerUser(t, users, "a@b.com", "pw123456")
	kv := store.NewMemory()
	svc := newTestResetService(users, kv, nil)
	ctx := context.Background()

	kv.Set("code:a@b.com", "123456", -time.Second)

	if _, err := svc.VerifyCode(ctx, "a@b.com", "123456"); !errors.Is(err, ErrCodeExpired) {
		t.Fatalf("expired code: error = %v, want ErrCodeExpired", err)
	}

	// The expired record is removed, so a retry reports not-found.
	if _, err := svc.VerifyCode(ctx, "a@b.com", "123456"); !errors.Is(err, ErrCodeNotFound) {
		t.Errorf("second attempt: error = %v, want ErrCodeNotFound", err)
	}
}

func TestVerifyCode_TrimsWhitespace(t *testing.T) {
	users := newFakeUserStore()
	registerUser(t, users, "a@b.com", "pw123456")
	svc := newTestResetService(users, store.NewMemory(), nil)
	ctx := context.Background()

	resp, err := svc.Forgot(ctx, "a@b.com")
	if err != nil {
		t.Fatalf("Forgot() unexpected error: %v", err)
	}

	if _, err := svc.VerifyCode(ctx, "a@b.com", "  "+resp.Code+" \n"); err != nil {
		t.Errorf("padded code rejected: %v", err)
	}
}

func TestVerifyCode_SingleUse(t *testing.T) {
	users := newFakeUserStore()
	registerUser(t, users, "a@b.com", "pw123456")
	svc := newTestResetService(users, store.NewMemory(), nil)
	ctx := context.Background()

	resp, err := svc.Forgot(ctx, "a@b.com")
	if err != nil {
		t.Fatalf("Forgot() unexpected error: %v", err)
	}

	if _, err := svc.VerifyCode(ctx, "a@b.com", resp.Code); err != nil {
		t.Fatalf("VerifyCode() unexpected error: %v", err)
	}
	if _, err := svc.VerifyCode(ctx, "a@b.com", resp.Code); !errors.Is(err, ErrCodeNotFound) {
		t.Errorf("replayed code: error = %v, want ErrCodeNotFound", err)
	}
}

func TestReset_InvalidTokens(t *testing.T) {
	users := newFakeUserStore()
	registerUser(t, users, "a@b.com", "pw123456")
	svc := newTestResetService(users, store.NewMemory(), nil)
	ctx := context.Background()

	if err := svc.Reset(ctx, "", ""); !errors.Is(err, ErrResetFieldsRequired) {
		t.Errorf("empty input: error = %v, want ErrResetFieldsRequired", err)
	}

	if err := svc.Reset(ctx, "garbage", "NewPass123"); !errors.Is(err, ErrInvalidResetToken) {
		t.Errorf("garbage token: error = %v, want ErrInvalidResetToken", err)
	}

	forged, err := crypto.GenerateResetToken("a@b.com", "attacker-secret", 15*time.Minute)
	if err != nil {
		t.Fatalf("GenerateResetToken() unexpected error: %v", err)
	}
	if err := svc.Reset(ctx, forged, "NewPass123"); !errors.Is(err, ErrInvalidResetToken) {
		t.Errorf("forged token: error = %v, want ErrInvalidResetToken", err)
	}

	expired, err := crypto.GenerateResetToken("a@b.com", testSecret, -time.Second)
	if err != nil {
		t.Fatalf("GenerateResetToken() unexpected error: %v", err)
	}
	if err := svc.Reset(ctx, expired, "NewPass123"); !errors.Is(err, ErrInvalidResetToken) {
		t.Errorf("expired token: error = %v, want ErrInvalidResetToken", err)
	}
}

func TestReset_UserGone(t *testing.T) {
	svc := newTestResetService(newFakeUserStore(), store.NewMemory(), nil)

	token, err := crypto.GenerateResetToken("gone@example.com", testSecret, 15*time.Minute)
	if err != nil {
		t.Fatalf("GenerateResetToken() unexpected error: %v", err)
	}

	if err := svc.Reset(context.Background(), token, "NewPass123"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("error = %v, want ErrUserNotFound", err)
	}
}

func TestReset_TokenSingleUse(t *testing.T) {
	users := newFakeUserStore()
	registerUser(t, users, "a@b.com", "pw123456")
	svc := newTestResetService(users, store.NewMemory(), nil)
	ctx := context.Background()

	token, err := crypto.GenerateResetToken("a@b.com", testSecret, 15*time.Minute)
	if err != nil {
		t.Fatalf("GenerateResetToken() unexpected error: %v", err)
	}

	if err := svc.Reset(ctx, token, "FirstPass123"); err != nil {
		t.Fatalf("Reset() unexpected error: %v", err)
	}
	if err := svc.Reset(ctx, token, "SecondPass123"); !errors.Is(err, ErrInvalidResetToken) {
		t.Errorf("replayed token: error = %v, want ErrInvalidResetToken", err)
	}
}

func TestCodeResetEndToEnd(t *testing.T) {
	users := newFakeUserStore()
	registerUser(t, users, "a@b.com", "OldPass123")
	authSvc := newTestAuthService(users)
	resetSvc := newTestResetService(users, store.NewMemory(), nil)
	ctx := context.Background()

	forgot, err := resetSvc.Forgot(ctx, "a@b.com")
	if err != nil {
		t.Fatalf("Forgot() unexpected error: %v", err)
	}

	verified, err := resetSvc.VerifyCode(ctx, "a@b.com", forgot.Code)
	if err != nil {
		t.Fatalf("VerifyCode() unexpected error: %v", err)
	}

	if err := resetSvc.Reset(ctx, verified.ResetToken, "NewPass123"); err != nil {
		t.Fatalf("Reset() unexpected error: %v", err)
	}

	if _, err := authSvc.Login(ctx, model.LoginRequest{Email: "a@b.com", Password: "NewPass123"}); err != nil {
		t.Errorf("login with new password failed: %v", err)
	}
	if _, err := authSvc.Login(ctx, model.LoginRequest{Email: "a@b.com", Password: "OldPass123"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("login with old password: error = %v, want ErrInvalidCredentials", err)
	}
}
