package mailer

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
)

func TestSMTPMailer_Send(t *testing.T) {
	m := NewSMTPMailer("mail.example.com", 587, "user", "pass", "no-reply@opustools.xyz")

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	var gotAuth smtp.Auth
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotAuth, gotFrom, gotTo, gotMsg = addr, a, from, to, msg
		return nil
	}

	if err := m.Send(context.Background(), "jane@example.com", "Hello", "line one\nline two"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAddr != "mail.example.com:587" {
		t.Errorf("addr = %q", gotAddr)
	}
	if gotAuth == nil {
		t.Error("expected PLAIN auth with username set")
	}
	if gotFrom != "no-reply@opustools.xyz" || len(gotTo) != 1 || gotTo[0] != "jane@example.com" {
		t.Errorf("envelope = %q -> %v", gotFrom, gotTo)
	}
	msg := string(gotMsg)
	for _, want := range []string{"Subject: Hello\r\n", "To: jane@example.com\r\n", "\r\n\r\nline one\r\nline two"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestSMTPMailer_NoAuthWithoutUsername(t *testing.T) {
	m := NewSMTPMailer("localhost", 25, "", "", "a@b.c")
	if m.auth != nil {
		t.Error("auth should be nil without a username")
	}
}

func TestSMTPMailer_Errors(t *testing.T) {
	m := NewSMTPMailer("localhost", 25, "", "", "a@b.c")

	t.Run("header injection", func(t *testing.T) {
		called := false
		m.send = func(string, smtp.Auth, string, []string, []byte) error { called = true; return nil }
		if err := m.Send(context.Background(), "x@y.z\r\nBcc: evil@y.z", "s", "b"); err == nil {
			t.Fatal("expected error")
		}
		if called {
			t.Error("send should not be called")
		}
	})

	t.Run("transport failure", func(t *testing.T) {
		boom := errors.New("connection refused")
		m.send = func(string, smtp.Auth, string, []string, []byte) error { return boom }
		if err := m.Send(context.Background(), "x@y.z", "s", "b"); !errors.Is(err, boom) {
			t.Fatalf("err = %v; want %v", err, boom)
		}
	})
}

func TestLogMailer_NeverFails(t *testing.T) {
	if err := (LogMailer{}).Send(context.Background(), "x@y.z", "s", "b"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
