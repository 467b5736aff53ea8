package validate

import "testing"

func TestCompose(t *testing.T) {
	v := Compose(Required(), MaxLength(5))

	if err := v("ok"); err != nil {
		t.Fatalf("valid value rejected: %v", err)
	}
	if err := v(""); err == nil {
		t.Fatalf("empty value must fail Required")
	}
	if err := v("toolong"); err == nil {
		t.Fatalf("long value must fail MaxLength")
	}
}

func TestNoControlChars(t *testing.T) {
	v := NoControlChars()

	if err := v("plain text"); err != nil {
		t.Fatalf("plain text rejected: %v", err)
	}
	if err := v("bad\x00text"); err == nil {
		t.Fatalf("NUL byte must be rejected")
	}
	if err := v("bad\ntext"); err == nil {
		t.Fatalf("newline must be rejected")
	}
}

func TestMinLength(t *testing.T) {
	v := MinLength(3)

	if err := v("abc"); err != nil {
		t.Fatalf("exact length should pass: %v", err)
	}
	if err := v("ab"); err == nil {
		t.Fatalf("short value should fail")
	}
}

func TestHTTPURL(t *testing.T) {
	v := HTTPURL()

	if err := v("https://go.dev/doc"); err != nil {
		t.Fatalf("https url rejected: %v", err)
	}
	if err := v("ftp://example.com"); err == nil {
		t.Fatalf("non-http scheme must fail")
	}
	if err := v("not a url"); err == nil {
		t.Fatalf("garbage must fail")
	}
}
