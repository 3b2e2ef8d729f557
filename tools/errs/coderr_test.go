package errs

import (
	"errors"
	"testing"
)

func TestIsMatchesOnCode(t *testing.T) {
	err := ErrRecordNotFound.WrapMsg("contact", "owner", "u1")
	if !errors.Is(err, ErrRecordNotFound) {
		t.Fatal("wrapped error must still match its prototype")
	}
	if errors.Is(err, ErrDuplicateKey) {
		t.Fatal("must not match a different code")
	}
}

func TestUnpack(t *testing.T) {
	codeErr, ok := Unpack(ErrArgs.WrapMsg("query too short"))
	if !ok {
		t.Fatal("expected a CodeError")
	}
	if codeErr.Code != ArgsError {
		t.Fatalf("code = %d, want %d", codeErr.Code, ArgsError)
	}
	if codeErr.Detail != "query too short" {
		t.Fatalf("detail = %q", codeErr.Detail)
	}

	if _, ok := Unpack(errors.New("plain")); ok {
		t.Fatal("plain errors must not unpack")
	}
}

func TestWithDetailAccumulates(t *testing.T) {
	e := ErrArgs.WithDetail("first").WithDetail("second")
	if e.Detail != "first, second" {
		t.Fatalf("detail = %q", e.Detail)
	}
	if e.Code != ArgsError {
		t.Fatal("code must survive WithDetail")
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := map[int]int{
		ArgsError:           400,
		NoPermissionError:   403,
		DuplicateKeyError:   409,
		RecordNotFoundError: 404,
		TokenExpiredError:   401,
		ServerInternalError: 500,
		999999:              500,
	}
	for code, want := range cases {
		if got := HTTPStatus(code); got != want {
			t.Errorf("HTTPStatus(%d) = %d, want %d", code, got, want)
		}
	}
}
