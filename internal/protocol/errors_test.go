package protocol

import "testing"

func TestIsKnownCode(t *testing.T) {
	cases := []string{"", ErrProtoBadRequest, ErrProtoVersion, ErrWorldBusy, ErrInternal}
	for _, c := range cases {
		if !IsKnownCode(c) {
			t.Fatalf("expected known code: %q", c)
		}
	}
	if IsKnownCode("E_NOT_DEFINED") {
		t.Fatalf("expected unknown code rejected")
	}
}

func TestNewError(t *testing.T) {
	e := NewError(ErrWorldBusy, "renderer already attached")
	if e.Type != TypeError || e.ProtocolVersion != Version || e.Code != ErrWorldBusy {
		t.Fatalf("unexpected error message: %+v", e)
	}
}
