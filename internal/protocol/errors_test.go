package protocol

import "testing"

func TestIsKnownCode(t *testing.T) {
	cases := []string{
		"",
		ErrProtoBadRequest,
		ErrBadRequest,
		ErrValidation,
		ErrCollision,
		ErrUnknownZone,
		ErrInternal,
	}
	for _, c := range cases {
		if !IsKnownCode(c) {
			t.Fatalf("expected known code: %q", c)
		}
	}
	if IsKnownCode("E_NOT_DEFINED") {
		t.Fatalf("expected unknown code rejected")
	}
}

func TestDecodeBase(t *testing.T) {
	base, err := DecodeBase([]byte(`{"type":"inventory_command","command":"update_stock"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if base.Type != TypeInventoryCommand {
		t.Fatalf("type = %q", base.Type)
	}

	if _, err := DecodeBase([]byte(`not json`)); err == nil {
		t.Fatalf("expected error for malformed frame")
	}
}
