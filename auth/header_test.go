package auth

import (
	"errors"
	"net/http"
	"testing"
)

func TestBearerTokenFromHeader(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    string
		wantErr error
	}{
		{name: "valid", value: "Bearer a.b.c", want: "a.b.c"},
		{name: "padded", value: "  Bearer a.b.c  ", want: "a.b.c"},
		{name: "blank", value: "   ", wantErr: ErrMissingAuthorization},
		{name: "wrong scheme", value: "Basic a.b.c", wantErr: ErrBadAuthorization},
		{name: "lowercase scheme", value: "bearer a.b.c", wantErr: ErrBadAuthorization},
		{name: "prefix only", value: "Bearer ", wantErr: ErrBadAuthorization},
		{name: "not a jwt", value: "Bearer abc", wantErr: ErrBadAuthorization},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			h.Set("Authorization", tt.value)
			got, err := BearerTokenFromHeader(h)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Fatalf("token = %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := BearerTokenFromHeader(http.Header{}); !errors.Is(err, ErrMissingAuthorization) {
		t.Fatalf("expected missing header error, got %v", err)
	}
}
