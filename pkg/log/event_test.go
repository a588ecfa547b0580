package log

import "testing"

func TestDirectionString(t *testing.T) {
	tests := []struct {
		dir  Direction
		want string
	}{
		{DirectionIn, "IN"},
		{DirectionOut, "OUT"},
		{Direction(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		got := tt.dir.String()
		if got != tt.want {
			t.Errorf("Direction(%d).String() = %q, want %q", tt.dir, got, tt.want)
		}
	}
}

func TestLayerString(t *testing.T) {
	tests := []struct {
		layer Layer
		want  string
	}{
		{LayerLink, "LINK"},
		{LayerBearer, "BEARER"},
		{Layer(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		got := tt.layer.String()
		if got != tt.want {
			t.Errorf("Layer(%d).String() = %q, want %q", tt.layer, got, tt.want)
		}
	}
}

func TestCategoryString(t *testing.T) {
	tests := []struct {
		cat  Category
		want string
	}{
		{CategoryMessage, "MESSAGE"},
		{CategoryState, "STATE"},
		{CategoryNegotiation, "NEGOTIATION"},
		{CategoryError, "ERROR"},
		{Category(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		got := tt.cat.String()
		if got != tt.want {
			t.Errorf("Category(%d).String() = %q, want %q", tt.cat, got, tt.want)
		}
	}
}

func TestStateEntityString(t *testing.T) {
	tests := []struct {
		entity StateEntity
		want   string
	}{
		{StateEntitySession, "SESSION"},
		{StateEntityProfile, "PROFILE"},
		{StateEntityCache, "CACHE"},
		{StateEntity(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		got := tt.entity.String()
		if got != tt.want {
			t.Errorf("StateEntity(%d).String() = %q, want %q", tt.entity, got, tt.want)
		}
	}
}

func TestTruncateData(t *testing.T) {
	t.Run("Small", func(t *testing.T) {
		in := []byte{1, 2, 3}
		out, truncated := TruncateData(in)
		if truncated {
			t.Error("small payload reported as truncated")
		}
		if len(out) != 3 {
			t.Fatalf("len = %d, want 3", len(out))
		}
		in[0] = 9
		if out[0] != 1 {
			t.Error("TruncateData did not copy the input")
		}
	})

	t.Run("Large", func(t *testing.T) {
		in := make([]byte, MaxEventDataSize+100)
		out, truncated := TruncateData(in)
		if !truncated {
			t.Error("large payload not reported as truncated")
		}
		if len(out) != MaxEventDataSize {
			t.Errorf("len = %d, want %d", len(out), MaxEventDataSize)
		}
	})
}
