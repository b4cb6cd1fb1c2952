package actor

import "testing"

// =============================================================================
// Group Tests
// =============================================================================

func TestGroupOf(t *testing.T) {
	tests := []struct {
		name      string
		layer     uint16
		bodyType  BodyType
		wantLayer uint16
	}{
		{"zero", 0, BodyTypeDynamic, 0},
		{"kinematic", 7, BodyTypeKinematic, 7},
		{"max layer", MaxLayer, BodyTypeStatic, MaxLayer},
		{"above max wraps", MaxLayer + 3, BodyTypeDynamic, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := GroupOf(tt.layer, tt.bodyType)
			if g.Layer() != tt.wantLayer || g.BodyType() != tt.bodyType {
				t.Errorf("GroupOf(%d, %v) = (%d, %v), want (%d, %v)",
					tt.layer, tt.bodyType, g.Layer(), g.BodyType(), tt.wantLayer, tt.bodyType)
			}
		})
	}
}
