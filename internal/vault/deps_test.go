package vault

import (
	"reflect"
	"testing"
)

func TestParseTextureRefs(t *testing.T) {
	data := []byte(`# rock material
type = Material
texture_base = /Game/Textures/RockBase
texture_normal=/Game/Textures/RockNormal
Texture_Base = /Game/Textures/RockBase
roughness = 0.8
texture /Game/Textures/RockAO
`)

	got := ParseTextureRefs(data)
	want := []string{
		"/Game/Textures/RockBase",
		"/Game/Textures/RockNormal",
		"/Game/Textures/RockAO",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseTextureRefs = %v, want %v", got, want)
	}
}

func TestParseTextureRefsEmpty(t *testing.T) {
	if refs := ParseTextureRefs(nil); refs != nil {
		t.Errorf("ParseTextureRefs(nil) = %v, want nil", refs)
	}
	if refs := ParseTextureRefs([]byte("roughness = 0.5\n")); refs != nil {
		t.Errorf("no texture keys: got %v, want nil", refs)
	}
}
