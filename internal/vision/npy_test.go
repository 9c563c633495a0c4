package vision

import (
	"bytes"
	"image"
	"reflect"
	"testing"

	"github.com/sbinet/npyio"
)

func TestWriteMaskNPY(t *testing.T) {
	mask := createMask(4, 3)
	fillMaskRect(mask, 1, 1, 3, 2)

	var buf bytes.Buffer
	if err := WriteMaskNPY(&buf, mask); err != nil {
		t.Fatalf("WriteMaskNPY failed: %v", err)
	}

	r, err := npyio.NewReader(&buf)
	if err != nil {
		t.Fatalf("npyio.NewReader failed: %v", err)
	}
	if shape := r.Header.Descr.Shape; !reflect.DeepEqual(shape, []int{3, 4}) {
		t.Errorf("Shape = %v, want [3 4]", shape)
	}

	var data []float64
	if err := r.Read(&data); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	want := []float64{
		0, 0, 0, 0,
		0, 255, 255, 0,
		0, 0, 0, 0,
	}
	if !reflect.DeepEqual(data, want) {
		t.Errorf("Data = %v, want %v", data, want)
	}
}

func TestWriteMaskNPY_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMaskNPY(&buf, image.NewGray(image.Rect(0, 0, 0, 0))); err == nil {
		t.Error("Expected error for empty mask")
	}
}
