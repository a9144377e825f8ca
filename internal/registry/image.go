package registry

import (
	"fmt"
	"image"
	"os"

	"golang.org/x/image/draw"

	_ "image/jpeg"
	_ "image/png"
)

// imageSize is the side length the disease network was trained on.
const imageSize = 225

// PrepareImage decodes an uploaded image file, resizes it to the network's
// input resolution, and flattens it to a normalized HWC float32 tensor with
// channel values in [0, 1].
func PrepareImage(path string) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	resized := image.NewRGBA(image.Rect(0, 0, imageSize, imageSize))
	draw.BiLinear.Scale(resized, resized.Bounds(), src, src.Bounds(), draw.Src, nil)

	tensor := make([]float32, 0, imageSize*imageSize*3)
	for y := 0; y < imageSize; y++ {
		for x := 0; x < imageSize; x++ {
			r, g, b, _ := resized.At(x, y).RGBA()
			tensor = append(tensor,
				float32(r>>8)/255,
				float32(g>>8)/255,
				float32(b>>8)/255,
			)
		}
	}
	return tensor, nil
}
