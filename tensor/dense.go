package tensor

import "fmt"

// DenseTypeName is the type name of the built-in dense float32 format.
const DenseTypeName = "dense"

// NewDenseFormat creates the dense float32 format. Payloads are row-major
// float32 elements, 4 bytes each.
func NewDenseFormat() Format {
	return denseFormat{}
}

type denseFormat struct{}

func (denseFormat) Name() string {
	return DenseTypeName
}

func (denseFormat) Size(meta Meta) (uint64, error) {
	n := int64(1)
	for _, d := range meta.Dims {
		if d < 0 {
			return 0, fmt.Errorf("dense tensor has negative dimension %d", d)
		}
		n *= d
	}

	return uint64(n) * 4, nil
}

func (f denseFormat) Init(t *Tensor, meta Meta) error {
	size, err := f.Size(meta)
	if err != nil {
		return err
	}

	if size != t.ByteSize() {
		return fmt.Errorf(
			"dense tensor needs %d bytes, payload holds %d", size, t.ByteSize())
	}

	t.SetMeta(meta.Clone())

	return nil
}
