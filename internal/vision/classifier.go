package vision

import (
	"bytes"
	"fmt"
	"image"
	"sync"

	"github.com/disintegration/imaging"
	ort "github.com/yalue/onnxruntime_go"
	"golang.org/x/image/draw"

	"github.com/AhnafCh/Foot-and-Mouth-Disease-Detection/internal/texture"
)

const (
	width  = 224
	height = 224
)

// DefaultLabels is the class order the bundled tissue model was trained with.
var DefaultLabels = []string{"Healthy", "FMD Diseased"}

// Prediction is the winning class for one image.
type Prediction struct {
	Label      string  `json:"label"`
	Index      int     `json:"index"`
	Confidence float32 `json:"confidence"`
}

// ConfidenceString renders the confidence as a percentage with two decimals,
// e.g. "97.42%".
func (p Prediction) ConfidenceString() string {
	return fmt.Sprintf("%.2f%%", float64(p.Confidence)*100)
}

// Classifier runs the two-input tissue model: an ONNX graph fed the scaled
// RGB image tensor and the co-occurrence texture descriptor.
type Classifier struct {
	mu sync.Mutex

	modelPath string
	libPath   string
	labels    []string

	session    *ort.AdvancedSession
	inputs     []*ort.Tensor[float32]
	imageIdx   int
	featureIdx int
	output     *ort.Tensor[float32]
	inited     bool
}

// NewClassifier creates a classifier that lazily loads the ONNX model.
// An empty label list falls back to DefaultLabels.
func NewClassifier(modelPath, onnxLibPath string, labels []string) *Classifier {
	if len(labels) == 0 {
		labels = DefaultLabels
	}
	return &Classifier{
		modelPath: modelPath,
		libPath:   onnxLibPath,
		labels:    labels,
	}
}

// Load initializes the ONNX runtime, session, and tensors. It is invoked
// lazily on first prediction and may be called up front to surface load
// errors early. Safe to call repeatedly.
func (c *Classifier) Load() error {
	return c.initOnce()
}

// Labels returns the class names in model output order.
func (c *Classifier) Labels() []string {
	return c.labels
}

// initOnce loads the ONNX shared library, environment, and session, and binds
// one tensor per model input. The model is expected to expose a rank-4 image
// input and a rank-2 feature input; dynamic axes are pinned to batch size 1.
func (c *Classifier) initOnce() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inited {
		return nil
	}

	if c.libPath != "" {
		ort.SetSharedLibraryPath(c.libPath)
	}

	// The environment outlives a failed attempt below, and initializing an
	// already-initialized runtime is itself an error. Skipping it here keeps
	// retries alive after a missing model file or a bad session.
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return fmt.Errorf("onnx init environment: %w", err)
		}
	}

	inputs, outputs, err := ort.GetInputOutputInfo(c.modelPath)
	if err != nil {
		return fmt.Errorf("onnx get input/output info: %w", err)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return fmt.Errorf("onnx model has no inputs or outputs")
	}

	destroyAll := func(ts []*ort.Tensor[float32]) {
		for _, t := range ts {
			if t != nil {
				t.Destroy()
			}
		}
	}

	c.imageIdx, c.featureIdx = -1, -1
	tensors := make([]*ort.Tensor[float32], len(inputs))
	for i, in := range inputs {
		shape := fixedShape(in.Dimensions)
		t, err := ort.NewEmptyTensor[float32](shape)
		if err != nil {
			destroyAll(tensors)
			return fmt.Errorf("onnx new input tensor %q: %w", in.Name, err)
		}
		tensors[i] = t
		switch len(in.Dimensions) {
		case 4:
			c.imageIdx = i
		case 2:
			c.featureIdx = i
		}
	}
	if c.imageIdx < 0 || c.featureIdx < 0 {
		destroyAll(tensors)
		return fmt.Errorf("onnx model must expose a rank-4 image input and a rank-2 feature input")
	}
	c.inputs = tensors

	outputTensor, err := ort.NewEmptyTensor[float32](fixedShape(outputs[0].Dimensions))
	if err != nil {
		destroyAll(tensors)
		return fmt.Errorf("onnx new output tensor: %w", err)
	}
	c.output = outputTensor

	inputNames := make([]string, len(inputs))
	inputValues := make([]ort.Value, len(inputs))
	for i := range inputs {
		inputNames[i] = inputs[i].Name
		inputValues[i] = tensors[i]
	}

	session, err := ort.NewAdvancedSession(c.modelPath,
		inputNames, []string{outputs[0].Name},
		inputValues, []ort.Value{c.output}, nil)
	if err != nil {
		outputTensor.Destroy()
		destroyAll(tensors)
		return fmt.Errorf("onnx new session: %w", err)
	}
	c.session = session
	c.inited = true
	return nil
}

// fixedShape copies dims, replacing dynamic (non-positive) axes with 1.
func fixedShape(dims ort.Shape) ort.Shape {
	shape := make(ort.Shape, len(dims))
	copy(shape, dims)
	for i := range shape {
		if shape[i] <= 0 {
			shape[i] = 1
		}
	}
	return shape
}

// Predict runs the model on img and returns the highest-scoring class.
func (c *Classifier) Predict(img image.Image) (*Prediction, error) {
	if err := c.initOnce(); err != nil {
		return nil, err
	}

	rgba := Resize(img)
	imageData := tensorData(rgba)
	featureData := texture.Features(rgba).Vector()

	c.mu.Lock()
	if err := c.fill(c.imageIdx, imageData); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	if err := c.fill(c.featureIdx, featureData); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	err := c.session.Run()
	var scores []float32
	if err == nil {
		scores = append(scores, c.output.GetData()...)
	}
	c.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("onnx run: %w", err)
	}
	if len(scores) == 0 {
		return nil, fmt.Errorf("onnx model produced no scores")
	}

	best := 0
	for i, s := range scores {
		if s > scores[best] {
			best = i
		}
	}
	label := ""
	if best < len(c.labels) {
		label = c.labels[best]
	}
	return &Prediction{Label: label, Index: best, Confidence: scores[best]}, nil
}

// fill copies data into the input tensor at idx. Callers hold c.mu.
func (c *Classifier) fill(idx int, data []float32) error {
	dst := c.inputs[idx].GetData()
	if len(dst) != len(data) {
		return fmt.Errorf("input tensor size %d != prepared data size %d", len(dst), len(data))
	}
	copy(dst, data)
	return nil
}

// Close releases the session, tensors, and runtime environment. The
// environment may be live even when the session never came up, so it is
// destroyed regardless.
func (c *Classifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.inited {
		if ort.IsInitialized() {
			return ort.DestroyEnvironment()
		}
		return nil
	}
	c.session.Destroy()
	for _, t := range c.inputs {
		t.Destroy()
	}
	c.output.Destroy()
	c.session = nil
	c.inputs = nil
	c.output = nil
	c.inited = false
	return ort.DestroyEnvironment()
}

// DecodeImage decodes a JPEG, PNG, GIF, TIFF, or BMP image from raw bytes,
// applying the EXIF orientation so phone uploads arrive upright.
func DecodeImage(data []byte) (image.Image, error) {
	return imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
}

// Resize scales img to the model's 224x224 input size with bilinear
// interpolation.
func Resize(img image.Image) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// Preprocess converts img to the model's image input: 224x224 RGB in NHWC
// order, scaled to [0, 1].
func Preprocess(img image.Image) []float32 {
	return tensorData(Resize(img))
}

func tensorData(rgba *image.RGBA) []float32 {
	out := make([]float32, height*width*3)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			px := rgba.RGBAAt(x, y)
			base := (y*width + x) * 3
			out[base] = float32(px.R) / 255.0
			out[base+1] = float32(px.G) / 255.0
			out[base+2] = float32(px.B) / 255.0
		}
	}
	return out
}
