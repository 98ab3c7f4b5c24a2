// Package texture derives gray-level co-occurrence statistics from images.
//
// The classifier consumes a fixed four-value descriptor (contrast, homogeneity,
// correlation, energy) computed from a symmetric, normalized GLCM at distance 1
// over the four standard directions, averaged per property across directions.
package texture

import (
	"image"
	"image/draw"
	"math"

	"gonum.org/v1/gonum/mat"
)

// GrayLevels is the number of intensity bins used for 8-bit images.
const GrayLevels = 256

// fourAngles are the pair directions, in radians: 0, 45, 90 and 135 degrees.
var fourAngles = []float64{0, math.Pi / 4, math.Pi / 2, 3 * math.Pi / 4}

// Descriptor is the auxiliary feature vector fed to the model alongside the
// image tensor.
type Descriptor struct {
	Contrast    float64 `json:"contrast"`
	Homogeneity float64 `json:"homogeneity"`
	Correlation float64 `json:"correlation"`
	Energy      float64 `json:"energy"`
}

// Vector returns the descriptor in model input order.
func (d Descriptor) Vector() []float32 {
	return []float32{
		float32(d.Contrast),
		float32(d.Homogeneity),
		float32(d.Correlation),
		float32(d.Energy),
	}
}

// GrayMatrix converts img to 8-bit grayscale using the standard library's
// BT.601 luma weights, which match the usual RGB-to-gray rounding of image
// processing toolkits.
func GrayMatrix(img image.Image) *image.Gray {
	gray := image.NewGray(img.Bounds())
	draw.Draw(gray, gray.Bounds(), img, img.Bounds().Min, draw.Src)
	return gray
}

// CoOccurrence builds one gray-level co-occurrence matrix per angle. The pair
// offset for an angle is (round(sin a)*distance, round(cos a)*distance) in
// (row, col) terms with rows growing downward. With symmetric set, each matrix
// is summed with its transpose; with normed set, each is divided by its total
// so the entries form a probability distribution. A direction with no valid
// pixel pairs yields an all-zero matrix.
//
// Pixel values must be below levels; callers pass GrayLevels for 8-bit images.
func CoOccurrence(gray *image.Gray, distance int, angles []float64, levels int, symmetric, normed bool) []*mat.Dense {
	bounds := gray.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	out := make([]*mat.Dense, 0, len(angles))
	for _, angle := range angles {
		dr := int(math.Round(math.Sin(angle) * float64(distance)))
		dc := int(math.Round(math.Cos(angle) * float64(distance)))

		p := mat.NewDense(levels, levels, nil)
		for row := 0; row < height; row++ {
			nr := row + dr
			if nr < 0 || nr >= height {
				continue
			}
			for col := 0; col < width; col++ {
				nc := col + dc
				if nc < 0 || nc >= width {
					continue
				}
				i := int(gray.GrayAt(bounds.Min.X+col, bounds.Min.Y+row).Y)
				j := int(gray.GrayAt(bounds.Min.X+nc, bounds.Min.Y+nr).Y)
				p.Set(i, j, p.At(i, j)+1)
			}
		}

		if symmetric {
			sym := mat.NewDense(levels, levels, nil)
			sym.Add(p, p.T())
			p = sym
		}
		if normed {
			if total := mat.Sum(p); total > 0 {
				p.Scale(1/total, p)
			}
		}
		out = append(out, p)
	}
	return out
}

// Contrast is the intensity-difference moment: sum of p(i,j)*(i-j)^2.
func Contrast(p *mat.Dense) float64 {
	n, _ := p.Dims()
	var sum float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			d := float64(i - j)
			sum += p.At(i, j) * d * d
		}
	}
	return sum
}

// Homogeneity is the inverse difference moment: sum of p(i,j)/(1+(i-j)^2).
func Homogeneity(p *mat.Dense) float64 {
	n, _ := p.Dims()
	var sum float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			d := float64(i - j)
			sum += p.At(i, j) / (1 + d*d)
		}
	}
	return sum
}

// Energy is the square root of the angular second moment, i.e. the Frobenius
// norm of the matrix.
func Energy(p *mat.Dense) float64 {
	return mat.Norm(p, 2)
}

// Correlation measures the joint-probability linear dependency of gray levels
// on their neighbors, in [-1, 1]. A matrix whose row or column marginal has
// (near-)zero variance is defined to have correlation 1.
func Correlation(p *mat.Dense) float64 {
	n, _ := p.Dims()

	px := make([]float64, n)
	py := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := p.At(i, j)
			px[i] += v
			py[j] += v
		}
	}

	var meanI, meanJ float64
	for i, v := range px {
		meanI += float64(i) * v
	}
	for j, v := range py {
		meanJ += float64(j) * v
	}

	var varI, varJ float64
	for i, v := range px {
		d := float64(i) - meanI
		varI += d * d * v
	}
	for j, v := range py {
		d := float64(j) - meanJ
		varJ += d * d * v
	}

	stdI := math.Sqrt(varI)
	stdJ := math.Sqrt(varJ)
	if stdI < 1e-15 || stdJ < 1e-15 {
		return 1
	}

	var sum float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			sum += p.At(i, j) * (float64(i) - meanI) * (float64(j) - meanJ)
		}
	}
	return sum / (stdI * stdJ)
}

// Features computes the production descriptor for img: distance-1 symmetric
// normalized co-occurrence over the four standard directions at 256 gray
// levels, each property averaged across directions.
func Features(img image.Image) Descriptor {
	gray := GrayMatrix(img)
	mats := CoOccurrence(gray, 1, fourAngles, GrayLevels, true, true)

	var d Descriptor
	for _, p := range mats {
		d.Contrast += Contrast(p)
		d.Homogeneity += Homogeneity(p)
		d.Correlation += Correlation(p)
		d.Energy += Energy(p)
	}
	n := float64(len(mats))
	d.Contrast /= n
	d.Homogeneity /= n
	d.Correlation /= n
	d.Energy /= n
	return d
}
