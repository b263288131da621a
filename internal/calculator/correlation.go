package calculator

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"MacroDash/internal/model"
)

// Correlation computes the Pearson correlation matrix over every numeric
// column of rows, using pairwise-complete observations. The matrix is
// symmetric. Diagonal cells are 1 for columns with nonzero variance; any
// pair with fewer than two observations or a constant side is NaN.
func Correlation(rows []model.CombinedRow) model.CorrelationMatrix {
	cols := model.Columns
	n := len(cols)
	data := make([][]float64, n)
	for j := range cols {
		data[j] = make([]float64, len(rows))
	}
	for i, r := range rows {
		for j, v := range r.Values() {
			data[j][i] = v
		}
	}

	values := make([][]float64, n)
	for i := range values {
		values[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			c := pearson(data[i], data[j])
			if i == j && !math.IsNaN(c) {
				c = 1
			}
			values[i][j] = c
			values[j][i] = c
		}
	}
	return model.CorrelationMatrix{Columns: append([]string(nil), cols...), Values: values}
}

// pearson returns the correlation of x and y over indices where both are
// defined.
func pearson(x, y []float64) float64 {
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	if stat.Variance(xs, nil) == 0 || stat.Variance(ys, nil) == 0 {
		return math.NaN()
	}
	c := stat.Correlation(xs, ys, nil)
	if c > 1 {
		return 1
	}
	if c < -1 {
		return -1
	}
	return c
}
